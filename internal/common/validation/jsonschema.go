package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// SchemaValidator checks whole documents against a compiled JSON Schema.
type SchemaValidator struct {
	schema *gojsonschema.Schema
}

func NewSchemaValidator(schemaJSON []byte) (*SchemaValidator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compile json schema: %w", err)
	}
	return &SchemaValidator{schema: schema}, nil
}

// Validate checks doc, which may be any value encoding/json can marshal.
func (v *SchemaValidator) Validate(doc interface{}) (*ValidationResult, error) {
	result, err := v.schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	errs := []ValidationError{}
	for _, desc := range result.Errors() {
		field := desc.Field()
		// Missing properties are reported on the parent; point at the property itself.
		if desc.Type() == "required" {
			if prop, ok := desc.Details()["property"].(string); ok {
				if field == gojsonschema.STRING_ROOT_SCHEMA_PROPERTY {
					field = prop
				} else {
					field = field + "." + prop
				}
			}
		}
		errs = append(errs, ValidationError{
			Field:   field,
			Message: desc.Description(),
			Code:    schemaCode(desc.Type()),
		})
	}

	return &ValidationResult{
		Valid:  result.Valid(),
		Errors: errs,
	}, nil
}

func schemaCode(errType string) string {
	switch errType {
	case "required":
		return CodeRequired
	case "invalid_type":
		return CodeInvalidType
	case "enum":
		return CodeInvalidEnum
	case "string_gte":
		return CodeMinLength
	case "array_min_items":
		return CodeEmptySet
	case "pattern":
		return CodePattern
	default:
		return strings.ToUpper(errType)
	}
}
