package intake

import (
	_ "embed"
	"sync"

	"lead-intake/internal/common/validation"
)

//go:embed record.schema.json
var recordSchemaJSON []byte

var (
	recordSchemaOnce sync.Once
	recordSchema     *validation.SchemaValidator
	recordSchemaErr  error
)

// RecordSchema returns the compiled structural schema of a complete submission record.
func RecordSchema() (*validation.SchemaValidator, error) {
	recordSchemaOnce.Do(func() {
		recordSchema, recordSchemaErr = validation.NewSchemaValidator(recordSchemaJSON)
	})
	return recordSchema, recordSchemaErr
}

// ValidateRecord checks a decoded submission body: the record must have exactly the three
// step sections with the right shapes, and each section must pass its step's rules.
// Field paths in the result are prefixed with the section key.
func ValidateRecord(doc map[string]interface{}) (*validation.ValidationResult, error) {
	schema, err := RecordSchema()
	if err != nil {
		return nil, err
	}
	result, err := schema.Validate(doc)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return result, nil
	}

	for _, step := range []Step{StepBusiness, StepWebsite, StepMarketing} {
		section, _ := doc[step.Key()].(map[string]interface{})
		rules, _ := SchemaFor(step)
		stepResult := rules.Validate(validation.Document(section))
		for _, e := range stepResult.Errors {
			e.Field = step.Key() + "." + e.Field
			result.Errors = append(result.Errors, e)
		}
	}
	result.Valid = len(result.Errors) == 0
	return result, nil
}
