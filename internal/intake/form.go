package intake

import (
	"bytes"
	"encoding/json"
	"fmt"

	apperrors "lead-intake/internal/common/errors"
	"lead-intake/internal/common/validation"
)

// StepForm validates one step's raw input and hands the typed payload to a callback.
type StepForm struct {
	step   Step
	schema validation.Schema
}

// NewStepForm returns the form for a data-entry step.
func NewStepForm(step Step) (*StepForm, error) {
	schema, ok := SchemaFor(step)
	if !ok {
		return nil, fmt.Errorf("step %s has no form", step)
	}
	return &StepForm{step: step, schema: schema}, nil
}

func (f *StepForm) Step() Step {
	return f.step
}

// Validate checks raw against the step's rules without producing a payload.
func (f *StepForm) Validate(raw []byte) (*validation.ValidationResult, error) {
	doc, err := decodeDocument(raw)
	if err != nil {
		return nil, err
	}
	return f.schema.Validate(doc), nil
}

// Submit validates raw and, only if it is valid, invokes onValid exactly once with the
// step's payload. Validation failures come back as a VALIDATION_FAILED error with one
// entry per failing field; the callback's own error is returned unchanged.
func (f *StepForm) Submit(raw []byte, onValid func(Payload) error) error {
	payload, err := Decode(f.step, raw)
	if err != nil {
		return err
	}
	return onValid(payload)
}

// Decode validates raw for step and returns the typed payload. Keys outside the step's
// fields are dropped.
func Decode(step Step, raw []byte) (Payload, error) {
	schema, ok := SchemaFor(step)
	if !ok {
		return nil, fmt.Errorf("step %s has no form", step)
	}
	doc, err := decodeDocument(raw)
	if err != nil {
		return nil, err
	}
	if result := schema.Validate(doc); !result.Valid {
		return nil, result.Err(step.Key())
	}

	switch step {
	case StepBusiness:
		var p BusinessDetails
		if err := remarshal(doc, &p); err != nil {
			return nil, err
		}
		return p, nil
	case StepWebsite:
		var p WebsitePreferences
		if err := remarshal(doc, &p); err != nil {
			return nil, err
		}
		p.Features = Normalize(p.Features)
		return p, nil
	default:
		var p MarketingPreferences
		if err := remarshal(doc, &p); err != nil {
			return nil, err
		}
		p.SocialMedia = Normalize(p.SocialMedia)
		p.MarketingMaterials = Normalize(p.MarketingMaterials)
		p.KPIs = Normalize(p.KPIs)
		if !p.Blogging.Needed {
			p.Blogging.Frequency = ""
			p.Blogging.Topics = ""
		}
		return p, nil
	}
}

func decodeDocument(raw []byte) (validation.Document, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, apperrors.NewInvalidPayloadError(fmt.Errorf("expected a JSON object"))
	}
	var doc validation.Document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, apperrors.NewInvalidPayloadError(err)
	}
	return doc, nil
}

// remarshal converts a validated document into its typed payload.
func remarshal(doc validation.Document, out interface{}) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return apperrors.NewInvalidPayloadError(err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apperrors.NewInvalidPayloadError(err)
	}
	return nil
}
