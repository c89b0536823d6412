package validation

import (
	"fmt"

	apperrors "lead-intake/internal/common/errors"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// FieldErrors converts the result into the API error representation.
func (vr *ValidationResult) FieldErrors() []apperrors.FieldError {
	out := make([]apperrors.FieldError, len(vr.Errors))
	for i, err := range vr.Errors {
		out[i] = apperrors.FieldError{Field: err.Field, Code: err.Code, Message: err.Message}
	}
	return out
}

// Err returns nil for a valid result and a VALIDATION_FAILED error otherwise.
func (vr *ValidationResult) Err(scope string) error {
	if vr == nil || vr.Valid {
		return nil
	}
	return apperrors.NewValidationFailedError(scope, vr.FieldErrors())
}
