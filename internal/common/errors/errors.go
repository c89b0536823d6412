// Package errors provides standardized error handling for the intake API.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Client errors
const (
	ErrCodeInvalidPayload   ErrorCode = "INVALID_PAYLOAD"
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeStepMismatch     ErrorCode = "STEP_MISMATCH"
	ErrCodeWizardComplete   ErrorCode = "WIZARD_COMPLETE"
	ErrCodeSessionNotFound  ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeRateLimited      ErrorCode = "RATE_LIMITED"
)

// Server errors
const (
	ErrCodePersistenceFailed   ErrorCode = "PERSISTENCE_FAILED"
	ErrCodeSubmissionTransport ErrorCode = "SUBMISSION_TRANSPORT_FAILED"
	ErrCodeSessionStoreFailed  ErrorCode = "SESSION_STORE_FAILED"
	ErrCodeExternalService     ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout             ErrorCode = "TIMEOUT"
	ErrCodeInternal            ErrorCode = "INTERNAL_ERROR"
)

// Public messages returned to callers for server-side failures.
const (
	MsgSaveFailed     = "Failed to save form data"
	MsgInternal       = "An internal error occurred"
	MsgTooManyRequest = "Too many requests"
)

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Fields    []FieldError           `json:"fields,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// ==========================
// 2. Error Constructors
// ==========================

// NewInvalidPayloadError creates a non-retryable error for a body that is not a JSON object.
func NewInvalidPayloadError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidPayload,
		Message:   "Request body must be a JSON object",
		Details:   errDetails(err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewValidationFailedError creates a non-retryable error carrying field-level failures.
func NewValidationFailedError(scope string, fields []FieldError) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Please correct the highlighted fields",
		Details:   fmt.Sprintf("%s: %d invalid fields", scope, len(fields)),
		Retryable: false,
		Fields:    fields,
		Timestamp: time.Now().UTC(),
	}
}

// NewStepMismatchError creates a non-retryable error for a payload sent to the wrong step.
func NewStepMismatchError(current, got string) *StandardError {
	return &StandardError{
		Code:      ErrCodeStepMismatch,
		Message:   fmt.Sprintf("The wizard is on the %s step", current),
		Details:   fmt.Sprintf("current: %s, got: %s", current, got),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewWizardCompleteError creates a non-retryable error for input after the final step.
func NewWizardCompleteError() *StandardError {
	return &StandardError{
		Code:      ErrCodeWizardComplete,
		Message:   "This form has already been submitted",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionNotFoundError creates a non-retryable unknown-session error.
func NewSessionNotFoundError(sessionID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionNotFound,
		Message:   "Wizard session not found",
		Details:   fmt.Sprintf("sessionId: %s", sessionID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRateLimitedError creates a retryable quota error.
func NewRateLimitedError(key string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRateLimited,
		Message:   MsgTooManyRequest,
		Details:   fmt.Sprintf("key: %s", key),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewPersistenceFailedError creates a retryable storage error.
func NewPersistenceFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePersistenceFailed,
		Message:   MsgSaveFailed,
		Details:   errDetails(err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewSubmissionTransportError creates a retryable error for a failed call to the submit endpoint.
func NewSubmissionTransportError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSubmissionTransport,
		Message:   MsgSaveFailed,
		Details:   errDetails(err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewSessionStoreFailedError creates a retryable session storage error.
func NewSessionStoreFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionStoreFailed,
		Message:   MsgInternal,
		Details:   errDetails(err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExternalService,
		Message:   fmt.Sprintf("External service %s failed", service),
		Details:   errDetails(err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTimeout,
		Message:   fmt.Sprintf("Timeout calling %s", service),
		Details:   errDetails(err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func errDetails(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ==========================
// 3. Error Conversion to HTTP
// ==========================

// HTTPStatusMapping maps error codes to response status codes.
var HTTPStatusMapping = map[ErrorCode]int{
	ErrCodeInvalidPayload:      http.StatusBadRequest,
	ErrCodeValidationFailed:    http.StatusUnprocessableEntity,
	ErrCodeStepMismatch:        http.StatusConflict,
	ErrCodeWizardComplete:      http.StatusConflict,
	ErrCodeSessionNotFound:     http.StatusNotFound,
	ErrCodeRateLimited:         http.StatusTooManyRequests,
	ErrCodePersistenceFailed:   http.StatusInternalServerError,
	ErrCodeSubmissionTransport: http.StatusInternalServerError,
	ErrCodeSessionStoreFailed:  http.StatusInternalServerError,
	ErrCodeExternalService:     http.StatusBadGateway,
	ErrCodeTimeout:             http.StatusGatewayTimeout,
	ErrCodeInternal:            http.StatusInternalServerError,
}

// HTTPStatus returns the response status for an error code.
func HTTPStatus(code ErrorCode) int {
	if status, ok := HTTPStatusMapping[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// PublicMessage returns the caller-safe message for err. Details never leave the process.
func PublicMessage(err *StandardError) string {
	if err == nil {
		return MsgInternal
	}
	if err.Message == "" {
		if HTTPStatus(err.Code) >= 500 {
			return MsgInternal
		}
		return "Bad request"
	}
	return err.Message
}

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   MsgInternal,
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// IsCode reports whether err is a StandardError with the given code.
func IsCode(err error, code ErrorCode) bool {
	var stdErr *StandardError
	return errors.As(err, &stdErr) && stdErr.Code == code
}

// ==========================
// 4. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	switch code {
	case ErrCodeRateLimited, ErrCodePersistenceFailed, ErrCodeSubmissionTransport,
		ErrCodeSessionStoreFailed, ErrCodeExternalService, ErrCodeTimeout:
		return true
	}
	return false
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	switch {
	case code == ErrCodeValidationFailed || code == ErrCodeInvalidPayload:
		return "validation"
	case code == ErrCodeStepMismatch || code == ErrCodeWizardComplete || code == ErrCodeSessionNotFound:
		return "wizard"
	case code == ErrCodeRateLimited:
		return "quota"
	case code == ErrCodePersistenceFailed || strings.HasPrefix(string(code), "SESSION_STORE"):
		return "storage"
	case code == ErrCodeSubmissionTransport || code == ErrCodeExternalService || code == ErrCodeTimeout:
		return "integration"
	default:
		return "internal"
	}
}
