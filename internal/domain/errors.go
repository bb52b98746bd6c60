package domain

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for the failure taxonomy. Callers match them with errors.Is.
var (
	// ErrMissingResource marks an absent external file. Callers fall back to defaults.
	ErrMissingResource = errors.New("resource not found")
	// ErrMalformedSchema marks a tabular source whose required columns are absent.
	ErrMalformedSchema = errors.New("malformed schema")
	// ErrRuleNotFound is returned when a handle or name does not resolve to a rule.
	ErrRuleNotFound = errors.New("rule not found")
	// ErrInvalidInput marks calculator input that cannot be used even after degrading.
	ErrInvalidInput = errors.New("invalid input")
)

// ToolError represents a standardized error response on the tool surface
type ToolError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Error implements the error interface
func (e *ToolError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error codes for different failure scenarios
const (
	CodeInvalidInput   = "INVALID_INPUT"
	CodeValidation     = "VALIDATION_ERROR"
	CodeNotFound       = "NOT_FOUND"
	CodeMalformedSheet = "MALFORMED_SCHEMA"
	CodeStorage        = "STORAGE_ERROR"
	CodeInternal       = "INTERNAL_ERROR"
)

// ValidationError represents input validation errors
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewToolError creates a new ToolError with timestamp
func NewToolError(code, message, details string) *ToolError {
	return &ToolError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// CodeFor maps an error from the core onto a tool surface error code.
func CodeFor(err error) string {
	var verr *ValidationError
	var terr *ToolError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &terr):
		return terr.Code
	case errors.As(err, &verr):
		return CodeValidation
	case errors.Is(err, ErrRuleNotFound), errors.Is(err, ErrMissingResource):
		return CodeNotFound
	case errors.Is(err, ErrMalformedSchema):
		return CodeMalformedSheet
	case errors.Is(err, ErrInvalidInput):
		return CodeInvalidInput
	default:
		return CodeInternal
	}
}
