package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToolError(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		message string
		details string
	}{
		{
			name:    "Invalid input",
			code:    CodeInvalidInput,
			message: "total segments must be positive",
			details: "total=0",
		},
		{
			name:    "Storage error",
			code:    CodeStorage,
			message: "rules workbook could not be written",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewToolError(tt.code, tt.message, tt.details)

			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.Equal(t, tt.details, err.Details)
			assert.WithinDuration(t, time.Now().UTC(), err.Timestamp, time.Minute)
			assert.Equal(t, tt.code+": "+tt.message, err.Error())
		})
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("category", "category is required", "  ")

	assert.Equal(t, "category", err.Field)
	assert.Equal(t, "  ", err.Value)
	assert.Equal(t, "validation error for field 'category': category is required", err.Error())
}

func TestCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"validation", NewValidationError("name", "name is required", ""), CodeValidation},
		{"wrapped validation", fmt.Errorf("edit: %w", NewValidationError("name", "x", "")), CodeValidation},
		{"not found", fmt.Errorf("lookup: %w", ErrRuleNotFound), CodeNotFound},
		{"missing file", fmt.Errorf("open: %w", ErrMissingResource), CodeNotFound},
		{"schema", fmt.Errorf("load: %w", ErrMalformedSchema), CodeMalformedSheet},
		{"input", ErrInvalidInput, CodeInvalidInput},
		{"tool error", NewToolError(CodeStorage, "disk full", ""), CodeStorage},
		{"other", fmt.Errorf("boom"), CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeFor(tt.err))
		})
	}
}
