package errors

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_ErrorIncludesCause(t *testing.T) {
	err := NewInternalError("failed to load catalog", sql.ErrConnDone)
	assert.Equal(t, "INTERNAL: failed to load catalog: sql: connection is already closed", err.Error())
	assert.ErrorIs(t, err, sql.ErrConnDone)
}

func TestAppError_ErrorWithoutCause(t *testing.T) {
	err := NewValidationError("household income is required")
	assert.Equal(t, "VALIDATION: household income is required", err.Error())
}

func TestTypeOf_WrappedAppError(t *testing.T) {
	wrapped := fmt.Errorf("search: %w", NewFieldValidationError("location", "location is required"))

	assert.Equal(t, ErrorTypeValidation, TypeOf(wrapped))
	assert.True(t, IsValidation(wrapped))
	assert.False(t, IsNotFound(wrapped))
}

func TestTypeOf_PlainErrorIsInternal(t *testing.T) {
	assert.Equal(t, ErrorTypeInternal, TypeOf(fmt.Errorf("boom")))
	assert.False(t, IsType(nil, ErrorTypeInternal))
}
