package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidationError(t *testing.T) {
	fields := []FieldError{{Field: "days", Rule: "required", Error: "is required"}}

	err := NewValidationError(0, fields)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Equal(t, "BAD_REQUEST", err.Code)
	assert.Equal(t, "Validation failed", err.Message)
	assert.True(t, err.Override)
	assert.Equal(t, fields, err.Errors)

	legacy := NewValidationError(http.StatusInternalServerError, fields)
	assert.Equal(t, http.StatusInternalServerError, legacy.Status)
	assert.Equal(t, "BAD_REQUEST", legacy.Code)
}

func TestHTTPError_WithStatus(t *testing.T) {
	original := NewValidationError(http.StatusBadRequest, []FieldError{{Field: "times", Error: "is required"}})

	changed := original.WithStatus(http.StatusUnprocessableEntity)
	assert.Equal(t, http.StatusUnprocessableEntity, changed.Status)
	assert.Equal(t, original.Errors, changed.Errors)
	assert.Equal(t, http.StatusBadRequest, original.Status, "original must not change")
}

func TestHTTPError_Is(t *testing.T) {
	wrapped := fmt.Errorf("get event: %w", NewNotFoundError("Event not found", true, nil))

	assert.True(t, errors.Is(wrapped, &HTTPError{}))

	var httpErr *HTTPError
	require.ErrorAs(t, wrapped, &httpErr)
	assert.Equal(t, "NOT_FOUND", httpErr.Code)
	assert.Equal(t, "Event not found", httpErr.Error())
}

func TestNewServiceUnavailableError(t *testing.T) {
	err := NewServiceUnavailableError("down")
	assert.Equal(t, http.StatusServiceUnavailable, err.Status)
	assert.Equal(t, "SERVICE_UNAVAILABLE", err.Code)
	require.NotNil(t, err.Action)
	assert.Equal(t, ActionTypeRetry, err.Action.Type)
}

func TestMakeUpperCaseWithUnderscores(t *testing.T) {
	assert.Equal(t, "TOO_MANY_REQUESTS", MakeUpperCaseWithUnderscores("Too Many Requests"))
}
