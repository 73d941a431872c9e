package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorMessageAndUnwrap(t *testing.T) {
	cause := errors.New("zip: not a valid zip file")
	err := NewReadError("The uploaded file could not be read.", cause)

	assert.Contains(t, err.Error(), "READ")
	assert.Contains(t, err.Error(), cause.Error())
	assert.ErrorIs(t, err, cause)
}

func TestTypePredicates(t *testing.T) {
	assert.True(t, IsSchemaError(NewSchemaError("bad layout")))
	assert.True(t, IsEmptyResultError(NewEmptyResultError("nothing left")))
	assert.True(t, IsReadError(NewReadError("unreadable", nil)))

	// Wrapped AppErrors are still recognized.
	wrapped := fmt.Errorf("stage failed: %w", NewSchemaError("bad layout"))
	assert.True(t, IsSchemaError(wrapped))

	assert.False(t, IsSchemaError(errors.New("plain")))
	assert.Equal(t, ErrorType(""), TypeOf(errors.New("plain")))
}

func TestMissingColumnErrorNamesTheColumn(t *testing.T) {
	err := NewMissingColumnError("Value")
	require.True(t, IsSchemaError(err))
	assert.Contains(t, err.Error(), "Value")
	assert.Contains(t, UserMessage(err), "Value")
}

func TestUserMessageFallback(t *testing.T) {
	assert.Equal(t, "The report could not be processed.", UserMessage(errors.New("internal detail")))
}

func TestFromErrorStatusMapping(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{NewSchemaError("no header"), http.StatusUnprocessableEntity, "SCHEMA_ERROR"},
		{NewEmptyResultError("no rows"), http.StatusUnprocessableEntity, "EMPTY_RESULT"},
		{NewReadError("garbage", nil), http.StatusBadRequest, "UNREADABLE_FILE"},
		{NewRenderError("boom", nil), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
		{errors.New("plain"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}
	for _, tt := range tests {
		apiErr := FromError(tt.err)
		assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
		assert.Equal(t, tt.wantCode, apiErr.ErrorCode)
	}
}
