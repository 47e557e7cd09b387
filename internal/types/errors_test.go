package types

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_ErrorFormat(t *testing.T) {
	err := NewAppError(ErrCodeNotFoundParty, "no party data found", nil)
	assert.Equal(t, "not_found_party: no party data found", err.Error())
}

func TestAppError_UnwrapChain(t *testing.T) {
	underlying := errors.New("connection reset")
	wrapped := NewAppError(ErrCodeUpstreamHTTP, "querying case", underlying)

	assert.ErrorIs(t, wrapped, underlying)

	var appErr *AppError
	require.ErrorAs(t, error(wrapped), &appErr)
	assert.Equal(t, ErrCodeUpstreamHTTP, appErr.Code)
}

func TestErrorCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeValidationInvalidJSON, http.StatusBadRequest},
		{ErrCodeValidationMissingField, http.StatusBadRequest},
		{ErrCodeAbortNotWhitelisted, http.StatusPartialContent},
		{ErrCodeDeserializationFailure, http.StatusUnprocessableEntity},
		{ErrCodeNotFoundCase, http.StatusNotFound},
		{ErrCodeUpstreamRateLimited, http.StatusTooManyRequests},
		{ErrCodeUpstreamNotify, http.StatusBadGateway},
		{ErrCodeInternalConfiguration, http.StatusInternalServerError},
		{ErrorCode("something_else"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
			assert.Equal(t, tt.want, NewAppError(tt.code, "", nil).HTTPStatus())
		})
	}
}

func TestAppError_WithDetailsCopies(t *testing.T) {
	orig := NewAppErrorWithDetails(ErrCodeUpstreamNotify, "send failed", nil, map[string]any{"status": 400})

	merged := orig.WithDetails(map[string]any{"response": "{}"})

	assert.Equal(t, map[string]any{"status": 400, "response": "{}"}, merged.Details)
	assert.Equal(t, map[string]any{"status": 400}, orig.Details)
	assert.Equal(t, orig.Code, merged.Code)
	assert.Equal(t, orig.Message, merged.Message)
}
