package types

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProcessingResult_HTTPStatus(t *testing.T) {
	tests := []struct {
		name   string
		result ProcessingResult
		want   int
	}{
		{"success", Success("d", "m"), http.StatusAccepted},
		{"skipped", Skipped("d", "m"), http.StatusPartialContent},
		{"aborted", Aborted("d", "m"), http.StatusPartialContent},
		{"not possible", NotPossible("d", "m"), http.StatusUnprocessableEntity},
		{"failure", Failure("d", "m"), http.StatusPreconditionFailed},
		{"http failure", Failure("d", "m").WithErrorCode(ErrCodeUpstreamHTTP, true), http.StatusBadRequest},
		{"zero value", ProcessingResult{}, http.StatusPreconditionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.result.HTTPStatus())
		})
	}
}

func TestProcessingResult_DetailsKind(t *testing.T) {
	assert.Equal(t, DetailsInfo, Success("", "").Details().Kind)
	assert.Equal(t, DetailsInfo, Aborted("", "").Details().Kind)
	assert.Equal(t, DetailsError, NotPossible("", "").Details().Kind)
	assert.Equal(t, DetailsError, Failure("", "").Details().Kind)
}

func TestProcessingResult_Immutable(t *testing.T) {
	base := Failure("d", "m").WithCases("a")
	extended := base.WithCases("b")

	assert.Equal(t, []string{"a"}, base.Details().Cases)
	assert.Equal(t, []string{"a", "b"}, extended.Details().Cases)

	details := extended.Details()
	details.Cases[0] = "changed"
	assert.Equal(t, "a", extended.Details().Cases[0])
}

func TestCauseOf(t *testing.T) {
	tests := []struct {
		code      ErrorCode
		status    ProcessingStatus
		httpError bool
	}{
		{ErrCodeNotFoundParty, StatusFailure, true},
		{ErrCodeNotFoundCaseStatus, StatusFailure, true},
		{ErrCodeUpstreamUnavailable, StatusFailure, true},
		{ErrCodeUpstreamNotify, StatusFailure, false},
		{ErrCodeUpstreamTelemetry, StatusFailure, false},
		{ErrCodeAbortNotWhitelisted, StatusAborted, false},
		{ErrCodeAbortTaskNotOpen, StatusAborted, false},
		{ErrCodeValidationInvalidEvent, StatusNotPossible, false},
		{ErrCodeDeserializationFailure, StatusNotPossible, false},
		{ErrCodeInternalConfiguration, StatusNotPossible, false},
		{ErrorCode("unknown_code"), StatusFailure, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			c := CauseOf(tt.code)
			assert.Equal(t, tt.status, c.Status)
			assert.Equal(t, tt.httpError, c.HTTPRequestError)
			assert.Equal(t, tt.status == StatusFailure, c.Retryable())
		})
	}
}

func TestResultFromError(t *testing.T) {
	t.Run("nil is success", func(t *testing.T) {
		assert.True(t, ResultFromError("d", nil).IsSuccess())
	})

	t.Run("plain error embeds its type", func(t *testing.T) {
		r := ResultFromError("d", errors.New("boom"))
		assert.Equal(t, StatusFailure, r.Status())
		assert.Equal(t, ErrCodeInternalUnexpected, r.Details().ErrorCode)
		assert.Contains(t, r.Details().Message, "*errors.errorString")
		assert.Equal(t, http.StatusPreconditionFailed, r.HTTPStatus())
	})

	t.Run("missing party is a retryable http failure", func(t *testing.T) {
		r := ResultFromError("d", NewAppError(ErrCodeNotFoundParty, "no party", nil))
		assert.Equal(t, StatusFailure, r.Status())
		assert.True(t, r.Details().HTTPRequestError)
		assert.Equal(t, http.StatusBadRequest, r.HTTPStatus())
	})

	t.Run("abort keeps the message", func(t *testing.T) {
		r := ResultFromError("d", NewAppError(ErrCodeAbortNotificationDisabled, "notifications disabled", nil))
		assert.Equal(t, StatusAborted, r.Status())
		assert.Equal(t, "notifications disabled", r.Details().Message)
		assert.Equal(t, "d", r.Description())
	})

	t.Run("provider response becomes a case", func(t *testing.T) {
		err := NewAppErrorWithDetails(ErrCodeUpstreamNotify, "send failed", nil,
			map[string]any{"response": `{"status_code":400}`})
		r := ResultFromError("d", err)
		assert.Equal(t, []string{`{"status_code":400}`}, r.Details().Cases)
		assert.Equal(t, http.StatusPreconditionFailed, r.HTTPStatus())
	})

	t.Run("wrapped app error is classified", func(t *testing.T) {
		inner := NewAppError(ErrCodeDeserializationFailure, "unexpected schema", nil)
		r := ResultFromError("d", errors.Join(errors.New("context"), inner))
		assert.Equal(t, StatusNotPossible, r.Status())
	})
}
