package types

import (
	"fmt"
	"net/http"
	"strings"
)

// ErrorCode is a typed string for categorizing application errors.
// The prefix of a code selects its family (validation_, abort_, not_found_,
// deserialization_, upstream_, internal_); CauseOf maps every code to the
// processing outcome it produces.
type ErrorCode string

const (
	// Validation: the inbound payload itself is unusable.
	ErrCodeValidationInvalidJSON      ErrorCode = "validation_invalid_json"
	ErrCodeValidationInvalidEvent     ErrorCode = "validation_invalid_event"
	ErrCodeValidationInvalidReceipt   ErrorCode = "validation_invalid_receipt"
	ErrCodeValidationInvalidReference ErrorCode = "validation_invalid_reference"
	ErrCodeValidationMissingField     ErrorCode = "validation_missing_required_field"

	// Abort: a business precondition is not met. Never retried, never alerted.
	ErrCodeAbortUnknownObjectType      ErrorCode = "abort_unknown_object_type"
	ErrCodeAbortNotWhitelisted         ErrorCode = "abort_not_whitelisted"
	ErrCodeAbortNotificationDisabled   ErrorCode = "abort_notification_disabled"
	ErrCodeAbortTaskNotOpen            ErrorCode = "abort_task_not_open"
	ErrCodeAbortUnsupportedIdentity    ErrorCode = "abort_unsupported_identification"
	ErrCodeAbortNoContactDetails       ErrorCode = "abort_no_contact_details"
	ErrCodeAbortScenarioNotImplemented ErrorCode = "abort_scenario_not_implemented"

	// Not found: an upstream query returned an empty result set. Retryable.
	ErrCodeNotFoundCase         ErrorCode = "not_found_case"
	ErrCodeNotFoundCaseStatus   ErrorCode = "not_found_case_status"
	ErrCodeNotFoundCaseType     ErrorCode = "not_found_case_type"
	ErrCodeNotFoundInitiator    ErrorCode = "not_found_case_initiator"
	ErrCodeNotFoundParty        ErrorCode = "not_found_party"
	ErrCodeNotFoundTask         ErrorCode = "not_found_task"
	ErrCodeNotFoundMessage      ErrorCode = "not_found_message"
	ErrCodeNotFoundDecision     ErrorCode = "not_found_decision"
	ErrCodeNotFoundDecisionType ErrorCode = "not_found_decision_type"

	// Deserialization: an upstream response does not match the expected schema.
	ErrCodeDeserializationFailure ErrorCode = "deserialization_failure"

	// Upstream: transport failures and non-2xx answers.
	ErrCodeUpstreamHTTP        ErrorCode = "upstream_http_failure"
	ErrCodeUpstreamUnavailable ErrorCode = "upstream_unavailable"
	ErrCodeUpstreamRateLimited ErrorCode = "upstream_rate_limited"
	ErrCodeUpstreamNotify      ErrorCode = "upstream_notify_failure"
	ErrCodeUpstreamTelemetry   ErrorCode = "upstream_telemetry_failure"

	// Internal
	ErrCodeInternalUnexpected     ErrorCode = "internal_unexpected_error"
	ErrCodeInternalConfiguration  ErrorCode = "internal_configuration_error"
	ErrCodeInternalNotImplemented ErrorCode = "internal_not_implemented"
)

// HTTPStatus maps an ErrorCode to its corresponding HTTP status code.
// Used by the API layer for failures that happen before a ProcessingResult
// exists (body decoding, routing). Returns 500 for unrecognized codes.
func (c ErrorCode) HTTPStatus() int {
	s := string(c)
	switch {
	case strings.HasPrefix(s, "validation_"):
		return http.StatusBadRequest
	case strings.HasPrefix(s, "abort_"):
		return http.StatusPartialContent
	case strings.HasPrefix(s, "deserialization_"):
		return http.StatusUnprocessableEntity
	case strings.HasPrefix(s, "not_found_"):
		return http.StatusNotFound
	case s == string(ErrCodeUpstreamRateLimited):
		return http.StatusTooManyRequests
	case strings.HasPrefix(s, "upstream_"):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// AppError is the standard application error type used throughout the service.
type AppError struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Err     error          `json:"-"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status code corresponding to this error's code.
func (e *AppError) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a copy of the error with the provided details merged in.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	merged := make(map[string]any, len(e.Details)+len(details))
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Err:     e.Err,
		Details: merged,
	}
}

// NewAppError creates a new AppError with the given code, message, and optional
// underlying error.
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewAppErrorWithDetails creates a new AppError carrying structured details.
func NewAppErrorWithDetails(code ErrorCode, message string, err error, details map[string]any) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
		Details: details,
	}
}
