package types

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ProcessingStatus is the canonical outcome of handling one inbound event.
type ProcessingStatus string

const (
	// StatusSuccess: the notification was delivered to the provider.
	StatusSuccess ProcessingStatus = "Success"
	// StatusSkipped: the event was recognized as not applicable (e.g. a ping).
	StatusSkipped ProcessingStatus = "Skipped"
	// StatusAborted: a business precondition was not met. Not retryable.
	StatusAborted ProcessingStatus = "Aborted"
	// StatusNotPossible: a structural or schema failure. Not retryable.
	StatusNotPossible ProcessingStatus = "NotPossible"
	// StatusFailure: a transient backend or provider failure. Retryable by the caller.
	StatusFailure ProcessingStatus = "Failure"
)

// DetailsKind distinguishes informational details from error details.
type DetailsKind string

const (
	DetailsInfo  DetailsKind = "info"
	DetailsError DetailsKind = "error"
)

// ProcessingDetails carries the human-readable part of a ProcessingResult.
type ProcessingDetails struct {
	Kind             DetailsKind `json:"-"`
	Message          string      `json:"message"`
	Cases            []string    `json:"cases,omitempty"`
	ErrorCode        ErrorCode   `json:"errorCode,omitempty"`
	HTTPRequestError bool        `json:"httpRequestError,omitempty"`
}

// ProcessingResult is an immutable outcome value. Construct it only through
// Success, Skipped, Aborted, NotPossible, Failure or ResultFromError.
type ProcessingResult struct {
	status      ProcessingStatus
	description string
	details     ProcessingDetails
}

func newResult(status ProcessingStatus, kind DetailsKind, description, message string) ProcessingResult {
	return ProcessingResult{
		status:      status,
		description: description,
		details: ProcessingDetails{
			Kind:    kind,
			Message: message,
		},
	}
}

// Success builds a result for a delivered notification.
func Success(description, message string) ProcessingResult {
	return newResult(StatusSuccess, DetailsInfo, description, message)
}

// Skipped builds a result for an event that needs no processing.
func Skipped(description, message string) ProcessingResult {
	return newResult(StatusSkipped, DetailsInfo, description, message)
}

// Aborted builds a result for an unmet business precondition.
func Aborted(description, message string) ProcessingResult {
	return newResult(StatusAborted, DetailsInfo, description, message)
}

// NotPossible builds a result for a structural failure that a retry cannot fix.
func NotPossible(description, message string) ProcessingResult {
	return newResult(StatusNotPossible, DetailsError, description, message)
}

// Failure builds a result for a transient failure.
func Failure(description, message string) ProcessingResult {
	return newResult(StatusFailure, DetailsError, description, message)
}

// Status returns the outcome status.
func (r ProcessingResult) Status() ProcessingStatus { return r.status }

// Description returns the short outcome description.
func (r ProcessingResult) Description() string { return r.description }

// Details returns a copy of the outcome details.
func (r ProcessingResult) Details() ProcessingDetails {
	d := r.details
	if d.Cases != nil {
		d.Cases = append([]string(nil), d.Cases...)
	}
	return d
}

// IsSuccess reports whether the status is StatusSuccess.
func (r ProcessingResult) IsSuccess() bool { return r.status == StatusSuccess }

// WithCases returns a copy of the result listing the given context items
// (failing fields, unmatched keys, upstream responses).
func (r ProcessingResult) WithCases(cases ...string) ProcessingResult {
	out := r
	out.details.Cases = append(append([]string(nil), r.details.Cases...), cases...)
	return out
}

// WithErrorCode returns a copy of the result annotated with the error code
// that produced it. httpRequestError marks failures raised by the HTTP layer
// of an upstream call.
func (r ProcessingResult) WithErrorCode(code ErrorCode, httpRequestError bool) ProcessingResult {
	out := r
	out.details.ErrorCode = code
	out.details.HTTPRequestError = httpRequestError
	return out
}

// HTTPStatus maps the result to the transport status code. The mapping is
// total: every status, including an unknown one, yields exactly one code.
func (r ProcessingResult) HTTPStatus() int {
	switch r.status {
	case StatusSuccess:
		return http.StatusAccepted
	case StatusSkipped, StatusAborted:
		return http.StatusPartialContent
	case StatusNotPossible:
		return http.StatusUnprocessableEntity
	case StatusFailure:
		if r.details.HTTPRequestError {
			return http.StatusBadRequest
		}
		return http.StatusPreconditionFailed
	default:
		return http.StatusPreconditionFailed
	}
}

// Cause describes how a failure cause is folded into the result taxonomy.
type Cause struct {
	Status           ProcessingStatus
	HTTPRequestError bool
}

// Retryable reports whether the caller may retry an event that failed with
// this cause.
func (c Cause) Retryable() bool {
	return c.Status == StatusFailure
}

// causes is the explicit retry policy per failure cause. Missing party data
// is retried because the party may be registered later; a missing whitelist
// entry is aborted because only a configuration change can alter it.
var causes = map[ErrorCode]Cause{
	ErrCodeValidationInvalidJSON:      {Status: StatusNotPossible},
	ErrCodeValidationInvalidEvent:     {Status: StatusNotPossible},
	ErrCodeValidationInvalidReceipt:   {Status: StatusNotPossible},
	ErrCodeValidationInvalidReference: {Status: StatusNotPossible},
	ErrCodeValidationMissingField:     {Status: StatusNotPossible},

	ErrCodeAbortUnknownObjectType:      {Status: StatusAborted},
	ErrCodeAbortNotWhitelisted:         {Status: StatusAborted},
	ErrCodeAbortNotificationDisabled:   {Status: StatusAborted},
	ErrCodeAbortTaskNotOpen:            {Status: StatusAborted},
	ErrCodeAbortUnsupportedIdentity:    {Status: StatusAborted},
	ErrCodeAbortNoContactDetails:       {Status: StatusAborted},
	ErrCodeAbortScenarioNotImplemented: {Status: StatusAborted},

	ErrCodeNotFoundCase:         {Status: StatusFailure, HTTPRequestError: true},
	ErrCodeNotFoundCaseStatus:   {Status: StatusFailure, HTTPRequestError: true},
	ErrCodeNotFoundCaseType:     {Status: StatusFailure, HTTPRequestError: true},
	ErrCodeNotFoundInitiator:    {Status: StatusFailure, HTTPRequestError: true},
	ErrCodeNotFoundParty:        {Status: StatusFailure, HTTPRequestError: true},
	ErrCodeNotFoundTask:         {Status: StatusFailure, HTTPRequestError: true},
	ErrCodeNotFoundMessage:      {Status: StatusFailure, HTTPRequestError: true},
	ErrCodeNotFoundDecision:     {Status: StatusFailure, HTTPRequestError: true},
	ErrCodeNotFoundDecisionType: {Status: StatusFailure, HTTPRequestError: true},

	ErrCodeDeserializationFailure: {Status: StatusNotPossible},

	ErrCodeUpstreamHTTP:        {Status: StatusFailure, HTTPRequestError: true},
	ErrCodeUpstreamUnavailable: {Status: StatusFailure, HTTPRequestError: true},
	ErrCodeUpstreamRateLimited: {Status: StatusFailure, HTTPRequestError: true},
	ErrCodeUpstreamNotify:      {Status: StatusFailure},
	ErrCodeUpstreamTelemetry:   {Status: StatusFailure},

	ErrCodeInternalUnexpected:     {Status: StatusFailure},
	ErrCodeInternalConfiguration:  {Status: StatusNotPossible},
	ErrCodeInternalNotImplemented: {Status: StatusFailure},
}

// CauseOf returns the taxonomy entry for an error code. Codes without an
// explicit entry are treated as retryable failures.
func CauseOf(code ErrorCode) Cause {
	if c, ok := causes[code]; ok {
		return c
	}
	return Cause{Status: StatusFailure}
}

// ResultFromError folds an error into the result taxonomy. AppErrors are
// classified through CauseOf; any other error is an unclassified Failure
// whose message embeds the Go type of the error for diagnostics.
func ResultFromError(description string, err error) ProcessingResult {
	if err == nil {
		return Success(description, "")
	}

	var appErr *AppError
	if !errors.As(err, &appErr) {
		return Failure(description, fmt.Sprintf("unexpected %T: %v", err, err)).
			WithErrorCode(ErrCodeInternalUnexpected, false)
	}

	cause := CauseOf(appErr.Code)
	var r ProcessingResult
	switch cause.Status {
	case StatusAborted:
		r = Aborted(description, appErr.Message)
	case StatusNotPossible:
		r = NotPossible(description, appErr.Message)
	case StatusSkipped:
		r = Skipped(description, appErr.Message)
	default:
		r = Failure(description, appErr.Message)
	}
	r = r.WithErrorCode(appErr.Code, cause.HTTPRequestError)

	if resp, ok := appErr.Details["response"].(string); ok && strings.TrimSpace(resp) != "" {
		r = r.WithCases(resp)
	}
	return r
}
