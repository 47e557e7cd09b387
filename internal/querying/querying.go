// Package querying is the Query Context Adapter: it exposes every data
// operation a scenario needs and hides which schema version of each backend
// registry is deployed. Capabilities are small interfaces with one
// implementation per schema version; New selects them once from config.
//
// Failure policy for all lookups:
//   - empty result set            -> not_found_* AppError
//   - response not matching schema -> deserialization_failure AppError
//   - transport error or non-2xx  -> upstream_* AppError
package querying

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"casenotify/internal/types"
)

// CaseLookup reads cases, their status history and roles from the case
// registry.
type CaseLookup interface {
	GetCase(ctx context.Context, caseURL string) (types.Case, error)
	GetCaseStatuses(ctx context.Context, caseURL string) (types.CaseStatuses, error)
	GetLastCaseType(ctx context.Context, statuses types.CaseStatuses) (types.CaseType, error)
	GetCaseInitiator(ctx context.Context, caseURL string) (types.Identification, error)
}

// DecisionLookup reads decisions and decision types from the case registry.
type DecisionLookup interface {
	GetDecision(ctx context.Context, decisionURL string) (types.Decision, error)
	GetDecisionType(ctx context.Context, decisionTypeURL string) (types.DecisionType, error)
}

// PartyLookup finds a party by its identification. caseIdentification, when
// not empty, selects a digital address registered specifically for that case.
type PartyLookup interface {
	GetParty(ctx context.Context, id types.Identification, caseIdentification string) (types.CommonPartyData, error)
}

// TaskLookup reads a task object.
type TaskLookup interface {
	GetTask(ctx context.Context, objectURL string) (types.CommonTaskData, error)
}

// MessageLookup reads a message object.
type MessageLookup interface {
	GetMessage(ctx context.Context, objectURL string) (types.CommonMessageData, error)
}

// FeedbackRegister records a sent notification as a contact moment and links
// it to the case and the party. Every call returns the raw response body so
// failures can be reported verbatim.
type FeedbackRegister interface {
	CreateContactMoment(ctx context.Context, in ContactMomentInput) (ContactMoment, []byte, error)
	LinkCaseToContactMoment(ctx context.Context, cm ContactMoment, caseID string) ([]byte, error)
	LinkPartyToContactMoment(ctx context.Context, cm ContactMoment, party PartyRef) ([]byte, error)
}

// ContactMomentInput describes a contact moment to register.
type ContactMomentInput struct {
	Method  types.NotifyMethod
	Subject string
	Message string
	At      time.Time
}

// ContactMoment identifies a registered contact moment.
type ContactMoment struct {
	URL string
	ID  string
}

// PartyRef identifies the party a contact moment is linked to.
type PartyRef struct {
	URL string
	ID  string
}

// page is the paginated list envelope shared by all registries.
type page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// first returns the first result or a not_found AppError with the given code.
func first[T any](p page[T], code types.ErrorCode, what string) (T, error) {
	if len(p.Results) == 0 {
		var zero T
		return zero, types.NewAppError(code, what+" not found", nil)
	}
	return p.Results[0], nil
}

// withQuery appends query parameters to a path.
func withQuery(path string, params url.Values) string {
	return path + "?" + params.Encode()
}

// zgwTime accepts the date ("2006-01-02") and date-time (RFC 3339) formats
// used by the registries. null and "" decode to the zero time.
type zgwTime struct {
	time.Time
}

var zgwTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	time.DateOnly,
}

func (t *zgwTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	for _, layout := range zgwTimeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("unsupported time format %q", s)
}

// notFound rewrites an upstream 404 into the given not_found code. Other
// errors pass through unchanged.
func notFound(err error, code types.ErrorCode, what string) error {
	appErr, ok := err.(*types.AppError)
	if !ok || appErr.Code != types.ErrCodeUpstreamHTTP {
		return err
	}
	if status, _ := appErr.Details["status"].(int); status == 404 {
		return types.NewAppErrorWithDetails(code, what+" not found", appErr, appErr.Details)
	}
	return err
}
