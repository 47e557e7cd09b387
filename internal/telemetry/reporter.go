// Package telemetry reports the completion of a notification back to the
// case-management system as a contact moment linked to the case and party.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"casenotify/internal/querying"
	"casenotify/internal/types"
)

// Report is what gets registered for one delivered (or failed) notification.
type Report struct {
	Method  types.NotifyMethod
	Subject string
	Message string
	// CaseID is empty for notifications that are not about a case; the case
	// link step is then skipped.
	CaseID string
	Party  querying.PartyRef
}

// Reporter performs the three sequential writes: create the contact moment,
// link it to the case, link it to the party. There is no rollback; a failure
// halfway leaves the earlier writes in place.
type Reporter struct {
	feedback querying.FeedbackRegister
	clock    types.Clock
	logger   *slog.Logger
}

// NewReporter creates a Reporter on top of the configured feedback register.
func NewReporter(feedback querying.FeedbackRegister, clock types.Clock, logger *slog.Logger) *Reporter {
	if clock == nil {
		clock = types.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reporter{feedback: feedback, clock: clock, logger: logger}
}

const description = "Contactmoment registreren"

// Report registers r and returns Success, or a Failure carrying the raw
// response body of the step that failed.
func (rp *Reporter) Report(ctx context.Context, r Report) types.ProcessingResult {
	moment, raw, err := rp.feedback.CreateContactMoment(ctx, querying.ContactMomentInput{
		Method:  r.Method,
		Subject: r.Subject,
		Message: r.Message,
		At:      rp.clock.Now(),
	})
	if err != nil {
		return rp.failed(ctx, "create contact moment", raw, err)
	}

	if r.CaseID != "" {
		raw, err = rp.feedback.LinkCaseToContactMoment(ctx, moment, r.CaseID)
		if err != nil {
			return rp.failed(ctx, "link case", raw, err)
		}
	}

	raw, err = rp.feedback.LinkPartyToContactMoment(ctx, moment, r.Party)
	if err != nil {
		return rp.failed(ctx, "link party", raw, err)
	}

	rp.logger.InfoContext(ctx, "contact moment registered",
		"contact_moment", moment.URL,
		"case_id", r.CaseID,
		"method", r.Method,
	)
	return types.Success(description, "Het contactmoment is geregistreerd.")
}

func (rp *Reporter) failed(ctx context.Context, step string, raw []byte, err error) types.ProcessingResult {
	rp.logger.ErrorContext(ctx, "registering contact moment failed",
		"step", step,
		"error", err,
	)

	message := fmt.Sprintf("%s: %v", step, err)
	code := types.ErrCodeUpstreamTelemetry
	var appErr *types.AppError
	if errors.As(err, &appErr) {
		message = fmt.Sprintf("%s: %s", step, appErr.Message)
	}

	result := types.Failure(description, message).WithErrorCode(code, false)
	if len(raw) > 0 {
		result = result.WithCases(string(raw))
	}
	return result
}
