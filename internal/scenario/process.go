package scenario

import (
	"context"
	"log/slog"

	"casenotify/internal/querying"
	"casenotify/internal/telemetry"
	"casenotify/internal/types"
)

// Process runs the fixed steps of the resolved scenario: prepare the data,
// choose the method from the party's distribution channel, build the notify
// data, dispatch it and report completion. The completion report never
// changes the returned result.
func Process(ctx context.Context, d *Deps, ev types.Event, res Resolution) types.ProcessingResult {
	sc := res.Scenario
	if sc.prepare == nil {
		sc = For(res.Kind)
	}
	logger := d.logger().With("scenario", sc.Kind().String())

	prepared, err := sc.prepare(ctx, d, ev, res)
	if err != nil {
		return classify(ctx, logger, sc, err)
	}

	method, err := prepared.Party.Method()
	if err != nil {
		return classify(ctx, logger, sc, err)
	}

	templateID, ok := d.Templates.Lookup(sc.Kind().String(), string(method))
	if !ok {
		return classify(ctx, logger, sc, types.NewAppError(types.ErrCodeInternalConfiguration,
			"no template configured for "+sc.Kind().String()+"/"+string(method), nil))
	}

	data := types.NotifyData{
		Method:          method,
		ContactDetails:  prepared.Party.ContactDetails(),
		TemplateID:      templateID,
		Personalization: sc.Personalization(prepared),
		Reference: types.NotifyReference{
			Event:   ev,
			CaseID:  prepared.Case.ID,
			PartyID: prepared.Party.ID,
		},
	}

	sent := d.Notify.Send(ctx, data)
	if !sent.IsSuccess {
		return classify(ctx, logger, sc, sent.AsError())
	}

	logger.InfoContext(ctx, "notification sent",
		"method", method,
		"notification_id", sent.NotificationID,
	)

	report(ctx, d, logger, telemetry.Report{
		Method:  method,
		Subject: sc.Description(),
		Message: sentMessage(method),
		CaseID:  prepared.Case.ID,
		Party:   querying.PartyRef{URL: prepared.Party.URL, ID: prepared.Party.ID},
	})

	return types.Success(sc.Description(), sentMessage(method))
}

// report runs the completion report in its own error scope.
func report(ctx context.Context, d *Deps, logger *slog.Logger, r telemetry.Report) {
	if d.Reporter == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			logger.ErrorContext(ctx, "completion report panicked", "panic", rec)
		}
	}()

	result := d.Reporter.Report(ctx, r)
	if !result.IsSuccess() {
		details := result.Details()
		logger.WarnContext(ctx, "completion report failed",
			"error_code", details.ErrorCode,
			"message", details.Message,
		)
	}
}

func classify(ctx context.Context, logger *slog.Logger, sc Scenario, err error) types.ProcessingResult {
	result := types.ResultFromError(sc.Description(), err)
	details := result.Details()

	level := slog.LevelWarn
	if result.Status() == types.StatusAborted {
		level = slog.LevelInfo
	}
	logger.Log(ctx, level, "scenario did not complete",
		"status", result.Status(),
		"error_code", details.ErrorCode,
		"message", details.Message,
	)
	return result
}

func sentMessage(method types.NotifyMethod) string {
	if method == types.MethodSMS {
		return "De sms-notificatie is verstuurd."
	}
	return "De e-mailnotificatie is verstuurd."
}

func (d *Deps) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}
