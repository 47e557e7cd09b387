// Package pipeline is the entry point for inbound events and delivery
// receipts. It turns a raw request body into exactly one ProcessingResult.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"casenotify/internal/metrics"
	"casenotify/internal/scenario"
	"casenotify/internal/types"
)

const eventDescription = "Notificatie verwerken"

// Processor runs the event pipeline: parse, recognize pings, validate,
// resolve the scenario and process it.
type Processor struct {
	deps    *scenario.Deps
	metrics metrics.Recorder
	clock   types.Clock
	logger  *slog.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithMetrics sets the outcome recorder. Defaults to metrics.Noop.
func WithMetrics(r metrics.Recorder) Option {
	return func(p *Processor) { p.metrics = r }
}

// WithClock overrides the clock used for latency measurement.
func WithClock(c types.Clock) Option {
	return func(p *Processor) { p.clock = c }
}

// NewProcessor creates a Processor on top of the shared scenario dependencies.
func NewProcessor(deps *scenario.Deps, logger *slog.Logger, opts ...Option) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processor{
		deps:    deps,
		metrics: metrics.Noop{},
		clock:   types.SystemClock{},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// HandleEvent processes one webhook notification body. It never panics and
// never returns an error: every outcome is a ProcessingResult.
func (p *Processor) HandleEvent(ctx context.Context, body []byte) (result types.ProcessingResult) {
	start := p.clock.Now()
	kind := "none"

	defer func() {
		if rec := recover(); rec != nil {
			p.logger.ErrorContext(ctx, "panic while processing event",
				"panic", rec,
				"stack", string(debug.Stack()),
			)
			result = types.Failure(eventDescription, fmt.Sprintf("unexpected %T: %v", rec, rec)).
				WithErrorCode(types.ErrCodeInternalUnexpected, false)
		}
		p.metrics.RecordOutcome(ctx, kind, result.Status())
		p.metrics.RecordLatency(ctx, kind, p.clock.Now().Sub(start))
	}()

	ev, err := types.ParseEvent(body)
	if err != nil {
		return types.ResultFromError(eventDescription, err)
	}

	if ev.IsPing() {
		kind = "ping"
		return types.Skipped(eventDescription, "Testnotificatie ontvangen; er is niets verwerkt.")
	}

	switch check, fields := ev.Validate(); check {
	case types.HealthErrorInvalid:
		p.logger.WarnContext(ctx, "invalid event", "fields", fields)
		return types.NotPossible(eventDescription, "De notificatie mist verplichte velden.").
			WithErrorCode(types.ErrCodeValidationInvalidEvent, false).
			WithCases(fields...)
	case types.HealthOKInconsistent:
		p.logger.WarnContext(ctx, "event has unmatched fields", "fields", fields)
	}

	res, err := scenario.Resolve(ctx, p.deps.Data, p.deps.Objects, ev)
	if err != nil {
		result = types.ResultFromError(eventDescription, err)
		p.logger.InfoContext(ctx, "event not resolved",
			"status", result.Status(),
			"error", err,
		)
		return result
	}
	kind = res.Kind.String()

	p.logger.InfoContext(ctx, "event resolved",
		"scenario", kind,
		"channel", ev.Channel,
		"resource", ev.Resource,
	)
	return scenario.Process(ctx, p.deps, ev, res)
}
