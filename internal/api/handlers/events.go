// Package handlers contains the HTTP handlers of the case-notification
// service. Handlers translate requests into pipeline calls and processing
// results into response envelopes; they hold no business logic.
package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"casenotify/internal/config"
	"casenotify/internal/core"
	"casenotify/internal/querying"
	"casenotify/internal/types"
)

// EventProcessor runs the notification pipeline for a raw event body.
type EventProcessor interface {
	HandleEvent(ctx context.Context, body []byte) types.ProcessingResult
}

// VersionSource reports the API versions of the upstream registries.
type VersionSource interface {
	Versions(ctx context.Context) []querying.Version
}

// EventsHandler serves the webhook that receives case-management events.
type EventsHandler struct {
	processor EventProcessor
	versions  VersionSource
	build     config.BuildInfo
	logger    *slog.Logger
}

// NewEventsHandler creates an EventsHandler.
func NewEventsHandler(processor EventProcessor, versions VersionSource, build config.BuildInfo, logger *slog.Logger) *EventsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventsHandler{
		processor: processor,
		versions:  versions,
		build:     build,
		logger:    logger,
	}
}

// RegisterRoutes mounts the events endpoints.
func (h *EventsHandler) RegisterRoutes(r chi.Router) {
	r.Route("/events", func(r chi.Router) {
		r.Post("/listen", h.Listen)
		r.Get("/version", h.Version)
	})
}

// Listen processes one event and answers with its processing outcome.
func (h *EventsHandler) Listen(w http.ResponseWriter, r *http.Request) {
	body, err := core.ReadBody(w, r)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	result := h.processor.HandleEvent(r.Context(), body)
	core.WriteResult(w, r, result)
}

// Version answers with the service version and the versions reported by the
// upstream registries. Unresolved versions are left empty.
func (h *EventsHandler) Version(w http.ResponseWriter, r *http.Request) {
	parts := []string{"Service: " + h.build.ServiceVersion()}
	if h.versions != nil {
		for _, v := range h.versions.Versions(r.Context()) {
			parts = append(parts, fmt.Sprintf("%s: %s", v.Name, v.Version))
		}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(strings.Join(parts, " | ")))
}
