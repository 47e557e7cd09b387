package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"casenotify/internal/core"
	"casenotify/internal/notify"
	"casenotify/internal/types"
)

// ReceiptProcessor handles delivery receipts posted by the notify provider.
type ReceiptProcessor interface {
	HandleDeliveryReceipt(ctx context.Context, body []byte) types.ProcessingResult
}

// TemplatePreviewer renders a template without sending it.
type TemplatePreviewer interface {
	PreviewTemplate(ctx context.Context, templateID string, personalization map[string]any) notify.Result
}

// PreviewRequest is the body of POST /test/notify/preview.
type PreviewRequest struct {
	TemplateID      string         `json:"templateId" validate:"required,uuid"`
	Personalization map[string]any `json:"personalization"`
}

// PreviewResponse carries the rendered template.
type PreviewResponse struct {
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body"`
}

// NotifyHandler serves the delivery-receipt callback and the template preview
// test endpoint.
type NotifyHandler struct {
	receipts  ReceiptProcessor
	previewer TemplatePreviewer
	validator *core.Validator
	logger    *slog.Logger
}

// NewNotifyHandler creates a NotifyHandler. previewer may be nil, in which
// case the preview endpoint is not mounted.
func NewNotifyHandler(receipts ReceiptProcessor, previewer TemplatePreviewer, validator *core.Validator, logger *slog.Logger) *NotifyHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if validator == nil {
		validator = core.NewValidator(logger)
	}
	return &NotifyHandler{
		receipts:  receipts,
		previewer: previewer,
		validator: validator,
		logger:    logger,
	}
}

// RegisterRoutes mounts the notify endpoints.
func (h *NotifyHandler) RegisterRoutes(r chi.Router) {
	r.Post("/notify/confirm", h.Confirm)
	if h.previewer != nil {
		r.Post("/test/notify/preview", h.Preview)
	}
}

// Confirm processes a delivery receipt.
func (h *NotifyHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	body, err := core.ReadBody(w, r)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.WriteResult(w, r, h.receipts.HandleDeliveryReceipt(r.Context(), body))
}

// Preview renders a template with the given personalization.
func (h *NotifyHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}
	if req.Personalization == nil {
		req.Personalization = map[string]any{}
	}

	res := h.previewer.PreviewTemplate(r.Context(), req.TemplateID, req.Personalization)
	if !res.IsSuccess {
		h.logger.WarnContext(r.Context(), "template preview failed",
			"template_id", req.TemplateID,
			"error", res.Error,
		)
		core.WriteResult(w, r, types.ResultFromError("Sjabloon voorvertonen", res.AsError()))
		return
	}

	core.JSON(w, r, http.StatusOK, PreviewResponse{Subject: res.Subject, Body: res.Content})
}
