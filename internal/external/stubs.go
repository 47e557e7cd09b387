package external

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// StubNotifyProvider implements NotifyProvider by logging calls and returning
// a fake notification. Used when config.IsTestMode is true or APP_ENV=local,
// so the service can boot without provider credentials. Every request is
// recorded and can be inspected with Sent.
type StubNotifyProvider struct {
	logger *slog.Logger

	mu   sync.Mutex
	sent []any
}

// NewStubNotifyProvider creates a new StubNotifyProvider.
func NewStubNotifyProvider(logger *slog.Logger) *StubNotifyProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &StubNotifyProvider{logger: logger}
}

func (s *StubNotifyProvider) SendEmail(ctx context.Context, req EmailRequest) (*NotificationResponse, error) {
	s.logger.InfoContext(ctx, "stub: SendEmail called",
		"template_id", req.TemplateID,
		"reference", req.Reference,
	)
	s.record(req)

	resp := &NotificationResponse{ID: uuid.NewString(), Reference: req.Reference}
	resp.Content.Subject = "stub"
	resp.Content.Body = fmt.Sprintf("stub email rendered from template %s", req.TemplateID)
	resp.Template.ID = req.TemplateID
	return resp, nil
}

func (s *StubNotifyProvider) SendSms(ctx context.Context, req SmsRequest) (*NotificationResponse, error) {
	s.logger.InfoContext(ctx, "stub: SendSms called",
		"template_id", req.TemplateID,
		"reference", req.Reference,
	)
	s.record(req)

	resp := &NotificationResponse{ID: uuid.NewString(), Reference: req.Reference}
	resp.Content.Body = fmt.Sprintf("stub sms rendered from template %s", req.TemplateID)
	resp.Template.ID = req.TemplateID
	return resp, nil
}

func (s *StubNotifyProvider) PreviewTemplate(ctx context.Context, templateID string, personalisation map[string]any) (*TemplatePreview, error) {
	s.logger.InfoContext(ctx, "stub: PreviewTemplate called",
		"template_id", templateID,
		"fields", len(personalisation),
	)
	return &TemplatePreview{
		ID:   templateID,
		Type: "email",
		Body: fmt.Sprintf("stub preview of template %s", templateID),
	}, nil
}

// Sent returns a copy of the requests received so far (EmailRequest or
// SmsRequest values, in order).
func (s *StubNotifyProvider) Sent() []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]any(nil), s.sent...)
}

func (s *StubNotifyProvider) record(req any) {
	s.mu.Lock()
	s.sent = append(s.sent, req)
	s.mu.Unlock()
}

var _ NotifyProvider = (*StubNotifyProvider)(nil)
