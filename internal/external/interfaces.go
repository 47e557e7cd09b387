package external

import (
	"context"
)

// ---------------------------------------------------------------------------
// Registry Integration (cases, parties, objects, contact moments)
// ---------------------------------------------------------------------------

// Registry abstracts a JSON registry API. The query layer depends on this
// interface so it can be exercised against httptest servers or fakes.
type Registry interface {
	// Name returns the registry identifier used in logs ("openzaak", ...).
	Name() string

	// BaseURL returns the registry domain without trailing slash.
	BaseURL() string

	// Resolve turns a relative path into an absolute URL on the registry.
	// Absolute URLs are returned unchanged.
	Resolve(pathOrURL string) string

	// GetJSON fetches a resource and decodes it into dst.
	GetJSON(ctx context.Context, pathOrURL string, dst any) error

	// PostJSON creates a resource. The raw response body is returned even
	// when the call fails so it can be reported.
	PostJSON(ctx context.Context, pathOrURL string, body, dst any) ([]byte, error)

	// Version reports the API version advertised by the registry.
	Version(ctx context.Context, path string) (string, error)
}

// ---------------------------------------------------------------------------
// Notification Integration (GOV.UK Notify compatible provider)
// ---------------------------------------------------------------------------

// NotifyProvider abstracts the notification provider. Implementations return
// provider errors as AppErrors with code ErrCodeUpstreamNotify or one of the
// upstream_ transport codes.
type NotifyProvider interface {
	// SendEmail delivers an email rendered from a provider template.
	SendEmail(ctx context.Context, req EmailRequest) (*NotificationResponse, error)

	// SendSms delivers a text message rendered from a provider template.
	SendSms(ctx context.Context, req SmsRequest) (*NotificationResponse, error)

	// PreviewTemplate renders a template without sending anything.
	PreviewTemplate(ctx context.Context, templateID string, personalisation map[string]any) (*TemplatePreview, error)
}

var _ Registry = (*RegistryClient)(nil)
