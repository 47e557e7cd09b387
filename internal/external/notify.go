package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"casenotify/internal/types"
)

// EmailRequest is the body of POST /v2/notifications/email.
type EmailRequest struct {
	EmailAddress    string         `json:"email_address"`
	TemplateID      string         `json:"template_id"`
	Personalisation map[string]any `json:"personalisation,omitempty"`
	Reference       string         `json:"reference,omitempty"`
}

// SmsRequest is the body of POST /v2/notifications/sms.
type SmsRequest struct {
	PhoneNumber     string         `json:"phone_number"`
	TemplateID      string         `json:"template_id"`
	Personalisation map[string]any `json:"personalisation,omitempty"`
	Reference       string         `json:"reference,omitempty"`
}

// NotificationResponse is the provider's answer to a send request.
type NotificationResponse struct {
	ID        string `json:"id"`
	Reference string `json:"reference"`
	URI       string `json:"uri"`
	Content   struct {
		Subject    string `json:"subject"`
		Body       string `json:"body"`
		FromEmail  string `json:"from_email"`
		FromNumber string `json:"from_number"`
	} `json:"content"`
	Template struct {
		ID      string `json:"id"`
		Version int    `json:"version"`
	} `json:"template"`
}

// TemplatePreview is the provider's rendering of a template.
type TemplatePreview struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Version int    `json:"version"`
	Body    string `json:"body"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// notifyKeyIDLength is the length of the service id and the secret at the end
// of a provider API key ("{name}-{service id}-{secret}").
const notifyKeyIDLength = 36

// ParseNotifyAPIKey splits a provider API key into service id and secret.
func ParseNotifyAPIKey(key string) (serviceID string, secret string, err error) {
	if len(key) < 2*notifyKeyIDLength+1 {
		return "", "", fmt.Errorf("notify API key is too short")
	}
	secret = key[len(key)-notifyKeyIDLength:]
	serviceID = key[len(key)-2*notifyKeyIDLength-1 : len(key)-notifyKeyIDLength-1]

	if _, err := uuid.Parse(serviceID); err != nil {
		return "", "", fmt.Errorf("notify API key has an invalid service id: %w", err)
	}
	if _, err := uuid.Parse(secret); err != nil {
		return "", "", fmt.Errorf("notify API key has an invalid secret: %w", err)
	}
	return serviceID, secret, nil
}

// NotifyClientConfig holds the configuration for creating a NotifyClient.
type NotifyClientConfig struct {
	APIKey  types.SecretString
	BaseURL string
	Logger  *slog.Logger
	Clock   types.Clock
}

// NotifyClient implements NotifyProvider over HTTP. It is built once at
// startup and shared by all requests; it carries no per-request state.
type NotifyClient struct {
	base    *BaseClient
	auth    Authorizer
	baseURL string
	logger  *slog.Logger
}

// NewNotifyClient creates a NotifyClient with the provider's recommended
// retry policy. The httpClient timeout should be around 10 seconds.
func NewNotifyClient(httpClient *http.Client, cfg NotifyClientConfig) (*NotifyClient, error) {
	base := NewBaseClient(
		httpClient,
		"notify",
		RetryPolicy{
			MaxRetries: 2,
			MinWait:    500 * time.Millisecond,
			MaxWait:    5 * time.Second,
		},
		"CaseNotify/1.0",
	)
	return NewNotifyClientWithBase(base, cfg)
}

// NewNotifyClientWithBase creates a NotifyClient with a pre-configured
// BaseClient, e.g. without retries in tests.
func NewNotifyClientWithBase(base *BaseClient, cfg NotifyClientConfig) (*NotifyClient, error) {
	serviceID, secret, err := ParseNotifyAPIKey(cfg.APIKey.Unmask())
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &NotifyClient{
		base: base,
		auth: &NotifyTokenAuthorizer{
			ServiceID: serviceID,
			Secret:    types.SecretString(secret),
			Clock:     cfg.Clock,
		},
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		logger:  logger,
	}, nil
}

// SendEmail sends an email notification.
func (c *NotifyClient) SendEmail(ctx context.Context, req EmailRequest) (*NotificationResponse, error) {
	var out NotificationResponse
	if err := c.post(ctx, "SendEmail", "/v2/notifications/email", req, http.StatusCreated, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendSms sends a text message notification.
func (c *NotifyClient) SendSms(ctx context.Context, req SmsRequest) (*NotificationResponse, error) {
	var out NotificationResponse
	if err := c.post(ctx, "SendSms", "/v2/notifications/sms", req, http.StatusCreated, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PreviewTemplate renders a template with the given personalisation.
func (c *NotifyClient) PreviewTemplate(ctx context.Context, templateID string, personalisation map[string]any) (*TemplatePreview, error) {
	body := map[string]any{"personalisation": personalisation}
	path := "/v2/template/" + url.PathEscape(templateID) + "/preview"

	var out TemplatePreview
	if err := c.post(ctx, "PreviewTemplate", path, body, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *NotifyClient) post(ctx context.Context, operation, path string, body any, want int, dst any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected,
			fmt.Sprintf("%s: failed to marshal notify payload", operation), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected,
			fmt.Sprintf("%s: failed to create notify request", operation), err)
	}
	req.Header.Set("Content-Type", "application/json")
	if err := c.auth.Authorize(req); err != nil {
		return types.NewAppError(types.ErrCodeInternalConfiguration,
			fmt.Sprintf("%s: failed to sign notify request", operation), err)
	}

	resp, err := c.base.Do(req)
	if err != nil {
		return c.wrapNotifyError(operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		return c.handleErrorResponse(resp, operation)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return types.NewAppError(types.ErrCodeDeserializationFailure,
			fmt.Sprintf("%s: notify response does not match the expected schema", operation), err)
	}
	return nil
}

// notifyErrorResponse is the JSON error body returned by the provider.
type notifyErrorResponse struct {
	StatusCode int `json:"status_code"`
	Errors     []struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	} `json:"errors"`
}

// handleErrorResponse maps a provider error response to an AppError.
//   - 429 -> ErrCodeUpstreamRateLimited
//   - 5xx -> ErrCodeUpstreamUnavailable
//   - other -> ErrCodeUpstreamNotify carrying the provider's messages
func (c *NotifyClient) handleErrorResponse(resp *http.Response, operation string) error {
	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if readErr != nil {
		return types.NewAppError(types.ErrCodeUpstreamNotify,
			fmt.Sprintf("%s: notify returned status %d and the body was unreadable", operation, resp.StatusCode),
			readErr)
	}

	message := string(body)
	var parsed notifyErrorResponse
	if err := json.Unmarshal(body, &parsed); err == nil && len(parsed.Errors) > 0 {
		parts := make([]string, 0, len(parsed.Errors))
		for _, e := range parsed.Errors {
			parts = append(parts, e.Error+": "+e.Message)
		}
		message = strings.Join(parts, "; ")
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return types.NewAppError(types.ErrCodeUpstreamRateLimited,
			fmt.Sprintf("%s: notify rate limit exceeded", operation), nil)
	case resp.StatusCode >= 500:
		return types.NewAppError(types.ErrCodeUpstreamUnavailable,
			fmt.Sprintf("%s: notify server error: %s", operation, message), nil)
	default:
		return types.NewAppErrorWithDetails(types.ErrCodeUpstreamNotify,
			fmt.Sprintf("%s: notify error (%d): %s", operation, resp.StatusCode, message),
			nil,
			map[string]any{"response": string(body)},
		)
	}
}

// wrapNotifyError wraps a BaseClient transport error with context.
func (c *NotifyClient) wrapNotifyError(operation string, err error) error {
	if _, ok := err.(*types.AppError); ok {
		return err
	}
	return types.NewAppError(types.ErrCodeUpstreamNotify,
		fmt.Sprintf("%s: notify request failed: %v", operation, err), err)
}

// Compile-time assertion that NotifyClient satisfies NotifyProvider.
var _ NotifyProvider = (*NotifyClient)(nil)
