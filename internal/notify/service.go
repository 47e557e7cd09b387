package notify

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"casenotify/internal/external"
	"casenotify/internal/types"
)

// Result is the outcome of one call to the notification provider. Provider
// errors are captured here and never returned as Go errors.
type Result struct {
	IsSuccess      bool
	NotificationID string
	// Content is the rendered body (or the preview body).
	Content string
	// Subject is the rendered email subject, empty for text messages.
	Subject string
	Error   string
	Code    types.ErrorCode
	// Response is the raw provider error body, when there was one.
	Response string
}

// Service dispatches notifications through the injected provider. It holds
// no per-request state and is safe for concurrent use.
type Service struct {
	provider           external.NotifyProvider
	defaultCountryCode string
	logger             *slog.Logger
}

// NewService creates a Service. defaultCountryCode (e.g. "+31") is prefixed to
// phone numbers that do not carry one.
func NewService(provider external.NotifyProvider, defaultCountryCode string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if defaultCountryCode == "" {
		defaultCountryCode = "+31"
	}
	return &Service{
		provider:           provider,
		defaultCountryCode: defaultCountryCode,
		logger:             logger,
	}
}

// Send dispatches prepared notification data by its method.
func (s *Service) Send(ctx context.Context, data types.NotifyData) Result {
	reference, err := data.Reference.Encode()
	if err != nil {
		return failed(err)
	}

	switch data.Method {
	case types.MethodEmail:
		return s.SendEmail(ctx, data.ContactDetails, data.TemplateID, data.Personalization, reference)
	case types.MethodSMS:
		return s.SendSms(ctx, data.ContactDetails, data.TemplateID, data.Personalization, reference)
	default:
		return failed(types.NewAppError(types.ErrCodeAbortNoContactDetails,
			"unsupported notification method "+string(data.Method), nil))
	}
}

// SendEmail sends an email rendered from templateID.
func (s *Service) SendEmail(ctx context.Context, emailAddress, templateID string, personalization map[string]any, reference string) Result {
	if strings.TrimSpace(emailAddress) == "" {
		return failed(types.NewAppError(types.ErrCodeAbortNoContactDetails, "email address is empty", nil))
	}

	resp, err := s.provider.SendEmail(ctx, external.EmailRequest{
		EmailAddress:    strings.TrimSpace(emailAddress),
		TemplateID:      templateID,
		Personalisation: personalization,
		Reference:       reference,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "sending email failed",
			"template_id", templateID,
			"error", err,
		)
		return failed(err)
	}

	return Result{
		IsSuccess:      true,
		NotificationID: resp.ID,
		Content:        resp.Content.Body,
		Subject:        resp.Content.Subject,
	}
}

// SendSms sends a text message rendered from templateID. Numbers without a
// country code get the default one.
func (s *Service) SendSms(ctx context.Context, phoneNumber, templateID string, personalization map[string]any, reference string) Result {
	number := NormalizePhoneNumber(phoneNumber, s.defaultCountryCode)
	if number == "" {
		return failed(types.NewAppError(types.ErrCodeAbortNoContactDetails, "phone number is empty", nil))
	}

	resp, err := s.provider.SendSms(ctx, external.SmsRequest{
		PhoneNumber:     number,
		TemplateID:      templateID,
		Personalisation: personalization,
		Reference:       reference,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "sending sms failed",
			"template_id", templateID,
			"error", err,
		)
		return failed(err)
	}

	return Result{
		IsSuccess:      true,
		NotificationID: resp.ID,
		Content:        resp.Content.Body,
	}
}

// PreviewTemplate renders templateID with the given personalization without
// sending anything.
func (s *Service) PreviewTemplate(ctx context.Context, templateID string, personalization map[string]any) Result {
	preview, err := s.provider.PreviewTemplate(ctx, templateID, personalization)
	if err != nil {
		return failed(err)
	}
	return Result{
		IsSuccess: true,
		Content:   preview.Body,
		Subject:   preview.Subject,
	}
}

func failed(err error) Result {
	r := Result{Error: err.Error(), Code: types.ErrCodeUpstreamNotify}

	var appErr *types.AppError
	if errors.As(err, &appErr) {
		r.Error = appErr.Message
		r.Code = appErr.Code
		if resp, ok := appErr.Details["response"].(string); ok {
			r.Response = resp
		}
	}
	return r
}

// AsError converts a failed Result back into an AppError for the result
// taxonomy. It returns nil for successful results.
func (r Result) AsError() error {
	if r.IsSuccess {
		return nil
	}
	details := map[string]any{}
	if r.Response != "" {
		details["response"] = r.Response
	}
	return types.NewAppErrorWithDetails(r.Code, r.Error, nil, details)
}

// NormalizePhoneNumber strips formatting characters and makes sure the number
// carries a country code: "06 1234 5678" becomes "+31612345678" with the
// default "+31"; "0031612345678" becomes "+31612345678".
func NormalizePhoneNumber(number, defaultCountryCode string) string {
	var b strings.Builder
	for i, r := range strings.TrimSpace(number) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case digits == "" || digits == "+":
		return ""
	case strings.HasPrefix(digits, "+"):
		return digits
	case strings.HasPrefix(digits, "00"):
		return "+" + digits[2:]
	case strings.HasPrefix(digits, "0"):
		return defaultCountryCode + digits[1:]
	default:
		return defaultCountryCode + digits
	}
}
