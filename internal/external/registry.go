package external

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"casenotify/internal/config"
	"casenotify/internal/types"
)

// ---------------------------------------------------------------------------
// Client Registry
//
// Central factory that instantiates all external clients once, at startup.
// Registries are always real; only the notification provider is replaced by
// a stub in test/local mode so nothing is delivered to real recipients.
// ---------------------------------------------------------------------------

// ClientRegistry holds all external clients. It is the single point of access
// for the rest of the application to interact with the backends.
type ClientRegistry struct {
	OpenZaak  Registry
	OpenKlant Registry
	Objecten  Registry

	// ContactMomenten is the legacy contact moment registry. It is nil when
	// OpenKlant version 2 is configured; feedback then goes to OpenKlant.
	ContactMomenten Registry

	Notify NotifyProvider
}

// RegistryOption is a functional option for configuring a ClientRegistry.
type RegistryOption func(*registryConfig)

type registryConfig struct {
	httpClient *http.Client
	clock      types.Clock
	baseOpts   []BaseClientOption
}

// WithHTTPClient overrides the HTTP client shared by all registry clients.
func WithHTTPClient(c *http.Client) RegistryOption {
	return func(rc *registryConfig) {
		rc.httpClient = c
	}
}

// WithClock overrides the clock used to sign tokens.
func WithClock(c types.Clock) RegistryOption {
	return func(rc *registryConfig) {
		rc.clock = c
	}
}

// WithBaseClientOptions passes options to every BaseClient the registry builds.
func WithBaseClientOptions(opts ...BaseClientOption) RegistryOption {
	return func(rc *registryConfig) {
		rc.baseOpts = append(rc.baseOpts, opts...)
	}
}

// NewClientRegistry initializes all external clients from configuration.
// If cfg.IsTestMode is true or cfg.Environment is "local", the notification
// provider is a StubNotifyProvider.
func NewClientRegistry(cfg *config.Config, logger *slog.Logger, opts ...RegistryOption) (*ClientRegistry, error) {
	if logger == nil {
		logger = slog.Default()
	}

	rc := &registryConfig{
		// Registries answer quickly or not at all; the request budget is
		// spent across several calls.
		httpClient: &http.Client{Timeout: 10 * time.Second},
		clock:      types.SystemClock{},
	}
	for _, opt := range opts {
		opt(rc)
	}

	zgwAuth := &ZGWTokenAuthorizer{
		ClientID: cfg.OpenZaak.ClientID,
		Secret:   cfg.OpenZaak.Secret,
		UserID:   cfg.OpenZaak.UserID,
		UserName: cfg.OpenZaak.UserName,
		Clock:    rc.clock,
	}

	newRegistry := func(name, domain string, auth Authorizer) *RegistryClient {
		base := NewBaseClient(rc.httpClient, name, DefaultRetryPolicy(), userAgent(cfg), rc.baseOpts...)
		return NewRegistryClient(base, RegistryClientConfig{
			Name:    name,
			BaseURL: domain,
			Auth:    auth,
			Logger:  logger.With("client", name),
		})
	}

	reg := &ClientRegistry{
		OpenZaak: newRegistry("openzaak", cfg.OpenZaak.Domain, zgwAuth),
		Objecten: newRegistry("objecten", cfg.Objecten.Domain, StaticTokenAuthorizer{Token: cfg.Objecten.Token}),
	}

	switch cfg.OpenKlant.Version {
	case config.SchemaV1:
		reg.OpenKlant = newRegistry("openklant", cfg.OpenKlant.Domain, zgwAuth)
		reg.ContactMomenten = newRegistry("contactmomenten", cfg.ContactMomenten.Domain, zgwAuth)
	case config.SchemaV2:
		reg.OpenKlant = newRegistry("openklant", cfg.OpenKlant.Domain, StaticTokenAuthorizer{Token: cfg.OpenKlant.Token})
	default:
		return nil, types.NewAppError(types.ErrCodeInternalConfiguration,
			fmt.Sprintf("unsupported OpenKlant version %d", cfg.OpenKlant.Version), nil)
	}

	if cfg.IsTestMode || cfg.Environment == "local" {
		logger.Info("initializing notification provider in STUB mode",
			"is_test_mode", cfg.IsTestMode,
			"environment", cfg.Environment,
		)
		reg.Notify = NewStubNotifyProvider(logger.With("mode", "stub"))
		return reg, nil
	}

	logger.Info("initializing notification provider in PRODUCTION mode",
		"environment", cfg.Environment,
		"base_url", cfg.Notify.BaseURL,
	)
	notifyBase := NewBaseClient(
		&http.Client{Timeout: 10 * time.Second},
		"notify",
		RetryPolicy{MaxRetries: 2, MinWait: 500 * time.Millisecond, MaxWait: 5 * time.Second},
		userAgent(cfg),
		rc.baseOpts...,
	)
	notify, err := NewNotifyClientWithBase(notifyBase, NotifyClientConfig{
		APIKey:  cfg.Notify.APIKey,
		BaseURL: cfg.Notify.BaseURL,
		Logger:  logger.With("client", "notify"),
		Clock:   rc.clock,
	})
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalConfiguration, "invalid notify API key", err)
	}
	reg.Notify = notify

	return reg, nil
}

func userAgent(cfg *config.Config) string {
	version := cfg.Build.Version
	if version == "" {
		version = "dev"
	}
	return fmt.Sprintf("%s/%s", cfg.Service, version)
}
