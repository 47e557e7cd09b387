// Package config defines the configuration of the case-notification service.
// Configuration is loaded once at process start and is immutable thereafter.
//
// Values are resolved via a priority chain:
//
//	OS Environment (Highest) -> Dotenv File (Lowest)
//
// Any missing required value or invalid format makes LoadConfig fail, and the
// process refuses to start.
package config

import (
	"time"

	"casenotify/internal/types"
)

// SecretString is an alias for types.SecretString.
type SecretString = types.SecretString

// Backend schema versions understood by the query layer.
const (
	SchemaV1 = 1
	SchemaV2 = 2
)

// Config is the top-level configuration struct. Sub-components receive only
// the subsets they require.
type Config struct {
	// System Metadata
	Environment string `envconfig:"APP_ENV" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"casenotify"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	IsTestMode  bool   `envconfig:"IS_TEST_MODE" default:"false"`

	Server          ServerConfig
	OpenZaak        OpenZaakConfig
	OpenKlant       OpenKlantConfig
	Objecten        ObjectenConfig
	ContactMomenten ContactMomentenConfig
	Notify          NotifyConfig
	Whitelist       WhitelistConfig
	Observability   ObservabilityConfig

	// Build Metadata (Injected via ldflags, not Env)
	Build BuildInfo
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           string        `envconfig:"PORT" default:"8080"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"29s"`
}

// OpenZaakConfig holds the case registry (cases, statuses, roles, decisions)
// connection. Requests are authorized with an HS256 JWT.
type OpenZaakConfig struct {
	Domain   string       `envconfig:"OPENZAAK_DOMAIN" validate:"required,url"`
	ClientID string       `envconfig:"ZGW_AUTH_CLIENT_ID" validate:"required"`
	Secret   SecretString `envconfig:"ZGW_AUTH_SECRET" validate:"required"`
	UserID   string       `envconfig:"ZGW_AUTH_USER_ID" default:"casenotify"`
	UserName string       `envconfig:"ZGW_AUTH_USER_NAME" default:"Case Notify"`
}

// OpenKlantConfig holds the party registry connection. Version 1 is the
// legacy flat "klanten" schema authorized with the ZGW JWT; version 2 is the
// relational "partijen"/"digitaleAdressen" schema authorized with a token.
// The version also selects the feedback (contact moment) backend.
type OpenKlantConfig struct {
	Version int          `envconfig:"OPENKLANT_VERSION" default:"2" validate:"oneof=1 2"`
	Domain  string       `envconfig:"OPENKLANT_DOMAIN" validate:"required,url"`
	Token   SecretString `envconfig:"OPENKLANT_TOKEN"`
}

// ObjectenConfig holds the object registry connection (tasks and messages).
type ObjectenConfig struct {
	Version         int          `envconfig:"OBJECTEN_VERSION" default:"2" validate:"oneof=1 2"`
	Domain          string       `envconfig:"OBJECTEN_DOMAIN" validate:"required,url"`
	Token           SecretString `envconfig:"OBJECTEN_TOKEN" validate:"required"`
	TaskTypeID      string       `envconfig:"OBJECTTYPE_TASK_UUID" validate:"required,uuid"`
	MessageTypeID   string       `envconfig:"OBJECTTYPE_MESSAGE_UUID" validate:"required,uuid"`
	CaseURLTemplate string       `envconfig:"TASK_CASE_URL_TEMPLATE" default:"{domain}/zaken/api/v1/zaken/{uuid}"`
}

// ContactMomentenConfig holds the legacy contact moment registry used for
// feedback when OpenKlant version 1 is configured.
type ContactMomentenConfig struct {
	Domain             string `envconfig:"CONTACTMOMENTEN_DOMAIN" validate:"omitempty,url"`
	SourceOrganization string `envconfig:"CONTACTMOMENTEN_RSIN" default:"000000000"`
	EmployeeID         string `envconfig:"CONTACTMOMENTEN_EMPLOYEE_ID" default:"casenotify"`
}

// NotifyConfig holds the notification provider settings.
type NotifyConfig struct {
	APIKey             SecretString `envconfig:"NOTIFY_API_KEY" validate:"required"`
	BaseURL            string       `envconfig:"NOTIFY_API_BASE_URL" default:"https://api.notifynl.nl" validate:"url"`
	DefaultCountryCode string       `envconfig:"NOTIFY_DEFAULT_COUNTRY_CODE" default:"+31" validate:"startswith=+"`
	// Templates is a JSON mapping: "scenario" -> "method" -> "template id".
	// Example: {"caseCreated": {"email": "1f2d...", "sms": "9ab0..."}}
	Templates string `envconfig:"NOTIFY_TEMPLATES_JSON" validate:"required,json"`
}

// WhitelistConfig holds the allow-lists of case type identifications per
// scenario. A single "*" entry allows every identification.
type WhitelistConfig struct {
	CaseCreated       []string `envconfig:"WHITELIST_CASE_CREATED"`
	CaseStatusUpdated []string `envconfig:"WHITELIST_CASE_STATUS_UPDATED"`
	CaseClosed        []string `envconfig:"WHITELIST_CASE_CLOSED"`
	TaskAssigned      []string `envconfig:"WHITELIST_TASK_ASSIGNED"`
	DecisionMade      []string `envconfig:"WHITELIST_DECISION_MADE"`
	MessageAllowed    bool     `envconfig:"WHITELIST_MESSAGE_ALLOWED" default:"true"`
}

// ObservabilityConfig holds telemetry and monitoring settings.
type ObservabilityConfig struct {
	MetricNamespace string `envconfig:"METRIC_NAMESPACE" default:"CaseNotify"`
	EnableMetrics   bool   `envconfig:"ENABLE_METRICS" default:"false"`
	AWSRegion       string `envconfig:"AWS_REGION" default:"eu-west-1"`
}

// ConfigErrorType categorizes configuration loading failures.
type ConfigErrorType string

const (
	// ErrValidation indicates the configuration failed struct validation rules.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates a failure when parsing environment variable values
	// into their target types.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
	// ErrTemplates indicates the notify template mapping is unusable.
	ErrTemplates ConfigErrorType = "TEMPLATES_INVALID"
)
