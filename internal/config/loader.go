// loader.go implements the configuration loading lifecycle:
//  1. Enforce UTC timezone.
//  2. Load .env file via godotenv (non-fatal if absent).
//  3. Use envconfig to process struct tags and populate the Config struct.
//  4. Populate BuildInfo from linker-injected variables.
//  5. Validate the struct using go-playground/validator, then the
//     cross-field rules that tags cannot express.
package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ConfigError is a diagnostic error type returned by LoadConfig.
type ConfigError struct {
	Type    ConfigErrorType
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// LoadConfig loads and validates the service configuration from the
// environment (and an optional .env file in the working directory).
func LoadConfig() (*Config, error) {
	time.Local = time.UTC

	// godotenv.Load does not override variables already present in the
	// environment, which gives OS variables priority over the file.
	_ = godotenv.Load()

	return process()
}

// process populates and validates a Config from the current environment.
func process() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, &ConfigError{
			Type:    ErrParsing,
			Message: "failed to process environment configuration",
			Err:     err,
		}
	}

	cfg.Build = NewBuildInfo()

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate applies the struct tag rules and the cross-field rules to cfg.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return &ConfigError{
			Type:    ErrValidation,
			Message: "configuration validation failed",
			Err:     err,
		}
	}

	switch cfg.OpenKlant.Version {
	case SchemaV1:
		if cfg.ContactMomenten.Domain == "" {
			return &ConfigError{
				Type:    ErrValidation,
				Message: "CONTACTMOMENTEN_DOMAIN is required when OPENKLANT_VERSION=1",
			}
		}
	case SchemaV2:
		if cfg.OpenKlant.Token.IsEmpty() {
			return &ConfigError{
				Type:    ErrValidation,
				Message: "OPENKLANT_TOKEN is required when OPENKLANT_VERSION=2",
			}
		}
	}

	if strings.EqualFold(cfg.Objecten.TaskTypeID, cfg.Objecten.MessageTypeID) {
		return &ConfigError{
			Type:    ErrValidation,
			Message: "OBJECTTYPE_TASK_UUID and OBJECTTYPE_MESSAGE_UUID must differ",
		}
	}

	if _, err := cfg.Notify.TemplateSet(); err != nil {
		return err
	}
	return nil
}

// TemplateSet maps scenario name -> notification method -> provider template id.
type TemplateSet map[string]map[string]string

// Lookup returns the template id for a scenario and method.
func (t TemplateSet) Lookup(scenario, method string) (string, bool) {
	byMethod, ok := t[scenario]
	if !ok {
		return "", false
	}
	id, ok := byMethod[method]
	return id, ok && id != ""
}

// TemplateSet parses the Templates JSON mapping.
func (n NotifyConfig) TemplateSet() (TemplateSet, error) {
	var set TemplateSet
	if err := json.Unmarshal([]byte(n.Templates), &set); err != nil {
		return nil, &ConfigError{
			Type:    ErrTemplates,
			Message: "NOTIFY_TEMPLATES_JSON must map scenario -> method -> template id",
			Err:     err,
		}
	}
	return set, nil
}
