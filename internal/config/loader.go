// loader.go implements the configuration loading lifecycle.
//
// The loading sequence is:
//  1. Enforce UTC timezone.
//  2. Load dotenv files via godotenv (the default .env is optional).
//  3. Use envconfig to process struct tags and populate the Config struct.
//  4. Populate BuildInfo from linker-injected variables.
//  5. Validate the struct using go-playground/validator.
//  6. Require an API key unless running in test mode.
package config

import (
	"fmt"
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

// LoadConfig loads and validates the configuration. With no arguments a .env
// file in the working directory is loaded if present; explicitly named files
// must exist. Dotenv values never override variables already in the
// environment.
func LoadConfig(envFiles ...string) (*Config, error) {
	time.Local = time.UTC

	if len(envFiles) == 0 {
		_ = godotenv.Load()
	} else if err := godotenv.Load(envFiles...); err != nil {
		return nil, &ConfigError{
			Type:    ErrDotenv,
			Message: "failed to load env file",
			Err:     err,
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, &ConfigError{
			Type:    ErrParsing,
			Message: "failed to process environment configuration",
			Err:     err,
		}
	}

	cfg.Build = NewBuildInfo()

	if err := NewValidator().Struct(cfg); err != nil {
		return nil, &ConfigError{
			Type:    ErrValidation,
			Message: "configuration validation failed",
			Err:     err,
		}
	}

	if !cfg.IsTestMode && !cfg.Weather.APIKey.IsSet() {
		return nil, &ConfigError{
			Type:    ErrMissingEnv,
			Message: "OPENWEATHER_API_KEY is required",
		}
	}

	return &cfg, nil
}

// NewValidator returns a validator with the config-specific rules registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("not_placeholder", func(fl validator.FieldLevel) bool {
		return fl.Field().String() != PlaceholderAPIKey
	})
	return v
}
