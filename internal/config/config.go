// Package config defines the configuration for the weather assistant.
// Configuration is loaded once at process start and is immutable thereafter.
//
// Values are resolved via a priority chain:
//
//	OS Environment (Highest) -> Dotenv File -> Struct Defaults (Lowest)
//
// Any missing required value or invalid format fails startup.
package config

import (
	"time"

	"weatherassistant/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret type used
// throughout configuration to prevent accidental logging of sensitive values.
type SecretString = types.SecretString

// PlaceholderAPIKey is the sample value shipped in example env files. It is
// rejected at load time so a copied template never reaches the upstream API.
const PlaceholderAPIKey = "your_api_key_here"

// Config is the top-level configuration struct. Sub-components receive only
// the subsets they require.
type Config struct {
	// System Metadata
	Environment string `envconfig:"APP_ENV" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"weather-assistant"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	IsTestMode  bool   `envconfig:"IS_TEST_MODE" default:"false"`

	Server        ServerConfig
	Weather       WeatherConfig
	Cache         CacheConfig
	AWS           AWSConfig
	Observability ObservabilityConfig
	Assistant     AssistantConfig

	// Build Metadata (Injected via ldflags, not Env)
	Build BuildInfo
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string        `envconfig:"PORT" default:"8080" validate:"required,numeric"`
	RequestTimeout     time.Duration `envconfig:"REQUEST_TIMEOUT" default:"15s" validate:"gt=0"`
	CorsAllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	RateLimitPerMinute int           `envconfig:"RATE_LIMIT_PER_MINUTE" default:"60" validate:"gte=0"`
}

// WeatherConfig holds OpenWeatherMap credentials and client tuning.
type WeatherConfig struct {
	APIKey     SecretString  `envconfig:"OPENWEATHER_API_KEY" validate:"not_placeholder"`
	BaseURL    string        `envconfig:"OPENWEATHER_BASE_URL" default:"https://api.openweathermap.org/data/2.5" validate:"required,url"`
	Timeout    time.Duration `envconfig:"OPENWEATHER_TIMEOUT" default:"10s" validate:"gt=0"`
	Units      string        `envconfig:"OPENWEATHER_UNITS" default:"metric" validate:"oneof=metric"`
	MaxRetries int           `envconfig:"OPENWEATHER_MAX_RETRIES" default:"0" validate:"gte=0,lte=5"`
	UserAgent  string        `envconfig:"OPENWEATHER_USER_AGENT" default:"WeatherAssistant/1.0"`
}

// CacheConfig controls the in-memory provider cache. A zero TTL disables it.
type CacheConfig struct {
	TTL time.Duration `envconfig:"CACHE_TTL" default:"5m" validate:"gte=0"`
}

// AWSConfig holds AWS regional configuration.
type AWSConfig struct {
	Region string `envconfig:"AWS_REGION" default:"us-east-1"`

	// LocalStack Support (Empty in Prod)
	EndpointURL string `envconfig:"AWS_ENDPOINT_URL" validate:"omitempty,url"`
}

// ObservabilityConfig holds telemetry settings.
type ObservabilityConfig struct {
	MetricsEnabled  bool   `envconfig:"METRICS_ENABLED" default:"false"`
	MetricNamespace string `envconfig:"METRIC_NAMESPACE" default:"WeatherAssistant"`
}

// AssistantConfig holds the conversational front-end presentation settings.
type AssistantConfig struct {
	Name     string `envconfig:"ASSISTANT_NAME" default:"Weather Bot"`
	Greeting string `envconfig:"ASSISTANT_GREETING" default:"Hello! I'm your weather assistant. Ask me about the weather in any city!"`
}

// BuildInfo holds build-time metadata injected via ldflags.
// These values are NOT populated from environment variables.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// ConfigErrorType categorizes configuration loading failures to aid debugging.
type ConfigErrorType string

const (
	// ErrMissingEnv indicates a required environment variable was not found.
	ErrMissingEnv ConfigErrorType = "MISSING_ENV"
	// ErrDotenv indicates an explicitly requested dotenv file could not be read.
	ErrDotenv ConfigErrorType = "DOTENV_FAILURE"
	// ErrValidation indicates the configuration failed struct validation rules.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates a failure when parsing environment variable values
	// into their target types.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
)
