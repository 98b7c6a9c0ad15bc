package external

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sony/gobreaker/v2"

	"weatherassistant/internal/config"
	"weatherassistant/internal/types"
)

// HealthProbe reports whether an upstream dependency is usable.
type HealthProbe interface {
	Name() string
	Check(ctx context.Context) error
}

// ClientRegistry holds the upstream clients used by the rest of the
// application.
type ClientRegistry struct {
	// Weather is the provider handed to the pipeline, cache included.
	Weather types.WeatherProvider
	// Probe reports upstream health for the /health endpoint.
	Probe HealthProbe
}

// NewClientRegistry initializes the upstream clients. In test mode the
// registry is populated with a stub that logs calls and needs no credentials.
func NewClientRegistry(cfg *config.Config, logger *slog.Logger, opts ...BaseClientOption) *ClientRegistry {
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.IsTestMode {
		logger.Info("initializing weather provider in STUB mode",
			"environment", cfg.Environment,
		)
		stub := NewStubWeatherProvider(logger.With("mode", "stub"))
		return &ClientRegistry{Weather: stub, Probe: stub}
	}

	logger.Info("initializing weather provider",
		"environment", cfg.Environment,
		"base_url", cfg.Weather.BaseURL,
		"cache_ttl", cfg.Cache.TTL,
		"max_retries", cfg.Weather.MaxRetries,
	)
	owm := NewOpenWeatherProvider(OpenWeatherConfig{
		APIKey:     cfg.Weather.APIKey,
		BaseURL:    cfg.Weather.BaseURL,
		Units:      cfg.Weather.Units,
		Timeout:    cfg.Weather.Timeout,
		MaxRetries: cfg.Weather.MaxRetries,
		UserAgent:  cfg.Weather.UserAgent,
	}, opts...)

	return &ClientRegistry{
		Weather: NewCachedProvider(owm, cfg.Cache.TTL),
		Probe:   owm,
	}
}

// Check fails while the circuit breaker is rejecting calls. It makes no
// upstream request so health checks never spend API quota.
func (p *OpenWeatherProvider) Check(_ context.Context) error {
	if state := p.BreakerState(); state == gobreaker.StateOpen {
		return fmt.Errorf("%s: %w", p.Name(), ErrCircuitOpen)
	}
	return nil
}
