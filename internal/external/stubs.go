package external

import (
	"context"
	"log/slog"

	"weatherassistant/internal/types"
)

// StubWeatherProvider implements types.WeatherProvider with fixed, plausible
// data. Used when IS_TEST_MODE is set so the assistant can run without an
// API key.
type StubWeatherProvider struct {
	logger *slog.Logger
}

var _ types.WeatherProvider = (*StubWeatherProvider)(nil)

// NewStubWeatherProvider creates a new StubWeatherProvider.
func NewStubWeatherProvider(logger *slog.Logger) *StubWeatherProvider {
	return &StubWeatherProvider{logger: logger}
}

func (s *StubWeatherProvider) GetCurrent(ctx context.Context, city string) (*types.Conditions, error) {
	s.logger.InfoContext(ctx, "stub: GetCurrent called", "city", city)
	return &types.Conditions{
		City:          city,
		Country:       "XX",
		TemperatureC:  18,
		FeelsLikeC:    17,
		Description:   "scattered clouds",
		HumidityPct:   64,
		WindSpeed:     3.2,
		ConditionMain: "Clouds",
	}, nil
}

func (s *StubWeatherProvider) GetForecast(ctx context.Context, city string) (*types.Forecast, error) {
	s.logger.InfoContext(ctx, "stub: GetForecast called", "city", city)
	return &types.Forecast{
		City:               city,
		Country:            "XX",
		TemperatureC:       16,
		Description:        "light rain",
		RainProbabilityPct: 40,
	}, nil
}

// Name identifies the stub in health checks.
func (s *StubWeatherProvider) Name() string {
	return "stub"
}

// Check always succeeds.
func (s *StubWeatherProvider) Check(_ context.Context) error {
	return nil
}
