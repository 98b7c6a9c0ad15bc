package types

import "context"

// Intent is the kind of weather data a query asks for.
type Intent string

const (
	IntentCurrent  Intent = "current"
	IntentForecast Intent = "forecast"
)

// Conditions is a snapshot of current weather for a city. Temperatures are
// already rounded to whole degrees Celsius at the provider boundary.
type Conditions struct {
	City          string  `json:"city"`
	Country       string  `json:"country"`
	TemperatureC  int     `json:"temperature"`
	FeelsLikeC    int     `json:"feels_like"`
	Description   string  `json:"description"`
	HumidityPct   int     `json:"humidity"`
	WindSpeed     float64 `json:"wind_speed"`
	ConditionMain string  `json:"main_weather"`
}

// Forecast summarizes the next-day window for a city.
type Forecast struct {
	City               string `json:"city"`
	Country            string `json:"country"`
	TemperatureC       int    `json:"temperature"`
	Description        string `json:"description"`
	RainProbabilityPct int    `json:"rain_probability"`
}

// WeatherProvider retrieves weather data by city name. A nil error means the
// returned value is populated; otherwise the error is a *ProviderError whose
// Message is safe to show to the user.
type WeatherProvider interface {
	GetCurrent(ctx context.Context, city string) (*Conditions, error)
	GetForecast(ctx context.Context, city string) (*Forecast, error)
}

// Response is the rendered answer to a single query.
type Response struct {
	Text    string `json:"response" yaml:"response"`
	Success bool   `json:"success" yaml:"success"`
}
