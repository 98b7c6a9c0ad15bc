package external

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"weatherassistant/internal/types"
)

// forecastSlots is the number of 3-hour forecast entries requested (24h).
const forecastSlots = 8

// nextDayStart and nextDayEnd select the 12-24h-ahead slots when a full day
// is available.
const (
	nextDayStart = 4
	nextDayEnd   = 8
)

// User-facing failure messages.
const (
	msgCurrentNotFound  = "Sorry, I couldn't find weather data for %s. Please check the city name."
	msgForecastNotFound = "Sorry, I couldn't find forecast data for %s."
	msgAuthFailed       = "API authentication failed. Please check your API key."
	msgAPIError         = "Weather service returned an error: %d"
	msgTimeout          = "Weather service request timed out. Please try again."
	msgConnection       = "Unable to connect to weather service. Please check your internet connection."
	msgUnavailable      = "Weather service is temporarily unavailable. Please try again shortly."
	msgUnexpected       = "An unexpected error occurred: %v"
)

// OpenWeatherConfig holds the settings for the OpenWeatherMap provider.
type OpenWeatherConfig struct {
	APIKey     types.SecretString
	BaseURL    string
	Units      string
	Timeout    time.Duration
	MaxRetries int
	UserAgent  string
}

// OpenWeatherProvider implements types.WeatherProvider against the
// OpenWeatherMap 2.5 REST API.
type OpenWeatherProvider struct {
	*BaseClient
	apiKey  types.SecretString
	baseURL string
	units   string
}

var _ types.WeatherProvider = (*OpenWeatherProvider)(nil)

// NewOpenWeatherProvider creates a provider from cfg.
func NewOpenWeatherProvider(cfg OpenWeatherConfig, opts ...BaseClientOption) *OpenWeatherProvider {
	policy := DefaultRetryPolicy()
	policy.MaxRetries = cfg.MaxRetries

	units := cfg.Units
	if units == "" {
		units = "metric"
	}

	return &OpenWeatherProvider{
		BaseClient: NewBaseClient(
			&http.Client{Timeout: cfg.Timeout},
			"openweathermap",
			policy,
			cfg.UserAgent,
			opts...,
		),
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		units:   units,
	}
}

// Name identifies the provider in health checks and metrics.
func (p *OpenWeatherProvider) Name() string {
	return "openweathermap"
}

// owmCurrent is the subset of the /weather response we read.
type owmCurrent struct {
	Name string `json:"name"`
	Sys  struct {
		Country string `json:"country"`
	} `json:"sys"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Weather []owmWeather `json:"weather"`
	Wind    struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

type owmWeather struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

// owmForecast is the subset of the /forecast response we read.
type owmForecast struct {
	City struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"city"`
	List []owmSlot `json:"list"`
}

type owmSlot struct {
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Weather []owmWeather `json:"weather"`
	Pop     float64      `json:"pop"`
	// Rain is present only for slots with precipitation.
	Rain *struct {
		ThreeHour float64 `json:"3h"`
	} `json:"rain,omitempty"`
}

// GetCurrent fetches current conditions for city.
func (p *OpenWeatherProvider) GetCurrent(ctx context.Context, city string) (*types.Conditions, error) {
	resp, err := p.get(ctx, "/weather", city, nil)
	if err != nil {
		return nil, transportFailure(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, types.NewProviderError(types.FailureCityNotFound, fmt.Sprintf(msgCurrentNotFound, city), nil)
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, types.NewProviderError(types.FailureAPIKeyInvalid, msgAuthFailed, nil)
	case resp.StatusCode != http.StatusOK:
		return nil, apiError(resp.StatusCode)
	}

	var body owmCurrent
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, unexpected(fmt.Errorf("decoding current weather: %w", err))
	}
	if len(body.Weather) == 0 {
		return nil, unexpected(errors.New("response has no weather entry"))
	}

	return &types.Conditions{
		City:          body.Name,
		Country:       body.Sys.Country,
		TemperatureC:  roundInt(body.Main.Temp),
		FeelsLikeC:    roundInt(body.Main.FeelsLike),
		Description:   body.Weather[0].Description,
		HumidityPct:   body.Main.Humidity,
		WindSpeed:     body.Wind.Speed,
		ConditionMain: body.Weather[0].Main,
	}, nil
}

// GetForecast fetches the next 24 hours and summarizes the 12-24h window.
func (p *OpenWeatherProvider) GetForecast(ctx context.Context, city string) (*types.Forecast, error) {
	extra := url.Values{"cnt": {strconv.Itoa(forecastSlots)}}
	resp, err := p.get(ctx, "/forecast", city, extra)
	if err != nil {
		return nil, transportFailure(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, types.NewProviderError(types.FailureCityNotFound, fmt.Sprintf(msgForecastNotFound, city), nil)
	case resp.StatusCode != http.StatusOK:
		return nil, apiError(resp.StatusCode)
	}

	var body owmForecast
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, unexpected(fmt.Errorf("decoding forecast: %w", err))
	}

	summary, err := summarizeNextDay(body.List)
	if err != nil {
		return nil, unexpected(err)
	}
	summary.City = body.City.Name
	summary.Country = body.City.Country
	return summary, nil
}

func (p *OpenWeatherProvider) get(ctx context.Context, path, city string, extra url.Values) (*http.Response, error) {
	params := url.Values{
		"q":     {city},
		"appid": {p.apiKey.Unmask()},
		"units": {p.units},
	}
	for k, v := range extra {
		params[k] = v
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	return p.Do(req)
}

// summarizeNextDay averages temperature, picks the most frequent description
// (first seen wins ties) and takes the highest rain probability among slots
// that report rain.
func summarizeNextDay(slots []owmSlot) (*types.Forecast, error) {
	window := slots
	if len(slots) >= nextDayEnd {
		window = slots[nextDayStart:nextDayEnd]
	}
	if len(window) == 0 {
		return nil, errors.New("forecast contained no entries")
	}

	var tempSum, rainPct float64
	counts := make(map[string]int, len(window))
	var order []string
	for _, s := range window {
		tempSum += s.Main.Temp
		if len(s.Weather) > 0 {
			d := s.Weather[0].Description
			if counts[d] == 0 {
				order = append(order, d)
			}
			counts[d]++
		}
		if s.Rain != nil {
			rainPct = math.Max(rainPct, s.Pop*100)
		}
	}

	var desc string
	best := 0
	for _, d := range order {
		if counts[d] > best {
			desc, best = d, counts[d]
		}
	}

	return &types.Forecast{
		TemperatureC:       roundInt(tempSum / float64(len(window))),
		Description:        desc,
		RainProbabilityPct: roundInt(rainPct),
	}, nil
}

// transportFailure maps an error from BaseClient.Do to a provider failure.
func transportFailure(err error) *types.ProviderError {
	var netErr net.Error
	switch {
	case errors.Is(err, ErrCircuitOpen):
		return types.NewProviderError(types.FailureAPIError, msgUnavailable, err)
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return types.NewProviderError(types.FailureTimeout, msgTimeout, err)
	case errors.Is(err, context.Canceled):
		return unexpected(err)
	case errors.As(err, &netErr):
		return types.NewProviderError(types.FailureConnectionError, msgConnection, err)
	default:
		return unexpected(err)
	}
}

func apiError(status int) *types.ProviderError {
	return types.NewProviderError(types.FailureAPIError, fmt.Sprintf(msgAPIError, status), nil)
}

func unexpected(err error) *types.ProviderError {
	return types.NewProviderError(types.FailureUnknown, fmt.Sprintf(msgUnexpected, err), err)
}

// roundInt rounds half to even: 22.5 becomes 22, 23.5 becomes 24.
func roundInt(v float64) int {
	return int(math.RoundToEven(v))
}
