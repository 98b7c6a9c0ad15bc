package assistant

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weatherassistant/internal/render"
	"weatherassistant/internal/types"
)

// fakeProvider is a deterministic WeatherProvider that records its calls.
type fakeProvider struct {
	mu sync.Mutex

	current     *types.Conditions
	currentErr  error
	forecast    *types.Forecast
	forecastErr error

	currentCalls  []string
	forecastCalls []string
}

func (f *fakeProvider) GetCurrent(_ context.Context, city string) (*types.Conditions, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.currentCalls = append(f.currentCalls, city)
	if f.currentErr != nil {
		return nil, f.currentErr
	}
	c := *f.current
	c.City = city
	return &c, nil
}

func (f *fakeProvider) GetForecast(_ context.Context, city string) (*types.Forecast, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forecastCalls = append(f.forecastCalls, city)
	if f.forecastErr != nil {
		return nil, f.forecastErr
	}
	fc := *f.forecast
	fc.City = city
	return &fc, nil
}

func (f *fakeProvider) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.currentCalls) + len(f.forecastCalls)
}

type fakeRecorder struct {
	intents []types.Intent
	results []string
}

func (r *fakeRecorder) RecordQuery(_ context.Context, intent types.Intent, result string) {
	r.intents = append(r.intents, intent)
	r.results = append(r.results, result)
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		current: &types.Conditions{
			Country:       "IN",
			TemperatureC:  30,
			FeelsLikeC:    30,
			Description:   "clear sky",
			HumidityPct:   40,
			ConditionMain: "Clear",
		},
		forecast: &types.Forecast{
			Country:            "IN",
			TemperatureC:       24,
			Description:        "light rain",
			RainProbabilityPct: 60,
		},
	}
}

func TestHandle_CurrentConditions(t *testing.T) {
	prov := newFakeProvider()
	p := New(prov)

	resp := p.Handle(context.Background(), "What is the weather in Mumbai?")

	assert.True(t, resp.Success)
	assert.Equal(t, "The weather in Mumbai is 30°C and clear sky.", resp.Text)
	assert.Equal(t, []string{"Mumbai"}, prov.currentCalls)
	assert.Empty(t, prov.forecastCalls)
}

func TestHandle_Forecast(t *testing.T) {
	prov := newFakeProvider()
	p := New(prov)

	resp := p.Handle(context.Background(), "Will it rain in Bangalore?")

	assert.True(t, resp.Success)
	assert.Equal(t,
		"Tomorrow in Bangalore, it's expected to be 24°C with light rain. There's a 60% chance of rain.",
		resp.Text)
	assert.Equal(t, []string{"Bangalore"}, prov.forecastCalls)
	assert.Empty(t, prov.currentCalls)
}

func TestHandle_RainToday(t *testing.T) {
	prov := newFakeProvider()
	p := New(prov)

	resp := p.Handle(context.Background(), "Is it raining in Pune today?")
	require.True(t, resp.Success)
	assert.Equal(t,
		"No, it's not raining in Pune right now. The weather is clear sky with a temperature of 30°C.",
		resp.Text)

	prov.current.Description = "moderate rain"
	resp = p.Handle(context.Background(), "Is it raining in Pune today?")
	assert.Equal(t,
		"Yes, it's currently raining in Pune. The weather is moderate rain with a temperature of 30°C.",
		resp.Text)
}

func TestHandle_TodayWithoutRainUsesBaseSentence(t *testing.T) {
	p := New(newFakeProvider())

	resp := p.Handle(context.Background(), "How is the weather in Goa today")
	assert.Equal(t, "The weather in Goa is 30°C and clear sky.", resp.Text)
}

func TestHandle_NoCityShortCircuits(t *testing.T) {
	for _, q := range []string{"How hot is it going to be tomorrow", "", "   ", "?!"} {
		t.Run(q, func(t *testing.T) {
			prov := newFakeProvider()
			rec := &fakeRecorder{}
			p := New(prov, WithRecorder(rec))

			resp := p.Handle(context.Background(), q)

			assert.False(t, resp.Success)
			assert.Equal(t, render.CityNotUnderstoodMessage, resp.Text)
			assert.Equal(t, 0, prov.calls(), "provider must not be called")
			assert.Equal(t, []string{string(types.FailureExtraction)}, rec.results)
		})
	}
}

func TestHandle_ProviderFailureRenderedVerbatim(t *testing.T) {
	msg := "Sorry, I couldn't find weather data for Atlantis. Please check the city name."
	prov := newFakeProvider()
	prov.currentErr = types.NewProviderError(types.FailureCityNotFound, msg, nil)
	rec := &fakeRecorder{}
	p := New(prov, WithRecorder(rec))

	resp := p.Handle(context.Background(), "weather in Atlantis")

	assert.False(t, resp.Success)
	assert.Equal(t, msg, resp.Text)
	assert.Equal(t, []string{string(types.FailureCityNotFound)}, rec.results)
	assert.Equal(t, []types.Intent{types.IntentCurrent}, rec.intents)
}

func TestHandle_ForecastFailure(t *testing.T) {
	prov := newFakeProvider()
	prov.forecastErr = types.NewProviderError(types.FailureAPIError, "Weather service returned an error: 500", nil)
	p := New(prov)

	resp := p.Handle(context.Background(), "forecast for Lima")

	assert.False(t, resp.Success)
	assert.Equal(t, "Weather service returned an error: 500", resp.Text)
}

func TestHandle_NilResultIsFailure(t *testing.T) {
	p := New(nilProvider{})

	resp := p.Handle(context.Background(), "weather in Quito")
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Text, "An unexpected error occurred")
}

type nilProvider struct{}

func (nilProvider) GetCurrent(context.Context, string) (*types.Conditions, error) { return nil, nil }
func (nilProvider) GetForecast(context.Context, string) (*types.Forecast, error)  { return nil, nil }

func TestHandle_Idempotent(t *testing.T) {
	p := New(newFakeProvider())
	q := "will it rain tomorrow in Oslo?"

	first := p.Handle(context.Background(), q)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, p.Handle(context.Background(), q))
	}
}

func TestHandle_ConcurrentUse(t *testing.T) {
	prov := newFakeProvider()
	p := New(prov)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := p.Handle(context.Background(), "weather in Accra")
			assert.True(t, resp.Success)
		}()
	}
	wg.Wait()

	assert.Equal(t, 32, prov.calls())
}
