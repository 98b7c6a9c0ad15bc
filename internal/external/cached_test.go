package external

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weatherassistant/internal/types"
)

type countingProvider struct {
	currentCalls  atomic.Int32
	forecastCalls atomic.Int32
	fail          atomic.Bool
	gate          chan struct{}
}

func (p *countingProvider) GetCurrent(ctx context.Context, city string) (*types.Conditions, error) {
	p.currentCalls.Add(1)
	if p.gate != nil {
		<-p.gate
	}
	if p.fail.Load() {
		return nil, types.NewProviderError(types.FailureTimeout, "timed out", nil)
	}
	return &types.Conditions{City: city, TemperatureC: 20}, nil
}

func (p *countingProvider) GetForecast(ctx context.Context, city string) (*types.Forecast, error) {
	p.forecastCalls.Add(1)
	return &types.Forecast{City: city, TemperatureC: 18}, nil
}

func TestNewCachedProvider_ZeroTTLDisables(t *testing.T) {
	inner := &countingProvider{}
	assert.Same(t, types.WeatherProvider(inner), NewCachedProvider(inner, 0))
}

func TestCachedProvider_HitsWithinTTL(t *testing.T) {
	inner := &countingProvider{}
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewCachedProvider(inner, time.Minute).(*CachedProvider)
	c.now = func() time.Time { return now }

	ctx := context.Background()
	_, err := c.GetCurrent(ctx, "London")
	require.NoError(t, err)
	got, err := c.GetCurrent(ctx, " london ")
	require.NoError(t, err)

	assert.Equal(t, "London", got.City)
	assert.EqualValues(t, 1, inner.currentCalls.Load())

	now = now.Add(2 * time.Minute)
	_, err = c.GetCurrent(ctx, "London")
	require.NoError(t, err)
	assert.EqualValues(t, 2, inner.currentCalls.Load())
}

func TestCachedProvider_KindsAreSeparate(t *testing.T) {
	inner := &countingProvider{}
	c := NewCachedProvider(inner, time.Minute)

	ctx := context.Background()
	_, err := c.GetCurrent(ctx, "Paris")
	require.NoError(t, err)
	f, err := c.GetForecast(ctx, "Paris")
	require.NoError(t, err)
	_, err = c.GetForecast(ctx, "Paris")
	require.NoError(t, err)

	assert.Equal(t, 18, f.TemperatureC)
	assert.EqualValues(t, 1, inner.currentCalls.Load())
	assert.EqualValues(t, 1, inner.forecastCalls.Load())
}

func TestCachedProvider_FailuresNotCached(t *testing.T) {
	inner := &countingProvider{}
	inner.fail.Store(true)
	c := NewCachedProvider(inner, time.Minute)

	ctx := context.Background()
	_, err := c.GetCurrent(ctx, "Oslo")
	assert.Equal(t, types.FailureTimeout, types.KindOf(err))

	inner.fail.Store(false)
	got, err := c.GetCurrent(ctx, "Oslo")
	require.NoError(t, err)
	assert.Equal(t, "Oslo", got.City)
	assert.EqualValues(t, 2, inner.currentCalls.Load())
}

func TestCachedProvider_ReturnsCopies(t *testing.T) {
	c := NewCachedProvider(&countingProvider{}, time.Minute)

	ctx := context.Background()
	first, err := c.GetCurrent(ctx, "Rome")
	require.NoError(t, err)
	first.TemperatureC = -99

	second, err := c.GetCurrent(ctx, "Rome")
	require.NoError(t, err)
	assert.Equal(t, 20, second.TemperatureC)
}

func TestCachedProvider_CoalescesConcurrentLookups(t *testing.T) {
	inner := &countingProvider{gate: make(chan struct{})}
	c := NewCachedProvider(inner, time.Minute)

	const callers = 8
	var wg sync.WaitGroup
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := c.GetCurrent(context.Background(), "Berlin")
			assert.NoError(t, err)
			assert.Equal(t, "Berlin", got.City)
		}()
	}

	require.Eventually(t, func() bool { return inner.currentCalls.Load() == 1 }, time.Second, time.Millisecond)
	close(inner.gate)
	wg.Wait()

	assert.EqualValues(t, 1, inner.currentCalls.Load())
}
