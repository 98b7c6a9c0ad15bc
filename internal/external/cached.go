package external

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"weatherassistant/internal/types"
)

// CachedProvider decorates a WeatherProvider with a short-lived in-memory
// cache. Only successful lookups are cached, and concurrent lookups for the
// same city share one upstream call.
type CachedProvider struct {
	next  types.WeatherProvider
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group

	mu       sync.RWMutex
	current  map[string]cacheEntry[types.Conditions]
	forecast map[string]cacheEntry[types.Forecast]
}

type cacheEntry[T any] struct {
	value     T
	expiresAt time.Time
}

var _ types.WeatherProvider = (*CachedProvider)(nil)

// NewCachedProvider wraps next. A non-positive ttl disables caching and
// returns next unchanged.
func NewCachedProvider(next types.WeatherProvider, ttl time.Duration) types.WeatherProvider {
	if ttl <= 0 {
		return next
	}
	return &CachedProvider{
		next:     next,
		ttl:      ttl,
		now:      time.Now,
		current:  make(map[string]cacheEntry[types.Conditions]),
		forecast: make(map[string]cacheEntry[types.Forecast]),
	}
}

// GetCurrent returns cached conditions for city when fresh.
func (c *CachedProvider) GetCurrent(ctx context.Context, city string) (*types.Conditions, error) {
	key := cacheKey(city)
	if v, ok := lookup(c, c.current, key); ok {
		return &v, nil
	}

	v, err, _ := c.group.Do("current:"+key, func() (any, error) {
		if v, ok := lookup(c, c.current, key); ok {
			return &v, nil
		}
		res, err := c.next.GetCurrent(ctx, city)
		if err != nil {
			return nil, err
		}
		store(c, c.current, key, *res)
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	res := *v.(*types.Conditions)
	return &res, nil
}

// GetForecast returns a cached forecast for city when fresh.
func (c *CachedProvider) GetForecast(ctx context.Context, city string) (*types.Forecast, error) {
	key := cacheKey(city)
	if v, ok := lookup(c, c.forecast, key); ok {
		return &v, nil
	}

	v, err, _ := c.group.Do("forecast:"+key, func() (any, error) {
		if v, ok := lookup(c, c.forecast, key); ok {
			return &v, nil
		}
		res, err := c.next.GetForecast(ctx, city)
		if err != nil {
			return nil, err
		}
		store(c, c.forecast, key, *res)
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	res := *v.(*types.Forecast)
	return &res, nil
}

func lookup[T any](c *CachedProvider, m map[string]cacheEntry[T], key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := m[key]
	if !ok || c.now().After(e.expiresAt) {
		var zero T
		return zero, false
	}
	return e.value, true
}

func store[T any](c *CachedProvider, m map[string]cacheEntry[T], key string, v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m[key] = cacheEntry[T]{value: v, expiresAt: c.now().Add(c.ttl)}
}

func cacheKey(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}
