package core

import (
	"context"
	"sync"
	"time"
)

// MockRateLimitStore implements RateLimitStore for handler and middleware
// tests. IncrementAndCheckFunc, when set, takes precedence over Result and Err.
type MockRateLimitStore struct {
	Result                RateLimitResult
	Err                   error
	IncrementAndCheckFunc func(ctx context.Context, key string, limit int, window time.Duration) (RateLimitResult, error)

	mu    sync.Mutex
	Calls []RateLimitCall
}

// RateLimitCall records the arguments of a single IncrementAndCheck invocation.
type RateLimitCall struct {
	Key    string
	Limit  int
	Window time.Duration
}

// IncrementAndCheck implements the RateLimitStore interface.
func (m *MockRateLimitStore) IncrementAndCheck(ctx context.Context, key string, limit int, window time.Duration) (RateLimitResult, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, RateLimitCall{Key: key, Limit: limit, Window: window})
	m.mu.Unlock()

	if m.IncrementAndCheckFunc != nil {
		return m.IncrementAndCheckFunc(ctx, key, limit, window)
	}
	return m.Result, m.Err
}

// CallCount returns the number of recorded calls.
func (m *MockRateLimitStore) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// MockMetricsCollector implements MetricsCollector and records every call.
type MockMetricsCollector struct {
	mu    sync.Mutex
	Calls []MetricsCall
}

// MetricsCall records the arguments of a single RecordRequest invocation.
type MetricsCall struct {
	Method, Endpoint, Status string
	Duration                 time.Duration
}

// RecordRequest implements MetricsCollector.
func (m *MockMetricsCollector) RecordRequest(method, endpoint, status string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MetricsCall{method, endpoint, status, duration})
}

// Snapshot returns a copy of the recorded calls.
func (m *MockMetricsCollector) Snapshot() []MetricsCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MetricsCall(nil), m.Calls...)
}
