package core

import (
	"context"
	"time"
)

// MetricsCollector records API telemetry. Implementations write to CloudWatch
// or an equivalent backend.
type MetricsCollector interface {
	// RecordRequest records request latency and count under the route pattern.
	RecordRequest(method, endpoint, status string, duration time.Duration)
}

// HealthProbe defines the interface for a subsystem health check.
type HealthProbe interface {
	// Name returns a human-readable identifier for the probe.
	Name() string

	// Check should respect the context deadline and return an error if the
	// subsystem is unhealthy or unreachable.
	Check(ctx context.Context) error
}

// RateLimitStore abstracts the backing store for rate limiting.
type RateLimitStore interface {
	// IncrementAndCheck atomically increments the counter for key and checks
	// whether the limit has been exceeded within the window.
	IncrementAndCheck(ctx context.Context, key string, limit int, window time.Duration) (RateLimitResult, error)
}

// RateLimitResult contains the outcome of a rate limit check.
type RateLimitResult struct {
	// Allowed indicates whether the request is within the rate limit.
	Allowed bool
	// Remaining is the number of requests remaining in the current window.
	Remaining int
	// ResetAt is the time when the current rate limit window resets.
	ResetAt time.Time
}
