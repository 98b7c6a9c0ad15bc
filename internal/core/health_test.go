package core

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"weatherassistant/internal/config"
)

// mockHealthProbe implements HealthProbe for testing.
type mockHealthProbe struct {
	name     string
	checkErr error
	// delay simulates slow subsystems; Check blocks for this duration.
	delay time.Duration
}

func (m *mockHealthProbe) Name() string { return m.name }

func (m *mockHealthProbe) Check(ctx context.Context) error {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return m.checkErr
}

func runHealth(t *testing.T, probes ...HealthProbe) (int, healthResponse) {
	t.Helper()
	srv, _ := NewServer(&config.Config{}, testLogger())
	srv.HealthProbes = probes

	rec := httptest.NewRecorder()
	srv.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var body healthResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return rec.Code, body
}

func TestHandleHealth_NoProbes(t *testing.T) {
	code, body := runHealth(t)
	if code != http.StatusOK || body.Status != "healthy" {
		t.Errorf("got %d %+v", code, body)
	}
}

func TestHandleHealth_AllHealthy(t *testing.T) {
	code, body := runHealth(t, &mockHealthProbe{name: "openweathermap"}, &mockHealthProbe{name: "cache"})

	if code != http.StatusOK {
		t.Errorf("status = %d, want 200", code)
	}
	if len(body.Components) != 2 || body.Components["openweathermap"].Status != "healthy" {
		t.Errorf("unexpected components: %+v", body.Components)
	}
}

func TestHandleHealth_OneUnhealthy(t *testing.T) {
	code, body := runHealth(t,
		&mockHealthProbe{name: "openweathermap", checkErr: errors.New("circuit breaker open")},
		&mockHealthProbe{name: "cache"},
	)

	if code != http.StatusServiceUnavailable || body.Status != "unhealthy" {
		t.Errorf("got %d %q, want 503 unhealthy", code, body.Status)
	}
	if c := body.Components["openweathermap"]; c.Status != "unhealthy" || c.Message != "circuit breaker open" {
		t.Errorf("unexpected component: %+v", c)
	}
	if body.Components["cache"].Status != "healthy" {
		t.Error("a failing probe must not mark others unhealthy")
	}
}

func TestHandleHealth_SlowProbeTimesOut(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for the health check deadline")
	}

	code, body := runHealth(t, &mockHealthProbe{name: "slow", delay: 10 * time.Second})

	if code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", code)
	}
	if body.Components["slow"].Status != "unhealthy" {
		t.Errorf("unexpected component: %+v", body.Components["slow"])
	}
}
