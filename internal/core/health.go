package core

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// healthCheckTimeout bounds all probes together. A probe still running at the
// deadline is reported as timed out.
const healthCheckTimeout = 2 * time.Second

var errProbeTimedOut = errors.New("health check timed out")

// componentStatus represents the health state of a single subsystem.
type componentStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// healthResponse is the JSON response body for the health check endpoint.
type healthResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components,omitempty"`
}

// HandleHealth runs every registered probe concurrently and returns 200 when
// all report healthy, 503 otherwise. It is public and mounted at GET /health.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	probes := s.HealthProbes
	if len(probes) == 0 {
		JSON(w, r, http.StatusOK, healthResponse{Status: "healthy"})
		return
	}

	var (
		mu      sync.Mutex
		results = make(map[string]error, len(probes))
	)

	// Probe errors are collected rather than returned so one failure does not
	// cancel the others.
	g, gctx := errgroup.WithContext(ctx)
	for _, probe := range probes {
		g.Go(func() error {
			err := probe.Check(gctx)
			mu.Lock()
			results[probe.Name()] = err
			mu.Unlock()
			return nil
		})
	}

	done := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
	}

	mu.Lock()
	defer mu.Unlock()

	components := make(map[string]componentStatus, len(probes))
	allHealthy := true
	for _, probe := range probes {
		name := probe.Name()
		err, finished := results[name]
		if !finished {
			err = errProbeTimedOut
		}
		if err != nil {
			allHealthy = false
			components[name] = componentStatus{Status: "unhealthy", Message: err.Error()}
			continue
		}
		components[name] = componentStatus{Status: "healthy"}
	}

	resp := healthResponse{Status: "healthy", Components: components}
	if !allHealthy {
		resp.Status = "unhealthy"
		JSON(w, r, http.StatusServiceUnavailable, resp)
		return
	}
	JSON(w, r, http.StatusOK, resp)
}
