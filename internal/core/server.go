// Package core provides the HTTP chassis for the weather assistant. It builds
// a chi router usable both by net/http and by the Lambda proxy adapter, and
// applies the cross-cutting concerns (recovery, request IDs, logging, CORS,
// compression, metrics and rate limiting) before requests reach handlers.
package core

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"weatherassistant/internal/config"
)

// RouteRegistrar mounts domain routes under /v1. Handler packages provide
// these so that core does not import them.
type RouteRegistrar func(r chi.Router)

// Server encapsulates the dependencies of the API so they can be injected
// in tests and configured per environment.
type Server struct {
	Config         *config.Config
	Logger         *slog.Logger
	Validator      *Validator
	Metrics        MetricsCollector
	RateLimitStore RateLimitStore
	HealthProbes   []HealthProbe

	// V1RouteRegistrars are applied in order when MountRoutes runs.
	V1RouteRegistrars []RouteRegistrar

	router *chi.Mux
}

// NewServer validates the critical dependencies and prepares the router.
// The caller mounts routes with MountRoutes after setting optional fields.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config must not be nil")
	}
	if logger == nil {
		return nil, errors.New("logger must not be nil")
	}

	return &Server{
		Config:    cfg,
		Logger:    logger,
		Validator: NewValidator(logger),
		router:    chi.NewRouter(),
	}, nil
}

// Handler returns the router as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Router returns the underlying chi.Mux for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Shutdown releases server-owned resources. Dependencies that hold background
// goroutines, such as the in-memory rate limit store, are closed here.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Logger.InfoContext(ctx, "server shutdown initiated")

	if closer, ok := s.RateLimitStore.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			s.Logger.ErrorContext(ctx, "error closing rate limit store", "error", err)
			return err
		}
	}

	s.Logger.InfoContext(ctx, "server shutdown complete")
	return nil
}
