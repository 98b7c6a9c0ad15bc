// Package main is the entry point for the weather assistant API. It runs as a
// plain HTTP server locally and behind API Gateway when deployed to Lambda.
//
// Wiring order:
//  1. Load configuration (env + optional .env file).
//  2. Initialize the structured logger.
//  3. Build the weather provider registry and the metrics collector.
//  4. Build the query pipeline.
//  5. Create the core.Server and register the handlers.
//  6. Mount routes and start serving.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"weatherassistant/internal/api/handlers"
	"weatherassistant/internal/assistant"
	"weatherassistant/internal/config"
	"weatherassistant/internal/core"
	"weatherassistant/internal/external"
	"weatherassistant/internal/telemetry"
)

// rateLimitSweepInterval controls how often expired rate limit windows are
// dropped from memory.
const rateLimitSweepInterval = time.Minute

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("weather assistant API starting",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
		"commit", cfg.Build.Commit,
		"port", cfg.Server.Port,
		"test_mode", cfg.IsTestMode,
	)

	srv, err := buildServer(context.Background(), cfg, logger)
	if err != nil {
		return err
	}

	if isLambdaEnvironment() {
		return runLambda(srv, logger)
	}

	return runHTTPServer(srv, cfg, logger)
}

// buildServer wires every dependency of the API and returns a server with
// routes mounted.
func buildServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*core.Server, error) {
	metrics, err := telemetry.New(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("creating metrics collector: %w", err)
	}

	registry := external.NewClientRegistry(cfg, logger)
	pipeline := assistant.New(registry.Weather,
		assistant.WithLogger(logger),
		assistant.WithRecorder(metrics),
	)

	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("creating server: %w", err)
	}

	srv.Metrics = metrics
	srv.RateLimitStore = core.NewMemoryRateLimitStore(rateLimitSweepInterval)
	srv.HealthProbes = []core.HealthProbe{registry.Probe}

	weatherHandler := handlers.NewWeatherHandler(pipeline, logger)
	sessionHandler := handlers.NewSessionHandler(pipeline, srv.Validator, handlers.SessionConfig{
		AssistantName:  cfg.Assistant.Name,
		Greeting:       cfg.Assistant.Greeting,
		AllowedOrigins: cfg.Server.CorsAllowedOrigins,
		MessageTimeout: cfg.Server.RequestTimeout,
	}, logger)
	srv.V1RouteRegistrars = append(srv.V1RouteRegistrars,
		weatherHandler.RegisterRoutes,
		sessionHandler.RegisterRoutes,
	)

	if err := srv.MountRoutes(); err != nil {
		return nil, fmt.Errorf("mounting routes: %w", err)
	}
	return srv, nil
}

// isLambdaEnvironment detects whether the process is running inside AWS Lambda.
func isLambdaEnvironment() bool {
	_, hasRuntimeAPI := os.LookupEnv("AWS_LAMBDA_RUNTIME_API")
	_, hasServerPort := os.LookupEnv("_LAMBDA_SERVER_PORT")
	return hasRuntimeAPI || hasServerPort
}

// runHTTPServer starts a standard HTTP server with graceful shutdown on
// SIGINT/SIGTERM.
//
// WriteTimeout is left unset: it would cut off long-lived session sockets.
// Plain requests are bounded by the context timeout middleware instead.
func runHTTPServer(srv *core.Server, cfg *config.Config, logger *slog.Logger) error {
	addr := ":" + cfg.Server.Port

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)

	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("initiating graceful shutdown")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server resource shutdown error", "error", err)
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped cleanly")
	return nil
}

// newLogger creates a structured JSON logger at the configured level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: false,
	})
	return slog.New(handler)
}
