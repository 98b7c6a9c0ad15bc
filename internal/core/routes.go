package core

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/klauspost/compress/gzhttp"

	"weatherassistant/internal/types"
)

// defaultRequestTimeout applies when the config does not set one.
const defaultRequestTimeout = 15 * time.Second

// compressMinSize is the smallest response body worth gzipping.
const compressMinSize = 512

// defaultRedactedHeaders lists header names whose values are masked in
// request logs.
var defaultRedactedHeaders = []string{
	"Authorization",
	"Cookie",
	"X-Api-Key",
}

// MountRoutes registers the global middleware chain, the /v1 group and the
// top-level routes.
func (s *Server) MountRoutes() error {
	compress, err := gzhttp.NewWrapper(gzhttp.MinSize(compressMinSize))
	if err != nil {
		return err
	}

	s.registerGlobalMiddleware(compress)

	s.router.Route("/v1", s.mountV1)

	s.router.Get("/health", s.HandleHealth)
	s.router.Get("/version", s.HandleVersion)
	return nil
}

// registerGlobalMiddleware applies middleware in strict order.
//
//  1. Recoverer       - Catches panics; outermost to catch all failures.
//  2. ContextTimeout  - Bounds each request, including the upstream lookup.
//  3. RequestID       - Generates/propagates the correlation ID.
//  4. SecurityHeaders - Present on every response, errors included.
//  5. RequestLogger   - Structured logging; also scopes a logger to the request.
//  6. CORS            - Browser access for the web front end.
//  7. Compression     - gzip for clients that accept it.
//  8. Metrics         - Request latency and count recording.
//  9. RateLimit       - Per-client fixed window.
func (s *Server) registerGlobalMiddleware(compress func(http.Handler) http.HandlerFunc) {
	s.router.Use(s.Recoverer)
	s.router.Use(ContextTimeoutMiddleware(s.requestTimeout()))
	s.router.Use(RequestIDMiddleware)
	s.router.Use(SecurityHeadersMiddleware)
	s.router.Use(RequestLogger(s.Logger, defaultRedactedHeaders))
	s.router.Use(NewCORSMiddleware(s.corsAllowedOrigins()))
	s.router.Use(CompressionMiddleware(compress))
	s.router.Use(s.MetricsMiddleware)
	s.router.Use(s.RateLimit)
}

func (s *Server) mountV1(r chi.Router) {
	for _, registrar := range s.V1RouteRegistrars {
		registrar(r)
	}
}

func (s *Server) requestTimeout() time.Duration {
	if s.Config != nil && s.Config.Server.RequestTimeout > 0 {
		return s.Config.Server.RequestTimeout
	}
	return defaultRequestTimeout
}

func (s *Server) corsAllowedOrigins() []string {
	if s.Config != nil && len(s.Config.Server.CorsAllowedOrigins) > 0 {
		return s.Config.Server.CorsAllowedOrigins
	}
	return []string{"*"}
}

// ContextTimeoutMiddleware sets a deadline on the request context. Handlers
// observe it through the cancelled context.
func ContextTimeoutMiddleware(duration time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), duration)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDMiddleware reuses an incoming X-Request-Id or generates a UUID,
// stores it in the context and echoes it in the response.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := types.WithRequestID(r.Context(), requestID)
		w.Header().Set("X-Request-Id", requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CompressionMiddleware applies the gzip wrapper to everything except
// WebSocket upgrades, which need the raw connection.
func CompressionMiddleware(compress func(http.Handler) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		compressed := compress(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
				next.ServeHTTP(w, r)
				return
			}
			compressed.ServeHTTP(w, r)
		})
	}
}

// NewCORSMiddleware configures go-chi/cors for the allowed origins. A "*"
// entry allows every origin; credentials are only allowed for explicit
// origin lists.
func NewCORSMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	allowAll := false
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
			break
		}
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: !allowAll,
		MaxAge:           300,
	})
}

// versionResponse is the body of GET /version.
type versionResponse struct {
	Service   string `json:"service"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

// HandleVersion reports the build metadata injected at link time.
func (s *Server) HandleVersion(w http.ResponseWriter, r *http.Request) {
	JSON(w, r, http.StatusOK, versionResponse{
		Service:   s.Config.Service,
		Version:   s.Config.Build.Version,
		Commit:    s.Config.Build.Commit,
		BuildTime: s.Config.Build.BuildTime,
	})
}
