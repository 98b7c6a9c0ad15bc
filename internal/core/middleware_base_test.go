package core

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"weatherassistant/internal/config"
	"weatherassistant/internal/types"
)

func TestRecoverer_PanicReturns500(t *testing.T) {
	srv, _ := NewServer(&config.Config{}, testLogger())
	handler := srv.Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(types.WithRequestID(req.Context(), "req-panic"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var body APIErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != string(types.ErrCodeInternalUnexpected) {
		t.Errorf("code = %q", body.Error.Code)
	}
	if body.Error.RequestID != "req-panic" {
		t.Errorf("request_id = %q, want req-panic", body.Error.RequestID)
	}
}

func TestRecoverer_RepanicsAbortHandler(t *testing.T) {
	srv, _ := NewServer(&config.Config{}, testLogger())
	handler := srv.Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	defer func() {
		if rvr := recover(); rvr != http.ErrAbortHandler {
			t.Errorf("expected ErrAbortHandler to propagate, got %v", rvr)
		}
	}()
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = types.GetRequestID(r.Context())
	}))

	t.Run("propagates incoming", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-Id", "abc")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if seen != "abc" || rec.Header().Get("X-Request-Id") != "abc" {
			t.Errorf("seen=%q header=%q, want abc", seen, rec.Header().Get("X-Request-Id"))
		}
	})

	t.Run("generates uuid", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if len(seen) != 36 || strings.Count(seen, "-") != 4 {
			t.Errorf("expected a UUID, got %q", seen)
		}
		if rec.Header().Get("X-Request-Id") != seen {
			t.Error("response header should match context ID")
		}
	})
}

func TestRequestLogger_RedactsAndScopesLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	var scoped *slog.Logger
	handler := RequestLogger(logger, []string{"Authorization"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scoped = types.LoggerFromContext(r.Context(), nil)
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/weather", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	req.Header.Set("Accept", "application/json")
	req = req.WithContext(types.WithRequestID(req.Context(), "req-42"))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if scoped == nil {
		t.Fatal("expected a request-scoped logger in context")
	}

	out := buf.String()
	if strings.Contains(out, "secret-token") {
		t.Error("Authorization header value leaked into logs")
	}
	for _, want := range []string{`"[REDACTED]"`, `"status":418`, `"request_id":"req-42"`, `"level":"WARN"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s: %s", want, out)
		}
	}
}

func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	srv, _ := NewServer(&config.Config{}, testLogger())
	metrics := &MockMetricsCollector{}
	srv.Metrics = metrics

	r := chi.NewRouter()
	r.Use(srv.MetricsMiddleware)
	r.Get("/cities/{name}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/cities/paris", nil))

	calls := metrics.Snapshot()
	if len(calls) != 1 {
		t.Fatalf("expected 1 metrics call, got %d", len(calls))
	}
	if calls[0].Endpoint != "/cities/{name}" || calls[0].Status != "202" || calls[0].Method != http.MethodGet {
		t.Errorf("unexpected call: %+v", calls[0])
	}
}

func TestMetricsMiddleware_NilCollectorPassesThrough(t *testing.T) {
	srv, _ := NewServer(&config.Config{}, testLogger())
	called := false
	handler := srv.MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !called {
		t.Error("expected next handler to run")
	}
}

func TestResponseCapture_DefaultsTo200(t *testing.T) {
	rc := newResponseCapture(httptest.NewRecorder())
	rc.Write([]byte("ok"))
	rc.WriteHeader(http.StatusInternalServerError)

	if rc.statusCode != http.StatusOK {
		t.Errorf("statusCode = %d, want first-written 200", rc.statusCode)
	}
}
