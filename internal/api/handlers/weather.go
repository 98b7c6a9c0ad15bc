// Package handlers contains the HTTP handler implementations for the weather
// assistant API:
//   - Single query (POST /v1/weather)
//   - Conversational session (GET /v1/session, WebSocket)
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"weatherassistant/internal/core"
	"weatherassistant/internal/types"
)

// Answerer is the query pipeline contract used by the handlers.
type Answerer interface {
	Handle(ctx context.Context, raw string) types.Response
}

// WeatherHandler answers single natural-language weather queries.
type WeatherHandler struct {
	pipeline Answerer
	logger   *slog.Logger
}

// NewWeatherHandler creates a WeatherHandler with the provided dependencies.
func NewWeatherHandler(pipeline Answerer, logger *slog.Logger) *WeatherHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WeatherHandler{
		pipeline: pipeline,
		logger:   logger,
	}
}

// RegisterRoutes mounts the query endpoint onto the /v1 router.
func (h *WeatherHandler) RegisterRoutes(r chi.Router) {
	r.Post("/weather", h.HandleQuery)
}

// HandleQuery handles POST /v1/weather with a body of {"query": "..."}.
//
// A query the assistant could not answer is still a 200: the failure is
// carried as text with success=false. A missing, blank or non-string query is
// answered the same way, since no city can be found in it. Only a body that is
// not a JSON object produces an error envelope.
func (h *WeatherHandler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	var body map[string]json.RawMessage
	if err := core.DecodeJSON(w, r, &body); err != nil {
		core.Error(w, r, err)
		return
	}

	resp := h.pipeline.Handle(r.Context(), queryText(body["query"]))
	core.JSON(w, r, http.StatusOK, resp)
}

// queryText returns the query when raw is a JSON string and "" otherwise.
func queryText(raw json.RawMessage) string {
	var q string
	if len(raw) == 0 || json.Unmarshal(raw, &q) != nil {
		return ""
	}
	return q
}
