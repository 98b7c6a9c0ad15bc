package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"weatherassistant/internal/core"
	"weatherassistant/internal/types"
)

const (
	// maxSessionMessageSize bounds a single inbound frame; it matches the
	// request body limit of POST /v1/weather.
	maxSessionMessageSize = 64 << 10

	defaultIdleTimeout    = 5 * time.Minute
	defaultMessageTimeout = 15 * time.Second
	writeTimeout          = 10 * time.Second
)

// Session message types.
const (
	MessageTypeGreeting = "greeting"
	MessageTypeQuery    = "message"
	MessageTypeResponse = "response"
	MessageTypeError    = "error"
)

// SessionMessage is the JSON frame exchanged over the session socket. Clients
// send {"type":"message","content":"..."}; the server answers each with a
// "response" frame.
type SessionMessage struct {
	Type      string `json:"type"`
	Content   string `json:"content,omitempty"`
	Success   *bool  `json:"success,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Assistant string `json:"assistant,omitempty"`
}

// sessionRequest is an inbound frame. Content is kept raw so that a
// non-string value reaches the pipeline as an empty query.
type sessionRequest struct {
	Type    string          `json:"type" validate:"required,oneof=message"`
	Content json.RawMessage `json:"content"`
}

// SessionConfig holds the presentation and timing settings for sessions.
type SessionConfig struct {
	AssistantName  string
	Greeting       string
	AllowedOrigins []string
	IdleTimeout    time.Duration
	MessageTimeout time.Duration
}

// SessionHandler runs conversational sessions over WebSocket. Each inbound
// query is answered independently; no state is carried between turns.
type SessionHandler struct {
	pipeline  Answerer
	validator *core.Validator
	cfg       SessionConfig
	upgrader  websocket.Upgrader
	logger    *slog.Logger
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(pipeline Answerer, val *core.Validator, cfg SessionConfig, logger *slog.Logger) *SessionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = defaultIdleTimeout
	}
	if cfg.MessageTimeout <= 0 {
		cfg.MessageTimeout = defaultMessageTimeout
	}

	h := &SessionHandler{pipeline: pipeline, validator: val, cfg: cfg, logger: logger}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// RegisterRoutes mounts the session endpoint onto the /v1 router.
func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Get("/session", h.HandleSession)
}

// checkOrigin applies the CORS allow-list to the upgrade request. Requests
// without an Origin header (non-browser clients) are accepted.
func (h *SessionHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.cfg.AllowedOrigins) == 0 {
		return true
	}
	return slices.Contains(h.cfg.AllowedOrigins, "*") || slices.Contains(h.cfg.AllowedOrigins, origin)
}

// HandleSession handles GET /v1/session.
func (h *SessionHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.logger.WarnContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	sessionID := uuid.NewString()
	logger := types.LoggerFromContext(r.Context(), h.logger).With("session_id", sessionID)

	// The request context carries the per-request deadline, which must not
	// bound the lifetime of the socket.
	ctx := types.WithLogger(context.WithoutCancel(r.Context()), logger)

	s := &session{
		id:      sessionID,
		conn:    conn,
		handler: h,
		logger:  logger,
	}
	logger.Info("session started")
	s.run(ctx)
	logger.Info("session ended", "turns", s.turns)
}

type session struct {
	id      string
	conn    *websocket.Conn
	handler *SessionHandler
	logger  *slog.Logger
	writeMu sync.Mutex
	turns   int
}

func (s *session) run(ctx context.Context) {
	s.conn.SetReadLimit(maxSessionMessageSize)

	if err := s.send(SessionMessage{
		Type:      MessageTypeGreeting,
		Content:   s.handler.cfg.Greeting,
		SessionID: s.id,
		Assistant: s.handler.cfg.AssistantName,
	}); err != nil {
		return
	}

	for {
		_ = s.conn.SetReadDeadline(time.Now().Add(s.handler.cfg.IdleTimeout))
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("session read failed", "error", err)
			}
			return
		}

		if err := s.handle(ctx, raw); err != nil {
			return
		}
	}
}

// handle answers one inbound frame. Only write failures are returned; a bad
// frame is reported to the client and the session continues.
func (s *session) handle(ctx context.Context, raw []byte) error {
	var req sessionRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return s.sendError("Invalid message format")
	}
	if err := s.handler.validator.ValidateStruct(req); err != nil {
		return s.sendError(validationMessage(err))
	}
	// Blank or non-string content is answered like any other query with no
	// recognizable city.
	return s.answer(ctx, queryText(req.Content))
}

func (s *session) answer(ctx context.Context, content string) error {
	ctx, cancel := context.WithTimeout(ctx, s.handler.cfg.MessageTimeout)
	defer cancel()

	resp := s.handler.pipeline.Handle(ctx, content)
	s.turns++

	return s.send(SessionMessage{
		Type:    MessageTypeResponse,
		Content: resp.Text,
		Success: &resp.Success,
	})
}

func (s *session) send(msg SessionMessage) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := s.conn.WriteJSON(msg); err != nil {
		s.logger.Warn("session write failed", "error", err)
		return err
	}
	return nil
}

func (s *session) sendError(message string) error {
	return s.send(SessionMessage{Type: MessageTypeError, Content: message})
}

// validationMessage extracts the client-safe message from a validation error.
func validationMessage(err error) string {
	var appErr *types.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Invalid message format"
}
