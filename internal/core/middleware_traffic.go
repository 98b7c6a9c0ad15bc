package core

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"weatherassistant/internal/types"
)

// rateLimitWindow is the fixed window RATE_LIMIT_PER_MINUTE applies to.
const rateLimitWindow = time.Minute

// RateLimit enforces a per-client request budget through RateLimitStore. The
// client is identified by IP (first X-Forwarded-For entry, else RemoteAddr)
// and stored in the context for downstream logging.
//
// Without a store or with a zero limit it passes through. Store errors fail
// open. Every checked response carries the X-RateLimit-* headers; rejected
// ones also carry Retry-After.
func (s *Server) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := extractClientIP(r)
		r = r.WithContext(types.WithClientID(r.Context(), clientID))

		limit := s.rateLimitPerMinute()
		if s.RateLimitStore == nil || limit <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		result, err := s.RateLimitStore.IncrementAndCheck(r.Context(), clientID, limit, rateLimitWindow)
		if err != nil {
			s.Logger.Error("rate limit store error",
				slog.String("client_id", clientID),
				slog.String("error", err.Error()),
			)
			next.ServeHTTP(w, r)
			return
		}

		setRateLimitHeaders(w, limit, result)

		if !result.Allowed {
			types.LoggerFromContext(r.Context(), s.Logger).Warn("rate limit exceeded",
				slog.String("client_id", clientID),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)

			retryAfter := max(int(time.Until(result.ResetAt).Seconds()), 1)
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

			Error(w, r, types.NewAppError(types.ErrCodeRateLimit,
				"Rate limit exceeded. Please retry after the reset time.", nil))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) rateLimitPerMinute() int {
	if s.Config == nil {
		return 0
	}
	return s.Config.Server.RateLimitPerMinute
}

// setRateLimitHeaders writes the standard X-RateLimit-* headers.
func setRateLimitHeaders(w http.ResponseWriter, limit int, result RateLimitResult) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

// extractClientIP returns the first X-Forwarded-For entry when present,
// otherwise RemoteAddr without its port.
func extractClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
