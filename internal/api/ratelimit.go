package api

import (
	"context"
	"net"
	"net/http"
	"strings"

	domainerrors "github.com/nimelist/nimelist-server/internal/errors"
)

// clientIPKey stores the caller address for handlers that rate limit.
type clientIPKey struct{}

// clientIP stores the caller address in the request context.
func clientIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), clientIPKey{}, getClientIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// allow consumes a token for the caller, or returns a RATE_LIMITED error.
func (s *Server) allow(ctx context.Context, op string) error {
	key, _ := ctx.Value(clientIPKey{}).(string)
	if key == "" {
		key = "unknown"
	}
	if s.reloadLimiter.Allow(key) {
		return nil
	}
	s.logger.Warn("rate limit exceeded", "ip", key, "operation", op)
	return domainerrors.RateLimited("too many requests, try again later")
}

// getClientIP extracts the client IP from the request. X-Forwarded-For and
// X-Real-IP take precedence over RemoteAddr.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return hostOnly(r.RemoteAddr)
}

func hostOnly(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
