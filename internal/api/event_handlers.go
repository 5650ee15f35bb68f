package api

import (
	"net/http"

	"github.com/nimelist/nimelist-server/internal/sse"
)

// registerEventRoutes mounts the change stream directly on the router.
// It is a long-lived text/event-stream response, so it bypasses huma and
// the envelope.
func (s *Server) registerEventRoutes() {
	if s.services.Events == nil {
		return
	}
	handler := sse.NewHandler(s.services.Events, s.logger.With("component", "sse"))
	s.router.Method(http.MethodGet, "/api/v1/events", handler)
}
