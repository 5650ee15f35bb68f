package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/nimelist/nimelist-server/internal/domain"
)

// Component health states.
const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health status with component checks",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" doc:"Component status: healthy, degraded, or unhealthy"`
	Latency string `json:"latency,omitempty" doc:"Response time for this component"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status     string                     `json:"status" doc:"Overall status: healthy, degraded, or unhealthy"`
	Components map[string]ComponentHealth `json:"components" doc:"Individual component statuses"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	components := map[string]ComponentHealth{
		"catalog": s.checkCatalog(),
		"store":   s.checkStore(ctx),
		"search":  s.checkSearch(),
	}

	overall := statusHealthy
	for _, c := range components {
		switch {
		case c.Status == statusUnhealthy:
			overall = statusUnhealthy
		case c.Status == statusDegraded && overall == statusHealthy:
			overall = statusDegraded
		}
	}

	return &HealthOutput{Body: HealthResponse{Status: overall, Components: components}}, nil
}

// checkCatalog reports the cached catalog without triggering a load. A
// catalog served from the fallback or empty source is degraded.
func (s *Server) checkCatalog() ComponentHealth {
	st := s.services.Catalog.Status()
	switch {
	case !st.Loaded:
		return ComponentHealth{Status: statusHealthy, Message: "not loaded yet"}
	case st.Source == domain.SourceEmpty:
		return ComponentHealth{Status: statusDegraded, Message: "remote and snapshots unavailable"}
	case st.Source == domain.SourceLocal:
		return ComponentHealth{Status: statusDegraded, Message: "serving local snapshots"}
	}
	return ComponentHealth{Status: statusHealthy, Message: fmt.Sprintf("%d anime", st.Anime)}
}

// checkStore verifies the watch-list record store answers.
func (s *Server) checkStore(ctx context.Context) ComponentHealth {
	start := time.Now()
	counts, err := s.services.WatchList.Counts(ctx)
	latency := time.Since(start)

	if err != nil {
		return ComponentHealth{Status: statusUnhealthy, Latency: latency.String(), Message: err.Error()}
	}
	return ComponentHealth{Status: statusHealthy, Latency: latency.String(), Message: fmt.Sprintf("%d entries", counts.All)}
}

// checkSearch reports the size of the full-text index.
func (s *Server) checkSearch() ComponentHealth {
	if s.services.Search == nil {
		return ComponentHealth{Status: statusDegraded, Message: "search not configured"}
	}
	_, docs, err := s.services.Search.IndexStatus()
	if err != nil {
		return ComponentHealth{Status: statusDegraded, Message: err.Error()}
	}
	return ComponentHealth{Status: statusHealthy, Message: fmt.Sprintf("%d documents", docs)}
}
