// Package api exposes the catalog, search and watch-list services over HTTP.
// Operations are registered with huma on a chi router; every response body
// is wrapped in an APIEnvelope.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/nimelist/nimelist-server/internal/ratelimit"
)

// APIVersion is reported in the OpenAPI document.
const APIVersion = "1.0.0"

// Options configures a Server.
type Options struct {
	CORSOrigins []string
	// ReloadRate and ReloadBurst bound forced catalog reloads per client.
	ReloadRate  float64
	ReloadBurst int
	Logger      *slog.Logger
}

// Server is the HTTP front of the application.
type Server struct {
	api           huma.API
	router        *chi.Mux
	services      *Services
	reloadLimiter *ratelimit.KeyedRateLimiter
	logger        *slog.Logger
}

// NewServer creates a server with all routes registered.
func NewServer(services *Services, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.ReloadRate <= 0 {
		opts.ReloadRate = 1.0 / 10
	}
	if opts.ReloadBurst <= 0 {
		opts.ReloadBurst = 2
	}

	s := &Server{
		router:        chi.NewRouter(),
		services:      services,
		reloadLimiter: ratelimit.New(opts.ReloadRate, opts.ReloadBurst),
		logger:        opts.Logger,
	}

	s.setupMiddleware(opts.CORSOrigins)

	humaConfig := huma.DefaultConfig("Nimelist API", APIVersion)
	humaConfig.Info.Description = "Anime catalog, search and personal watch list."
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)
	RegisterErrorHandler()
	s.api = humachi.New(s.router, humaConfig)

	s.registerRoutes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the huma API, for tests and OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

// Close releases background resources.
func (s *Server) Close() {
	s.reloadLimiter.Stop()
}

func (s *Server) setupMiddleware(origins []string) {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(clientIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Accept-Language", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
}

func (s *Server) registerRoutes() {
	s.registerHealthRoutes()
	s.registerCatalogRoutes()
	s.registerAnimeRoutes()
	s.registerCharacterRoutes()
	s.registerSearchRoutes()
	s.registerWatchListRoutes()
	s.registerEventRoutes()
}
