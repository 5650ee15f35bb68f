package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/nimelist/nimelist-server/internal/service"
)

func (s *Server) registerCatalogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getCatalog",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog",
		Summary:     "Catalog status",
		Description: "Loads the catalog if needed and reports its source, load id and counts",
		Tags:        []string{"Catalog"},
	}, s.handleGetCatalog)

	huma.Register(s.api, huma.Operation{
		OperationID: "reloadCatalog",
		Method:      http.MethodPost,
		Path:        "/api/v1/catalog/reload",
		Summary:     "Reload catalog",
		Description: "Discards the cached catalog and loads it again. Rate limited per client.",
		Tags:        []string{"Catalog"},
	}, s.handleReloadCatalog)
}

// CatalogStatusOutput contains the catalog status.
type CatalogStatusOutput struct {
	Body service.CatalogStatus
}

func (s *Server) handleGetCatalog(ctx context.Context, _ *struct{}) (*CatalogStatusOutput, error) {
	if _, err := s.services.Catalog.Catalog(ctx); err != nil {
		return nil, err
	}
	return &CatalogStatusOutput{Body: s.services.Catalog.Status()}, nil
}

func (s *Server) handleReloadCatalog(ctx context.Context, _ *struct{}) (*CatalogStatusOutput, error) {
	if err := s.allow(ctx, "reloadCatalog"); err != nil {
		return nil, err
	}

	cat, err := s.services.Catalog.Reload(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("catalog reloaded", "source", cat.Source, "load_id", cat.LoadID)
	return &CatalogStatusOutput{Body: s.services.Catalog.Status()}, nil
}
