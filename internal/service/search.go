package service

import (
	"context"
	"log/slog"

	"github.com/nimelist/nimelist-server/internal/search"
)

// SearchService runs full-text queries over the current catalog.
type SearchService struct {
	index   *search.Index
	catalog *CatalogService
	logger  *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.Index, catalog *CatalogService, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:   index,
		catalog: catalog,
		logger:  logger,
	}
}

// Search queries the index, first making sure it reflects the cached
// catalog.
func (s *SearchService) Search(ctx context.Context, params search.Params) (*search.Result, error) {
	cat, err := s.catalog.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.index.ReplaceCatalog(ctx, cat); err != nil {
		s.logger.Warn("search index is stale", "load_id", cat.LoadID, "error", err)
	}
	return s.index.Search(ctx, params)
}

// IndexStatus reports which catalog load the index holds and how many
// documents it has.
func (s *SearchService) IndexStatus() (string, uint64, error) {
	count, err := s.index.DocumentCount()
	return s.index.LoadID(), count, err
}
