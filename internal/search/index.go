package search

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/nimelist/nimelist-server/internal/domain"
)

// Index wraps an in-memory Bleve index that is rebuilt whenever the catalog
// is reloaded.
//
// All methods are safe for concurrent use. Replace builds the new index
// without holding the lock, so searches keep running against the old one
// until the swap.
type Index struct {
	mu     sync.RWMutex
	index  bleve.Index
	loadID string
	logger *slog.Logger
}

// batchSize bounds the number of documents per Bleve batch.
const batchSize = 500

// NewIndex creates an empty index.
func NewIndex(logger *slog.Logger) (*Index, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &Index{index: index, logger: logger}, nil
}

// Close releases the index.
func (s *Index) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// LoadID returns the catalog load the index was built from.
func (s *Index) LoadID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadID
}

// DocumentCount returns the total number of indexed documents.
func (s *Index) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// ReplaceCatalog rebuilds the index from cat. Rebuilding for the load that
// is already indexed is a no-op.
func (s *Index) ReplaceCatalog(ctx context.Context, cat *domain.Catalog) error {
	if cat == nil {
		return nil
	}
	if cat.LoadID != "" && cat.LoadID == s.LoadID() {
		return nil
	}

	docs := make([]*Document, 0, len(cat.Anime)+len(cat.Characters))
	for _, a := range cat.Anime {
		docs = append(docs, FromAnime(a))
	}
	for _, c := range cat.Characters {
		docs = append(docs, FromCharacter(c))
	}
	if err := s.Replace(ctx, docs); err != nil {
		return err
	}

	s.mu.Lock()
	s.loadID = cat.LoadID
	s.mu.Unlock()
	return nil
}

// Replace swaps the index contents for docs.
func (s *Index) Replace(ctx context.Context, docs []*Document) error {
	fresh, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	if err := indexDocuments(ctx, fresh, docs); err != nil {
		fresh.Close()
		return err
	}

	s.mu.Lock()
	old := s.index
	s.index = fresh
	s.mu.Unlock()

	if err := old.Close(); err != nil {
		s.logger.Warn("failed to close previous search index", "error", err)
	}
	s.logger.Debug("search index rebuilt", "documents", len(docs))
	return nil
}

func indexDocuments(ctx context.Context, index bleve.Index, docs []*Document) error {
	for i := 0; i < len(docs); i += batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(i+batchSize, len(docs))

		batch := index.NewBatch()
		for _, doc := range docs[i:end] {
			if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", doc.ID, err)
			}
		}
		if err := index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}
