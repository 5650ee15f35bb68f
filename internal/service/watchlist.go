package service

import (
	"context"
	"log/slog"

	"github.com/nimelist/nimelist-server/internal/domain"
	domainerrors "github.com/nimelist/nimelist-server/internal/errors"
	"github.com/nimelist/nimelist-server/internal/sse"
	"github.com/nimelist/nimelist-server/internal/validation"
	"github.com/nimelist/nimelist-server/internal/watchlist"
)

// UpsertWatchRequest adds a title to the watch-list or changes its status.
// Anime may be omitted when the title is in the loaded catalog.
type UpsertWatchRequest struct {
	AnimeID int                  `json:"anime_id" validate:"gt=0"`
	Status  domain.WatchStatus   `json:"status" validate:"required,watchstatus"`
	Anime   *domain.AnimeSummary `json:"anime,omitempty"`
}

// WatchListService wraps the watch-list store with validation and catalog
// lookups.
type WatchListService struct {
	store     *watchlist.Store
	catalog   *CatalogService
	validator *validation.Validator
	events    EventEmitter
	logger    *slog.Logger
}

// NewWatchListService creates a new watch-list service.
func NewWatchListService(store *watchlist.Store, catalog *CatalogService, validator *validation.Validator, logger *slog.Logger) *WatchListService {
	return &WatchListService{
		store:     store,
		catalog:   catalog,
		validator: validator,
		logger:    logger,
	}
}

// SetEventEmitter sets where watch-list changes are published.
func (s *WatchListService) SetEventEmitter(events EventEmitter) {
	s.events = events
}

// List returns the entries with status, or every entry when status is
// empty or "all".
func (s *WatchListService) List(ctx context.Context, status string) ([]domain.WatchListEntry, error) {
	if status == "" || status == "all" {
		return s.store.ListAll(ctx)
	}
	return s.store.ListByStatus(ctx, domain.WatchStatus(status))
}

// Counts returns per-status totals.
func (s *WatchListService) Counts(ctx context.Context) (domain.WatchListCounts, error) {
	return s.store.Counts(ctx)
}

// Get returns one entry.
func (s *WatchListService) Get(ctx context.Context, id int) (domain.WatchListEntry, error) {
	return s.store.Get(ctx, id)
}

// Upsert validates req and saves the entry.
func (s *WatchListService) Upsert(ctx context.Context, req UpsertWatchRequest) (domain.WatchListEntry, error) {
	if err := s.validator.Validate(req); err != nil {
		return domain.WatchListEntry{}, err
	}

	var summary domain.AnimeSummary
	if req.Anime != nil {
		if req.Anime.ID != 0 && req.Anime.ID != req.AnimeID {
			return domain.WatchListEntry{}, domainerrors.ValidationWithDetails("validation failed",
				map[string]string{"anime.id": "must match anime_id"})
		}
		summary = *req.Anime
		summary.ID = req.AnimeID
	} else {
		rec, err := s.catalog.Anime(ctx, req.AnimeID)
		if err != nil {
			return domain.WatchListEntry{}, err
		}
		summary = domain.Summarize(rec)
	}
	if summary.Image == "" {
		summary.Image = domain.PlaceholderImage
	}

	entry, err := s.store.Upsert(ctx, summary, req.Status)
	if err != nil {
		return domain.WatchListEntry{}, err
	}
	s.logger.Info("watch-list updated", "anime_id", req.AnimeID, "status", entry.Status)
	if s.events != nil {
		s.events.Emit(sse.NewWatchListUpdatedEvent(entry))
	}
	return entry, nil
}

// Remove deletes an entry. Removing an absent id succeeds.
func (s *WatchListService) Remove(ctx context.Context, id int) error {
	if id <= 0 {
		return domainerrors.Validationf("invalid anime id %d", id)
	}
	if err := s.store.Remove(ctx, id); err != nil {
		return err
	}
	if s.events != nil {
		s.events.Emit(sse.NewWatchListRemovedEvent(id))
	}
	return nil
}
