// Package watchlist keeps the personal watch-list as a single JSON record in
// a store.RecordStore.
package watchlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/nimelist/nimelist-server/internal/domain"
	domainerrors "github.com/nimelist/nimelist-server/internal/errors"
	"github.com/nimelist/nimelist-server/internal/store"
)

// RecordKey is the store key holding the whole list.
const RecordKey = "myAnimeList"

// Repository is the watch-list contract used by the services.
type Repository interface {
	ListAll(ctx context.Context) ([]domain.WatchListEntry, error)
	Upsert(ctx context.Context, summary domain.AnimeSummary, status domain.WatchStatus) (domain.WatchListEntry, error)
	Remove(ctx context.Context, id int) error
}

// Store is the record-backed Repository.
type Store struct {
	records store.RecordStore
	logger  *slog.Logger
	clock   func() time.Time

	// mu serializes read-modify-write cycles within this process.
	mu sync.Mutex
}

var _ Repository = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for addedAt.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) { s.clock = clock }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New creates a Store over records.
func New(records store.RecordStore, opts ...Option) *Store {
	s := &Store{
		records: records,
		logger:  slog.New(slog.DiscardHandler),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// load reads the record. A missing or unparsable record is an empty list.
func (s *Store) load(ctx context.Context) ([]domain.WatchListEntry, error) {
	data, err := s.records.Get(ctx, RecordKey)
	if errors.Is(err, store.ErrNotFound) {
		return []domain.WatchListEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read watch-list: %w", err)
	}

	var entries []domain.WatchListEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		s.logger.Warn("watch-list record is corrupt, treating as empty", "error", err, "bytes", len(data))
		return []domain.WatchListEntry{}, nil
	}
	if entries == nil {
		entries = []domain.WatchListEntry{}
	}
	return entries, nil
}

func (s *Store) save(ctx context.Context, entries []domain.WatchListEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode watch-list: %w", err)
	}
	if err := s.records.Put(ctx, RecordKey, data); err != nil {
		return fmt.Errorf("write watch-list: %w", err)
	}
	return nil
}

// ListAll returns every entry in insertion order.
func (s *Store) ListAll(ctx context.Context) ([]domain.WatchListEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// ListByStatus returns the entries with the given status.
func (s *Store) ListByStatus(ctx context.Context, status domain.WatchStatus) ([]domain.WatchListEntry, error) {
	if !status.Valid() {
		return nil, domainerrors.Validationf("unknown watch status %q", status)
	}
	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.WatchListEntry, 0, len(all))
	for _, e := range all {
		if e.Status == status {
			out = append(out, e)
		}
	}
	return out, nil
}

// Get returns the entry for id.
func (s *Store) Get(ctx context.Context, id int) (domain.WatchListEntry, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return domain.WatchListEntry{}, err
	}
	if i := indexOf(all, id); i >= 0 {
		return all[i], nil
	}
	return domain.WatchListEntry{}, domainerrors.NotFoundf("anime %d is not on the watch-list", id)
}

// Counts returns per-status totals.
func (s *Store) Counts(ctx context.Context) (domain.WatchListCounts, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return domain.WatchListCounts{}, err
	}
	var c domain.WatchListCounts
	for _, e := range all {
		c.Add(e.Status)
	}
	return c, nil
}

// Upsert sets the status for summary.ID. An existing entry keeps its summary
// and addedAt; only the status changes. A new entry is appended with
// addedAt set to now.
func (s *Store) Upsert(ctx context.Context, summary domain.AnimeSummary, status domain.WatchStatus) (domain.WatchListEntry, error) {
	if !status.Valid() {
		return domain.WatchListEntry{}, domainerrors.Validationf("unknown watch status %q", status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load(ctx)
	if err != nil {
		return domain.WatchListEntry{}, err
	}

	var entry domain.WatchListEntry
	if i := indexOf(entries, summary.ID); i >= 0 {
		entries[i].Status = status
		entry = entries[i]
	} else {
		entry = domain.WatchListEntry{
			Anime:   summary,
			Status:  status,
			AddedAt: s.clock().UTC(),
		}
		entries = append(entries, entry)
	}

	if err := s.save(ctx, entries); err != nil {
		return domain.WatchListEntry{}, err
	}
	s.logger.Debug("watch-list entry saved", "anime_id", summary.ID, "status", status)
	return entry, nil
}

// Remove deletes the entry for id. Removing an id that is not on the list
// does nothing and writes nothing.
func (s *Store) Remove(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load(ctx)
	if err != nil {
		return err
	}
	i := indexOf(entries, id)
	if i < 0 {
		return nil
	}
	if err := s.save(ctx, slices.Delete(entries, i, i+1)); err != nil {
		return err
	}
	s.logger.Debug("watch-list entry removed", "anime_id", id)
	return nil
}

func indexOf(entries []domain.WatchListEntry, id int) int {
	return slices.IndexFunc(entries, func(e domain.WatchListEntry) bool { return e.Anime.ID == id })
}
