package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/nimelist/nimelist-server/internal/domain"
	domainerrors "github.com/nimelist/nimelist-server/internal/errors"
	"github.com/nimelist/nimelist-server/internal/query"
	"github.com/nimelist/nimelist-server/internal/sse"
)

// Default cache lifetimes.
const (
	DefaultCatalogTTL = 10 * time.Minute
	// An empty catalog is retried sooner so the service recovers quickly
	// once the upstream API or the snapshots come back.
	DefaultEmptyCatalogTTL = 30 * time.Second
)

// CatalogLoader produces a catalog. *catalog.Fetcher satisfies it.
type CatalogLoader interface {
	Fetch(ctx context.Context) *domain.Catalog
}

// CatalogIndexer is told about every freshly loaded catalog.
type CatalogIndexer interface {
	ReplaceCatalog(ctx context.Context, cat *domain.Catalog) error
}

// EventEmitter publishes change events. *sse.Manager satisfies it.
type EventEmitter interface {
	Emit(event sse.Event)
}

// CatalogOptions configures a CatalogService.
type CatalogOptions struct {
	TTL      time.Duration
	EmptyTTL time.Duration
	Indexer  CatalogIndexer // optional
	Events   EventEmitter   // optional
	Clock    func() time.Time
	Logger   *slog.Logger
}

// CatalogStatus describes the cached catalog.
type CatalogStatus struct {
	Loaded     bool                 `json:"loaded"`
	Source     domain.CatalogSource `json:"source,omitempty"`
	LoadID     string               `json:"load_id,omitempty"`
	LoadedAt   time.Time            `json:"loaded_at,omitzero"`
	ExpiresAt  time.Time            `json:"expires_at,omitzero"`
	Anime      int                  `json:"anime"`
	Characters int                  `json:"characters"`
}

// CatalogService caches the catalog and serves every derived view.
// Concurrent loads are collapsed into one.
type CatalogService struct {
	loader   CatalogLoader
	indexer  CatalogIndexer
	events   EventEmitter
	ttl      time.Duration
	emptyTTL time.Duration
	clock    func() time.Time
	logger   *slog.Logger

	group singleflight.Group

	mu      sync.RWMutex
	current *domain.Catalog
	expires time.Time
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(loader CatalogLoader, opts CatalogOptions) *CatalogService {
	if opts.TTL <= 0 {
		opts.TTL = DefaultCatalogTTL
	}
	if opts.EmptyTTL <= 0 {
		opts.EmptyTTL = min(DefaultEmptyCatalogTTL, opts.TTL)
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &CatalogService{
		loader:   loader,
		indexer:  opts.Indexer,
		events:   opts.Events,
		ttl:      opts.TTL,
		emptyTTL: opts.EmptyTTL,
		clock:    opts.Clock,
		logger:   opts.Logger,
	}
}

// Catalog returns the cached catalog, loading it when missing or expired.
func (s *CatalogService) Catalog(ctx context.Context) (*domain.Catalog, error) {
	s.mu.RLock()
	cat, expires := s.current, s.expires
	s.mu.RUnlock()

	if cat != nil && s.clock().Before(expires) {
		return cat, nil
	}
	return s.load(ctx)
}

// Reload discards the cache and loads a fresh catalog.
func (s *CatalogService) Reload(ctx context.Context) (*domain.Catalog, error) {
	s.mu.Lock()
	s.expires = time.Time{}
	s.mu.Unlock()
	return s.load(ctx)
}

// Current returns the cached catalog without loading. It is nil before the
// first load.
func (s *CatalogService) Current() *domain.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Status reports on the cached catalog without loading it.
func (s *CatalogService) Status() CatalogStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return CatalogStatus{}
	}
	return CatalogStatus{
		Loaded:     true,
		Source:     s.current.Source,
		LoadID:     s.current.LoadID,
		LoadedAt:   s.current.LoadedAt,
		ExpiresAt:  s.expires,
		Anime:      len(s.current.Anime),
		Characters: len(s.current.Characters),
	}
}

func (s *CatalogService) load(ctx context.Context) (*domain.Catalog, error) {
	ch := s.group.DoChan("catalog", func() (any, error) {
		// Detached so one caller giving up does not fail the others.
		cat := s.loader.Fetch(context.WithoutCancel(ctx))

		ttl := s.ttl
		if cat.Source == domain.SourceEmpty {
			ttl = s.emptyTTL
		}

		s.mu.Lock()
		s.current = cat
		s.expires = s.clock().Add(ttl)
		s.mu.Unlock()

		if s.indexer != nil {
			if err := s.indexer.ReplaceCatalog(context.WithoutCancel(ctx), cat); err != nil {
				s.logger.Warn("failed to index catalog", "load_id", cat.LoadID, "error", err)
			}
		}
		if s.events != nil {
			s.events.Emit(sse.NewCatalogLoadedEvent(cat))
		}
		return cat, nil
	})

	select {
	case res := <-ch:
		return res.Val.(*domain.Catalog), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *CatalogService) anime(ctx context.Context) ([]domain.AnimeRecord, error) {
	cat, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	return cat.Anime, nil
}

// Anime returns one record by id.
func (s *CatalogService) Anime(ctx context.Context, id int) (domain.AnimeRecord, error) {
	list, err := s.anime(ctx)
	if err != nil {
		return domain.AnimeRecord{}, err
	}
	rec, ok := query.FindByID(list, id)
	if !ok {
		return domain.AnimeRecord{}, domainerrors.NotFoundf("anime %d not found", id)
	}
	return rec, nil
}

// TopAnime returns the highest scored titles.
func (s *CatalogService) TopAnime(ctx context.Context, limit int) ([]domain.AnimeRecord, error) {
	return s.view(ctx, func(l []domain.AnimeRecord) []domain.AnimeRecord { return query.TopByScore(l, limit) })
}

// TopAiring returns the highest scored titles currently airing.
func (s *CatalogService) TopAiring(ctx context.Context, limit int) ([]domain.AnimeRecord, error) {
	return s.view(ctx, func(l []domain.AnimeRecord) []domain.AnimeRecord { return query.TopAiring(l, limit) })
}

// TopUpcoming returns titles starting after now, soonest first.
func (s *CatalogService) TopUpcoming(ctx context.Context, limit int) ([]domain.AnimeRecord, error) {
	now := s.clock()
	return s.view(ctx, func(l []domain.AnimeRecord) []domain.AnimeRecord { return query.TopUpcoming(l, now, limit) })
}

// TopMovies returns the highest scored movies.
func (s *CatalogService) TopMovies(ctx context.Context, limit int) ([]domain.AnimeRecord, error) {
	return s.view(ctx, func(l []domain.AnimeRecord) []domain.AnimeRecord { return query.TopMovies(l, limit) })
}

// MostPopular returns titles by member count.
func (s *CatalogService) MostPopular(ctx context.Context, limit int) ([]domain.AnimeRecord, error) {
	return s.view(ctx, func(l []domain.AnimeRecord) []domain.AnimeRecord { return query.MostPopular(l, limit) })
}

// MostFavorited returns titles by favorite count.
func (s *CatalogService) MostFavorited(ctx context.Context, limit int) ([]domain.AnimeRecord, error) {
	return s.view(ctx, func(l []domain.AnimeRecord) []domain.AnimeRecord { return query.MostFavorited(l, limit) })
}

// Seasonal returns the best titles that started in season of year. An empty
// season selects the current one; a zero year selects the season's current
// or next occurrence.
func (s *CatalogService) Seasonal(ctx context.Context, season domain.Season, year, limit int) ([]domain.AnimeRecord, error) {
	season, year = s.resolveSeason(season, year)
	return s.view(ctx, func(l []domain.AnimeRecord) []domain.AnimeRecord { return query.Seasonal(l, season, year, limit) })
}

// Browse filters and sorts the catalog.
func (s *CatalogService) Browse(ctx context.Context, f query.BrowseFilter) ([]domain.AnimeRecord, error) {
	if err := f.Validate(); err != nil {
		return nil, domainerrors.Validation(err.Error())
	}
	return s.view(ctx, func(l []domain.AnimeRecord) []domain.AnimeRecord { return query.Browse(l, f) })
}

// SearchTitles is the case-insensitive title substring search.
func (s *CatalogService) SearchTitles(ctx context.Context, q string) ([]domain.AnimeRecord, error) {
	return s.view(ctx, func(l []domain.AnimeRecord) []domain.AnimeRecord { return query.SearchByTitle(l, q) })
}

// TopCharacters returns the most favorited characters.
func (s *CatalogService) TopCharacters(ctx context.Context, limit int) ([]domain.CharacterRecord, error) {
	cat, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	return query.TopCharacters(cat.Characters, limit), nil
}

// Genres returns the genre tally, most common first.
func (s *CatalogService) Genres(ctx context.Context) ([]query.GenreCount, error) {
	list, err := s.anime(ctx)
	if err != nil {
		return nil, err
	}
	return query.SortGenreCounts(query.TallyGenres(list)), nil
}

// ScheduleOptions narrows the release schedule.
type ScheduleOptions struct {
	Locale string
	Season domain.Season // empty means every upcoming title
	Year   int
}

// Schedule groups upcoming titles by release month.
func (s *CatalogService) Schedule(ctx context.Context, opts ScheduleOptions) ([]query.MonthGroup, error) {
	list, err := s.anime(ctx)
	if err != nil {
		return nil, err
	}
	upcoming := query.UpcomingSchedule(list, s.clock())
	if opts.Season != "" {
		season, year := s.resolveSeason(opts.Season, opts.Year)
		upcoming = query.InSeason(upcoming, season, year)
	}
	return query.GroupByReleaseMonth(upcoming, opts.Locale), nil
}

func (s *CatalogService) view(ctx context.Context, fn func([]domain.AnimeRecord) []domain.AnimeRecord) ([]domain.AnimeRecord, error) {
	list, err := s.anime(ctx)
	if err != nil {
		return nil, err
	}
	return fn(list), nil
}

// resolveSeason fills in defaults from the clock.
func (s *CatalogService) resolveSeason(season domain.Season, year int) (domain.Season, int) {
	now := s.clock()
	current, currentYear := domain.SeasonOf(now)
	if season == "" {
		season = current
		if year == 0 {
			year = currentYear
		}
	}
	if year == 0 {
		year = currentYear
		if _, end := domain.SeasonWindow(season, year); !end.After(now) {
			year++
		}
	}
	return season, year
}
