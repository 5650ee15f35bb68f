// Package catalog loads the anime catalog: remote first, local snapshots on
// failure, an empty catalog when both are unavailable.
package catalog

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nimelist/nimelist-server/internal/domain"
	"github.com/nimelist/nimelist-server/internal/metadata/jikan"
	"github.com/nimelist/nimelist-server/internal/query"
)

// RemoteSource serves the three upstream collections. *jikan.Client
// satisfies it.
type RemoteSource interface {
	TopAnime(ctx context.Context, limit int) ([]jikan.Anime, error)
	SeasonNow(ctx context.Context, limit int) ([]jikan.Anime, error)
	TopCharacters(ctx context.Context, limit int) ([]jikan.Character, error)
}

// Limits bounds each remote request.
type Limits struct {
	TopAnime   int
	Season     int
	Characters int
}

func (l Limits) withDefaults() Limits {
	if l.TopAnime <= 0 {
		l.TopAnime = 25
	}
	if l.Season <= 0 {
		l.Season = 12
	}
	if l.Characters <= 0 {
		l.Characters = 15
	}
	return l
}

// errNoSource marks a source that is not configured.
var errNoSource = errors.New("source not configured")

// Options configures a Fetcher.
type Options struct {
	Remote     RemoteSource // nil skips straight to snapshots
	Snapshots  fs.FS        // nil means no local fallback
	Limits     Limits
	Normalizer Normalizer
	Logger     *slog.Logger
	Clock      func() time.Time
}

// Fetcher resolves the catalog from the remote source or the snapshots.
type Fetcher struct {
	remote     RemoteSource
	snapshots  fs.FS
	limits     Limits
	normalizer Normalizer
	logger     *slog.Logger
	clock      func() time.Time
}

// NewFetcher creates a Fetcher.
func NewFetcher(opts Options) *Fetcher {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Fetcher{
		remote:     opts.Remote,
		snapshots:  opts.Snapshots,
		limits:     opts.Limits.withDefaults(),
		normalizer: opts.Normalizer,
		logger:     opts.Logger,
		clock:      opts.Clock,
	}
}

// Fetch loads the catalog. The remote attempt issues its three requests
// concurrently and fails as a whole if any of them fails; the snapshots are
// then read exactly once. Neither path is retried. When both fail the
// returned catalog is empty with Source set to domain.SourceEmpty. Fetch
// never returns an error.
func (f *Fetcher) Fetch(ctx context.Context) *domain.Catalog {
	start := f.clock()

	raw, err := fetchRemote(ctx, f.remote, f.limits)
	source := domain.SourceRemote
	if err != nil {
		f.logger.Warn("remote catalog unavailable, falling back to snapshots",
			"error", err,
			"rate_limited", jikan.IsRateLimited(err),
		)

		source = domain.SourceLocal
		if f.snapshots == nil {
			raw, err = rawCatalog{}, errNoSource
		} else {
			raw, err = readSnapshots(ctx, f.snapshots)
		}
		if err != nil {
			f.logger.Error("local snapshots unavailable, serving empty catalog", "error", err)
			return f.assemble(rawCatalog{}, domain.SourceEmpty)
		}
	}

	cat := f.assemble(raw, source)
	f.logger.Info("catalog loaded",
		"source", cat.Source,
		"load_id", cat.LoadID,
		"anime", len(cat.Anime),
		"characters", len(cat.Characters),
		"duration", f.clock().Sub(start),
	)
	return cat
}

// assemble normalizes and merges. The general list comes first so its
// records win over seasonal duplicates.
func (f *Fetcher) assemble(raw rawCatalog, source domain.CatalogSource) *domain.Catalog {
	anime := query.MergeByID(
		f.normalizer.AnimeList(raw.general),
		f.normalizer.AnimeList(raw.seasons),
	)
	return &domain.Catalog{
		Anime:      anime,
		Characters: dedupCharacters(f.normalizer.CharacterList(raw.characters)),
		Source:     source,
		LoadID:     uuid.NewString(),
		LoadedAt:   f.clock(),
	}
}

func fetchRemote(ctx context.Context, remote RemoteSource, limits Limits) (rawCatalog, error) {
	if remote == nil {
		return rawCatalog{}, errNoSource
	}

	var raw rawCatalog
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		raw.general, err = remote.TopAnime(gctx, limits.TopAnime)
		return err
	})
	g.Go(func() (err error) {
		raw.seasons, err = remote.SeasonNow(gctx, limits.Season)
		return err
	})
	g.Go(func() (err error) {
		raw.characters, err = remote.TopCharacters(gctx, limits.Characters)
		return err
	})

	if err := g.Wait(); err != nil {
		return rawCatalog{}, err
	}
	return raw, nil
}

func dedupCharacters(list []domain.CharacterRecord) []domain.CharacterRecord {
	seen := make(map[int]struct{}, len(list))
	out := make([]domain.CharacterRecord, 0, len(list))
	for _, c := range list {
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	return out
}
