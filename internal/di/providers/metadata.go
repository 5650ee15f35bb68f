package providers

import (
	"os"

	"github.com/samber/do/v2"

	"github.com/nimelist/nimelist-server/internal/catalog"
	"github.com/nimelist/nimelist-server/internal/config"
	"github.com/nimelist/nimelist-server/internal/logger"
	"github.com/nimelist/nimelist-server/internal/metadata/jikan"
)

// JikanClientHandle wraps the Jikan client with shutdown capability.
type JikanClientHandle struct {
	*jikan.Client
}

// Shutdown implements do.Shutdownable.
func (h *JikanClientHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideJikanClient provides the rate-limited Jikan API client.
func ProvideJikanClient(i do.Injector) (*JikanClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client, err := jikan.New(jikan.Options{
		BaseURL:        cfg.Jikan.BaseURL,
		Timeout:        cfg.Jikan.Timeout,
		RequestsPerSec: cfg.Jikan.RequestsPerSec,
		Logger:         log.Component("jikan").Logger,
	})
	if err != nil {
		return nil, err
	}

	log.Info("Jikan client initialized", "base_url", cfg.Jikan.BaseURL, "rps", cfg.Jikan.RequestsPerSec)
	return &JikanClientHandle{Client: client}, nil
}

// ProvideFetcher provides the catalog fetcher: Jikan first, the snapshot
// directory as fallback.
func ProvideFetcher(i do.Injector) (*catalog.Fetcher, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	client := do.MustInvoke[*JikanClientHandle](i)

	return NewFetcher(cfg, client.Client, log), nil
}

// NewFetcher builds a fetcher from configuration. The command line tools
// share it with the server.
func NewFetcher(cfg *config.Config, remote catalog.RemoteSource, log *logger.Logger) *catalog.Fetcher {
	return catalog.NewFetcher(catalog.Options{
		Remote:    remote,
		Snapshots: os.DirFS(cfg.Catalog.SnapshotPath),
		Limits: catalog.Limits{
			TopAnime:   cfg.Jikan.TopAnimeLimit,
			Season:     cfg.Jikan.SeasonLimit,
			Characters: cfg.Jikan.CharactersLimit,
		},
		Normalizer: catalog.Normalizer{EpisodeURLBase: cfg.Catalog.EpisodeURLBase},
		Logger:     log.Component("catalog").Logger,
	})
}
