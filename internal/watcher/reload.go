package watcher

import (
	"context"
	"log/slog"

	"github.com/nimelist/nimelist-server/internal/domain"
)

// CatalogReloader is the part of the catalog service the watcher drives.
type CatalogReloader interface {
	Current() *domain.Catalog
	Reload(ctx context.Context) (*domain.Catalog, error)
}

// ReloadOnChange returns a Handler that reloads the catalog when snapshot
// files change, unless the cached catalog came from the remote API: a
// remote catalog does not read the snapshots, so there is nothing to pick up.
func ReloadOnChange(catalog CatalogReloader, logger *slog.Logger) Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return func(ctx context.Context, events []Event) {
		if cur := catalog.Current(); cur != nil && cur.Source == domain.SourceRemote {
			logger.Debug("snapshots changed, catalog is remote, not reloading", "files", len(events))
			return
		}

		cat, err := catalog.Reload(ctx)
		if err != nil {
			logger.Warn("catalog reload after snapshot change failed", "error", err)
			return
		}
		logger.Info("catalog reloaded after snapshot change",
			"files", len(events),
			"source", cat.Source,
			"load_id", cat.LoadID,
		)
	}
}
