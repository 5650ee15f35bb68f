package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/nimelist/nimelist-server/internal/catalog"
	"github.com/nimelist/nimelist-server/internal/config"
	"github.com/nimelist/nimelist-server/internal/logger"
	"github.com/nimelist/nimelist-server/internal/service"
	"github.com/nimelist/nimelist-server/internal/watcher"
)

// SnapshotWatcherHandle wraps the snapshot watcher with shutdown capability.
// Watcher is nil when watching is disabled or the directory is missing.
type SnapshotWatcherHandle struct {
	*watcher.Watcher
	cancel context.CancelFunc
	done   chan struct{}
}

// Shutdown implements do.Shutdownable.
func (h *SnapshotWatcherHandle) Shutdown() error {
	if h.Watcher == nil {
		return nil
	}
	h.cancel()
	err := h.Close()
	<-h.done
	return err
}

// ProvideSnapshotWatcher starts watching the snapshot directory so edits to
// the fallback files are picked up without a restart.
func ProvideSnapshotWatcher(i do.Injector) (*SnapshotWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	catalogService := do.MustInvoke[*service.CatalogService](i)

	if !cfg.Catalog.WatchSnapshots {
		log.Info("Snapshot watching disabled by configuration")
		return &SnapshotWatcherHandle{}, nil
	}

	watchLog := log.Component("watcher").Logger
	w, err := watcher.New(cfg.Catalog.SnapshotPath,
		watcher.ReloadOnChange(catalogService, watchLog),
		watchLog,
		watcher.Options{Files: catalog.SnapshotFiles},
	)
	if err != nil {
		// Non-fatal: the catalog still reloads on TTL expiry.
		log.Warn("Snapshot watcher unavailable", "path", cfg.Catalog.SnapshotPath, "error", err)
		return &SnapshotWatcherHandle{}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := w.Run(ctx); err != nil {
			log.Error("Snapshot watcher stopped", "error", err)
		}
	}()

	log.Info("Snapshot watcher started", "path", cfg.Catalog.SnapshotPath)
	return &SnapshotWatcherHandle{Watcher: w, cancel: cancel, done: done}, nil
}
