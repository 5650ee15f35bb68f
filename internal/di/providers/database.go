package providers

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/nimelist/nimelist-server/internal/config"
	"github.com/nimelist/nimelist-server/internal/logger"
	"github.com/nimelist/nimelist-server/internal/store"
	"github.com/nimelist/nimelist-server/internal/store/sqlite"
)

// RecordStoreHandle wraps the record store with shutdown capability.
type RecordStoreHandle struct {
	store.RecordStore
}

// Shutdown implements do.Shutdownable.
func (h *RecordStoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideRecordStore opens the record store selected by STORE_BACKEND.
func ProvideRecordStore(i do.Injector) (*RecordStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	records, err := OpenRecordStore(cfg.Storage, log.Component("store").Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Record store initialized", "backend", cfg.Storage.Backend, "path", cfg.Storage.DataPath)
	return &RecordStoreHandle{RecordStore: records}, nil
}

// OpenRecordStore opens the configured backend under the data path. The
// command line tools share it with the server.
func OpenRecordStore(cfg config.StorageConfig, logger *slog.Logger) (store.RecordStore, error) {
	if err := os.MkdirAll(cfg.DataPath, 0o755); err != nil {
		return nil, fmt.Errorf("create data path: %w", err)
	}

	switch cfg.Backend {
	case "sqlite":
		return sqlite.Open(filepath.Join(cfg.DataPath, "nimelist.db"), logger)
	default:
		return store.Open(store.Options{Path: filepath.Join(cfg.DataPath, "db"), Logger: logger})
	}
}
