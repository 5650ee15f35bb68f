package providers

import (
	"github.com/samber/do/v2"

	"github.com/nimelist/nimelist-server/internal/catalog"
	"github.com/nimelist/nimelist-server/internal/config"
	"github.com/nimelist/nimelist-server/internal/logger"
	"github.com/nimelist/nimelist-server/internal/service"
	"github.com/nimelist/nimelist-server/internal/validation"
	"github.com/nimelist/nimelist-server/internal/watchlist"
)

// ProvideCatalogService provides the cached catalog service.
func ProvideCatalogService(i do.Injector) (*service.CatalogService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	fetcher := do.MustInvoke[*catalog.Fetcher](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	events := do.MustInvoke[*EventManagerHandle](i)

	return service.NewCatalogService(fetcher, service.CatalogOptions{
		TTL:     cfg.Catalog.TTL,
		Indexer: indexHandle.Index,
		Events:  events.Manager,
		Logger:  log.Component("catalog").Logger,
	}), nil
}

// ProvideValidator provides the request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideWatchListStore provides the watch-list repository.
func ProvideWatchListStore(i do.Injector) (*watchlist.Store, error) {
	records := do.MustInvoke[*RecordStoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return watchlist.New(records.RecordStore, watchlist.WithLogger(log.Component("watchlist").Logger)), nil
}

// ProvideWatchListService provides the watch-list service.
func ProvideWatchListService(i do.Injector) (*service.WatchListService, error) {
	store := do.MustInvoke[*watchlist.Store](i)
	catalogService := do.MustInvoke[*service.CatalogService](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)
	events := do.MustInvoke[*EventManagerHandle](i)

	svc := service.NewWatchListService(store, catalogService, validator, log.Logger)
	svc.SetEventEmitter(events.Manager)
	return svc, nil
}
