// Package di provides dependency injection configuration for the Nimelist
// server.
package di

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/nimelist/nimelist-server/internal/catalog"
	"github.com/nimelist/nimelist-server/internal/config"
	"github.com/nimelist/nimelist-server/internal/di/providers"
	"github.com/nimelist/nimelist-server/internal/logger"
	"github.com/nimelist/nimelist-server/internal/service"
	"github.com/nimelist/nimelist-server/internal/validation"
	"github.com/nimelist/nimelist-server/internal/watchlist"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideRecordStore)

	// Catalog sources
	do.Provide(injector, providers.ProvideJikanClient)
	do.Provide(injector, providers.ProvideFetcher)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideSearchService)

	// Change events
	do.Provide(injector, providers.ProvideEventManager)

	// Business services
	do.Provide(injector, providers.ProvideCatalogService)
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideWatchListStore)
	do.Provide(injector, providers.ProvideWatchListService)

	// Workers
	do.Provide(injector, providers.ProvideSnapshotWatcher)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns once the server is
// listening. The first catalog load runs in the background so a slow
// upstream does not delay startup.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	log := do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.RecordStoreHandle](injector)
	_ = do.MustInvoke[*providers.JikanClientHandle](injector)
	_ = do.MustInvoke[*catalog.Fetcher](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[*providers.EventManagerHandle](injector)
	catalogService := do.MustInvoke[*service.CatalogService](injector)
	_ = do.MustInvoke[*service.SearchService](injector)
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[*watchlist.Store](injector)
	_ = do.MustInvoke[*service.WatchListService](injector)

	// Workers
	_ = do.MustInvoke[*providers.SnapshotWatcherHandle](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	// Warm the catalog cache
	go func() {
		if _, err := catalogService.Catalog(context.Background()); err != nil {
			log.Warn("Initial catalog load failed", "error", err)
		}
	}()

	return nil
}
