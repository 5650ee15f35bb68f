package main

import (
	"context"
	"fmt"
	"os"

	"github.com/nimelist/nimelist-server/internal/config"
	"github.com/nimelist/nimelist-server/internal/di/providers"
	"github.com/nimelist/nimelist-server/internal/logger"
	"github.com/nimelist/nimelist-server/internal/metadata/jikan"
	"github.com/nimelist/nimelist-server/internal/search"
	"github.com/nimelist/nimelist-server/internal/service"
	"github.com/nimelist/nimelist-server/internal/store"
	"github.com/nimelist/nimelist-server/internal/validation"
	"github.com/nimelist/nimelist-server/internal/watchlist"
)

// AppOptions configures an App.
type AppOptions struct {
	EnvFile   string
	Overrides config.Overrides
}

// App holds the services a command needs. The record store is opened
// lazily because only the watch-list commands use it.
type App struct {
	Config  *config.Config
	Log     *logger.Logger
	Jikan   *jikan.Client
	Catalog *service.CatalogService
	Search  *service.SearchService

	index     *search.Index
	records   store.RecordStore
	watchList *service.WatchListService
}

// NewApp loads configuration and builds the catalog services.
func NewApp(_ context.Context, opts AppOptions) (*App, error) {
	cfg, err := config.Load(opts.EnvFile, opts.Overrides)
	if err != nil {
		return nil, err
	}

	log := logger.New(logger.Config{
		Writer:      os.Stderr,
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
	})

	client, err := jikan.New(jikan.Options{
		BaseURL:        cfg.Jikan.BaseURL,
		Timeout:        cfg.Jikan.Timeout,
		RequestsPerSec: cfg.Jikan.RequestsPerSec,
		Logger:         log.Component("jikan").Logger,
	})
	if err != nil {
		return nil, err
	}

	index, err := search.NewIndex(log.Component("search").Logger)
	if err != nil {
		client.Close()
		return nil, err
	}

	catalogService := service.NewCatalogService(providers.NewFetcher(cfg, client, log), service.CatalogOptions{
		TTL:     cfg.Catalog.TTL,
		Indexer: index,
		Logger:  log.Component("catalog").Logger,
	})

	return &App{
		Config:  cfg,
		Log:     log,
		Jikan:   client,
		Catalog: catalogService,
		Search:  service.NewSearchService(index, catalogService, log.Logger),
		index:   index,
	}, nil
}

// WatchList opens the record store on first use.
func (a *App) WatchList() (*service.WatchListService, error) {
	if a.watchList != nil {
		return a.watchList, nil
	}

	records, err := providers.OpenRecordStore(a.Config.Storage, a.Log.Component("store").Logger)
	if err != nil {
		return nil, fmt.Errorf("open watch-list store: %w", err)
	}
	a.records = records
	a.watchList = service.NewWatchListService(
		watchlist.New(records, watchlist.WithLogger(a.Log.Component("watchlist").Logger)),
		a.Catalog,
		validation.New(),
		a.Log.Logger,
	)
	return a.watchList, nil
}

// Close releases everything the app opened.
func (a *App) Close() {
	if a.records != nil {
		if err := a.records.Close(); err != nil {
			a.Log.Error("close record store", "error", err)
		}
	}
	_ = a.index.Close()
	a.Jikan.Close()
}
