// Command dbinspect prints the contents of the watch-list record store.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/nimelist/nimelist-server/internal/config"
	"github.com/nimelist/nimelist-server/internal/di/providers"
	"github.com/nimelist/nimelist-server/internal/domain"
	"github.com/nimelist/nimelist-server/internal/logger"
	"github.com/nimelist/nimelist-server/internal/store"
	"github.com/nimelist/nimelist-server/internal/watchlist"
)

func main() {
	cfg, err := config.Load(".env", config.Overrides{
		"DATA_PATH":     os.Getenv("DB_PATH"),
		"STORE_BACKEND": os.Getenv("DB_BACKEND"),
	})
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	records, err := providers.OpenRecordStore(cfg.Storage, logger.Discard().Logger)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer records.Close()

	ctx := context.Background()

	fmt.Println("=== Database Inspection ===")
	fmt.Printf("Backend: %s\n", cfg.Storage.Backend)
	fmt.Printf("Path:    %s\n", cfg.Storage.DataPath)
	fmt.Println()

	if lister, ok := records.(store.KeyLister); ok {
		keys, err := lister.Keys(ctx)
		if err != nil {
			log.Fatalf("Failed to list keys: %v", err)
		}
		fmt.Printf("Keys (%d):\n", len(keys))
		for _, k := range keys {
			fmt.Printf("  %s\n", k)
		}
		fmt.Println()
	}

	raw, err := records.Get(ctx, watchlist.RecordKey)
	if errors.Is(err, store.ErrNotFound) {
		fmt.Println("No watch-list stored yet.")
		return
	}
	if err != nil {
		log.Fatalf("Failed to read watch-list: %v", err)
	}

	var entries []domain.WatchListEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		fmt.Printf("Watch-list record is not valid JSON (%d bytes): %v\n", len(raw), err)
		os.Exit(1)
	}

	var counts domain.WatchListCounts
	for _, e := range entries {
		counts.Add(e.Status)
	}

	fmt.Printf("=== Watch-list (%d entries) ===\n", counts.All)
	for i, e := range entries {
		fmt.Printf("[%d] %s\n", i, e.Anime.Title)
		fmt.Printf("    ID: %d  Status: %s  Episodes: %d\n", e.Anime.ID, e.Status, e.Anime.Episodes)
		fmt.Printf("    Added: %s\n", e.AddedAt.Format("2006-01-02 15:04:05"))
	}

	fmt.Println()
	fmt.Println("=== Summary ===")
	fmt.Printf("Watching:  %d\n", counts.Watching)
	fmt.Printf("Completed: %d\n", counts.Completed)
	fmt.Printf("Planning:  %d\n", counts.Planning)
	fmt.Printf("Dropped:   %d\n", counts.Dropped)
}
