package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/nimelist/nimelist-server/internal/metadata/jikan"
)

// Snapshot file names inside the snapshot directory. Each holds a JSON
// object with a "data" array in the Jikan list shape.
const (
	AnimeListFile  = "anime-list.json"
	CharactersFile = "characters-list.json"
	NewSeasonsFile = "new-seasons.json"
)

// SnapshotFiles lists every snapshot file.
var SnapshotFiles = []string{AnimeListFile, CharactersFile, NewSeasonsFile}

// rawCatalog is the three upstream collections before normalization.
type rawCatalog struct {
	general    []jikan.Anime
	seasons    []jikan.Anime
	characters []jikan.Character
}

func readList[T any](fsys fs.FS, name string) ([]T, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", name, err)
	}
	var resp jikan.ListResponse[T]
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", name, err)
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("parse snapshot %s: missing data array", name)
	}
	return resp.Data, nil
}

// readSnapshots reads the three snapshot files concurrently. All three must
// be readable.
func readSnapshots(ctx context.Context, fsys fs.FS) (rawCatalog, error) {
	var raw rawCatalog
	g, _ := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		raw.general, err = readList[jikan.Anime](fsys, AnimeListFile)
		return err
	})
	g.Go(func() (err error) {
		raw.characters, err = readList[jikan.Character](fsys, CharactersFile)
		return err
	})
	g.Go(func() (err error) {
		raw.seasons, err = readList[jikan.Anime](fsys, NewSeasonsFile)
		return err
	})

	if err := g.Wait(); err != nil {
		return rawCatalog{}, err
	}
	return raw, nil
}

// SnapshotResult reports what WriteSnapshots wrote.
type SnapshotResult struct {
	Dir        string `json:"dir"`
	Anime      int    `json:"anime"`
	Seasons    int    `json:"seasons"`
	Characters int    `json:"characters"`
}

// WriteSnapshots fetches the three remote collections and stores them as
// the local fallback files in dir. Files are replaced atomically, and
// nothing is written unless all three fetches succeed.
func WriteSnapshots(ctx context.Context, remote RemoteSource, dir string, limits Limits) (SnapshotResult, error) {
	raw, err := fetchRemote(ctx, remote, limits.withDefaults())
	if err != nil {
		return SnapshotResult{}, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return SnapshotResult{}, fmt.Errorf("create snapshot dir: %w", err)
	}

	files := map[string]any{
		AnimeListFile:  jikan.ListResponse[jikan.Anime]{Data: raw.general},
		NewSeasonsFile: jikan.ListResponse[jikan.Anime]{Data: raw.seasons},
		CharactersFile: jikan.ListResponse[jikan.Character]{Data: raw.characters},
	}
	for name, v := range files {
		if err := writeJSONAtomic(filepath.Join(dir, name), v); err != nil {
			return SnapshotResult{}, err
		}
	}

	return SnapshotResult{
		Dir:        dir,
		Anime:      len(raw.general),
		Seasons:    len(raw.seasons),
		Characters: len(raw.characters),
	}, nil
}

func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	return os.Rename(tmp.Name(), path)
}
