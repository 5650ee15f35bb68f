package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimelist/nimelist-server/internal/domain"
	"github.com/nimelist/nimelist-server/internal/metadata/jikan"
)

func ptr[T any](v T) *T { return &v }

func anime(id int, title string, score *float64, episodes *int) jikan.Anime {
	return jikan.Anime{MalID: id, Title: title, Score: score, Episodes: episodes}
}

// fakeRemote implements RemoteSource with per-endpoint results.
type fakeRemote struct {
	top, season []jikan.Anime
	chars       []jikan.Character
	topErr      error
	seasonErr   error
	charsErr    error

	calls   atomic.Int32
	barrier *sync.WaitGroup // when set, every call waits for the others
}

func (f *fakeRemote) wait(ctx context.Context) error {
	f.calls.Add(1)
	if f.barrier == nil {
		return nil
	}
	f.barrier.Done()
	done := make(chan struct{})
	go func() {
		f.barrier.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-time.After(2 * time.Second):
		return errors.New("requests were not issued concurrently")
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeRemote) TopAnime(ctx context.Context, _ int) ([]jikan.Anime, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return f.top, f.topErr
}

func (f *fakeRemote) SeasonNow(ctx context.Context, _ int) ([]jikan.Anime, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return f.season, f.seasonErr
}

func (f *fakeRemote) TopCharacters(ctx context.Context, _ int) ([]jikan.Character, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return f.chars, f.charsErr
}

func snapshotFS() fstest.MapFS {
	return fstest.MapFS{
		AnimeListFile: {Data: []byte(`{"data": [
			{"mal_id": 1, "title": "Cowboy Bebop", "score": 8.75, "episodes": 26, "type": "TV",
			 "images": {"jpg": {"image_url": "https://cdn.example/bebop.jpg"}},
			 "aired": {"from": "1998-04-03T00:00:00+00:00"}},
			{"mal_id": 5, "title": "Trigun", "score": null, "episodes": 2, "type": "TV"}
		]}`)},
		NewSeasonsFile: {Data: []byte(`{"data": [
			{"mal_id": 5, "title": "Trigun Stampede", "episodes": 12},
			{"mal_id": 9, "title": "Fresh Season", "episodes": 0, "airing": true,
			 "streaming_urls": ["https://stream.example/9/1"]}
		]}`)},
		CharactersFile: {Data: []byte(`{"data": [
			{"mal_id": 1, "name": "Spike Spiegel", "favorites": 45000,
			 "anime": [{"role": "Main", "anime": {"mal_id": 1, "title": "Cowboy Bebop"}}]}
		]}`)},
	}
}

func newTestFetcher(remote RemoteSource, snapshots fstest.MapFS) *Fetcher {
	opts := Options{
		Normalizer: Normalizer{EpisodeURLBase: "https://watchnime.com/watch"},
		Clock:      func() time.Time { return time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC) },
	}
	if remote != nil {
		opts.Remote = remote
	}
	if snapshots != nil {
		opts.Snapshots = snapshots
	}
	return NewFetcher(opts)
}

func animeIDs(c *domain.Catalog) []int {
	out := make([]int, len(c.Anime))
	for i, a := range c.Anime {
		out[i] = a.ID
	}
	return out
}

func TestFetch_RemoteSuccess(t *testing.T) {
	remote := &fakeRemote{
		top:    []jikan.Anime{anime(10, "Top", ptr(9.0), ptr(3)), anime(11, "Second", nil, nil)},
		season: []jikan.Anime{anime(12, "Seasonal", ptr(7.5), ptr(1)), anime(10, "Top (season copy)", ptr(9.0), ptr(3))},
		chars:  []jikan.Character{{MalID: 1, Name: "Levi", Favorites: ptr(175000)}},
	}

	cat := newTestFetcher(remote, snapshotFS()).Fetch(context.Background())

	assert.Equal(t, domain.SourceRemote, cat.Source)
	assert.Equal(t, []int{10, 11, 12}, animeIDs(cat), "remote mode dedups by id too")
	assert.Equal(t, "Top", cat.Anime[0].Title, "first seen wins")
	assert.Len(t, cat.Characters, 1)
	assert.NotEmpty(t, cat.LoadID)
	assert.Equal(t, int32(3), remote.calls.Load(), "one request per endpoint, no retries")

	second := cat.Anime[1]
	assert.Zero(t, second.Score)
	assert.Equal(t, domain.PlaceholderImage, second.Image)
	assert.Empty(t, second.StreamingURLs)

	assert.Equal(t, []string{
		"https://watchnime.com/watch/10/1",
		"https://watchnime.com/watch/10/2",
		"https://watchnime.com/watch/10/3",
	}, cat.Anime[0].StreamingURLs)
}

func TestFetch_RemoteRequestsRunConcurrently(t *testing.T) {
	var barrier sync.WaitGroup
	barrier.Add(3)
	remote := &fakeRemote{
		top:     []jikan.Anime{anime(1, "A", nil, nil)},
		barrier: &barrier,
	}

	cat := newTestFetcher(remote, nil).Fetch(context.Background())

	assert.Equal(t, domain.SourceRemote, cat.Source)
}

func TestFetch_FallsBackOnAnyRemoteFailure(t *testing.T) {
	tests := []struct {
		name   string
		remote *fakeRemote
	}{
		{"rate limited top list", &fakeRemote{topErr: &jikan.Error{Op: "topAnime", Status: 429, Err: jikan.ErrRateLimited}}},
		{"season server error", &fakeRemote{seasonErr: jikan.ErrServer}},
		{"characters transport error", &fakeRemote{charsErr: errors.New("connection reset")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := newTestFetcher(tt.remote, snapshotFS()).Fetch(context.Background())

			assert.Equal(t, domain.SourceLocal, cat.Source)
			assert.Equal(t, []int{1, 5, 9}, animeIDs(cat))
		})
	}
}

func TestFetch_LocalMergeAndNormalization(t *testing.T) {
	cat := newTestFetcher(nil, snapshotFS()).Fetch(context.Background())
	require.Equal(t, domain.SourceLocal, cat.Source)

	bebop, trigun, fresh := cat.Anime[0], cat.Anime[1], cat.Anime[2]

	assert.Equal(t, "https://cdn.example/bebop.jpg", bebop.Image)
	assert.Len(t, bebop.StreamingURLs, 26)
	assert.Equal(t, "https://watchnime.com/watch/1/26", bebop.StreamingURLs[25])
	require.NotNil(t, bebop.Aired.From)
	assert.Equal(t, 1998, bebop.Aired.From.Year())

	assert.Equal(t, "Trigun", trigun.Title, "general list wins over new seasons")
	assert.Zero(t, trigun.Score)
	assert.Equal(t, domain.PlaceholderImage, trigun.Image)

	assert.Equal(t, []string{"https://stream.example/9/1"}, fresh.StreamingURLs, "existing links are kept")
	assert.True(t, fresh.Airing)

	require.Len(t, cat.Characters, 1)
	assert.Equal(t, []domain.AnimeRef{{ID: 1, Title: "Cowboy Bebop", Role: "Main"}}, cat.Characters[0].Anime)
}

func TestFetch_TotalFailureReturnsEmptyCatalog(t *testing.T) {
	broken := snapshotFS()
	delete(broken, CharactersFile)

	tests := []struct {
		name      string
		snapshots fstest.MapFS
	}{
		{"no snapshots configured", nil},
		{"one snapshot missing", broken},
		{"unparsable snapshot", fstest.MapFS{
			AnimeListFile:  {Data: []byte(`{"data": [`)},
			CharactersFile: {Data: []byte(`{"data": []}`)},
			NewSeasonsFile: {Data: []byte(`{"data": []}`)},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := &fakeRemote{topErr: jikan.ErrServer}

			cat := newTestFetcher(remote, tt.snapshots).Fetch(context.Background())

			require.NotNil(t, cat)
			assert.Equal(t, domain.SourceEmpty, cat.Source)
			assert.True(t, cat.Empty())
			assert.NotNil(t, cat.Anime)
		})
	}
}

func TestWriteSnapshots_ReadableAsFallback(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "snapshots")
	remote := &fakeRemote{
		top:    []jikan.Anime{anime(1, "Cowboy Bebop", ptr(8.75), ptr(26))},
		season: []jikan.Anime{anime(2, "Dandadan", nil, nil)},
		chars:  []jikan.Character{{MalID: 40, Name: "Luffy"}},
	}

	res, err := WriteSnapshots(context.Background(), remote, dir, Limits{})
	require.NoError(t, err)
	assert.Equal(t, SnapshotResult{Dir: dir, Anime: 1, Seasons: 1, Characters: 1}, res)

	for _, name := range SnapshotFiles {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	cat := NewFetcher(Options{Snapshots: os.DirFS(dir)}).Fetch(context.Background())
	assert.Equal(t, domain.SourceLocal, cat.Source)
	assert.Equal(t, []int{1, 2}, animeIDs(cat))
}

func TestWriteSnapshots_NothingWrittenOnFailure(t *testing.T) {
	dir := t.TempDir()
	remote := &fakeRemote{charsErr: jikan.ErrRateLimited}

	_, err := WriteSnapshots(context.Background(), remote, dir, Limits{})
	require.ErrorIs(t, err, jikan.ErrRateLimited)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
