package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/nimelist/nimelist-server/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type batchRecorder struct {
	mu      sync.Mutex
	batches [][]Event
}

func (r *batchRecorder) handle(_ context.Context, events []Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, events)
}

func (r *batchRecorder) get() [][]Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]Event(nil), r.batches...)
}

func startWatcher(t *testing.T, dir string, h Handler, opts Options) {
	t.Helper()
	w, err := New(dir, h, nil, opts)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		_ = w.Close()
	})
}

func TestWatcher_CoalescesBurst(t *testing.T) {
	dir := t.TempDir()
	rec := &batchRecorder{}
	startWatcher(t, dir, rec.handle, Options{
		Files: []string{"anime-list.json", "new-seasons.json"},
		Quiet: 100 * time.Millisecond,
	})

	for i := range 5 {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "anime-list.json"), []byte{byte('0' + i)}, 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new-seasons.json"), []byte("{}"), 0o644))

	require.Eventually(t, func() bool { return len(rec.get()) == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(200 * time.Millisecond)

	batches := rec.get()
	require.Len(t, batches, 1)
	assert.Equal(t, []Event{
		{Type: EventChanged, Path: filepath.Join(dir, "anime-list.json")},
		{Type: EventChanged, Path: filepath.Join(dir, "new-seasons.json")},
	}, batches[0])
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	rec := &batchRecorder{}
	startWatcher(t, dir, rec.handle, Options{
		Files: []string{"anime-list.json"},
		Quiet: 50 * time.Millisecond,
	})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".anime-list.json.123"), []byte("x"), 0o644))

	time.Sleep(200 * time.Millisecond)
	assert.Empty(t, rec.get())
}

func TestWatcher_AtomicReplaceIsAChange(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "characters-list.json")
	require.NoError(t, os.WriteFile(target, []byte("old"), 0o644))

	rec := &batchRecorder{}
	startWatcher(t, dir, rec.handle, Options{Quiet: 50 * time.Millisecond})

	tmp := filepath.Join(dir, ".characters-list.json.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("new"), 0o644))
	require.NoError(t, os.Rename(tmp, target))

	require.Eventually(t, func() bool { return len(rec.get()) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []Event{{Type: EventChanged, Path: target}}, rec.get()[0])
}

func TestNew_MissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "absent"), func(context.Context, []Event) {}, nil, Options{})
	assert.Error(t, err)
}

func TestOptions_ShouldIgnore(t *testing.T) {
	opts := Options{Files: []string{"anime-list.json"}}
	opts.setDefaults()

	assert.False(t, opts.shouldIgnore("/snap/anime-list.json"))
	assert.True(t, opts.shouldIgnore("/snap/other.json"))
	assert.True(t, opts.shouldIgnore("/snap/anime-list.json.tmp"))
	assert.True(t, opts.shouldIgnore("/snap/.anime-list.json"))

	all := Options{}
	all.setDefaults()
	assert.False(t, all.shouldIgnore("/snap/anything.json"))
}

type fakeCatalog struct {
	mu      sync.Mutex
	current *domain.Catalog
	reloads int
}

func (f *fakeCatalog) Current() *domain.Catalog {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

func (f *fakeCatalog) Reload(context.Context) (*domain.Catalog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reloads++
	f.current = &domain.Catalog{Source: domain.SourceLocal, LoadID: "reloaded"}
	return f.current, nil
}

func TestReloadOnChange(t *testing.T) {
	tests := []struct {
		name       string
		current    *domain.Catalog
		wantReload bool
	}{
		{"nothing loaded yet", nil, true},
		{"serving snapshots", &domain.Catalog{Source: domain.SourceLocal}, true},
		{"serving empty", &domain.Catalog{Source: domain.SourceEmpty}, true},
		{"serving remote", &domain.Catalog{Source: domain.SourceRemote}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := &fakeCatalog{current: tt.current}
			ReloadOnChange(cat, nil)(context.Background(), []Event{{Type: EventChanged, Path: "anime-list.json"}})

			if tt.wantReload {
				assert.Equal(t, 1, cat.reloads)
			} else {
				assert.Zero(t, cat.reloads)
			}
		})
	}
}
