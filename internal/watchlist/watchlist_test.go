package watchlist

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimelist/nimelist-server/internal/domain"
	domainerrors "github.com/nimelist/nimelist-server/internal/errors"
	"github.com/nimelist/nimelist-server/internal/store"
)

// memRecords is an in-memory store.RecordStore that counts writes.
type memRecords struct {
	mu     sync.Mutex
	data   map[string][]byte
	puts   int
	putErr error
}

func newMemRecords() *memRecords { return &memRecords{data: map[string][]byte{}} }

func (m *memRecords) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *memRecords) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.puts++
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *memRecords) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memRecords) Close() error { return nil }

var t0 = time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

func newTestStore(records store.RecordStore) (*Store, *time.Time) {
	now := t0
	return New(records, WithClock(func() time.Time { return now })), &now
}

func summary(id int, title string) domain.AnimeSummary {
	return domain.AnimeSummary{ID: id, Title: title, Image: domain.PlaceholderImage, Episodes: 12, Type: domain.TypeTV}
}

func TestStore_UpsertNewEntry(t *testing.T) {
	s, _ := newTestStore(newMemRecords())
	ctx := context.Background()

	entry, err := s.Upsert(ctx, summary(7, "Frieren"), domain.StatusPlanning)
	require.NoError(t, err)
	assert.Equal(t, t0, entry.AddedAt)

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, domain.WatchListEntry{Anime: summary(7, "Frieren"), Status: domain.StatusPlanning, AddedAt: t0}, all[0])
}

func TestStore_UpsertKeepsAddedAtAndSummary(t *testing.T) {
	s, now := newTestStore(newMemRecords())
	ctx := context.Background()

	_, err := s.Upsert(ctx, summary(7, "Frieren"), domain.StatusPlanning)
	require.NoError(t, err)

	*now = t0.Add(48 * time.Hour)
	entry, err := s.Upsert(ctx, summary(7, "Renamed"), domain.StatusCompleted)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCompleted, entry.Status)
	assert.Equal(t, t0, entry.AddedAt)
	assert.Equal(t, "Frieren", entry.Anime.Title)

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestStore_UpsertIsIdempotent(t *testing.T) {
	s, _ := newTestStore(newMemRecords())
	ctx := context.Background()

	first, err := s.Upsert(ctx, summary(7, "Frieren"), domain.StatusWatching)
	require.NoError(t, err)
	second, err := s.Upsert(ctx, summary(7, "Frieren"), domain.StatusWatching)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestStore_UpsertRejectsUnknownStatus(t *testing.T) {
	records := newMemRecords()
	s, _ := newTestStore(records)

	_, err := s.Upsert(context.Background(), summary(7, "Frieren"), "paused")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
	assert.Zero(t, records.puts)
}

func TestStore_RemoveAbsentIsNoOp(t *testing.T) {
	records := newMemRecords()
	s, _ := newTestStore(records)
	ctx := context.Background()

	require.NoError(t, s.Remove(ctx, 99))
	assert.Zero(t, records.puts, "removing from an empty list writes nothing")

	_, err := s.Upsert(ctx, summary(1, "Bebop"), domain.StatusWatching)
	require.NoError(t, err)
	require.NoError(t, s.Remove(ctx, 99))
	assert.Equal(t, 1, records.puts)
}

func TestStore_Remove(t *testing.T) {
	s, _ := newTestStore(newMemRecords())
	ctx := context.Background()

	for i, st := range []domain.WatchStatus{domain.StatusWatching, domain.StatusDropped, domain.StatusPlanning} {
		_, err := s.Upsert(ctx, summary(i+1, "x"), st)
		require.NoError(t, err)
	}
	require.NoError(t, s.Remove(ctx, 2))

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, []int{all[0].Anime.ID, all[1].Anime.ID})

	_, err = s.Get(ctx, 2)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestStore_CorruptRecordReadsEmpty(t *testing.T) {
	records := newMemRecords()
	records.data[RecordKey] = []byte(`{not json`)
	s, _ := newTestStore(records)
	ctx := context.Background()

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.NotNil(t, all)

	_, err = s.Upsert(ctx, summary(3, "Trigun"), domain.StatusWatching)
	require.NoError(t, err)
	assert.JSONEq(t,
		`[{"anime":{"id":3,"title":"Trigun","image":"/images/placeholder.jpg","episodes":12,"type":"TV"},"status":"watching","addedAt":"2025-01-10T09:00:00Z"}]`,
		string(records.data[RecordKey]))
}

func TestStore_CountsAndListByStatus(t *testing.T) {
	s, _ := newTestStore(newMemRecords())
	ctx := context.Background()

	statuses := []domain.WatchStatus{domain.StatusWatching, domain.StatusWatching, domain.StatusCompleted, domain.StatusDropped}
	for i, st := range statuses {
		_, err := s.Upsert(ctx, summary(i+1, "x"), st)
		require.NoError(t, err)
	}

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.WatchListCounts{All: 4, Watching: 2, Completed: 1, Dropped: 1}, counts)

	watching, err := s.ListByStatus(ctx, domain.StatusWatching)
	require.NoError(t, err)
	assert.Len(t, watching, 2)

	_, err = s.ListByStatus(ctx, "bogus")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestStore_WriteFailureSurfaces(t *testing.T) {
	records := newMemRecords()
	records.putErr = errors.New("disk full")
	s, _ := newTestStore(records)

	_, err := s.Upsert(context.Background(), summary(1, "x"), domain.StatusWatching)
	assert.ErrorContains(t, err, "disk full")
}

func TestStore_ConcurrentUpsertsAreSerialized(t *testing.T) {
	s, _ := newTestStore(newMemRecords())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Go(func() {
			_, err := s.Upsert(ctx, summary(i, "x"), domain.StatusPlanning)
			assert.NoError(t, err)
		})
	}
	wg.Wait()

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, counts.Planning)
}

func TestStore_BadgerBackend(t *testing.T) {
	records, err := store.Open(store.Options{InMemory: true})
	require.NoError(t, err)
	defer records.Close()

	s, _ := newTestStore(records)
	ctx := context.Background()

	_, err = s.Upsert(ctx, summary(5114, "FMA:B"), domain.StatusCompleted)
	require.NoError(t, err)

	again := New(records)
	got, err := again.Get(ctx, 5114)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)
	assert.True(t, t0.Equal(got.AddedAt))
}
