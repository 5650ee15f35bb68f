package service

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type liveRecorder struct {
	mu      sync.Mutex
	results []LiveResult
}

func (r *liveRecorder) deliver(res LiveResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
}

func (r *liveRecorder) snapshot() []LiveResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]LiveResult(nil), r.results...)
}

func TestLiveSearch_OnlyLastQueryIsDelivered(t *testing.T) {
	svc, _ := newTestCatalogService(&fakeLoader{anime: fixtureAnime()}, nil)
	rec := &liveRecorder{}
	ls := NewLiveSearch(svc, 20*time.Millisecond, rec.deliver, nil)
	defer ls.Close()

	for _, q := range []string{"c", "co", "cow", "cowb"} {
		ls.Query(q)
	}

	require.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	got := rec.snapshot()
	require.Len(t, got, 1)
	assert.Equal(t, "cowb", got[0].Query)
	assert.NoError(t, got[0].Err)
	assert.Equal(t, []int{1}, ids(got[0].Results))
}

func TestLiveSearch_BlankQueryClearsImmediately(t *testing.T) {
	svc, _ := newTestCatalogService(&fakeLoader{anime: fixtureAnime()}, nil)
	rec := &liveRecorder{}
	ls := NewLiveSearch(svc, time.Hour, rec.deliver, nil)
	defer ls.Close()

	ls.Query("your")
	ls.Query("   ")

	got := rec.snapshot()
	require.Len(t, got, 1)
	assert.Empty(t, got[0].Results)
	assert.NotNil(t, got[0].Results)
	assert.False(t, ls.Flush(), "the pending search was cancelled")
}

func TestLiveSearch_Flush(t *testing.T) {
	svc, _ := newTestCatalogService(&fakeLoader{anime: fixtureAnime()}, nil)
	rec := &liveRecorder{}
	ls := NewLiveSearch(svc, time.Hour, rec.deliver, nil)
	defer ls.Close()

	ls.Query("your name")
	require.True(t, ls.Flush())

	got := rec.snapshot()
	require.Len(t, got, 1)
	assert.Equal(t, []int{2}, ids(got[0].Results))
}

func TestLiveSearch_StaleResultDropped(t *testing.T) {
	svc, _ := newTestCatalogService(&fakeLoader{anime: fixtureAnime()}, nil)
	rec := &liveRecorder{}
	ls := NewLiveSearch(svc, time.Hour, rec.deliver, nil)
	defer ls.Close()

	// A query computed after a newer one was entered is not delivered.
	ls.run(liveQuery{seq: ls.latest.Add(1), text: "bebop"})
	ls.latest.Add(1)
	ls.run(liveQuery{seq: ls.latest.Load() - 1, text: "your"})

	got := rec.snapshot()
	require.Len(t, got, 1)
	assert.Equal(t, "bebop", got[0].Query)
}
