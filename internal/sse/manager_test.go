package sse

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimelist/nimelist-server/internal/domain"
)

func receive(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case e := <-c.EventChan:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func startManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Start(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return m
}

func TestManager_BroadcastsToEveryClient(t *testing.T) {
	m := startManager(t)

	c1, err := m.Connect()
	require.NoError(t, err)
	c2, err := m.Connect()
	require.NoError(t, err)
	assert.NotEqual(t, c1.ID, c2.ID)
	assert.Equal(t, 2, m.ClientCount())

	m.Emit(NewWatchListRemovedEvent(7))

	for _, c := range []*Client{c1, c2} {
		e := receive(t, c)
		assert.Equal(t, EventWatchListRemoved, e.Type)
		assert.Equal(t, 7, e.Data.(WatchListRemovedEventData).AnimeID)
	}

	m.Disconnect(c1.ID)
	m.Disconnect(c1.ID)
	assert.Equal(t, 1, m.ClientCount())
}

func TestManager_SlowClientDropsInsteadOfBlocking(t *testing.T) {
	m := NewManager(nil)
	c, err := m.Connect()
	require.NoError(t, err)

	for range cap(c.EventChan) + 10 {
		m.broadcast(NewHeartbeatEvent())
	}
	assert.Len(t, c.EventChan, cap(c.EventChan))
}

func TestManager_Shutdown(t *testing.T) {
	m := NewManager(nil)
	c, err := m.Connect()
	require.NoError(t, err)

	m.Emit(NewCatalogLoadedEvent(&domain.Catalog{Source: domain.SourceLocal, LoadID: "abc"}))
	require.NoError(t, m.Shutdown(context.Background()))

	// The queued event is drained to the client before it is closed.
	e, ok := <-c.EventChan
	require.True(t, ok)
	assert.Equal(t, EventCatalogLoaded, e.Type)
	_, ok = <-c.EventChan
	assert.False(t, ok)

	m.Emit(NewHeartbeatEvent())
	assert.NoError(t, m.Shutdown(context.Background()), "second shutdown is a no-op")
	assert.Equal(t, 0, m.ClientCount())
}

func TestHandler_StreamsEvents(t *testing.T) {
	m := startManager(t)
	srv := httptest.NewServer(NewHandler(m, nil))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	r := bufio.NewReader(resp.Body)
	readFrame := func() (string, string) {
		t.Helper()
		var event, data string
		for {
			line, err := r.ReadString('\n')
			require.NoError(t, err)
			line = strings.TrimRight(line, "\n")
			switch {
			case line == "":
				return event, data
			case strings.HasPrefix(line, "event: "):
				event = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				data = strings.TrimPrefix(line, "data: ")
			}
		}
	}

	event, _ := readFrame()
	require.Equal(t, "connected", event)

	entry := domain.WatchListEntry{Anime: domain.AnimeSummary{ID: 1, Title: "Cowboy Bebop"}, Status: domain.StatusWatching}
	m.Emit(NewWatchListUpdatedEvent(entry))

	event, data := readFrame()
	require.Equal(t, string(EventWatchListUpdated), event)

	var got struct {
		Type EventType          `json:"type"`
		Data WatchListEventData `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(data), &got))
	assert.Equal(t, EventWatchListUpdated, got.Type)
	assert.Equal(t, "Cowboy Bebop", got.Data.Entry.Anime.Title)
}

func TestHandler_RejectsNonGet(t *testing.T) {
	h := NewHandler(NewManager(nil), nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
