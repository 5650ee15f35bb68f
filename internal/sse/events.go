// Package sse streams catalog and watch-list change events to connected
// clients as Server-Sent Events.
package sse

import (
	"time"

	"github.com/nimelist/nimelist-server/internal/domain"
)

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventCatalogLoaded is sent after every catalog load, including the
	// reloads triggered by snapshot changes.
	EventCatalogLoaded EventType = "catalog.loaded"

	// EventWatchListUpdated is sent when an entry is added or changes status.
	EventWatchListUpdated EventType = "watchlist.updated"
	// EventWatchListRemoved is sent when an entry is removed.
	EventWatchListRemoved EventType = "watchlist.removed"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`
}

// CatalogEventData is the data payload for catalog.loaded.
type CatalogEventData struct {
	Source     domain.CatalogSource `json:"source"`
	LoadID     string               `json:"load_id"`
	Anime      int                  `json:"anime"`
	Characters int                  `json:"characters"`
}

// WatchListEventData is the data payload for watchlist.updated.
type WatchListEventData struct {
	Entry domain.WatchListEntry `json:"entry"`
}

// WatchListRemovedEventData is the data payload for watchlist.removed.
type WatchListRemovedEventData struct {
	AnimeID   int       `json:"anime_id"`
	RemovedAt time.Time `json:"removed_at"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// NewCatalogLoadedEvent creates a catalog.loaded event.
func NewCatalogLoadedEvent(cat *domain.Catalog) Event {
	return Event{
		Type: EventCatalogLoaded,
		Data: CatalogEventData{
			Source:     cat.Source,
			LoadID:     cat.LoadID,
			Anime:      len(cat.Anime),
			Characters: len(cat.Characters),
		},
		Timestamp: time.Now(),
	}
}

// NewWatchListUpdatedEvent creates a watchlist.updated event.
func NewWatchListUpdatedEvent(entry domain.WatchListEntry) Event {
	return Event{
		Type:      EventWatchListUpdated,
		Data:      WatchListEventData{Entry: entry},
		Timestamp: time.Now(),
	}
}

// NewWatchListRemovedEvent creates a watchlist.removed event.
func NewWatchListRemovedEvent(animeID int) Event {
	now := time.Now()
	return Event{
		Type:      EventWatchListRemoved,
		Data:      WatchListRemovedEventData{AnimeID: animeID, RemovedAt: now},
		Timestamp: now,
	}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	now := time.Now()
	return Event{
		Type:      EventHeartbeat,
		Data:      HeartbeatEventData{ServerTime: now},
		Timestamp: now,
	}
}
