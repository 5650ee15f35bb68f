package domain

import (
	"fmt"
	"time"
)

// WatchStatus is the tracking state of a watch-list entry.
type WatchStatus string

// Watch-list statuses.
const (
	StatusWatching  WatchStatus = "watching"
	StatusCompleted WatchStatus = "completed"
	StatusPlanning  WatchStatus = "planning"
	StatusDropped   WatchStatus = "dropped"
)

// WatchStatuses lists every status in tab order.
var WatchStatuses = []WatchStatus{StatusWatching, StatusCompleted, StatusPlanning, StatusDropped}

// Valid reports whether s is a known status.
func (s WatchStatus) Valid() bool {
	switch s {
	case StatusWatching, StatusCompleted, StatusPlanning, StatusDropped:
		return true
	}
	return false
}

// ParseWatchStatus validates a status string.
func ParseWatchStatus(s string) (WatchStatus, error) {
	st := WatchStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown watch status %q", s)
	}
	return st, nil
}

// WatchListEntry tracks one title. AddedAt is set when the entry is created
// and never changes afterwards.
type WatchListEntry struct {
	Anime   AnimeSummary `json:"anime"`
	Status  WatchStatus  `json:"status"`
	AddedAt time.Time    `json:"addedAt"`
}

// WatchListCounts holds per-status entry counts for the list tabs.
type WatchListCounts struct {
	All       int `json:"all"`
	Watching  int `json:"watching"`
	Completed int `json:"completed"`
	Planning  int `json:"planning"`
	Dropped   int `json:"dropped"`
}

// Add counts one entry with the given status.
func (c *WatchListCounts) Add(s WatchStatus) {
	c.All++
	switch s {
	case StatusWatching:
		c.Watching++
	case StatusCompleted:
		c.Completed++
	case StatusPlanning:
		c.Planning++
	case StatusDropped:
		c.Dropped++
	}
}
