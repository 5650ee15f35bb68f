package watcher

// EventType represents the kind of change seen on a watched file.
type EventType int

const (
	// EventChanged is emitted when a file is created, written or renamed
	// into place.
	EventChanged EventType = iota
	// EventRemoved is emitted when a file is deleted or renamed away.
	EventRemoved
)

// String returns the string representation of the event type.
func (t EventType) String() string {
	switch t {
	case EventChanged:
		return "changed"
	case EventRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event is the last change seen on one file during a quiet period.
type Event struct {
	Type EventType
	Path string
}
