package service

import (
	"log/slog"
	"sync"

	"github.com/nimelist/nimelist-server/internal/sse"
)

func discardLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }

// recordingEmitter collects emitted events.
type recordingEmitter struct {
	mu     sync.Mutex
	events []sse.Event
}

func (r *recordingEmitter) Emit(event sse.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingEmitter) types() []sse.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]sse.EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}
