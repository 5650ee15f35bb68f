package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/nimelist/nimelist-server/internal/logger"
	"github.com/nimelist/nimelist-server/internal/sse"
)

// EventManagerHandle wraps the SSE manager with shutdown capability.
type EventManagerHandle struct {
	*sse.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *EventManagerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Manager.Shutdown(ctx)
	h.cancel()
	return err
}

// ProvideEventManager provides the SSE manager and starts its broadcast loop.
func ProvideEventManager(i do.Injector) (*EventManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	manager := sse.NewManager(log.Component("sse").Logger)
	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	return &EventManagerHandle{Manager: manager, cancel: cancel}, nil
}
