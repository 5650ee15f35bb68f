// Package watcher reports changes to files in one directory. Bursts of
// filesystem events are coalesced so a handler runs once per quiet period
// with the final state of every touched file.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/nimelist/nimelist-server/internal/debounce"
)

// Handler receives the coalesced events of one quiet period, sorted by path.
type Handler func(ctx context.Context, events []Event)

// Watcher monitors one directory with fsnotify.
type Watcher struct {
	dir     string
	opts    Options
	handler Handler
	logger  *slog.Logger
	fsw     *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]Event
	ctx     context.Context

	debouncer *debounce.Debouncer[struct{}]
	closeOnce sync.Once
}

// New starts watching dir. Events are not delivered until Run is called.
func New(dir string, handler Handler, logger *slog.Logger, opts Options) (*Watcher, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	opts.setDefaults()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	dir = filepath.Clean(dir)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	w := &Watcher{
		dir:     dir,
		opts:    opts,
		handler: handler,
		logger:  logger,
		fsw:     fsw,
		pending: make(map[string]Event),
		ctx:     context.Background(),
	}
	w.debouncer = debounce.New(opts.Quiet, func(struct{}) { w.flush() })

	logger.Info("watching directory", "path", dir, "files", opts.Files)
	return w, nil
}

// Run processes events until ctx is cancelled or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	w.mu.Lock()
	w.ctx = ctx
	w.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "path", w.dir, "error", err)
		}
	}
}

// Close stops watching, drops pending events and waits for a running
// handler.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		w.debouncer.Stop()
		err = w.fsw.Close()
	})
	return err
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if w.opts.shouldIgnore(ev.Name) {
		return
	}

	var typ EventType
	switch {
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		typ = EventRemoved
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		typ = EventChanged
	default:
		return
	}

	w.mu.Lock()
	w.pending[ev.Name] = Event{Type: typ, Path: ev.Name}
	w.mu.Unlock()

	w.logger.Debug("file event", "path", ev.Name, "op", ev.Op.String())
	w.debouncer.Trigger(struct{}{})
}

func (w *Watcher) flush() {
	w.mu.Lock()
	events := slices.Collect(maps.Values(w.pending))
	clear(w.pending)
	ctx := w.ctx
	w.mu.Unlock()

	if len(events) == 0 {
		return
	}
	slices.SortFunc(events, func(a, b Event) int { return strings.Compare(a.Path, b.Path) })
	w.handler(ctx, events)
}
