package service

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/nimelist/nimelist-server/internal/debounce"
	"github.com/nimelist/nimelist-server/internal/domain"
)

// LiveResult is one delivered search.
type LiveResult struct {
	Query   string
	Results []domain.AnimeRecord
	Err     error
}

type liveQuery struct {
	seq  uint64
	text string
}

// LiveSearch runs title searches as the user types. Keystrokes are
// debounced, and a result is delivered only if no newer query was entered
// while it was being computed.
type LiveSearch struct {
	catalog *CatalogService
	deliver func(LiveResult)
	timeout time.Duration
	logger  *slog.Logger

	latest    atomic.Uint64
	debouncer *debounce.Debouncer[liveQuery]
}

// NewLiveSearch creates a session that calls deliver with results. A
// non-positive delay uses debounce.DefaultDelay.
func NewLiveSearch(catalog *CatalogService, delay time.Duration, deliver func(LiveResult), logger *slog.Logger) *LiveSearch {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	ls := &LiveSearch{
		catalog: catalog,
		deliver: deliver,
		timeout: 30 * time.Second,
		logger:  logger,
	}
	ls.debouncer = debounce.New(delay, ls.run)
	return ls
}

// Query records the current input. A blank input clears the results
// immediately and cancels any pending search.
func (ls *LiveSearch) Query(text string) {
	seq := ls.latest.Add(1)
	if strings.TrimSpace(text) == "" {
		ls.debouncer.Cancel()
		ls.deliver(LiveResult{Query: text, Results: []domain.AnimeRecord{}})
		return
	}
	ls.debouncer.Trigger(liveQuery{seq: seq, text: text})
}

// Flush runs the pending query now. It reports whether one was pending.
func (ls *LiveSearch) Flush() bool {
	return ls.debouncer.Flush()
}

// Close cancels the pending query and waits for a running one.
func (ls *LiveSearch) Close() {
	ls.debouncer.Stop()
}

func (ls *LiveSearch) run(q liveQuery) {
	ctx, cancel := context.WithTimeout(context.Background(), ls.timeout)
	defer cancel()

	results, err := ls.catalog.SearchTitles(ctx, q.text)
	if q.seq != ls.latest.Load() {
		ls.logger.Debug("dropping stale live search result", "query", q.text)
		return
	}
	ls.deliver(LiveResult{Query: q.text, Results: results, Err: err})
}
