// Package ratelimit provides token-bucket rate limiting keyed by an arbitrary
// string, such as an upstream host or a client address.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultIdleTTL is how long an unused key keeps its bucket.
const DefaultIdleTTL = 10 * time.Minute

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedRateLimiter hands out one independent limiter per key. Buckets idle
// for longer than the idle TTL are evicted by a background sweeper until
// Stop is called.
type KeyedRateLimiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// Option configures a KeyedRateLimiter.
type Option func(*KeyedRateLimiter)

// WithIdleTTL overrides DefaultIdleTTL.
func WithIdleTTL(d time.Duration) Option {
	return func(k *KeyedRateLimiter) { k.idleTTL = d }
}

// New creates a keyed rate limiter allowing rps requests per second per key
// with the given burst.
func New(rps float64, burst int, opts ...Option) *KeyedRateLimiter {
	k := &KeyedRateLimiter{
		entries: make(map[string]*entry),
		limit:   rate.Limit(rps),
		burst:   burst,
		idleTTL: DefaultIdleTTL,
		now:     time.Now,
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(k)
	}

	k.wg.Add(1)
	go k.sweep()

	return k
}

// Allow reports whether a request for key may proceed now, consuming a token
// if so. It never blocks.
func (k *KeyedRateLimiter) Allow(key string) bool {
	return k.limiter(key).Allow()
}

// Wait blocks until a request for key may proceed or ctx is done.
func (k *KeyedRateLimiter) Wait(ctx context.Context, key string) error {
	return k.limiter(key).Wait(ctx)
}

// Len returns the number of tracked keys.
func (k *KeyedRateLimiter) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}

func (k *KeyedRateLimiter) limiter(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	e, ok := k.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(k.limit, k.burst)}
		k.entries[key] = e
	}
	e.lastSeen = k.now()
	return e.limiter
}

// evictIdle drops buckets not touched within the idle TTL.
func (k *KeyedRateLimiter) evictIdle() {
	cutoff := k.now().Add(-k.idleTTL)

	k.mu.Lock()
	defer k.mu.Unlock()
	for key, e := range k.entries {
		if e.lastSeen.Before(cutoff) {
			delete(k.entries, key)
		}
	}
}

func (k *KeyedRateLimiter) sweep() {
	defer k.wg.Done()

	interval := k.idleTTL / 2
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			k.evictIdle()
		case <-k.done:
			return
		}
	}
}

// Stop ends the background sweeper. It is safe to call more than once.
func (k *KeyedRateLimiter) Stop() {
	k.stopOnce.Do(func() {
		close(k.done)
	})
	k.wg.Wait()
}
