// Package debounce delays an action until its input has been quiet for a
// fixed period.
//
// Every Trigger stops the previously scheduled timer and starts a new one;
// only the timer that survives the quiet period runs the callback, with the
// most recent value. A generation counter guards against a stopped timer
// whose function was already dispatched.
package debounce

import (
	"sync"
	"time"
)

// DefaultDelay is the quiet period used for search input.
const DefaultDelay = 300 * time.Millisecond

// Debouncer coalesces bursts of values into one callback invocation.
// The zero value is not usable; create one with New.
type Debouncer[T any] struct {
	delay time.Duration
	fn    func(T)

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	value   T
	pending bool
	stopped bool
	running sync.WaitGroup
}

// New returns a debouncer that calls fn with the latest value once delay
// has passed without another Trigger. A non-positive delay uses DefaultDelay.
func New[T any](delay time.Duration, fn func(T)) *Debouncer[T] {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer[T]{delay: delay, fn: fn}
}

// Trigger records v and restarts the quiet period.
func (d *Debouncer[T]) Trigger(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.cancelLocked()
	d.value = v
	d.pending = true

	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

// Cancel drops the pending value, if any, without running the callback.
func (d *Debouncer[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
}

// Flush runs the callback immediately with the pending value. It reports
// whether there was one.
func (d *Debouncer[T]) Flush() bool {
	d.mu.Lock()
	if !d.pending || d.stopped {
		d.mu.Unlock()
		return false
	}
	v := d.value
	d.cancelLocked()
	d.running.Add(1)
	d.mu.Unlock()

	defer d.running.Done()
	d.fn(v)
	return true
}

// Pending reports whether a callback is scheduled.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Stop cancels any pending value, rejects further triggers and waits for a
// callback already in progress to return.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	d.cancelLocked()
	d.stopped = true
	d.mu.Unlock()

	d.running.Wait()
}

// cancelLocked stops the current timer and invalidates its generation.
func (d *Debouncer[T]) cancelLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	d.pending = false
	var zero T
	d.value = zero
}

func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || !d.pending || d.stopped {
		d.mu.Unlock()
		return
	}
	v := d.value
	d.pending = false
	d.timer = nil
	d.running.Add(1)
	d.mu.Unlock()

	defer d.running.Done()
	d.fn(v)
}
