// Package throttle spaces outgoing requests to a rate-limited API.
package throttle

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"
)

// DefaultInterval is the minimum spacing the recipe catalog tolerates.
const DefaultInterval = 1000 * time.Millisecond

// Throttler hands out dispatch slots at least Interval apart.
// A single Throttler must be shared by every caller of the same API.
type Throttler struct {
	interval time.Duration
	clock    Clock

	mu           sync.Mutex
	lastDispatch time.Time
}

// New creates a Throttler. A nil clock means the system clock.
func New(interval time.Duration, clock Clock) *Throttler {
	if clock == nil {
		clock = RealClock{}
	}
	if interval < 0 {
		interval = 0
	}
	return &Throttler{interval: interval, clock: clock}
}

// Interval returns the configured minimum spacing.
func (t *Throttler) Interval() time.Duration {
	return t.interval
}

// Wait reserves the next free slot and blocks until it arrives.
// The slot becomes the new last-dispatch time before the caller sleeps, so
// concurrent callers queue up behind each other in reservation order.
func (t *Throttler) Wait(ctx context.Context) error {
	t.mu.Lock()
	now := t.clock.Now()
	slot := now
	if !t.lastDispatch.IsZero() {
		if next := t.lastDispatch.Add(t.interval); next.After(now) {
			slot = next
		}
	}
	t.lastDispatch = slot
	t.mu.Unlock()

	delay := slot.Sub(now)
	if delay <= 0 {
		return nil
	}
	log.Printf("throttle: waiting %s before next catalog request", delay)
	return t.clock.Sleep(ctx, delay)
}

// Doer executes HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher is a Doer that waits on a Throttler before every request.
type Fetcher struct {
	throttler *Throttler
	next      Doer
}

// NewFetcher wraps next so that every request goes through throttler.
func NewFetcher(throttler *Throttler, next Doer) *Fetcher {
	if next == nil {
		next = &http.Client{Timeout: 30 * time.Second}
	}
	return &Fetcher{throttler: throttler, next: next}
}

// Do waits for a dispatch slot and then sends req. Errors from the
// underlying Doer are returned untouched.
func (f *Fetcher) Do(req *http.Request) (*http.Response, error) {
	if err := f.throttler.Wait(req.Context()); err != nil {
		return nil, err
	}
	return f.next.Do(req)
}
