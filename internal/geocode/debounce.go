package geocode

import (
	"context"
	"sync"
	"time"
)

// DefaultDelay is how long the Debouncer waits for the typist to pause
// before issuing a lookup.
const DefaultDelay = 300 * time.Millisecond

// Lookuper is the one operation the Debouncer needs from a client.
type Lookuper interface {
	Lookup(ctx context.Context, query string) []Suggestion
}

// Debouncer rate-limits lookups during typing. Each Search supersedes
// the one before it: the pending timer is reset, and results from an
// already-issued lookup are discarded if a newer Search has happened by
// the time they arrive. Last response wins; in-flight requests are not
// aborted, their deliveries are simply dropped.
type Debouncer struct {
	client Lookuper
	delay  time.Duration

	mu         sync.Mutex
	generation uint64
	timer      *time.Timer
}

// NewDebouncer wraps client with a delay. A non-positive delay falls
// back to DefaultDelay.
func NewDebouncer(client Lookuper, delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{client: client, delay: delay}
}

// Search schedules a lookup for query and delivers the suggestions to
// deliver once the typist has paused. Deliver is called at most once
// per Search, and only while that Search is still the latest one.
func (d *Debouncer) Search(ctx context.Context, query string, deliver func([]Suggestion)) {
	d.mu.Lock()
	d.generation++
	gen := d.generation
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		if !d.latest(gen) {
			return
		}
		results := d.client.Lookup(ctx, query)
		if !d.latest(gen) {
			return
		}
		deliver(results)
	})
	d.mu.Unlock()
}

// Cancel invalidates any pending or in-flight lookup. Used when the
// field loses focus or a suggestion is picked.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	d.generation++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()
}

func (d *Debouncer) latest(gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return gen == d.generation
}
