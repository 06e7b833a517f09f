package ingest

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid credential edits: the wrapped function only
// sees a value after it has been stable for the quiet period. This is
// what keeps an operator typing a token into a form from causing a
// connection storm.
type Debouncer struct {
	quiet time.Duration
	apply func(string)

	mu      sync.Mutex
	timer   *time.Timer
	pending string
}

// NewDebouncer wraps apply with a quiet period.
func NewDebouncer(quiet time.Duration, apply func(string)) *Debouncer {
	return &Debouncer{quiet: quiet, apply: apply}
}

// Set schedules value for delivery once the input goes quiet. Each call
// restarts the timer.
func (d *Debouncer) Set(value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = value
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.quiet, func() {
		d.mu.Lock()
		v := d.pending
		d.mu.Unlock()
		d.apply(v)
	})
}

// Flush delivers the pending value immediately; used on view teardown.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	v := d.pending
	d.mu.Unlock()
	d.apply(v)
}

// Stop cancels any pending delivery.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
