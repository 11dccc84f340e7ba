package recommend

import (
	"sync"
	"time"
)

// Debouncer delays propagation of a rapidly changing value until it has
// been stable for a quiet period. Each Set restarts the timer; a value
// superseded before its timer elapses is never emitted.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	emit  func(string)
	timer *time.Timer
	gen   uint64
}

// NewDebouncer creates a debouncer that calls emit with the settled value.
// The emit callback runs on a timer goroutine.
func NewDebouncer(delay time.Duration, emit func(string)) *Debouncer {
	return &Debouncer{delay: delay, emit: emit}
}

// Set feeds a new input value, restarting the quiet-period timer.
func (d *Debouncer) Set(value string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}

	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() {
		// A timer that raced with a newer Set must not emit.
		d.mu.Lock()
		latest := gen == d.gen
		d.mu.Unlock()
		if latest {
			d.emit(value)
		}
	})
}

// Stop cancels any pending emission. The debouncer remains usable.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}
