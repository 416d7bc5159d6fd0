package watch

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of events on one path into a single run. Only
// the most recently scheduled function fires; the zero value is ready to use.
type Debouncer struct {
	mu    sync.Mutex
	timer *time.Timer
	gen   uint64 // bumped by every Debounce and Stop
	fired time.Time
}

// Debounce schedules fn to run once delay has passed without another call.
// A function superseded after its timer expired is dropped rather than run.
func (d *Debouncer) Debounce(delay time.Duration, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(delay, func() {
		d.mu.Lock()
		if gen != d.gen {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.fired = time.Now()
		d.mu.Unlock()
		fn()
	})
}

// Stop cancels a pending call, reporting whether there was one.
func (d *Debouncer) Stop() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	if d.timer == nil {
		return false
	}
	d.timer.Stop()
	d.timer = nil
	return true
}

// LastCalled returns when the debounced function last fired, zero if never.
func (d *Debouncer) LastCalled() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fired
}
