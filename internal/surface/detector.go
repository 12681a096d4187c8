package surface

import (
	"log/slog"
	"sync"
	"time"

	"github.com/ludolib/notica/internal/geometry"
)

// DefaultDebounce is how long the detector waits after a mutation before
// recomputing, so bursts of open/close events collapse into one update.
const DefaultDebounce = 50 * time.Millisecond

// ChangeEvent signals a change in interference state.
type ChangeEvent struct {
	// Cleared is true when the update removed the last blocking surface.
	// The queue manager drains on this signal.
	Cleared bool
	// HighPriority is true when a blocking surface is open after the update.
	HighPriority bool
	// Count is the number of interference records after the update.
	Count int
}

// Detector observes an environment Observer and maintains the current set
// of interference records. Mutations are debounced; between updates the
// accessors serve the last computed state.
//
// A nil observer degrades to "no interferences" so positioning always has
// a safe default in environments without observation support.
type Detector struct {
	observer Observer
	debounce time.Duration
	logger   *slog.Logger

	mu       sync.RWMutex
	records  []Interference
	viewport geometry.Viewport
	hadHigh  bool

	pending     *time.Timer
	pendingSnap Snapshot
	cancel      func()
	running     bool

	subscribers []chan ChangeEvent
}

// NewDetector creates a detector for the given observer. A zero debounce
// uses DefaultDebounce; observer may be nil.
func NewDetector(observer Observer, debounce time.Duration, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Detector{
		observer: observer,
		debounce: debounce,
		logger:   logger,
		viewport: DefaultViewport,
	}
}

// Start subscribes to the observer and computes the initial state.
// Starting twice is a no-op.
func (d *Detector) Start() {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return
	}
	d.running = true
	d.mu.Unlock()

	if d.observer == nil {
		d.logger.Debug("no environment observer, interference detection disabled")
		return
	}

	// Initial state, undebounced
	d.apply(d.observer.Snapshot())

	d.cancel = d.observer.Subscribe(func(snap Snapshot) {
		d.scheduleApply(snap)
	})
}

// Stop unsubscribes and drops any pending debounced update.
func (d *Detector) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	if d.pending != nil {
		d.pending.Stop()
		d.pending = nil
	}
	cancel := d.cancel
	d.cancel = nil

	for _, ch := range d.subscribers {
		close(ch)
	}
	d.subscribers = nil
	d.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// scheduleApply debounces snapshot application: the latest snapshot within
// the window wins.
func (d *Detector) scheduleApply(snap Snapshot) {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.pendingSnap = snap
	if d.pending != nil {
		d.pending.Stop()
	}
	d.pending = time.AfterFunc(d.debounce, func() {
		d.mu.Lock()
		if !d.running {
			d.mu.Unlock()
			return
		}
		latest := d.pendingSnap
		d.pending = nil
		d.mu.Unlock()

		d.apply(latest)
	})
	d.mu.Unlock()
}

// apply recomputes interference records from a snapshot and notifies
// subscribers of the resulting change.
func (d *Detector) apply(snap Snapshot) {
	records := Classify(snap)
	high := HasHighPriority(records)

	d.mu.Lock()
	wasHigh := d.hadHigh
	d.records = records
	d.hadHigh = high
	if snap.Viewport.Width > 0 && snap.Viewport.Height > 0 {
		d.viewport = snap.Viewport
	}

	event := ChangeEvent{
		Cleared:      wasHigh && !high,
		HighPriority: high,
		Count:        len(records),
	}

	// Non-blocking sends under the lock so Stop cannot close a channel
	// mid-delivery.
	for _, ch := range d.subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber is behind, skip
		}
	}
	d.mu.Unlock()

	d.logger.Debug("interference state updated",
		"count", event.Count,
		"high_priority", event.HighPriority,
		"cleared", event.Cleared,
	)
}

// Interferences returns the current interference records.
func (d *Detector) Interferences() []Interference {
	d.mu.RLock()
	defer d.mu.RUnlock()

	records := make([]Interference, len(d.records))
	copy(records, d.records)
	return records
}

// HasInterferences reports whether any overlay surface is open.
func (d *Detector) HasInterferences() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.records) > 0
}

// HasHighPriorityInterferences reports whether a blocking surface (dialog
// or modal) is open. Toast count never affects this, only surfaces do.
func (d *Detector) HasHighPriorityInterferences() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.hadHigh
}

// Viewport returns the last observed viewport.
func (d *Detector) Viewport() geometry.Viewport {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.viewport
}

// OptimalToastPosition computes a placement for a toast of the given size
// that avoids the current interference set, preferring the given corner.
func (d *Detector) OptimalToastPosition(preferred geometry.Corner, size geometry.Size, margin, spacing int) geometry.Placement {
	d.mu.RLock()
	occupied := Rects(d.records)
	vp := d.viewport
	d.mu.RUnlock()

	return geometry.OptimalPosition(preferred, size, vp, occupied, margin, spacing)
}

// Subscribe returns a channel receiving interference change events.
func (d *Detector) Subscribe() <-chan ChangeEvent {
	d.mu.Lock()
	defer d.mu.Unlock()

	ch := make(chan ChangeEvent, 10)
	d.subscribers = append(d.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (d *Detector) Unsubscribe(ch <-chan ChangeEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, sub := range d.subscribers {
		if sub == ch {
			d.subscribers = append(d.subscribers[:i], d.subscribers[i+1:]...)
			close(sub)
			return
		}
	}
}
