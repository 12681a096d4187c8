// Package toast coordinates the full lifecycle of in-app toasts: surface
// interference, positioning, the visible stack, the deferral queue and
// auto-dismiss timing.
package toast

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ludolib/notica/internal/config"
	"github.com/ludolib/notica/internal/geometry"
	"github.com/ludolib/notica/internal/model"
	"github.com/ludolib/notica/internal/queue"
	"github.com/ludolib/notica/internal/stack"
	"github.com/ludolib/notica/internal/surface"
	"github.com/ludolib/notica/internal/timing"
)

// Default toast dimensions in pixels.
const (
	DefaultToastWidth  = 360
	DefaultToastHeight = 96
)

var (
	// ErrFiltered is returned by Notify when the target profile's
	// preferences reject the notification.
	ErrFiltered = errors.New("notification filtered by profile preferences")

	// ErrNilNotification is returned by Notify for a nil argument.
	ErrNilNotification = errors.New("nil notification")
)

// Filter decides whether a profile should see a notification.
type Filter interface {
	Allows(n *model.Notification) bool
}

// Sounder plays an audio cue for a notification priority.
type Sounder interface {
	Play(p model.Priority)
}

// RenderFunc is called when a toast becomes visible or moves. The placement
// is the toast's top-left position in viewport coordinates. Renderers that
// animate placement changes should use the coordinator's AnimationDuration
// as the transition length.
type RenderFunc func(n *model.Notification, placement geometry.Placement)

// DismissFunc is called when a toast leaves the screen.
type DismissFunc func(id string, reason DismissReason)

// DismissReason explains why a toast was removed.
type DismissReason string

const (
	DismissTimeout DismissReason = "timeout"
	DismissEvicted DismissReason = "evicted"
	DismissManual  DismissReason = "manual"
)

// Coordinator wires the detector, stack, queue and timing managers into a
// single notification entry point. All methods are safe for concurrent use.
type Coordinator struct {
	cfg    *config.Config
	logger *slog.Logger

	detector *surface.Detector
	stack    *stack.Manager
	queue    *queue.Manager
	timing   *timing.Manager

	filter  Filter
	sounder Sounder

	mu        sync.RWMutex
	active    map[string]*model.Notification
	onRender  RenderFunc
	onDismiss DismissFunc

	events   <-chan surface.ChangeEvent
	done     chan struct{}
	stopOnce sync.Once
}

// Option customizes a Coordinator.
type Option func(*Coordinator)

// WithFilter installs a preference filter applied to every Notify call.
func WithFilter(f Filter) Option {
	return func(c *Coordinator) { c.filter = f }
}

// WithSounder installs an audio cue player.
func WithSounder(s Sounder) Option {
	return func(c *Coordinator) { c.sounder = s }
}

// WithRenderFunc installs the callback invoked when a toast is shown or
// repositioned.
func WithRenderFunc(fn RenderFunc) Option {
	return func(c *Coordinator) { c.onRender = fn }
}

// WithDismissFunc installs the callback invoked when a toast is removed.
func WithDismissFunc(fn DismissFunc) Option {
	return func(c *Coordinator) { c.onDismiss = fn }
}

// NewCoordinator builds a coordinator from the configuration. observer
// provides the surface snapshots the interference detector watches; it may
// be nil, in which case detection is disabled and toasts always use the
// preferred corner.
func NewCoordinator(cfg *config.Config, observer surface.Observer, logger *slog.Logger, opts ...Option) *Coordinator {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Coordinator{
		cfg:    cfg,
		logger: logger,
		active: make(map[string]*model.Notification),
		done:   make(chan struct{}),
	}

	c.detector = surface.NewDetector(observer, cfg.Detector.Debounce.Duration(), logger)

	c.stack = stack.NewManager(stack.Config{
		MaxVisible:               cfg.Toast.MaxVisible,
		Spacing:                  cfg.Toast.Spacing,
		Margin:                   cfg.Toast.Margin,
		Corner:                   cfg.PreferredCorner(),
		EnableAutoCollapse:       cfg.Toast.EnableAutoCollapse,
		EnablePriorityReordering: cfg.Toast.EnablePriorityReordering,
	}, logger)
	c.stack.SetEvictCallback(c.onEvicted)

	c.queue = queue.NewManager(queue.Config{
		MaxSize:      cfg.Queue.MaxSize,
		MaxAttempts:  cfg.Queue.MaxAttempts,
		UrgentBypass: cfg.Queue.UrgentBypass,
		Stagger:      cfg.Queue.Stagger.Duration(),
	}, c.detector.HasHighPriorityInterferences, logger)

	c.timing = timing.NewManager(timing.Config{
		Low:            cfg.Timing.Low.Duration(),
		Normal:         cfg.Timing.Normal.Duration(),
		High:           cfg.Timing.High.Duration(),
		ActivityWindow: cfg.Timing.ActivityWindow.Duration(),
		Extension:      cfg.Timing.Extension.Duration(),
	}, c.detector.HasInterferences, logger)

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start begins interference tracking and queue draining. Must be called
// before Notify.
func (c *Coordinator) Start() {
	c.detector.Start()
	c.events = c.detector.Subscribe()
	go c.watch()
}

// Stop halts interference tracking, pending timers and the event loop.
// Queued notifications are discarded.
func (c *Coordinator) Stop() {
	c.stopOnce.Do(func() {
		close(c.done)
		if c.events != nil {
			c.detector.Unsubscribe(c.events)
		}
		c.detector.Stop()
		c.timing.Stop()
	})
}

// watch reacts to interference changes: reflow the visible stack, and drain
// the queue when a blocking surface goes away.
func (c *Coordinator) watch() {
	for {
		select {
		case <-c.done:
			return
		case ev, ok := <-c.events:
			if !ok {
				return
			}
			c.reposition()
			if ev.Cleared {
				c.logger.Debug("interference cleared, draining queue",
					"queued", c.queue.Len())
				c.queue.Process()
			}
		}
	}
}

// Notify is the single entry point for showing a notification. Urgent
// notifications are shown immediately; others are deferred when a blocking
// surface is open or the stack is full.
func (c *Coordinator) Notify(n *model.Notification) error {
	if n == nil {
		return ErrNilNotification
	}
	if err := n.Validate(); err != nil {
		return err
	}
	if c.filter != nil && !c.filter.Allows(n) {
		c.logger.Debug("notification filtered", "id", n.ID, "profile", n.ProfileID)
		return ErrFiltered
	}

	if n.Priority.IsUrgent() && c.cfg.Queue.UrgentBypass {
		c.show(n)
		return nil
	}

	if c.detector.HasHighPriorityInterferences() {
		c.queue.Enqueue(n, c.tryShow)
		return nil
	}

	// The stack decides between admitting, evicting a lower-priority
	// toast, or rejecting; a rejected toast waits in the queue.
	if !c.tryShow(n) {
		c.queue.Enqueue(n, c.tryShow)
	}
	return nil
}

// tryShow attempts to place a notification on screen. It is also the show
// callback handed to the queue, so a false return keeps the entry queued.
func (c *Coordinator) tryShow(n *model.Notification) bool {
	if c.detector.HasHighPriorityInterferences() && !n.Priority.IsUrgent() {
		return false
	}
	if !c.stack.Add(n.ID, n.Priority, geometry.Size{Width: DefaultToastWidth, Height: DefaultToastHeight}) {
		return false
	}
	c.show(n)
	return true
}

// RegisterToast places an externally rendered toast of the given size into
// the visible stack and schedules its auto-dismiss. Unlike Notify it skips
// the preference filter and carries no notification payload. Returns false
// when a blocking surface is open or the stack rejects it.
func (c *Coordinator) RegisterToast(id string, priority model.Priority, size geometry.Size) bool {
	if id == "" {
		return false
	}
	if c.detector.HasHighPriorityInterferences() && !priority.IsUrgent() {
		return false
	}
	if !c.stack.Add(id, priority, size) {
		return false
	}
	c.reposition()
	c.timing.ScheduleAutoDismiss(id, priority, func() {
		c.dismiss(id, DismissTimeout)
	})
	return true
}

// show registers the notification as active, lays it out, schedules
// auto-dismiss and plays the audio cue. Urgent notifications are forced
// into the stack.
func (c *Coordinator) show(n *model.Notification) {
	// An id lives in the stack or the queue, never both. Re-notifying a
	// queued id (say, escalated to urgent) must not leave a stale queue
	// entry behind to re-show later.
	c.queue.Remove(n.ID)

	c.mu.Lock()
	c.active[n.ID] = n
	c.mu.Unlock()

	// Urgent bypass path: Add always admits urgent entries.
	if !c.stack.Contains(n.ID) {
		c.stack.Add(n.ID, n.Priority, geometry.Size{Width: DefaultToastWidth, Height: DefaultToastHeight})
	}
	c.reposition()

	id := n.ID
	c.timing.ScheduleAutoDismiss(id, n.Priority, func() {
		c.dismiss(id, DismissTimeout)
	})

	if c.sounder != nil {
		c.sounder.Play(n.Priority)
	}

	c.logger.Debug("toast shown", "id", n.ID, "priority", n.Priority.String())
}

// UnregisterToast removes a toast everywhere it might live: the visible
// stack, the pending queue and the timing manager. Safe to call for ids
// that were never shown.
func (c *Coordinator) UnregisterToast(id string) {
	c.dismiss(id, DismissManual)
}

func (c *Coordinator) dismiss(id string, reason DismissReason) {
	c.timing.CancelAutoDismiss(id)
	c.queue.Remove(id)
	removed := c.stack.Remove(id)

	c.mu.Lock()
	_, active := c.active[id]
	delete(c.active, id)
	c.mu.Unlock()

	if !removed && !active {
		return
	}

	c.reposition()
	if c.onDismiss != nil {
		c.onDismiss(id, reason)
	}

	// A freed slot may admit a deferred notification.
	if reason != DismissEvicted {
		c.queue.Process()
	}
}

// onEvicted is the stack's eviction callback. The evicted toast must not
// fire a stale dismiss timer later.
func (c *Coordinator) onEvicted(id string) {
	c.timing.CancelAutoDismiss(id)

	c.mu.Lock()
	delete(c.active, id)
	c.mu.Unlock()

	if c.onDismiss != nil {
		c.onDismiss(id, DismissEvicted)
	}
	c.logger.Debug("toast evicted", "id", id)
}

// AnimationDuration returns the show/hide transition length renderers
// should apply to placement changes.
func (c *Coordinator) AnimationDuration() time.Duration {
	return c.cfg.Toast.AnimationDuration.Duration()
}

// RecordActivity notes user interaction for the auto-dismiss grace window.
func (c *Coordinator) RecordActivity() {
	c.timing.RecordActivity()
}

// ForceReposition recomputes every visible toast's placement against the
// current interference set.
func (c *Coordinator) ForceReposition() {
	c.reposition()
}

func (c *Coordinator) reposition() {
	c.stack.RepositionAll(c.detector.Interferences(), c.detector.Viewport())

	if c.onRender == nil {
		return
	}
	for _, e := range c.stack.Visible() {
		c.mu.RLock()
		n := c.active[e.ID]
		c.mu.RUnlock()
		if n != nil && !e.Hidden {
			c.onRender(n, e.Placement)
		}
	}
}

// VisibleToasts returns the current visible stack entries in display order.
func (c *Coordinator) VisibleToasts() []stack.Entry {
	return c.stack.Visible()
}

// QueuedCount returns the number of deferred notifications.
func (c *Coordinator) QueuedCount() int {
	return c.queue.Len()
}

// Collapse folds the visible stack into its top-priority toast.
func (c *Coordinator) Collapse() { c.stack.Collapse() }

// Expand restores a collapsed stack.
func (c *Coordinator) Expand() { c.stack.Expand() }

// Stats reports the aggregate state of the coordinator.
func (c *Coordinator) Stats() Stats {
	return Stats{
		Stack:              c.stack.Stats(),
		Queued:             c.queue.Len(),
		PendingDismissals:  c.timing.Pending(),
		Interferences:      len(c.detector.Interferences()),
		HighPriorityActive: c.detector.HasHighPriorityInterferences(),
	}
}

// Stats aggregates coordinator state for diagnostics.
type Stats struct {
	Stack              stack.Stats
	Queued             int
	PendingDismissals  int
	Interferences      int
	HighPriorityActive bool
}
