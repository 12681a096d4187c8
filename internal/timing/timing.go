// Package timing computes and schedules adaptive auto-dismiss timers.
package timing

import (
	"log/slog"
	"sync"
	"time"

	"github.com/ludolib/notica/internal/model"
)

// Config controls auto-dismiss durations.
type Config struct {
	// Base durations per priority. Lower priorities linger longer since
	// they carry less time pressure. Urgent never auto-dismisses.
	Low    time.Duration
	Normal time.Duration
	High   time.Duration

	// ActivityWindow is the trailing window in which user input counts as
	// "actively interacting"; a toast due to dismiss inside it is extended.
	ActivityWindow time.Duration

	// Extension is how long a dismissal is pushed back each time the user
	// is active or a blocking surface is open when the timer fires.
	Extension time.Duration
}

// DefaultConfig returns the stock timing configuration.
func DefaultConfig() Config {
	return Config{
		Low:            8 * time.Second,
		Normal:         6 * time.Second,
		High:           5 * time.Second,
		ActivityWindow: 10 * time.Second,
		Extension:      2 * time.Second,
	}
}

// InterferedFunc reports whether a blocking surface is currently open.
type InterferedFunc func() bool

// Manager schedules auto-dismiss callbacks per notification id. A timer
// due to fire while the user is active or the UI is blocked is extended
// instead of firing, since the toast may not even be visible yet.
//
// All methods are safe for concurrent use. Cancellation is explicit:
// scheduling the same id twice replaces the first timer, and a canceled
// timer never fires its callback.
type Manager struct {
	cfg        Config
	logger     *slog.Logger
	interfered InterferedFunc

	mu           sync.Mutex
	timers       map[string]*time.Timer
	lastActivity time.Time

	now func() time.Time // test seam
}

// NewManager creates a timing manager. interfered may be nil.
func NewManager(cfg Config, interfered InterferedFunc, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.Low <= 0 {
		cfg.Low = def.Low
	}
	if cfg.Normal <= 0 {
		cfg.Normal = def.Normal
	}
	if cfg.High <= 0 {
		cfg.High = def.High
	}
	if cfg.ActivityWindow <= 0 {
		cfg.ActivityWindow = def.ActivityWindow
	}
	if cfg.Extension <= 0 {
		cfg.Extension = def.Extension
	}
	return &Manager{
		cfg:        cfg,
		logger:     logger,
		interfered: interfered,
		timers:     make(map[string]*time.Timer),
		now:        time.Now,
	}
}

// BaseDuration returns the priority-derived auto-dismiss duration. Zero
// means never auto-dismiss.
func (m *Manager) BaseDuration(p model.Priority) time.Duration {
	switch p {
	case model.PriorityLow:
		return m.cfg.Low
	case model.PriorityHigh:
		return m.cfg.High
	case model.PriorityUrgent:
		return 0
	default:
		return m.cfg.Normal
	}
}

// RecordActivity notes user input at the current time. The host UI feeds
// this from pointer and keyboard events.
func (m *Manager) RecordActivity() {
	m.mu.Lock()
	m.lastActivity = m.now()
	m.mu.Unlock()
}

// ScheduleAutoDismiss arms an auto-dismiss timer for the notification.
// Urgent notifications are never scheduled. Scheduling an id that already
// has a pending timer replaces it; the replaced timer will not fire.
func (m *Manager) ScheduleAutoDismiss(id string, priority model.Priority, onDismiss func()) {
	duration := m.BaseDuration(priority)
	if duration <= 0 || onDismiss == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if prev, ok := m.timers[id]; ok {
		prev.Stop()
	}
	m.armLocked(id, duration, onDismiss)
}

// armLocked creates the timer for id. Caller must hold the lock.
func (m *Manager) armLocked(id string, d time.Duration, onDismiss func()) {
	var timer *time.Timer
	timer = time.AfterFunc(d, func() {
		m.fire(id, timer, onDismiss)
	})
	m.timers[id] = timer
}

// fire runs when a timer elapses. A stale timer (canceled or replaced
// concurrently) is ignored; an extend condition re-arms instead of
// dismissing.
func (m *Manager) fire(id string, timer *time.Timer, onDismiss func()) {
	m.mu.Lock()
	current, ok := m.timers[id]
	if !ok || current != timer {
		m.mu.Unlock()
		return
	}

	if m.shouldExtendLocked() {
		m.logger.Debug("auto-dismiss extended", "id", id, "by", m.cfg.Extension)
		m.armLocked(id, m.cfg.Extension, onDismiss)
		m.mu.Unlock()
		return
	}

	delete(m.timers, id)
	m.mu.Unlock()

	onDismiss()
}

// shouldExtendLocked reports whether a due dismissal should be pushed
// back: recent user activity, or a blocking surface is open.
func (m *Manager) shouldExtendLocked() bool {
	if !m.lastActivity.IsZero() && m.now().Sub(m.lastActivity) < m.cfg.ActivityWindow {
		return true
	}
	return m.interfered != nil && m.interfered()
}

// CancelAutoDismiss clears any pending timer for id. It is idempotent:
// canceling an unscheduled or already-canceled id is a no-op, and after a
// cancel the dismiss callback is guaranteed not to fire.
func (m *Manager) CancelAutoDismiss(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if timer, ok := m.timers[id]; ok {
		timer.Stop()
		delete(m.timers, id)
	}
}

// Pending returns the number of armed timers.
func (m *Manager) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

// Stop cancels every pending timer.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, timer := range m.timers {
		timer.Stop()
		delete(m.timers, id)
	}
}
