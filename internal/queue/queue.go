// Package queue holds notifications that cannot be shown immediately and
// releases them once the UI unblocks.
package queue

import (
	"container/list"
	"log/slog"
	"sync"
	"time"

	"github.com/ludolib/notica/internal/model"
)

// DefaultStagger is the pause between successive toasts during a drain, so
// a cleared dialog doesn't release a simultaneous pop of toasts.
const DefaultStagger = 200 * time.Millisecond

// DefaultMaxAttempts bounds how often a queued entry may fail to show
// before it is dropped.
const DefaultMaxAttempts = 3

// ShowFunc attempts to display a notification and reports success. A false
// return means the target stack rejected it, typically at capacity.
type ShowFunc func(n *model.Notification) bool

// BlockedFunc reports whether the UI is currently blocked for toasts.
type BlockedFunc func() bool

// Config controls queue behavior.
type Config struct {
	// MaxSize caps queued entries; overflow drops the oldest entry of the
	// lowest queued priority.
	MaxSize int
	// MaxAttempts bounds failed show attempts per entry.
	MaxAttempts int
	// UrgentBypass shows urgent notifications immediately instead of
	// queueing them.
	UrgentBypass bool
	// Stagger is the delay between successive shows during a drain.
	Stagger time.Duration
}

// DefaultConfig returns the stock queue configuration.
func DefaultConfig() Config {
	return Config{
		MaxSize:      20,
		MaxAttempts:  DefaultMaxAttempts,
		UrgentBypass: true,
		Stagger:      DefaultStagger,
	}
}

// Entry is one deferred notification.
type Entry struct {
	Notification *model.Notification
	EnqueuedAt   time.Time
	Attempts     int
	MaxAttempts  int

	show ShowFunc
}

// Manager is the deferral queue: a FIFO ordered by priority, drained when
// interference clears. All methods are safe for concurrent use.
type Manager struct {
	cfg     Config
	logger  *slog.Logger
	blocked BlockedFunc

	mu       sync.Mutex
	queue    *list.List // of *Entry, priority desc then arrival asc
	index    map[string]*list.Element
	draining bool
}

// NewManager creates a queue manager. blocked may be nil, in which case
// the queue never considers the UI blocked.
func NewManager(cfg Config, blocked BlockedFunc, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultConfig().MaxSize
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.Stagger <= 0 {
		cfg.Stagger = DefaultStagger
	}
	return &Manager{
		cfg:     cfg,
		logger:  logger,
		blocked: blocked,
		queue:   list.New(),
		index:   make(map[string]*list.Element),
	}
}

// Enqueue defers a notification until the UI unblocks. Urgent
// notifications bypass the queue entirely when UrgentBypass is set and are
// shown immediately. A notification already queued under the same id is
// left in place.
func (m *Manager) Enqueue(n *model.Notification, show ShowFunc) {
	if n == nil {
		return
	}

	if m.cfg.UrgentBypass && n.Priority.IsUrgent() {
		if show != nil && !show(n) {
			m.logger.Debug("urgent bypass show rejected", "id", n.ID)
		}
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.index[n.ID]; exists {
		return
	}

	entry := &Entry{
		Notification: n,
		EnqueuedAt:   time.Now(),
		MaxAttempts:  m.cfg.MaxAttempts,
		show:         show,
	}
	m.insertLocked(entry)

	if m.queue.Len() > m.cfg.MaxSize {
		m.dropOverflowLocked()
	}
}

// insertLocked places an entry before the first queued entry of strictly
// lower priority, preserving FIFO order within a priority class. Caller
// must hold the lock.
func (m *Manager) insertLocked(entry *Entry) {
	var before *list.Element
	for e := m.queue.Front(); e != nil; e = e.Next() {
		if entry.Notification.Priority > e.Value.(*Entry).Notification.Priority {
			before = e
			break
		}
	}

	var elem *list.Element
	if before != nil {
		elem = m.queue.InsertBefore(entry, before)
	} else {
		elem = m.queue.PushBack(entry)
	}
	m.index[entry.Notification.ID] = elem
}

// dropOverflowLocked removes the oldest entry of the lowest queued
// priority. Caller must hold the lock.
func (m *Manager) dropOverflowLocked() {
	var victim *list.Element
	for e := m.queue.Front(); e != nil; e = e.Next() {
		entry := e.Value.(*Entry)
		if victim == nil {
			victim = e
			continue
		}
		v := victim.Value.(*Entry)
		if entry.Notification.Priority < v.Notification.Priority ||
			(entry.Notification.Priority == v.Notification.Priority && entry.EnqueuedAt.Before(v.EnqueuedAt)) {
			victim = e
		}
	}
	if victim == nil {
		return
	}

	dropped := victim.Value.(*Entry)
	m.queue.Remove(victim)
	delete(m.index, dropped.Notification.ID)
	m.logger.Debug("queue overflow, dropped entry",
		"id", dropped.Notification.ID,
		"priority", dropped.Notification.Priority.String(),
	)
}

// Remove deletes a queued entry by notification id. Unknown ids are a
// no-op.
func (m *Manager) Remove(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	elem, exists := m.index[id]
	if !exists {
		return false
	}
	m.queue.Remove(elem)
	delete(m.index, id)
	return true
}

// Contains reports whether the id is currently queued.
func (m *Manager) Contains(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, exists := m.index[id]
	return exists
}

// Len returns the number of queued entries.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queue.Len()
}

// Process drains the queue in priority-then-FIFO order, stopping when the
// UI blocks again. Successive shows are separated by the configured
// stagger. Only one drain runs at a time; a second call during a drain is
// a no-op.
func (m *Manager) Process() {
	m.startDrain(false)
}

// ForceProcess drains the queue regardless of interference state.
func (m *Manager) ForceProcess() {
	m.startDrain(true)
}

func (m *Manager) startDrain(force bool) {
	m.mu.Lock()
	if m.draining || m.queue.Len() == 0 {
		m.mu.Unlock()
		return
	}
	m.draining = true
	m.mu.Unlock()

	go m.drainLoop(force)
}

func (m *Manager) drainLoop(force bool) {
	defer func() {
		m.mu.Lock()
		m.draining = false
		m.mu.Unlock()
	}()

	for {
		if !force && m.blocked != nil && m.blocked() {
			return
		}

		m.mu.Lock()
		elem := m.queue.Front()
		if elem == nil {
			m.mu.Unlock()
			return
		}
		entry := elem.Value.(*Entry)
		m.queue.Remove(elem)
		delete(m.index, entry.Notification.ID)
		m.mu.Unlock()

		if entry.show == nil || entry.show(entry.Notification) {
			if m.peek() == nil {
				return
			}
			time.Sleep(m.cfg.Stagger)
			continue
		}

		// Show failed: the stack rejected the toast.
		entry.Attempts++
		if entry.Attempts >= entry.MaxAttempts {
			// Dropped without surfacing an error; only the debug log
			// records it. Presentation-layer scheduling has nothing
			// useful to retry against at this point.
			m.logger.Debug("queue entry exhausted attempts, dropping",
				"id", entry.Notification.ID,
				"attempts", entry.Attempts,
			)
			continue
		}

		m.mu.Lock()
		if _, exists := m.index[entry.Notification.ID]; !exists {
			m.insertLocked(entry)
		}
		m.mu.Unlock()
		return
	}
}

// peek returns the head entry without removing it, or nil.
func (m *Manager) peek() *Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	if elem := m.queue.Front(); elem != nil {
		return elem.Value.(*Entry)
	}
	return nil
}

// Snapshot returns the queued entries in drain order.
func (m *Manager) Snapshot() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Entry, 0, m.queue.Len())
	for e := m.queue.Front(); e != nil; e = e.Next() {
		out = append(out, *e.Value.(*Entry))
	}
	return out
}
