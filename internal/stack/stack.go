// Package stack owns the ordered set of currently-visible toasts.
package stack

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/ludolib/notica/internal/geometry"
	"github.com/ludolib/notica/internal/model"
	"github.com/ludolib/notica/internal/surface"
)

// Config controls stack behavior and layout.
type Config struct {
	// MaxVisible caps concurrently visible non-urgent toasts. Urgent
	// toasts are always admitted on top of the cap.
	MaxVisible int
	// Spacing is the pixel gap between stacked toasts and the overlap
	// buffer against interfering surfaces.
	Spacing int
	// Margin is the inset from the viewport edges.
	Margin int
	// Corner is the preferred anchor corner.
	Corner geometry.Corner
	// EnableAutoCollapse allows Collapse to fold overflow into a
	// "+N more" affordance.
	EnableAutoCollapse bool
	// EnablePriorityReordering re-sorts the visible order by priority
	// then recency on every mutation.
	EnablePriorityReordering bool
}

// DefaultConfig returns the stock stack configuration.
func DefaultConfig() Config {
	return Config{
		MaxVisible: 5,
		Spacing:    16,
		Margin:     16,
		Corner:     geometry.CornerTopRight,
	}
}

// Entry is one visible toast.
type Entry struct {
	ID           string
	Priority     model.Priority
	Size         geometry.Size
	Placement    geometry.Placement
	RegisteredAt time.Time
	Hidden       bool
}

// Rect returns the rectangle the toast occupies.
func (e Entry) Rect() geometry.Rect {
	return e.Placement.Rect(e.Size)
}

// Stats aggregates the stack state for diagnostics and the collapse
// affordance.
type Stats struct {
	Total       int
	Visible     int
	Hidden      int
	ByPriority  map[model.Priority]int
	AverageAge  time.Duration
	BoundingBox geometry.Rect
}

// EvictFunc is invoked with the id of a toast evicted to make room.
type EvictFunc func(id string)

// Manager maintains the ordered visible-toast set for one configuration.
// All methods are safe for concurrent use.
type Manager struct {
	mu        sync.RWMutex
	cfg       Config
	logger    *slog.Logger
	entries   []*Entry
	collapsed bool
	onEvict   EvictFunc

	now func() time.Time // test seam
}

// NewManager creates a stack manager with the given configuration.
func NewManager(cfg Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxVisible <= 0 {
		cfg.MaxVisible = DefaultConfig().MaxVisible
	}
	if !cfg.Corner.Valid() {
		cfg.Corner = geometry.CornerTopRight
	}
	return &Manager{
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// SetEvictCallback sets the callback invoked when a toast is evicted to
// make room for a new one.
func (m *Manager) SetEvictCallback(fn EvictFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onEvict = fn
}

// Add admits a toast into the stack. It returns false when the stack is at
// capacity and the incoming toast is neither urgent nor able to displace a
// lower-or-equal-priority entry. Re-adding a present id updates it in place.
func (m *Manager) Add(id string, priority model.Priority, size geometry.Size) bool {
	m.mu.Lock()
	var evicted string

	if e := m.findLocked(id); e != nil {
		e.Priority = priority
		e.Size = size
		m.sortLocked()
		m.mu.Unlock()
		return true
	}

	if !priority.IsUrgent() && m.nonUrgentCountLocked() >= m.cfg.MaxVisible {
		victim := m.evictionCandidateLocked(priority)
		if victim == nil {
			m.mu.Unlock()
			m.logger.Debug("toast rejected, stack full", "id", id, "priority", priority.String())
			return false
		}
		evicted = victim.ID
		m.removeLocked(victim.ID)
	}

	m.entries = append(m.entries, &Entry{
		ID:           id,
		Priority:     priority,
		Size:         size,
		RegisteredAt: m.now(),
	})
	m.sortLocked()
	onEvict := m.onEvict
	m.mu.Unlock()

	if evicted != "" {
		m.logger.Debug("evicted toast to make room", "evicted", evicted, "for", id)
		if onEvict != nil {
			onEvict(evicted)
		}
	}
	return true
}

// Remove deletes a toast from the stack. Unknown ids are a no-op and
// return false.
func (m *Manager) Remove(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.removeLocked(id)
}

// Contains reports whether the id is currently in the stack.
func (m *Manager) Contains(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.findLocked(id) != nil
}

// Len returns the number of entries, hidden ones included.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Visible returns the ordered visible entries.
func (m *Manager) Visible() []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Entry, 0, len(m.entries))
	for _, e := range m.entries {
		if !e.Hidden {
			out = append(out, *e)
		}
	}
	return out
}

// RepositionAll recomputes every visible toast's placement around the
// given interference records. Toasts stack in columns starting at the
// preferred corner; a column blocked by an interfering surface spills to
// the next candidate corner, and when every corner is blocked the
// preferred corner is used anyway.
func (m *Manager) RepositionAll(interferences []surface.Interference, vp geometry.Viewport) {
	m.mu.Lock()
	defer m.mu.Unlock()

	occupied := surface.Rects(interferences)
	slots := make(map[geometry.Corner]int)

	for _, e := range m.entries {
		if e.Hidden {
			continue
		}

		placed := false
		for _, corner := range geometry.CandidateCorners(m.cfg.Corner) {
			p := geometry.StackedPosition(corner, slots[corner], e.Size, vp, m.cfg.Margin, m.cfg.Spacing)
			if !intersectsAny(p.Rect(e.Size), occupied, m.cfg.Spacing) {
				e.Placement = p
				slots[corner]++
				placed = true
				break
			}
		}
		if !placed {
			// Accept overlap at the preferred corner rather than failing.
			e.Placement = geometry.StackedPosition(m.cfg.Corner, slots[m.cfg.Corner], e.Size, vp, m.cfg.Margin, m.cfg.Spacing)
			slots[m.cfg.Corner]++
		}
	}
}

// Collapse hides all but the top-priority toast. It is a no-op unless
// EnableAutoCollapse is set or fewer than two toasts are visible.
func (m *Manager) Collapse() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.cfg.EnableAutoCollapse || len(m.entries) < 2 {
		return
	}

	m.collapsed = true
	top := m.topPriorityLocked()
	for _, e := range m.entries {
		e.Hidden = e != top
	}
}

// Expand restores all hidden toasts.
func (m *Manager) Expand() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.collapsed = false
	for _, e := range m.entries {
		e.Hidden = false
	}
}

// Collapsed reports whether the stack is currently collapsed.
func (m *Manager) Collapsed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.collapsed
}

// Stats returns aggregate counts over the current stack.
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := Stats{
		Total:      len(m.entries),
		ByPriority: make(map[model.Priority]int),
	}

	var ages time.Duration
	now := m.now()
	for _, e := range m.entries {
		s.ByPriority[e.Priority]++
		ages += now.Sub(e.RegisteredAt)
		if e.Hidden {
			s.Hidden++
			continue
		}
		s.Visible++
		s.BoundingBox = s.BoundingBox.Union(e.Rect())
	}
	if len(m.entries) > 0 {
		s.AverageAge = ages / time.Duration(len(m.entries))
	}
	return s
}

// findLocked returns the entry for id, or nil. Caller must hold the lock.
func (m *Manager) findLocked(id string) *Entry {
	for _, e := range m.entries {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// removeLocked removes an entry by id. Caller must hold the lock.
func (m *Manager) removeLocked(id string) bool {
	for i, e := range m.entries {
		if e.ID == id {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return true
		}
	}
	return false
}

// nonUrgentCountLocked counts entries that count against MaxVisible.
func (m *Manager) nonUrgentCountLocked() int {
	n := 0
	for _, e := range m.entries {
		if !e.Priority.IsUrgent() {
			n++
		}
	}
	return n
}

// evictionCandidateLocked picks the non-urgent entry to displace for an
// incoming toast of the given priority: lowest priority first, oldest
// first on ties. Returns nil when every non-urgent entry outranks the
// newcomer.
func (m *Manager) evictionCandidateLocked(incoming model.Priority) *Entry {
	var victim *Entry
	for _, e := range m.entries {
		if e.Priority.IsUrgent() || e.Priority > incoming {
			continue
		}
		if victim == nil ||
			e.Priority < victim.Priority ||
			(e.Priority == victim.Priority && e.RegisteredAt.Before(victim.RegisteredAt)) {
			victim = e
		}
	}
	return victim
}

// topPriorityLocked returns the highest-priority, most recent entry.
func (m *Manager) topPriorityLocked() *Entry {
	var top *Entry
	for _, e := range m.entries {
		if top == nil ||
			e.Priority > top.Priority ||
			(e.Priority == top.Priority && e.RegisteredAt.After(top.RegisteredAt)) {
			top = e
		}
	}
	return top
}

// sortLocked applies the configured visible ordering: priority descending
// then recency descending when reordering is enabled, otherwise
// registration order is kept.
func (m *Manager) sortLocked() {
	if !m.cfg.EnablePriorityReordering {
		return
	}
	sort.SliceStable(m.entries, func(i, j int) bool {
		if m.entries[i].Priority != m.entries[j].Priority {
			return m.entries[i].Priority > m.entries[j].Priority
		}
		return m.entries[i].RegisteredAt.After(m.entries[j].RegisteredAt)
	})
}

func intersectsAny(r geometry.Rect, occupied []geometry.Rect, buffer int) bool {
	for _, occ := range occupied {
		if r.Intersects(occ, buffer) {
			return true
		}
	}
	return false
}
