// Package store provides the per-profile notification history store.
package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/ludolib/notica/internal/model"
)

// ChangeType indicates the type of store change.
type ChangeType int

const (
	// ChangeTypeAdd indicates notifications were added.
	ChangeTypeAdd ChangeType = iota
	// ChangeTypeRead indicates notifications were marked read.
	ChangeTypeRead
	// ChangeTypeDelete indicates a notification was deleted.
	ChangeTypeDelete
	// ChangeTypeClear indicates a profile's notifications were cleared.
	ChangeTypeClear
	// ChangeTypePrune indicates old notifications were pruned.
	ChangeTypePrune
)

// ChangeEvent signals store content changes.
type ChangeEvent struct {
	Type      ChangeType
	ProfileID string
	Count     int
}

// FilterOptions specifies criteria for listing notifications.
type FilterOptions struct {
	Type       model.Type      // Exact type match ("" = any)
	Priority   *model.Priority // Filter by priority (nil = any)
	UnreadOnly bool            // Only unread notifications
	Since      time.Duration   // Newer than now-since (0 = all)
	Limit      int             // Maximum results (0 = unlimited)
}

// ErrStoreClosed is returned by mutations on a closed store.
var ErrStoreClosed = errors.New("store is closed")

// Store manages per-profile notification history with thread-safe
// operations and bounded retention.
type Store struct {
	mu            sync.RWMutex
	notifications []model.Notification
	index         map[string]int // notification id -> slice index

	persistence   Persistence
	maxPerProfile int

	subscribers []chan ChangeEvent
	closed      bool
}

// NewStore creates a store. persistence may be nil for an in-memory
// store. maxPerProfile caps retained notifications per profile; zero or
// negative disables pruning.
func NewStore(persistence Persistence, maxPerProfile int) *Store {
	return &Store{
		notifications: make([]model.Notification, 0),
		index:         make(map[string]int),
		persistence:   persistence,
		maxPerProfile: maxPerProfile,
	}
}

// Add appends a notification to the history. Duplicate ids are skipped.
// When the profile exceeds its retention cap, the oldest read
// notifications are pruned first, then the oldest unread.
func (s *Store) Add(n model.Notification) error {
	if err := n.Validate(); err != nil {
		return err
	}

	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return ErrStoreClosed
	}

	if _, exists := s.index[n.ID]; exists {
		s.mu.Unlock()
		return nil
	}

	s.notifications = append(s.notifications, n)
	s.index[n.ID] = len(s.notifications) - 1

	pruned := s.pruneLocked(n.ProfileID)

	if s.persistence != nil {
		var err error
		if pruned > 0 {
			err = s.persistence.Rewrite(s.notifications)
		} else {
			err = s.persistence.Append(n)
		}
		if err != nil {
			s.mu.Unlock()
			return err
		}
	}

	s.notifyChangeLocked(ChangeEvent{Type: ChangeTypeAdd, ProfileID: n.ProfileID, Count: 1})
	if pruned > 0 {
		s.notifyChangeLocked(ChangeEvent{Type: ChangeTypePrune, ProfileID: n.ProfileID, Count: pruned})
	}
	s.mu.Unlock()
	return nil
}

// pruneLocked drops the profile's excess notifications, oldest read
// entries first. Returns the number removed. Caller must hold the lock.
func (s *Store) pruneLocked(profileID string) int {
	if s.maxPerProfile <= 0 {
		return 0
	}

	var ids []string
	for _, n := range s.notifications {
		if n.ProfileID == profileID {
			ids = append(ids, n.ID)
		}
	}
	excess := len(ids) - s.maxPerProfile
	if excess <= 0 {
		return 0
	}

	// Oldest read first, then oldest regardless of read state. The slice
	// is in arrival order, so a forward scan finds the oldest.
	doomed := make(map[string]bool, excess)
	for _, unreadPass := range []bool{false, true} {
		for _, n := range s.notifications {
			if len(doomed) == excess {
				break
			}
			if n.ProfileID != profileID || doomed[n.ID] {
				continue
			}
			if !unreadPass && !n.IsRead() {
				continue
			}
			doomed[n.ID] = true
		}
	}

	kept := s.notifications[:0]
	for _, n := range s.notifications {
		if !doomed[n.ID] {
			kept = append(kept, n)
		}
	}
	s.notifications = kept
	s.rebuildIndexLocked()
	return excess
}

func (s *Store) rebuildIndexLocked() {
	s.index = make(map[string]int, len(s.notifications))
	for i, n := range s.notifications {
		s.index[n.ID] = i
	}
}

// Get returns a notification by id, or nil when unknown.
func (s *Store) Get(id string) *model.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if idx, exists := s.index[id]; exists {
		n := s.notifications[idx]
		return &n
	}
	return nil
}

// List returns a profile's notifications matching the filter, newest
// first.
func (s *Store) List(profileID string, opts FilterOptions) []model.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	var result []model.Notification
	for _, n := range s.notifications {
		if n.ProfileID != profileID {
			continue
		}
		if opts.Type != "" && n.Type != opts.Type {
			continue
		}
		if opts.Priority != nil && n.Priority != *opts.Priority {
			continue
		}
		if opts.UnreadOnly && n.IsRead() {
			continue
		}
		if opts.Since > 0 && time.Unix(n.CreatedAt, 0).Before(now.Add(-opts.Since)) {
			continue
		}
		result = append(result, n)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt > result[j].CreatedAt
	})

	if opts.Limit > 0 && len(result) > opts.Limit {
		result = result[:opts.Limit]
	}
	return result
}

// Count returns the total number of stored notifications across profiles.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.notifications)
}

// UnreadCount returns the number of unread notifications for a profile.
func (s *Store) UnreadCount(profileID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.notifications {
		if n.ProfileID == profileID && !n.IsRead() {
			count++
		}
	}
	return count
}

// MarkRead marks a notification as read. Unknown ids and already-read
// notifications are a no-op.
func (s *Store) MarkRead(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	idx, exists := s.index[id]
	if !exists || s.notifications[idx].IsRead() {
		return nil
	}
	s.notifications[idx].MarkRead()

	if s.persistence != nil {
		if err := s.persistence.Rewrite(s.notifications); err != nil {
			return err
		}
	}

	s.notifyChangeLocked(ChangeEvent{Type: ChangeTypeRead, ProfileID: s.notifications[idx].ProfileID, Count: 1})
	return nil
}

// MarkAllRead marks every unread notification of a profile as read.
func (s *Store) MarkAllRead(profileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	count := 0
	for i := range s.notifications {
		if s.notifications[i].ProfileID == profileID && !s.notifications[i].IsRead() {
			s.notifications[i].MarkRead()
			count++
		}
	}
	if count == 0 {
		return nil
	}

	if s.persistence != nil {
		if err := s.persistence.Rewrite(s.notifications); err != nil {
			return err
		}
	}

	s.notifyChangeLocked(ChangeEvent{Type: ChangeTypeRead, ProfileID: profileID, Count: count})
	return nil
}

// Delete removes a notification by id. Unknown ids are a no-op.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	idx, exists := s.index[id]
	if !exists {
		return nil
	}
	profileID := s.notifications[idx].ProfileID

	s.notifications = append(s.notifications[:idx], s.notifications[idx+1:]...)
	s.rebuildIndexLocked()

	if s.persistence != nil {
		if err := s.persistence.Rewrite(s.notifications); err != nil {
			return err
		}
	}

	s.notifyChangeLocked(ChangeEvent{Type: ChangeTypeDelete, ProfileID: profileID, Count: 1})
	return nil
}

// ClearAll removes every notification of a profile.
func (s *Store) ClearAll(profileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	kept := s.notifications[:0]
	count := 0
	for _, n := range s.notifications {
		if n.ProfileID == profileID {
			count++
			continue
		}
		kept = append(kept, n)
	}
	if count == 0 {
		return nil
	}
	s.notifications = kept
	s.rebuildIndexLocked()

	if s.persistence != nil {
		if err := s.persistence.Rewrite(s.notifications); err != nil {
			return err
		}
	}

	s.notifyChangeLocked(ChangeEvent{Type: ChangeTypeClear, ProfileID: profileID, Count: count})
	return nil
}

// Hydrate loads notifications from persistence into the store, skipping
// ids already present.
func (s *Store) Hydrate() error {
	if s.persistence == nil {
		return nil
	}

	notifications, err := s.persistence.Load()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	added := 0
	for _, n := range notifications {
		if _, exists := s.index[n.ID]; exists {
			continue
		}
		s.notifications = append(s.notifications, n)
		s.index[n.ID] = len(s.notifications) - 1
		added++
	}

	if added > 0 {
		s.notifyChangeLocked(ChangeEvent{Type: ChangeTypeAdd, Count: added})
	}
	return nil
}

// Subscribe returns a channel that receives change events. Events are
// dropped rather than blocking a slow subscriber.
func (s *Store) Subscribe() <-chan ChangeEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan ChangeEvent, 10)
	s.subscribers = append(s.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (s *Store) Unsubscribe(ch <-chan ChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sub := range s.subscribers {
		if sub == ch {
			s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
			close(sub)
			return
		}
	}
}

// Close releases resources and closes all subscriber channels.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	for _, ch := range s.subscribers {
		close(ch)
	}
	s.subscribers = nil

	if s.persistence != nil {
		return s.persistence.Close()
	}
	return nil
}

// notifyChangeLocked sends a change event to all subscribers without
// blocking. Caller must hold the lock.
func (s *Store) notifyChangeLocked(event ChangeEvent) {
	for _, ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			// Channel full, skip
		}
	}
}
