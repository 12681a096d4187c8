// Package model defines the core data structures for notica.
package model

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// Type classifies a notification by its origin inside the application.
type Type string

const (
	TypeSystem   Type = "system"
	TypeProfile  Type = "profile"
	TypeSecurity Type = "security"
	TypeUpdate   Type = "update"
	TypeGame     Type = "game"
	TypeStore    Type = "store"
	TypeCustom   Type = "custom"
)

// ValidTypes returns all valid notification types.
func ValidTypes() []Type {
	return []Type{TypeSystem, TypeProfile, TypeSecurity, TypeUpdate, TypeGame, TypeStore, TypeCustom}
}

// Valid reports whether t is a known notification type.
func (t Type) Valid() bool {
	for _, v := range ValidTypes() {
		if t == v {
			return true
		}
	}
	return false
}

// Notification represents a single notification entry.
// Immutable once created, except for the read timestamp.
type Notification struct {
	ID        string `json:"id"`
	ProfileID string `json:"profile_id"`

	Type     Type     `json:"type"`
	Priority Priority `json:"priority"`

	Title     string `json:"title"`
	Message   string `json:"message"`
	Icon      string `json:"icon,omitempty"`
	ActionURL string `json:"action_url,omitempty"`

	CreatedAt int64 `json:"created_at"`
	ReadAt    int64 `json:"read_at,omitempty"`

	Source   string   `json:"source,omitempty"`
	Category string   `json:"category,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// Validation errors.
var (
	ErrEmptyID        = errors.New("id cannot be empty")
	ErrEmptyProfileID = errors.New("profile_id cannot be empty")
	ErrEmptyTitle     = errors.New("title cannot be empty")
	ErrInvalidType    = errors.New("unknown notification type")
	ErrInvalidCreated = errors.New("created_at must be greater than 0")
)

// New creates a Notification with a generated ULID and creation timestamp.
func New(profileID string, typ Type, priority Priority, title, message string) (*Notification, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ULID: %w", err)
	}

	return &Notification{
		ID:        id.String(),
		ProfileID: profileID,
		Type:      typ,
		Priority:  priority,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now().Unix(),
	}, nil
}

// Validate checks that the notification has all required fields.
func (n *Notification) Validate() error {
	if n.ID == "" {
		return ErrEmptyID
	}
	if n.ProfileID == "" {
		return ErrEmptyProfileID
	}
	if n.Title == "" {
		return ErrEmptyTitle
	}
	if !n.Type.Valid() {
		return ErrInvalidType
	}
	if n.CreatedAt <= 0 {
		return ErrInvalidCreated
	}
	return nil
}

// IsRead returns true if the notification has been marked read.
func (n *Notification) IsRead() bool {
	return n.ReadAt > 0
}

// MarkRead marks the notification as read at the current time.
// Marking an already-read notification keeps the original read time.
func (n *Notification) MarkRead() {
	if n.ReadAt == 0 {
		n.ReadAt = time.Now().Unix()
	}
}

// CreatedTime returns the creation timestamp as a time.Time.
func (n *Notification) CreatedTime() time.Time {
	return time.Unix(n.CreatedAt, 0)
}

// Age returns the time elapsed since the notification was created.
func (n *Notification) Age() time.Duration {
	return time.Since(n.CreatedTime())
}

// HasTag reports whether the notification carries the given tag.
// Tags are an unordered multiset; only membership is meaningful.
func (n *Notification) HasTag(tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Clone creates a deep copy of the notification.
func (n *Notification) Clone() *Notification {
	clone := *n
	if n.Tags != nil {
		clone.Tags = make([]string, len(n.Tags))
		copy(clone.Tags, n.Tags)
	}
	return &clone
}
