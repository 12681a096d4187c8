// Package prefs manages per-profile notification preferences.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/ludolib/notica/internal/geometry"
	"github.com/ludolib/notica/internal/model"
)

// Preferences holds one profile's notification settings.
type Preferences struct {
	// Enabled gates all notifications for the profile.
	Enabled bool `toml:"enabled"`

	// MutedTypes lists notification types the profile never sees.
	MutedTypes []string `toml:"muted_types"`

	// MinPriority is the lowest priority that is shown.
	MinPriority model.Priority `toml:"min_priority"`

	// Sound enables audio cues for this profile.
	Sound bool `toml:"sound"`

	// Corner overrides the global anchor corner when set.
	Corner string `toml:"corner,omitempty"`
}

// DefaultPreferences returns the settings a new profile starts with.
func DefaultPreferences() Preferences {
	return Preferences{
		Enabled:     true,
		MinPriority: model.PriorityLow,
		Sound:       true,
	}
}

// Allows reports whether the notification passes the profile's filters.
// Urgent notifications ignore the muted-types filter but still honor the
// master enable switch.
func (p Preferences) Allows(n *model.Notification) bool {
	if !p.Enabled {
		return false
	}
	if n.Priority.IsUrgent() {
		return true
	}
	if n.Priority.Compare(p.MinPriority) > 0 {
		return false
	}
	for _, t := range p.MutedTypes {
		if t == string(n.Type) {
			return false
		}
	}
	return true
}

// PreferredCorner returns the profile's corner override, or ok=false when
// the profile follows the global setting.
func (p Preferences) PreferredCorner() (geometry.Corner, bool) {
	c := geometry.Corner(p.Corner)
	if !c.Valid() {
		return "", false
	}
	return c, true
}

// Manager holds preferences for all profiles and persists them to a
// single TOML file.
type Manager struct {
	mu       sync.RWMutex
	path     string
	profiles map[string]Preferences
}

// fileFormat is the on-disk shape of the preferences file.
type fileFormat struct {
	Profiles map[string]Preferences `toml:"profiles"`
}

// NewManager creates a preferences manager backed by the given file.
// A missing file is not an error; profiles start with defaults.
func NewManager(path string) (*Manager, error) {
	m := &Manager{
		path:     path,
		profiles: make(map[string]Preferences),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, fmt.Errorf("failed to read preferences: %w", err)
	}

	var f fileFormat
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse preferences: %w", err)
	}
	if f.Profiles != nil {
		m.profiles = f.Profiles
	}
	return m, nil
}

// Get returns the preferences for a profile, falling back to defaults
// for unknown profiles.
func (m *Manager) Get(profileID string) Preferences {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if p, ok := m.profiles[profileID]; ok {
		return p
	}
	return DefaultPreferences()
}

// Set stores the preferences for a profile and persists the file.
func (m *Manager) Set(profileID string, p Preferences) error {
	m.mu.Lock()
	m.profiles[profileID] = p
	m.mu.Unlock()
	return m.save()
}

// Reset removes a profile's overrides, reverting it to defaults.
func (m *Manager) Reset(profileID string) error {
	m.mu.Lock()
	delete(m.profiles, profileID)
	m.mu.Unlock()
	return m.save()
}

// Allows reports whether the profile's preferences admit the notification.
func (m *Manager) Allows(n *model.Notification) bool {
	return m.Get(n.ProfileID).Allows(n)
}

func (m *Manager) save() error {
	m.mu.RLock()
	f := fileFormat{Profiles: make(map[string]Preferences, len(m.profiles))}
	for id, p := range m.profiles {
		f.Profiles[id] = p
	}
	m.mu.RUnlock()

	data, err := toml.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0700); err != nil {
		return fmt.Errorf("failed to create preferences directory: %w", err)
	}

	tmpPath := m.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	return os.Rename(tmpPath, m.path)
}
