package audio

import (
	"log/slog"
	"sync"

	"github.com/ludolib/notica/internal/config"
	"github.com/ludolib/notica/internal/model"
)

// cuePlayer abstracts the Player for tests.
type cuePlayer interface {
	Play(path string) error
	SetVolume(volume float64)
	Preload(path string) error
	Close()
}

// Manager maps notification priorities to audio cues. Playback failures
// degrade silently: a toast without a sound is better than no toast.
type Manager struct {
	mu      sync.RWMutex
	logger  *slog.Logger
	player  cuePlayer
	enabled bool
	sounds  map[model.Priority]string
}

// NewManager creates a cue manager from the audio configuration.
func NewManager(cfg config.AudioConfig, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{
		logger:  logger,
		player:  NewPlayer(logger),
		enabled: cfg.Enabled,
		sounds: map[model.Priority]string{
			model.PriorityLow:    cfg.Sounds.Low,
			model.PriorityNormal: cfg.Sounds.Normal,
			model.PriorityHigh:   cfg.Sounds.High,
			model.PriorityUrgent: cfg.Sounds.Urgent,
		},
	}
	m.player.SetVolume(float64(cfg.Volume) / 100)

	if cfg.Enabled {
		m.preload()
	}
	return m
}

// preload warms the cache for all configured cues. Missing files are only
// logged; they fail the same way at play time.
func (m *Manager) preload() {
	for priority, path := range m.sounds {
		if path == "" {
			continue
		}
		if err := m.player.Preload(path); err != nil {
			m.logger.Warn("failed to preload cue",
				"priority", priority.String(), "path", path, "error", err)
		}
	}
}

// Play plays the cue for a priority. Unconfigured priorities and playback
// errors are silent no-ops.
func (m *Manager) Play(p model.Priority) {
	m.mu.RLock()
	enabled := m.enabled
	path := m.sounds[p]
	m.mu.RUnlock()

	if !enabled || path == "" {
		return
	}
	if err := m.player.Play(path); err != nil {
		m.logger.Debug("cue playback failed", "priority", p.String(), "error", err)
	}
}

// SetEnabled toggles all cue playback.
func (m *Manager) SetEnabled(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = enabled
}

// SetVolume sets the cue volume from a 0-100 scale.
func (m *Manager) SetVolume(volume int) {
	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}
	m.player.SetVolume(float64(volume) / 100)
}

// Close releases the underlying player.
func (m *Manager) Close() {
	m.player.Close()
}
