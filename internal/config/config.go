// Package config loads and validates the notica configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/ludolib/notica/internal/geometry"
)

// Duration is a time.Duration that can be unmarshaled from human-readable
// strings like "5s" or "1m30s", or from integer milliseconds.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)

	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '5s', '1m30s' or milliseconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Config is the notica configuration.
// Loaded from ~/.config/notica/notica.toml
type Config struct {
	Toast    ToastConfig    `toml:"toast"`
	Queue    QueueConfig    `toml:"queue"`
	Timing   TimingConfig   `toml:"timing"`
	Detector DetectorConfig `toml:"detector"`
	Audio    AudioConfig    `toml:"audio"`
	Store    StoreConfig    `toml:"store"`

	// DebugMode enables verbose coordinator diagnostics.
	DebugMode bool `toml:"debug_mode"`
}

// ToastConfig contains toast stack and layout settings.
type ToastConfig struct {
	MaxVisible               int      `toml:"max_visible"`               // Max simultaneous non-urgent toasts
	Spacing                  int      `toml:"spacing"`                   // Pixels between toasts
	Margin                   int      `toml:"margin"`                    // Pixels from viewport edges
	Corner                   string   `toml:"corner"`                    // Preferred anchor corner
	AnimationDuration        Duration `toml:"animation_duration"`        // Show/hide animation length
	EnableAutoCollapse       bool     `toml:"enable_auto_collapse"`      // Fold overflow into "+N more"
	EnablePriorityReordering bool     `toml:"enable_priority_reordering"`
}

// QueueConfig contains deferral queue settings.
type QueueConfig struct {
	MaxSize      int      `toml:"max_size"`
	MaxAttempts  int      `toml:"max_attempts"`
	UrgentBypass bool     `toml:"urgent_bypass"`
	Stagger      Duration `toml:"stagger"`
}

// TimingConfig contains auto-dismiss durations per priority.
// Urgent notifications never auto-dismiss and have no entry here.
type TimingConfig struct {
	Low            Duration `toml:"low"`
	Normal         Duration `toml:"normal"`
	High           Duration `toml:"high"`
	ActivityWindow Duration `toml:"activity_window"`
	Extension      Duration `toml:"extension"`
}

// DetectorConfig contains interference detection settings.
type DetectorConfig struct {
	Debounce Duration `toml:"debounce"` // Mutation batching window
}

// AudioConfig contains notification sound settings.
type AudioConfig struct {
	Enabled bool        `toml:"enabled"`
	Volume  int         `toml:"volume"` // 0-100
	Sounds  SoundConfig `toml:"sounds"`
}

// SoundConfig contains per-priority sound file paths.
type SoundConfig struct {
	Low    string `toml:"low"`
	Normal string `toml:"normal"`
	High   string `toml:"high"`
	Urgent string `toml:"urgent"`
}

// StoreConfig contains notification store settings.
type StoreConfig struct {
	// HistoryLength caps retained notifications per profile; the oldest
	// read notifications are pruned first.
	HistoryLength int `toml:"history_length"`
}

// Default returns a new Config with default values.
func Default() *Config {
	return &Config{
		Toast: ToastConfig{
			MaxVisible:        5,
			Spacing:           16,
			Margin:            16,
			Corner:            string(geometry.CornerTopRight),
			AnimationDuration: Duration(300 * time.Millisecond),
		},
		Queue: QueueConfig{
			MaxSize:      20,
			MaxAttempts:  3,
			UrgentBypass: true,
			Stagger:      Duration(200 * time.Millisecond),
		},
		Timing: TimingConfig{
			Low:            Duration(8 * time.Second),
			Normal:         Duration(6 * time.Second),
			High:           Duration(5 * time.Second),
			ActivityWindow: Duration(10 * time.Second),
			Extension:      Duration(2 * time.Second),
		},
		Detector: DetectorConfig{
			Debounce: Duration(50 * time.Millisecond),
		},
		Audio: AudioConfig{
			Enabled: true,
			Volume:  80,
		},
		Store: StoreConfig{
			HistoryLength: 200,
		},
	}
}

// Path returns the path to the config file.
func Path() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "notica", "notica.toml"), nil
}

// DataDir returns the directory holding the notification history.
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "notica"), nil
}

// HistoryPath returns the path to the notification history file.
func HistoryPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.jsonl"), nil
}

// EnsureDataDir creates the data directory if missing.
func EnsureDataDir() error {
	dir, err := DataDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// Load reads the configuration from the given path, or the default path
// when empty. A missing file returns the default configuration.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = Path()
		if err != nil {
			return nil, fmt.Errorf("failed to get config path: %w", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then overlay with file contents
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given path atomically.
func Save(cfg *Config, path string) error {
	if path == "" {
		var err error
		path, err = Path()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !geometry.Corner(c.Toast.Corner).Valid() {
		return fmt.Errorf("invalid corner %q, must be one of: %v", c.Toast.Corner, geometry.ValidCorners())
	}
	if c.Toast.MaxVisible < 1 || c.Toast.MaxVisible > 20 {
		return fmt.Errorf("max_visible must be between 1 and 20, got %d", c.Toast.MaxVisible)
	}
	if c.Toast.Spacing < 0 || c.Toast.Margin < 0 {
		return fmt.Errorf("spacing and margin must not be negative")
	}
	if c.Queue.MaxSize < 1 {
		return fmt.Errorf("queue max_size must be at least 1, got %d", c.Queue.MaxSize)
	}
	if c.Queue.MaxAttempts < 1 {
		return fmt.Errorf("queue max_attempts must be at least 1, got %d", c.Queue.MaxAttempts)
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 100 {
		return fmt.Errorf("volume must be between 0 and 100, got %d", c.Audio.Volume)
	}
	if c.Store.HistoryLength < 1 {
		return fmt.Errorf("history_length must be at least 1, got %d", c.Store.HistoryLength)
	}
	return nil
}

// PreferredCorner returns the configured anchor corner.
func (c *Config) PreferredCorner() geometry.Corner {
	return geometry.Corner(c.Toast.Corner)
}

// LogLevel returns the logging level the configuration asks for:
// debug when DebugMode is set, warn otherwise.
func (c *Config) LogLevel() slog.Level {
	if c.DebugMode {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}
