package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{name: "seconds", input: "5s", want: 5 * time.Second},
		{name: "compound", input: "1m30s", want: 90 * time.Second},
		{name: "milliseconds integer", input: "250", want: 250 * time.Millisecond},
		{name: "garbage", input: "soon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Duration())
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 5, cfg.Toast.MaxVisible)
	assert.Equal(t, 16, cfg.Toast.Spacing)
	assert.Equal(t, "top-right", cfg.Toast.Corner)
	assert.Equal(t, 20, cfg.Queue.MaxSize)
	assert.True(t, cfg.Queue.UrgentBypass)
	assert.Equal(t, 6*time.Second, cfg.Timing.Normal.Duration())
	assert.Equal(t, 50*time.Millisecond, cfg.Detector.Debounce.Duration())
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notica.toml")
	content := `
debug_mode = true

[toast]
max_visible = 3
corner = "bottom-left"

[timing]
normal = "4s"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.DebugMode)
	assert.Equal(t, 3, cfg.Toast.MaxVisible)
	assert.Equal(t, "bottom-left", cfg.Toast.Corner)
	assert.Equal(t, 4*time.Second, cfg.Timing.Normal.Duration())
	// untouched fields keep defaults
	assert.Equal(t, 20, cfg.Queue.MaxSize)
	assert.Equal(t, 16, cfg.Toast.Spacing)
}

func TestLogLevel(t *testing.T) {
	cfg := Default()
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel())

	cfg.DebugMode = true
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel())
}

func TestLoad_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notica.toml")
	require.NoError(t, os.WriteFile(path, []byte("[toast]\ncorner = \"middle\"\n"), 0600))

	_, err := Load(path)
	assert.ErrorContains(t, err, "invalid corner")
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notica.toml")

	cfg := Default()
	cfg.Toast.MaxVisible = 7
	cfg.Queue.Stagger = Duration(150 * time.Millisecond)
	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errstr string
	}{
		{name: "max_visible zero", mutate: func(c *Config) { c.Toast.MaxVisible = 0 }, errstr: "max_visible"},
		{name: "negative spacing", mutate: func(c *Config) { c.Toast.Spacing = -1 }, errstr: "spacing"},
		{name: "queue size zero", mutate: func(c *Config) { c.Queue.MaxSize = 0 }, errstr: "max_size"},
		{name: "attempts zero", mutate: func(c *Config) { c.Queue.MaxAttempts = 0 }, errstr: "max_attempts"},
		{name: "volume over 100", mutate: func(c *Config) { c.Audio.Volume = 101 }, errstr: "volume"},
		{name: "history zero", mutate: func(c *Config) { c.Store.HistoryLength = 0 }, errstr: "history_length"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.errstr)
		})
	}
}
