package audio

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ludolib/notica/internal/config"
	"github.com/ludolib/notica/internal/model"
)

// fakePlayer records calls instead of touching the speaker.
type fakePlayer struct {
	played    []string
	preloaded []string
	volume    float64
	playErr   error
	closed    bool
}

func (f *fakePlayer) Play(path string) error {
	f.played = append(f.played, path)
	return f.playErr
}

func (f *fakePlayer) SetVolume(volume float64) { f.volume = volume }

func (f *fakePlayer) Preload(path string) error {
	f.preloaded = append(f.preloaded, path)
	return nil
}

func (f *fakePlayer) Close() { f.closed = true }

func newTestManager(cfg config.AudioConfig) (*Manager, *fakePlayer) {
	fake := &fakePlayer{}
	m := &Manager{
		logger:  slog.Default(),
		player:  fake,
		enabled: cfg.Enabled,
		sounds: map[model.Priority]string{
			model.PriorityLow:    cfg.Sounds.Low,
			model.PriorityNormal: cfg.Sounds.Normal,
			model.PriorityHigh:   cfg.Sounds.High,
			model.PriorityUrgent: cfg.Sounds.Urgent,
		},
	}
	fake.SetVolume(float64(cfg.Volume) / 100)
	return m, fake
}

func TestManager_PlaysConfiguredCue(t *testing.T) {
	m, fake := newTestManager(config.AudioConfig{
		Enabled: true,
		Volume:  80,
		Sounds:  config.SoundConfig{Urgent: "/sounds/urgent.wav"},
	})

	m.Play(model.PriorityUrgent)
	assert.Equal(t, []string{"/sounds/urgent.wav"}, fake.played)
}

func TestManager_UnconfiguredPriorityIsSilent(t *testing.T) {
	m, fake := newTestManager(config.AudioConfig{
		Enabled: true,
		Sounds:  config.SoundConfig{Urgent: "/sounds/urgent.wav"},
	})

	m.Play(model.PriorityLow)
	assert.Empty(t, fake.played)
}

func TestManager_DisabledIsSilent(t *testing.T) {
	m, fake := newTestManager(config.AudioConfig{
		Enabled: false,
		Sounds:  config.SoundConfig{Normal: "/sounds/normal.wav"},
	})

	m.Play(model.PriorityNormal)
	assert.Empty(t, fake.played)

	m.SetEnabled(true)
	m.Play(model.PriorityNormal)
	assert.Len(t, fake.played, 1)
}

func TestManager_PlaybackErrorsDegradeSilently(t *testing.T) {
	m, fake := newTestManager(config.AudioConfig{
		Enabled: true,
		Sounds:  config.SoundConfig{High: "/sounds/high.wav"},
	})
	fake.playErr = errors.New("no audio device")

	// must not panic or propagate
	m.Play(model.PriorityHigh)
	assert.Len(t, fake.played, 1)
}

func TestManager_SetVolumeClamps(t *testing.T) {
	m, fake := newTestManager(config.AudioConfig{Enabled: true})

	m.SetVolume(150)
	assert.Equal(t, 1.0, fake.volume)

	m.SetVolume(-5)
	assert.Equal(t, 0.0, fake.volume)

	m.SetVolume(50)
	assert.Equal(t, 0.5, fake.volume)
}

func TestManager_Close(t *testing.T) {
	m, fake := newTestManager(config.AudioConfig{})
	m.Close()
	assert.True(t, fake.closed)
}
