// Package audio provides notification sound playback.
package audio

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

// Player handles audio playback for notification cues.
type Player struct {
	mu     sync.Mutex
	logger *slog.Logger

	// Volume control (0.0 to 1.0)
	volume float64

	initialized bool
	sampleRate  beep.SampleRate

	cache      map[string]*cachedSound
	cacheMutex sync.RWMutex
}

// cachedSound holds a decoded sound ready for playback.
type cachedSound struct {
	buffer *beep.Buffer
	path   string
}

// NewPlayer creates a new audio player.
func NewPlayer(logger *slog.Logger) *Player {
	if logger == nil {
		logger = slog.Default()
	}

	return &Player{
		logger:     logger,
		volume:     1.0,
		sampleRate: beep.SampleRate(44100),
		cache:      make(map[string]*cachedSound),
	}
}

// SetVolume sets the playback volume (0.0 to 1.0).
func (p *Player) SetVolume(volume float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if volume < 0 {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}
	p.volume = volume
}

// Volume returns the current volume.
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// Play plays a sound file. Supports WAV, OGG, and MP3 formats.
func (p *Player) Play(path string) error {
	if path == "" {
		return nil
	}
	path = expandHome(path)

	p.cacheMutex.RLock()
	cached, ok := p.cache[path]
	p.cacheMutex.RUnlock()

	if ok {
		return p.playBuffer(cached.buffer)
	}

	buffer, err := p.loadSound(path)
	if err != nil {
		p.logger.Warn("failed to load sound", "path", path, "error", err)
		return err
	}

	p.cacheMutex.Lock()
	p.cache[path] = &cachedSound{buffer: buffer, path: path}
	p.cacheMutex.Unlock()

	return p.playBuffer(buffer)
}

// Preload decodes a sound file into the cache for faster first playback.
func (p *Player) Preload(path string) error {
	if path == "" {
		return nil
	}
	path = expandHome(path)

	p.cacheMutex.RLock()
	_, ok := p.cache[path]
	p.cacheMutex.RUnlock()
	if ok {
		return nil
	}

	buffer, err := p.loadSound(path)
	if err != nil {
		return err
	}

	p.cacheMutex.Lock()
	p.cache[path] = &cachedSound{buffer: buffer, path: path}
	p.cacheMutex.Unlock()

	p.logger.Debug("preloaded sound", "path", path)
	return nil
}

// loadSound loads and decodes a sound file into a buffer.
func (p *Player) loadSound(path string) (*beep.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sound file: %w", err)
	}
	defer func() { _ = f.Close() }()

	ext := strings.ToLower(filepath.Ext(path))

	var streamer beep.StreamSeekCloser
	var format beep.Format

	switch ext {
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	default:
		return nil, fmt.Errorf("unsupported audio format: %s", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode sound: %w", err)
	}
	defer func() { _ = streamer.Close() }()

	if err := p.ensureInitialized(format.SampleRate); err != nil {
		return nil, err
	}

	buffer := beep.NewBuffer(format)
	buffer.Append(streamer)
	return buffer, nil
}

// ensureInitialized initializes the speaker if not already done.
func (p *Player) ensureInitialized(sampleRate beep.SampleRate) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}

	bufferSize := sampleRate.N(time.Millisecond * 100)
	if err := speaker.Init(sampleRate, bufferSize); err != nil {
		return fmt.Errorf("failed to initialize speaker: %w", err)
	}

	p.sampleRate = sampleRate
	p.initialized = true
	p.logger.Debug("speaker initialized", "sample_rate", sampleRate)
	return nil
}

// playBuffer plays a buffered sound at the current volume.
func (p *Player) playBuffer(buffer *beep.Buffer) error {
	if buffer == nil {
		return nil
	}

	p.mu.Lock()
	volume := p.volume
	sampleRate := p.sampleRate
	p.mu.Unlock()

	var streamer beep.Streamer = buffer.Streamer(0, buffer.Len())

	if buffer.Format().SampleRate != sampleRate {
		streamer = beep.Resample(4, buffer.Format().SampleRate, sampleRate, streamer)
	}

	if volume < 1.0 {
		streamer = &effects.Volume{
			Streamer: streamer,
			Base:     2,
			Volume:   volumeToDecibels(volume),
			Silent:   volume == 0,
		}
	}

	speaker.Play(streamer)
	return nil
}

// ClearCache drops all cached sounds.
func (p *Player) ClearCache() {
	p.cacheMutex.Lock()
	defer p.cacheMutex.Unlock()
	p.cache = make(map[string]*cachedSound)
}

// Close stops all playback and releases resources.
func (p *Player) Close() {
	p.mu.Lock()
	if p.initialized {
		speaker.Close()
		p.initialized = false
	}
	p.mu.Unlock()

	p.ClearCache()
	p.logger.Debug("audio player closed")
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// volumeToDecibels converts a linear volume (0-1) to decibels.
func volumeToDecibels(volume float64) float64 {
	if volume <= 0 {
		return -100 // effectively silent
	}
	return 20 * math.Log10(volume)
}
