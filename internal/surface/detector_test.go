package surface

import (
	"testing"
	"time"

	"github.com/ludolib/notica/internal/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialogSurface() Surface {
	return Surface{
		Kind:   KindDialog,
		Rect:   geometry.Rect{X: 700, Y: 300, Width: 500, Height: 400},
		ZIndex: 50,
	}
}

func TestRegistry_OpenClose(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, 0, r.OpenCount())

	h := r.Open(dialogSurface())
	assert.Equal(t, 1, r.OpenCount())

	r.Close(h)
	assert.Equal(t, 0, r.OpenCount())

	// Closing an unknown handle is a no-op
	r.Close(h)
	assert.Equal(t, 0, r.OpenCount())
}

func TestRegistry_Subscribe(t *testing.T) {
	r := NewRegistry()

	var got []Snapshot
	cancel := r.Subscribe(func(s Snapshot) {
		got = append(got, s)
	})

	h := r.Open(dialogSurface())
	require.Len(t, got, 1)
	assert.Len(t, got[0].Surfaces, 1)

	cancel()
	r.Close(h)
	assert.Len(t, got, 1) // no delivery after cancel

	// Cancel twice is safe
	cancel()
}

func TestRegistry_SetViewport(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, DefaultViewport, r.Snapshot().Viewport)

	r.SetViewport(geometry.Viewport{Width: 2560, Height: 1440})
	assert.Equal(t, 2560, r.Snapshot().Viewport.Width)

	// Degenerate dimensions are ignored
	r.SetViewport(geometry.Viewport{})
	assert.Equal(t, 2560, r.Snapshot().Viewport.Width)
}

func TestDetector_NilObserverDegrades(t *testing.T) {
	d := NewDetector(nil, 0, nil)
	d.Start()
	defer d.Stop()

	assert.False(t, d.HasInterferences())
	assert.False(t, d.HasHighPriorityInterferences())
	assert.Empty(t, d.Interferences())

	// Positioning still works with the default viewport
	p := d.OptimalToastPosition(geometry.CornerTopRight, geometry.Size{Width: 300, Height: 80}, 16, 16)
	assert.Equal(t, geometry.CornerTopRight, p.Corner)
}

func TestDetector_TracksRegistry(t *testing.T) {
	r := NewRegistry()
	d := NewDetector(r, time.Millisecond, nil)
	d.Start()
	defer d.Stop()

	h := r.Open(dialogSurface())

	require.Eventually(t, d.HasHighPriorityInterferences, time.Second, time.Millisecond)
	assert.True(t, d.HasInterferences())
	assert.Len(t, d.Interferences(), 1)

	r.Close(h)
	require.Eventually(t, func() bool { return !d.HasInterferences() }, time.Second, time.Millisecond)
	assert.False(t, d.HasHighPriorityInterferences())
}

func TestDetector_DebouncesBursts(t *testing.T) {
	r := NewRegistry()
	d := NewDetector(r, 20*time.Millisecond, nil)
	d.Start()
	defer d.Stop()

	// A burst of mutations within the window collapses into the last state
	h1 := r.Open(dialogSurface())
	h2 := r.Open(Surface{Kind: KindDrawer, Rect: geometry.Rect{Width: 250, Height: 1080}})
	r.Close(h1)
	r.Close(h2)

	time.Sleep(60 * time.Millisecond)
	assert.False(t, d.HasInterferences())
}

func TestDetector_ClearedEvent(t *testing.T) {
	r := NewRegistry()
	d := NewDetector(r, time.Millisecond, nil)
	d.Start()
	defer d.Stop()

	ch := d.Subscribe()

	h := r.Open(dialogSurface())

	// First event: high priority appears
	var ev ChangeEvent
	select {
	case ev = <-ch:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for open event")
	}
	assert.True(t, ev.HighPriority)
	assert.False(t, ev.Cleared)

	r.Close(h)

	select {
	case ev = <-ch:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for clear event")
	}
	assert.True(t, ev.Cleared)
	assert.False(t, ev.HighPriority)
	assert.Equal(t, 0, ev.Count)

	d.Unsubscribe(ch)
	_, ok := <-ch
	assert.False(t, ok)
}

func TestDetector_PositionAvoidsDialog(t *testing.T) {
	r := NewRegistry()
	r.SetViewport(geometry.Viewport{Width: 1920, Height: 1080})
	d := NewDetector(r, time.Millisecond, nil)
	d.Start()
	defer d.Stop()

	// Dialog parked over the top-right corner
	r.Open(Surface{
		Kind: KindModal,
		Rect: geometry.Rect{X: 1400, Y: 0, Width: 520, Height: 400},
	})
	require.Eventually(t, d.HasInterferences, time.Second, time.Millisecond)

	p := d.OptimalToastPosition(geometry.CornerTopRight, geometry.Size{Width: 300, Height: 80}, 16, 16)
	assert.NotEqual(t, geometry.CornerTopRight, p.Corner)
}
