package toast

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludolib/notica/internal/config"
	"github.com/ludolib/notica/internal/geometry"
	"github.com/ludolib/notica/internal/model"
	"github.com/ludolib/notica/internal/surface"
)

// denyFilter rejects every notification.
type denyFilter struct{}

func (denyFilter) Allows(*model.Notification) bool { return false }

// dismissRecorder captures dismiss callbacks for assertions.
type dismissRecorder struct {
	mu      sync.Mutex
	reasons map[string]DismissReason
}

func newDismissRecorder() *dismissRecorder {
	return &dismissRecorder{reasons: make(map[string]DismissReason)}
}

func (r *dismissRecorder) record(id string, reason DismissReason) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reasons[id] = reason
}

func (r *dismissRecorder) reason(id string) (DismissReason, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reason, ok := r.reasons[id]
	return reason, ok
}

func fastConfig() *config.Config {
	cfg := config.Default()
	cfg.Detector.Debounce = config.Duration(time.Millisecond)
	cfg.Queue.Stagger = config.Duration(time.Millisecond)
	cfg.Timing.Low = config.Duration(time.Hour)
	cfg.Timing.Normal = config.Duration(time.Hour)
	cfg.Timing.High = config.Duration(time.Hour)
	return cfg
}

func newTestCoordinator(t *testing.T, cfg *config.Config, opts ...Option) (*Coordinator, *surface.Registry, *dismissRecorder) {
	t.Helper()
	if cfg == nil {
		cfg = fastConfig()
	}
	reg := surface.NewRegistry()
	rec := newDismissRecorder()
	opts = append(opts, WithDismissFunc(rec.record))
	c := NewCoordinator(cfg, reg, nil, opts...)
	c.Start()
	t.Cleanup(c.Stop)
	return c, reg, rec
}

func notify(t *testing.T, c *Coordinator, id string, priority model.Priority) {
	t.Helper()
	n, err := model.New("profile-1", model.TypeSystem, priority, "title", "message")
	require.NoError(t, err)
	n.ID = id
	require.NoError(t, c.Notify(n))
}

func visibleIDs(c *Coordinator) []string {
	entries := c.VisibleToasts()
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	return ids
}

func TestCoordinator_NotifyShowsImmediately(t *testing.T) {
	c, _, _ := newTestCoordinator(t, nil)

	notify(t, c, "a", model.PriorityNormal)

	assert.Equal(t, []string{"a"}, visibleIDs(c))
	assert.Equal(t, 0, c.QueuedCount())
}

func TestCoordinator_NotifyValidates(t *testing.T) {
	c, _, _ := newTestCoordinator(t, nil)

	assert.ErrorIs(t, c.Notify(nil), ErrNilNotification)

	n, err := model.New("profile-1", model.TypeSystem, model.PriorityNormal, "title", "msg")
	require.NoError(t, err)
	n.Title = ""
	assert.ErrorIs(t, c.Notify(n), model.ErrEmptyTitle)
}

func TestCoordinator_FilterRejects(t *testing.T) {
	c, _, _ := newTestCoordinator(t, nil, WithFilter(denyFilter{}))

	n, err := model.New("profile-1", model.TypeSystem, model.PriorityNormal, "title", "msg")
	require.NoError(t, err)
	assert.ErrorIs(t, c.Notify(n), ErrFiltered)
	assert.Empty(t, c.VisibleToasts())
}

func TestCoordinator_ModalDefersThenDrains(t *testing.T) {
	c, reg, _ := newTestCoordinator(t, nil)

	reg.SetViewport(geometry.Viewport{Width: 1920, Height: 1080})
	handle := reg.Open(surface.Surface{
		Kind:   surface.KindModal,
		Rect:   geometry.Rect{X: 600, Y: 300, Width: 720, Height: 480},
		ZIndex: 100,
	})

	require.Eventually(t, func() bool {
		return c.Stats().HighPriorityActive
	}, time.Second, 5*time.Millisecond)

	notify(t, c, "deferred", model.PriorityNormal)
	assert.Empty(t, visibleIDs(c))
	assert.Equal(t, 1, c.QueuedCount())

	reg.Close(handle)

	require.Eventually(t, func() bool {
		ids := visibleIDs(c)
		return len(ids) == 1 && ids[0] == "deferred"
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, c.QueuedCount())
}

func TestCoordinator_UrgentBypassesModal(t *testing.T) {
	c, reg, _ := newTestCoordinator(t, nil)

	reg.Open(surface.Surface{
		Kind:   surface.KindModal,
		Rect:   geometry.Rect{X: 600, Y: 300, Width: 720, Height: 480},
		ZIndex: 100,
	})
	require.Eventually(t, func() bool {
		return c.Stats().HighPriorityActive
	}, time.Second, 5*time.Millisecond)

	notify(t, c, "urgent", model.PriorityUrgent)

	assert.Equal(t, []string{"urgent"}, visibleIDs(c))
	assert.Equal(t, 0, c.QueuedCount())
}

func TestCoordinator_FullStackQueuesThenBackfills(t *testing.T) {
	cfg := fastConfig()
	cfg.Toast.MaxVisible = 2
	c, _, rec := newTestCoordinator(t, cfg)

	notify(t, c, "a", model.PriorityHigh)
	notify(t, c, "b", model.PriorityHigh)
	// lower priority than everything visible: rejected, not evicting
	notify(t, c, "c", model.PriorityLow)

	assert.ElementsMatch(t, []string{"a", "b"}, visibleIDs(c))
	assert.Equal(t, 1, c.QueuedCount())

	c.UnregisterToast("a")

	reason, ok := rec.reason("a")
	require.True(t, ok)
	assert.Equal(t, DismissManual, reason)

	require.Eventually(t, func() bool {
		ids := visibleIDs(c)
		return len(ids) == 2 && c.QueuedCount() == 0
	}, time.Second, 5*time.Millisecond)
	assert.Contains(t, visibleIDs(c), "c")
}

func TestCoordinator_EvictionCancelsTimerAndReports(t *testing.T) {
	cfg := fastConfig()
	cfg.Toast.MaxVisible = 1
	c, _, rec := newTestCoordinator(t, cfg)

	notify(t, c, "low", model.PriorityLow)
	notify(t, c, "high", model.PriorityHigh)

	assert.Equal(t, []string{"high"}, visibleIDs(c))

	reason, ok := rec.reason("low")
	require.True(t, ok)
	assert.Equal(t, DismissEvicted, reason)

	// the evicted toast has no pending dismissal left behind
	assert.Equal(t, 1, c.Stats().PendingDismissals)
}

func TestCoordinator_AutoDismiss(t *testing.T) {
	cfg := fastConfig()
	cfg.Timing.Normal = config.Duration(20 * time.Millisecond)
	cfg.Timing.ActivityWindow = config.Duration(time.Millisecond)
	cfg.Timing.Extension = config.Duration(time.Millisecond)
	c, _, rec := newTestCoordinator(t, cfg)

	notify(t, c, "fleeting", model.PriorityNormal)
	require.Equal(t, []string{"fleeting"}, visibleIDs(c))

	require.Eventually(t, func() bool {
		reason, ok := rec.reason("fleeting")
		return ok && reason == DismissTimeout
	}, time.Second, 5*time.Millisecond)
	assert.Empty(t, visibleIDs(c))
}

func TestCoordinator_EscalatedQueuedIDLeavesQueue(t *testing.T) {
	cfg := fastConfig()
	cfg.Toast.MaxVisible = 1
	c, _, _ := newTestCoordinator(t, cfg)

	notify(t, c, "a", model.PriorityHigh)
	notify(t, c, "x", model.PriorityLow)
	require.Equal(t, 1, c.QueuedCount())

	// The same id escalated to urgent takes the bypass path. The queued
	// copy must not survive to re-show and downgrade the visible toast.
	notify(t, c, "x", model.PriorityUrgent)

	assert.Contains(t, visibleIDs(c), "x")
	assert.Equal(t, 0, c.QueuedCount())
	for _, e := range c.VisibleToasts() {
		if e.ID == "x" {
			assert.Equal(t, model.PriorityUrgent, e.Priority)
		}
	}
}

func TestCoordinator_RegisterToast(t *testing.T) {
	c, reg, rec := newTestCoordinator(t, nil)

	ok := c.RegisterToast("banner", model.PriorityNormal, geometry.Size{Width: 420, Height: 120})
	require.True(t, ok)
	assert.Equal(t, []string{"banner"}, visibleIDs(c))

	assert.False(t, c.RegisterToast("", model.PriorityNormal, geometry.Size{Width: 10, Height: 10}))

	reg.Open(surface.Surface{
		Kind:   surface.KindDialog,
		Rect:   geometry.Rect{X: 600, Y: 300, Width: 720, Height: 480},
		ZIndex: 100,
	})
	require.Eventually(t, func() bool {
		return c.Stats().HighPriorityActive
	}, time.Second, 5*time.Millisecond)

	assert.False(t, c.RegisterToast("blocked", model.PriorityNormal, geometry.Size{Width: 420, Height: 120}))

	c.UnregisterToast("banner")
	reason, ok := rec.reason("banner")
	require.True(t, ok)
	assert.Equal(t, DismissManual, reason)
}

func TestCoordinator_AnimationDuration(t *testing.T) {
	cfg := fastConfig()
	cfg.Toast.AnimationDuration = config.Duration(250 * time.Millisecond)
	c, _, _ := newTestCoordinator(t, cfg)

	assert.Equal(t, 250*time.Millisecond, c.AnimationDuration())
}

func TestCoordinator_UnregisterUnknownIsNoop(t *testing.T) {
	c, _, rec := newTestCoordinator(t, nil)

	c.UnregisterToast("ghost")
	_, ok := rec.reason("ghost")
	assert.False(t, ok)
}

func TestCoordinator_RepositionAvoidsDialog(t *testing.T) {
	c, reg, _ := newTestCoordinator(t, nil)

	reg.SetViewport(geometry.Viewport{Width: 1920, Height: 1080})
	notify(t, c, "a", model.PriorityNormal)

	before := c.VisibleToasts()[0].Placement
	assert.Equal(t, geometry.CornerTopRight, before.Corner)

	// dialog covering the top-right corner pushes the toast elsewhere
	reg.Open(surface.Surface{
		Kind:   surface.KindDropdown,
		Rect:   geometry.Rect{X: 1400, Y: 0, Width: 520, Height: 400},
		ZIndex: 50,
	})

	require.Eventually(t, func() bool {
		entries := c.VisibleToasts()
		return len(entries) == 1 && entries[0].Placement.Corner != geometry.CornerTopRight
	}, time.Second, 5*time.Millisecond)
}
