package timing

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/ludolib/notica/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastConfig keeps timer tests quick.
func fastConfig() Config {
	return Config{
		Low:            40 * time.Millisecond,
		Normal:         20 * time.Millisecond,
		High:           10 * time.Millisecond,
		ActivityWindow: 50 * time.Millisecond,
		Extension:      10 * time.Millisecond,
	}
}

func TestManager_BaseDuration(t *testing.T) {
	m := NewManager(DefaultConfig(), nil, nil)

	assert.Greater(t, m.BaseDuration(model.PriorityLow), m.BaseDuration(model.PriorityNormal))
	assert.Greater(t, m.BaseDuration(model.PriorityNormal), m.BaseDuration(model.PriorityHigh))
	assert.Equal(t, time.Duration(0), m.BaseDuration(model.PriorityUrgent))
}

func TestManager_ScheduleFiresOnce(t *testing.T) {
	m := NewManager(fastConfig(), nil, nil)
	defer m.Stop()

	var fired atomic.Int32
	m.ScheduleAutoDismiss("a", model.PriorityHigh, func() { fired.Add(1) })

	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
	assert.Equal(t, 0, m.Pending())
}

func TestManager_UrgentNeverScheduled(t *testing.T) {
	m := NewManager(fastConfig(), nil, nil)
	defer m.Stop()

	m.ScheduleAutoDismiss("urgent", model.PriorityUrgent, func() {
		t.Error("urgent notification must never auto-dismiss")
	})

	assert.Equal(t, 0, m.Pending())
	time.Sleep(60 * time.Millisecond)
}

func TestManager_CancelPreventsDismiss(t *testing.T) {
	m := NewManager(fastConfig(), nil, nil)
	defer m.Stop()

	m.ScheduleAutoDismiss("a", model.PriorityNormal, func() {
		t.Error("dismiss fired after cancel")
	})
	m.CancelAutoDismiss("a")

	assert.Equal(t, 0, m.Pending())
	time.Sleep(50 * time.Millisecond)
}

func TestManager_CancelIsIdempotent(t *testing.T) {
	m := NewManager(fastConfig(), nil, nil)

	// Cancel without schedule is a no-op, twice in a row too
	m.CancelAutoDismiss("ghost")
	m.CancelAutoDismiss("ghost")
	assert.Equal(t, 0, m.Pending())
}

func TestManager_RescheduleReplacesTimer(t *testing.T) {
	m := NewManager(fastConfig(), nil, nil)
	defer m.Stop()

	var first, second atomic.Int32
	m.ScheduleAutoDismiss("a", model.PriorityNormal, func() { first.Add(1) })
	m.ScheduleAutoDismiss("a", model.PriorityNormal, func() { second.Add(1) })

	require.Eventually(t, func() bool { return second.Load() == 1 }, time.Second, time.Millisecond)
	// The replaced timer must not fire a duplicate callback
	assert.Equal(t, int32(0), first.Load())
	assert.Equal(t, 0, m.Pending())
}

func TestManager_ActivityExtends(t *testing.T) {
	m := NewManager(fastConfig(), nil, nil)
	defer m.Stop()

	var fired atomic.Int32
	m.RecordActivity()
	m.ScheduleAutoDismiss("a", model.PriorityHigh, func() { fired.Add(1) })

	// Due at 10ms but activity window is 50ms: still pending at 30ms
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())

	// Once the window lapses the extension chain resolves
	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, time.Millisecond)
}

func TestManager_InterferenceExtends(t *testing.T) {
	var blocked atomic.Bool
	blocked.Store(true)

	m := NewManager(fastConfig(), blocked.Load, nil)
	defer m.Stop()

	var fired atomic.Int32
	m.ScheduleAutoDismiss("a", model.PriorityHigh, func() { fired.Add(1) })

	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load(), "must not dismiss while a blocking surface is open")

	blocked.Store(false)
	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, time.Millisecond)
}

func TestManager_Stop(t *testing.T) {
	m := NewManager(fastConfig(), nil, nil)

	m.ScheduleAutoDismiss("a", model.PriorityLow, func() { t.Error("fired after stop") })
	m.ScheduleAutoDismiss("b", model.PriorityLow, func() { t.Error("fired after stop") })
	assert.Equal(t, 2, m.Pending())

	m.Stop()
	assert.Equal(t, 0, m.Pending())
	time.Sleep(60 * time.Millisecond)
}
