package anim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakestephens/banner/internal/geometry"
)

// manualScheduler collects deferred calls and fires them on demand.
type manualScheduler struct {
	pending []*manualTimer
}

type manualTimer struct {
	fn       func()
	canceled bool
}

func (s *manualScheduler) After(d time.Duration, fn func()) func() {
	t := &manualTimer{fn: fn}
	s.pending = append(s.pending, t)
	return func() { t.canceled = true }
}

// fire runs the oldest live timer. Returns false when nothing is pending.
func (s *manualScheduler) fire() bool {
	for len(s.pending) > 0 {
		t := s.pending[0]
		s.pending = s.pending[1:]
		if t.canceled {
			continue
		}
		t.fn()
		return true
	}
	return false
}

// drain fires timers until none remain.
func (s *manualScheduler) drain() int {
	n := 0
	for s.fire() {
		n++
	}
	return n
}

func TestZeroDurationJumpsToTarget(t *testing.T) {
	s := &manualScheduler{}
	from := geometry.NewRect(0, -64, 320, 64)
	to := geometry.NewRect(0, 0, 320, 64)

	var frames []geometry.Rect
	doneCalled := false
	a := Start(s, from, to, 0, Linear, func(r geometry.Rect) { frames = append(frames, r) }, func() { doneCalled = true })

	require.Len(t, frames, 1)
	assert.Equal(t, to, frames[0])
	assert.True(t, doneCalled)
	assert.False(t, a.Running())
	assert.Empty(t, s.pending)
}

func TestStepsEndExactlyOnTarget(t *testing.T) {
	s := &manualScheduler{}
	from := geometry.NewRect(0, -64, 320, 64)
	to := geometry.NewRect(0, 0, 320, 64)

	var frames []geometry.Rect
	doneCalled := false
	Start(s, from, to, 300*time.Millisecond, EaseOutCubic, func(r geometry.Rect) { frames = append(frames, r) }, func() { doneCalled = true })

	s.drain()

	require.NotEmpty(t, frames)
	assert.Equal(t, to, frames[len(frames)-1])
	assert.True(t, doneCalled)
}

func TestFramesMoveMonotonicallyForLinear(t *testing.T) {
	s := &manualScheduler{}
	from := geometry.NewRect(0, -64, 320, 64)
	to := geometry.NewRect(0, 0, 320, 64)

	var frames []geometry.Rect
	Start(s, from, to, 200*time.Millisecond, Linear, func(r geometry.Rect) { frames = append(frames, r) }, nil)
	s.drain()

	prev := from.Y
	for _, f := range frames {
		assert.GreaterOrEqual(t, f.Y, prev)
		prev = f.Y
	}
}

func TestCancelStopsFramesAndSuppressesDone(t *testing.T) {
	s := &manualScheduler{}
	from := geometry.NewRect(0, -64, 320, 64)
	to := geometry.NewRect(0, 0, 320, 64)

	frameCount := 0
	doneCalled := false
	a := Start(s, from, to, 500*time.Millisecond, Linear, func(geometry.Rect) { frameCount++ }, func() { doneCalled = true })

	s.fire()
	s.fire()
	countAtCancel := frameCount
	a.Cancel()
	s.drain()

	assert.Equal(t, countAtCancel, frameCount)
	assert.False(t, doneCalled)
	assert.False(t, a.Running())
}

func TestEasingEndpoints(t *testing.T) {
	for name, ease := range map[string]EasingFunc{
		"linear":        Linear,
		"easeInCubic":   EaseInCubic,
		"easeOutCubic":  EaseOutCubic,
		"easeInOutQuad": EaseInOutQuad,
		"easeOutBack":   EaseOutBack,
	} {
		t.Run(name, func(t *testing.T) {
			assert.InDelta(t, 0.0, ease(0), 1e-9)
			assert.InDelta(t, 1.0, ease(1), 1e-9)
		})
	}
}

func TestEaseOutBackOvershoots(t *testing.T) {
	peak := 0.0
	for i := 1; i < 100; i++ {
		v := EaseOutBack(float64(i) / 100)
		if v > peak {
			peak = v
		}
	}
	assert.Greater(t, peak, 1.0)
}
