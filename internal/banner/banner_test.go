package banner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakestephens/banner/internal/geometry"
	"github.com/jakestephens/banner/internal/orientation"
)

// fakeLoop is a virtual-clock scheduler: Post runs synchronously (the
// test goroutine is the loop) and advance fires due timers in deadline
// order, letting animations and countdowns interleave deterministically.
type fakeLoop struct {
	now    time.Duration
	seq    int
	timers []*fakeTimer
}

type fakeTimer struct {
	deadline time.Duration
	seq      int
	fn       func()
	canceled bool
}

func (l *fakeLoop) Post(fn func()) { fn() }

func (l *fakeLoop) After(d time.Duration, fn func()) func() {
	t := &fakeTimer{deadline: l.now + d, seq: l.seq, fn: fn}
	l.seq++
	l.timers = append(l.timers, t)
	return func() { t.canceled = true }
}

// advance moves virtual time forward, firing every due timer in order.
// Timers scheduled by fired timers run too when they land inside the
// window.
func (l *fakeLoop) advance(d time.Duration) {
	target := l.now + d
	for {
		idx := -1
		for i, t := range l.timers {
			if t.canceled || t.deadline > target {
				continue
			}
			if idx == -1 || t.deadline < l.timers[idx].deadline ||
				(t.deadline == l.timers[idx].deadline && t.seq < l.timers[idx].seq) {
				idx = i
			}
		}
		if idx == -1 {
			break
		}
		t := l.timers[idx]
		l.timers = append(l.timers[:idx], l.timers[idx+1:]...)
		l.now = t.deadline
		t.fn()
	}
	l.now = target
}

// fakeSurface records attach/detach/frame/chrome traffic.
type fakeSurface struct {
	traits   Traits
	attached []*Banner
	frames   map[*Banner]geometry.Rect
	chrome   []bool
}

func newFakeSurface(w, h float64) *fakeSurface {
	return &fakeSurface{
		traits: Traits{
			Size:        geometry.Size{Width: w, Height: h},
			Orientation: orientation.FromSize(w, h),
			Supported:   orientation.MaskAll,
		},
		frames: make(map[*Banner]geometry.Rect),
	}
}

func (s *fakeSurface) Traits() Traits { return s.traits }

func (s *fakeSurface) Attach(b *Banner) {
	if !s.isAttached(b) {
		s.attached = append(s.attached, b)
	}
}

func (s *fakeSurface) Detach(b *Banner) {
	for i, a := range s.attached {
		if a == b {
			s.attached = append(s.attached[:i], s.attached[i+1:]...)
			return
		}
	}
}

func (s *fakeSurface) SetFrame(b *Banner, r geometry.Rect) { s.frames[b] = r }

func (s *fakeSurface) SetChromeHidden(hidden bool) { s.chrome = append(s.chrome, hidden) }

func (s *fakeSurface) isAttached(b *Banner) bool {
	for _, a := range s.attached {
		if a == b {
			return true
		}
	}
	return false
}

func (s *fakeSurface) lastChrome() (bool, bool) {
	if len(s.chrome) == 0 {
		return false, false
	}
	return s.chrome[len(s.chrome)-1], true
}

// eventLog journals lifecycle events across banners for order assertions.
type eventLog struct {
	entries []string
}

func (l *eventLog) sink(name string) Events {
	return EventFuncs{
		OnWillAppear:    func(*Banner) { l.entries = append(l.entries, name+":will-appear") },
		OnDidAppear:     func(*Banner) { l.entries = append(l.entries, name+":did-appear") },
		OnWillDisappear: func(*Banner) { l.entries = append(l.entries, name+":will-disappear") },
		OnDidDisappear:  func(*Banner) { l.entries = append(l.entries, name+":did-disappear") },
	}
}

func testConfig() Config {
	return Config{
		Duration:                 5 * time.Second,
		AutoDismiss:              true,
		ShowAnimationDuration:    300 * time.Millisecond,
		DismissAnimationDuration: 300 * time.Millisecond,
		DismissOnTap:             true,
		DismissOnSwipeUp:         true,
	}
}

func newTestQueue() (*Queue, *fakeLoop, *fakeSurface) {
	loop := &fakeLoop{}
	surface := newFakeSurface(320, 640)
	q := NewQueue(loop, surface, nil)
	return q, loop, surface
}

// settle is long enough to finish any test animation without reaching an
// auto-dismiss countdown.
const settle = 400 * time.Millisecond

func assertExclusiveFlags(t *testing.T, banners ...*Banner) {
	t.Helper()
	displaying := 0
	for _, b := range banners {
		assert.False(t, b.IsDisplaying() && b.IsSuspended(),
			"banner is displaying and suspended at once")
		if b.IsDisplaying() {
			displaying++
		}
	}
	assert.LessOrEqual(t, displaying, 1, "more than one banner displaying")
}

func TestShowIntoEmptyQueueDisplaysDirectly(t *testing.T) {
	q, loop, surface := newTestQueue()
	b := New(q, testConfig())

	var sawSuspended bool
	b.SetEvents(EventFuncs{OnDidAppear: func(b *Banner) {
		if b.IsSuspended() {
			sawSuspended = true
		}
	}})

	b.Show(QueueBack, EdgeTop, nil)
	assert.Equal(t, StatePresenting, b.State())
	assert.True(t, surface.isAttached(b))

	loop.advance(settle)
	assert.Equal(t, StateDisplaying, b.State())
	assert.True(t, b.IsDisplaying())
	assert.False(t, sawSuspended)
	assert.Equal(t, 1, q.Len())
}

func TestAutoDismissAfterDuration(t *testing.T) {
	q, loop, surface := newTestQueue()
	b := New(q, testConfig())

	b.Show(QueueBack, EdgeTop, nil)
	loop.advance(settle)
	require.Equal(t, StateDisplaying, b.State())

	loop.advance(5 * time.Second)
	loop.advance(settle)

	assert.Equal(t, StateRemoved, b.State())
	assert.False(t, surface.isAttached(b))
	assert.Equal(t, 0, q.Len())

	hidden, ok := surface.lastChrome()
	require.True(t, ok)
	assert.False(t, hidden, "chrome not restored after queue drained")
}

func TestAutoDismissOffStaysUp(t *testing.T) {
	q, loop, _ := newTestQueue()
	cfg := testConfig()
	cfg.AutoDismiss = false
	b := New(q, cfg)

	b.Show(QueueBack, EdgeTop, nil)
	loop.advance(settle)
	require.Equal(t, StateDisplaying, b.State())

	loop.advance(time.Minute)
	assert.Equal(t, StateDisplaying, b.State())
}

func TestFrontPreemptionSuspendsAndRestartsFullCountdown(t *testing.T) {
	q, loop, surface := newTestQueue()
	a := New(q, testConfig())
	b := New(q, testConfig())

	a.Show(QueueBack, EdgeTop, nil)
	loop.advance(settle)
	require.True(t, a.IsDisplaying())

	// Two seconds into A's five-second countdown, B preempts.
	loop.advance(2 * time.Second)
	b.Show(QueueFront, EdgeTop, nil)

	assert.True(t, a.IsSuspended())
	assert.False(t, a.IsDisplaying())
	assert.False(t, surface.isAttached(a), "suspended banner stays hidden")
	assertExclusiveFlags(t, a, b)

	loop.advance(settle)
	assert.True(t, b.IsDisplaying())
	assertExclusiveFlags(t, a, b)

	// Advance exactly the exit animation so A resumes right at the edge of
	// the window, anchoring its fresh countdown at a known instant.
	b.Dismiss()
	loop.advance(300 * time.Millisecond)

	// A is back instantly at rest with a fresh countdown.
	assert.True(t, a.IsDisplaying())
	assert.True(t, surface.isAttached(a))
	assert.Equal(t, 1, q.Len())

	// 4.9s after resuming A must still be up: the countdown restarted in
	// full, it did not continue from the 3s that remained.
	loop.advance(4900 * time.Millisecond)
	assert.True(t, a.IsDisplaying())

	loop.advance(200 * time.Millisecond)
	loop.advance(settle)
	assert.Equal(t, StateRemoved, a.State())
}

func TestPreemptionDuringEntrancePresentsAgainFromScratch(t *testing.T) {
	q, loop, _ := newTestQueue()
	log := &eventLog{}
	a := New(q, testConfig())
	a.SetEvents(log.sink("a"))
	b := New(q, testConfig())

	a.Show(QueueBack, EdgeTop, nil)
	loop.advance(100 * time.Millisecond)
	require.Equal(t, StatePresenting, a.State())

	b.Show(QueueFront, EdgeTop, nil)
	assert.True(t, a.IsSuspended())

	loop.advance(settle)
	b.Dismiss()
	loop.advance(time.Second)

	// A never finished appearing, so it presents from scratch.
	assert.Equal(t, StateDisplaying, a.State())
	assert.Equal(t, []string{"a:will-appear", "a:will-appear", "a:did-appear"}, log.entries)
}

func TestEventOrderAcrossFullLifecycle(t *testing.T) {
	q, loop, _ := newTestQueue()
	log := &eventLog{}
	b := New(q, testConfig())
	b.SetEvents(log.sink("b"))

	b.Show(QueueBack, EdgeTop, nil)
	loop.advance(settle)
	b.Dismiss()
	loop.advance(settle)

	assert.Equal(t, []string{
		"b:will-appear",
		"b:did-appear",
		"b:will-disappear",
		"b:did-disappear",
	}, log.entries)
}

func TestQueueAdvancesStrictlyAfterDidDisappear(t *testing.T) {
	q, loop, _ := newTestQueue()
	log := &eventLog{}
	a := New(q, testConfig())
	a.SetEvents(log.sink("a"))
	b := New(q, testConfig())
	b.SetEvents(log.sink("b"))

	a.Show(QueueBack, EdgeTop, nil)
	loop.advance(settle)
	b.Show(QueueBack, EdgeTop, nil)
	require.Equal(t, StateQueued, b.State())

	a.Dismiss()
	loop.advance(time.Second)

	assert.Equal(t, []string{
		"a:will-appear",
		"a:did-appear",
		"a:will-disappear",
		"a:did-disappear",
		"b:will-appear",
		"b:did-appear",
	}, log.entries)
}

func TestSetAutoDismissFalseForcesGestureFlagsOff(t *testing.T) {
	q, _, _ := newTestQueue()
	b := New(q, testConfig())
	require.True(t, b.DismissOnTap())
	require.True(t, b.DismissOnSwipeUp())

	b.SetAutoDismiss(false)
	assert.False(t, b.DismissOnTap())
	assert.False(t, b.DismissOnSwipeUp())
}

func TestNewWithAutoDismissFalseForcesGestureFlagsOff(t *testing.T) {
	q, _, _ := newTestQueue()
	cfg := testConfig()
	cfg.AutoDismiss = false
	b := New(q, cfg)

	assert.False(t, b.DismissOnTap())
	assert.False(t, b.DismissOnSwipeUp())
}

func TestTapWithDismissDisabledInvokesCallbackOnly(t *testing.T) {
	q, loop, _ := newTestQueue()
	b := New(q, testConfig())
	b.SetDismissOnTap(false)

	tapped := 0
	b.SetOnTap(func(*Banner) { tapped++ })

	b.Show(QueueBack, EdgeTop, nil)
	loop.advance(settle)
	require.True(t, b.IsDisplaying())

	b.HandleTap()
	assert.Equal(t, 1, tapped)
	assert.True(t, b.IsDisplaying(), "banner must stay up when tap dismissal is off")
}

func TestTapDismissesAndStillInvokesCallback(t *testing.T) {
	q, loop, _ := newTestQueue()
	b := New(q, testConfig())

	tapped := 0
	b.SetOnTap(func(*Banner) { tapped++ })

	b.Show(QueueBack, EdgeTop, nil)
	loop.advance(settle)

	b.HandleTap()
	assert.Equal(t, 1, tapped)
	assert.Equal(t, StateDismissing, b.State())

	loop.advance(settle)
	assert.Equal(t, StateRemoved, b.State())
}

func TestSwipeUpMirrorsTapContract(t *testing.T) {
	q, loop, _ := newTestQueue()
	b := New(q, testConfig())
	b.SetDismissOnSwipeUp(false)

	swiped := 0
	b.SetOnSwipeUp(func(*Banner) { swiped++ })

	b.Show(QueueBack, EdgeTop, nil)
	loop.advance(settle)

	b.HandleSwipeUp()
	assert.Equal(t, 1, swiped)
	assert.True(t, b.IsDisplaying())

	b.SetDismissOnSwipeUp(true)
	b.HandleSwipeUp()
	assert.Equal(t, 2, swiped)
	assert.Equal(t, StateDismissing, b.State())
}

func TestGesturesIgnoredUnlessDisplaying(t *testing.T) {
	q, loop, _ := newTestQueue()
	a := New(q, testConfig())
	b := New(q, testConfig())

	tapped := 0
	a.SetOnTap(func(*Banner) { tapped++ })

	a.Show(QueueBack, EdgeTop, nil)
	a.HandleTap() // still presenting
	assert.Zero(t, tapped)

	loop.advance(settle)
	b.Show(QueueFront, EdgeTop, nil)
	require.True(t, a.IsSuspended())

	a.HandleTap() // suspended
	assert.Zero(t, tapped)
}

func TestDismissBeforeShowIsNoop(t *testing.T) {
	q, _, _ := newTestQueue()
	b := New(q, testConfig())

	b.Dismiss()
	assert.Equal(t, StateIdle, b.State())
	assert.Equal(t, 0, q.Len())
}

func TestDismissIsIdempotentWhileDismissing(t *testing.T) {
	q, loop, _ := newTestQueue()
	log := &eventLog{}
	b := New(q, testConfig())
	b.SetEvents(log.sink("b"))

	b.Show(QueueBack, EdgeTop, nil)
	loop.advance(settle)

	b.Dismiss()
	b.Dismiss()
	b.Dismiss()
	loop.advance(settle)

	assert.Equal(t, []string{
		"b:will-appear", "b:did-appear",
		"b:will-disappear", "b:did-disappear",
	}, log.entries)
}

func TestSecondShowWithConflictingEdgeKeepsOriginalGeometry(t *testing.T) {
	q, loop, _ := newTestQueue()
	b := New(q, testConfig())

	b.Show(QueueBack, EdgeTop, nil)
	loop.advance(settle)
	b.Dismiss()
	loop.advance(settle)
	require.Equal(t, StateRemoved, b.State())

	b.Show(QueueBack, EdgeBottom, nil)
	assert.Equal(t, EdgeTop, b.Edge(), "frame edge is fixed by the first Show")

	loop.advance(settle)
	assert.Equal(t, 0.0, b.Frame().End().Y)
}

func TestShowWhileActiveIsIgnored(t *testing.T) {
	q, loop, _ := newTestQueue()
	b := New(q, testConfig())

	b.Show(QueueBack, EdgeTop, nil)
	loop.advance(settle)
	b.Show(QueueBack, EdgeTop, nil)
	b.Show(QueueFront, EdgeTop, nil)

	assert.Equal(t, 1, q.Len())
	assert.True(t, b.IsDisplaying())
}

func TestDismissSuspendedBannerLeavesFrontAlone(t *testing.T) {
	q, loop, surface := newTestQueue()
	log := &eventLog{}
	a := New(q, testConfig())
	a.SetEvents(log.sink("a"))
	b := New(q, testConfig())

	a.Show(QueueBack, EdgeTop, nil)
	loop.advance(settle)
	b.Show(QueueFront, EdgeTop, nil)
	loop.advance(settle)
	require.True(t, a.IsSuspended())
	require.True(t, b.IsDisplaying())

	a.Dismiss()
	assert.Equal(t, StateRemoved, a.State())
	assert.Equal(t, 1, q.Len())
	assert.True(t, b.IsDisplaying(), "dismissal of a suspended banner must not advance the queue")
	assert.Equal(t, []string{
		"a:will-appear", "a:did-appear",
		"a:will-disappear", "a:did-disappear",
	}, log.entries)

	b.Dismiss()
	loop.advance(settle)
	assert.Equal(t, 0, q.Len())
	hidden, ok := surface.lastChrome()
	require.True(t, ok)
	assert.False(t, hidden)
}

func TestDismissQueuedBannerIsSilent(t *testing.T) {
	q, loop, _ := newTestQueue()
	log := &eventLog{}
	a := New(q, testConfig())
	b := New(q, testConfig())
	b.SetEvents(log.sink("b"))

	a.Show(QueueBack, EdgeTop, nil)
	loop.advance(settle)
	b.Show(QueueBack, EdgeTop, nil)
	require.Equal(t, StateQueued, b.State())

	b.Dismiss()
	assert.Equal(t, StateRemoved, b.State())
	assert.Empty(t, log.entries, "a banner that never appeared fires no disappear events")
	assert.Equal(t, 1, q.Len())
}

func TestZeroAnimationDurationsSkipAnimation(t *testing.T) {
	q, _, _ := newTestQueue()
	cfg := testConfig()
	cfg.ShowAnimationDuration = 0
	cfg.DismissAnimationDuration = 0
	b := New(q, cfg)

	b.Show(QueueBack, EdgeTop, nil)
	assert.True(t, b.IsDisplaying(), "zero show duration lands immediately")

	b.Dismiss()
	assert.Equal(t, StateRemoved, b.State())
}

func TestCustomSurfaceOverridesRoot(t *testing.T) {
	q, loop, root := newTestQueue()
	custom := newFakeSurface(200, 400)
	b := New(q, testConfig())

	b.Show(QueueBack, EdgeTop, custom)
	loop.advance(settle)

	assert.True(t, custom.isAttached(b))
	assert.False(t, root.isAttached(b))
	assert.Equal(t, 200.0, b.Frame().End().Width)
}

func TestHeightPolicy(t *testing.T) {
	t.Run("notched portrait root surface", func(t *testing.T) {
		loop := &fakeLoop{}
		surface := newFakeSurface(320, 640)
		surface.traits.Notched = true
		q := NewQueue(loop, surface, nil)

		b := New(q, testConfig())
		b.Show(QueueBack, EdgeTop, nil)

		assert.Equal(t, 88.0, b.Height())
		assert.Equal(t, 40.0, b.SpacerHeight())
	})

	t.Run("notched but custom surface", func(t *testing.T) {
		q, _, _ := newTestQueue()
		custom := newFakeSurface(320, 640)
		custom.traits.Notched = true

		b := New(q, testConfig())
		b.Show(QueueBack, EdgeTop, custom)

		assert.Equal(t, 64.0, b.Height())
		assert.Equal(t, 10.0, b.SpacerHeight())
	})

	t.Run("notched landscape", func(t *testing.T) {
		loop := &fakeLoop{}
		surface := newFakeSurface(640, 320)
		surface.traits.Notched = true
		q := NewQueue(loop, surface, nil)

		b := New(q, testConfig())
		b.Show(QueueBack, EdgeTop, nil)

		assert.Equal(t, 64.0, b.Height())
		assert.Equal(t, 10.0, b.SpacerHeight())
	})

	t.Run("plain surface", func(t *testing.T) {
		q, _, _ := newTestQueue()
		b := New(q, testConfig())
		b.Show(QueueBack, EdgeTop, nil)

		assert.Equal(t, 64.0, b.Height())
		assert.Equal(t, 10.0, b.SpacerHeight())
	})
}

func TestOrientationChangeRecomputesWidthOnly(t *testing.T) {
	q, loop, surface := newTestQueue()
	feed := orientation.NewFeed()
	b := New(q, testConfig())

	b.Show(QueueBack, EdgeTop, nil)
	loop.advance(settle)
	require.True(t, b.IsDisplaying())

	b.StartOrientationUpdates(feed)
	defer b.StopOrientationUpdates()

	heightBefore := b.Height()

	// The host rotates: new bounds, then the broadcast.
	surface.traits.Size = geometry.Size{Width: 640, Height: 320}
	surface.traits.Orientation = orientation.LandscapeLeft
	feed.Publish(orientation.LandscapeLeft)

	// Nothing moves until the debounce elapses.
	assert.Equal(t, 320.0, b.Frame().End().Width)

	loop.advance(orientationDebounce + time.Millisecond)
	assert.Equal(t, 640.0, b.Frame().Start().Width)
	assert.Equal(t, 640.0, b.Frame().End().Width)
	assert.Equal(t, heightBefore, b.Height())
	assert.Equal(t, 640.0, surface.frames[b].Width)
}

func TestOrientationChangeWithoutSupportInfoIsNoop(t *testing.T) {
	q, loop, surface := newTestQueue()
	surface.traits.Supported = 0
	feed := orientation.NewFeed()
	b := New(q, testConfig())

	b.Show(QueueBack, EdgeTop, nil)
	loop.advance(settle)

	b.StartOrientationUpdates(feed)
	defer b.StopOrientationUpdates()

	surface.traits.Size = geometry.Size{Width: 640, Height: 320}
	feed.Publish(orientation.LandscapeLeft)
	loop.advance(time.Second)

	assert.Equal(t, 320.0, b.Frame().End().Width, "no supported-orientation info means no geometry change")
}

func TestOrientationChangeToUnsupportedOrientationIsNoop(t *testing.T) {
	q, loop, surface := newTestQueue()
	surface.traits.Supported = orientation.MaskPortrait
	feed := orientation.NewFeed()
	b := New(q, testConfig())

	b.Show(QueueBack, EdgeTop, nil)
	loop.advance(settle)

	b.StartOrientationUpdates(feed)
	defer b.StopOrientationUpdates()

	surface.traits.Size = geometry.Size{Width: 640, Height: 320}
	feed.Publish(orientation.LandscapeRight)
	loop.advance(time.Second)

	assert.Equal(t, 320.0, b.Frame().End().Width)
}

func TestStopOrientationUpdatesDropsPendingDebounce(t *testing.T) {
	q, loop, surface := newTestQueue()
	feed := orientation.NewFeed()
	b := New(q, testConfig())

	b.Show(QueueBack, EdgeTop, nil)
	loop.advance(settle)

	b.StartOrientationUpdates(feed)
	surface.traits.Size = geometry.Size{Width: 640, Height: 320}
	feed.Publish(orientation.LandscapeLeft)
	b.StopOrientationUpdates()

	loop.advance(time.Second)
	assert.Equal(t, 320.0, b.Frame().End().Width)
}
