package banner

import (
	"log/slog"
	"time"

	"github.com/jakestephens/banner/internal/anim"
	"github.com/jakestephens/banner/internal/geometry"
	"github.com/jakestephens/banner/internal/orientation"
)

// Config carries a banner's presentation settings. Zero values are taken
// literally; start from DefaultConfig for stock behavior.
type Config struct {
	Duration                 time.Duration
	AutoDismiss              bool
	ShowAnimationDuration    time.Duration
	DismissAnimationDuration time.Duration
	DismissOnTap             bool
	DismissOnSwipeUp         bool
	Haptic                   Haptic
}

// DefaultConfig returns the stock banner settings: five seconds on
// screen, auto-dismissing, dismissable by tap and swipe.
func DefaultConfig() Config {
	return Config{
		Duration:                 5 * time.Second,
		AutoDismiss:              true,
		ShowAnimationDuration:    500 * time.Millisecond,
		DismissAnimationDuration: 350 * time.Millisecond,
		DismissOnTap:             true,
		DismissOnSwipeUp:         true,
		Haptic:                   HapticLight,
	}
}

// orientationDebounce delays width recomputation after an orientation
// change so the host settles its own geometry first.
const orientationDebounce = 100 * time.Millisecond

// Banner is one queued presentation. Identity is the pointer; there is no
// value equality. Not safe for concurrent use: every method runs on the
// queue's presentation loop.
type Banner struct {
	queue  *Queue
	logger *slog.Logger

	cfg     Config
	content Content
	events  Events

	onTap     func(*Banner)
	onSwipeUp func(*Banner)

	state    State
	appeared bool
	frame    *PositionFrame
	surface  Surface
	custom   bool
	spacer   float64
	current  geometry.Rect

	animation     *anim.Animation
	cancelDismiss func()

	orientationCancel func()
	debounceCancel    func()
}

// New creates a banner bound to its coordinating queue. An autoDismiss=false
// config has its tap/swipe dismissal flags forced off, matching the
// lifecycle invariant.
func New(q *Queue, cfg Config) *Banner {
	if !cfg.AutoDismiss {
		cfg.DismissOnTap = false
		cfg.DismissOnSwipeUp = false
	}
	return &Banner{
		queue:  q,
		logger: q.logger,
		cfg:    cfg,
		events: nopEvents{},
		state:  StateIdle,
	}
}

// SetDuration sets the on-screen time before auto-dismissal.
func (b *Banner) SetDuration(d time.Duration) { b.cfg.Duration = d }

// SetShowAnimationDuration sets the entrance animation length.
func (b *Banner) SetShowAnimationDuration(d time.Duration) { b.cfg.ShowAnimationDuration = d }

// SetDismissAnimationDuration sets the exit animation length.
func (b *Banner) SetDismissAnimationDuration(d time.Duration) { b.cfg.DismissAnimationDuration = d }

// SetAutoDismiss toggles the countdown. Turning it off also forces
// DismissOnTap and DismissOnSwipeUp off, once, on the transition.
func (b *Banner) SetAutoDismiss(auto bool) {
	b.cfg.AutoDismiss = auto
	if !auto {
		b.cfg.DismissOnTap = false
		b.cfg.DismissOnSwipeUp = false
	}
}

// SetDismissOnTap controls whether a tap retires the banner.
func (b *Banner) SetDismissOnTap(v bool) { b.cfg.DismissOnTap = v }

// SetDismissOnSwipeUp controls whether an upward swipe retires the banner.
func (b *Banner) SetDismissOnSwipeUp(v bool) { b.cfg.DismissOnSwipeUp = v }

// SetHaptic selects the feedback level fired at entrance start.
func (b *Banner) SetHaptic(h Haptic) { b.cfg.Haptic = h }

// SetOnTap registers a callback invoked on every tap while displaying,
// whether or not the tap dismisses.
func (b *Banner) SetOnTap(fn func(*Banner)) { b.onTap = fn }

// SetOnSwipeUp registers a callback invoked on every upward swipe while
// displaying, whether or not the swipe dismisses.
func (b *Banner) SetOnSwipeUp(fn func(*Banner)) { b.onSwipeUp = fn }

// SetContent sets what the surface renders for this banner.
func (b *Banner) SetContent(c Content) { b.content = c }

// SetEvents installs the lifecycle event sink. Nil restores the no-op sink.
func (b *Banner) SetEvents(e Events) {
	if e == nil {
		e = nopEvents{}
	}
	b.events = e
}

// State returns the lifecycle state.
func (b *Banner) State() State { return b.state }

// IsDisplaying reports whether the banner is at rest on the surface.
// Never true together with IsSuspended.
func (b *Banner) IsDisplaying() bool { return b.state == StateDisplaying }

// IsSuspended reports whether a front insertion preempted the banner.
func (b *Banner) IsSuspended() bool { return b.state == StateSuspended }

// Content returns the banner's content.
func (b *Banner) Content() Content { return b.content }

// AutoDismiss reports whether the countdown is armed.
func (b *Banner) AutoDismiss() bool { return b.cfg.AutoDismiss }

// DismissOnTap reports whether a tap retires the banner.
func (b *Banner) DismissOnTap() bool { return b.cfg.DismissOnTap }

// DismissOnSwipeUp reports whether an upward swipe retires the banner.
func (b *Banner) DismissOnSwipeUp() bool { return b.cfg.DismissOnSwipeUp }

// Duration returns the configured on-screen time.
func (b *Banner) Duration() time.Duration { return b.cfg.Duration }

// Edge returns the surface edge the banner is bound to, or "" before the
// first Show fixes it.
func (b *Banner) Edge() Edge {
	if b.frame == nil {
		return ""
	}
	return b.frame.Edge()
}

// Height returns the banner height derived at the first Show, 0 before.
func (b *Banner) Height() float64 {
	if b.frame == nil {
		return 0
	}
	return b.frame.Height()
}

// SpacerHeight returns the overshoot inset derived at the first Show.
func (b *Banner) SpacerHeight() float64 { return b.spacer }

// Surface returns the host the banner presents onto, nil before Show.
func (b *Banner) Surface() Surface { return b.surface }

// Frame returns the banner's position frame, nil before the first Show.
func (b *Banner) Frame() *PositionFrame { return b.frame }

// CurrentRect returns the rectangle the banner occupies right now.
func (b *Banner) CurrentRect() geometry.Rect { return b.current }

// Show enqueues the banner for presentation. pos selects front or back;
// edge picks the surface edge, binding the frame permanently on the first
// call (a different edge on a later Show is ignored); a nil surface means
// the queue's root. Show does nothing unless the banner is Idle or
// Removed.
func (b *Banner) Show(pos QueuePosition, edge Edge, surface Surface) {
	if b.queue == nil {
		return
	}
	if b.state != StateIdle && b.state != StateRemoved {
		return
	}

	if surface == nil {
		surface = b.queue.root
		b.custom = false
	} else {
		b.custom = surface != b.queue.root
	}
	if surface == nil {
		return
	}
	b.surface = surface

	if b.frame == nil {
		if !edge.Valid() {
			edge = EdgeTop
		}
		traits := surface.Traits()
		b.frame = NewPositionFrame(edge, traits.Size.Width, heightFor(traits, b.custom), traits.Size.Height)
		b.spacer = spacerFor(traits, b.custom)
	}

	b.appeared = false
	b.state = StateQueued
	b.logger.Debug("banner queued", "edge", string(b.frame.Edge()), "position", pos.String())
	b.queue.Enqueue(b, pos)
}

// Dismiss retires the banner. Displaying and presenting banners animate
// out and advance the queue; queued and suspended ones are removed in
// place. A never-shown or already-retiring banner is a no-op.
func (b *Banner) Dismiss() {
	if b.frame == nil {
		return
	}

	switch b.state {
	case StateQueued:
		b.queue.Remove(b)
		b.state = StateRemoved
	case StateSuspended:
		b.queue.Remove(b)
		if b.appeared {
			b.events.WillDisappear(b)
			b.events.DidDisappear(b)
		}
		b.state = StateRemoved
	case StatePresenting, StateDisplaying:
		b.beginDismiss()
	}
}

// HandleTap reacts to a user tap while displaying: dismisses when
// configured to, then invokes the tap callback regardless so callers can
// observe interaction without forcing dismissal.
func (b *Banner) HandleTap() {
	if b.state != StateDisplaying {
		return
	}
	if b.cfg.DismissOnTap {
		b.Dismiss()
	}
	if b.onTap != nil {
		b.onTap(b)
	}
}

// HandleSwipeUp reacts to an upward swipe while displaying, mirroring
// HandleTap's dismissal and callback contract.
func (b *Banner) HandleSwipeUp() {
	if b.state != StateDisplaying {
		return
	}
	if b.cfg.DismissOnSwipeUp {
		b.Dismiss()
	}
	if b.onSwipeUp != nil {
		b.onSwipeUp(b)
	}
}

// StartOrientationUpdates subscribes the banner to an orientation feed.
// The matching StopOrientationUpdates belongs to whoever manages the
// banner's presentation lifetime; subscriptions are never implicit.
func (b *Banner) StartOrientationUpdates(feed *orientation.Feed) {
	b.StopOrientationUpdates()
	if feed == nil {
		return
	}
	b.orientationCancel = feed.Subscribe(func(o orientation.Orientation) {
		b.queue.sched.Post(func() { b.orientationChanged(o) })
	})
}

// StopOrientationUpdates unsubscribes and drops any pending debounce.
func (b *Banner) StopOrientationUpdates() {
	if b.orientationCancel != nil {
		b.orientationCancel()
		b.orientationCancel = nil
	}
	b.cancelDebounce()
}

// orientationChanged debounces a width refresh. Changes to orientations
// the surface does not declare as supported are no-ops, as are changes on
// surfaces that declare nothing.
func (b *Banner) orientationChanged(o orientation.Orientation) {
	if b.frame == nil || b.surface == nil {
		return
	}
	supported := b.surface.Traits().Supported
	if supported.IsZero() || !supported.Contains(o) {
		return
	}
	b.cancelDebounce()
	b.debounceCancel = b.queue.sched.After(orientationDebounce, b.refreshWidth)
}

// refreshWidth recomputes width-only geometry from the surface's current
// size. Only a displaying banner is re-placed immediately; anything
// mid-animation picks the new width up at its next full placement.
func (b *Banner) refreshWidth() {
	b.debounceCancel = nil
	if b.frame == nil || b.surface == nil {
		return
	}
	b.frame.UpdateWidth(b.surface.Traits().Size.Width)

	if b.state == StateDisplaying {
		b.current = b.frame.End()
		b.surface.SetFrame(b, b.current)
	}
}

// present attaches the banner and runs its entrance. Queue-invoked when
// the banner becomes the active entry.
func (b *Banner) present() {
	if b.state != StateQueued && b.state != StateSuspended {
		return
	}
	if b.frame == nil || b.surface == nil {
		return
	}

	b.state = StatePresenting
	b.current = b.frame.Start()

	b.surface.Attach(b)
	b.surface.SetFrame(b, b.current)
	b.surface.SetChromeHidden(true)

	if b.queue.feedback != nil && b.cfg.Haptic != HapticNone {
		b.queue.feedback.Impact(b.cfg.Haptic)
	}

	b.events.WillAppear(b)
	b.animation = anim.Start(b.queue.sched, b.frame.Start(), b.frame.End(),
		b.cfg.ShowAnimationDuration, anim.EaseOutBack,
		func(r geometry.Rect) {
			b.current = r
			b.surface.SetFrame(b, r)
		},
		b.didPresent,
	)
}

// didPresent completes the entrance: the banner is displaying, gestures
// arm, and the countdown starts.
func (b *Banner) didPresent() {
	b.animation = nil
	b.state = StateDisplaying
	b.appeared = true
	b.events.DidAppear(b)
	b.logger.Debug("banner displayed", "edge", string(b.frame.Edge()))
	b.scheduleAutoDismiss()
}

// suspend detaches a preempted banner and cancels its countdown and any
// in-flight entrance. Queue-invoked before a front insertion displaces it.
func (b *Banner) suspend() {
	if b.state != StatePresenting && b.state != StateDisplaying {
		return
	}
	b.cancelAutoDismiss()
	b.cancelAnimation()
	b.surface.Detach(b)
	b.state = StateSuspended
	b.logger.Debug("banner suspended")
}

// resume puts a suspended banner back on the surface. One that never
// finished appearing presents from scratch; one that had appeared
// re-attaches at rest instantly and restarts a full-duration countdown.
func (b *Banner) resume() {
	if b.state != StateSuspended {
		return
	}
	if !b.appeared {
		b.present()
		return
	}

	b.state = StateDisplaying
	b.current = b.frame.End()
	b.surface.Attach(b)
	b.surface.SetFrame(b, b.current)
	b.surface.SetChromeHidden(true)
	b.logger.Debug("banner resumed")
	b.scheduleAutoDismiss()
}

// beginDismiss starts the exit animation from wherever the banner is.
func (b *Banner) beginDismiss() {
	b.cancelAutoDismiss()
	b.cancelAnimation()
	b.cancelDebounce()

	b.state = StateDismissing
	b.events.WillDisappear(b)
	b.animation = anim.Start(b.queue.sched, b.current, b.frame.Start(),
		b.cfg.DismissAnimationDuration, anim.EaseInCubic,
		func(r geometry.Rect) {
			b.current = r
			b.surface.SetFrame(b, r)
		},
		b.didDismiss,
	)
}

// didDismiss completes the exit: detach, report, then let the queue move
// on. Advancement happens strictly after DidDisappear. Default chrome
// comes back only when the queue drains.
func (b *Banner) didDismiss() {
	b.animation = nil
	b.surface.Detach(b)
	b.state = StateRemoved
	b.events.DidDisappear(b)
	b.logger.Debug("banner dismissed")

	surface := b.surface
	if b.queue.Front() == b {
		b.queue.Advance(func(empty bool) {
			if empty {
				surface.SetChromeHidden(false)
			}
		})
	} else {
		b.queue.Remove(b)
	}
}

// scheduleAutoDismiss arms a fresh full-duration countdown, replacing any
// previous token.
func (b *Banner) scheduleAutoDismiss() {
	b.cancelAutoDismiss()
	if !b.cfg.AutoDismiss {
		return
	}
	b.cancelDismiss = b.queue.sched.After(b.cfg.Duration, func() {
		b.cancelDismiss = nil
		b.Dismiss()
	})
}

func (b *Banner) cancelAutoDismiss() {
	if b.cancelDismiss != nil {
		b.cancelDismiss()
		b.cancelDismiss = nil
	}
}

func (b *Banner) cancelAnimation() {
	if b.animation != nil {
		b.animation.Cancel()
		b.animation = nil
	}
}

func (b *Banner) cancelDebounce() {
	if b.debounceCancel != nil {
		b.debounceCancel()
		b.debounceCancel = nil
	}
}
