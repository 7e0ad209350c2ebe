// Package anim drives banner frame animations as fixed-step deferred
// calls on the presentation loop. Progress is derived from step count,
// not wall clock, so a test scheduler can run animations deterministically.
package anim

import (
	"time"

	"github.com/jakestephens/banner/internal/geometry"
)

// Scheduler is the deferred-call facility animations step on.
type Scheduler interface {
	After(d time.Duration, fn func()) func()
}

// StepInterval is the spacing between animation frames.
const StepInterval = time.Second / 30

// Animation is one in-flight frame interpolation. All methods must be
// called on the owning loop.
type Animation struct {
	sched Scheduler
	from  geometry.Rect
	to    geometry.Rect
	ease  EasingFunc
	step  func(geometry.Rect)
	done  func()

	steps      int
	index      int
	cancelStep func()
	stopped    bool
}

// Start animates from one rectangle to another over d, invoking step for
// every frame and done after the final frame lands. A non-positive
// duration jumps straight to the target. Cancel freezes the animation at
// its current frame; done is not invoked after a cancel.
func Start(sched Scheduler, from, to geometry.Rect, d time.Duration, ease EasingFunc, step func(geometry.Rect), done func()) *Animation {
	if ease == nil {
		ease = Linear
	}
	if step == nil {
		step = func(geometry.Rect) {}
	}

	a := &Animation{
		sched: sched,
		from:  from,
		to:    to,
		ease:  ease,
		step:  step,
		done:  done,
	}

	if d <= 0 {
		a.stopped = true
		step(to)
		if done != nil {
			done()
		}
		return a
	}

	a.steps = int(d / StepInterval)
	if a.steps < 1 {
		a.steps = 1
	}
	a.schedule()
	return a
}

func (a *Animation) schedule() {
	a.cancelStep = a.sched.After(StepInterval, a.advance)
}

func (a *Animation) advance() {
	if a.stopped {
		return
	}

	a.index++
	if a.index >= a.steps {
		a.stopped = true
		a.step(a.to)
		if a.done != nil {
			a.done()
		}
		return
	}

	t := float64(a.index) / float64(a.steps)
	a.step(geometry.Lerp(a.from, a.to, a.ease(t)))
	a.schedule()
}

// Cancel stops the animation without invoking done. Safe to call on a
// finished animation.
func (a *Animation) Cancel() {
	if a.stopped {
		return
	}
	a.stopped = true
	if a.cancelStep != nil {
		a.cancelStep()
	}
}

// Running reports whether frames are still pending.
func (a *Animation) Running() bool {
	return !a.stopped
}
