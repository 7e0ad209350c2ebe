// Package runloop provides the single-threaded presentation loop that
// serializes all banner state transitions. Producers on other goroutines
// hand work to the loop with Post; timers re-enter the loop the same way,
// so no two transitions ever interleave.
package runloop

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// CancelFunc cancels a deferred call scheduled with After. Safe to call
// more than once and after the call has fired. It is an alias so Loop
// satisfies scheduler interfaces declared with a plain func() return.
type CancelFunc = func()

// Loop runs posted functions one at a time on a dedicated goroutine.
type Loop struct {
	mu     sync.Mutex
	logger *slog.Logger

	ops    chan func()
	stopCh chan struct{}
	doneCh chan struct{}

	running bool
}

// New creates a loop. Call Start before posting work.
func New(logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		logger: logger,
		ops:    make(chan func(), 256),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start launches the loop goroutine.
func (l *Loop) Start() {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return
	}
	l.running = true
	l.stopCh = make(chan struct{})
	l.doneCh = make(chan struct{})
	l.mu.Unlock()

	go l.run()
	l.logger.Debug("presentation loop started")
}

// run is the main drain loop.
func (l *Loop) run() {
	defer close(l.doneCh)

	for {
		select {
		case fn := <-l.ops:
			fn()
		case <-l.stopCh:
			return
		}
	}
}

// Post queues fn for execution on the loop. Posts to a stopped loop are
// dropped; pending work is discarded when the loop stops.
func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}
	select {
	case l.ops <- fn:
	case <-l.stopCh:
	}
}

// After schedules fn to run on the loop once d has elapsed. The returned
// CancelFunc prevents the call from running if it has not started yet.
func (l *Loop) After(d time.Duration, fn func()) CancelFunc {
	if fn == nil {
		return func() {}
	}

	var canceled atomic.Bool
	timer := time.AfterFunc(d, func() {
		l.Post(func() {
			if canceled.Load() {
				return
			}
			fn()
		})
	})

	return func() {
		canceled.Store(true)
		timer.Stop()
	}
}

// Stop stops the loop and waits for the goroutine to finish.
func (l *Loop) Stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	l.running = false
	close(l.stopCh)
	l.mu.Unlock()

	<-l.doneCh
	l.logger.Debug("presentation loop stopped")
}

// IsRunning reports whether the loop goroutine is active.
func (l *Loop) IsRunning() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}
