package banner

import (
	"container/list"
	"log/slog"
)

// QueuePosition selects where Show inserts a banner.
type QueuePosition int

const (
	// QueueBack appends; the banner waits its turn.
	QueueBack QueuePosition = iota

	// QueueFront preempts: the active banner suspends and the new one
	// presents immediately.
	QueueFront
)

// String returns the insertion position name.
func (p QueuePosition) String() string {
	if p == QueueFront {
		return "front"
	}
	return "back"
}

// Queue serializes banner presentation. Construct one per presentation
// loop and inject it into every banner; it is deliberately not a package
// global so tests get a fresh coordinator each. The queue holds plain
// references and drops them on completion; banner lifetime belongs to
// whoever created the banner.
type Queue struct {
	logger   *slog.Logger
	sched    Scheduler
	root     Surface
	feedback Feedback

	entries *list.List
	index   map[*Banner]*list.Element
}

// NewQueue creates a queue presenting onto root when Show gets no surface.
func NewQueue(sched Scheduler, root Surface, logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{
		logger:  logger,
		sched:   sched,
		root:    root,
		entries: list.New(),
		index:   make(map[*Banner]*list.Element),
	}
}

// SetFeedback installs the haptic collaborator fired at entrance start.
func (q *Queue) SetFeedback(f Feedback) { q.feedback = f }

// Scheduler returns the deferred-call facility the queue runs on.
func (q *Queue) Scheduler() Scheduler { return q.sched }

// RootSurface returns the default presentation surface.
func (q *Queue) RootSurface() Surface { return q.root }

// Len returns the number of queued banners, the active one included.
func (q *Queue) Len() int { return q.entries.Len() }

// Front returns the active banner, nil when the queue is empty.
func (q *Queue) Front() *Banner {
	if e := q.entries.Front(); e != nil {
		return e.Value.(*Banner)
	}
	return nil
}

// Enqueue inserts a banner. Front insertion into a non-empty queue
// suspends the currently active banner and presents the new one at once;
// any insertion into an empty queue presents immediately; back insertion
// into a non-empty queue waits. Banners that never went through Show, and
// duplicates, are ignored.
func (q *Queue) Enqueue(b *Banner, pos QueuePosition) {
	if b == nil || b.frame == nil {
		return
	}
	if _, ok := q.index[b]; ok {
		return
	}

	wasEmpty := q.entries.Len() == 0

	switch pos {
	case QueueFront:
		if !wasEmpty {
			q.Front().suspend()
		}
		q.index[b] = q.entries.PushFront(b)
		b.present()
	default:
		q.index[b] = q.entries.PushBack(b)
		if wasEmpty {
			b.present()
		}
	}
	q.logger.Debug("banner enqueued", "position", pos.String(), "len", q.entries.Len())
}

// Advance removes the front banner once its dismissal completes and
// activates the next: resumed if it had fully appeared, presented
// otherwise. callback always runs and reports whether the queue drained,
// so the caller can restore default chrome.
func (q *Queue) Advance(callback func(empty bool)) {
	if e := q.entries.Front(); e != nil {
		b := e.Value.(*Banner)
		q.entries.Remove(e)
		delete(q.index, b)
	}

	next := q.Front()
	if next != nil {
		if next.appeared {
			next.resume()
		} else {
			next.present()
		}
	}
	if callback != nil {
		callback(next == nil)
	}
	q.logger.Debug("queue advanced", "len", q.entries.Len())
}

// Remove drops an entry without advancing: dismissals of queued or
// suspended banners, and of a front banner displaced while animating out.
func (q *Queue) Remove(b *Banner) {
	e, ok := q.index[b]
	if !ok {
		return
	}
	q.entries.Remove(e)
	delete(q.index, b)
	q.logger.Debug("banner removed from queue", "len", q.entries.Len())
}

// Contains reports whether the banner is queued.
func (q *Queue) Contains(b *Banner) bool {
	_, ok := q.index[b]
	return ok
}

// DismissAll retires every queued banner: waiting and suspended entries
// are removed in place, the active one animates out last so default
// chrome is restored exactly once.
func (q *Queue) DismissAll() {
	banners := make([]*Banner, 0, q.entries.Len())
	for e := q.entries.Front(); e != nil; e = e.Next() {
		banners = append(banners, e.Value.(*Banner))
	}
	for i := len(banners) - 1; i >= 0; i-- {
		banners[i].Dismiss()
	}
}
