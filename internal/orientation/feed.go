package orientation

import "sync"

// Feed broadcasts orientation changes to subscribers. Surfaces publish
// from whatever goroutine observes the change; subscribers are expected
// to marshal their own work back onto their loop.
type Feed struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(Orientation)
	last   Orientation
}

// NewFeed creates an empty feed.
func NewFeed() *Feed {
	return &Feed{subs: make(map[int]func(Orientation))}
}

// Subscribe registers fn for future changes and returns a cancel func
// that removes the subscription.
func (f *Feed) Subscribe(fn func(Orientation)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.nextID
	f.nextID++
	f.subs[id] = fn

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs, id)
	}
}

// Publish notifies all subscribers of a new orientation. Repeated
// publishes of the current orientation are suppressed.
func (f *Feed) Publish(o Orientation) {
	f.mu.Lock()
	if o == f.last {
		f.mu.Unlock()
		return
	}
	f.last = o

	fns := make([]func(Orientation), 0, len(f.subs))
	for _, fn := range f.subs {
		fns = append(fns, fn)
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn(o)
	}
}

// Current returns the last published orientation.
func (f *Feed) Current() Orientation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}
