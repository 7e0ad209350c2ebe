package dbus

import (
	"sync"
	"time"

	"github.com/jakestephens/banner/internal/banner"
)

// Entry ties a D-Bus notification id to the banner presenting it and the
// history record persisting it. ID, Banner, and RecordID are immutable
// after registration; Reason and ClosedAt are set once on close.
type Entry struct {
	ID        uint32         // D-Bus notification id
	Banner    *banner.Banner // nil when suppressed (DnD) or monitor-only
	RecordID  string         // history record ULID, "" for transient notifications
	CreatedAt time.Time
	ClosedAt  time.Time
	Reason    CloseReason // zero until closed
}

// Closed reports whether the entry has reached a terminal state.
func (e *Entry) Closed() bool { return e.Reason != 0 }

// Registry maps between D-Bus notification ids, banners, and history
// records. The daemon registers each Notify and resolves lifecycle events
// back to ids for signal emission.
type Registry struct {
	mu sync.RWMutex

	byID     map[uint32]*Entry
	byBanner map[*banner.Banner]uint32
	byRecord map[string]uint32
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:     make(map[uint32]*Entry),
		byBanner: make(map[*banner.Banner]uint32),
		byRecord: make(map[string]uint32),
	}
}

// Register adds an entry for a notification id. Registering an id that is
// already present replaces the old entry and drops its stale mappings;
// this is how sender-driven replacement (replaces_id) is tracked.
func (r *Registry) Register(id uint32, b *banner.Banner, recordID string) *Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, exists := r.byID[id]; exists {
		if old.Banner != nil {
			delete(r.byBanner, old.Banner)
		}
		if old.RecordID != "" {
			delete(r.byRecord, old.RecordID)
		}
	}

	e := &Entry{
		ID:        id,
		Banner:    b,
		RecordID:  recordID,
		CreatedAt: time.Now(),
	}

	r.byID[id] = e
	if b != nil {
		r.byBanner[b] = id
	}
	if recordID != "" {
		r.byRecord[recordID] = id
	}

	return e
}

// Get returns the entry for a notification id, or nil.
func (r *Registry) Get(id uint32) *Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byID[id]
}

// ByBanner returns the entry presenting the given banner, or nil.
func (r *Registry) ByBanner(b *banner.Banner) *Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.byBanner[b]
	if !exists {
		return nil
	}
	return r.byID[id]
}

// ByRecord returns the entry persisting the given history record, or nil.
func (r *Registry) ByRecord(recordID string) *Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.byRecord[recordID]
	if !exists {
		return nil
	}
	return r.byID[id]
}

// Close marks an entry terminal with the given reason and returns it.
// Returns nil if the id is unknown or the entry is already closed, so a
// timeout racing a user dismissal settles on a single reason.
func (r *Registry) Close(id uint32, reason CloseReason) *Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, exists := r.byID[id]
	if !exists || e.Reason != 0 {
		return nil
	}

	e.Reason = reason
	e.ClosedAt = time.Now()
	return e
}

// CloseBanner resolves a banner to its entry and closes it in one step.
func (r *Registry) CloseBanner(b *banner.Banner, reason CloseReason) *Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, exists := r.byBanner[b]
	if !exists {
		return nil
	}
	e := r.byID[id]
	if e == nil || e.Reason != 0 {
		return nil
	}

	e.Reason = reason
	e.ClosedAt = time.Now()
	return e
}

// Remove drops an entry and all its mappings.
func (r *Registry) Remove(id uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, exists := r.byID[id]
	if !exists {
		return
	}

	if e.Banner != nil {
		delete(r.byBanner, e.Banner)
	}
	if e.RecordID != "" {
		delete(r.byRecord, e.RecordID)
	}
	delete(r.byID, id)
}

// Active returns the entries that have not been closed.
func (r *Registry) Active() []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var active []*Entry
	for _, e := range r.byID {
		if e.Reason == 0 {
			active = append(active, e)
		}
	}
	return active
}

// Count returns the number of tracked entries.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// ActiveCount returns the number of entries that have not been closed.
func (r *Registry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, e := range r.byID {
		if e.Reason == 0 {
			count++
		}
	}
	return count
}
