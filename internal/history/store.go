package history

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// ChangeType indicates the type of store change.
type ChangeType int

const (
	// ChangeTypeAdd indicates records were added.
	ChangeTypeAdd ChangeType = iota
	// ChangeTypeClear indicates all records were cleared.
	ChangeTypeClear
	// ChangeTypePrune indicates records were pruned.
	ChangeTypePrune
	// ChangeTypeDelete indicates a record was deleted.
	ChangeTypeDelete
	// ChangeTypeUpdate indicates a record was modified in place.
	ChangeTypeUpdate
)

// ChangeEvent signals store content changes.
type ChangeEvent struct {
	Type   ChangeType
	Count  int
	Source string
}

// FilterOptions specifies criteria for filtering records.
type FilterOptions struct {
	Since     time.Duration // Records newer than now-since (0=all)
	App       string        // Exact match on app name
	Level     *int          // Filter by level (nil=any)
	Limit     int           // Maximum results (0=unlimited)
	SortField string        // "timestamp", "app", "level"
	SortOrder string        // "asc" or "desc" (default: "desc")
}

// ErrStoreClosed is returned for operations on a closed store.
var ErrStoreClosed = storeError("store is closed")

type storeError string

func (e storeError) Error() string { return string(e) }

// Store manages banner history with thread-safe operations.
type Store struct {
	mu         sync.RWMutex
	records    []Record
	index      map[string]int  // id -> slice index
	hashIndex  map[string]int  // content_hash -> slice index (for deduplication)
	tombstones map[string]bool // content_hash -> true (for deleted items)

	journal Journal

	subscribers []chan ChangeEvent
	closed      bool
}

// NewStore creates a new Store.
// If journal is not nil, it is used to persist records.
func NewStore(journal Journal) *Store {
	return &Store{
		records:     make([]Record, 0),
		index:       make(map[string]int),
		hashIndex:   make(map[string]int),
		tombstones:  make(map[string]bool),
		journal:     journal,
		subscribers: make([]chan ChangeEvent, 0),
	}
}

// Add adds a single record to the store.
func (s *Store) Add(r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	r.EnsureContentHash()

	// Previously deleted content stays deleted
	if s.tombstones[r.ContentHash] {
		return nil
	}

	if _, exists := s.hashIndex[r.ContentHash]; exists {
		return nil // Duplicate content, skip
	}
	if _, exists := s.index[r.ID]; exists {
		return nil // Already exists, skip
	}

	idx := len(s.records)
	s.records = append(s.records, r)
	s.index[r.ID] = idx
	s.hashIndex[r.ContentHash] = idx

	if s.journal != nil {
		if err := s.journal.Append(r); err != nil {
			return err
		}
	}

	s.notifyChange(ChangeEvent{
		Type:   ChangeTypeAdd,
		Count:  1,
		Source: r.Source,
	})

	return nil
}

// AddBatch adds multiple records efficiently.
func (s *Store) AddBatch(rs []Record) error {
	if len(rs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	toAdd := make([]Record, 0, len(rs))
	seenHashes := make(map[string]bool) // Track hashes within this batch too

	for i := range rs {
		rs[i].EnsureContentHash()
		hash := rs[i].ContentHash

		if s.tombstones[hash] {
			continue
		}
		if _, exists := s.hashIndex[hash]; exists {
			continue
		}
		if seenHashes[hash] {
			continue
		}
		if _, exists := s.index[rs[i].ID]; exists {
			continue
		}

		seenHashes[hash] = true
		toAdd = append(toAdd, rs[i])
	}

	if len(toAdd) == 0 {
		return nil
	}

	startIdx := len(s.records)
	s.records = append(s.records, toAdd...)
	for i, r := range toAdd {
		idx := startIdx + i
		s.index[r.ID] = idx
		s.hashIndex[r.ContentHash] = idx
	}

	if s.journal != nil {
		if err := s.journal.AppendBatch(toAdd); err != nil {
			return err
		}
	}

	s.notifyChange(ChangeEvent{
		Type:   ChangeTypeAdd,
		Count:  len(toAdd),
		Source: toAdd[0].Source,
	})

	return nil
}

// All returns all records sorted newest first.
func (s *Store) All() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Record, len(s.records))
	copy(result, s.records)

	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp > result[j].Timestamp
	})

	return result
}

// Filter returns records matching the criteria.
func (s *Store) Filter(opts FilterOptions) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	var result []Record

	for _, r := range s.records {
		if opts.Since > 0 {
			cutoff := now.Add(-opts.Since)
			if time.Unix(r.Timestamp, 0).Before(cutoff) {
				continue
			}
		}
		if opts.App != "" && r.App != opts.App {
			continue
		}
		if opts.Level != nil && r.Level != *opts.Level {
			continue
		}

		result = append(result, r)
	}

	sortField := opts.SortField
	if sortField == "" {
		sortField = "timestamp"
	}
	sortOrder := opts.SortOrder
	if sortOrder == "" {
		sortOrder = "desc"
	}
	sortRecords(result, sortField, sortOrder)

	if opts.Limit > 0 && len(result) > opts.Limit {
		result = result[:opts.Limit]
	}

	return result
}

// Get returns a record by its ULID.
func (s *Store) Get(id string) *Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if idx, exists := s.index[id]; exists {
		r := s.records[idx]
		return &r
	}
	return nil
}

// Lookup finds a record by ULID, ULID prefix of the input, or content
// match as a fallback. Content matches return the most recent hit.
func (s *Store) Lookup(input string) *Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if idx, exists := s.index[input]; exists {
		r := s.records[idx]
		return &r
	}

	// The input may carry a ULID prefix (dmenu lines start with one)
	if len(input) >= 26 {
		if idx, exists := s.index[input[:26]]; exists {
			r := s.records[idx]
			return &r
		}
	}

	var best *Record
	for i := len(s.records) - 1; i >= 0; i-- {
		r := s.records[i]
		if r.App != "" && r.Summary != "" &&
			strings.Contains(input, r.App) && strings.Contains(input, r.Summary) {
			if best == nil || r.Timestamp > best.Timestamp {
				rCopy := r
				best = &rCopy
			}
		}
	}

	return best
}

// Update modifies a record in the store.
func (s *Store) Update(r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	idx, exists := s.index[r.ID]
	if !exists {
		return nil
	}

	s.records[idx] = r

	if s.journal != nil {
		if err := s.journal.Rewrite(s.records); err != nil {
			return err
		}
	}

	s.notifyChange(ChangeEvent{
		Type:  ChangeTypeUpdate,
		Count: 1,
	})

	return nil
}

// MarkDismissed records the retirement of a presented banner.
func (s *Store) MarkDismissed(id, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	idx, exists := s.index[id]
	if !exists {
		return nil
	}

	s.records[idx].MarkDismissed(reason)

	if s.journal != nil {
		if err := s.journal.Rewrite(s.records); err != nil {
			return err
		}
	}

	return nil
}

// Delete removes a record by ULID and remembers its content hash so a
// later import cannot resurrect it.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	idx, exists := s.index[id]
	if !exists {
		return nil
	}

	s.records[idx].EnsureContentHash()
	s.tombstones[s.records[idx].ContentHash] = true

	s.records = append(s.records[:idx], s.records[idx+1:]...)
	s.reindex()

	if s.journal != nil {
		if err := s.journal.Rewrite(s.records); err != nil {
			return err
		}
	}

	s.notifyChange(ChangeEvent{
		Type:  ChangeTypeDelete,
		Count: 1,
	})

	return nil
}

// Prune removes records older than the cutoff and, when keep > 0, drops
// the oldest past that count. Returns how many records were removed.
func (s *Store) Prune(olderThan time.Duration, keep int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrStoreClosed
	}

	kept := make([]Record, 0, len(s.records))
	if olderThan > 0 {
		cutoff := time.Now().Add(-olderThan).Unix()
		for _, r := range s.records {
			if r.Timestamp >= cutoff {
				kept = append(kept, r)
			}
		}
	} else {
		kept = append(kept, s.records...)
	}

	if keep > 0 && len(kept) > keep {
		// Drop the oldest beyond the cap
		sort.Slice(kept, func(i, j int) bool {
			return kept[i].Timestamp > kept[j].Timestamp
		})
		kept = kept[:keep]
	}

	removed := len(s.records) - len(kept)
	if removed == 0 {
		return 0, nil
	}

	s.records = kept
	s.reindex()

	if s.journal != nil {
		if err := s.journal.Rewrite(s.records); err != nil {
			return removed, err
		}
	}

	s.notifyChange(ChangeEvent{
		Type:  ChangeTypePrune,
		Count: removed,
	})

	return removed, nil
}

// Count returns the total number of records.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Tombstones returns all deleted-content hashes.
func (s *Store) Tombstones() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hashes := make([]string, 0, len(s.tombstones))
	for h := range s.tombstones {
		hashes = append(hashes, h)
	}
	return hashes
}

// LoadTombstones adds tombstones from a slice of hashes.
func (s *Store) LoadTombstones(hashes []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, h := range hashes {
		s.tombstones[h] = true
	}
}

// Subscribe returns a channel that receives change events.
func (s *Store) Subscribe() <-chan ChangeEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan ChangeEvent, 10)
	s.subscribers = append(s.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscription.
func (s *Store) Unsubscribe(ch <-chan ChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sub := range s.subscribers {
		if sub == ch {
			s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
			close(sub)
			return
		}
	}
}

// Close releases resources and closes all subscriber channels.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	for _, ch := range s.subscribers {
		close(ch)
	}
	s.subscribers = nil

	if s.journal != nil {
		return s.journal.Close()
	}

	return nil
}

// Hydrate loads records from the journal into the store.
func (s *Store) Hydrate() error {
	if s.journal == nil {
		return nil
	}

	records, err := s.journal.Load()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for i := range records {
		r := &records[i]

		// Ensure content hash exists (for older records without it)
		r.EnsureContentHash()

		if _, exists := s.hashIndex[r.ContentHash]; exists {
			continue
		}
		if _, exists := s.index[r.ID]; exists {
			continue
		}

		idx := len(s.records)
		s.records = append(s.records, *r)
		s.index[r.ID] = idx
		s.hashIndex[r.ContentHash] = idx
		added++
	}

	if added > 0 {
		s.notifyChange(ChangeEvent{
			Type:   ChangeTypeAdd,
			Count:  added,
			Source: "journal",
		})
	}

	return nil
}

// Clear removes all records from the store.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	count := len(s.records)
	s.records = make([]Record, 0)
	s.index = make(map[string]int)
	s.hashIndex = make(map[string]int)

	if s.journal != nil {
		if err := s.journal.Clear(); err != nil {
			return err
		}
	}

	s.notifyChange(ChangeEvent{
		Type:  ChangeTypeClear,
		Count: count,
	})

	return nil
}

// reindex rebuilds both lookup maps after slice surgery.
func (s *Store) reindex() {
	s.index = make(map[string]int, len(s.records))
	s.hashIndex = make(map[string]int, len(s.records))
	for i, r := range s.records {
		s.index[r.ID] = i
		if r.ContentHash != "" {
			s.hashIndex[r.ContentHash] = i
		}
	}
}

// notifyChange sends a change event to all subscribers (non-blocking).
func (s *Store) notifyChange(event ChangeEvent) {
	for _, ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			// Channel full, skip
		}
	}
}

// sortRecords sorts records in-place.
func sortRecords(rs []Record, field, order string) {
	sort.Slice(rs, func(i, j int) bool {
		var less bool
		switch field {
		case "app":
			less = rs[i].App < rs[j].App
		case "level":
			less = rs[i].Level < rs[j].Level
		default: // timestamp
			less = rs[i].Timestamp < rs[j].Timestamp
		}
		if order == "desc" {
			return !less
		}
		return less
	})
}
