package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DnDTrigger represents what triggered the DnD state change.
type DnDTrigger string

const (
	// DnDTriggerUser indicates a user-initiated DnD change (CLI, gesture)
	DnDTriggerUser DnDTrigger = "user"
	// DnDTriggerSystem indicates the daemon changed it (e.g., at startup
	// from config)
	DnDTriggerSystem DnDTrigger = "system"
)

// DnDTransition records details about a DnD state change.
type DnDTransition struct {
	Trigger   DnDTrigger `json:"trigger"`          // What type of event triggered the change
	Reason    string     `json:"reason"`           // Human-readable reason (e.g., "dnd on")
	Source    string     `json:"source,omitempty"` // Source identifier (e.g., "cli", "bannerd")
	Timestamp int64      `json:"timestamp"`        // When the transition occurred
}

// SharedState contains state shared between the banner CLI and bannerd.
// Persisted to the data directory as state.json.
type SharedState struct {
	// Do Not Disturb
	DnDEnabled bool `json:"dnd_enabled"`

	// Unix time when a timed DnD lapses (0 = until turned off)
	DnDUntil int64 `json:"dnd_until,omitempty"`

	// Details of the last DnD state change
	DnDLastTransition *DnDTransition `json:"dnd_last_transition,omitempty"`

	// Statistics (optional, for status bars)
	LastBannerAt int64 `json:"last_banner_at,omitempty"`

	// Version for compatibility
	SchemaVersion int `json:"schema_version"`
}

// StateSchemaVersion is the current version of the state schema.
const StateSchemaVersion = 1

// stateFileMutex protects concurrent access to the state file.
var stateFileMutex sync.RWMutex

// DefaultSharedState returns a new SharedState with default values.
func DefaultSharedState() *SharedState {
	return &SharedState{
		DnDEnabled:    false,
		SchemaVersion: StateSchemaVersion,
	}
}

// LoadSharedState loads the shared state from the given path.
// If the file doesn't exist or is corrupted, returns a default state.
func LoadSharedState(path string) (*SharedState, error) {
	stateFileMutex.RLock()
	defer stateFileMutex.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSharedState(), nil
		}
		return nil, err
	}

	var state SharedState
	if err := json.Unmarshal(data, &state); err != nil {
		return DefaultSharedState(), nil
	}

	if state.SchemaVersion == 0 {
		state.SchemaVersion = StateSchemaVersion
	}

	return &state, nil
}

// SaveSharedState saves the shared state to the given path.
func SaveSharedState(path string, state *SharedState) error {
	stateFileMutex.Lock()
	defer stateFileMutex.Unlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	if state.SchemaVersion == 0 {
		state.SchemaVersion = StateSchemaVersion
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return err
	}

	return os.Rename(tmpPath, path)
}

// SetDnD updates the Do Not Disturb state with transition tracking.
// Any running DnD timer is cleared.
func (s *SharedState) SetDnD(enabled bool, trigger DnDTrigger, reason, source string) {
	s.DnDEnabled = enabled
	s.DnDUntil = 0
	s.DnDLastTransition = &DnDTransition{
		Trigger:   trigger,
		Reason:    reason,
		Source:    source,
		Timestamp: time.Now().Unix(),
	}
}

// SetDnDUntil enables Do Not Disturb until the given time.
func (s *SharedState) SetDnDUntil(until time.Time, trigger DnDTrigger, reason, source string) {
	s.SetDnD(true, trigger, reason, source)
	s.DnDUntil = until.Unix()
}

// ToggleDnD toggles the Do Not Disturb state with transition tracking.
// A lapsed timed enable counts as off, so toggling turns it back on.
// Returns the new DnD state (true = enabled).
func (s *SharedState) ToggleDnD(trigger DnDTrigger, reason, source string) bool {
	s.SetDnD(!s.DnDActive(), trigger, reason, source)
	return s.DnDEnabled
}

// DnDActive reports whether Do Not Disturb is in effect right now,
// accounting for a timed enable that has lapsed.
func (s *SharedState) DnDActive() bool {
	if !s.DnDEnabled {
		return false
	}
	if s.DnDUntil > 0 && time.Now().Unix() >= s.DnDUntil {
		return false
	}
	return true
}

// UpdateLastBanner updates the last presented banner timestamp.
func (s *SharedState) UpdateLastBanner() {
	s.LastBannerAt = time.Now().Unix()
}
