// Package history persists presented banners and serves them back to the
// CLI and the daemon.
package history

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/oklog/ulid/v2"

	"github.com/jakestephens/banner/internal/banner"
)

// Level values matching freedesktop urgency numbering.
const (
	LevelLow      = 0
	LevelNormal   = 1
	LevelCritical = 2
)

// LevelNames maps level values to human-readable names.
var LevelNames = map[int]string{
	LevelLow:      "low",
	LevelNormal:   "normal",
	LevelCritical: "critical",
}

// Retirement reasons recorded when a banner leaves the screen.
const (
	ReasonExpired   = "expired"   // Auto-dismiss countdown ran out
	ReasonDismissed = "dismissed" // User gesture retired it
	ReasonClosed    = "closed"    // A caller closed it programmatically
)

// Record is one presented banner in the history journal.
type Record struct {
	// Journal metadata
	ID          string `json:"id"`     // ULID, sortable by creation time
	Source      string `json:"source"` // "dbus", "self", "import", ...
	RecordedAt  int64  `json:"recorded_at"`
	DismissedAt int64  `json:"dismissed_at,omitempty"` // When retired from screen
	Reason      string `json:"reason,omitempty"`       // Why it was retired
	ContentHash string `json:"content_hash,omitempty"` // SHA256 hash for deduplication

	// Banner content
	App       string `json:"app"`
	Summary   string `json:"summary"`
	Body      string `json:"body"`
	Icon      string `json:"icon,omitempty"`
	Timestamp int64  `json:"timestamp"` // When presented (unix seconds)

	Level     int    `json:"level"`
	LevelName string `json:"level_name"`
}

// Validation errors.
var (
	ErrEmptyID          = errors.New("id cannot be empty")
	ErrEmptySource      = errors.New("source cannot be empty")
	ErrEmptyApp         = errors.New("app cannot be empty")
	ErrEmptySummary     = errors.New("summary cannot be empty")
	ErrInvalidLevel     = errors.New("level must be 0, 1, or 2")
	ErrInvalidTimestamp = errors.New("timestamp must be greater than 0")
)

// NewRecord creates a Record with a generated ULID and metadata.
func NewRecord(source string) (*Record, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ULID: %w", err)
	}

	return &Record{
		ID:         id.String(),
		Source:     source,
		RecordedAt: time.Now().Unix(),
		Level:      LevelNormal,
		LevelName:  LevelNames[LevelNormal],
	}, nil
}

// FromContent creates a Record capturing a banner's content.
func FromContent(source string, c banner.Content) (*Record, error) {
	r, err := NewRecord(source)
	if err != nil {
		return nil, err
	}
	r.App = c.App
	r.Summary = c.Summary
	r.Body = c.Body
	r.Icon = c.Icon
	r.SetLevel(int(c.Level))
	r.Timestamp = time.Now().Unix()
	return r, nil
}

// Content converts the record back to presentable banner content.
func (r *Record) Content() banner.Content {
	return banner.Content{
		App:     r.App,
		Summary: r.Summary,
		Body:    r.Body,
		Icon:    r.Icon,
		Level:   banner.Level(r.Level),
	}
}

// Validate checks that the record has all required fields.
func (r *Record) Validate() error {
	if r.ID == "" {
		return ErrEmptyID
	}
	if r.Source == "" {
		return ErrEmptySource
	}
	if r.App == "" {
		return ErrEmptyApp
	}
	if r.Summary == "" {
		return ErrEmptySummary
	}
	if r.Level < LevelLow || r.Level > LevelCritical {
		return ErrInvalidLevel
	}
	if r.Timestamp <= 0 {
		return ErrInvalidTimestamp
	}
	return nil
}

// SetLevel sets the level and its human-readable name.
func (r *Record) SetLevel(level int) {
	if level < LevelLow || level > LevelCritical {
		level = LevelNormal
	}
	r.Level = level
	r.LevelName = LevelNames[level]
}

// RelativeTime returns a human-readable relative time string like
// "5 minutes ago".
func (r *Record) RelativeTime() string {
	return humanize.Time(time.Unix(r.Timestamp, 0))
}

// BodyTruncated returns the body truncated to maxLen characters.
// If the body is longer, it is truncated and "..." is appended.
func (r *Record) BodyTruncated(maxLen int) string {
	if maxLen <= 0 {
		return ""
	}

	// Collapse whitespace and newlines to single spaces
	body := strings.Join(strings.Fields(r.Body), " ")

	if len(body) <= maxLen {
		return body
	}
	if maxLen <= 3 {
		return body[:maxLen]
	}
	return body[:maxLen-3] + "..."
}

// DedupeKey returns a string key for deduplication. Records with the
// same app, summary, body and second-granularity timestamp are
// considered duplicates.
func (r *Record) DedupeKey() string {
	return fmt.Sprintf("%s:%s:%s:%d", r.App, r.Summary, r.Body, r.Timestamp)
}

// ComputeContentHash generates a SHA256 hash of the record content,
// used for deduplication across imports.
func (r *Record) ComputeContentHash() string {
	hash := sha256.Sum256([]byte(r.DedupeKey()))
	return hex.EncodeToString(hash[:])
}

// EnsureContentHash computes and sets the ContentHash if not already set.
func (r *Record) EnsureContentHash() {
	if r.ContentHash == "" {
		r.ContentHash = r.ComputeContentHash()
	}
}

// TimestampTime returns the timestamp as a time.Time.
func (r *Record) TimestampTime() time.Time {
	return time.Unix(r.Timestamp, 0)
}

// IsDismissed returns true if the banner has been retired from screen.
func (r *Record) IsDismissed() bool {
	return r.DismissedAt > 0
}

// MarkDismissed records when and why the banner left the screen.
func (r *Record) MarkDismissed(reason string) {
	r.DismissedAt = time.Now().Unix()
	r.Reason = reason
}

// Clone creates a copy of the record.
func (r *Record) Clone() *Record {
	clone := *r
	return &clone
}
