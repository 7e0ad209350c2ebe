package input

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/jakestephens/banner/internal/history"
)

// DunstAdapter fetches records from dunstctl history.
type DunstAdapter struct{}

// NewDunstAdapter creates a new DunstAdapter.
func NewDunstAdapter() *DunstAdapter {
	return &DunstAdapter{}
}

// Name returns the adapter identifier.
func (a *DunstAdapter) Name() string {
	return "dunst"
}

// Import fetches records from dunstctl history.
func (a *DunstAdapter) Import(ctx context.Context) ([]history.Record, error) {
	cmd := exec.CommandContext(ctx, "dunstctl", "history")
	output, err := cmd.Output()
	if err != nil {
		return nil, &AdapterError{
			Source:  "dunst",
			Message: "failed to execute dunstctl history",
			Err:     err,
		}
	}

	return ParseDunstHistory(output)
}

// dunstHistory represents the top-level dunstctl history JSON structure.
type dunstHistory struct {
	Type string         `json:"type"`
	Data [][]dunstEntry `json:"data"`
}

// dunstEntry represents a single notification in dunstctl history.
type dunstEntry struct {
	ID        dunstValue `json:"id"`
	AppName   dunstValue `json:"appname"`
	Summary   dunstValue `json:"summary"`
	Body      dunstValue `json:"body"`
	Timestamp dunstValue `json:"timestamp"`
	Timeout   dunstValue `json:"timeout"`
	Urgency   dunstValue `json:"urgency"`
	IconPath  dunstValue `json:"icon_path"`
}

// dunstValue represents a typed value in dunst JSON.
// dunst uses {"type": "INT", "data": 123} format.
type dunstValue struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// String returns the value as a string.
func (v dunstValue) String() string {
	switch d := v.Data.(type) {
	case string:
		return d
	case float64:
		return strconv.FormatFloat(d, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(d, 10)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", d)
	}
}

// Int returns the value as an int.
func (v dunstValue) Int() int {
	switch d := v.Data.(type) {
	case float64:
		return int(d)
	case int64:
		return int(d)
	case string:
		i, _ := strconv.Atoi(d)
		return i
	default:
		return 0
	}
}

// Int64 returns the value as an int64.
func (v dunstValue) Int64() int64 {
	switch d := v.Data.(type) {
	case float64:
		return int64(d)
	case int64:
		return d
	case string:
		i, _ := strconv.ParseInt(d, 10, 64)
		return i
	default:
		return 0
	}
}

// ParseDunstHistory parses dunstctl history JSON output.
func ParseDunstHistory(data []byte) ([]history.Record, error) {
	var hist dunstHistory
	if err := json.Unmarshal(data, &hist); err != nil {
		return nil, &AdapterError{
			Source:  "dunst",
			Message: "failed to parse dunstctl history JSON",
			Err:     err,
		}
	}

	var records []history.Record

	// dunst uses nested arrays: data is [[entry1, entry2, ...]]
	for _, group := range hist.Data {
		for _, entry := range group {
			r, err := convertDunstEntry(entry)
			if err != nil {
				continue
			}
			records = append(records, *r)
		}
	}

	return records, nil
}

// convertDunstEntry converts a dunst entry to a Record.
func convertDunstEntry(entry dunstEntry) (*history.Record, error) {
	r, err := history.NewRecord("dunst")
	if err != nil {
		return nil, err
	}

	r.App = sanitizeString(entry.AppName.String())
	r.Summary = sanitizeString(entry.Summary.String())
	r.Body = sanitizeString(entry.Body.String())
	r.Icon = entry.IconPath.String()
	r.Timestamp = convertDunstTimestamp(entry.Timestamp.Int64())
	r.SetLevel(entry.Urgency.Int())
	r.EnsureContentHash()

	return r, nil
}

// convertDunstTimestamp converts a dunst timestamp to a Unix timestamp.
// Dunst timestamps are microseconds since boot.
func convertDunstTimestamp(dunstTimestamp int64) int64 {
	if dunstTimestamp == 0 {
		return time.Now().Unix()
	}

	uptimeData, err := os.ReadFile("/proc/uptime")
	if err != nil {
		// Fallback: assume timestamp is already Unix time if it looks like it
		if dunstTimestamp > 1000000000 {
			return dunstTimestamp
		}
		return time.Now().Unix()
	}

	// Parse uptime (first number in seconds with decimal)
	uptimeStr := strings.Fields(string(uptimeData))[0]
	uptimeFloat, err := strconv.ParseFloat(uptimeStr, 64)
	if err != nil {
		return time.Now().Unix()
	}

	uptimeMicros := int64(uptimeFloat * 1000000)
	nowMicros := time.Now().UnixMicro()
	bootTimeMicros := nowMicros - uptimeMicros
	notifMicros := bootTimeMicros + dunstTimestamp

	return notifMicros / 1000000
}

// sanitizeString removes control characters and normalizes whitespace.
func sanitizeString(s string) string {
	var result strings.Builder
	for _, r := range s {
		if r < 32 && r != '\n' && r != '\t' {
			result.WriteRune(' ')
		} else {
			result.WriteRune(r)
		}
	}
	return strings.TrimSpace(result.String())
}
