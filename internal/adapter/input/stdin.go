package input

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/jakestephens/banner/internal/history"
)

// StdinAdapter reads records from standard input.
type StdinAdapter struct {
	reader io.Reader
}

// NewStdinAdapter creates a new StdinAdapter reading from os.Stdin.
func NewStdinAdapter() *StdinAdapter {
	return &StdinAdapter{reader: os.Stdin}
}

// NewStdinAdapterWithReader creates a new StdinAdapter with a custom reader.
func NewStdinAdapterWithReader(r io.Reader) *StdinAdapter {
	return &StdinAdapter{reader: r}
}

// Name returns the adapter identifier.
func (a *StdinAdapter) Name() string {
	return "stdin"
}

// Import reads records from standard input.
// Supports three formats:
// 1. dunstctl history format
// 2. JSON array of entries
// 3. JSONL, one entry per line
func (a *StdinAdapter) Import(ctx context.Context) ([]history.Record, error) {
	scanner := bufio.NewScanner(a.reader)
	const maxSize = 10 * 1024 * 1024 // 10MB max
	scanner.Buffer(make([]byte, 64*1024), maxSize)

	var data []byte
	var lines [][]byte
	for scanner.Scan() {
		line := make([]byte, len(scanner.Bytes()))
		copy(line, scanner.Bytes())
		lines = append(lines, line)
		data = append(data, line...)
		data = append(data, '\n')
	}

	if err := scanner.Err(); err != nil {
		return nil, &AdapterError{
			Source:  "stdin",
			Message: "failed to read stdin",
			Err:     err,
		}
	}

	if len(data) == 0 {
		return nil, nil
	}

	// Try to parse as dunst history format first
	records, err := ParseDunstHistory(data)
	if err == nil && len(records) > 0 {
		return records, nil
	}

	// Try to parse as JSON array
	records, err = parseJSONArray(data)
	if err == nil {
		return records, nil
	}

	// Fall back to JSONL, one entry per line
	return parseJSONLines(lines)
}

// parseJSONArray parses a JSON array of entries.
func parseJSONArray(data []byte) ([]history.Record, error) {
	var entries []stdinEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &AdapterError{
			Source:  "stdin",
			Message: "failed to parse JSON input",
			Err:     err,
		}
	}

	var records []history.Record
	for _, entry := range entries {
		r, err := convertStdinEntry(entry)
		if err != nil {
			continue
		}
		records = append(records, *r)
	}

	return records, nil
}

// parseJSONLines parses newline-delimited JSON entries, skipping
// malformed lines.
func parseJSONLines(lines [][]byte) ([]history.Record, error) {
	var records []history.Record
	for _, line := range lines {
		if len(line) == 0 {
			continue
		}

		var entry stdinEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		if entry.Summary == "" {
			continue
		}

		r, err := convertStdinEntry(entry)
		if err != nil {
			continue
		}
		records = append(records, *r)
	}

	if len(records) == 0 {
		return nil, &AdapterError{
			Source:  "stdin",
			Message: "no parsable entries in input",
		}
	}

	return records, nil
}

// stdinEntry represents a notification in the simple JSON format.
type stdinEntry struct {
	App       string `json:"app"`
	AppName   string `json:"app_name"` // Alternate key
	Summary   string `json:"summary"`
	Body      string `json:"body"`
	Timestamp int64  `json:"timestamp"`
	Level     int    `json:"level"`
	Urgency   *int   `json:"urgency,omitempty"` // Alternate key
	Icon      string `json:"icon,omitempty"`
}

// convertStdinEntry converts a stdin entry to a Record.
func convertStdinEntry(entry stdinEntry) (*history.Record, error) {
	r, err := history.NewRecord("stdin")
	if err != nil {
		return nil, err
	}

	app := entry.App
	if app == "" {
		app = entry.AppName
	}

	timestamp := entry.Timestamp
	if timestamp == 0 {
		timestamp = time.Now().Unix()
	}

	level := entry.Level
	if entry.Urgency != nil {
		level = *entry.Urgency
	}

	r.App = sanitizeString(app)
	r.Summary = sanitizeString(entry.Summary)
	r.Body = sanitizeString(entry.Body)
	r.Icon = entry.Icon
	r.Timestamp = timestamp
	r.SetLevel(level)
	r.EnsureContentHash()

	return r, nil
}
