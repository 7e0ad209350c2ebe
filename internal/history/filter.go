package history

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseDuration parses a duration string with extended formats.
// Supports: 48h, 7d, 1w, 0 (all time)
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	// Special case: 0 means no filter (all time)
	if s == "0" || s == "" {
		return 0, nil
	}

	// Handle day suffix (7d -> 168h)
	if daysStr, found := strings.CutSuffix(s, "d"); found {
		days, err := strconv.Atoi(daysStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}

	// Handle week suffix (1w -> 168h)
	if weeksStr, found := strings.CutSuffix(s, "w"); found {
		weeks, err := strconv.Atoi(weeksStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		return time.Duration(weeks) * 7 * 24 * time.Hour, nil
	}

	// Standard Go duration parsing
	return time.ParseDuration(s)
}

// ParseLevel parses a level string to its integer value.
// Accepts: low, normal, critical, 0, 1, 2
func ParseLevel(s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))

	switch s {
	case "low", "0":
		return LevelLow, nil
	case "normal", "1":
		return LevelNormal, nil
	case "critical", "2":
		return LevelCritical, nil
	default:
		return 0, fmt.Errorf("invalid level: %s (use low, normal, or critical)", s)
	}
}

// Search returns records matching a search term in summary or body.
// Case-insensitive substring match.
func Search(records []Record, term string) []Record {
	if term == "" {
		return records
	}

	term = strings.ToLower(term)
	var result []Record

	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Summary), term) ||
			strings.Contains(strings.ToLower(r.Body), term) {
			result = append(result, r)
		}
	}

	return result
}

// LookupByIndex finds a record by its index (1-based for user-friendliness).
// Returns nil if index is out of bounds.
func LookupByIndex(records []Record, index int) *Record {
	idx := index - 1
	if idx < 0 || idx >= len(records) {
		return nil
	}
	return &records[idx]
}

// ParseSort parses a sort specification like "timestamp:desc" or "app".
// The order defaults to descending when omitted.
func ParseSort(s string) (field string, order string, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "timestamp", "desc", nil
	}

	field, order, found := strings.Cut(s, ":")
	field = strings.ToLower(strings.TrimSpace(field))
	order = strings.ToLower(strings.TrimSpace(order))
	if !found {
		order = "desc"
	}

	switch field {
	case "timestamp", "time", "ts":
		field = "timestamp"
	case "app", "app_name", "appname":
		field = "app"
	case "level", "urgency", "priority":
		field = "level"
	default:
		return "", "", fmt.Errorf("unknown sort field: %s (use timestamp, app, or level)", field)
	}

	switch order {
	case "asc", "desc":
	default:
		return "", "", fmt.Errorf("invalid sort order: %s (use asc or desc)", order)
	}

	return field, order, nil
}
