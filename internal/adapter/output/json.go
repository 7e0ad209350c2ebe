package output

import (
	"encoding/json"
	"io"

	"github.com/jakestephens/banner/internal/history"
)

// JSONFormatter formats records as JSON.
type JSONFormatter struct {
	opts FormatterOptions
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(opts FormatterOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Format writes records as a JSON array.
func (f *JSONFormatter) Format(w io.Writer, records []history.Record) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(records)
}

// FormatSingle writes a single record as JSON.
func (f *JSONFormatter) FormatSingle(w io.Writer, r *history.Record) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}
