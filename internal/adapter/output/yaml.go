package output

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jakestephens/banner/internal/history"
)

// YAMLFormatter formats records as YAML.
type YAMLFormatter struct {
	opts FormatterOptions
}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter(opts FormatterOptions) *YAMLFormatter {
	return &YAMLFormatter{opts: opts}
}

// Format writes records as a YAML sequence.
func (f *YAMLFormatter) Format(w io.Writer, records []history.Record) error {
	encoder := yaml.NewEncoder(w)
	defer encoder.Close()
	return encoder.Encode(records)
}

// FormatSingle writes a single record as YAML.
func (f *YAMLFormatter) FormatSingle(w io.Writer, r *history.Record) error {
	encoder := yaml.NewEncoder(w)
	defer encoder.Close()
	return encoder.Encode(r)
}
