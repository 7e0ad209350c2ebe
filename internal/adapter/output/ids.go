package output

import (
	"fmt"
	"io"

	"github.com/jakestephens/banner/internal/history"
)

// IDsFormatter outputs just the record IDs, one per line.
// Useful for piping to other commands.
type IDsFormatter struct{}

// NewIDsFormatter creates a new IDs formatter.
func NewIDsFormatter() *IDsFormatter {
	return &IDsFormatter{}
}

// Format writes record IDs to the writer, one per line.
func (f *IDsFormatter) Format(w io.Writer, records []history.Record) error {
	for _, r := range records {
		if _, err := fmt.Fprintln(w, r.ID); err != nil {
			return err
		}
	}
	return nil
}
