package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/jakestephens/banner/internal/history"
)

// PlainFormatter formats records as plain text.
type PlainFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewPlainFormatter creates a new plain text formatter.
func NewPlainFormatter(opts FormatterOptions) *PlainFormatter {
	f := &PlainFormatter{opts: opts}

	// Parse custom template if provided
	if opts.Template != "" {
		tmpl, err := template.New("plain").Funcs(templateFuncs()).Parse(opts.Template)
		if err == nil {
			f.template = tmpl
		}
	}

	return f
}

// Format writes records as plain text.
func (f *PlainFormatter) Format(w io.Writer, records []history.Record) error {
	for i := range records {
		if err := f.formatRecord(w, i+1, &records[i]); err != nil {
			return err
		}
	}
	return nil
}

// formatRecord formats a single record.
func (f *PlainFormatter) formatRecord(w io.Writer, index int, r *history.Record) error {
	// Use custom template if available
	if f.template != nil {
		if err := f.template.Execute(w, newTemplateData(index, r)); err != nil {
			return err
		}
		_, err := w.Write([]byte("\n"))
		return err
	}

	// Default format
	var sb strings.Builder

	if f.opts.ShowIndex {
		sb.WriteString(fmt.Sprintf("[%d] ", index))
	}

	if f.opts.ShowApp && r.App != "" {
		sb.WriteString(fmt.Sprintf("<%s> ", r.App))
	}

	sb.WriteString(r.Summary)

	if f.opts.ShowTime {
		sb.WriteString(fmt.Sprintf(" (%s)", relativeTime(r.Timestamp)))
	}

	sb.WriteString("\n")

	if r.Body != "" {
		body := r.Body
		if !f.opts.IncludeNewline {
			body = strings.ReplaceAll(body, "\n", " ")
		}
		if f.opts.BodyMaxLen > 0 && len(body) > f.opts.BodyMaxLen {
			body = body[:f.opts.BodyMaxLen-3] + "..."
		}
		sb.WriteString("    " + body + "\n")
	}

	_, err := w.Write([]byte(sb.String()))
	return err
}

// FormatField outputs a specific field from a record.
func FormatField(r *history.Record, field string) string {
	switch strings.ToLower(field) {
	case "id":
		return r.ID
	case "app", "app_name", "appname":
		return r.App
	case "summary":
		return r.Summary
	case "body":
		return r.Body
	case "icon", "icon_path":
		return r.Icon
	case "level", "urgency":
		return r.LevelName
	case "source":
		return r.Source
	case "reason":
		return r.Reason
	case "all", "full":
		return fmt.Sprintf("%s\n%s", r.Summary, r.Body)
	default:
		return r.Summary
	}
}
