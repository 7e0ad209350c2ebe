package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/jakestephens/banner/internal/history"
)

// DmenuFormatter formats records for dmenu/rofi/fuzzel.
type DmenuFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewDmenuFormatter creates a new dmenu formatter.
func NewDmenuFormatter(opts FormatterOptions) *DmenuFormatter {
	f := &DmenuFormatter{opts: opts}

	// Parse custom template if provided
	if opts.Template != "" {
		tmpl, err := template.New("dmenu").Funcs(templateFuncs()).Parse(opts.Template)
		if err == nil {
			f.template = tmpl
		}
	}

	return f
}

// Format writes records in dmenu format (one per line).
func (f *DmenuFormatter) Format(w io.Writer, records []history.Record) error {
	for i := range records {
		line := f.formatLine(i+1, &records[i])
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// formatLine formats a single record line.
func (f *DmenuFormatter) formatLine(index int, r *history.Record) string {
	// Use custom template if available
	if f.template != nil {
		var buf strings.Builder
		if err := f.template.Execute(&buf, newTemplateData(index, r)); err == nil {
			return buf.String()
		}
	}

	// Default format: [index] [time] [app] summary: body
	var parts []string
	sep := f.opts.Separator
	if sep == "" {
		sep = " | "
	}

	if f.opts.ShowIndex {
		parts = append(parts, fmt.Sprintf("%d", index))
	}

	if f.opts.ShowTime {
		parts = append(parts, relativeTime(r.Timestamp))
	}

	if f.opts.ShowApp && r.App != "" {
		parts = append(parts, r.App)
	}

	// Summary and body
	content := r.Summary
	if r.Body != "" {
		body := sanitizeBody(r.Body, f.opts.BodyMaxLen, f.opts.IncludeNewline)
		if body != "" {
			content += ": " + body
		}
	}
	parts = append(parts, content)

	return strings.Join(parts, sep)
}

// templateData exposes a record's fields and methods directly to custom
// templates, plus the 1-based list index.
type templateData struct {
	*history.Record
	Index int
}

func newTemplateData(index int, r *history.Record) templateData {
	return templateData{Record: r, Index: index}
}

// templateFuncs returns template helper functions.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"truncate": func(s string, maxLen int) string {
			if maxLen <= 0 || len(s) <= maxLen {
				return s
			}
			if maxLen <= 3 {
				return s[:maxLen]
			}
			return s[:maxLen-3] + "..."
		},
		"reltime": func(ts int64) string {
			return relativeTime(ts)
		},
		"formatTime": func(ts int64) string {
			if ts == 0 {
				return "unknown"
			}
			return time.Unix(ts, 0).Format("2006-01-02 15:04:05")
		},
		"levelIcon": func(level int) string {
			switch level {
			case history.LevelLow:
				return "L"
			case history.LevelCritical:
				return "!"
			default:
				return "-"
			}
		},
	}
}

// relativeTime returns a compact relative time string for list lines.
func relativeTime(timestamp int64) string {
	if timestamp == 0 {
		return "unknown"
	}

	t := time.Unix(timestamp, 0)
	d := time.Since(t)

	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		mins := int(d.Minutes())
		return fmt.Sprintf("%dm", mins)
	case d < 24*time.Hour:
		hours := int(d.Hours())
		return fmt.Sprintf("%dh", hours)
	case d < 7*24*time.Hour:
		days := int(d.Hours() / 24)
		return fmt.Sprintf("%dd", days)
	default:
		weeks := int(d.Hours() / 24 / 7)
		return fmt.Sprintf("%dw", weeks)
	}
}

// sanitizeBody cleans up body text for single-line display.
func sanitizeBody(body string, maxLen int, includeNewline bool) string {
	// Replace newlines with spaces unless explicitly included
	if !includeNewline {
		body = strings.ReplaceAll(body, "\n", " ")
		body = strings.ReplaceAll(body, "\r", "")
	}

	// Collapse multiple spaces
	for strings.Contains(body, "  ") {
		body = strings.ReplaceAll(body, "  ", " ")
	}

	body = strings.TrimSpace(body)

	// Truncate if needed
	if maxLen > 0 && len(body) > maxLen {
		if maxLen <= 3 {
			return body[:maxLen]
		}
		return body[:maxLen-3] + "..."
	}

	return body
}
