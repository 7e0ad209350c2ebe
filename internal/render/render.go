// Package render turns banner content into displayable text: format
// string expansion for text surfaces and Pango markup preparation for
// GTK ones.
package render

import (
	"strings"

	"github.com/jakestephens/banner/internal/banner"
)

// Default patterns used when a surface has no configured format.
const (
	DefaultTitlePattern = "{summary}"
	DefaultBodyPattern  = "{body}"
	DefaultLinePattern  = "<{app}> {summary}: {body}"
)

// Format expands {field} placeholders in pattern from the banner's
// content. Unknown placeholders pass through untouched.
func Format(pattern string, c banner.Content) string {
	var sb strings.Builder
	sb.Grow(len(pattern))

	for {
		open := strings.IndexByte(pattern, '{')
		if open < 0 {
			sb.WriteString(pattern)
			break
		}
		closed := strings.IndexByte(pattern[open:], '}')
		if closed < 0 {
			sb.WriteString(pattern)
			break
		}
		closed += open

		sb.WriteString(pattern[:open])
		field := pattern[open+1 : closed]
		if v, ok := lookupField(c, field); ok {
			sb.WriteString(v)
		} else {
			sb.WriteString(pattern[open : closed+1])
		}
		pattern = pattern[closed+1:]
	}

	return sb.String()
}

// FormatField returns a single named field from the content. Unknown
// field names fall back to the summary.
func FormatField(c banner.Content, field string) string {
	if v, ok := lookupField(c, field); ok {
		return v
	}
	return c.Summary
}

func lookupField(c banner.Content, field string) (string, bool) {
	switch strings.ToLower(field) {
	case "app", "app_name", "appname":
		return c.App, true
	case "summary", "title":
		return c.Summary, true
	case "body":
		return c.Body, true
	case "icon":
		return c.Icon, true
	case "level", "urgency":
		return c.Level.String(), true
	case "all", "full":
		return c.Summary + "\n" + c.Body, true
	default:
		return "", false
	}
}
