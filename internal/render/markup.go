package render

import "strings"

// markupTags is the subset of Pango markup GTK4 labels render. Anything
// else gets stripped, keeping the text between the tags.
var markupTags = map[string]bool{
	"b":     true,
	"i":     true,
	"u":     true,
	"s":     true,
	"tt":    true,
	"sub":   true,
	"sup":   true,
	"small": true,
	"big":   true,
	"a":     true,
	"span":  true,
}

// HasMarkup reports whether the text looks like it carries markup tags.
func HasMarkup(s string) bool {
	return strings.Contains(s, "<")
}

// EscapeMarkup escapes text for literal inclusion in Pango markup.
func EscapeMarkup(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		switch r {
		case '&':
			sb.WriteString("&amp;")
		case '<':
			sb.WriteString("&lt;")
		case '>':
			sb.WriteString("&gt;")
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// SanitizeMarkup removes markup tags GTK4 labels do not support,
// keeping the enclosed text. Malformed fragments (an unterminated '<')
// are escaped so the label never receives broken markup.
func SanitizeMarkup(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))

	for {
		open := strings.IndexByte(s, '<')
		if open < 0 {
			sb.WriteString(s)
			break
		}
		sb.WriteString(s[:open])

		closed := strings.IndexByte(s[open:], '>')
		if closed < 0 {
			sb.WriteString("&lt;")
			sb.WriteString(s[open+1:])
			break
		}
		closed += open

		tag := s[open+1 : closed]
		if markupTags[tagName(tag)] {
			sb.WriteString(s[open : closed+1])
		}
		s = s[closed+1:]
	}

	return sb.String()
}

// tagName extracts the bare element name from a tag body like
// "a href=..." or "/b".
func tagName(tag string) string {
	tag = strings.TrimPrefix(tag, "/")
	tag = strings.TrimSuffix(tag, "/")
	if i := strings.IndexAny(tag, " \t"); i >= 0 {
		tag = tag[:i]
	}
	return strings.ToLower(strings.TrimSpace(tag))
}
