package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jakestephens/banner/internal/banner"
)

func testContent() banner.Content {
	return banner.Content{
		App:     "mail",
		Summary: "New message",
		Body:    "From Alice: lunch?",
		Icon:    "mail-unread",
		Level:   banner.LevelNormal,
	}
}

func TestFormat(t *testing.T) {
	c := testContent()

	tests := []struct {
		name    string
		pattern string
		want    string
	}{
		{"single field", "{summary}", "New message"},
		{"mixed", "<{app}> {summary}: {body}", "<mail> New message: From Alice: lunch?"},
		{"level", "[{level}]", "[normal]"},
		{"unknown placeholder passes through", "{nope} {summary}", "{nope} New message"},
		{"unterminated brace passes through", "{summary} {body", "New message {body"},
		{"no placeholders", "plain text", "plain text"},
		{"empty pattern", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.pattern, c))
		})
	}
}

func TestFormatField(t *testing.T) {
	c := testContent()

	assert.Equal(t, "mail", FormatField(c, "app"))
	assert.Equal(t, "mail", FormatField(c, "APP_NAME"))
	assert.Equal(t, "New message", FormatField(c, "summary"))
	assert.Equal(t, "normal", FormatField(c, "urgency"))
	assert.Equal(t, "New message\nFrom Alice: lunch?", FormatField(c, "all"))
	assert.Equal(t, "New message", FormatField(c, "bogus"), "unknown fields fall back to summary")
}

func TestEscapeMarkup(t *testing.T) {
	assert.Equal(t, "a &amp;&amp; b", EscapeMarkup("a && b"))
	assert.Equal(t, "&lt;b&gt;bold&lt;/b&gt;", EscapeMarkup("<b>bold</b>"))
	assert.Equal(t, "plain", EscapeMarkup("plain"))
}

func TestHasMarkup(t *testing.T) {
	assert.True(t, HasMarkup("<b>hi</b>"))
	assert.False(t, HasMarkup("2 > 1"))
}

func TestSanitizeMarkup(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"supported tags survive", "<b>bold</b> and <i>italic</i>", "<b>bold</b> and <i>italic</i>"},
		{"links survive with attributes", `<a href="https://x">x</a>`, `<a href="https://x">x</a>`},
		{"unsupported tags stripped", "<script>alert(1)</script>", "alert(1)"},
		{"img stripped keeps nothing", `before <img src="x"/> after`, "before  after"},
		{"unterminated bracket escaped", "broken <b", "broken &lt;b"},
		{"mixed", "<b>ok</b> <blink>no</blink>", "<b>ok</b> no"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeMarkup(tt.in))
		})
	}
}
