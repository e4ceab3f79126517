package intent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeRemovesMentions(t *testing.T) {
	out := Sanitize("@alice hello @bob")
	assert.NotContains(t, out, "@alice")
	assert.NotContains(t, out, "@bob")
	assert.Contains(t, out, "hello")
}

func TestSanitizeRemovesURLs(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"scheme and path", "check http://example.com/path now"},
		{"https", "see https://example.org please"},
		{"www without scheme", "go to www.example.com today"},
		{"bare host", "shortened t.co/abc123 link"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Sanitize(tt.input)
			assert.NotContains(t, out, "http://")
			assert.NotContains(t, out, "https://")
			assert.NotContains(t, out, "example.com")
			assert.NotContains(t, out, "example.org")
			assert.NotContains(t, out, "t.co")
		})
	}
}

func TestSanitizeCollapsesWhitespace(t *testing.T) {
	out := Sanitize("too   many\n\nspaces\t\there")
	assert.NotContains(t, out, "  ")
	assert.NotContains(t, out, "\n")
	assert.NotContains(t, out, "\t")
	assert.Contains(t, out, "too many spaces here")
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"plain text with no noise",
		"@alice check http://example.com/path   now",
		"Meeting at 123 Main St http://t.co/x @alice",
		"   leading and trailing   ",
		strings.Repeat("@user www.spam.io ", 20),
	}
	for _, in := range inputs {
		once := Sanitize(in)
		assert.Equal(t, once, Sanitize(once), "input %q", in)
	}
}

func TestSanitizeKeepsAddressText(t *testing.T) {
	out := Sanitize("Meeting at 123 Main St http://t.co/x @alice")
	assert.Contains(t, out, "123 Main St")
}
