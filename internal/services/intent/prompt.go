package intent

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"intent-extractor/internal/tokenizer"
)

// InputPlaceholder is the substitution point every prompt template must
// contain exactly once.
const InputPlaceholder = "{input}"

// ErrBadTemplate indicates a template with zero or multiple insertion points.
// This is a configuration fault caught at load time, never at request time.
var ErrBadTemplate = errors.New("invalid prompt template")

// PromptTemplate is an immutable prompt skeleton loaded once at startup. The
// token count of the skeleton is cached so per-request budgeting only has to
// count the input text.
type PromptTemplate struct {
	text   string
	tokens int
}

// NewPromptTemplate validates and wraps a template string.
func NewPromptTemplate(text string, tok *tokenizer.Tokenizer) (*PromptTemplate, error) {
	if n := strings.Count(text, InputPlaceholder); n != 1 {
		return nil, fmt.Errorf("%w: found %d occurrences of %q, want exactly 1", ErrBadTemplate, n, InputPlaceholder)
	}
	return &PromptTemplate{text: text, tokens: tok.Count(text)}, nil
}

// LoadPromptTemplate reads and validates a template file.
func LoadPromptTemplate(path string, tok *tokenizer.Tokenizer) (*PromptTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompt template: %w", err)
	}
	tpl, err := NewPromptTemplate(string(data), tok)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tpl, nil
}

// Tokens returns the cached token count of the template skeleton.
func (t *PromptTemplate) Tokens() int {
	return t.tokens
}

// Build sanitizes text, truncates it so that the finished prompt plus
// reservedOutput tokens fit within the model context, and substitutes it into
// the template. Truncation keeps the earliest tokens. When the template and
// the output reservation leave no room at all, the input degrades to the
// empty string rather than failing; the policy applies uniformly to every
// input in a batch.
func (t *PromptTemplate) Build(text string, reservedOutput int, tok *tokenizer.Tokenizer) string {
	budget := tok.MaxContext() - reservedOutput - t.tokens
	truncated := tok.Truncate(Sanitize(text), budget)
	return strings.Replace(t.text, InputPlaceholder, truncated, 1)
}
