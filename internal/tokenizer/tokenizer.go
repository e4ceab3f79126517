package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultMaxContext is the context window assumed when the configured model
// is not known to the lookup table and no explicit override is set.
const DefaultMaxContext = 4097

// Tokenizer wraps a tiktoken encoding for counting and token-bounded
// truncation. The zero value is not usable; construct with New.
type Tokenizer struct {
	enc        *tiktoken.Tiktoken
	maxContext int
}

// New creates a Tokenizer for the given model name. Unknown models fall back
// to the cl100k_base encoding, which is a close approximation for modern
// completion models. maxContext <= 0 selects DefaultMaxContext.
func New(model string, maxContext int) (*Tokenizer, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, fmt.Errorf("tokenizer: get encoding: %w", err)
		}
	}
	if maxContext <= 0 {
		maxContext = DefaultMaxContext
	}
	return &Tokenizer{enc: enc, maxContext: maxContext}, nil
}

// MaxContext returns the model's maximum context size in tokens.
func (t *Tokenizer) MaxContext() int {
	return t.maxContext
}

// Count returns the number of tokens in s.
func (t *Tokenizer) Count(s string) int {
	if s == "" {
		return 0
	}
	// Allow special tokens so inputs containing sequences like
	// "<|endoftext|>" are counted instead of rejected.
	return len(t.enc.Encode(s, []string{"all"}, nil))
}

// Truncate returns s cut to at most maxTokens tokens, keeping the earliest
// tokens. maxTokens <= 0 yields the empty string.
func (t *Tokenizer) Truncate(s string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	tokens := t.enc.Encode(s, []string{"all"}, nil)
	if len(tokens) <= maxTokens {
		return s
	}
	return t.enc.Decode(tokens[:maxTokens])
}
