package llm

import (
	"context"
	"errors"
)

// ErrUpstream marks a completion call that failed after retries. Handlers map
// it to a 5xx-class response; no partial batch results are produced.
var ErrUpstream = errors.New("upstream completion failed")

// Params holds the sampling parameters for one completion batch. They are
// fixed per intent kind; request payloads cannot override them.
type Params struct {
	Model            string
	MaxTokens        int
	Temperature      float64
	TopP             float64
	FrequencyPenalty float64
	PresencePenalty  float64
	Stop             string
}

// Completer sends a batch of prompts to a completion endpoint in a single
// call and returns one raw output per prompt, in prompt order. The credential
// is chosen per call so outbound load can rotate over a key pool.
type Completer interface {
	Complete(ctx context.Context, prompts []string, apiKey string, p Params) ([]string, error)
}
