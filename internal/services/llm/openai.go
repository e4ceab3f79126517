package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/rs/zerolog/log"
)

// OpenAIClient calls the legacy completions endpoint through openai-go. One
// shared client is constructed without a credential; the rotating API key is
// attached per request.
type OpenAIClient struct {
	client      openai.Client
	callTimeout time.Duration
	retryFor    time.Duration
}

func NewOpenAIClient(callTimeout, retryFor time.Duration, opts ...option.RequestOption) *OpenAIClient {
	if callTimeout <= 0 {
		callTimeout = 60 * time.Second
	}
	if retryFor <= 0 {
		retryFor = 2 * time.Minute
	}
	// The SDK's built-in retry is disabled; backoff below owns the policy.
	opts = append([]option.RequestOption{option.WithMaxRetries(0)}, opts...)
	return &OpenAIClient{
		client:      openai.NewClient(opts...),
		callTimeout: callTimeout,
		retryFor:    retryFor,
	}
}

// Complete sends all prompts in one batched call. Transient failures are
// retried with exponential backoff until the retry window closes; 4xx
// responses other than 429 are permanent. On exhaustion the error wraps
// ErrUpstream and the whole batch fails.
func (c *OpenAIClient) Complete(ctx context.Context, prompts []string, apiKey string, p Params) ([]string, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: no API key", ErrUpstream)
	}

	params := openai.CompletionNewParams{
		Model:            openai.CompletionNewParamsModel(p.Model),
		Prompt:           openai.CompletionNewParamsPromptUnion{OfArrayOfStrings: prompts},
		MaxTokens:        openai.Int(int64(p.MaxTokens)),
		Temperature:      openai.Float(p.Temperature),
		TopP:             openai.Float(p.TopP),
		FrequencyPenalty: openai.Float(p.FrequencyPenalty),
		PresencePenalty:  openai.Float(p.PresencePenalty),
	}
	if p.Stop != "" {
		params.Stop = openai.CompletionNewParamsStopUnion{OfString: openai.String(p.Stop)}
	}

	var completion *openai.Completion
	op := func() error {
		callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
		defer cancel()

		resp, err := c.client.Completions.New(callCtx, params, option.WithAPIKey(apiKey))
		if err != nil {
			var apiErr *openai.Error
			if errors.As(err, &apiErr) {
				if apiErr.StatusCode == 429 {
					log.Warn().Int("status", apiErr.StatusCode).Str("model", p.Model).Msg("completion rate limited")
					return err
				}
				if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
					return backoff.Permanent(err)
				}
			}
			return err
		}
		completion = resp
		return nil
	}

	expo := backoff.NewExponentialBackOff()
	expo.MaxElapsedTime = c.retryFor
	if err := backoff.Retry(op, backoff.WithContext(expo, ctx)); err != nil {
		log.Error().Err(err).Str("model", p.Model).Int("prompts", len(prompts)).Msg("completion failed after retries")
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if len(completion.Choices) != len(prompts) {
		return nil, fmt.Errorf("%w: got %d choices for %d prompts", ErrUpstream, len(completion.Choices), len(prompts))
	}

	// Choices carry an index; order outputs by it rather than trusting
	// response ordering.
	outputs := make([]string, len(prompts))
	for _, choice := range completion.Choices {
		if int(choice.Index) >= len(outputs) {
			return nil, fmt.Errorf("%w: choice index %d out of range", ErrUpstream, choice.Index)
		}
		outputs[choice.Index] = choice.Text
	}
	return outputs, nil
}
