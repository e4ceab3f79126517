package intent

import (
	"context"
	"fmt"

	"intent-extractor/internal/keyring"
	"intent-extractor/internal/services/geo"
	"intent-extractor/internal/services/llm"
	"intent-extractor/internal/tokenizer"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// geoConcurrency bounds parallel geocoding lookups per request.
const geoConcurrency = 4

// Result pairs one raw completion with its postprocessed payload. Processed
// is always present: either a valid parse or the empty default.
type Result struct {
	String    string     `json:"string"`
	Processed Structured `json:"processed"`
}

// Service coordinates the extraction pipeline for one process: credential
// rotation, prompt construction, the batched completion call, and per-item
// postprocessing with optional geo enrichment. All configuration is injected
// at construction and immutable afterwards.
type Service struct {
	completer llm.Completer
	geocoder  geo.Geocoder // nil when geo enrichment is disabled
	ring      *keyring.Ring
	tok       *tokenizer.Tokenizer
	engine    string
	kinds     map[Kind]KindConfig
}

func NewService(completer llm.Completer, geocoder geo.Geocoder, ring *keyring.Ring, tok *tokenizer.Tokenizer, engine string, kinds map[Kind]KindConfig) (*Service, error) {
	if completer == nil {
		return nil, fmt.Errorf("completer is required")
	}
	if ring == nil {
		return nil, fmt.Errorf("key ring is required")
	}
	if tok == nil {
		return nil, fmt.Errorf("tokenizer is required")
	}
	for kind, kc := range kinds {
		if kind != KindAddress && kind != KindDetailedIntent {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
		}
		if kc.Template == nil {
			return nil, fmt.Errorf("kind %q has no template", kind)
		}
		if kc.MaxOutputTokens <= 0 {
			return nil, fmt.Errorf("kind %q has no output token budget", kind)
		}
	}
	return &Service{
		completer: completer,
		geocoder:  geocoder,
		ring:      ring,
		tok:       tok,
		engine:    engine,
		kinds:     kinds,
	}, nil
}

// Extract runs the full pipeline for one batch of inputs: one credential is
// drawn from the ring, every input becomes a prompt, all prompts go out in a
// single completion call, and each output is parsed independently. A
// malformed output is logged and replaced with the empty default; only an
// upstream failure fails the batch as a whole.
func (s *Service) Extract(ctx context.Context, kind Kind, inputs []string) ([]Result, error) {
	kc, ok := s.kinds[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	apiKey := s.ring.Next()

	prompts := make([]string, len(inputs))
	for i, input := range inputs {
		prompts[i] = kc.Template.Build(input, kc.MaxOutputTokens, s.tok)
	}

	outputs, err := s.completer.Complete(ctx, prompts, apiKey, llm.Params{
		Model:            s.engine,
		MaxTokens:        kc.MaxOutputTokens,
		Temperature:      kc.Temperature,
		TopP:             1,
		FrequencyPenalty: kc.FrequencyPenalty,
		PresencePenalty:  0,
		Stop:             StopSequence,
	})
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(outputs))
	for i, output := range outputs {
		processed, err := Parse(kind, output)
		if err != nil {
			log.Warn().Err(err).Str("output", output).Msg("completion parse failed, substituting empty result")
			processed = Empty()
		}
		results[i] = Result{String: output, Processed: processed}
	}

	if kind == KindAddress && s.geocoder != nil {
		s.enrich(ctx, results)
	}
	return results, nil
}

// enrich attaches geo locations to non-empty address results. Geocoding
// failures follow the same per-item recovery contract as parse failures: the
// lookup is logged and the geo field stays unset.
func (s *Service) enrich(ctx context.Context, results []Result) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(geoConcurrency)
	for i := range results {
		r := &results[i]
		if r.Processed.IsEmpty() || r.Processed.Address == "" {
			continue
		}
		g.Go(func() error {
			loc, err := s.geocoder.Lookup(ctx, r.Processed.Address)
			if err != nil {
				log.Warn().Err(err).Str("address", r.Processed.Address).Msg("geocoding failed, omitting geo field")
				return nil
			}
			r.Processed.Geo = loc
			return nil
		})
	}
	_ = g.Wait()
}
