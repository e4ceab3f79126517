package intent

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"intent-extractor/internal/services/geo"
)

// Structured is the typed representation of one raw model completion.
type Structured struct {
	Intent             []string      `json:"intent"`
	DetailedIntentTags []string      `json:"detailed_intent_tags"`
	Address            string        `json:"address,omitempty"`
	Geo                *geo.Location `json:"geo,omitempty"`
}

// Empty returns the documented fallback payload substituted when a completion
// cannot be parsed. Slices are non-nil so the JSON encoding is always
// {"intent":[],"detailed_intent_tags":[]} rather than nulls.
func Empty() Structured {
	return Structured{Intent: []string{}, DetailedIntentTags: []string{}}
}

// IsEmpty reports whether the result carries no extracted information.
func (s Structured) IsEmpty() bool {
	return len(s.Intent) == 0 && len(s.DetailedIntentTags) == 0 && s.Address == ""
}

// Parse interprets a raw completion according to the kind's rules. Failures
// come back as errors, never panics; the caller chooses the substitution
// policy. Completions are expected to be JSON objects, but models wrap them
// in prose or code fences often enough that recovery tries, in order: a
// direct parse, the span from first "{" to last "}", and a fenced block.
func Parse(kind Kind, raw string) (Structured, error) {
	payload, err := recoverJSON(raw)
	if err != nil {
		return Structured{}, err
	}

	if payload.Intent == nil {
		payload.Intent = []string{}
	}
	if payload.DetailedIntentTags == nil {
		payload.DetailedIntentTags = []string{}
	}
	payload.Address = strings.TrimSpace(payload.Address)

	if kind == KindAddress && payload.Address == "" {
		return Structured{}, errors.New(`address completion missing "address" field`)
	}
	return payload, nil
}

func recoverJSON(raw string) (Structured, error) {
	text := strings.TrimSpace(raw)

	var out Structured
	if err := json.Unmarshal([]byte(text), &out); err == nil {
		return out, nil
	}

	if start := strings.Index(text, "{"); start >= 0 {
		if end := strings.LastIndex(text, "}"); end > start {
			if err := json.Unmarshal([]byte(text[start:end+1]), &out); err == nil {
				return out, nil
			}
		}
	}

	if idx := strings.Index(text, "```"); idx >= 0 {
		after := text[idx+3:]
		after = strings.TrimPrefix(after, "json")
		if end := strings.Index(after, "```"); end >= 0 {
			fenced := strings.TrimSpace(after[:end])
			if err := json.Unmarshal([]byte(fenced), &out); err == nil {
				return out, nil
			}
		}
	}

	return Structured{}, fmt.Errorf("no parseable JSON object in completion %q", truncateForError(text))
}

// truncateForError keeps log lines bounded when a completion is garbage.
func truncateForError(s string) string {
	const limit = 256
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
