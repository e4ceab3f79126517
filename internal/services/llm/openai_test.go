package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/openai/openai-go/v2/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChoice struct {
	Text         string `json:"text"`
	Index        int    `json:"index"`
	FinishReason string `json:"finish_reason"`
}

func completionBody(choices []stubChoice) []byte {
	body, _ := json.Marshal(map[string]any{
		"id":      "cmpl-test",
		"object":  "text_completion",
		"created": 1,
		"model":   "test-engine",
		"choices": choices,
	})
	return body
}

func testClient(srv *httptest.Server, retryFor time.Duration) *OpenAIClient {
	return NewOpenAIClient(5*time.Second, retryFor, option.WithBaseURL(srv.URL))
}

func TestCompleteBatch(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		// Out-of-order choices exercise index-based reassembly.
		w.Header().Set("Content-Type", "application/json")
		w.Write(completionBody([]stubChoice{
			{Text: "second", Index: 1, FinishReason: "stop"},
			{Text: "first", Index: 0, FinishReason: "stop"},
		}))
	}))
	defer srv.Close()

	client := testClient(srv, time.Second)
	outputs, err := client.Complete(context.Background(), []string{"p0", "p1"}, "rotated-key", Params{
		Model:       "test-engine",
		MaxTokens:   100,
		Temperature: 0.1,
		TopP:        1,
		Stop:        "#END",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, outputs)

	assert.Equal(t, "Bearer rotated-key", gotAuth)
	assert.Equal(t, "test-engine", gotBody["model"])
	assert.Equal(t, []any{"p0", "p1"}, gotBody["prompt"])
	assert.Equal(t, "#END", gotBody["stop"])
	assert.EqualValues(t, 100, gotBody["max_tokens"])
}

func TestCompleteRetriesTransientFailures(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"error": {"message": "boom"}}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(completionBody([]stubChoice{{Text: "ok", Index: 0, FinishReason: "stop"}}))
	}))
	defer srv.Close()

	client := testClient(srv, 30*time.Second)
	outputs, err := client.Complete(context.Background(), []string{"p"}, "k", Params{Model: "m", MaxTokens: 10, TopP: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"ok"}, outputs)
	assert.Equal(t, 3, calls)
}

func TestCompletePermanentFailure(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error": {"message": "bad prompt"}}`)
	}))
	defer srv.Close()

	client := testClient(srv, 30*time.Second)
	_, err := client.Complete(context.Background(), []string{"p"}, "k", Params{Model: "m", MaxTokens: 10, TopP: 1})
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Equal(t, 1, calls, "4xx must not be retried")
}

func TestCompleteExhaustsRetryWindow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error": {"message": "down"}}`)
	}))
	defer srv.Close()

	client := testClient(srv, 500*time.Millisecond)
	_, err := client.Complete(context.Background(), []string{"p"}, "k", Params{Model: "m", MaxTokens: 10, TopP: 1})
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestCompleteChoiceCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(completionBody([]stubChoice{{Text: "only one", Index: 0, FinishReason: "stop"}}))
	}))
	defer srv.Close()

	client := testClient(srv, time.Second)
	_, err := client.Complete(context.Background(), []string{"p0", "p1"}, "k", Params{Model: "m", MaxTokens: 10, TopP: 1})
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestCompleteRequiresKey(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	client := testClient(srv, time.Second)
	_, err := client.Complete(context.Background(), []string{"p"}, "", Params{Model: "m", MaxTokens: 10, TopP: 1})
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Zero(t, calls, "no request may be sent without a key")
}
