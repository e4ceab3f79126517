package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"intent-extractor/internal/services/geo"
	"intent-extractor/internal/services/intent"
	"intent-extractor/internal/services/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "test-secret"

type fakeExtractor struct {
	calls   int
	kind    intent.Kind
	inputs  []string
	results []intent.Result
	err     error
}

func (f *fakeExtractor) Extract(_ context.Context, kind intent.Kind, inputs []string) ([]intent.Result, error) {
	f.calls++
	f.kind = kind
	f.inputs = inputs
	if f.err != nil {
		return nil, f.err
	}
	if kind != intent.KindAddress && kind != intent.KindDetailedIntent {
		return nil, fmt.Errorf("%w: %q", intent.ErrUnknownKind, kind)
	}
	return f.results, nil
}

func newTestServer(f *fakeExtractor) *httptest.Server {
	router := NewRouter(1000, 1000)
	router.RegisterIntentRoutes(NewIntentHandler(f), testToken)
	router.RegisterHealthRoutes()
	return httptest.NewServer(router)
}

func postExtract(t *testing.T, url string, body any, token string) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, url+"/intent-extractor/", bytes.NewReader(data))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestExtractEndToEnd(t *testing.T) {
	raw := `{"address": "123 Main St", "intent": ["meeting"], "detailed_intent_tags": []} `
	f := &fakeExtractor{results: []intent.Result{{
		String: raw,
		Processed: intent.Structured{
			Intent:             []string{"meeting"},
			DetailedIntentTags: []string{},
			Address:            "123 Main St",
			Geo:                &geo.Location{Lat: 40.7, Lon: -74.0},
		},
	}}}
	srv := newTestServer(f)
	defer srv.Close()

	resp := postExtract(t, srv.URL, ExtractRequest{
		Inputs: []string{"Meeting at 123 Main St http://t.co/x @alice"},
		Kind:   "address",
	}, testToken)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body ExtractResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Response, 1)

	item := body.Response[0]
	assert.Equal(t, raw, item.String)
	assert.Equal(t, "123 Main St", item.Processed.Address)
	require.NotNil(t, item.Processed.Geo)
	assert.InDelta(t, 40.7, item.Processed.Geo.Lat, 1e-9)

	assert.Equal(t, intent.KindAddress, f.kind)
	assert.Equal(t, []string{"Meeting at 123 Main St http://t.co/x @alice"}, f.inputs)
}

func TestExtractDefaultsToDetailedIntent(t *testing.T) {
	f := &fakeExtractor{results: []intent.Result{{String: "x", Processed: intent.Empty()}}}
	srv := newTestServer(f)
	defer srv.Close()

	resp := postExtract(t, srv.URL, ExtractRequest{Inputs: []string{"need water"}}, testToken)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, intent.KindDetailedIntent, f.kind)
}

func TestExtractMissingAuth(t *testing.T) {
	f := &fakeExtractor{}
	srv := newTestServer(f)
	defer srv.Close()

	resp := postExtract(t, srv.URL, ExtractRequest{Inputs: []string{"x"}}, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Zero(t, f.calls, "no extraction may run without auth")
}

func TestExtractWrongToken(t *testing.T) {
	f := &fakeExtractor{}
	srv := newTestServer(f)
	defer srv.Close()

	resp := postExtract(t, srv.URL, ExtractRequest{Inputs: []string{"x"}}, "wrong")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Zero(t, f.calls)
}

func TestExtractBadRequests(t *testing.T) {
	tests := []struct {
		name string
		body any
	}{
		{"empty inputs", ExtractRequest{Inputs: nil}},
		{"too many inputs", ExtractRequest{Inputs: make([]string, maxBatchSize+1)}},
		{"unknown kind", ExtractRequest{Inputs: []string{"x"}, Kind: "sentiment"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeExtractor{}
			srv := newTestServer(f)
			defer srv.Close()

			resp := postExtract(t, srv.URL, tt.body, testToken)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var body ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, ErrCodeBadRequest, body.Error.Code)
		})
	}
}

func TestExtractInvalidBody(t *testing.T) {
	f := &fakeExtractor{}
	srv := newTestServer(f)
	defer srv.Close()

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/intent-extractor/", bytes.NewReader([]byte("not json")))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+testToken)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, f.calls)
}

func TestExtractUpstreamFailure(t *testing.T) {
	f := &fakeExtractor{err: fmt.Errorf("completion: %w", llm.ErrUpstream)}
	srv := newTestServer(f)
	defer srv.Close()

	resp := postExtract(t, srv.URL, ExtractRequest{Inputs: []string{"x"}}, testToken)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, ErrCodeUpstream, body.Error.Code)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(&fakeExtractor{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "living the dream", body["status"])
}
