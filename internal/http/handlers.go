package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"intent-extractor/internal/services/intent"
	"intent-extractor/internal/services/llm"

	"github.com/rs/zerolog/log"
)

// maxBatchSize bounds how many inputs one request may carry. Everything in a
// batch goes out as a single completion call, so the bound also caps outbound
// request size.
const maxBatchSize = 50

// Extractor is what the handler needs from the intent service.
type Extractor interface {
	Extract(ctx context.Context, kind intent.Kind, inputs []string) ([]intent.Result, error)
}

// IntentHandler handles extraction HTTP requests.
type IntentHandler struct {
	service Extractor
}

func NewIntentHandler(service Extractor) *IntentHandler {
	return &IntentHandler{service: service}
}

// Extract handles POST /intent-extractor/.
func (h *IntentHandler) Extract(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
		return
	}

	if len(req.Inputs) == 0 {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "inputs is required")
		return
	}
	if len(req.Inputs) > maxBatchSize {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "too many inputs in one batch")
		return
	}

	kind := intent.Kind(req.Kind)
	if req.Kind == "" {
		kind = intent.KindDetailedIntent
	}

	results, err := h.service.Extract(r.Context(), kind, req.Inputs)
	if err != nil {
		switch {
		case errors.Is(err, intent.ErrUnknownKind):
			writeError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		case errors.Is(err, llm.ErrUpstream):
			log.Error().Err(err).Int("inputs", len(req.Inputs)).Msg("extraction failed upstream")
			writeError(w, http.StatusBadGateway, ErrCodeUpstream, "completion backend unavailable")
		default:
			log.Error().Err(err).Msg("extraction failed")
			writeError(w, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(ExtractResponse{Response: results}); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(NewErrorResponse(code, message)); err != nil {
		http.Error(w, message, status)
	}
}
