package http

import "intent-extractor/internal/services/intent"

// ExtractRequest is the body of POST /intent-extractor/. Kind is optional and
// defaults to detailed_intent, matching the original route behavior.
type ExtractRequest struct {
	Inputs []string `json:"inputs"`
	Kind   string   `json:"kind,omitempty"`
}

// ExtractResponse wraps the per-input results.
type ExtractResponse struct {
	Response []intent.Result `json:"response"`
}

// ErrorResponse is the JSON error envelope used across the service.
type ErrorResponse struct {
	Error ErrorInfo `json:"error"`
}

// ErrorInfo carries a machine-readable code with a human message.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeUpstream     = "UPSTREAM_ERROR"
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeRateLimit    = "RATE_LIMIT"
)

// NewErrorResponse creates an error envelope.
func NewErrorResponse(code, message string) *ErrorResponse {
	return &ErrorResponse{Error: ErrorInfo{Code: code, Message: message}}
}
