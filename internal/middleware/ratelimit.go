package middleware

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// RateLimit applies a per-client token bucket to incoming requests. The
// limiter is in-memory and therefore per-process; side-by-side processes each
// enforce their own budget.
func RateLimit(requestsPerMinute, burst int) func(http.Handler) http.Handler {
	limiter := newTokenBucketLimiter(requestsPerMinute, burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := clientIP(r)
			if !limiter.Allow(clientIP) {
				log.Warn().
					Str("client_ip", clientIP).
					Str("url", r.URL.String()).
					Msg("rate limit exceeded")

				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "60")
				w.WriteHeader(http.StatusTooManyRequests)

				errorResponse := map[string]interface{}{
					"error": map[string]interface{}{
						"code":    "RATE_LIMIT",
						"message": "Rate limit exceeded. Please try again later.",
					},
				}
				if err := json.NewEncoder(w).Encode(errorResponse); err != nil {
					http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if forwardedFor := r.Header.Get("X-Forwarded-For"); forwardedFor != "" {
		if i := strings.IndexByte(forwardedFor, ','); i > 0 {
			return forwardedFor[:i]
		}
		return forwardedFor
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return r.RemoteAddr
}

type tokenBucketLimiter struct {
	mu                sync.Mutex
	requestsPerMinute int
	burst             int
	clients           map[string]*bucket
}

type bucket struct {
	tokens     int
	lastRefill time.Time
}

func newTokenBucketLimiter(requestsPerMinute, burst int) *tokenBucketLimiter {
	return &tokenBucketLimiter{
		requestsPerMinute: requestsPerMinute,
		burst:             burst,
		clients:           make(map[string]*bucket),
	}
}

func (l *tokenBucketLimiter) Allow(clientIP string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	b, ok := l.clients[clientIP]
	if !ok {
		b = &bucket{tokens: l.burst, lastRefill: now}
		l.clients[clientIP] = b
	}

	refill := int(now.Sub(b.lastRefill).Minutes() * float64(l.requestsPerMinute))
	if refill > 0 {
		b.tokens = min(b.tokens+refill, l.burst)
		b.lastRefill = now
	}

	if b.tokens > 0 {
		b.tokens--
		return true
	}
	return false
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
