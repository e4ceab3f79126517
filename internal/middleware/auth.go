package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// BearerAuth rejects requests whose Authorization header does not carry the
// configured secret. Comparison is constant time. No further processing
// happens on a mismatch; in particular no outbound calls are made.
func BearerAuth(token string) func(http.Handler) http.Handler {
	expected := []byte("Bearer " + token)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := []byte(r.Header.Get("Authorization"))
			if subtle.ConstantTimeCompare(got, expected) != 1 {
				log.Warn().
					Str("url", r.URL.String()).
					Str("remote_addr", r.RemoteAddr).
					Msg("rejected request with missing or invalid bearer token")

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)

				errorResponse := map[string]interface{}{
					"error": map[string]interface{}{
						"code":    "UNAUTHORIZED",
						"message": "Unauthorized",
					},
				}
				if err := json.NewEncoder(w).Encode(errorResponse); err != nil {
					http.Error(w, "Unauthorized", http.StatusUnauthorized)
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
