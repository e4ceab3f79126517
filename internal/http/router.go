package http

import (
	"net/http"
	"time"

	"intent-extractor/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Router struct {
	chi.Router
}

// NewRouter builds the shared middleware chain. Authentication is not
// applied here; the extraction handler mounts it on its own subtree so the
// health endpoints stay open.
func NewRouter(requestsPerMinute, burst int) *Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Use(middleware.Logging)
	r.Use(middleware.Recovery)
	r.Use(middleware.RateLimit(requestsPerMinute, burst))

	return &Router{r}
}

// RegisterIntentRoutes mounts the extraction endpoint behind bearer auth.
func (r *Router) RegisterIntentRoutes(h *IntentHandler, authToken string) {
	r.Group(func(g chi.Router) {
		g.Use(middleware.BearerAuth(authToken))
		g.Post("/intent-extractor/", h.Extract)
	})
}

// RegisterHealthRoutes registers liveness and readiness probes.
func (r *Router) RegisterHealthRoutes() {
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"living the dream"}`))
	})

	r.Get("/ready", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	})
}
