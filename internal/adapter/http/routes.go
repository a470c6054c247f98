package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MountRoutes registers the compile API on the given chi router. compileMW
// wraps only the compile endpoint (rate limiting).
func MountRoutes(r chi.Router, h *Handlers, compileMW ...func(http.Handler) http.Handler) {
	r.Get("/health", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"version":"0.1.0"}`))
		})
		r.With(compileMW...).Post("/compile", h.Compile)
	})
}
