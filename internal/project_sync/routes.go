package projectsync

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/saulo-duarte/studio-ops/internal/auth"
)

func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(auth.RequireAdmin)

	r.Post("/", h.Sync)
	r.Get("/stream", h.Stream)
	r.Post("/dedupe", h.Dedupe)
	return r
}
