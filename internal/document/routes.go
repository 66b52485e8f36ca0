package document

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/saulo-duarte/studio-ops/internal/auth"
)

func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/{id}/download", h.Download)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAdmin)
		r.Post("/", h.Register)
		r.Delete("/{id}", h.Delete)
	})
	return r
}
