package project

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/saulo-duarte/studio-ops/internal/auth"
)

func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/{id}", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAdmin)
		r.Post("/{id}/lock", h.Lock)
		r.Post("/{id}/unlock", h.Unlock)
		r.Delete("/{id}", h.Delete)
	})
	return r
}
