package user

import (
	"github.com/go-chi/chi/v5"
	"github.com/saulo-duarte/studio-ops/internal/auth"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/me", h.GetUser)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAdmin)
		r.Get("/", h.List)
		r.Put("/{id}/role", h.ChangeRole)
	})
	return r
}
