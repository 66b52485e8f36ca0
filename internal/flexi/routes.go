package flexi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/saulo-duarte/studio-ops/internal/auth"
)

func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/balances", h.Balances)
	r.Get("/credits", h.ListCredits)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAdmin)
		r.Post("/credits", h.AddCredit)
		r.Delete("/credits/{id}", h.DeleteCredit)
	})
	return r
}
