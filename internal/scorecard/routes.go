package scorecard

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/saulo-duarte/studio-ops/internal/auth"
)

func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/entries", h.GetEntries)
	r.Get("/categories", h.ListCategories)
	r.Get("/metrics", h.ListMetrics)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAdmin)
		r.Put("/entries", h.SaveEntry)
		r.Post("/sync", h.Sync)

		r.Put("/categories", h.SaveCategory)
		r.Delete("/categories/{id}", h.DeleteCategory)
		r.Put("/metrics", h.SaveMetric)
		r.Delete("/metrics/{id}", h.DeleteMetric)
	})
	return r
}
