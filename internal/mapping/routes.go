package mapping

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/saulo-duarte/studio-ops/internal/auth"
)

func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(auth.RequireAdmin)

	r.Get("/columns", h.ListMappings)
	r.Put("/columns", h.UpsertMapping)
	r.Delete("/columns/{id}", h.DeleteMapping)

	r.Get("/boards", h.ListBoards)
	r.Put("/boards", h.UpsertBoard)
	r.Delete("/boards/{boardID}", h.DeleteBoard)
	return r
}
