package mapping

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/saulo-duarte/studio-ops/internal/apperror"
	"github.com/saulo-duarte/studio-ops/internal/config"
)

type Handler struct {
	service MappingService
}

func NewHandler(service MappingService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) ListMappings(w http.ResponseWriter, r *http.Request) {
	mappings, err := h.service.ListMappings(r.Context())
	if err != nil {
		config.WriteError(w, r, err)
		return
	}
	config.JSON(w, http.StatusOK, mappings)
}

func (h *Handler) UpsertMapping(w http.ResponseWriter, r *http.Request) {
	var dto UpsertMappingDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		config.WriteError(w, r, apperror.Invalid("invalid request body"))
		return
	}

	m, err := h.service.UpsertMapping(r.Context(), dto)
	if err != nil {
		config.WriteError(w, r, err)
		return
	}
	config.JSON(w, http.StatusOK, m)
}

func (h *Handler) DeleteMapping(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		config.WriteError(w, r, apperror.Invalid("invalid mapping id"))
		return
	}
	if err := h.service.DeleteMapping(r.Context(), id); err != nil {
		config.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListBoards(w http.ResponseWriter, r *http.Request) {
	boards, err := h.service.ListBoards(r.Context())
	if err != nil {
		config.WriteError(w, r, err)
		return
	}
	config.JSON(w, http.StatusOK, boards)
}

func (h *Handler) UpsertBoard(w http.ResponseWriter, r *http.Request) {
	var dto UpsertBoardDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		config.WriteError(w, r, apperror.Invalid("invalid request body"))
		return
	}

	b, err := h.service.UpsertBoard(r.Context(), dto)
	if err != nil {
		config.WriteError(w, r, err)
		return
	}
	config.JSON(w, http.StatusOK, b)
}

func (h *Handler) DeleteBoard(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteBoard(r.Context(), chi.URLParam(r, "boardID")); err != nil {
		config.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
