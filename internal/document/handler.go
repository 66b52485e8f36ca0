package document

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/saulo-duarte/studio-ops/internal/apperror"
	"github.com/saulo-duarte/studio-ops/internal/config"
)

type Handler struct {
	service DocumentService
}

func NewHandler(service DocumentService) *Handler {
	return &Handler{service: service}
}

func parseID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, apperror.Invalid("invalid document id")
	}
	return id, nil
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var projectID *uuid.UUID
	if raw := r.URL.Query().Get("project_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			config.WriteError(w, r, apperror.Invalid("invalid project_id"))
			return
		}
		projectID = &id
	}

	docs, err := h.service.List(r.Context(), projectID)
	if err != nil {
		config.WriteError(w, r, err)
		return
	}
	config.JSON(w, http.StatusOK, docs)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var dto RegisterDocumentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		config.WriteError(w, r, apperror.Invalid("invalid request body"))
		return
	}

	doc, err := h.service.Register(r.Context(), dto)
	if err != nil {
		config.WriteError(w, r, err)
		return
	}
	config.JSON(w, http.StatusCreated, doc)
}

func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		config.WriteError(w, r, err)
		return
	}

	link, err := h.service.DownloadLink(r.Context(), id)
	if err != nil {
		config.WriteError(w, r, err)
		return
	}
	if r.URL.Query().Get("redirect") == "true" {
		http.Redirect(w, r, link.URL, http.StatusFound)
		return
	}
	config.JSON(w, http.StatusOK, link)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		config.WriteError(w, r, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		config.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
