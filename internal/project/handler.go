package project

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/saulo-duarte/studio-ops/internal/config"
)

type Handler struct {
	service ProjectService
}

func NewHandler(service ProjectService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var statuses []ProjectStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			statuses = append(statuses, ProjectStatus(strings.TrimSpace(s)))
		}
	}

	projects, err := h.service.ListProjects(r.Context(), statuses...)
	if err != nil {
		config.WriteError(w, r, err)
		return
	}
	config.JSON(w, http.StatusOK, projects)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.GetProjectDetail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		config.WriteError(w, r, err)
		return
	}
	config.JSON(w, http.StatusOK, detail)
}

func (h *Handler) Lock(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Lock(r.Context(), chi.URLParam(r, "id")); err != nil {
		config.WriteError(w, r, err)
		return
	}
	config.WriteResult(w, http.StatusOK, nil)
}

func (h *Handler) Unlock(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Unlock(r.Context(), chi.URLParam(r, "id")); err != nil {
		config.WriteError(w, r, err)
		return
	}
	config.WriteResult(w, http.StatusOK, nil)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteProject(r.Context(), chi.URLParam(r, "id")); err != nil {
		config.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
