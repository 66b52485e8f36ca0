package timeentry

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/saulo-duarte/studio-ops/internal/apperror"
	"github.com/saulo-duarte/studio-ops/internal/config"
	util "github.com/saulo-duarte/studio-ops/internal/utils"
)

type Handler struct {
	service TimeEntryService
}

func NewHandler(service TimeEntryService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto CreateTimeEntryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		config.WriteError(w, r, apperror.Invalid("invalid request body"))
		return
	}

	entry, err := h.service.Create(r.Context(), dto)
	if err != nil {
		config.WriteError(w, r, err)
		return
	}
	config.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		config.WriteError(w, r, apperror.Invalid("invalid time entry id"))
		return
	}

	var dto UpdateTimeEntryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		config.WriteError(w, r, apperror.Invalid("invalid request body"))
		return
	}

	entry, err := h.service.Update(r.Context(), id, dto)
	if err != nil {
		config.WriteError(w, r, err)
		return
	}
	config.JSON(w, http.StatusOK, entry)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		config.WriteError(w, r, apperror.Invalid("invalid time entry id"))
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		config.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListMine returns the caller's entries for the week containing ?week=YYYY-MM-DD
// (defaults to the current week).
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	week := util.DateOf(time.Now())
	if raw := r.URL.Query().Get("week"); raw != "" {
		d, err := util.ParseDate(raw)
		if err != nil {
			config.WriteError(w, r, apperror.Invalid("week must be YYYY-MM-DD"))
			return
		}
		week = d
	}

	entries, err := h.service.ListMineForWeek(r.Context(), week)
	if err != nil {
		config.WriteError(w, r, err)
		return
	}
	config.JSON(w, http.StatusOK, entries)
}
