package scorecard

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/saulo-duarte/studio-ops/internal/apperror"
	"github.com/saulo-duarte/studio-ops/internal/config"
	util "github.com/saulo-duarte/studio-ops/internal/utils"
)

type Handler struct {
	service     ScorecardService
	recentWeeks int
}

func NewHandler(service ScorecardService, recentWeeks int) *Handler {
	if recentWeeks <= 0 {
		recentWeeks = 3
	}
	return &Handler{service: service, recentWeeks: recentWeeks}
}

// GetEntries serves ?weeks=2024-01-01,2024-01-08 or ?recent=N.
func (h *Handler) GetEntries(w http.ResponseWriter, r *http.Request) {
	weeks, err := h.parseWeeks(r)
	if err != nil {
		config.WriteError(w, r, err)
		return
	}

	grid, err := h.service.GetEntriesForWeeks(r.Context(), weeks)
	if err != nil {
		config.WriteError(w, r, err)
		return
	}
	config.JSON(w, http.StatusOK, grid)
}

func (h *Handler) parseWeeks(r *http.Request) ([]util.Date, error) {
	q := r.URL.Query()
	if raw := q.Get("weeks"); raw != "" {
		var weeks []util.Date
		for _, part := range strings.Split(raw, ",") {
			d, err := util.ParseDate(part)
			if err != nil {
				return nil, apperror.Invalid("weeks must be a comma separated list of YYYY-MM-DD dates")
			}
			weeks = append(weeks, d)
		}
		return weeks, nil
	}

	n := h.recentWeeks
	if raw := q.Get("recent"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 52 {
			return nil, apperror.Invalid("recent must be between 1 and 52")
		}
		n = parsed
	}
	return util.RecentWeekStarts(util.DateOf(time.Now()), n), nil
}

func (h *Handler) SaveEntry(w http.ResponseWriter, r *http.Request) {
	var dto SaveEntryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		config.WriteError(w, r, apperror.Invalid("invalid request body"))
		return
	}

	entry, err := h.service.SaveEntry(r.Context(), dto)
	if err != nil {
		config.WriteError(w, r, err)
		return
	}
	config.WriteResult(w, http.StatusOK, entry)
}

// Sync reconciles one week when a week is given, otherwise the recent weeks.
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	var req SyncRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			config.WriteError(w, r, apperror.Invalid("invalid request body"))
			return
		}
	}

	var (
		result *SyncResult
		err    error
	)
	if req.Week != nil && !req.Week.IsZero() {
		result, err = h.service.ReconcileWeek(r.Context(), *req.Week)
	} else {
		n := req.Weeks
		if n <= 0 {
			n = h.recentWeeks
		}
		result, err = h.service.ReconcileRecentWeeks(r.Context(), n)
	}
	if err != nil {
		config.WriteError(w, r, err)
		return
	}
	config.WriteResult(w, http.StatusOK, result)
}

// Cron runs the weekly backfill of recent weeks.
func (h *Handler) Cron(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ReconcileRecentWeeks(r.Context(), h.recentWeeks)
	if err != nil {
		config.WriteError(w, r, err)
		return
	}
	config.WriteResult(w, http.StatusOK, result)
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		config.WriteError(w, r, err)
		return
	}
	config.JSON(w, http.StatusOK, categories)
}

func (h *Handler) SaveCategory(w http.ResponseWriter, r *http.Request) {
	var dto SaveCategoryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		config.WriteError(w, r, apperror.Invalid("invalid request body"))
		return
	}
	c, err := h.service.SaveCategory(r.Context(), dto)
	if err != nil {
		config.WriteError(w, r, err)
		return
	}
	config.WriteResult(w, http.StatusOK, c)
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		config.WriteError(w, r, apperror.Invalid("invalid category id"))
		return
	}
	if err := h.service.DeleteCategory(r.Context(), id); err != nil {
		config.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListMetrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.service.ListMetrics(r.Context())
	if err != nil {
		config.WriteError(w, r, err)
		return
	}
	config.JSON(w, http.StatusOK, metrics)
}

func (h *Handler) SaveMetric(w http.ResponseWriter, r *http.Request) {
	var dto SaveMetricDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		config.WriteError(w, r, apperror.Invalid("invalid request body"))
		return
	}
	m, err := h.service.SaveMetric(r.Context(), dto)
	if err != nil {
		config.WriteError(w, r, err)
		return
	}
	config.WriteResult(w, http.StatusOK, m)
}

func (h *Handler) DeleteMetric(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		config.WriteError(w, r, apperror.Invalid("invalid metric id"))
		return
	}
	if err := h.service.DeleteMetric(r.Context(), id); err != nil {
		config.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
