package flexi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/saulo-duarte/studio-ops/internal/apperror"
	"github.com/saulo-duarte/studio-ops/internal/config"
)

type Handler struct {
	service FlexiService
}

func NewHandler(service FlexiService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) ListCredits(w http.ResponseWriter, r *http.Request) {
	credits, err := h.service.ListCredits(r.Context(), r.URL.Query().Get("client"))
	if err != nil {
		config.WriteError(w, r, err)
		return
	}
	config.JSON(w, http.StatusOK, credits)
}

func (h *Handler) AddCredit(w http.ResponseWriter, r *http.Request) {
	var dto CreateCreditDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		config.WriteError(w, r, apperror.Invalid("invalid request body"))
		return
	}

	credit, err := h.service.AddCredit(r.Context(), dto)
	if err != nil {
		config.WriteError(w, r, err)
		return
	}
	config.JSON(w, http.StatusCreated, credit)
}

func (h *Handler) DeleteCredit(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		config.WriteError(w, r, apperror.Invalid("invalid credit id"))
		return
	}
	if err := h.service.DeleteCredit(r.Context(), id); err != nil {
		config.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Balances(w http.ResponseWriter, r *http.Request) {
	balances, err := h.service.Balances(r.Context())
	if err != nil {
		config.WriteError(w, r, err)
		return
	}
	config.JSON(w, http.StatusOK, balances)
}
