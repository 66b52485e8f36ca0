package projectsync

import (
	"net/http"

	"github.com/saulo-duarte/studio-ops/internal/apperror"
	"github.com/saulo-duarte/studio-ops/internal/config"
	"github.com/saulo-duarte/studio-ops/internal/sse"
)

type Handler struct {
	service SyncService
}

func NewHandler(service SyncService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.SyncAll(r.Context(), nil)
	if err != nil {
		config.WriteError(w, r, err)
		return
	}
	config.WriteResult(w, http.StatusOK, report)
}

// Stream runs a full sync and pushes each progress step as a server-sent
// event, closing with a "done" or "error" event.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	stream, err := sse.NewStream(w)
	if err != nil {
		config.WriteError(w, r, apperror.Wrap(apperror.KindInternal, "streaming unsupported", err))
		return
	}

	send := func(ev *sse.Event) {
		if err := stream.Send(ev); err != nil {
			log.WithError(err).Debug("Failed to write sync event")
		}
	}

	report, err := h.service.SyncAll(r.Context(), func(p Progress) {
		send(&sse.Event{Name: "progress", Data: p})
	})
	if err != nil {
		send(&sse.Event{Name: "error", Data: map[string]string{
			"kind":    string(apperror.KindOf(err)),
			"message": apperror.PublicMessage(err),
		}})
		return
	}
	send(&sse.Event{Name: "done", Data: report})
}

func (h *Handler) Dedupe(w http.ResponseWriter, r *http.Request) {
	removed, err := h.service.MergeDuplicates(r.Context())
	if err != nil {
		config.WriteError(w, r, err)
		return
	}
	config.WriteResult(w, http.StatusOK, map[string]int{"removed": removed})
}

// Cron is the scheduled entry point; it behaves like Sync.
func (h *Handler) Cron(w http.ResponseWriter, r *http.Request) {
	h.Sync(w, r)
}
