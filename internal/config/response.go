package config

import (
	"encoding/json"
	"net/http"

	"github.com/saulo-duarte/studio-ops/internal/apperror"
)

// Result is the envelope every mutating endpoint answers with.
type Result struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		Logger.WithError(err).Error("Failed to encode JSON response")
	}
}

func WriteResult(w http.ResponseWriter, status int, data interface{}) {
	JSON(w, status, Result{Success: true, Data: data})
}

// WriteError converts err into a failed Result with a status derived from its kind.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperror.KindOf(err)
	status := StatusFor(kind)

	log := WithContext(r.Context()).WithError(err).WithField("kind", kind)
	if status >= http.StatusInternalServerError {
		log.Error("Request failed")
	} else {
		log.Warn("Request rejected")
	}

	JSON(w, status, Result{Success: false, Message: apperror.PublicMessage(err)})
}

func StatusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindInvalid:
		return http.StatusBadRequest
	case apperror.KindUnauthorized:
		return http.StatusUnauthorized
	case apperror.KindForbidden:
		return http.StatusForbidden
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindIntegrity:
		return http.StatusConflict
	case apperror.KindNotConfigured:
		return http.StatusPreconditionFailed
	case apperror.KindUpstreamFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
