package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/formflow/formflow-api/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeError maps the shared error taxonomy onto HTTP statuses so clients
// can tell exactly which guard failed.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperr.ErrInvalid):
		status = http.StatusBadRequest
	case errors.Is(err, apperr.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperr.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, apperr.ErrAlreadyDecided), errors.Is(err, apperr.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.Is(err, apperr.ErrTimeout):
		status = http.StatusGatewayTimeout
	case errors.Is(err, apperr.ErrRender):
		status = http.StatusBadGateway
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
