package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/formflow/formflow-api/internal/authz"
	"github.com/formflow/formflow-api/internal/lifecycle"
)

type ValidationHandler struct {
	lifecycle lifecycle.Service
	logger    zerolog.Logger
}

func NewValidationHandler(lc lifecycle.Service, logger zerolog.Logger) *ValidationHandler {
	return &ValidationHandler{
		lifecycle: lc,
		logger:    logger.With().Str("handler", "validation").Logger(),
	}
}

func (h *ValidationHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := authz.PrincipalFromRequest(r)
	if !ok {
		http.Error(w, "Missing principal", http.StatusUnauthorized)
		return
	}
	validations, err := h.lifecycle.ListValidations(r.Context(), p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, validations)
}

// ListPending returns the open validation of every submission whose current
// status is pending, regardless of how many reject/resubmit cycles it has
// been through.
func (h *ValidationHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	p, ok := authz.PrincipalFromRequest(r)
	if !ok {
		http.Error(w, "Missing principal", http.StatusUnauthorized)
		return
	}
	validations, err := h.lifecycle.ListPendingValidations(r.Context(), p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, validations)
}

func (h *ValidationHandler) GetForSubmission(w http.ResponseWriter, r *http.Request) {
	p, ok := authz.PrincipalFromRequest(r)
	if !ok {
		http.Error(w, "Missing principal", http.StatusUnauthorized)
		return
	}
	id, err := pathID(r, "submissionID")
	if err != nil {
		writeError(w, err)
		return
	}
	validation, err := h.lifecycle.ValidationForSubmission(r.Context(), p, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, validation)
}

func (h *ValidationHandler) History(w http.ResponseWriter, r *http.Request) {
	p, ok := authz.PrincipalFromRequest(r)
	if !ok {
		http.Error(w, "Missing principal", http.StatusUnauthorized)
		return
	}
	id, err := pathID(r, "submissionID")
	if err != nil {
		writeError(w, err)
		return
	}
	history, err := h.lifecycle.ValidationHistory(r.Context(), p, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}
