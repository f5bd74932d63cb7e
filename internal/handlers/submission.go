package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/formflow/formflow-api/internal/authz"
	"github.com/formflow/formflow-api/internal/lifecycle"
	"github.com/formflow/formflow-api/internal/models"
)

type SubmissionHandler struct {
	lifecycle lifecycle.Service
	logger    zerolog.Logger
}

func NewSubmissionHandler(lc lifecycle.Service, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		lifecycle: lc,
		logger:    logger.With().Str("handler", "submission").Logger(),
	}
}

func (h *SubmissionHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := authz.PrincipalFromRequest(r)
	if !ok {
		http.Error(w, "Missing principal", http.StatusUnauthorized)
		return
	}

	var payload struct {
		FormatID int64          `json:"format_id"`
		Data     map[string]any `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	submission, err := h.lifecycle.Create(r.Context(), p, payload.FormatID, payload.Data)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, submission)
}

func (h *SubmissionHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	p, ok := authz.PrincipalFromRequest(r)
	if !ok {
		http.Error(w, "Missing principal", http.StatusUnauthorized)
		return
	}
	submissions, err := h.lifecycle.ListMine(r.Context(), p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, submissions)
}

func (h *SubmissionHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	p, ok := authz.PrincipalFromRequest(r)
	if !ok {
		http.Error(w, "Missing principal", http.StatusUnauthorized)
		return
	}
	submissions, err := h.lifecycle.ListAll(r.Context(), p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, submissions)
}

func (h *SubmissionHandler) Get(w http.ResponseWriter, r *http.Request) {
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
	submission, err := h.lifecycle.Get(r.Context(), p, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, submission)
}

func (h *SubmissionHandler) Edit(w http.ResponseWriter, r *http.Request) {
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

	var payload struct {
		Data map[string]any `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	submission, err := h.lifecycle.Edit(r.Context(), p, id, payload.Data)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, submission)
}

func (h *SubmissionHandler) Resubmit(w http.ResponseWriter, r *http.Request) {
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

	var payload struct {
		Data map[string]any `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	submission, err := h.lifecycle.Resubmit(r.Context(), p, id, payload.Data)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, submission)
}

func (h *SubmissionHandler) Decide(w http.ResponseWriter, r *http.Request) {
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

	var payload struct {
		Decision     models.SubmissionStatus `json:"decision"`
		Observations string                  `json:"observations"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	validation, err := h.lifecycle.Decide(r.Context(), p, id, payload.Decision, payload.Observations)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, validation)
}
