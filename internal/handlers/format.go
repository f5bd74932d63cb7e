package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/formflow/formflow-api/internal/apperr"
	"github.com/formflow/formflow-api/internal/authz"
	"github.com/formflow/formflow-api/internal/models"
	"github.com/formflow/formflow-api/internal/repository"
)

type FormatHandler struct {
	formats repository.FormatRepository
	logger  zerolog.Logger
}

func NewFormatHandler(formats repository.FormatRepository, logger zerolog.Logger) *FormatHandler {
	return &FormatHandler{
		formats: formats,
		logger:  logger.With().Str("handler", "format").Logger(),
	}
}

type formatPayload struct {
	Title        string               `json:"title"`
	BodyTemplate string               `json:"body_template"`
	Variables    []models.VariableDef `json:"variables"`
}

func (p formatPayload) validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return apperr.Invalidf("title is required")
	}
	if strings.TrimSpace(p.BodyTemplate) == "" {
		return apperr.Invalidf("body_template is required")
	}
	for _, v := range p.Variables {
		if strings.TrimSpace(v.Name) == "" {
			return apperr.Invalidf("variable name is required")
		}
		if !models.IsValidVariableType(v.Type) {
			return apperr.Invalidf("variable %q has unknown type %q", v.Name, v.Type)
		}
	}
	return nil
}

func (h *FormatHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, _ := authz.PrincipalFromRequest(r)

	var payload formatPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if err := payload.validate(); err != nil {
		writeError(w, err)
		return
	}

	format, err := h.formats.Create(r.Context(), models.Format{
		Title:        payload.Title,
		BodyTemplate: payload.BodyTemplate,
		Variables:    payload.Variables,
		Status:       models.FormatStatusActive,
		CreatedBy:    &p.ID,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to create format")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, format)
}

func (h *FormatHandler) List(w http.ResponseWriter, r *http.Request) {
	p, _ := authz.PrincipalFromRequest(r)

	// Plain users only see formats they can fill in.
	activeOnly := !authz.Has(p.Role, authz.CapManageFormats)
	formats, err := h.formats.List(r.Context(), activeOnly)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list formats")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, formats)
}

func (h *FormatHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "formatID")
	if err != nil {
		writeError(w, err)
		return
	}
	format, err := h.formats.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, format)
}

// Update rejects template edits once any submission references the format:
// there is no versioning, so referenced templates are immutable.
func (h *FormatHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "formatID")
	if err != nil {
		writeError(w, err)
		return
	}

	var payload formatPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if err := payload.validate(); err != nil {
		writeError(w, err)
		return
	}

	count, err := h.formats.CountSubmissions(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if count > 0 {
		writeError(w, apperr.Invalidf("format %d is referenced by %d submissions and cannot be edited", id, count))
		return
	}

	format, err := h.formats.Update(r.Context(), models.Format{
		ID:           id,
		Title:        payload.Title,
		BodyTemplate: payload.BodyTemplate,
		Variables:    payload.Variables,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, format)
}

func (h *FormatHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "formatID")
	if err != nil {
		writeError(w, err)
		return
	}

	var payload struct {
		Status models.FormatStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if payload.Status != models.FormatStatusActive && payload.Status != models.FormatStatusInactive {
		writeError(w, apperr.Invalidf("status must be %q or %q", models.FormatStatusActive, models.FormatStatusInactive))
		return
	}

	format, err := h.formats.SetStatus(r.Context(), id, payload.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, format)
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Invalidf("invalid %s %q", name, raw)
	}
	return id, nil
}
