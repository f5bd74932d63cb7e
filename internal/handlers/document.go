package handlers

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/formflow/formflow-api/internal/apperr"
	"github.com/formflow/formflow-api/internal/authz"
	"github.com/formflow/formflow-api/internal/lifecycle"
	"github.com/formflow/formflow-api/internal/models"
	"github.com/formflow/formflow-api/internal/render"
	"github.com/formflow/formflow-api/internal/repository"
)

// DocumentHandler turns a submission into its PDF artifact: plain for
// pending and rejected submissions, annotated for approved ones.
type DocumentHandler struct {
	lifecycle lifecycle.Service
	users     repository.UserRepository
	renderer  render.PDFRenderer
	logger    zerolog.Logger
}

func NewDocumentHandler(lc lifecycle.Service, users repository.UserRepository, renderer render.PDFRenderer, logger zerolog.Logger) *DocumentHandler {
	return &DocumentHandler{
		lifecycle: lc,
		users:     users,
		renderer:  renderer,
		logger:    logger.With().Str("handler", "document").Logger(),
	}
}

func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
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
	if submission.Format == nil || submission.Submitter == nil {
		writeError(w, apperr.NotFoundf("submission %d relations", id))
		return
	}

	var doc render.DocumentSpec
	if submission.Status == models.SubmissionStatusApproved {
		doc, err = h.buildApproved(r, p, submission)
		if err != nil {
			writeError(w, err)
			return
		}
	} else {
		doc = render.BuildDraft(*submission.Format, submission)
	}

	pdf, err := h.renderer.Render(r.Context(), doc, render.DefaultPageConfig())
	if err != nil {
		h.logger.Error().Err(err).Int64("submission_id", id).Msg("pdf rendering failed")
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", doc.Filename))
	w.Write(pdf)
}

func (h *DocumentHandler) buildApproved(r *http.Request, p authz.Principal, submission models.Submission) (render.DocumentSpec, error) {
	validation, err := h.lifecycle.ValidationForSubmission(r.Context(), p, submission.ID)
	if err != nil {
		return render.DocumentSpec{}, err
	}
	if validation.ValidatorID == nil {
		return render.DocumentSpec{}, apperr.NotFoundf("validator for submission %d", submission.ID)
	}
	validator, err := h.users.GetByID(r.Context(), *validation.ValidatorID)
	if err != nil {
		return render.DocumentSpec{}, err
	}
	return render.BuildApproved(*submission.Format, submission, validation, *submission.Submitter, validator), nil
}
