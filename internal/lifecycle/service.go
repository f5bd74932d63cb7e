// Package lifecycle implements the submission approval state machine:
// pending -> approved | rejected, with rejected re-entering pending via
// resubmission. Every entry point runs the same capability guard and every
// status flip is a single conditional update, so concurrent deciders
// serialize on the database row.
package lifecycle

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/formflow/formflow-api/internal/apperr"
	"github.com/formflow/formflow-api/internal/authz"
	"github.com/formflow/formflow-api/internal/models"
	"github.com/formflow/formflow-api/internal/notification"
	"github.com/formflow/formflow-api/internal/repository"
)

type Service interface {
	// Create binds a new submission to an active format, opens its
	// validation cycle, and notifies every validator.
	Create(ctx context.Context, p authz.Principal, formatID int64, data map[string]any) (models.Submission, error)
	// Edit replaces the data payload of a pending or rejected submission.
	// Only the submitter may edit; status is unchanged.
	Edit(ctx context.Context, p authz.Principal, submissionID int64, data map[string]any) (models.Submission, error)
	// Decide moves a pending submission to approved or rejected. Exactly one
	// of two concurrent deciders wins; the loser gets ErrAlreadyDecided.
	Decide(ctx context.Context, p authz.Principal, submissionID int64, decision models.SubmissionStatus, observations string) (models.Validation, error)
	// Resubmit moves a rejected submission back to pending with new data and
	// a fresh validation cycle; earlier decisions stay in history.
	Resubmit(ctx context.Context, p authz.Principal, submissionID int64, data map[string]any) (models.Submission, error)

	Get(ctx context.Context, p authz.Principal, submissionID int64) (models.Submission, error)
	ListMine(ctx context.Context, p authz.Principal) ([]models.Submission, error)
	ListAll(ctx context.Context, p authz.Principal) ([]models.Submission, error)
	ListValidations(ctx context.Context, p authz.Principal) ([]models.Validation, error)
	ListPendingValidations(ctx context.Context, p authz.Principal) ([]models.Validation, error)
	ValidationForSubmission(ctx context.Context, p authz.Principal, submissionID int64) (models.Validation, error)
	ValidationHistory(ctx context.Context, p authz.Principal, submissionID int64) ([]models.Validation, error)
}

type service struct {
	submissions repository.SubmissionRepository
	validations repository.ValidationRepository
	formats     repository.FormatRepository
	users       repository.UserRepository
	dispatcher  notification.Service
	logger      zerolog.Logger
}

func NewService(
	submissions repository.SubmissionRepository,
	validations repository.ValidationRepository,
	formats repository.FormatRepository,
	users repository.UserRepository,
	dispatcher notification.Service,
	logger zerolog.Logger,
) Service {
	return &service{
		submissions: submissions,
		validations: validations,
		formats:     formats,
		users:       users,
		dispatcher:  dispatcher,
		logger:      logger.With().Str("component", "lifecycle").Logger(),
	}
}

func (s *service) Create(ctx context.Context, p authz.Principal, formatID int64, data map[string]any) (models.Submission, error) {
	if !authz.Has(p.Role, authz.CapCreateSubmission) {
		return models.Submission{}, apperr.Forbiddenf("role %s cannot create submissions", p.Role)
	}
	if formatID == 0 {
		return models.Submission{}, apperr.Invalidf("format id is required")
	}
	if data == nil {
		data = map[string]any{}
	}

	format, err := s.formats.GetByID(ctx, formatID)
	if err != nil {
		return models.Submission{}, err
	}
	if !format.IsActive() {
		return models.Submission{}, apperr.Invalidf("format %d is not active", formatID)
	}

	submission, err := s.submissions.Create(ctx, models.Submission{
		FormatID:    formatID,
		SubmitterID: p.ID,
		Data:        data,
	})
	if err != nil {
		return models.Submission{}, err
	}
	if _, err := s.validations.CreateShell(ctx, submission.ID); err != nil {
		return models.Submission{}, err
	}

	s.notifyValidators(ctx, fmt.Sprintf("%s submitted by %s requires validation", format.Title, p.DisplayName))

	s.logger.Info().
		Int64("submission_id", submission.ID).
		Int64("format_id", formatID).
		Int64("submitter_id", p.ID).
		Msg("submission created")
	return submission, nil
}

func (s *service) Edit(ctx context.Context, p authz.Principal, submissionID int64, data map[string]any) (models.Submission, error) {
	if !authz.Has(p.Role, authz.CapEditSubmission) {
		return models.Submission{}, apperr.Forbiddenf("role %s cannot edit submissions", p.Role)
	}

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		return models.Submission{}, err
	}
	if submission.SubmitterID != p.ID {
		return models.Submission{}, apperr.Forbiddenf("only the submitter may edit submission %d", submissionID)
	}
	if !submission.Editable() {
		return models.Submission{}, apperr.InvalidTransitionf("submission %d is %s and can no longer be edited", submissionID, submission.Status)
	}

	return s.submissions.UpdateData(ctx, submissionID, data)
}

func (s *service) Decide(ctx context.Context, p authz.Principal, submissionID int64, decision models.SubmissionStatus, observations string) (models.Validation, error) {
	if !authz.Has(p.Role, authz.CapDecide) {
		return models.Validation{}, apperr.Forbiddenf("role %s cannot decide validations", p.Role)
	}
	if decision != models.SubmissionStatusApproved && decision != models.SubmissionStatusRejected {
		return models.Validation{}, apperr.Invalidf("decision must be %q or %q", models.SubmissionStatusApproved, models.SubmissionStatusRejected)
	}

	submission, err := s.submissions.GetWithRelations(ctx, submissionID)
	if err != nil {
		return models.Validation{}, err
	}
	if submission.SubmitterID == p.ID {
		return models.Validation{}, apperr.Forbiddenf("validators cannot decide on their own submission")
	}
	if submission.Status != models.SubmissionStatusPending {
		return models.Validation{}, apperr.InvalidTransitionf("submission %d is already %s", submissionID, submission.Status)
	}

	// Compare-and-set on status: the second of two concurrent deciders
	// matches zero rows and loses.
	affected, err := s.submissions.UpdateStatusIf(ctx, submissionID, models.SubmissionStatusPending, decision)
	if err != nil {
		return models.Validation{}, err
	}
	if affected == 0 {
		return models.Validation{}, fmt.Errorf("%w: submission %d was decided by another validator", apperr.ErrAlreadyDecided, submissionID)
	}

	validation, err := s.validations.Decide(ctx, submissionID, p.ID, decision, observations)
	if err != nil {
		return models.Validation{}, err
	}

	// Extension point: submitter notification is best-effort.
	title := fmt.Sprintf("submission %d", submissionID)
	if submission.Format != nil {
		title = submission.Format.Title
	}
	if _, err := s.dispatcher.Notify(ctx, submission.SubmitterID, fmt.Sprintf("Your submission %q was %s", title, decision)); err != nil {
		s.logger.Warn().Err(err).Int64("submission_id", submissionID).Msg("failed to notify submitter of decision")
	}

	s.logger.Info().
		Int64("submission_id", submissionID).
		Int64("validator_id", p.ID).
		Str("decision", string(decision)).
		Msg("submission decided")
	return validation, nil
}

func (s *service) Resubmit(ctx context.Context, p authz.Principal, submissionID int64, data map[string]any) (models.Submission, error) {
	if !authz.Has(p.Role, authz.CapEditSubmission) {
		return models.Submission{}, apperr.Forbiddenf("role %s cannot edit submissions", p.Role)
	}

	submission, err := s.submissions.GetWithRelations(ctx, submissionID)
	if err != nil {
		return models.Submission{}, err
	}
	if submission.SubmitterID != p.ID {
		return models.Submission{}, apperr.Forbiddenf("only the submitter may resubmit submission %d", submissionID)
	}
	if submission.Status != models.SubmissionStatusRejected {
		return models.Submission{}, apperr.InvalidTransitionf("only rejected submissions can be resubmitted, submission %d is %s", submissionID, submission.Status)
	}

	if data != nil {
		if _, err := s.submissions.UpdateData(ctx, submissionID, data); err != nil {
			return models.Submission{}, err
		}
	}

	affected, err := s.submissions.UpdateStatusIf(ctx, submissionID, models.SubmissionStatusRejected, models.SubmissionStatusPending)
	if err != nil {
		return models.Submission{}, err
	}
	if affected == 0 {
		return models.Submission{}, apperr.InvalidTransitionf("submission %d is no longer rejected", submissionID)
	}

	// New cycle: the prior terminal validation stays in history untouched.
	if _, err := s.validations.CreateShell(ctx, submissionID); err != nil {
		return models.Submission{}, err
	}

	title := fmt.Sprintf("submission %d", submissionID)
	if submission.Format != nil {
		title = submission.Format.Title
	}
	s.notifyValidators(ctx, fmt.Sprintf("%s submitted by %s requires validation", title, p.DisplayName))

	s.logger.Info().Int64("submission_id", submissionID).Msg("submission resubmitted")
	return s.submissions.GetByID(ctx, submissionID)
}

func (s *service) Get(ctx context.Context, p authz.Principal, submissionID int64) (models.Submission, error) {
	submission, err := s.submissions.GetWithRelations(ctx, submissionID)
	if err != nil {
		return models.Submission{}, err
	}
	if err := s.canView(p, submission); err != nil {
		return models.Submission{}, err
	}
	return submission, nil
}

func (s *service) ListMine(ctx context.Context, p authz.Principal) ([]models.Submission, error) {
	return s.submissions.ListBySubmitter(ctx, p.ID)
}

func (s *service) ListAll(ctx context.Context, p authz.Principal) ([]models.Submission, error) {
	if !authz.Has(p.Role, authz.CapViewAll) {
		return nil, apperr.Forbiddenf("role %s cannot list all submissions", p.Role)
	}
	return s.submissions.ListAll(ctx)
}

func (s *service) ListValidations(ctx context.Context, p authz.Principal) ([]models.Validation, error) {
	if !authz.Has(p.Role, authz.CapDecide) {
		return nil, apperr.Forbiddenf("role %s cannot list validations", p.Role)
	}
	return s.validations.ListAll(ctx)
}

func (s *service) ListPendingValidations(ctx context.Context, p authz.Principal) ([]models.Validation, error) {
	if !authz.Has(p.Role, authz.CapDecide) {
		return nil, apperr.Forbiddenf("role %s cannot list pending validations", p.Role)
	}
	return s.validations.ListPending(ctx)
}

func (s *service) ValidationForSubmission(ctx context.Context, p authz.Principal, submissionID int64) (models.Validation, error) {
	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		return models.Validation{}, err
	}
	if err := s.canView(p, submission); err != nil {
		return models.Validation{}, err
	}
	return s.validations.GetLatestBySubmission(ctx, submissionID)
}

func (s *service) ValidationHistory(ctx context.Context, p authz.Principal, submissionID int64) ([]models.Validation, error) {
	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if err := s.canView(p, submission); err != nil {
		return nil, err
	}
	return s.validations.ListBySubmission(ctx, submissionID)
}

// canView allows the owner and anyone holding the view-all capability.
func (s *service) canView(p authz.Principal, submission models.Submission) error {
	if submission.SubmitterID == p.ID || authz.Has(p.Role, authz.CapViewAll) {
		return nil
	}
	return apperr.Forbiddenf("submission %d belongs to another user", submission.ID)
}

// notifyValidators fans out to every validator and admin. Failures here are
// logged, never surfaced: a broken recipient must not block creation.
func (s *service) notifyValidators(ctx context.Context, message string) {
	validators, err := s.users.ListByRoles(ctx, models.ValidatorRoles)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to list validators for fan-out")
		return
	}
	ids := make([]int64, 0, len(validators))
	for _, v := range validators {
		ids = append(ids, v.ID)
	}
	s.dispatcher.NotifyAll(ctx, ids, message)
}
