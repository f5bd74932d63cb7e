package repository

import (
	"context"
	"database/sql"

	"github.com/formflow/formflow-api/internal/models"
)

type ValidationRepository interface {
	// CreateShell opens a new validation cycle for a submission. The partial
	// unique index on (submission_id) WHERE status = 'pending' guarantees at
	// most one open cycle.
	CreateShell(ctx context.Context, submissionID int64) (models.Validation, error)
	// Decide closes the open cycle with the validator's verdict.
	Decide(ctx context.Context, submissionID, validatorID int64, status models.SubmissionStatus, observations string) (models.Validation, error)
	GetLatestBySubmission(ctx context.Context, submissionID int64) (models.Validation, error)
	ListBySubmission(ctx context.Context, submissionID int64) ([]models.Validation, error)
	// ListPending projects the open validation of every submission whose
	// current status is pending, keyed by the real submission id.
	ListPending(ctx context.Context) ([]models.Validation, error)
	ListAll(ctx context.Context) ([]models.Validation, error)
}

type validationRepository struct {
	db *sql.DB
}

func NewValidationRepository(db *sql.DB) ValidationRepository {
	return &validationRepository{db: db}
}

const validationColumns = "id, submission_id, validator_id, status, observations, created_at, updated_at"

func (r *validationRepository) CreateShell(ctx context.Context, submissionID int64) (models.Validation, error) {
	query := `
		INSERT INTO validations (submission_id, status)
		VALUES ($1, 'pending')
		RETURNING ` + validationColumns
	return scanValidation(r.db.QueryRowContext(ctx, query, submissionID), "create validation shell")
}

func (r *validationRepository) Decide(ctx context.Context, submissionID, validatorID int64, status models.SubmissionStatus, observations string) (models.Validation, error) {
	query := `
		UPDATE validations
		SET validator_id = $2, status = $3, observations = $4, updated_at = NOW()
		WHERE submission_id = $1 AND status = 'pending'
		RETURNING ` + validationColumns
	row := r.db.QueryRowContext(ctx, query, submissionID, validatorID, status, observations)
	return scanValidation(row, "decide validation")
}

func (r *validationRepository) GetLatestBySubmission(ctx context.Context, submissionID int64) (models.Validation, error) {
	query := `
		SELECT ` + validationColumns + `
		FROM validations
		WHERE submission_id = $1
		ORDER BY created_at DESC
		LIMIT 1`
	return scanValidation(r.db.QueryRowContext(ctx, query, submissionID), "get validation")
}

func (r *validationRepository) ListBySubmission(ctx context.Context, submissionID int64) ([]models.Validation, error) {
	query := `
		SELECT ` + validationColumns + `
		FROM validations
		WHERE submission_id = $1
		ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, submissionID)
	if err != nil {
		return nil, wrapErr(err, "list validations by submission")
	}
	defer rows.Close()
	return collectValidations(rows)
}

func (r *validationRepository) ListPending(ctx context.Context) ([]models.Validation, error) {
	query := `
		SELECT v.id, v.submission_id, v.validator_id, v.status, v.observations, v.created_at, v.updated_at
		FROM validations v
		JOIN submissions s ON v.submission_id = s.id
		WHERE v.status = 'pending' AND s.status = 'pending'
		ORDER BY v.created_at ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapErr(err, "list pending validations")
	}
	defer rows.Close()
	return collectValidations(rows)
}

func (r *validationRepository) ListAll(ctx context.Context) ([]models.Validation, error) {
	query := `SELECT ` + validationColumns + ` FROM validations ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapErr(err, "list validations")
	}
	defer rows.Close()
	return collectValidations(rows)
}

func collectValidations(rows *sql.Rows) ([]models.Validation, error) {
	var validations []models.Validation
	for rows.Next() {
		validation, err := scanValidation(rows, "scan validation")
		if err != nil {
			return nil, err
		}
		validations = append(validations, validation)
	}
	return validations, wrapErr(rows.Err(), "list validations")
}

func scanValidation(s scanner, op string) (models.Validation, error) {
	var (
		validation  models.Validation
		validatorID sql.NullInt64
	)
	if err := s.Scan(
		&validation.ID,
		&validation.SubmissionID,
		&validatorID,
		&validation.Status,
		&validation.Observations,
		&validation.CreatedAt,
		&validation.UpdatedAt,
	); err != nil {
		return models.Validation{}, wrapErr(err, op)
	}
	if validatorID.Valid {
		id := validatorID.Int64
		validation.ValidatorID = &id
	}
	return validation, nil
}
