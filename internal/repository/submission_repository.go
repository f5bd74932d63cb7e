package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/formflow/formflow-api/internal/models"
)

type SubmissionRepository interface {
	Create(ctx context.Context, submission models.Submission) (models.Submission, error)
	GetByID(ctx context.Context, id int64) (models.Submission, error)
	GetWithRelations(ctx context.Context, id int64) (models.Submission, error)
	ListBySubmitter(ctx context.Context, submitterID int64) ([]models.Submission, error)
	ListAll(ctx context.Context) ([]models.Submission, error)
	UpdateData(ctx context.Context, id int64, data map[string]any) (models.Submission, error)
	// UpdateStatusIf performs the conditional status flip used by decide and
	// resubmit. It returns the number of rows changed: zero means the
	// submission was no longer in the expected state.
	UpdateStatusIf(ctx context.Context, id int64, from, to models.SubmissionStatus) (int64, error)
}

type submissionRepository struct {
	db *sql.DB
}

func NewSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

const submissionColumns = "id, format_id, submitter_id, data, status, created_at, updated_at"

func (r *submissionRepository) Create(ctx context.Context, submission models.Submission) (models.Submission, error) {
	data, err := marshalJSON(submission.Data, "marshal submission data")
	if err != nil {
		return models.Submission{}, err
	}

	query := `
		INSERT INTO submissions (format_id, submitter_id, data, status)
		VALUES ($1, $2, $3, 'pending')
		RETURNING ` + submissionColumns
	row := r.db.QueryRowContext(ctx, query, submission.FormatID, submission.SubmitterID, data)
	return scanSubmission(row, "create submission")
}

func (r *submissionRepository) GetByID(ctx context.Context, id int64) (models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`
	return scanSubmission(r.db.QueryRowContext(ctx, query, id), "get submission")
}

// GetWithRelations expands the referenced format and submitter in one query.
func (r *submissionRepository) GetWithRelations(ctx context.Context, id int64) (models.Submission, error) {
	query := `
		SELECT
			s.id, s.format_id, s.submitter_id, s.data, s.status, s.created_at, s.updated_at,
			f.id, f.title, f.body_template, f.variables, f.status, f.created_by, f.created_at, f.updated_at,
			u.id, u.email, u.display_name, u.role, u.is_active
		FROM submissions s
		JOIN formats f ON s.format_id = f.id
		JOIN users u ON s.submitter_id = u.id
		WHERE s.id = $1`

	var (
		submission   models.Submission
		format       models.Format
		submitter    models.User
		dataRaw      []byte
		variablesRaw []byte
		createdBy    sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&submission.ID,
		&submission.FormatID,
		&submission.SubmitterID,
		&dataRaw,
		&submission.Status,
		&submission.CreatedAt,
		&submission.UpdatedAt,
		&format.ID,
		&format.Title,
		&format.BodyTemplate,
		&variablesRaw,
		&format.Status,
		&createdBy,
		&format.CreatedAt,
		&format.UpdatedAt,
		&submitter.ID,
		&submitter.Email,
		&submitter.DisplayName,
		&submitter.Role,
		&submitter.IsActive,
	)
	if err != nil {
		return models.Submission{}, wrapErr(err, "get submission with relations")
	}
	if err := json.Unmarshal(dataRaw, &submission.Data); err != nil {
		return models.Submission{}, wrapErr(err, "unmarshal submission data")
	}
	if len(variablesRaw) > 0 {
		if err := json.Unmarshal(variablesRaw, &format.Variables); err != nil {
			return models.Submission{}, wrapErr(err, "unmarshal format variables")
		}
	}
	if createdBy.Valid {
		cb := createdBy.Int64
		format.CreatedBy = &cb
	}
	submission.Format = &format
	submission.Submitter = &submitter
	return submission, nil
}

func (r *submissionRepository) ListBySubmitter(ctx context.Context, submitterID int64) ([]models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE submitter_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, submitterID)
	if err != nil {
		return nil, wrapErr(err, "list submissions by submitter")
	}
	defer rows.Close()
	return collectSubmissions(rows)
}

func (r *submissionRepository) ListAll(ctx context.Context) ([]models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapErr(err, "list submissions")
	}
	defer rows.Close()
	return collectSubmissions(rows)
}

func (r *submissionRepository) UpdateData(ctx context.Context, id int64, data map[string]any) (models.Submission, error) {
	raw, err := marshalJSON(data, "marshal submission data")
	if err != nil {
		return models.Submission{}, err
	}

	query := `
		UPDATE submissions
		SET data = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + submissionColumns
	return scanSubmission(r.db.QueryRowContext(ctx, query, id, raw), "update submission data")
}

func (r *submissionRepository) UpdateStatusIf(ctx context.Context, id int64, from, to models.SubmissionStatus) (int64, error) {
	query := `
		UPDATE submissions
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2`
	res, err := r.db.ExecContext(ctx, query, id, from, to)
	if err != nil {
		return 0, wrapErr(err, "update submission status")
	}
	affected, err := res.RowsAffected()
	return affected, wrapErr(err, "update submission status")
}

func collectSubmissions(rows *sql.Rows) ([]models.Submission, error) {
	var submissions []models.Submission
	for rows.Next() {
		submission, err := scanSubmission(rows, "scan submission")
		if err != nil {
			return nil, err
		}
		submissions = append(submissions, submission)
	}
	return submissions, wrapErr(rows.Err(), "list submissions")
}

func scanSubmission(s scanner, op string) (models.Submission, error) {
	var (
		submission models.Submission
		dataRaw    []byte
	)
	if err := s.Scan(
		&submission.ID,
		&submission.FormatID,
		&submission.SubmitterID,
		&dataRaw,
		&submission.Status,
		&submission.CreatedAt,
		&submission.UpdatedAt,
	); err != nil {
		return models.Submission{}, wrapErr(err, op)
	}
	if len(dataRaw) > 0 {
		if err := json.Unmarshal(dataRaw, &submission.Data); err != nil {
			return models.Submission{}, wrapErr(err, "unmarshal submission data")
		}
	}
	return submission, nil
}
