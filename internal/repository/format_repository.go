package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/formflow/formflow-api/internal/models"
)

type FormatRepository interface {
	Create(ctx context.Context, format models.Format) (models.Format, error)
	GetByID(ctx context.Context, id int64) (models.Format, error)
	List(ctx context.Context, activeOnly bool) ([]models.Format, error)
	Update(ctx context.Context, format models.Format) (models.Format, error)
	SetStatus(ctx context.Context, id int64, status models.FormatStatus) (models.Format, error)
	CountSubmissions(ctx context.Context, formatID int64) (int64, error)
}

type formatRepository struct {
	db *sql.DB
}

func NewFormatRepository(db *sql.DB) FormatRepository {
	return &formatRepository{db: db}
}

const formatColumns = "id, title, body_template, variables, status, created_by, created_at, updated_at"

func (r *formatRepository) Create(ctx context.Context, format models.Format) (models.Format, error) {
	variables, err := marshalJSON(format.Variables, "marshal format variables")
	if err != nil {
		return models.Format{}, err
	}

	query := `
		INSERT INTO formats (title, body_template, variables, status, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + formatColumns
	row := r.db.QueryRowContext(ctx, query, format.Title, format.BodyTemplate, variables, format.Status, format.CreatedBy)
	return scanFormat(row, "create format")
}

func (r *formatRepository) GetByID(ctx context.Context, id int64) (models.Format, error) {
	query := `SELECT ` + formatColumns + ` FROM formats WHERE id = $1`
	return scanFormat(r.db.QueryRowContext(ctx, query, id), "get format")
}

func (r *formatRepository) List(ctx context.Context, activeOnly bool) ([]models.Format, error) {
	query := `SELECT ` + formatColumns + ` FROM formats`
	if activeOnly {
		query += ` WHERE status = 'active'`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapErr(err, "list formats")
	}
	defer rows.Close()

	var formats []models.Format
	for rows.Next() {
		format, err := scanFormat(rows, "scan format")
		if err != nil {
			return nil, err
		}
		formats = append(formats, format)
	}
	return formats, wrapErr(rows.Err(), "list formats")
}

func (r *formatRepository) Update(ctx context.Context, format models.Format) (models.Format, error) {
	variables, err := marshalJSON(format.Variables, "marshal format variables")
	if err != nil {
		return models.Format{}, err
	}

	query := `
		UPDATE formats
		SET title = $2, body_template = $3, variables = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + formatColumns
	row := r.db.QueryRowContext(ctx, query, format.ID, format.Title, format.BodyTemplate, variables)
	return scanFormat(row, "update format")
}

func (r *formatRepository) SetStatus(ctx context.Context, id int64, status models.FormatStatus) (models.Format, error) {
	query := `
		UPDATE formats
		SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + formatColumns
	return scanFormat(r.db.QueryRowContext(ctx, query, id, status), "update format status")
}

func (r *formatRepository) CountSubmissions(ctx context.Context, formatID int64) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM submissions WHERE format_id = $1`, formatID).Scan(&count)
	return count, wrapErr(err, "count format submissions")
}

func scanFormat(s scanner, op string) (models.Format, error) {
	var (
		format       models.Format
		variablesRaw []byte
		createdBy    sql.NullInt64
	)
	if err := s.Scan(
		&format.ID,
		&format.Title,
		&format.BodyTemplate,
		&variablesRaw,
		&format.Status,
		&createdBy,
		&format.CreatedAt,
		&format.UpdatedAt,
	); err != nil {
		return models.Format{}, wrapErr(err, op)
	}
	if createdBy.Valid {
		id := createdBy.Int64
		format.CreatedBy = &id
	}
	if len(variablesRaw) > 0 {
		if err := json.Unmarshal(variablesRaw, &format.Variables); err != nil {
			return models.Format{}, wrapErr(err, "unmarshal format variables")
		}
	}
	return format, nil
}
