package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/formflow/formflow-api/internal/models"
)

type NotificationRepository interface {
	Create(ctx context.Context, recipientID int64, message string) (models.Notification, error)
	ListByRecipient(ctx context.Context, recipientID int64) ([]models.Notification, error)
	// MarkRead flips read on an unread notification owned by the recipient.
	// Returns the number of rows changed; zero means missing or already read.
	MarkRead(ctx context.Context, recipientID, notificationID int64) (int64, error)
	// DeleteReadBefore removes read notifications last touched before the
	// cutoff. The cutoff is captured once by the caller so the sweep is safe
	// alongside concurrent notify/mark-read traffic.
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type notificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

const notificationColumns = "id, recipient_id, message, read, created_at, updated_at"

func (r *notificationRepository) Create(ctx context.Context, recipientID int64, message string) (models.Notification, error) {
	query := `
		INSERT INTO notifications (recipient_id, message)
		VALUES ($1, $2)
		RETURNING ` + notificationColumns
	return scanNotification(r.db.QueryRowContext(ctx, query, recipientID, message), "create notification")
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID int64) ([]models.Notification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, recipientID)
	if err != nil {
		return nil, wrapErr(err, "list notifications")
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		notification, err := scanNotification(rows, "scan notification")
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, notification)
	}
	return notifications, wrapErr(rows.Err(), "list notifications")
}

func (r *notificationRepository) MarkRead(ctx context.Context, recipientID, notificationID int64) (int64, error) {
	// The read = FALSE predicate keeps repeat calls from resetting
	// updated_at and with it the retention clock.
	query := `
		UPDATE notifications
		SET read = TRUE, updated_at = NOW()
		WHERE id = $1 AND recipient_id = $2 AND read = FALSE`
	res, err := r.db.ExecContext(ctx, query, notificationID, recipientID)
	if err != nil {
		return 0, wrapErr(err, "mark notification read")
	}
	affected, err := res.RowsAffected()
	return affected, wrapErr(err, "mark notification read")
}

func (r *notificationRepository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM notifications WHERE read = TRUE AND updated_at < $1`
	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, wrapErr(err, "sweep notifications")
	}
	deleted, err := res.RowsAffected()
	return deleted, wrapErr(err, "sweep notifications")
}

func scanNotification(s scanner, op string) (models.Notification, error) {
	var notification models.Notification
	if err := s.Scan(
		&notification.ID,
		&notification.RecipientID,
		&notification.Message,
		&notification.Read,
		&notification.CreatedAt,
		&notification.UpdatedAt,
	); err != nil {
		return models.Notification{}, wrapErr(err, op)
	}
	return notification, nil
}
