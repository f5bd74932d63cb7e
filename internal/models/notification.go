package models

import "time"

// Notification is a per-recipient, data-at-rest record polled by clients.
// The only mutation after creation is flipping Read; read records older than
// the retention window are garbage-collected by the sweeper.
type Notification struct {
	ID          int64     `json:"id" db:"id"`
	RecipientID int64     `json:"recipient_id" db:"recipient_id"`
	Message     string    `json:"message" db:"message"`
	Read        bool      `json:"read" db:"read"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
