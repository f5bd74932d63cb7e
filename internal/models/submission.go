package models

import "time"

// SubmissionStatus is the approval state machine:
// pending -> approved | rejected, with rejected -> pending via resubmission.
// The string literals are persisted exactly.
type SubmissionStatus string

const (
	SubmissionStatusPending  SubmissionStatus = "pending"
	SubmissionStatusApproved SubmissionStatus = "approved"
	SubmissionStatusRejected SubmissionStatus = "rejected"
)

// Submission is a format filled in by a user, awaiting or past validation.
// Format and Submitter are populated only when loaded with relations.
type Submission struct {
	ID          int64            `json:"id" db:"id"`
	FormatID    int64            `json:"format_id" db:"format_id"`
	SubmitterID int64            `json:"submitter_id" db:"submitter_id"`
	Data        map[string]any   `json:"data" db:"data"`
	Status      SubmissionStatus `json:"status" db:"status"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at" db:"updated_at"`

	Format    *Format `json:"format,omitempty" db:"-"`
	Submitter *User   `json:"submitter,omitempty" db:"-"`
}

// IsTerminal reports whether the submission reached a final decision.
// Approved is truly final; rejected can re-enter pending via resubmission.
func (s Submission) IsTerminal() bool {
	return s.Status == SubmissionStatusApproved || s.Status == SubmissionStatusRejected
}

// Editable reports whether the submitter may still change the data payload.
func (s Submission) Editable() bool {
	return s.Status == SubmissionStatusPending || s.Status == SubmissionStatusRejected
}
