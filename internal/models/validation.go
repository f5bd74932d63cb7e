package models

import "time"

// Validation is one review cycle of a submission. A fresh cycle starts
// pending with no validator; deciding stamps the validator, verdict and
// observations. Terminal cycles accumulate as history across resubmissions.
type Validation struct {
	ID           int64            `json:"id" db:"id"`
	SubmissionID int64            `json:"submission_id" db:"submission_id"`
	ValidatorID  *int64           `json:"validator_id,omitempty" db:"validator_id"`
	Status       SubmissionStatus `json:"status" db:"status"`
	Observations string           `json:"observations" db:"observations"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at" db:"updated_at"`
}
