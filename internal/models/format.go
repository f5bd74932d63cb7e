package models

import "time"

type FormatStatus string

const (
	FormatStatusActive   FormatStatus = "active"
	FormatStatusInactive FormatStatus = "inactive"
)

type VariableType string

const (
	VariableTypeText   VariableType = "text"
	VariableTypeNumber VariableType = "number"
	VariableTypeDate   VariableType = "date"
)

func IsValidVariableType(t VariableType) bool {
	switch t {
	case VariableTypeText, VariableTypeNumber, VariableTypeDate:
		return true
	default:
		return false
	}
}

// VariableDef declares one {{placeholder}} a format's body template expects.
type VariableDef struct {
	Name     string       `json:"name"`
	Type     VariableType `json:"type"`
	Required bool         `json:"required"`
}

// Format is a reusable document template. Its body holds {{name}} tokens
// that get replaced with submission data at render time. Inactive formats
// stay readable but accept no new submissions.
type Format struct {
	ID           int64         `json:"id" db:"id"`
	Title        string        `json:"title" db:"title"`
	BodyTemplate string        `json:"body_template" db:"body_template"`
	Variables    []VariableDef `json:"variables" db:"variables"`
	Status       FormatStatus  `json:"status" db:"status"`
	CreatedBy    *int64        `json:"created_by,omitempty" db:"created_by"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" db:"updated_at"`
}

func (f Format) IsActive() bool {
	return f.Status == FormatStatusActive
}
