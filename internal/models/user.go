package models

import "strings"

type UserRole string

const (
	RoleUser      UserRole = "user"
	RoleCreator   UserRole = "creator"
	RoleValidator UserRole = "validator"
	RoleAdmin     UserRole = "admin"
)

type User struct {
	ID           int64    `json:"id" db:"id"`
	Email        string   `json:"email" db:"email"`
	DisplayName  string   `json:"display_name" db:"display_name"`
	PasswordHash string   `json:"-" db:"password_hash"`
	Role         UserRole `json:"role" db:"role"`
	IsActive     bool     `json:"is_active" db:"is_active"`
}

// ValidatorRoles are the roles notified when a submission needs a decision.
var ValidatorRoles = []UserRole{RoleValidator, RoleAdmin}

func IsValidRole(role UserRole) bool {
	switch role {
	case RoleUser, RoleCreator, RoleValidator, RoleAdmin:
		return true
	default:
		return false
	}
}

// NormalizeRole lowercases and trims a role string, falling back to the
// plain user role when the input is empty.
func NormalizeRole(raw string) UserRole {
	role := UserRole(strings.ToLower(strings.TrimSpace(raw)))
	if role == "" {
		return RoleUser
	}
	return role
}
