package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/formflow/formflow-api/internal/apperr"
	"github.com/formflow/formflow-api/internal/models"
)

type UserRepository interface {
	CreateUser(ctx context.Context, email, password, displayName string, role models.UserRole) (models.User, error)
	AuthenticateUser(ctx context.Context, email, password string) (models.User, error)
	GetByID(ctx context.Context, id int64) (models.User, error)
	// ListByRoles returns the active users holding any of the given roles;
	// used for the validator fan-out.
	ListByRoles(ctx context.Context, roles []models.UserRole) ([]models.User, error)
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

func (u *userRepository) CreateUser(ctx context.Context, email, password, displayName string, role models.UserRole) (models.User, error) {
	email = strings.TrimSpace(email)
	displayName = strings.TrimSpace(displayName)
	if email == "" || password == "" {
		return models.User{}, apperr.Invalidf("email and password are required")
	}
	if !models.IsValidRole(role) {
		return models.User{}, apperr.Invalidf("unknown role %q", role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, wrapErr(err, "hash password")
	}

	user := models.User{
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}

	query := `
		INSERT INTO users (email, display_name, password_hash, role, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err = u.db.QueryRowContext(ctx, query, user.Email, user.DisplayName, user.PasswordHash, user.Role, user.IsActive).Scan(&user.ID)
	if err != nil {
		return models.User{}, wrapErr(err, "create user")
	}
	return user, nil
}

func (u *userRepository) AuthenticateUser(ctx context.Context, email, password string) (models.User, error) {
	var user models.User
	query := `
		SELECT id, email, display_name, password_hash, role, is_active
		FROM users
		WHERE email = $1`
	err := u.db.QueryRowContext(ctx, query, strings.TrimSpace(email)).Scan(
		&user.ID,
		&user.Email,
		&user.DisplayName,
		&user.PasswordHash,
		&user.Role,
		&user.IsActive,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, apperr.Forbiddenf("invalid credentials")
		}
		return models.User{}, wrapErr(err, "authenticate user")
	}
	if !user.IsActive {
		return models.User{}, apperr.Forbiddenf("account disabled")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, apperr.Forbiddenf("invalid credentials")
	}
	return user, nil
}

func (u *userRepository) GetByID(ctx context.Context, id int64) (models.User, error) {
	var user models.User
	query := `
		SELECT id, email, display_name, password_hash, role, is_active
		FROM users
		WHERE id = $1`
	err := u.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.DisplayName,
		&user.PasswordHash,
		&user.Role,
		&user.IsActive,
	)
	if err != nil {
		return models.User{}, wrapErr(err, "get user")
	}
	return user, nil
}

func (u *userRepository) ListByRoles(ctx context.Context, roles []models.UserRole) ([]models.User, error) {
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, string(role))
	}

	query := `
		SELECT id, email, display_name, password_hash, role, is_active
		FROM users
		WHERE role = ANY($1) AND is_active = TRUE
		ORDER BY id`
	rows, err := u.db.QueryContext(ctx, query, pq.Array(names))
	if err != nil {
		return nil, wrapErr(err, "list users by roles")
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Email, &user.DisplayName, &user.PasswordHash, &user.Role, &user.IsActive); err != nil {
			return nil, wrapErr(err, "scan user")
		}
		users = append(users, user)
	}
	return users, wrapErr(rows.Err(), "list users by roles")
}
