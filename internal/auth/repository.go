package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agro-ad/backend/internal/errs"
	"github.com/agro-ad/backend/internal/models"
)

// ErrUsernameTaken is returned by Create when the username already exists.
var ErrUsernameTaken = errors.New("username already taken")

// Repository handles user persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an auth repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByUsername returns a user by username.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	const q = `SELECT id, username, password_hash, role, created_at FROM users WHERE username = $1`
	var u models.User
	err := r.pool.QueryRow(ctx, q, username).Scan(&u.ID, &u.Username, &u.Password, &u.Role, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.NotFound("user", username)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user with an already hashed password.
func (r *Repository) Create(ctx context.Context, username, passwordHash string, role models.Role) (*models.User, error) {
	const q = `INSERT INTO users (id, username, password_hash, role) VALUES ($1, $2, $3, $4)
		RETURNING id, username, password_hash, role, created_at`
	var u models.User
	err := r.pool.QueryRow(ctx, q, uuid.New(), username, passwordHash, string(role)).
		Scan(&u.ID, &u.Username, &u.Password, &u.Role, &u.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &u, nil
}

// SetPassword replaces a user's password hash.
func (r *Repository) SetPassword(ctx context.Context, username, passwordHash string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET password_hash = $1 WHERE username = $2`, passwordHash, username)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.NotFound("user", username)
	}
	return nil
}
