package tvs

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agro-ad/backend/internal/errs"
	"github.com/agro-ad/backend/internal/models"
)

// Repository handles TV persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a TV repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new TV with a generated id.
func (r *Repository) Create(ctx context.Context, tv *models.TV) error {
	const q = `INSERT INTO tvs (id, name, description) VALUES ($1, $2, $3)
		RETURNING created_at, updated_at`
	tv.ID = uuid.NewString()
	if err := r.pool.QueryRow(ctx, q, tv.ID, tv.Name, tv.Description).Scan(&tv.CreatedAt, &tv.UpdatedAt); err != nil {
		return fmt.Errorf("insert tv: %w", err)
	}
	tv.DisplayPath = models.DisplayPathFor(tv.ID)
	return nil
}

// GetTV returns a TV by id.
func (r *Repository) GetTV(ctx context.Context, id string) (*models.TV, error) {
	const q = `SELECT id, name, description, created_at, updated_at FROM tvs WHERE id = $1`
	var tv models.TV
	err := r.pool.QueryRow(ctx, q, id).Scan(&tv.ID, &tv.Name, &tv.Description, &tv.CreatedAt, &tv.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.NotFound("tv", id)
	}
	if err != nil {
		return nil, err
	}
	tv.DisplayPath = models.DisplayPathFor(tv.ID)
	return &tv, nil
}

// List returns all TVs ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.TV, error) {
	const q = `SELECT id, name, description, created_at, updated_at FROM tvs ORDER BY name, id`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []models.TV{}
	for rows.Next() {
		var tv models.TV
		if err := rows.Scan(&tv.ID, &tv.Name, &tv.Description, &tv.CreatedAt, &tv.UpdatedAt); err != nil {
			return nil, err
		}
		tv.DisplayPath = models.DisplayPathFor(tv.ID)
		list = append(list, tv)
	}
	return list, rows.Err()
}

// Update changes name and description.
func (r *Repository) Update(ctx context.Context, tv *models.TV) error {
	const q = `UPDATE tvs SET name = $1, description = $2, updated_at = NOW() WHERE id = $3
		RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, q, tv.Name, tv.Description, tv.ID).Scan(&tv.CreatedAt, &tv.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return errs.NotFound("tv", tv.ID)
	}
	if err != nil {
		return err
	}
	tv.DisplayPath = models.DisplayPathFor(tv.ID)
	return nil
}

// Delete removes a TV; its assignments go with it (ON DELETE CASCADE).
func (r *Repository) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM tvs WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.NotFound("tv", id)
	}
	return nil
}

// Count returns the number of TVs.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tvs`).Scan(&n)
	return n, err
}
