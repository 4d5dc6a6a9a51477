package tenants

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lexvault/lexvault/internal/shared"
)

// Repository provides PostgreSQL backed persistence for tenants.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get fetches a tenant by id.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Tenant, error) {
	var t Tenant
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, separation_mode, created_at, updated_at
		FROM tenants WHERE id = $1`, id).
		Scan(&t.ID, &t.Name, &t.SeparationMode, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Tenant{}, shared.ErrNotFound
		}
		return Tenant{}, err
	}
	return t, nil
}

// SeparationMode fetches just the separation mode column.
func (r *Repository) SeparationMode(ctx context.Context, id uuid.UUID) (string, error) {
	var mode string
	err := r.pool.QueryRow(ctx, `
		SELECT separation_mode FROM tenants WHERE id = $1`, id).Scan(&mode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", shared.ErrNotFound
		}
		return "", err
	}
	return mode, nil
}

// UpdateSeparationMode writes the tenant's separation mode.
func (r *Repository) UpdateSeparationMode(ctx context.Context, id uuid.UUID, mode string) (Tenant, error) {
	var t Tenant
	err := r.pool.QueryRow(ctx, `
		UPDATE tenants SET separation_mode = $2, updated_at = now()
		WHERE id = $1
		RETURNING id, name, separation_mode, created_at, updated_at`, id, mode).
		Scan(&t.ID, &t.Name, &t.SeparationMode, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Tenant{}, shared.ErrNotFound
		}
		return Tenant{}, err
	}
	return t, nil
}
