package audit

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert appends an event to the trail.
func (r *Repository) Insert(ctx context.Context, e Event) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO role_audit_events (tenant_id, actor_id, action, role_name, detail, occurred_at)
		VALUES ($1, $2, $3, $4, $5, now())`,
		e.TenantID, e.ActorID, e.Action, e.RoleName, e.Detail)
	return err
}

// List returns events newest first.
func (r *Repository) List(ctx context.Context, filter Filter) ([]Event, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, tenant_id, actor_id, action, role_name, detail, occurred_at
		FROM role_audit_events
		WHERE ($1::uuid IS NULL OR tenant_id = $1)
		  AND ($2 = '' OR action = $2)
		ORDER BY occurred_at DESC, id DESC
		LIMIT $3`, filter.TenantID, filter.Action, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.TenantID, &e.ActorID, &e.Action, &e.RoleName, &e.Detail, &e.OccurredAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// PruneOlderThan deletes events before the cutoff. Used by the retention
// sweep, not by request paths.
func (r *Repository) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM role_audit_events WHERE occurred_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
