package roles

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lexvault/lexvault/internal/platform/db"
	"github.com/lexvault/lexvault/internal/shared"
)

// Repository provides PostgreSQL backed persistence. All reads are against
// committed state, so a List immediately after a mutation reflects it.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// List returns system roles plus the tenant's custom roles. A nil tenantID
// lists system roles only.
func (r *Repository) List(ctx context.Context, tenantID *uuid.UUID) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, tenant_id, name, description, is_system, created_at, updated_at
		FROM roles
		WHERE tenant_id IS NULL OR tenant_id = $1
		ORDER BY is_system DESC, name`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Role
	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.TenantID, &role.Name, &role.Description, &role.IsSystem, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, role)
		ids = append(ids, role.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	perms, err := r.permissionsForRoles(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range result {
		result[i].PermissionIDs = perms[result[i].ID]
	}
	return result, nil
}

// Get fetches a role with its permission set.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Role, error) {
	var role Role
	err := r.pool.QueryRow(ctx, `
		SELECT id, tenant_id, name, description, is_system, created_at, updated_at
		FROM roles WHERE id = $1`, id).
		Scan(&role.ID, &role.TenantID, &role.Name, &role.Description, &role.IsSystem, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Role{}, shared.ErrNotFound
		}
		return Role{}, err
	}

	perms, err := r.permissionsForRoles(ctx, []uuid.UUID{role.ID})
	if err != nil {
		return Role{}, err
	}
	role.PermissionIDs = perms[role.ID]
	return role, nil
}

// Create inserts a role and its permission associations. A name already taken
// within the tenant surfaces as shared.ErrDuplicate; ApplyTemplate relies on
// that to treat the race with manual creation as "already exists, skip".
func (r *Repository) Create(ctx context.Context, role Role) (Role, error) {
	created := role
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO roles (id, tenant_id, name, description, is_system, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, now(), now())
			RETURNING created_at, updated_at`,
			role.ID, role.TenantID, role.Name, role.Description, role.IsSystem).
			Scan(&created.CreatedAt, &created.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: role %q", shared.ErrDuplicate, role.Name)
			}
			return err
		}
		return insertPermissions(ctx, tx, role.ID, role.PermissionIDs)
	})
	if err != nil {
		return Role{}, err
	}
	return created, nil
}

// Update rewrites a role's fields and replaces its permission associations.
func (r *Repository) Update(ctx context.Context, role Role) (Role, error) {
	updated := role
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			UPDATE roles SET name = $2, description = $3, updated_at = now()
			WHERE id = $1
			RETURNING tenant_id, is_system, created_at, updated_at`,
			role.ID, role.Name, role.Description).
			Scan(&updated.TenantID, &updated.IsSystem, &updated.CreatedAt, &updated.UpdatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return shared.ErrNotFound
			}
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: role %q", shared.ErrDuplicate, role.Name)
			}
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, role.ID); err != nil {
			return err
		}
		return insertPermissions(ctx, tx, role.ID, role.PermissionIDs)
	})
	if err != nil {
		return Role{}, err
	}
	return updated, nil
}

// Delete removes a role and its permission associations. Principals keep
// their resolved snapshots; the orphaned reference resolves to no
// permissions on next hydration.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// ResolvePermissions returns the stored permission set for a role name within
// a tenant scope. A missing role yields an empty set, not an error: sessions
// referencing a deleted role degrade to zero permissions.
func (r *Repository) ResolvePermissions(ctx context.Context, tenantID *uuid.UUID, roleName string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT rp.permission_id
		FROM roles r
		JOIN role_permissions rp ON rp.role_id = r.id
		WHERE r.name = $1 AND (r.tenant_id IS NULL OR r.tenant_id = $2)
		ORDER BY rp.permission_id`, roleName, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	perms := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		perms = append(perms, id)
	}
	return perms, rows.Err()
}

// UpsertSystemRole writes a system role from catalog defaults. This is the
// template-reseed path, the only one allowed to rewrite a system role.
func (r *Repository) UpsertSystemRole(ctx context.Context, name, description string, permissionIDs []string) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var id uuid.UUID
		err := tx.QueryRow(ctx, `
			INSERT INTO roles (id, tenant_id, name, description, is_system, created_at, updated_at)
			VALUES ($1, NULL, $2, $3, TRUE, now(), now())
			ON CONFLICT (tenant_id, name) DO UPDATE SET description = EXCLUDED.description, updated_at = now()
			RETURNING id`,
			uuid.New(), name, description).Scan(&id)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, id); err != nil {
			return err
		}
		return insertPermissions(ctx, tx, id, permissionIDs)
	})
}

func insertPermissions(ctx context.Context, tx pgx.Tx, roleID uuid.UUID, permissionIDs []string) error {
	for _, pid := range permissionIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO role_permissions (role_id, permission_id, created_at)
			VALUES ($1, $2, now())
			ON CONFLICT DO NOTHING`, roleID, pid); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) permissionsForRoles(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]string, error) {
	result := make(map[uuid.UUID][]string, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT role_id, permission_id
		FROM role_permissions
		WHERE role_id = ANY($1)
		ORDER BY permission_id`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var roleID uuid.UUID
		var pid string
		if err := rows.Scan(&roleID, &pid); err != nil {
			return nil, err
		}
		result[roleID] = append(result[roleID], pid)
	}
	return result, rows.Err()
}
