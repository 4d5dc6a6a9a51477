package roles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/lexvault/lexvault/internal/audit"
	"github.com/lexvault/lexvault/internal/catalog"
	"github.com/lexvault/lexvault/internal/shared"
)

// RepositoryPort defines data access methods for roles.
type RepositoryPort interface {
	List(ctx context.Context, tenantID *uuid.UUID) ([]Role, error)
	Get(ctx context.Context, id uuid.UUID) (Role, error)
	Create(ctx context.Context, role Role) (Role, error)
	Update(ctx context.Context, role Role) (Role, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ResolvePermissions(ctx context.Context, tenantID *uuid.UUID, roleName string) ([]string, error)
	UpsertSystemRole(ctx context.Context, name, description string, permissionIDs []string) error
}

// Recorder appends to the audit trail.
type Recorder interface {
	Record(ctx context.Context, e audit.Event) error
}

// Service handles role business logic. All mutations validate permission ids
// against the catalog and refuse to touch system roles.
type Service struct {
	repo     RepositoryPort
	recorder Recorder
	logger   *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, recorder Recorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, recorder: recorder, logger: logger}
}

// CreateInput carries the fields for a new tenant role.
type CreateInput struct {
	Name          string
	Description   string
	PermissionIDs []string
	TenantID      *uuid.UUID
}

// UpdateInput carries the replacement fields for an existing role.
type UpdateInput struct {
	Name          string
	Description   string
	PermissionIDs []string
}

// List returns system roles plus the tenant's custom roles. Reads go against
// committed state, so mutations are visible to an immediately following List.
func (s *Service) List(ctx context.Context, tenantID *uuid.UUID) ([]Role, error) {
	return s.repo.List(ctx, tenantID)
}

// Get fetches a role by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Role, error) {
	return s.repo.Get(ctx, id)
}

// Create inserts a new tenant role. System role names are reserved: a tenant
// role carrying one would shadow the platform role when sessions hydrate by
// name, so such names are rejected outright.
func (s *Service) Create(ctx context.Context, input CreateInput, actorID string) (Role, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Role{}, fmt.Errorf("%w: role name required", shared.ErrValidation)
	}
	if catalog.IsSystemRole(name) {
		return Role{}, fmt.Errorf("%w: %q is a reserved system role name", shared.ErrValidation, name)
	}
	perms, err := normalizePermissionIDs(input.PermissionIDs)
	if err != nil {
		return Role{}, err
	}

	role, err := s.repo.Create(ctx, Role{
		ID:            uuid.New(),
		TenantID:      input.TenantID,
		Name:          name,
		Description:   strings.TrimSpace(input.Description),
		IsSystem:      false,
		PermissionIDs: perms,
	})
	if err != nil {
		return Role{}, err
	}

	s.record(ctx, audit.Event{
		TenantID: input.TenantID,
		ActorID:  actorID,
		Action:   audit.ActionRoleCreated,
		RoleName: role.Name,
	})
	return role, nil
}

// Update rewrites a role. System roles are immutable through this path.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateInput, actorID string) (Role, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return Role{}, err
	}
	if existing.IsSystem {
		return Role{}, fmt.Errorf("%w: system role %q cannot be modified", shared.ErrForbidden, existing.Name)
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Role{}, fmt.Errorf("%w: role name required", shared.ErrValidation)
	}
	if catalog.IsSystemRole(name) {
		return Role{}, fmt.Errorf("%w: %q is a reserved system role name", shared.ErrValidation, name)
	}
	perms, err := normalizePermissionIDs(input.PermissionIDs)
	if err != nil {
		return Role{}, err
	}

	role, err := s.repo.Update(ctx, Role{
		ID:            id,
		Name:          name,
		Description:   strings.TrimSpace(input.Description),
		PermissionIDs: perms,
	})
	if err != nil {
		return Role{}, err
	}

	s.record(ctx, audit.Event{
		TenantID: role.TenantID,
		ActorID:  actorID,
		Action:   audit.ActionRoleUpdated,
		RoleName: role.Name,
	})
	return role, nil
}

// Delete removes a role. System roles are protected; existing sessions keep
// their resolved permission snapshot until re-authentication.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, actorID string) error {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing.IsSystem {
		return fmt.Errorf("%w: system role %q cannot be deleted", shared.ErrForbidden, existing.Name)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.record(ctx, audit.Event{
		TenantID: existing.TenantID,
		ActorID:  actorID,
		Action:   audit.ActionRoleDeleted,
		RoleName: existing.Name,
	})
	return nil
}

// ApplyTemplate provisions a template's blueprint roles for a tenant. It is
// additive and idempotent: blueprints whose name already exists for the
// tenant are skipped, including the race where a manual creation lands
// between the existence check and the insert. Returns the names created.
func (s *Service) ApplyTemplate(ctx context.Context, templateID string, tenantID uuid.UUID, actorID string) ([]string, error) {
	tpl, ok := TemplateByID(templateID)
	if !ok {
		return nil, fmt.Errorf("%w: template %q", shared.ErrNotFound, templateID)
	}

	var created []string
	for _, bp := range tpl.Blueprints {
		perms, err := normalizePermissionIDs(bp.PermissionIDs)
		if err != nil {
			return created, err
		}
		_, err = s.repo.Create(ctx, Role{
			ID:            uuid.New(),
			TenantID:      &tenantID,
			Name:          bp.Name,
			Description:   bp.Description,
			IsSystem:      false,
			PermissionIDs: perms,
		})
		if err != nil {
			if errors.Is(err, shared.ErrDuplicate) {
				s.logger.Debug("template role already exists, skipping",
					slog.String("template", tpl.ID),
					slog.String("role", bp.Name))
				continue
			}
			return created, err
		}
		created = append(created, bp.Name)
	}

	s.record(ctx, audit.Event{
		TenantID: &tenantID,
		ActorID:  actorID,
		Action:   audit.ActionTemplateApplied,
		RoleName: tpl.ID,
		Detail:   fmt.Sprintf("created %d of %d roles", len(created), len(tpl.Blueprints)),
	})
	return created, nil
}

// ResolvePermissions returns the live permission set for a role name. Missing
// roles resolve to an empty set.
func (s *Service) ResolvePermissions(ctx context.Context, tenantID *uuid.UUID, roleName string) ([]string, error) {
	return s.repo.ResolvePermissions(ctx, tenantID, roleName)
}

// Seed provisions the platform's system roles from catalog defaults. Safe to
// run repeatedly; this reseed is the only path that rewrites a system role's
// permission set.
func (s *Service) Seed(ctx context.Context) error {
	for _, def := range catalog.SystemRoles() {
		if err := s.repo.UpsertSystemRole(ctx, def.Name, def.Description, def.PermissionIDs); err != nil {
			return fmt.Errorf("seed system role %s: %w", def.Name, err)
		}
	}
	return nil
}

func (s *Service) record(ctx context.Context, e audit.Event) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(ctx, e); err != nil {
		s.logger.Warn("audit record failed",
			slog.String("action", e.Action),
			slog.Any("error", err))
	}
}

func normalizePermissionIDs(ids []string) ([]string, error) {
	seen := make(map[string]struct{}, len(ids))
	normalized := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if !catalog.Exists(id) {
			return nil, fmt.Errorf("%w: %q", shared.ErrUnknownPermission, id)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		normalized = append(normalized, id)
	}
	return normalized, nil
}
