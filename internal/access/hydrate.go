package access

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/lexvault/lexvault/internal/catalog"
	"github.com/lexvault/lexvault/internal/shared"
	"github.com/lexvault/lexvault/internal/visibility"
)

// PermissionResolver resolves a role's live permission set from the store.
// Implemented by the roles service.
type PermissionResolver interface {
	ResolvePermissions(ctx context.Context, tenantID *uuid.UUID, roleName string) ([]string, error)
}

// SettingsResolver resolves a tenant's separation mode. Implemented by the
// tenants service.
type SettingsResolver interface {
	SeparationMode(ctx context.Context, tenantID uuid.UUID) (string, error)
}

// Hydrator builds access contexts at session start.
//
// System roles are always re-derived from catalog defaults: a possibly stale
// cached session value is never trusted for a platform role. Custom tenant
// roles resolve live from the role store; an orphaned role reference (role
// deleted since login) degrades to zero permissions.
type Hydrator struct {
	resolver PermissionResolver
	settings SettingsResolver
	logger   *slog.Logger
	group    singleflight.Group
}

// NewHydrator constructs a Hydrator.
func NewHydrator(resolver PermissionResolver, settings SettingsResolver, logger *slog.Logger) *Hydrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hydrator{resolver: resolver, settings: settings, logger: logger}
}

// Hydrate resolves claims into an access context, fetching role permissions
// and tenant settings concurrently. The result is also written back into the
// claims so the session carries the resolved snapshot.
func (h *Hydrator) Hydrate(ctx context.Context, claims *shared.Claims) (*Context, error) {
	if claims == nil || claims.Role == "" {
		return nil, fmt.Errorf("%w: claims missing role", shared.ErrValidation)
	}

	var tenantID *uuid.UUID
	if claims.TenantID != "" {
		id, err := uuid.Parse(claims.TenantID)
		if err != nil {
			return nil, fmt.Errorf("%w: tenant id %q", shared.ErrValidation, claims.TenantID)
		}
		tenantID = &id
	}

	perms := []string{}
	modeStr := claims.SeparationMode

	g, gctx := errgroup.WithContext(ctx)

	if defaults, ok := catalog.DefaultsForRole(claims.Role); ok {
		perms = defaults
	} else {
		g.Go(func() error {
			resolved, err := h.resolveShared(gctx, tenantID, claims.Role)
			if err != nil {
				return fmt.Errorf("resolve permissions for %s: %w", claims.Role, err)
			}
			perms = resolved
			return nil
		})
	}

	if h.settings != nil && tenantID != nil {
		id := *tenantID
		g.Go(func() error {
			mode, err := h.settings.SeparationMode(gctx, id)
			if err != nil {
				return fmt.Errorf("resolve separation mode: %w", err)
			}
			modeStr = mode
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	mode, err := visibility.ParseMode(modeStr)
	if err != nil {
		return nil, err
	}

	claims.Permissions = perms
	claims.SeparationMode = string(mode)
	return New(claims.Role, claims.UserID, claims.TenantID, claims.Department, mode, perms), nil
}

// FromClaims rebuilds an access context from a session's stored snapshot
// without touching the store. System-role permissions are still re-derived
// from catalog defaults; custom roles keep the snapshot resolved at login,
// which is the documented staleness window after role edits.
func FromClaims(claims shared.Claims) (*Context, error) {
	if claims.Role == "" {
		return nil, fmt.Errorf("%w: claims missing role", shared.ErrValidation)
	}
	mode, err := visibility.ParseMode(claims.SeparationMode)
	if err != nil {
		return nil, err
	}
	perms := claims.Permissions
	if defaults, ok := catalog.DefaultsForRole(claims.Role); ok {
		perms = defaults
	}
	return New(claims.Role, claims.UserID, claims.TenantID, claims.Department, mode, perms), nil
}

// resolveShared collapses concurrent resolutions of the same (tenant, role)
// pair into one store round trip. The store call runs detached from the first
// caller's context: its cancellation must not fail the hydrations piggybacking
// on the same flight.
func (h *Hydrator) resolveShared(ctx context.Context, tenantID *uuid.UUID, roleName string) ([]string, error) {
	key := resolveKey(tenantID, roleName)
	v, err, _ := h.group.Do(key, func() (any, error) {
		return h.resolver.ResolvePermissions(context.WithoutCancel(ctx), tenantID, roleName)
	})
	if err != nil {
		return nil, err
	}
	perms, _ := v.([]string)
	return perms, nil
}

func resolveKey(tenantID *uuid.UUID, roleName string) string {
	var sb strings.Builder
	if tenantID != nil {
		sb.WriteString(tenantID.String())
	}
	sb.WriteString("|")
	sb.WriteString(roleName)
	return sb.String()
}
