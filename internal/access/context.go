// Package access holds the per-session authorization surface. Every other
// subsystem asks a Context "can this principal do X" and "can this principal
// see Y" instead of reading role state directly.
package access

import (
	"context"
	"sort"

	"github.com/lexvault/lexvault/internal/catalog"
	"github.com/lexvault/lexvault/internal/visibility"
)

// Context carries the resolved authorization state of one principal for one
// session. It is never shared across principals and is not safe for
// concurrent mutation; request handling is single-threaded per session.
//
// The permission set is a snapshot taken at hydration. It does not refresh
// itself when roles are edited; callers re-hydrate or re-authenticate to
// pick up changes.
type Context struct {
	role        string
	userID      string
	tenantID    string
	department  string
	mode        visibility.Mode
	permissions map[string]struct{}
}

// New constructs a Context from resolved values.
func New(role, userID, tenantID, department string, mode visibility.Mode, permissionIDs []string) *Context {
	c := &Context{
		role:       role,
		userID:     userID,
		tenantID:   tenantID,
		department: department,
		mode:       mode,
	}
	c.SetPermissions(permissionIDs)
	return c
}

// HasPermission reports whether the principal holds the permission.
// GLOBAL_ADMIN bypasses the check entirely, including for ids that are not
// in the catalog.
func (c *Context) HasPermission(id string) bool {
	if c.role == catalog.RoleGlobalAdmin {
		return true
	}
	_, ok := c.permissions[id]
	return ok
}

// HasAnyPermission reports whether the principal holds at least one of the
// given permissions.
func (c *Context) HasAnyPermission(ids ...string) bool {
	if c.role == catalog.RoleGlobalAdmin {
		return true
	}
	for _, id := range ids {
		if _, ok := c.permissions[id]; ok {
			return true
		}
	}
	return false
}

// CheckVisibility reports whether the principal may see the resource under
// the session's separation mode.
func (c *Context) CheckVisibility(r visibility.Resource) bool {
	return visibility.Check(visibility.Principal{
		Role:       c.role,
		UserID:     c.userID,
		Department: c.department,
	}, c.mode, r)
}

// Role returns the principal's role name.
func (c *Context) Role() string { return c.role }

// UserID returns the principal id.
func (c *Context) UserID() string { return c.userID }

// TenantID returns the tenant id, empty for platform principals.
func (c *Context) TenantID() string { return c.tenantID }

// Department returns the principal's department, empty when unassigned.
func (c *Context) Department() string { return c.department }

// SeparationMode returns the session's separation mode.
func (c *Context) SeparationMode() visibility.Mode { return c.mode }

// Permissions returns the snapshot as a sorted slice.
func (c *Context) Permissions() []string {
	out := make([]string, 0, len(c.permissions))
	for id := range c.permissions {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// SetRole replaces the role name. The permission snapshot is left alone;
// callers that want the new role's permissions must re-hydrate.
func (c *Context) SetRole(role string) { c.role = role }

// SetPermissions replaces the permission snapshot.
func (c *Context) SetPermissions(ids []string) {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	c.permissions = set
}

// SetDepartment replaces the principal's department.
func (c *Context) SetDepartment(dept string) { c.department = dept }

// SetSeparationMode replaces the session's separation mode.
func (c *Context) SetSeparationMode(mode visibility.Mode) { c.mode = mode }

type accessContextKey struct{}

// ContextWith stores the access context in a request context.
func ContextWith(ctx context.Context, ac *Context) context.Context {
	return context.WithValue(ctx, accessContextKey{}, ac)
}

// FromContext extracts the access context from a request context.
func FromContext(ctx context.Context) *Context {
	ac, _ := ctx.Value(accessContextKey{}).(*Context)
	return ac
}
