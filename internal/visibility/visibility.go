// Package visibility decides whether a principal may see a resource under the
// tenant's separation mode.
package visibility

import (
	"fmt"

	"github.com/lexvault/lexvault/internal/catalog"
	"github.com/lexvault/lexvault/internal/shared"
)

// Mode is the tenant-wide separation policy.
type Mode string

const (
	// ModeOpen makes every resource visible to every principal.
	ModeOpen Mode = "OPEN"
	// ModeDepartmental scopes resources to the owning department.
	ModeDepartmental Mode = "DEPARTMENTAL"
	// ModeStrict limits resources to owner, team members and uploader.
	ModeStrict Mode = "STRICT"
)

// ParseMode parses a stored mode string. The empty string maps to OPEN for
// tenants that never configured separation.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeOpen, ModeDepartmental, ModeStrict:
		return Mode(s), nil
	case "":
		return ModeOpen, nil
	default:
		return "", fmt.Errorf("%w: separation mode %q", shared.ErrValidation, s)
	}
}

// Principal is the authenticated actor being authorized.
type Principal struct {
	Role       string
	UserID     string
	Department string
}

// Resource carries the scoping attributes of a matter, document or chat
// session. All fields are optional; absence is the empty value. Resource
// providers populate what they have and the scoper never mutates it.
type Resource struct {
	Department        string
	InternalCounselID string
	UploadedBy        string
	Team              []string
}

// Check reports whether the principal may see the resource.
//
// Rules in order: admin roles see everything; OPEN sees everything;
// DEPARTMENTAL sees unassigned resources and same-department resources;
// STRICT sees only resources the principal owns, uploaded, or is teamed on.
//
// A resource without a department under DEPARTMENTAL is visible to everyone.
// That default-open treatment of orphaned resources is deliberate.
func Check(p Principal, mode Mode, r Resource) bool {
	if p.Role == catalog.RoleGlobalAdmin || p.Role == catalog.RoleTenantAdmin {
		return true
	}

	switch mode {
	case ModeOpen:
		return true
	case ModeDepartmental:
		return r.Department == "" || r.Department == p.Department
	case ModeStrict:
		if p.UserID == "" {
			return false
		}
		if r.InternalCounselID == p.UserID || r.UploadedBy == p.UserID {
			return true
		}
		for _, member := range r.Team {
			if member == p.UserID {
				return true
			}
		}
		return false
	default:
		return false
	}
}
