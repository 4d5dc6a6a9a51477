// Package audit records role and permission mutations in an insert-only
// trail.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Audit actions.
const (
	ActionRoleCreated     = "role.created"
	ActionRoleUpdated     = "role.updated"
	ActionRoleDeleted     = "role.deleted"
	ActionTemplateApplied = "role.template_applied"
)

// Event is one audit trail entry.
type Event struct {
	ID         int64
	TenantID   *uuid.UUID
	ActorID    string
	Action     string
	RoleName   string
	Detail     string
	OccurredAt time.Time
}

// Filter narrows audit listings.
type Filter struct {
	TenantID *uuid.UUID
	Action   string
	Limit    int
}
