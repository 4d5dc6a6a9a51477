package roles

import (
	"time"

	"github.com/google/uuid"
)

// Role is a named permission set. System roles are platform-defined
// (TenantID nil, IsSystem true) and immutable through the store; tenant roles
// are owned and editable by the tenant.
type Role struct {
	ID            uuid.UUID
	TenantID      *uuid.UUID
	Name          string
	Description   string
	IsSystem      bool
	PermissionIDs []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
