package tenants

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is a law firm or legal department using the platform. The
// separation mode governs how the visibility scoper treats the tenant's
// resources.
type Tenant struct {
	ID             uuid.UUID
	Name           string
	SeparationMode string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
