package auth

import (
	"time"

	"github.com/google/uuid"
)

// User represents an authenticated user account. TenantID is nil for
// platform operators (GLOBAL_ADMIN).
type User struct {
	ID           uuid.UUID
	TenantID     *uuid.UUID
	Email        string
	PasswordHash string
	Role         string
	Department   string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
