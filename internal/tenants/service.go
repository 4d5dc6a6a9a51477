package tenants

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/lexvault/lexvault/internal/shared"
	"github.com/lexvault/lexvault/internal/visibility"
)

// RepositoryPort defines data access for tenant settings.
type RepositoryPort interface {
	Get(ctx context.Context, id uuid.UUID) (Tenant, error)
	SeparationMode(ctx context.Context, id uuid.UUID) (string, error)
	UpdateSeparationMode(ctx context.Context, id uuid.UUID, mode string) (Tenant, error)
}

// Service wraps tenant settings rules. It is the settings source for access
// context hydration.
type Service struct {
	repo RepositoryPort
}

// NewService constructs a Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Get returns the tenant record.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Tenant, error) {
	return s.repo.Get(ctx, id)
}

// SeparationMode returns the tenant's current separation mode.
func (s *Service) SeparationMode(ctx context.Context, id uuid.UUID) (string, error) {
	return s.repo.SeparationMode(ctx, id)
}

// SetSeparationMode validates and persists a new separation mode. Existing
// sessions keep operating under the mode resolved at login.
func (s *Service) SetSeparationMode(ctx context.Context, id uuid.UUID, mode string) (Tenant, error) {
	parsed, err := visibility.ParseMode(mode)
	if err != nil {
		return Tenant{}, err
	}
	if mode == "" {
		return Tenant{}, fmt.Errorf("%w: separation mode is required", shared.ErrValidation)
	}
	return s.repo.UpdateSeparationMode(ctx, id, string(parsed))
}
