package audit

import (
	"context"
	"fmt"
)

// RepositoryPort defines data access for the audit trail.
type RepositoryPort interface {
	Insert(ctx context.Context, e Event) error
	List(ctx context.Context, filter Filter) ([]Event, error)
}

// Service coordinates audit recording and retrieval.
type Service struct {
	repo RepositoryPort
}

// NewService constructs a Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Record appends an event.
func (s *Service) Record(ctx context.Context, e Event) error {
	if s.repo == nil {
		return fmt.Errorf("audit: repository not configured")
	}
	return s.repo.Insert(ctx, e)
}

// List returns events matching the filter, newest first.
func (s *Service) List(ctx context.Context, filter Filter) ([]Event, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("audit: repository not configured")
	}
	return s.repo.List(ctx, filter)
}
