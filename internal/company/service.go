package company

import (
	"context"
	"errors"
	"strings"
)

// RepositoryPort defines data access methods for the company profile.
type RepositoryPort interface {
	Get(ctx context.Context) (*Profile, error)
	Update(ctx context.Context, input UpdateProfileInput) (*Profile, error)
}

// Service handles company profile logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Get returns the company profile.
func (s *Service) Get(ctx context.Context) (*Profile, error) {
	return s.repo.Get(ctx)
}

// Update applies a partial update. The name can change but never go blank.
func (s *Service) Update(ctx context.Context, input UpdateProfileInput) (*Profile, error) {
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return nil, errors.New("company name required")
	}
	return s.repo.Update(ctx, input)
}
