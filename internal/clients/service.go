package clients

import (
	"context"
	"errors"
	"strings"
)

// RepositoryPort defines data access methods for clients.
type RepositoryPort interface {
	Create(ctx context.Context, input CreateClientInput) (*Client, error)
	Get(ctx context.Context, id int64) (*Client, error)
	List(ctx context.Context, req ListClientsRequest) ([]Client, int, error)
	Update(ctx context.Context, id int64, input UpdateClientInput) (*Client, error)
	Delete(ctx context.Context, id int64) error
	Exists(ctx context.Context, id int64) (bool, error)
}

// Service handles client business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Create validates and persists a new client.
func (s *Service) Create(ctx context.Context, input CreateClientInput) (*Client, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	if input.Name == "" {
		return nil, errors.New("client name required")
	}
	if input.Email == "" {
		return nil, errors.New("client email required")
	}
	if input.Status == "" {
		input.Status = StatusProspect
	}
	if !input.Status.Valid() {
		return nil, errors.New("unknown client status")
	}
	return s.repo.Create(ctx, input)
}

// Get returns a single client.
func (s *Service) Get(ctx context.Context, id int64) (*Client, error) {
	return s.repo.Get(ctx, id)
}

// List returns clients matching the filters.
func (s *Service) List(ctx context.Context, req ListClientsRequest) ([]Client, int, error) {
	if req.Status != "" && !req.Status.Valid() {
		return nil, 0, errors.New("unknown client status")
	}
	return s.repo.List(ctx, req)
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, id int64, input UpdateClientInput) (*Client, error) {
	if input.Status != nil && !input.Status.Valid() {
		return nil, errors.New("unknown client status")
	}
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return nil, errors.New("client name required")
	}
	return s.repo.Update(ctx, id, input)
}

// ClientExists reports whether a client exists.
func (s *Service) ClientExists(ctx context.Context, id int64) (bool, error) {
	return s.repo.Exists(ctx, id)
}

// Delete removes a client.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
