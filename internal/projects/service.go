package projects

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// RepositoryPort defines data access methods for projects.
type RepositoryPort interface {
	Create(ctx context.Context, input CreateProjectInput) (*Project, error)
	Get(ctx context.Context, id int64) (*Project, error)
	List(ctx context.Context, req ListProjectsRequest) ([]Project, int, error)
	Update(ctx context.Context, id int64, input UpdateProjectInput) (*Project, error)
	Delete(ctx context.Context, id int64) error
	ClientIDOf(ctx context.Context, id int64) (int64, error)
}

// ClientSource checks that the owning client exists.
type ClientSource interface {
	ClientExists(ctx context.Context, id int64) (bool, error)
}

// Service handles project business logic.
type Service struct {
	repo    RepositoryPort
	clients ClientSource
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, clients ClientSource) *Service {
	return &Service{repo: repo, clients: clients}
}

// Create validates and persists a new project.
func (s *Service) Create(ctx context.Context, input CreateProjectInput) (*Project, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return nil, errors.New("project title required")
	}
	if input.ClientID == 0 {
		return nil, errors.New("client ID required")
	}
	if input.StartDate.IsZero() {
		return nil, errors.New("start date required")
	}
	if input.EndDate != nil && input.EndDate.Before(input.StartDate) {
		return nil, errors.New("end date before start date")
	}
	if input.Budget != nil && input.Budget.LessThan(decimal.Zero) {
		return nil, errors.New("budget must not be negative")
	}
	if input.Status == "" {
		input.Status = StatusPending
	}
	if !input.Status.Valid() {
		return nil, errors.New("unknown project status")
	}

	exists, err := s.clients.ClientExists(ctx, input.ClientID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.New("client does not exist")
	}

	return s.repo.Create(ctx, input)
}

// Get returns a single project.
func (s *Service) Get(ctx context.Context, id int64) (*Project, error) {
	return s.repo.Get(ctx, id)
}

// List returns projects matching the filters.
func (s *Service) List(ctx context.Context, req ListProjectsRequest) ([]Project, int, error) {
	if req.Status != "" && !req.Status.Valid() {
		return nil, 0, errors.New("unknown project status")
	}
	return s.repo.List(ctx, req)
}

// ListForClient returns every project owned by a client, used to scope
// the project picker on invoice creation.
func (s *Service) ListForClient(ctx context.Context, clientID int64) ([]Project, error) {
	out, _, err := s.repo.List(ctx, ListProjectsRequest{ClientID: clientID, PerPage: 500})
	return out, err
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, id int64, input UpdateProjectInput) (*Project, error) {
	if input.Status != nil && !input.Status.Valid() {
		return nil, errors.New("unknown project status")
	}
	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		return nil, errors.New("project title required")
	}
	if input.Budget != nil && input.Budget.LessThan(decimal.Zero) {
		return nil, errors.New("budget must not be negative")
	}
	return s.repo.Update(ctx, id, input)
}

// Delete removes a project.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// ProjectClientID returns the owning client of a project.
func (s *Service) ProjectClientID(ctx context.Context, id int64) (int64, error) {
	return s.repo.ClientIDOf(ctx, id)
}
