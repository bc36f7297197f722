package projects

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier-crm/atelier-crm/internal/shared"
)

type mockRepository struct {
	projects map[int64]*Project
	nextID   int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{projects: make(map[int64]*Project), nextID: 1}
}

func (m *mockRepository) Create(ctx context.Context, input CreateProjectInput) (*Project, error) {
	p := &Project{
		ID:        m.nextID,
		Title:     input.Title,
		ClientID:  input.ClientID,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
		Status:    input.Status,
		Budget:    input.Budget,
	}
	m.projects[p.ID] = p
	m.nextID++
	return p, nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (*Project, error) {
	p, ok := m.projects[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (m *mockRepository) List(ctx context.Context, req ListProjectsRequest) ([]Project, int, error) {
	var out []Project
	for _, p := range m.projects {
		if req.ClientID != 0 && p.ClientID != req.ClientID {
			continue
		}
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (m *mockRepository) Update(ctx context.Context, id int64, input UpdateProjectInput) (*Project, error) {
	p, ok := m.projects[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	if input.Title != nil {
		p.Title = *input.Title
	}
	if input.Status != nil {
		p.Status = *input.Status
	}
	return p, nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.projects[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.projects, id)
	return nil
}

func (m *mockRepository) ClientIDOf(ctx context.Context, id int64) (int64, error) {
	p, ok := m.projects[id]
	if !ok {
		return 0, shared.ErrNotFound
	}
	return p.ClientID, nil
}

type knownClients map[int64]bool

func (k knownClients) ClientExists(ctx context.Context, id int64) (bool, error) {
	return k[id], nil
}

func validInput() CreateProjectInput {
	return CreateProjectInput{
		Title:     "Refonte du site vitrine",
		ClientID:  1,
		StartDate: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateDefaultsToPending(t *testing.T) {
	svc := NewService(newMockRepository(), knownClients{1: true})

	p, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, StatusPending, p.Status)
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newMockRepository(), knownClients{1: true})
	ctx := context.Background()

	in := validInput()
	in.Title = "  "
	_, err := svc.Create(ctx, in)
	assert.Error(t, err)

	in = validInput()
	in.ClientID = 0
	_, err = svc.Create(ctx, in)
	assert.Error(t, err)

	in = validInput()
	in.StartDate = time.Time{}
	_, err = svc.Create(ctx, in)
	assert.Error(t, err)

	in = validInput()
	end := in.StartDate.AddDate(0, 0, -1)
	in.EndDate = &end
	_, err = svc.Create(ctx, in)
	assert.Error(t, err)

	in = validInput()
	budget := decimal.NewFromInt(-100)
	in.Budget = &budget
	_, err = svc.Create(ctx, in)
	assert.Error(t, err)

	in = validInput()
	in.Status = "archived"
	_, err = svc.Create(ctx, in)
	assert.Error(t, err)
}

func TestCreateRejectsUnknownClient(t *testing.T) {
	svc := NewService(newMockRepository(), knownClients{1: true})

	in := validInput()
	in.ClientID = 99
	_, err := svc.Create(context.Background(), in)
	assert.Error(t, err)
}

func TestProjectClientID(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, knownClients{1: true, 2: true})
	ctx := context.Background()

	in := validInput()
	in.ClientID = 2
	p, err := svc.Create(ctx, in)
	require.NoError(t, err)

	clientID, err := svc.ProjectClientID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), clientID)

	_, err = svc.ProjectClientID(ctx, 999)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestListForClientScopesByOwner(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, knownClients{1: true, 2: true})
	ctx := context.Background()

	a := validInput()
	_, err := svc.Create(ctx, a)
	require.NoError(t, err)

	b := validInput()
	b.Title = "Portail intranet chantiers"
	b.ClientID = 2
	_, err = svc.Create(ctx, b)
	require.NoError(t, err)

	out, err := svc.ListForClient(ctx, 2)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Portail intranet chantiers", out[0].Title)
}
