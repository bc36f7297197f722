package clients

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier-crm/atelier-crm/internal/shared"
)

type mockRepository struct {
	clients map[int64]*Client
	byEmail map[string]int64
	nextID  int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		clients: make(map[int64]*Client),
		byEmail: make(map[string]int64),
		nextID:  1,
	}
}

func (m *mockRepository) Create(ctx context.Context, input CreateClientInput) (*Client, error) {
	if _, taken := m.byEmail[input.Email]; taken {
		return nil, shared.ErrConflict
	}
	c := &Client{
		ID:        m.nextID,
		Name:      input.Name,
		FirstName: input.FirstName,
		Email:     input.Email,
		Status:    input.Status,
	}
	m.clients[c.ID] = c
	m.byEmail[c.Email] = c.ID
	m.nextID++
	return c, nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (*Client, error) {
	c, ok := m.clients[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return c, nil
}

func (m *mockRepository) List(ctx context.Context, req ListClientsRequest) ([]Client, int, error) {
	var out []Client
	for _, c := range m.clients {
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (m *mockRepository) Update(ctx context.Context, id int64, input UpdateClientInput) (*Client, error) {
	c, ok := m.clients[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	if input.Name != nil {
		c.Name = *input.Name
	}
	if input.Status != nil {
		c.Status = *input.Status
	}
	return c, nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.clients[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.clients, id)
	return nil
}

func (m *mockRepository) Exists(ctx context.Context, id int64) (bool, error) {
	_, ok := m.clients[id]
	return ok, nil
}

func TestCreateDefaultsToProspect(t *testing.T) {
	svc := NewService(newMockRepository())

	c, err := svc.Create(context.Background(), CreateClientInput{
		Name: "Dubois", Email: "marie@lumen-design.fr",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusProspect, c.Status)
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newMockRepository())
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateClientInput{Email: "a@b.fr"})
	assert.Error(t, err)

	_, err = svc.Create(ctx, CreateClientInput{Name: "Dubois"})
	assert.Error(t, err)

	_, err = svc.Create(ctx, CreateClientInput{Name: "Dubois", Email: "a@b.fr", Status: "vip"})
	assert.Error(t, err)
}

func TestCreateDuplicateEmail(t *testing.T) {
	svc := NewService(newMockRepository())
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateClientInput{Name: "Dubois", Email: "marie@lumen-design.fr"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateClientInput{Name: "Autre", Email: "marie@lumen-design.fr"})
	assert.ErrorIs(t, err, shared.ErrConflict)
}

func TestClientExists(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	ctx := context.Background()

	c, err := svc.Create(ctx, CreateClientInput{Name: "Dubois", Email: "marie@lumen-design.fr"})
	require.NoError(t, err)

	ok, err := svc.ClientExists(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.ClientExists(ctx, 999)
	require.NoError(t, err)
	assert.False(t, ok)
}
