package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/atelier-crm/atelier-crm/internal/shared"
	"github.com/atelier-crm/atelier-crm/internal/users"
)

type mockUserSource struct {
	byEmail map[string]*users.User
	byID    map[int64]*users.User
}

func newMockUserSource(list ...*users.User) *mockUserSource {
	m := &mockUserSource{byEmail: map[string]*users.User{}, byID: map[int64]*users.User{}}
	for _, u := range list {
		m.byEmail[u.Email] = u
		m.byID[u.ID] = u
	}
	return m
}

func (m *mockUserSource) FindByEmail(ctx context.Context, email string) (*users.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return u, nil
}

func (m *mockUserSource) GetByID(ctx context.Context, id int64) (*users.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return u, nil
}

func testUser(t *testing.T, password string) *users.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &users.User{
		ID:           1,
		Email:        "claire@atelier.local",
		PasswordHash: string(hash),
		IsStaff:      true,
		IsActive:     true,
	}
}

func newTestService(t *testing.T, clock shared.Clock, list ...*users.User) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewService(newMockUserSource(list...), client, "test-secret", 15*time.Minute, time.Hour, clock)
}

func TestAuthenticate(t *testing.T) {
	user := testUser(t, "s3cret")
	svc := newTestService(t, shared.SystemClock{}, user)
	ctx := context.Background()

	got, err := svc.Authenticate(ctx, user.Email, "s3cret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Authenticate(ctx, user.Email, "wrong")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody@atelier.local", "s3cret")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateRejectsInactive(t *testing.T) {
	user := testUser(t, "s3cret")
	user.IsActive = false
	svc := newTestService(t, shared.SystemClock{}, user)

	_, err := svc.Authenticate(context.Background(), user.Email, "s3cret")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestIssueAndVerifyToken(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	user := testUser(t, "s3cret")
	svc := newTestService(t, shared.FixedClock{Instant: now}, user)

	pair, err := svc.IssueTokens(context.Background(), user)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, int64(900), pair.ExpiresIn)

	claims, err := svc.VerifyAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "1", claims.Subject)
	assert.Equal(t, user.Email, claims.Email)
	assert.True(t, claims.IsStaff)
}

func TestVerifyAccessTokenExpiry(t *testing.T) {
	issuedAt := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	user := testUser(t, "s3cret")

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	issuer := NewService(newMockUserSource(user), client, "test-secret", 15*time.Minute, time.Hour,
		shared.FixedClock{Instant: issuedAt})
	pair, err := issuer.IssueTokens(context.Background(), user)
	require.NoError(t, err)

	// Same secret, clock moved past the access TTL.
	verifier := NewService(newMockUserSource(user), client, "test-secret", 15*time.Minute, time.Hour,
		shared.FixedClock{Instant: issuedAt.Add(16 * time.Minute)})
	_, err = verifier.VerifyAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, shared.ErrTokenExpired)
}

func TestVerifyAccessTokenRejectsTampering(t *testing.T) {
	user := testUser(t, "s3cret")
	svc := newTestService(t, shared.SystemClock{}, user)

	pair, err := svc.IssueTokens(context.Background(), user)
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(pair.AccessToken + "x")
	assert.Error(t, err)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	other := NewService(newMockUserSource(user), client, "another-secret", 15*time.Minute, time.Hour, shared.SystemClock{})
	_, err = other.VerifyAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, shared.ErrTokenExpired)
}

func TestRefreshRotatesToken(t *testing.T) {
	user := testUser(t, "s3cret")
	svc := newTestService(t, shared.SystemClock{}, user)
	ctx := context.Background()

	pair, err := svc.IssueTokens(ctx, user)
	require.NoError(t, err)

	next, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	// The old token is burned.
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, shared.ErrTokenExpired)
}

func TestRevoke(t *testing.T) {
	user := testUser(t, "s3cret")
	svc := newTestService(t, shared.SystemClock{}, user)
	ctx := context.Background()

	pair, err := svc.IssueTokens(ctx, user)
	require.NoError(t, err)
	require.NoError(t, svc.Revoke(ctx, pair.RefreshToken))

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, shared.ErrTokenExpired)
}
