package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/atelier-crm/atelier-crm/internal/shared"
	"github.com/atelier-crm/atelier-crm/internal/users"
)

// UserSource resolves accounts for authentication.
type UserSource interface {
	FindByEmail(ctx context.Context, email string) (*users.User, error)
	GetByID(ctx context.Context, id int64) (*users.User, error)
}

// TokenPair bundles the access and refresh tokens returned on login.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Claims carried inside the access token.
type Claims struct {
	Email   string `json:"email"`
	IsStaff bool   `json:"is_staff"`
	jwt.RegisteredClaims
}

// Service wraps authentication business rules.
type Service struct {
	users      UserSource
	redis      *redis.Client
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	clock      shared.Clock
}

// NewService constructs a new Service.
func NewService(userSource UserSource, redisClient *redis.Client, secret string, accessTTL, refreshTTL time.Duration, clock shared.Clock) *Service {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	return &Service{
		users:      userSource,
		redis:      redisClient,
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		clock:      clock,
	}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*users.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// IssueTokens creates a signed access token and a Redis backed refresh token.
func (s *Service) IssueTokens(ctx context.Context, user *users.User) (*TokenPair, error) {
	now := s.clock.Now()
	claims := Claims{
		Email:   user.Email,
		IsStaff: user.IsStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("auth: sign token: %w", err)
	}

	refresh := uuid.NewString()
	if err := s.redis.Set(ctx, refreshKey(refresh), user.ID, s.refreshTTL).Err(); err != nil {
		return nil, fmt.Errorf("auth: store refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

// Refresh exchanges a refresh token for a new pair, rotating the old one.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	userID, err := s.redis.Get(ctx, refreshKey(refreshToken)).Int64()
	if err != nil {
		return nil, shared.ErrTokenExpired
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil || !user.IsActive {
		return nil, shared.ErrTokenExpired
	}
	if err := s.redis.Del(ctx, refreshKey(refreshToken)).Err(); err != nil {
		return nil, fmt.Errorf("auth: rotate refresh token: %w", err)
	}
	return s.IssueTokens(ctx, user)
}

// Revoke invalidates a refresh token on logout.
func (s *Service) Revoke(ctx context.Context, refreshToken string) error {
	return s.redis.Del(ctx, refreshKey(refreshToken)).Err()
}

// VerifyAccessToken parses and validates an access token.
func (s *Service) VerifyAccessToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("auth: unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.clock.Now))
	if err != nil || !token.Valid {
		return nil, shared.ErrTokenExpired
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, shared.ErrTokenExpired
	}
	return claims, nil
}

func refreshKey(token string) string {
	return "auth:refresh:" + token
}
