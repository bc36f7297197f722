package auth

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/atelier-crm/atelier-crm/internal/platform/httpx"
	"github.com/atelier-crm/atelier-crm/internal/shared"
)

// Middleware authenticates requests carrying a bearer access token and
// attaches the caller identity to the request context.
type Middleware struct {
	Service *Service
}

// RequireUser rejects requests without a valid access token.
func (m Middleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := m.authenticate(r)
		if !ok {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		userID, err := strconv.ParseInt(claims.Subject, 10, 64)
		if err != nil {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		identity := shared.Identity{UserID: userID, Email: claims.Email, IsStaff: claims.IsStaff}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithIdentity(r.Context(), identity)))
	})
}

// RequireStaff rejects requests from non-staff users.
func (m Middleware) RequireStaff(next http.Handler) http.Handler {
	return m.RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, _ := shared.IdentityFromContext(r.Context())
		if !identity.IsStaff {
			httpx.RespondError(w, httpx.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	}))
}

func (m Middleware) authenticate(r *http.Request) (*Claims, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return nil, false
	}
	claims, err := m.Service.VerifyAccessToken(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		return nil, false
	}
	return claims, true
}
