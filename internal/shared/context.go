package shared

import "context"

type contextKey string

const identityKey contextKey = "identity"

// Identity describes the authenticated caller attached to a request.
type Identity struct {
	UserID  int64
	Email   string
	IsStaff bool
}

// ContextWithIdentity stores the caller identity in the context.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext retrieves the caller identity, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}
