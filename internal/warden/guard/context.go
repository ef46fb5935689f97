package guard

import (
	"context"

	"github.com/wardenauth/warden/internal/warden/domain"
)

type contextKey int

const identityKey contextKey = iota

// Identity is what a successful decision attaches to the request context:
// the authorized user (role and permissions loaded) and the device the
// session token was issued for.
type Identity struct {
	User     domain.User
	DeviceID string
}

// WithIdentity returns a context carrying the caller's identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the identity attached by the guard. ok is
// false on public routes, where no authentication ran.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}
