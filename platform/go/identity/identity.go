package identity

import (
	"context"

	"github.com/google/uuid"
)

// Role is the profile-level role inside a tenant.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// Identity captures the authenticated caller resolved for a request.
// It is derived once per request from verified credentials and attached to the
// context by middleware; handlers and repositories read it, never mutate it.
type Identity struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	Role     Role
	Email    string
}

// IsAdmin reports whether the caller holds the admin role in its tenant.
func (id Identity) IsAdmin() bool {
	return id.Role == RoleAdmin
}

type ctxKey struct{}

// WithIdentity returns a derived context carrying the resolved Identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext extracts the Identity and a boolean indicating presence.
func FromContext(ctx context.Context) (Identity, bool) {
	v := ctx.Value(ctxKey{})
	if v == nil {
		return Identity{}, false
	}

	id, ok := v.(Identity)
	return id, ok
}
