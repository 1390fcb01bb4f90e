package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/identity"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/persistence"
)

// IdentityResolver maps a verified identity-provider subject to the caller's
// Identity. The lookup joins the profile with its tenant so members of
// deactivated tenants resolve as unknown.
type IdentityResolver struct {
	store *persistence.ProfileStore
}

// NewIdentityResolver constructs a resolver backed by the profile store.
func NewIdentityResolver(store *persistence.ProfileStore) *IdentityResolver {
	if store == nil {
		panic("profile store is required")
	}
	return &IdentityResolver{store: store}
}

// ResolveIdentity implements the identity middleware Resolver contract.
func (r *IdentityResolver) ResolveIdentity(ctx context.Context, subject string) (identity.Identity, error) {
	userID, err := uuid.Parse(subject)
	if err != nil {
		return identity.Identity{}, fmt.Errorf("subject is not a valid user id: %w", err)
	}

	profile, err := r.store.GetProfileBySubject(ctx, userID)
	if err != nil {
		return identity.Identity{}, mapPersistenceError(err)
	}

	return identity.Identity{
		UserID:   profile.UserID,
		TenantID: profile.TenantID,
		Role:     identity.Role(profile.Role),
		Email:    profile.Email,
	}, nil
}
