package repo

import (
	"context"
	"errors"

	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/identity"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/persistence"
)

// Repository defines the persistence operations required by the profiles service.
type Repository interface {
	GetSelf(ctx context.Context) (persistence.Profile, error)
	UpdateSelf(ctx context.Context, params persistence.UpdateProfileParams) (persistence.Profile, error)
}

type postgresRepository struct {
	store *persistence.ProfileStore
}

// NewPostgresRepository constructs a repository backed by the shared persistence layer.
func NewPostgresRepository(store *persistence.ProfileStore) Repository {
	if store == nil {
		panic("profile store is required")
	}
	return &postgresRepository{store: store}
}

func (r *postgresRepository) GetSelf(ctx context.Context) (persistence.Profile, error) {
	id, err := requireIdentity(ctx)
	if err != nil {
		return persistence.Profile{}, err
	}
	return r.store.GetProfile(ctx, id.TenantID, id.UserID)
}

func (r *postgresRepository) UpdateSelf(ctx context.Context, params persistence.UpdateProfileParams) (persistence.Profile, error) {
	id, err := requireIdentity(ctx)
	if err != nil {
		return persistence.Profile{}, err
	}
	return r.store.UpdateProfile(ctx, id.TenantID, id.UserID, params)
}

func requireIdentity(ctx context.Context) (identity.Identity, error) {
	id, ok := identity.FromContext(ctx)
	if !ok {
		return identity.Identity{}, errors.New("identity missing from context")
	}
	return id, nil
}
