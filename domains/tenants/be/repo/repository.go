package repo

import (
	"context"
	"errors"

	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/identity"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/persistence"
)

// Repository defines the persistence operations required by the tenants service.
type Repository interface {
	Get(ctx context.Context) (persistence.Tenant, error)
	Update(ctx context.Context, params persistence.UpdateTenantParams) (persistence.Tenant, error)
	UpdateSettings(ctx context.Context, settings persistence.TenantSettings) (persistence.Tenant, error)
}

type postgresRepository struct {
	store *persistence.TenantStore
}

// NewPostgresRepository constructs a repository backed by the shared persistence layer.
func NewPostgresRepository(store *persistence.TenantStore) Repository {
	if store == nil {
		panic("tenant store is required")
	}
	return &postgresRepository{store: store}
}

func (r *postgresRepository) Get(ctx context.Context) (persistence.Tenant, error) {
	id, err := requireIdentity(ctx)
	if err != nil {
		return persistence.Tenant{}, err
	}
	return r.store.GetTenant(ctx, id.TenantID)
}

func (r *postgresRepository) Update(ctx context.Context, params persistence.UpdateTenantParams) (persistence.Tenant, error) {
	id, err := requireIdentity(ctx)
	if err != nil {
		return persistence.Tenant{}, err
	}
	return r.store.UpdateTenant(ctx, id.TenantID, params)
}

func (r *postgresRepository) UpdateSettings(ctx context.Context, settings persistence.TenantSettings) (persistence.Tenant, error) {
	id, err := requireIdentity(ctx)
	if err != nil {
		return persistence.Tenant{}, err
	}
	return r.store.UpdateSettings(ctx, id.TenantID, settings)
}

func requireIdentity(ctx context.Context) (identity.Identity, error) {
	id, ok := identity.FromContext(ctx)
	if !ok {
		return identity.Identity{}, errors.New("identity missing from context")
	}
	return id, nil
}
