package repo

import (
	"context"
	"errors"

	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/identity"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/persistence"
)

// Repository defines the persistence operations required by the flags service.
type Repository interface {
	ListDefaults(ctx context.Context) ([]persistence.FlagDefault, error)
	GetTenantSettings(ctx context.Context) (persistence.TenantSettings, error)
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

func (r *postgresRepository) ListDefaults(ctx context.Context) ([]persistence.FlagDefault, error) {
	id, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	return r.store.ListFlagDefaults(ctx, id.TenantID)
}

func (r *postgresRepository) GetTenantSettings(ctx context.Context) (persistence.TenantSettings, error) {
	id, err := requireIdentity(ctx)
	if err != nil {
		return persistence.TenantSettings{}, err
	}

	tenant, err := r.store.GetTenant(ctx, id.TenantID)
	if err != nil {
		return persistence.TenantSettings{}, err
	}
	return tenant.Settings, nil
}

func requireIdentity(ctx context.Context) (identity.Identity, error) {
	id, ok := identity.FromContext(ctx)
	if !ok {
		return identity.Identity{}, errors.New("identity missing from context")
	}
	return id, nil
}
