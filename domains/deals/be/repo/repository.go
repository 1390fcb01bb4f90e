package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/identity"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/persistence"
)

// Repository defines the persistence operations required by the deals service.
type Repository interface {
	List(ctx context.Context, params persistence.ListParams) ([]persistence.Deal, int, error)
	Get(ctx context.Context, id uuid.UUID) (persistence.Deal, error)
	Create(ctx context.Context, params persistence.CreateDealParams) (persistence.Deal, error)
	Update(ctx context.Context, id uuid.UUID, params persistence.UpdateDealParams) (persistence.Deal, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresRepository struct {
	store *persistence.DealStore
}

// NewPostgresRepository constructs a repository backed by the shared persistence layer.
func NewPostgresRepository(store *persistence.DealStore) Repository {
	if store == nil {
		panic("deal store is required")
	}
	return &postgresRepository{store: store}
}

func (r *postgresRepository) List(ctx context.Context, params persistence.ListParams) ([]persistence.Deal, int, error) {
	id, err := requireIdentity(ctx)
	if err != nil {
		return nil, 0, err
	}
	return r.store.ListDeals(ctx, id.TenantID, params)
}

func (r *postgresRepository) Get(ctx context.Context, dealID uuid.UUID) (persistence.Deal, error) {
	id, err := requireIdentity(ctx)
	if err != nil {
		return persistence.Deal{}, err
	}
	return r.store.GetDeal(ctx, id.TenantID, dealID)
}

func (r *postgresRepository) Create(ctx context.Context, params persistence.CreateDealParams) (persistence.Deal, error) {
	id, err := requireIdentity(ctx)
	if err != nil {
		return persistence.Deal{}, err
	}
	return r.store.CreateDeal(ctx, id.TenantID, params)
}

func (r *postgresRepository) Update(ctx context.Context, dealID uuid.UUID, params persistence.UpdateDealParams) (persistence.Deal, error) {
	id, err := requireIdentity(ctx)
	if err != nil {
		return persistence.Deal{}, err
	}
	return r.store.UpdateDeal(ctx, id.TenantID, dealID, params)
}

func (r *postgresRepository) Delete(ctx context.Context, dealID uuid.UUID) error {
	id, err := requireIdentity(ctx)
	if err != nil {
		return err
	}
	return r.store.DeleteDeal(ctx, id.TenantID, dealID)
}

func requireIdentity(ctx context.Context) (identity.Identity, error) {
	id, ok := identity.FromContext(ctx)
	if !ok {
		return identity.Identity{}, errors.New("identity missing from context")
	}
	return id, nil
}
