package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/identity"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/persistence"
)

// Repository defines the persistence operations required by the seo service.
type Repository interface {
	ListAudits(ctx context.Context, params persistence.ListParams) ([]persistence.Audit, int, error)
	GetAudit(ctx context.Context, id uuid.UUID) (persistence.Audit, error)
	CreateAudit(ctx context.Context, params persistence.CreateAuditParams) (persistence.Audit, error)
	DeleteAudit(ctx context.Context, id uuid.UUID) error

	ListBacklinks(ctx context.Context, params persistence.ListParams) ([]persistence.Backlink, int, error)
	CreateBacklink(ctx context.Context, params persistence.CreateBacklinkParams) (persistence.Backlink, error)
	DeleteBacklink(ctx context.Context, id uuid.UUID) error
}

type postgresRepository struct {
	store *persistence.SeoStore
}

// NewPostgresRepository constructs a repository backed by the shared persistence layer.
func NewPostgresRepository(store *persistence.SeoStore) Repository {
	if store == nil {
		panic("seo store is required")
	}
	return &postgresRepository{store: store}
}

func (r *postgresRepository) ListAudits(ctx context.Context, params persistence.ListParams) ([]persistence.Audit, int, error) {
	id, err := requireIdentity(ctx)
	if err != nil {
		return nil, 0, err
	}
	return r.store.ListAudits(ctx, id.TenantID, params)
}

func (r *postgresRepository) GetAudit(ctx context.Context, auditID uuid.UUID) (persistence.Audit, error) {
	id, err := requireIdentity(ctx)
	if err != nil {
		return persistence.Audit{}, err
	}
	return r.store.GetAudit(ctx, id.TenantID, auditID)
}

func (r *postgresRepository) CreateAudit(ctx context.Context, params persistence.CreateAuditParams) (persistence.Audit, error) {
	id, err := requireIdentity(ctx)
	if err != nil {
		return persistence.Audit{}, err
	}
	return r.store.CreateAudit(ctx, id.TenantID, params)
}

func (r *postgresRepository) DeleteAudit(ctx context.Context, auditID uuid.UUID) error {
	id, err := requireIdentity(ctx)
	if err != nil {
		return err
	}
	return r.store.DeleteAudit(ctx, id.TenantID, auditID)
}

func (r *postgresRepository) ListBacklinks(ctx context.Context, params persistence.ListParams) ([]persistence.Backlink, int, error) {
	id, err := requireIdentity(ctx)
	if err != nil {
		return nil, 0, err
	}
	return r.store.ListBacklinks(ctx, id.TenantID, params)
}

func (r *postgresRepository) CreateBacklink(ctx context.Context, params persistence.CreateBacklinkParams) (persistence.Backlink, error) {
	id, err := requireIdentity(ctx)
	if err != nil {
		return persistence.Backlink{}, err
	}
	return r.store.CreateBacklink(ctx, id.TenantID, params)
}

func (r *postgresRepository) DeleteBacklink(ctx context.Context, backlinkID uuid.UUID) error {
	id, err := requireIdentity(ctx)
	if err != nil {
		return err
	}
	return r.store.DeleteBacklink(ctx, id.TenantID, backlinkID)
}

func requireIdentity(ctx context.Context) (identity.Identity, error) {
	id, ok := identity.FromContext(ctx)
	if !ok {
		return identity.Identity{}, errors.New("identity missing from context")
	}
	return id, nil
}
