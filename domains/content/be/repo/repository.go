package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/identity"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/persistence"
)

// Repository defines the persistence operations required by the content service.
type Repository interface {
	ListPosts(ctx context.Context, params persistence.ListParams) ([]persistence.Post, int, error)
	GetPost(ctx context.Context, id uuid.UUID) (persistence.Post, error)
	CreatePost(ctx context.Context, params persistence.CreatePostParams) (persistence.Post, error)
	UpdatePost(ctx context.Context, id uuid.UUID, params persistence.UpdatePostParams) (persistence.Post, error)
	DeletePost(ctx context.Context, id uuid.UUID) error

	ListAssets(ctx context.Context, postID uuid.UUID) ([]persistence.Asset, error)
	GetAsset(ctx context.Context, id uuid.UUID) (persistence.Asset, error)
	CreateAsset(ctx context.Context, params persistence.CreateAssetParams) (persistence.Asset, error)
	DeleteAsset(ctx context.Context, id uuid.UUID) (persistence.Asset, error)
}

type postgresRepository struct {
	store *persistence.ContentStore
}

// NewPostgresRepository constructs a repository backed by the shared persistence layer.
func NewPostgresRepository(store *persistence.ContentStore) Repository {
	if store == nil {
		panic("content store is required")
	}
	return &postgresRepository{store: store}
}

func (r *postgresRepository) ListPosts(ctx context.Context, params persistence.ListParams) ([]persistence.Post, int, error) {
	id, err := requireIdentity(ctx)
	if err != nil {
		return nil, 0, err
	}
	return r.store.ListPosts(ctx, id.TenantID, params)
}

func (r *postgresRepository) GetPost(ctx context.Context, postID uuid.UUID) (persistence.Post, error) {
	id, err := requireIdentity(ctx)
	if err != nil {
		return persistence.Post{}, err
	}
	return r.store.GetPost(ctx, id.TenantID, postID)
}

func (r *postgresRepository) CreatePost(ctx context.Context, params persistence.CreatePostParams) (persistence.Post, error) {
	id, err := requireIdentity(ctx)
	if err != nil {
		return persistence.Post{}, err
	}
	return r.store.CreatePost(ctx, id.TenantID, params)
}

func (r *postgresRepository) UpdatePost(ctx context.Context, postID uuid.UUID, params persistence.UpdatePostParams) (persistence.Post, error) {
	id, err := requireIdentity(ctx)
	if err != nil {
		return persistence.Post{}, err
	}
	return r.store.UpdatePost(ctx, id.TenantID, postID, params)
}

func (r *postgresRepository) DeletePost(ctx context.Context, postID uuid.UUID) error {
	id, err := requireIdentity(ctx)
	if err != nil {
		return err
	}
	return r.store.DeletePost(ctx, id.TenantID, postID)
}

func (r *postgresRepository) ListAssets(ctx context.Context, postID uuid.UUID) ([]persistence.Asset, error) {
	id, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	return r.store.ListAssets(ctx, id.TenantID, postID)
}

func (r *postgresRepository) GetAsset(ctx context.Context, assetID uuid.UUID) (persistence.Asset, error) {
	id, err := requireIdentity(ctx)
	if err != nil {
		return persistence.Asset{}, err
	}
	return r.store.GetAsset(ctx, id.TenantID, assetID)
}

func (r *postgresRepository) CreateAsset(ctx context.Context, params persistence.CreateAssetParams) (persistence.Asset, error) {
	id, err := requireIdentity(ctx)
	if err != nil {
		return persistence.Asset{}, err
	}
	return r.store.CreateAsset(ctx, id.TenantID, params)
}

func (r *postgresRepository) DeleteAsset(ctx context.Context, assetID uuid.UUID) (persistence.Asset, error) {
	id, err := requireIdentity(ctx)
	if err != nil {
		return persistence.Asset{}, err
	}
	return r.store.DeleteAsset(ctx, id.TenantID, assetID)
}

func requireIdentity(ctx context.Context) (identity.Identity, error) {
	id, ok := identity.FromContext(ctx)
	if !ok {
		return identity.Identity{}, errors.New("identity missing from context")
	}
	return id, nil
}
