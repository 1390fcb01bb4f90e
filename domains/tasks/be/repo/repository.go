package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/identity"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/persistence"
)

// Repository defines the persistence operations required by the tasks service.
type Repository interface {
	List(ctx context.Context, params persistence.ListParams) ([]persistence.Task, int, error)
	Get(ctx context.Context, id uuid.UUID) (persistence.Task, error)
	Create(ctx context.Context, params persistence.CreateTaskParams) (persistence.Task, error)
	Update(ctx context.Context, id uuid.UUID, params persistence.UpdateTaskParams) (persistence.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresRepository struct {
	store *persistence.TaskStore
}

// NewPostgresRepository constructs a repository backed by the shared persistence layer.
func NewPostgresRepository(store *persistence.TaskStore) Repository {
	if store == nil {
		panic("task store is required")
	}
	return &postgresRepository{store: store}
}

func (r *postgresRepository) List(ctx context.Context, params persistence.ListParams) ([]persistence.Task, int, error) {
	id, err := requireIdentity(ctx)
	if err != nil {
		return nil, 0, err
	}
	return r.store.ListTasks(ctx, id.TenantID, params)
}

func (r *postgresRepository) Get(ctx context.Context, taskID uuid.UUID) (persistence.Task, error) {
	id, err := requireIdentity(ctx)
	if err != nil {
		return persistence.Task{}, err
	}
	return r.store.GetTask(ctx, id.TenantID, taskID)
}

func (r *postgresRepository) Create(ctx context.Context, params persistence.CreateTaskParams) (persistence.Task, error) {
	id, err := requireIdentity(ctx)
	if err != nil {
		return persistence.Task{}, err
	}
	return r.store.CreateTask(ctx, id.TenantID, params)
}

func (r *postgresRepository) Update(ctx context.Context, taskID uuid.UUID, params persistence.UpdateTaskParams) (persistence.Task, error) {
	id, err := requireIdentity(ctx)
	if err != nil {
		return persistence.Task{}, err
	}
	return r.store.UpdateTask(ctx, id.TenantID, taskID, params)
}

func (r *postgresRepository) Delete(ctx context.Context, taskID uuid.UUID) error {
	id, err := requireIdentity(ctx)
	if err != nil {
		return err
	}
	return r.store.DeleteTask(ctx, id.TenantID, taskID)
}

func requireIdentity(ctx context.Context) (identity.Identity, error) {
	id, ok := identity.FromContext(ctx)
	if !ok {
		return identity.Identity{}, errors.New("identity missing from context")
	}
	return id, nil
}
