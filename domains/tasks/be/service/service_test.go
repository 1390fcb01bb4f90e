package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/persistence"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/validation"
)

type mockRepository struct {
	listFn   func(ctx context.Context, params persistence.ListParams) ([]persistence.Task, int, error)
	getFn    func(ctx context.Context, id uuid.UUID) (persistence.Task, error)
	createFn func(ctx context.Context, params persistence.CreateTaskParams) (persistence.Task, error)
	updateFn func(ctx context.Context, id uuid.UUID, params persistence.UpdateTaskParams) (persistence.Task, error)
	deleteFn func(ctx context.Context, id uuid.UUID) error
}

func (m *mockRepository) List(ctx context.Context, params persistence.ListParams) ([]persistence.Task, int, error) {
	if m.listFn == nil {
		panic("listFn not configured")
	}
	return m.listFn(ctx, params)
}

func (m *mockRepository) Get(ctx context.Context, id uuid.UUID) (persistence.Task, error) {
	if m.getFn == nil {
		panic("getFn not configured")
	}
	return m.getFn(ctx, id)
}

func (m *mockRepository) Create(ctx context.Context, params persistence.CreateTaskParams) (persistence.Task, error) {
	if m.createFn == nil {
		panic("createFn not configured")
	}
	return m.createFn(ctx, params)
}

func (m *mockRepository) Update(ctx context.Context, id uuid.UUID, params persistence.UpdateTaskParams) (persistence.Task, error) {
	if m.updateFn == nil {
		panic("updateFn not configured")
	}
	return m.updateFn(ctx, id, params)
}

func (m *mockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn == nil {
		panic("deleteFn not configured")
	}
	return m.deleteFn(ctx, id)
}

func TestCreateValidatesTitleAndEnums(t *testing.T) {
	t.Parallel()

	svc := New(&mockRepository{})

	bad := "sideways"
	_, err := svc.Create(context.Background(), CreateInput{Title: " ", Priority: &bad})

	var validationErr *validation.Error
	require.True(t, errors.As(err, &validationErr))
	require.Contains(t, validationErr.Fields, "title")
	require.Contains(t, validationErr.Fields, "priority")
}

func TestCreateAppliesDefaults(t *testing.T) {
	t.Parallel()

	repository := &mockRepository{
		createFn: func(ctx context.Context, params persistence.CreateTaskParams) (persistence.Task, error) {
			require.Equal(t, "todo", params.Status)
			require.Equal(t, "medium", params.Priority)
			require.Equal(t, "Ship it", params.Title)
			return persistence.Task{ID: uuid.New(), Title: params.Title, Status: params.Status, Priority: params.Priority}, nil
		},
	}

	task, err := New(repository).Create(context.Background(), CreateInput{Title: "  Ship it  "})
	require.NoError(t, err)
	require.Equal(t, "todo", task.Status)
}

func TestListClampsPaginationAndMapsSortErrors(t *testing.T) {
	t.Parallel()

	repository := &mockRepository{
		listFn: func(ctx context.Context, params persistence.ListParams) ([]persistence.Task, int, error) {
			require.Equal(t, 1, params.Page)
			require.Equal(t, 100, params.PerPage)
			return nil, 0, nil
		},
	}

	result, err := New(repository).List(context.Background(), ListOptions{Page: -3, PerPage: 9999})
	require.NoError(t, err)
	require.Equal(t, 1, result.Page)
	require.Equal(t, 100, result.PerPage)

	repository.listFn = func(ctx context.Context, params persistence.ListParams) ([]persistence.Task, int, error) {
		return nil, 0, persistence.ErrUnsupportedSort
	}

	_, err = New(repository).List(context.Background(), ListOptions{})
	var validationErr *validation.Error
	require.True(t, errors.As(err, &validationErr))
	require.Contains(t, validationErr.Fields, "sort_by")
}

func TestUpdateRequiresAField(t *testing.T) {
	t.Parallel()

	_, err := New(&mockRepository{}).Update(context.Background(), uuid.New(), UpdateInput{})

	var validationErr *validation.Error
	require.True(t, errors.As(err, &validationErr))
	require.Contains(t, validationErr.Fields, "payload")
}

func TestGetNilIDIsNotFound(t *testing.T) {
	t.Parallel()

	_, err := New(&mockRepository{}).Get(context.Background(), uuid.Nil)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteMapsNotFound(t *testing.T) {
	t.Parallel()

	repository := &mockRepository{
		deleteFn: func(ctx context.Context, id uuid.UUID) error {
			return persistence.ErrTaskNotFound
		},
	}

	require.ErrorIs(t, New(repository).Delete(context.Background(), uuid.New()), ErrNotFound)
}
