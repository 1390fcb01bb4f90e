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
	listFn   func(ctx context.Context, params persistence.ListParams) ([]persistence.Deal, int, error)
	getFn    func(ctx context.Context, id uuid.UUID) (persistence.Deal, error)
	createFn func(ctx context.Context, params persistence.CreateDealParams) (persistence.Deal, error)
	updateFn func(ctx context.Context, id uuid.UUID, params persistence.UpdateDealParams) (persistence.Deal, error)
	deleteFn func(ctx context.Context, id uuid.UUID) error
}

func (m *mockRepository) List(ctx context.Context, params persistence.ListParams) ([]persistence.Deal, int, error) {
	if m.listFn == nil {
		panic("listFn not configured")
	}
	return m.listFn(ctx, params)
}

func (m *mockRepository) Get(ctx context.Context, id uuid.UUID) (persistence.Deal, error) {
	if m.getFn == nil {
		panic("getFn not configured")
	}
	return m.getFn(ctx, id)
}

func (m *mockRepository) Create(ctx context.Context, params persistence.CreateDealParams) (persistence.Deal, error) {
	if m.createFn == nil {
		panic("createFn not configured")
	}
	return m.createFn(ctx, params)
}

func (m *mockRepository) Update(ctx context.Context, id uuid.UUID, params persistence.UpdateDealParams) (persistence.Deal, error) {
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

func TestCreateValidatesPayload(t *testing.T) {
	t.Parallel()

	svc := New(&mockRepository{})

	badStage := "maybe"
	badCurrency := "DOLLARS"
	negative := int64(-5)
	_, err := svc.Create(context.Background(), CreateInput{
		Stage:       &badStage,
		Currency:    &badCurrency,
		AmountCents: &negative,
	})

	var validationErr *validation.Error
	require.True(t, errors.As(err, &validationErr))
	require.Contains(t, validationErr.Fields, "name")
	require.Contains(t, validationErr.Fields, "stage")
	require.Contains(t, validationErr.Fields, "currency")
	require.Contains(t, validationErr.Fields, "amount_cents")
}

func TestCreateNormalizesCurrency(t *testing.T) {
	t.Parallel()

	repository := &mockRepository{
		createFn: func(ctx context.Context, params persistence.CreateDealParams) (persistence.Deal, error) {
			require.Equal(t, "EUR", params.Currency)
			require.Equal(t, "lead", params.Stage)
			return persistence.Deal{ID: uuid.New(), Name: params.Name, Currency: params.Currency, Stage: params.Stage}, nil
		},
	}

	currency := " eur "
	deal, err := New(repository).Create(context.Background(), CreateInput{Name: "Big deal", Currency: &currency})
	require.NoError(t, err)
	require.Equal(t, "EUR", deal.Currency)
}

func TestUpdateMapsNotFound(t *testing.T) {
	t.Parallel()

	repository := &mockRepository{
		updateFn: func(ctx context.Context, id uuid.UUID, params persistence.UpdateDealParams) (persistence.Deal, error) {
			return persistence.Deal{}, persistence.ErrDealNotFound
		},
	}

	stage := "won"
	_, err := New(repository).Update(context.Background(), uuid.New(), UpdateInput{Stage: &stage})
	require.ErrorIs(t, err, ErrNotFound)
}
