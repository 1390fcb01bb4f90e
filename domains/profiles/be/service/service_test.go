package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/persistence"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/validation"
)

type mockRepository struct {
	getSelfFn    func(ctx context.Context) (persistence.Profile, error)
	updateSelfFn func(ctx context.Context, params persistence.UpdateProfileParams) (persistence.Profile, error)
}

func (m *mockRepository) GetSelf(ctx context.Context) (persistence.Profile, error) {
	if m.getSelfFn == nil {
		panic("getSelfFn not configured")
	}
	return m.getSelfFn(ctx)
}

func (m *mockRepository) UpdateSelf(ctx context.Context, params persistence.UpdateProfileParams) (persistence.Profile, error) {
	if m.updateSelfFn == nil {
		panic("updateSelfFn not configured")
	}
	return m.updateSelfFn(ctx, params)
}

func TestServiceGetSelfMapsNotFound(t *testing.T) {
	t.Parallel()

	repository := &mockRepository{
		getSelfFn: func(ctx context.Context) (persistence.Profile, error) {
			return persistence.Profile{}, persistence.ErrProfileNotFound
		},
	}

	_, err := New(repository).GetSelf(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestServiceUpdateSelfValidation(t *testing.T) {
	t.Parallel()

	svc := New(&mockRepository{})

	_, err := svc.UpdateSelf(context.Background(), UpdateSelfInput{})
	var validationErr *validation.Error
	require.True(t, errors.As(err, &validationErr))
	require.Contains(t, validationErr.Fields, "payload")

	empty := "   "
	_, err = svc.UpdateSelf(context.Background(), UpdateSelfInput{FullName: &empty})
	require.True(t, errors.As(err, &validationErr))
	require.Contains(t, validationErr.Fields, "full_name")

	badURL := "ftp://example.com/avatar.png"
	_, err = svc.UpdateSelf(context.Background(), UpdateSelfInput{AvatarURL: &badURL})
	require.True(t, errors.As(err, &validationErr))
	require.Contains(t, validationErr.Fields, "avatar_url")
}

func TestServiceUpdateSelfTrimsAndDelegates(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	userID := uuid.New()
	tenantID := uuid.New()

	repository := &mockRepository{
		updateSelfFn: func(ctx context.Context, params persistence.UpdateProfileParams) (persistence.Profile, error) {
			require.NotNil(t, params.FullName)
			require.Equal(t, "Alice A", *params.FullName)
			require.Nil(t, params.AvatarURL)

			return persistence.Profile{
				UserID:    userID,
				TenantID:  tenantID,
				Email:     "alice@example.com",
				FullName:  *params.FullName,
				Role:      "member",
				CreatedAt: now,
				UpdatedAt: now,
			}, nil
		},
	}

	name := "  Alice A  "
	profile, err := New(repository).UpdateSelf(context.Background(), UpdateSelfInput{FullName: &name})
	require.NoError(t, err)
	require.Equal(t, "Alice A", profile.FullName)
	require.Equal(t, tenantID, profile.TenantID)
}
