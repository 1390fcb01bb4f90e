package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/featureflags"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/persistence"
)

type mockRepository struct {
	listDefaultsFn func(ctx context.Context) ([]persistence.FlagDefault, error)
	getSettingsFn  func(ctx context.Context) (persistence.TenantSettings, error)
}

func (m *mockRepository) ListDefaults(ctx context.Context) ([]persistence.FlagDefault, error) {
	if m.listDefaultsFn == nil {
		panic("listDefaultsFn not configured")
	}
	return m.listDefaultsFn(ctx)
}

func (m *mockRepository) GetTenantSettings(ctx context.Context) (persistence.TenantSettings, error) {
	if m.getSettingsFn == nil {
		panic("getSettingsFn not configured")
	}
	return m.getSettingsFn(ctx)
}

func TestResolveOverlaysTenantOverrides(t *testing.T) {
	t.Parallel()

	repository := &mockRepository{
		listDefaultsFn: func(ctx context.Context) ([]persistence.FlagDefault, error) {
			return []persistence.FlagDefault{
				{Key: "beta_ui", Enabled: false},
				{Key: "dark_mode", Enabled: false},
			}, nil
		},
		getSettingsFn: func(ctx context.Context) (persistence.TenantSettings, error) {
			return persistence.TenantSettings{
				Features: map[string]bool{
					"dark_mode":    true,
					"secret_tools": true,
				},
			}, nil
		},
	}

	flags, err := New(repository).Resolve(context.Background())
	require.NoError(t, err)

	require.Equal(t, []featureflags.Flag{
		{Key: "beta_ui", Enabled: false, Source: featureflags.SourceDefault},
		{Key: "dark_mode", Enabled: true, Source: featureflags.SourceOverride},
		{Key: "secret_tools", Enabled: true, Source: featureflags.SourceOverride},
	}, flags)
}

func TestResolveMapsTenantNotFound(t *testing.T) {
	t.Parallel()

	repository := &mockRepository{
		listDefaultsFn: func(ctx context.Context) ([]persistence.FlagDefault, error) {
			return nil, persistence.ErrTenantNotFound
		},
	}

	_, err := New(repository).Resolve(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
}
