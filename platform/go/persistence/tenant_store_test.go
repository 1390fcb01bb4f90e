package persistence

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTenantStoreSettingsRoundTrip(t *testing.T) {
	t.Parallel()

	ctx, _, tenants := setupTestDB(t)

	tenant := createTestTenant(t, ctx, tenants, "Acme Co", "acme-co")
	require.Empty(t, tenant.Settings.Features)

	updated, err := tenants.UpdateSettings(ctx, tenant.ID, TenantSettings{
		ModulesEnabled: []string{"seo", "tasks"},
		Features:       map[string]bool{"dark_mode": true},
		BrandColor:     ptr("#336699"),
	})
	require.NoError(t, err)
	require.Equal(t, []string{"seo", "tasks"}, updated.Settings.ModulesEnabled)
	require.True(t, updated.Settings.Features["dark_mode"])

	got, err := tenants.GetTenant(ctx, tenant.ID)
	require.NoError(t, err)
	require.Equal(t, updated.Settings, got.Settings)
}

func TestTenantStoreSlugConflict(t *testing.T) {
	t.Parallel()

	ctx, _, tenants := setupTestDB(t)

	createTestTenant(t, ctx, tenants, "Acme Co", "acme-co")

	_, err := tenants.CreateTenant(ctx, CreateTenantParams{Name: "Acme Clone", Slug: "acme-co"})
	require.ErrorIs(t, err, ErrTenantConflict)
}

func TestTenantStoreFlagDefaults(t *testing.T) {
	t.Parallel()

	ctx, _, tenants := setupTestDB(t)

	tenant := createTestTenant(t, ctx, tenants, "Acme Co", "acme-co")

	require.NoError(t, tenants.SeedFlagDefaults(ctx, []FlagDefault{
		{Key: "dark_mode", Enabled: false, Description: "Dark theme"},
		{Key: "beta_ui", Enabled: false, Description: "New UI shell"},
	}))

	defaults, err := tenants.ListFlagDefaults(ctx, tenant.ID)
	require.NoError(t, err)
	require.Len(t, defaults, 2)
	require.Equal(t, "beta_ui", defaults[0].Key)
	require.Equal(t, "dark_mode", defaults[1].Key)
}

func TestProfileStoreSubjectLookupSkipsInactiveTenant(t *testing.T) {
	t.Parallel()

	ctx, db, tenants := setupTestDB(t)
	profiles := NewProfileStore(db)

	tenant := createTestTenant(t, ctx, tenants, "Acme Co", "acme-co")

	profile, err := profiles.CreateProfile(ctx, CreateProfileParams{
		UserID:   newTestUserID(),
		TenantID: tenant.ID,
		Email:    "alice@example.com",
		FullName: "Alice A",
		Role:     "admin",
	})
	require.NoError(t, err)

	got, err := profiles.GetProfileBySubject(ctx, profile.UserID)
	require.NoError(t, err)
	require.Equal(t, tenant.ID, got.TenantID)
	require.Equal(t, "admin", got.Role)

	deactivateTenant(t, ctx, db, tenant)

	_, err = profiles.GetProfileBySubject(ctx, profile.UserID)
	require.ErrorIs(t, err, ErrProfileNotFound)
}
