package persistence

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	testTenantRole  = "ccd_tenant"
	testServiceRole = "ccd_service"
)

// setupTestDB returns a bootstrapped TenantDB backed by either
// TEST_DATABASE_URL or a throwaway postgres container.
func setupTestDB(t *testing.T) (context.Context, *TenantDB, *TenantStore) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping persistence integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	t.Cleanup(cancel)

	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		pgContainer, err := postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("ccd"),
			postgres.WithUsername("postgres"),
			postgres.WithPassword("postgres"),
			testcontainers.WithWaitStrategy(wait.ForListeningPort("5432/tcp").WithStartupTimeout(2*time.Minute)),
		)
		require.NoError(t, err)
		t.Cleanup(func() {
			_ = pgContainer.Terminate(context.Background())
		})

		connString, err = pgContainer.ConnectionString(ctx, "sslmode=disable")
		require.NoError(t, err)
	}

	pool, err := NewPool(ctx, PoolConfig{ConnString: connString})
	require.NoError(t, err)
	t.Cleanup(func() { ClosePool(pool) })

	require.NoError(t, Bootstrap(ctx, pool, BootstrapConfig{
		TenantRole:  testTenantRole,
		ServiceRole: testServiceRole,
	}))

	db := NewTenantDB(TenantDBConfig{
		Pool:        pool,
		TenantRole:  testTenantRole,
		ServiceRole: testServiceRole,
	})

	return ctx, db, NewTenantStore(db)
}

func createTestTenant(t *testing.T, ctx context.Context, tenants *TenantStore, name, slug string) Tenant {
	t.Helper()

	tenant, err := tenants.CreateTenant(ctx, CreateTenantParams{Name: name, Slug: slug})
	require.NoError(t, err)
	return tenant
}

func newTestUserID() uuid.UUID {
	return uuid.New()
}

func deactivateTenant(t *testing.T, ctx context.Context, db *TenantDB, tenant Tenant) {
	t.Helper()

	err := db.WithService(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, "UPDATE tenants SET is_active = FALSE WHERE id = $1", tenant.ID)
		return err
	})
	require.NoError(t, err)
}
