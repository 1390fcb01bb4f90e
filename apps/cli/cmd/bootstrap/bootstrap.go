package bootstrap

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/persistence"
)

// defaultFlags is the global flag set applied on bootstrap. Upserted, so
// re-running bootstrap refreshes descriptions without touching overrides.
var defaultFlags = []persistence.FlagDefault{
	{Key: "beta_ui", Enabled: false, Description: "Next-generation dashboard UI"},
	{Key: "bulk_export", Enabled: false, Description: "CSV export on list endpoints"},
	{Key: "content_scheduling", Enabled: false, Description: "Schedule posts for future publication"},
	{Key: "dark_mode", Enabled: true, Description: "Dark color scheme"},
	{Key: "seo_deep_crawl", Enabled: false, Description: "Extended crawl depth for site audits"},
}

// Command applies the database DDL, row security policies and global seed data.
func Command() *cobra.Command {
	var (
		databaseURL string
		tenantRole  string
		serviceRole string
	)

	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Apply database schema, roles and seed data",
		Long:  "Creates the database roles, applies the schema with row security policies, and seeds the global feature flag defaults. Idempotent; safe to re-run.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			pool, err := persistence.NewPool(ctx, persistence.PoolConfig{ConnString: databaseURL})
			if err != nil {
				return fmt.Errorf("init pool: %w", err)
			}
			defer persistence.ClosePool(pool)

			if err := persistence.Bootstrap(ctx, pool, persistence.BootstrapConfig{
				TenantRole:  tenantRole,
				ServiceRole: serviceRole,
			}); err != nil {
				return fmt.Errorf("bootstrap schema: %w", err)
			}

			tenantDB := persistence.NewTenantDB(persistence.TenantDBConfig{
				Pool:        pool,
				TenantRole:  tenantRole,
				ServiceRole: serviceRole,
			})
			tenantStore := persistence.NewTenantStore(tenantDB)

			if err := tenantStore.SeedFlagDefaults(ctx, defaultFlags); err != nil {
				return fmt.Errorf("seed flag defaults: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Bootstrap complete. Seeded %d flag defaults.\n", len(defaultFlags))
			return nil
		},
	}

	cmd.Flags().StringVar(&databaseURL, "database-url", "", "PostgreSQL connection string")
	cmd.Flags().StringVar(&tenantRole, "tenant-role", "ccd_tenant", "database role assumed for tenant-scoped queries")
	cmd.Flags().StringVar(&serviceRole, "service-role", "ccd_service", "privileged database role for service operations")

	_ = cmd.MarkFlagRequired("database-url")

	return cmd
}
