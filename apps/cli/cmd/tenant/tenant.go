package tenant

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/persistence"
)

// Command groups tenant provisioning helpers.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenant",
		Short: "Tenant provisioning (create tenant + admin profile)",
	}

	cmd.AddCommand(createCommand())
	return cmd
}

func createCommand() *cobra.Command {
	var (
		databaseURL   string
		tenantRole    string
		serviceRole   string
		name          string
		slug          string
		plan          string
		maxUsers      int
		adminUserID   string
		adminEmail    string
		adminFullName string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a tenant and its initial admin profile",
		Long:  "Creates a tenant record and an admin profile bound to the given identity-provider user id. The user id must match the subject of the tokens the user will authenticate with.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			userID, err := uuid.Parse(strings.TrimSpace(adminUserID))
			if err != nil {
				return fmt.Errorf("invalid admin-user-id: %w", err)
			}

			pool, err := persistence.NewPool(ctx, persistence.PoolConfig{ConnString: databaseURL})
			if err != nil {
				return fmt.Errorf("init pool: %w", err)
			}
			defer persistence.ClosePool(pool)

			tenantDB := persistence.NewTenantDB(persistence.TenantDBConfig{
				Pool:        pool,
				TenantRole:  tenantRole,
				ServiceRole: serviceRole,
			})

			tenantStore := persistence.NewTenantStore(tenantDB)
			profileStore := persistence.NewProfileStore(tenantDB)

			tenant, err := tenantStore.CreateTenant(ctx, persistence.CreateTenantParams{
				Name:     name,
				Slug:     slug,
				Plan:     plan,
				MaxUsers: maxUsers,
			})
			if err != nil {
				return fmt.Errorf("create tenant: %w", err)
			}

			profile, err := profileStore.CreateProfile(ctx, persistence.CreateProfileParams{
				UserID:   userID,
				TenantID: tenant.ID,
				Email:    adminEmail,
				FullName: adminFullName,
				Role:     "admin",
			})
			if err != nil {
				return fmt.Errorf("create admin profile: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Tenant created: %s (%s) | Admin: %s (%s)\n",
				tenant.Slug, tenant.ID, profile.Email, profile.UserID)
			return nil
		},
	}

	cmd.Flags().StringVar(&databaseURL, "database-url", "", "PostgreSQL connection string")
	cmd.Flags().StringVar(&tenantRole, "tenant-role", "ccd_tenant", "database role assumed for tenant-scoped queries")
	cmd.Flags().StringVar(&serviceRole, "service-role", "ccd_service", "privileged database role for service operations")
	cmd.Flags().StringVar(&name, "name", "", "tenant display name")
	cmd.Flags().StringVar(&slug, "slug", "", "unique tenant slug")
	cmd.Flags().StringVar(&plan, "plan", "trial", "billing plan")
	cmd.Flags().IntVar(&maxUsers, "max-users", 5, "seat limit")
	cmd.Flags().StringVar(&adminUserID, "admin-user-id", "", "identity-provider user id (uuid) for the initial admin")
	cmd.Flags().StringVar(&adminEmail, "admin-email", "", "initial admin email")
	cmd.Flags().StringVar(&adminFullName, "admin-full-name", "", "initial admin full name")

	_ = cmd.MarkFlagRequired("database-url")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("slug")
	_ = cmd.MarkFlagRequired("admin-user-id")
	_ = cmd.MarkFlagRequired("admin-email")
	_ = cmd.MarkFlagRequired("admin-full-name")

	return cmd
}
