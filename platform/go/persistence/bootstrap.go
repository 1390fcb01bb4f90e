package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	sqlassets "github.com/Crane-Ceeshar/CCD-Suite-sub007/database"
)

// BootstrapConfig names the database roles the schema is wired to.
type BootstrapConfig struct {
	// TenantRole is the restricted role the API assumes for tenant-scoped
	// work. Row-level security applies to it. Required.
	TenantRole string
	// ServiceRole is the privileged role for session resolution and
	// provisioning. Created with BYPASSRLS. Required.
	ServiceRole string
}

// Bootstrap applies the embedded schema DDL in a single transaction: core
// tables, module tables, then row-level security policies. Roles are created
// first (outside the transaction, CREATE ROLE cannot be rolled back cleanly
// across versions) and granted table access afterwards.
//
// SQL is embedded at build time so binaries stay self-contained. The helper is
// idempotent and intended for CLI bootstrap and tests.
func Bootstrap(ctx context.Context, pool *pgxpool.Pool, cfg BootstrapConfig) error {
	if pool == nil {
		return fmt.Errorf("bootstrap: pool is required")
	}
	if strings.TrimSpace(cfg.TenantRole) == "" || strings.TrimSpace(cfg.ServiceRole) == "" {
		return fmt.Errorf("bootstrap: tenant role and service role are required")
	}

	if err := ensureRole(ctx, pool, cfg.TenantRole, false); err != nil {
		return err
	}
	if err := ensureRole(ctx, pool, cfg.ServiceRole, true); err != nil {
		return err
	}

	var statements []string
	statements = append(statements, splitStatements(sqlassets.CoreSQL)...)
	statements = append(statements, splitStatements(sqlassets.ModulesSQL)...)
	statements = append(statements, splitStatements(sqlassets.PoliciesSQL)...)

	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	for _, stmt := range statements {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply ddl: %w", err)
		}
	}

	for _, role := range []string{cfg.TenantRole, cfg.ServiceRole} {
		sanitized := pgx.Identifier{role}.Sanitize()
		if _, err := tx.Exec(ctx, fmt.Sprintf(
			"GRANT SELECT, INSERT, UPDATE, DELETE ON ALL TABLES IN SCHEMA public TO %s", sanitized,
		)); err != nil {
			return fmt.Errorf("grant tables to %s: %w", role, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit bootstrap: %w", err)
	}

	return nil
}

// ensureRole creates the role when missing. NOLOGIN: the roles are assumed via
// SET ROLE from the pool's connection user, which must be a member of both.
func ensureRole(ctx context.Context, pool *pgxpool.Pool, role string, bypassRLS bool) error {
	var exists bool
	if err := pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM pg_roles WHERE rolname = $1)", role,
	).Scan(&exists); err != nil {
		return fmt.Errorf("check role %s: %w", role, err)
	}

	sanitized := pgx.Identifier{role}.Sanitize()

	if !exists {
		attrs := "NOLOGIN"
		if bypassRLS {
			attrs += " BYPASSRLS"
		}
		if _, err := pool.Exec(ctx, fmt.Sprintf("CREATE ROLE %s %s", sanitized, attrs)); err != nil {
			return fmt.Errorf("create role %s: %w", role, err)
		}
	}

	if _, err := pool.Exec(ctx, fmt.Sprintf("GRANT %s TO CURRENT_USER", sanitized)); err != nil {
		return fmt.Errorf("grant role %s: %w", role, err)
	}

	return nil
}

// splitStatements breaks an embedded SQL asset into individual statements.
// The schema files deliberately avoid dollar-quoted bodies so a plain
// semicolon split is sufficient.
func splitStatements(sql string) []string {
	var statements []string
	for _, part := range strings.Split(sql, ";") {
		stmt := strings.TrimSpace(part)
		if stmt == "" {
			continue
		}
		statements = append(statements, stmt)
	}
	return statements
}
