package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type txBeginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// TenantDB wraps a pgx pool to execute queries under row-level security.
// WithTenant switches to the restricted tenant role and publishes the tenant
// id as the app.tenant_id setting that the RLS policies read. Application
// queries still carry explicit tenant_id filters; the policies are the second
// line of defense.
type TenantDB struct {
	pool        txBeginner
	tenantRole  string
	serviceRole string
}

type TenantDBConfig struct {
	Pool *pgxpool.Pool
	// TenantRole is the restricted role used for tenant-scoped work; RLS
	// policies apply to it. Required.
	TenantRole string
	// ServiceRole is an optional privileged role for pre-verified server-side
	// work (session resolution, provisioning). Empty keeps the connection's
	// own identity.
	ServiceRole string
}

func NewTenantDB(cfg TenantDBConfig) *TenantDB {
	if cfg.Pool == nil {
		panic("TenantDB requires pool")
	}

	tenantRole := strings.TrimSpace(cfg.TenantRole)
	if tenantRole == "" {
		panic("TenantDB requires tenant role")
	}

	return &TenantDB{
		pool:        cfg.Pool,
		tenantRole:  tenantRole,
		serviceRole: strings.TrimSpace(cfg.ServiceRole),
	}
}

// WithTenant executes fn inside a transaction scoped to the given tenant:
// restricted role plus app.tenant_id so RLS policies constrain every statement.
func (db *TenantDB) WithTenant(ctx context.Context, tenantID uuid.UUID, fn func(tx pgx.Tx) error) error {
	if tenantID == uuid.Nil {
		return fmt.Errorf("tenant id is required")
	}

	tx, err := db.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if _, err = tx.Exec(ctx, fmt.Sprintf("SET LOCAL ROLE %s", pgx.Identifier{db.tenantRole}.Sanitize())); err != nil {
		return fmt.Errorf("set role: %w", err)
	}

	if _, err = tx.Exec(ctx, `SELECT set_config('app.tenant_id', $1, true)`, tenantID.String()); err != nil {
		return fmt.Errorf("set tenant id: %w", err)
	}

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// WithService executes fn inside a transaction on the privileged service path
// (RLS bypass). Callers MUST have verified the request before reaching for
// this; it exists for session resolution and provisioning only.
func (db *TenantDB) WithService(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := db.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if db.serviceRole != "" {
		if _, err = tx.Exec(ctx, fmt.Sprintf("SET LOCAL ROLE %s", pgx.Identifier{db.serviceRole}.Sanitize())); err != nil {
			return fmt.Errorf("set service role: %w", err)
		}
	}

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
