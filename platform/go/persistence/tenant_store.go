package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	TenantsTable      = "tenants"
	FlagDefaultsTable = "feature_flag_defaults"
)

// TenantSettings is the settings document stored on the tenant row. Features
// holds explicit per-tenant overrides; absence of a key means "use the global
// default".
type TenantSettings struct {
	ModulesEnabled []string        `json:"modules_enabled"`
	Features       map[string]bool `json:"features"`
	BrandColor     *string         `json:"brand_color,omitempty"`
	CustomDomain   *string         `json:"custom_domain,omitempty"`
}

// Tenant represents a row in the tenants table.
type Tenant struct {
	ID          uuid.UUID      `db:"id" json:"id"`
	Name        string         `db:"name" json:"name"`
	Slug        string         `db:"slug" json:"slug"`
	Plan        string         `db:"plan" json:"plan"`
	Settings    TenantSettings `db:"settings" json:"settings"`
	MaxUsers    int            `db:"max_users" json:"max_users"`
	IsActive    bool           `db:"is_active" json:"is_active"`
	TrialEndsAt *time.Time     `db:"trial_ends_at" json:"trial_ends_at,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// FlagDefault is one row of the global feature flag default set.
type FlagDefault struct {
	Key         string `db:"key" json:"key"`
	Enabled     bool   `db:"enabled" json:"enabled"`
	Description string `db:"description" json:"description"`
}

var (
	// ErrTenantNotFound indicates a missing tenant record.
	ErrTenantNotFound = errors.New("tenant not found")
	// ErrTenantConflict indicates a uniqueness violation (duplicated slug).
	ErrTenantConflict = errors.New("tenant conflict")
)

// TenantStore exposes persistence helpers for tenants and the global flag defaults.
type TenantStore struct {
	db *TenantDB
}

// NewTenantStore returns a store instance bound to the shared TenantDB.
func NewTenantStore(db *TenantDB) *TenantStore {
	if db == nil {
		panic("tenant store requires tenant db")
	}
	return &TenantStore{db: db}
}

// GetTenant returns the caller's own tenant row.
func (s *TenantStore) GetTenant(ctx context.Context, tenantID uuid.UUID) (Tenant, error) {
	var tenant Tenant

	err := s.db.WithTenant(ctx, tenantID, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, fmt.Sprintf(`
            SELECT id, name, slug, plan, settings, max_users, is_active, trial_ends_at, created_at, updated_at
            FROM %s WHERE id = $1
        `, TenantsTable), tenantID)

		var scanErr error
		tenant, scanErr = scanTenant(row)
		return scanErr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Tenant{}, ErrTenantNotFound
		}
		return Tenant{}, err
	}

	return tenant, nil
}

// UpdateTenantParams represents admin-editable tenant fields.
type UpdateTenantParams struct {
	Name *string
}

// UpdateTenant applies the provided fields and returns the updated record.
func (s *TenantStore) UpdateTenant(ctx context.Context, tenantID uuid.UUID, params UpdateTenantParams) (Tenant, error) {
	if params.Name == nil {
		return Tenant{}, errors.New("no fields to update")
	}

	var tenant Tenant
	err := s.db.WithTenant(ctx, tenantID, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, fmt.Sprintf(`
            UPDATE %s
            SET name = $1, updated_at = NOW()
            WHERE id = $2
            RETURNING id, name, slug, plan, settings, max_users, is_active, trial_ends_at, created_at, updated_at
        `, TenantsTable), strings.TrimSpace(*params.Name), tenantID)

		var scanErr error
		tenant, scanErr = scanTenant(row)
		return scanErr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Tenant{}, ErrTenantNotFound
		}
		return Tenant{}, err
	}

	return tenant, nil
}

// UpdateSettings replaces the tenant settings document and returns the updated tenant.
func (s *TenantStore) UpdateSettings(ctx context.Context, tenantID uuid.UUID, settings TenantSettings) (Tenant, error) {
	raw, err := json.Marshal(settings)
	if err != nil {
		return Tenant{}, fmt.Errorf("encode settings: %w", err)
	}

	var tenant Tenant
	err = s.db.WithTenant(ctx, tenantID, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, fmt.Sprintf(`
            UPDATE %s
            SET settings = $1, updated_at = NOW()
            WHERE id = $2
            RETURNING id, name, slug, plan, settings, max_users, is_active, trial_ends_at, created_at, updated_at
        `, TenantsTable), raw, tenantID)

		var scanErr error
		tenant, scanErr = scanTenant(row)
		return scanErr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Tenant{}, ErrTenantNotFound
		}
		return Tenant{}, err
	}

	return tenant, nil
}

// ListFlagDefaults returns the global default flag set ordered by key.
// The defaults table is global (no tenant column) and readable by the tenant role.
func (s *TenantStore) ListFlagDefaults(ctx context.Context, tenantID uuid.UUID) ([]FlagDefault, error) {
	var defaults []FlagDefault

	err := s.db.WithTenant(ctx, tenantID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, fmt.Sprintf(`
            SELECT key, enabled, description FROM %s ORDER BY key
        `, FlagDefaultsTable))
		if err != nil {
			return fmt.Errorf("list flag defaults: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var d FlagDefault
			if err := rows.Scan(&d.Key, &d.Enabled, &d.Description); err != nil {
				return fmt.Errorf("scan flag default: %w", err)
			}
			defaults = append(defaults, d)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return defaults, nil
}

// CreateTenantParams captures the fields required to provision a tenant.
// Used by the admin CLI, not by the HTTP surface.
type CreateTenantParams struct {
	ID       uuid.UUID
	Name     string
	Slug     string
	Plan     string
	MaxUsers int
}

// CreateTenant inserts a tenant on the privileged service path.
func (s *TenantStore) CreateTenant(ctx context.Context, params CreateTenantParams) (Tenant, error) {
	if params.ID == uuid.Nil {
		params.ID = uuid.New()
	}
	plan := params.Plan
	if plan == "" {
		plan = "trial"
	}
	maxUsers := params.MaxUsers
	if maxUsers <= 0 {
		maxUsers = 5
	}

	var tenant Tenant
	err := s.db.WithService(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, fmt.Sprintf(`
            INSERT INTO %s (id, name, slug, plan, settings, max_users, is_active)
            VALUES ($1, $2, $3, $4, '{"modules_enabled": [], "features": {}}', $5, TRUE)
            RETURNING id, name, slug, plan, settings, max_users, is_active, trial_ends_at, created_at, updated_at
        `, TenantsTable),
			params.ID,
			strings.TrimSpace(params.Name),
			strings.ToLower(strings.TrimSpace(params.Slug)),
			plan,
			maxUsers,
		)

		var scanErr error
		tenant, scanErr = scanTenant(row)
		return scanErr
	})
	if err != nil {
		if isUniqueViolation(err) {
			return Tenant{}, ErrTenantConflict
		}
		return Tenant{}, err
	}

	return tenant, nil
}

// SeedFlagDefaults upserts the global default flag set. Bootstrap/CLI only.
func (s *TenantStore) SeedFlagDefaults(ctx context.Context, defaults []FlagDefault) error {
	return s.db.WithService(ctx, func(tx pgx.Tx) error {
		for _, d := range defaults {
			if _, err := tx.Exec(ctx, fmt.Sprintf(`
                INSERT INTO %s (key, enabled, description)
                VALUES ($1, $2, $3)
                ON CONFLICT (key) DO UPDATE SET enabled = EXCLUDED.enabled, description = EXCLUDED.description
            `, FlagDefaultsTable), d.Key, d.Enabled, d.Description); err != nil {
				return fmt.Errorf("seed flag default %q: %w", d.Key, err)
			}
		}
		return nil
	})
}

func scanTenant(row pgx.Row) (Tenant, error) {
	var tenant Tenant
	var rawSettings []byte

	if err := row.Scan(
		&tenant.ID,
		&tenant.Name,
		&tenant.Slug,
		&tenant.Plan,
		&rawSettings,
		&tenant.MaxUsers,
		&tenant.IsActive,
		&tenant.TrialEndsAt,
		&tenant.CreatedAt,
		&tenant.UpdatedAt,
	); err != nil {
		return Tenant{}, err
	}

	if len(rawSettings) > 0 {
		if err := json.Unmarshal(rawSettings, &tenant.Settings); err != nil {
			return Tenant{}, fmt.Errorf("decode tenant settings: %w", err)
		}
	}
	if tenant.Settings.Features == nil {
		tenant.Settings.Features = map[string]bool{}
	}
	if tenant.Settings.ModulesEnabled == nil {
		tenant.Settings.ModulesEnabled = []string{}
	}

	return tenant, nil
}
