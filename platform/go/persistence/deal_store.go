package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const DealsTable = "deals"

// Deal represents a row in the deals table. Amounts are stored in minor units.
type Deal struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	TenantID        uuid.UUID  `db:"tenant_id" json:"tenant_id"`
	Name            string     `db:"name" json:"name"`
	Stage           string     `db:"stage" json:"stage"`
	AmountCents     int64      `db:"amount_cents" json:"amount_cents"`
	Currency        string     `db:"currency" json:"currency"`
	ContactName     string     `db:"contact_name" json:"contact_name"`
	ExpectedCloseAt *time.Time `db:"expected_close_at" json:"expected_close_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// ErrDealNotFound indicates a missing deal in the caller's tenant.
var ErrDealNotFound = errors.New("deal not found")

var dealSortColumns = map[string]string{
	"created_at":        "created_at",
	"amount_cents":      "amount_cents",
	"stage":             "stage",
	"name":              "name",
	"expected_close_at": "expected_close_at",
}

// DealStore exposes persistence helpers for the deals table.
type DealStore struct {
	db *TenantDB
}

// NewDealStore returns a store instance bound to the shared TenantDB.
func NewDealStore(db *TenantDB) *DealStore {
	if db == nil {
		panic("deal store requires tenant db")
	}
	return &DealStore{db: db}
}

// ListDeals returns one page of the tenant's deals plus the total row count.
func (s *DealStore) ListDeals(ctx context.Context, tenantID uuid.UUID, params ListParams) ([]Deal, int, error) {
	params = params.normalize()

	order, err := orderClause(dealSortColumns, params, "ORDER BY created_at DESC")
	if err != nil {
		return nil, 0, err
	}

	where := "tenant_id = $1"
	args := []any{tenantID}
	if term := params.searchTerm(); term != "" {
		args = append(args, "%"+term+"%")
		where += fmt.Sprintf(" AND (name ILIKE $%d OR contact_name ILIKE $%d)", len(args), len(args))
	}

	var deals []Deal
	var total int

	err = s.db.WithTenant(ctx, tenantID, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, fmt.Sprintf(
			"SELECT COUNT(*) FROM %s WHERE %s", DealsTable, where,
		), args...).Scan(&total); err != nil {
			return fmt.Errorf("count deals: %w", err)
		}

		limit, offset := params.limitOffset()
		rows, err := tx.Query(ctx, fmt.Sprintf(`
            SELECT id, tenant_id, name, stage, amount_cents, currency, contact_name, expected_close_at, created_at, updated_at
            FROM %s WHERE %s %s LIMIT %d OFFSET %d
        `, DealsTable, where, order, limit, offset), args...)
		if err != nil {
			return fmt.Errorf("list deals: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			deal, err := scanDeal(rows)
			if err != nil {
				return err
			}
			deals = append(deals, deal)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, 0, err
	}

	return deals, total, nil
}

// GetDeal returns a single deal scoped to the caller's tenant.
func (s *DealStore) GetDeal(ctx context.Context, tenantID, dealID uuid.UUID) (Deal, error) {
	var deal Deal

	err := s.db.WithTenant(ctx, tenantID, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, fmt.Sprintf(`
            SELECT id, tenant_id, name, stage, amount_cents, currency, contact_name, expected_close_at, created_at, updated_at
            FROM %s WHERE tenant_id = $1 AND id = $2
        `, DealsTable), tenantID, dealID)

		var scanErr error
		deal, scanErr = scanDeal(row)
		return scanErr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Deal{}, ErrDealNotFound
		}
		return Deal{}, err
	}

	return deal, nil
}

// CreateDealParams captures the fields required to insert a deal.
type CreateDealParams struct {
	Name            string
	Stage           string
	AmountCents     int64
	Currency        string
	ContactName     string
	ExpectedCloseAt *time.Time
}

// CreateDeal inserts a deal scoped to the caller's tenant.
func (s *DealStore) CreateDeal(ctx context.Context, tenantID uuid.UUID, params CreateDealParams) (Deal, error) {
	var deal Deal

	err := s.db.WithTenant(ctx, tenantID, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, fmt.Sprintf(`
            INSERT INTO %s (id, tenant_id, name, stage, amount_cents, currency, contact_name, expected_close_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
            RETURNING id, tenant_id, name, stage, amount_cents, currency, contact_name, expected_close_at, created_at, updated_at
        `, DealsTable), uuid.New(), tenantID, params.Name, params.Stage, params.AmountCents, params.Currency, params.ContactName, params.ExpectedCloseAt)

		var scanErr error
		deal, scanErr = scanDeal(row)
		return scanErr
	})
	if err != nil {
		return Deal{}, err
	}

	return deal, nil
}

// UpdateDealParams represents the patchable deal fields. Nil means unchanged.
type UpdateDealParams struct {
	Name             *string
	Stage            *string
	AmountCents      *int64
	Currency         *string
	ContactName      *string
	ExpectedCloseAt  *time.Time
	ClearCloseTarget bool
}

// UpdateDeal applies the provided fields and returns the updated record.
func (s *DealStore) UpdateDeal(ctx context.Context, tenantID, dealID uuid.UUID, params UpdateDealParams) (Deal, error) {
	setParts := []string{}
	var args []any

	addSet := func(column string, value any) {
		args = append(args, value)
		setParts = append(setParts, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if params.Name != nil {
		addSet("name", strings.TrimSpace(*params.Name))
	}
	if params.Stage != nil {
		addSet("stage", *params.Stage)
	}
	if params.AmountCents != nil {
		addSet("amount_cents", *params.AmountCents)
	}
	if params.Currency != nil {
		addSet("currency", strings.ToUpper(strings.TrimSpace(*params.Currency)))
	}
	if params.ContactName != nil {
		addSet("contact_name", strings.TrimSpace(*params.ContactName))
	}
	if params.ClearCloseTarget {
		setParts = append(setParts, "expected_close_at = NULL")
	} else if params.ExpectedCloseAt != nil {
		addSet("expected_close_at", *params.ExpectedCloseAt)
	}

	if len(setParts) == 0 {
		return Deal{}, errors.New("no fields to update")
	}

	args = append(args, tenantID, dealID)
	query := fmt.Sprintf(`
        UPDATE %s
        SET %s, updated_at = NOW()
        WHERE tenant_id = $%d AND id = $%d
        RETURNING id, tenant_id, name, stage, amount_cents, currency, contact_name, expected_close_at, created_at, updated_at
    `, DealsTable, strings.Join(setParts, ", "), len(args)-1, len(args))

	var deal Deal
	err := s.db.WithTenant(ctx, tenantID, func(tx pgx.Tx) error {
		var scanErr error
		deal, scanErr = scanDeal(tx.QueryRow(ctx, query, args...))
		return scanErr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Deal{}, ErrDealNotFound
		}
		return Deal{}, err
	}

	return deal, nil
}

// DeleteDeal removes a deal scoped to the caller's tenant.
func (s *DealStore) DeleteDeal(ctx context.Context, tenantID, dealID uuid.UUID) error {
	return s.db.WithTenant(ctx, tenantID, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, fmt.Sprintf(
			"DELETE FROM %s WHERE tenant_id = $1 AND id = $2", DealsTable,
		), tenantID, dealID)
		if err != nil {
			return fmt.Errorf("delete deal: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrDealNotFound
		}
		return nil
	})
}

func scanDeal(row pgx.Row) (Deal, error) {
	var deal Deal
	if err := row.Scan(
		&deal.ID,
		&deal.TenantID,
		&deal.Name,
		&deal.Stage,
		&deal.AmountCents,
		&deal.Currency,
		&deal.ContactName,
		&deal.ExpectedCloseAt,
		&deal.CreatedAt,
		&deal.UpdatedAt,
	); err != nil {
		return Deal{}, err
	}
	return deal, nil
}
