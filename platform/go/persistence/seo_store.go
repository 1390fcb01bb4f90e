package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	SeoAuditsTable = "seo_audits"
	BacklinksTable = "backlinks"
)

// Audit represents a row in the seo_audits table.
type Audit struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	TenantID  uuid.UUID       `db:"tenant_id" json:"tenant_id"`
	SiteURL   string          `db:"site_url" json:"site_url"`
	Status    string          `db:"status" json:"status"`
	Score     *int            `db:"score" json:"score,omitempty"`
	Issues    json.RawMessage `db:"issues" json:"issues"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// Backlink represents a row in the backlinks table.
type Backlink struct {
	ID           uuid.UUID `db:"id" json:"id"`
	TenantID     uuid.UUID `db:"tenant_id" json:"tenant_id"`
	SourceURL    string    `db:"source_url" json:"source_url"`
	TargetURL    string    `db:"target_url" json:"target_url"`
	AnchorText   string    `db:"anchor_text" json:"anchor_text"`
	DomainRating *int      `db:"domain_rating" json:"domain_rating,omitempty"`
	DiscoveredAt time.Time `db:"discovered_at" json:"discovered_at"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

var (
	// ErrAuditNotFound indicates a missing audit in the caller's tenant.
	ErrAuditNotFound = errors.New("audit not found")
	// ErrBacklinkNotFound indicates a missing backlink in the caller's tenant.
	ErrBacklinkNotFound = errors.New("backlink not found")
	// ErrBacklinkConflict indicates a duplicated source/target pair.
	ErrBacklinkConflict = errors.New("backlink conflict")
)

var auditSortColumns = map[string]string{
	"created_at": "created_at",
	"status":     "status",
	"score":      "score",
	"site_url":   "site_url",
}

var backlinkSortColumns = map[string]string{
	"discovered_at": "discovered_at",
	"domain_rating": "domain_rating",
	"source_url":    "source_url",
}

// SeoStore exposes persistence helpers for audits and backlinks.
type SeoStore struct {
	db *TenantDB
}

// NewSeoStore returns a store instance bound to the shared TenantDB.
func NewSeoStore(db *TenantDB) *SeoStore {
	if db == nil {
		panic("seo store requires tenant db")
	}
	return &SeoStore{db: db}
}

// ListAudits returns one page of the tenant's audits plus the total row count.
func (s *SeoStore) ListAudits(ctx context.Context, tenantID uuid.UUID, params ListParams) ([]Audit, int, error) {
	params = params.normalize()

	order, err := orderClause(auditSortColumns, params, "ORDER BY created_at DESC")
	if err != nil {
		return nil, 0, err
	}

	where := "tenant_id = $1"
	args := []any{tenantID}
	if term := params.searchTerm(); term != "" {
		args = append(args, "%"+term+"%")
		where += fmt.Sprintf(" AND site_url ILIKE $%d", len(args))
	}

	var audits []Audit
	var total int

	err = s.db.WithTenant(ctx, tenantID, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, fmt.Sprintf(
			"SELECT COUNT(*) FROM %s WHERE %s", SeoAuditsTable, where,
		), args...).Scan(&total); err != nil {
			return fmt.Errorf("count audits: %w", err)
		}

		limit, offset := params.limitOffset()
		rows, err := tx.Query(ctx, fmt.Sprintf(`
            SELECT id, tenant_id, site_url, status, score, issues, created_at, updated_at
            FROM %s WHERE %s %s LIMIT %d OFFSET %d
        `, SeoAuditsTable, where, order, limit, offset), args...)
		if err != nil {
			return fmt.Errorf("list audits: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			audit, err := scanAudit(rows)
			if err != nil {
				return err
			}
			audits = append(audits, audit)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, 0, err
	}

	return audits, total, nil
}

// GetAudit returns a single audit scoped to the caller's tenant.
func (s *SeoStore) GetAudit(ctx context.Context, tenantID, auditID uuid.UUID) (Audit, error) {
	var audit Audit

	err := s.db.WithTenant(ctx, tenantID, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, fmt.Sprintf(`
            SELECT id, tenant_id, site_url, status, score, issues, created_at, updated_at
            FROM %s WHERE tenant_id = $1 AND id = $2
        `, SeoAuditsTable), tenantID, auditID)

		var scanErr error
		audit, scanErr = scanAudit(row)
		return scanErr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Audit{}, ErrAuditNotFound
		}
		return Audit{}, err
	}

	return audit, nil
}

// CreateAuditParams captures the fields required to enqueue an audit.
type CreateAuditParams struct {
	SiteURL string
}

// CreateAudit inserts a new audit in "pending" state.
func (s *SeoStore) CreateAudit(ctx context.Context, tenantID uuid.UUID, params CreateAuditParams) (Audit, error) {
	var audit Audit

	err := s.db.WithTenant(ctx, tenantID, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, fmt.Sprintf(`
            INSERT INTO %s (id, tenant_id, site_url, status, issues)
            VALUES ($1, $2, $3, 'pending', '[]')
            RETURNING id, tenant_id, site_url, status, score, issues, created_at, updated_at
        `, SeoAuditsTable), uuid.New(), tenantID, params.SiteURL)

		var scanErr error
		audit, scanErr = scanAudit(row)
		return scanErr
	})
	if err != nil {
		return Audit{}, err
	}

	return audit, nil
}

// DeleteAudit removes an audit scoped to the caller's tenant.
func (s *SeoStore) DeleteAudit(ctx context.Context, tenantID, auditID uuid.UUID) error {
	return s.db.WithTenant(ctx, tenantID, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, fmt.Sprintf(
			"DELETE FROM %s WHERE tenant_id = $1 AND id = $2", SeoAuditsTable,
		), tenantID, auditID)
		if err != nil {
			return fmt.Errorf("delete audit: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrAuditNotFound
		}
		return nil
	})
}

// ListBacklinks returns one page of the tenant's backlinks plus the total row count.
func (s *SeoStore) ListBacklinks(ctx context.Context, tenantID uuid.UUID, params ListParams) ([]Backlink, int, error) {
	params = params.normalize()

	order, err := orderClause(backlinkSortColumns, params, "ORDER BY discovered_at DESC")
	if err != nil {
		return nil, 0, err
	}

	where := "tenant_id = $1"
	args := []any{tenantID}
	if term := params.searchTerm(); term != "" {
		args = append(args, "%"+term+"%")
		where += fmt.Sprintf(" AND (source_url ILIKE $%d OR target_url ILIKE $%d OR anchor_text ILIKE $%d)", len(args), len(args), len(args))
	}

	var backlinks []Backlink
	var total int

	err = s.db.WithTenant(ctx, tenantID, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, fmt.Sprintf(
			"SELECT COUNT(*) FROM %s WHERE %s", BacklinksTable, where,
		), args...).Scan(&total); err != nil {
			return fmt.Errorf("count backlinks: %w", err)
		}

		limit, offset := params.limitOffset()
		rows, err := tx.Query(ctx, fmt.Sprintf(`
            SELECT id, tenant_id, source_url, target_url, anchor_text, domain_rating, discovered_at, created_at
            FROM %s WHERE %s %s LIMIT %d OFFSET %d
        `, BacklinksTable, where, order, limit, offset), args...)
		if err != nil {
			return fmt.Errorf("list backlinks: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var b Backlink
			if err := rows.Scan(&b.ID, &b.TenantID, &b.SourceURL, &b.TargetURL, &b.AnchorText, &b.DomainRating, &b.DiscoveredAt, &b.CreatedAt); err != nil {
				return fmt.Errorf("scan backlink: %w", err)
			}
			backlinks = append(backlinks, b)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, 0, err
	}

	return backlinks, total, nil
}

// CreateBacklinkParams captures the fields required to record a backlink.
type CreateBacklinkParams struct {
	SourceURL    string
	TargetURL    string
	AnchorText   string
	DomainRating *int
	DiscoveredAt *time.Time
}

// CreateBacklink inserts a backlink scoped to the caller's tenant.
func (s *SeoStore) CreateBacklink(ctx context.Context, tenantID uuid.UUID, params CreateBacklinkParams) (Backlink, error) {
	discoveredAt := time.Now().UTC()
	if params.DiscoveredAt != nil {
		discoveredAt = params.DiscoveredAt.UTC()
	}

	var backlink Backlink
	err := s.db.WithTenant(ctx, tenantID, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, fmt.Sprintf(`
            INSERT INTO %s (id, tenant_id, source_url, target_url, anchor_text, domain_rating, discovered_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7)
            RETURNING id, tenant_id, source_url, target_url, anchor_text, domain_rating, discovered_at, created_at
        `, BacklinksTable), uuid.New(), tenantID, params.SourceURL, params.TargetURL, params.AnchorText, params.DomainRating, discoveredAt)

		return row.Scan(&backlink.ID, &backlink.TenantID, &backlink.SourceURL, &backlink.TargetURL, &backlink.AnchorText, &backlink.DomainRating, &backlink.DiscoveredAt, &backlink.CreatedAt)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return Backlink{}, ErrBacklinkConflict
		}
		return Backlink{}, err
	}

	return backlink, nil
}

// DeleteBacklink removes a backlink scoped to the caller's tenant.
func (s *SeoStore) DeleteBacklink(ctx context.Context, tenantID, backlinkID uuid.UUID) error {
	return s.db.WithTenant(ctx, tenantID, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, fmt.Sprintf(
			"DELETE FROM %s WHERE tenant_id = $1 AND id = $2", BacklinksTable,
		), tenantID, backlinkID)
		if err != nil {
			return fmt.Errorf("delete backlink: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrBacklinkNotFound
		}
		return nil
	})
}

func scanAudit(row pgx.Row) (Audit, error) {
	var audit Audit
	if err := row.Scan(
		&audit.ID,
		&audit.TenantID,
		&audit.SiteURL,
		&audit.Status,
		&audit.Score,
		&audit.Issues,
		&audit.CreatedAt,
		&audit.UpdatedAt,
	); err != nil {
		return Audit{}, err
	}
	if audit.Issues == nil {
		audit.Issues = json.RawMessage("[]")
	}
	return audit, nil
}
