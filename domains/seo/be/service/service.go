package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Crane-Ceeshar/CCD-Suite-sub007/domains/seo/be/repo"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/persistence"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/validation"
)

// Domain sentinel errors.
var (
	ErrAuditNotFound    = errors.New("audit not found")
	ErrBacklinkNotFound = errors.New("backlink not found")
	ErrBacklinkConflict = errors.New("backlink conflict")
)

// Audit represents the domain view of an seo audit.
type Audit struct {
	ID        uuid.UUID
	SiteURL   string
	Status    string
	Score     *int
	Issues    json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Backlink represents the domain view of a backlink record.
type Backlink struct {
	ID           uuid.UUID
	SourceURL    string
	TargetURL    string
	AnchorText   string
	DomainRating *int
	DiscoveredAt time.Time
	CreatedAt    time.Time
}

// ListOptions controls filtering and pagination.
type ListOptions struct {
	Page      int
	PerPage   int
	Search    *string
	SortBy    *string
	SortOrder *string
}

// AuditListResult wraps a page of audits with pagination state.
type AuditListResult struct {
	Audits  []Audit
	Page    int
	PerPage int
	Total   int
}

// BacklinkListResult wraps a page of backlinks with pagination state.
type BacklinkListResult struct {
	Backlinks []Backlink
	Page      int
	PerPage   int
	Total     int
}

// CreateAuditInput represents the payload required to enqueue an audit.
type CreateAuditInput struct {
	SiteURL string
}

// CreateBacklinkInput represents the payload required to record a backlink.
type CreateBacklinkInput struct {
	SourceURL    string
	TargetURL    string
	AnchorText   string
	DomainRating *int
	DiscoveredAt *time.Time
}

// Service defines the business operations for the seo domain.
type Service interface {
	ListAudits(ctx context.Context, opts ListOptions) (AuditListResult, error)
	GetAudit(ctx context.Context, id uuid.UUID) (Audit, error)
	CreateAudit(ctx context.Context, input CreateAuditInput) (Audit, error)
	DeleteAudit(ctx context.Context, id uuid.UUID) error

	ListBacklinks(ctx context.Context, opts ListOptions) (BacklinkListResult, error)
	CreateBacklink(ctx context.Context, input CreateBacklinkInput) (Backlink, error)
	DeleteBacklink(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo repo.Repository
}

// New constructs an seo Service instance backed by the provided repository.
func New(r repo.Repository) Service {
	if r == nil {
		panic("seo repository is required")
	}
	return &service{repo: r}
}

func (s *service) ListAudits(ctx context.Context, opts ListOptions) (AuditListResult, error) {
	params, page, perPage := buildListParams(opts)

	records, total, err := s.repo.ListAudits(ctx, params)
	if err != nil {
		return AuditListResult{}, mapListError(err)
	}

	audits := make([]Audit, 0, len(records))
	for _, record := range records {
		audits = append(audits, mapAudit(record))
	}

	return AuditListResult{Audits: audits, Page: page, PerPage: perPage, Total: total}, nil
}

func (s *service) GetAudit(ctx context.Context, id uuid.UUID) (Audit, error) {
	if id == uuid.Nil {
		return Audit{}, ErrAuditNotFound
	}

	record, err := s.repo.GetAudit(ctx, id)
	if err != nil {
		return Audit{}, mapPersistenceError(err)
	}
	return mapAudit(record), nil
}

func (s *service) CreateAudit(ctx context.Context, input CreateAuditInput) (Audit, error) {
	siteURL := strings.TrimSpace(input.SiteURL)
	if err := validateHTTPURL("site_url", siteURL); err != nil {
		return Audit{}, err
	}

	record, err := s.repo.CreateAudit(ctx, persistence.CreateAuditParams{SiteURL: siteURL})
	if err != nil {
		return Audit{}, mapPersistenceError(err)
	}
	return mapAudit(record), nil
}

func (s *service) DeleteAudit(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return ErrAuditNotFound
	}

	if err := s.repo.DeleteAudit(ctx, id); err != nil {
		return mapPersistenceError(err)
	}
	return nil
}

func (s *service) ListBacklinks(ctx context.Context, opts ListOptions) (BacklinkListResult, error) {
	params, page, perPage := buildListParams(opts)

	records, total, err := s.repo.ListBacklinks(ctx, params)
	if err != nil {
		return BacklinkListResult{}, mapListError(err)
	}

	backlinks := make([]Backlink, 0, len(records))
	for _, record := range records {
		backlinks = append(backlinks, mapBacklink(record))
	}

	return BacklinkListResult{Backlinks: backlinks, Page: page, PerPage: perPage, Total: total}, nil
}

func (s *service) CreateBacklink(ctx context.Context, input CreateBacklinkInput) (Backlink, error) {
	fieldErrors := validation.FieldErrors{}

	sourceURL := strings.TrimSpace(input.SourceURL)
	if !isHTTPURL(sourceURL) {
		fieldErrors.Add("source_url", "source_url must be an http(s) URL")
	}
	targetURL := strings.TrimSpace(input.TargetURL)
	if !isHTTPURL(targetURL) {
		fieldErrors.Add("target_url", "target_url must be an http(s) URL")
	}
	if input.DomainRating != nil && (*input.DomainRating < 0 || *input.DomainRating > 100) {
		fieldErrors.Add("domain_rating", "domain_rating must be between 0 and 100")
	}

	if len(fieldErrors) > 0 {
		return Backlink{}, &validation.Error{Fields: fieldErrors}
	}

	record, err := s.repo.CreateBacklink(ctx, persistence.CreateBacklinkParams{
		SourceURL:    sourceURL,
		TargetURL:    targetURL,
		AnchorText:   strings.TrimSpace(input.AnchorText),
		DomainRating: input.DomainRating,
		DiscoveredAt: input.DiscoveredAt,
	})
	if err != nil {
		return Backlink{}, mapPersistenceError(err)
	}
	return mapBacklink(record), nil
}

func (s *service) DeleteBacklink(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return ErrBacklinkNotFound
	}

	if err := s.repo.DeleteBacklink(ctx, id); err != nil {
		return mapPersistenceError(err)
	}
	return nil
}

func buildListParams(opts ListOptions) (persistence.ListParams, int, int) {
	page := opts.Page
	if page < 1 {
		page = 1
	}
	perPage := opts.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	return persistence.ListParams{
		Page:      page,
		PerPage:   perPage,
		Search:    opts.Search,
		SortBy:    opts.SortBy,
		SortOrder: opts.SortOrder,
	}, page, perPage
}

func validateHTTPURL(field, raw string) error {
	if !isHTTPURL(raw) {
		return validation.NewError(map[string]string{field: field + " must be an http(s) URL"})
	}
	return nil
}

func isHTTPURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func mapAudit(record persistence.Audit) Audit {
	return Audit{
		ID:        record.ID,
		SiteURL:   record.SiteURL,
		Status:    record.Status,
		Score:     record.Score,
		Issues:    record.Issues,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}

func mapBacklink(record persistence.Backlink) Backlink {
	return Backlink{
		ID:           record.ID,
		SourceURL:    record.SourceURL,
		TargetURL:    record.TargetURL,
		AnchorText:   record.AnchorText,
		DomainRating: record.DomainRating,
		DiscoveredAt: record.DiscoveredAt,
		CreatedAt:    record.CreatedAt,
	}
}

func mapListError(err error) error {
	if errors.Is(err, persistence.ErrUnsupportedSort) {
		return validation.NewError(map[string]string{"sort_by": err.Error()})
	}
	return err
}

func mapPersistenceError(err error) error {
	switch {
	case errors.Is(err, persistence.ErrAuditNotFound):
		return ErrAuditNotFound
	case errors.Is(err, persistence.ErrBacklinkNotFound):
		return ErrBacklinkNotFound
	case errors.Is(err, persistence.ErrBacklinkConflict):
		return ErrBacklinkConflict
	default:
		return err
	}
}
