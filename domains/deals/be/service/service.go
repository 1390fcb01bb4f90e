package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Crane-Ceeshar/CCD-Suite-sub007/domains/deals/be/repo"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/persistence"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/validation"
)

// Domain sentinel errors.
var ErrNotFound = errors.New("deal not found")

var validStages = map[string]struct{}{
	"lead": {}, "qualified": {}, "proposal": {}, "negotiation": {}, "won": {}, "lost": {},
}

// Deal represents the domain view of a deal record.
type Deal struct {
	ID              uuid.UUID
	Name            string
	Stage           string
	AmountCents     int64
	Currency        string
	ContactName     string
	ExpectedCloseAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ListOptions controls filtering and pagination.
type ListOptions struct {
	Page      int
	PerPage   int
	Search    *string
	SortBy    *string
	SortOrder *string
}

// ListResult wraps a page of deals with pagination state.
type ListResult struct {
	Deals   []Deal
	Page    int
	PerPage int
	Total   int
}

// CreateInput represents the payload required to create a deal.
type CreateInput struct {
	Name            string
	Stage           *string
	AmountCents     *int64
	Currency        *string
	ContactName     string
	ExpectedCloseAt *time.Time
}

// UpdateInput encapsulates patchable deal fields.
type UpdateInput struct {
	Name             *string
	Stage            *string
	AmountCents      *int64
	Currency         *string
	ContactName      *string
	ExpectedCloseAt  *time.Time
	ClearCloseTarget bool
}

// Service defines the business operations for the deals domain.
type Service interface {
	List(ctx context.Context, opts ListOptions) (ListResult, error)
	Get(ctx context.Context, id uuid.UUID) (Deal, error)
	Create(ctx context.Context, input CreateInput) (Deal, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (Deal, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo repo.Repository
}

// New constructs a deals Service instance backed by the provided repository.
func New(r repo.Repository) Service {
	if r == nil {
		panic("deals repository is required")
	}
	return &service{repo: r}
}

func (s *service) List(ctx context.Context, opts ListOptions) (ListResult, error) {
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

	records, total, err := s.repo.List(ctx, persistence.ListParams{
		Page:      page,
		PerPage:   perPage,
		Search:    opts.Search,
		SortBy:    opts.SortBy,
		SortOrder: opts.SortOrder,
	})
	if err != nil {
		if errors.Is(err, persistence.ErrUnsupportedSort) {
			return ListResult{}, validation.NewError(map[string]string{"sort_by": err.Error()})
		}
		return ListResult{}, err
	}

	deals := make([]Deal, 0, len(records))
	for _, record := range records {
		deals = append(deals, mapDeal(record))
	}

	return ListResult{Deals: deals, Page: page, PerPage: perPage, Total: total}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (Deal, error) {
	if id == uuid.Nil {
		return Deal{}, ErrNotFound
	}

	record, err := s.repo.Get(ctx, id)
	if err != nil {
		return Deal{}, mapPersistenceError(err)
	}
	return mapDeal(record), nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (Deal, error) {
	fieldErrors := validation.FieldErrors{}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		fieldErrors.Add("name", "name is required")
	}

	stage := "lead"
	if input.Stage != nil {
		stage = *input.Stage
		if _, ok := validStages[stage]; !ok {
			fieldErrors.Add("stage", "unsupported stage")
		}
	}

	var amount int64
	if input.AmountCents != nil {
		amount = *input.AmountCents
		if amount < 0 {
			fieldErrors.Add("amount_cents", "amount_cents cannot be negative")
		}
	}

	currency := "USD"
	if input.Currency != nil {
		currency = strings.ToUpper(strings.TrimSpace(*input.Currency))
		if len(currency) != 3 {
			fieldErrors.Add("currency", "currency must be a 3-letter code")
		}
	}

	if len(fieldErrors) > 0 {
		return Deal{}, &validation.Error{Fields: fieldErrors}
	}

	record, err := s.repo.Create(ctx, persistence.CreateDealParams{
		Name:            name,
		Stage:           stage,
		AmountCents:     amount,
		Currency:        currency,
		ContactName:     strings.TrimSpace(input.ContactName),
		ExpectedCloseAt: input.ExpectedCloseAt,
	})
	if err != nil {
		return Deal{}, mapPersistenceError(err)
	}

	return mapDeal(record), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (Deal, error) {
	if id == uuid.Nil {
		return Deal{}, ErrNotFound
	}

	fieldErrors := validation.FieldErrors{}
	params := persistence.UpdateDealParams{
		ContactName:      input.ContactName,
		ExpectedCloseAt:  input.ExpectedCloseAt,
		ClearCloseTarget: input.ClearCloseTarget,
	}
	fieldsSet := input.ContactName != nil || input.ExpectedCloseAt != nil || input.ClearCloseTarget

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			fieldErrors.Add("name", "name cannot be empty")
		} else {
			params.Name = &name
			fieldsSet = true
		}
	}
	if input.Stage != nil {
		if _, ok := validStages[*input.Stage]; !ok {
			fieldErrors.Add("stage", "unsupported stage")
		} else {
			params.Stage = input.Stage
			fieldsSet = true
		}
	}
	if input.AmountCents != nil {
		if *input.AmountCents < 0 {
			fieldErrors.Add("amount_cents", "amount_cents cannot be negative")
		} else {
			params.AmountCents = input.AmountCents
			fieldsSet = true
		}
	}
	if input.Currency != nil {
		currency := strings.ToUpper(strings.TrimSpace(*input.Currency))
		if len(currency) != 3 {
			fieldErrors.Add("currency", "currency must be a 3-letter code")
		} else {
			params.Currency = &currency
			fieldsSet = true
		}
	}

	if !fieldsSet && len(fieldErrors) == 0 {
		fieldErrors.Add("payload", "at least one field must be provided")
	}
	if len(fieldErrors) > 0 {
		return Deal{}, &validation.Error{Fields: fieldErrors}
	}

	record, err := s.repo.Update(ctx, id, params)
	if err != nil {
		return Deal{}, mapPersistenceError(err)
	}

	return mapDeal(record), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return ErrNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return mapPersistenceError(err)
	}
	return nil
}

func mapDeal(record persistence.Deal) Deal {
	return Deal{
		ID:              record.ID,
		Name:            record.Name,
		Stage:           record.Stage,
		AmountCents:     record.AmountCents,
		Currency:        record.Currency,
		ContactName:     record.ContactName,
		ExpectedCloseAt: record.ExpectedCloseAt,
		CreatedAt:       record.CreatedAt,
		UpdatedAt:       record.UpdatedAt,
	}
}

func mapPersistenceError(err error) error {
	if errors.Is(err, persistence.ErrDealNotFound) {
		return ErrNotFound
	}
	return err
}
