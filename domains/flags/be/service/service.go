package service

import (
	"context"
	"errors"

	"github.com/Crane-Ceeshar/CCD-Suite-sub007/domains/flags/be/repo"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/featureflags"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/persistence"
)

// ErrNotFound surfaces when the caller's tenant vanished between resolution
// and the flag query.
var ErrNotFound = errors.New("tenant not found")

// Service defines the business operations for the flags domain.
type Service interface {
	// Resolve returns the effective flag set for the caller's tenant, sorted
	// by key.
	Resolve(ctx context.Context) ([]featureflags.Flag, error)
}

type service struct {
	repo repo.Repository
}

// New constructs a flags Service instance backed by the provided repository.
func New(r repo.Repository) Service {
	if r == nil {
		panic("flags repository is required")
	}
	return &service{repo: r}
}

func (s *service) Resolve(ctx context.Context) ([]featureflags.Flag, error) {
	records, err := s.repo.ListDefaults(ctx)
	if err != nil {
		return nil, mapPersistenceError(err)
	}

	settings, err := s.repo.GetTenantSettings(ctx)
	if err != nil {
		return nil, mapPersistenceError(err)
	}

	defaults := make(map[string]bool, len(records))
	for _, record := range records {
		defaults[record.Key] = record.Enabled
	}

	return featureflags.Resolve(defaults, settings.Features), nil
}

func mapPersistenceError(err error) error {
	if errors.Is(err, persistence.ErrTenantNotFound) {
		return ErrNotFound
	}
	return err
}
