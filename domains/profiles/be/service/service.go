package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Crane-Ceeshar/CCD-Suite-sub007/domains/profiles/be/repo"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/persistence"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/validation"
)

// Domain sentinel errors.
var (
	ErrNotFound = errors.New("profile not found")
	ErrConflict = errors.New("profile conflict")
)

// Profile represents the domain view of the caller's profile.
type Profile struct {
	UserID    uuid.UUID
	TenantID  uuid.UUID
	Email     string
	FullName  string
	Role      string
	AvatarURL *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UpdateSelfInput encapsulates fields the authenticated user can modify.
type UpdateSelfInput struct {
	FullName  *string
	AvatarURL *string
}

// Service defines the business operations for the profiles domain.
type Service interface {
	GetSelf(ctx context.Context) (Profile, error)
	UpdateSelf(ctx context.Context, input UpdateSelfInput) (Profile, error)
}

type service struct {
	repo repo.Repository
}

// New constructs a profiles Service instance backed by the provided repository.
func New(r repo.Repository) Service {
	if r == nil {
		panic("profiles repository is required")
	}
	return &service{repo: r}
}

func (s *service) GetSelf(ctx context.Context) (Profile, error) {
	record, err := s.repo.GetSelf(ctx)
	if err != nil {
		return Profile{}, mapPersistenceError(err)
	}
	return mapProfile(record), nil
}

func (s *service) UpdateSelf(ctx context.Context, input UpdateSelfInput) (Profile, error) {
	fieldErrors := validation.FieldErrors{}
	params := persistence.UpdateProfileParams{}
	fieldsSet := 0

	if input.FullName != nil {
		name := strings.TrimSpace(*input.FullName)
		if name == "" {
			fieldErrors.Add("full_name", "full_name cannot be empty")
		} else {
			params.FullName = &name
			fieldsSet++
		}
	}

	if input.AvatarURL != nil {
		raw := strings.TrimSpace(*input.AvatarURL)
		if raw == "" {
			// Empty string clears the avatar.
			params.AvatarURL = &raw
			fieldsSet++
		} else if u, err := url.Parse(raw); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			fieldErrors.Add("avatar_url", "avatar_url must be an http(s) URL")
		} else {
			params.AvatarURL = &raw
			fieldsSet++
		}
	}

	if fieldsSet == 0 && len(fieldErrors) == 0 {
		fieldErrors.Add("payload", "at least one field must be provided")
	}

	if len(fieldErrors) > 0 {
		return Profile{}, &validation.Error{Fields: fieldErrors}
	}

	record, err := s.repo.UpdateSelf(ctx, params)
	if err != nil {
		return Profile{}, mapPersistenceError(err)
	}

	return mapProfile(record), nil
}

func mapProfile(record persistence.Profile) Profile {
	return Profile{
		UserID:    record.UserID,
		TenantID:  record.TenantID,
		Email:     record.Email,
		FullName:  record.FullName,
		Role:      record.Role,
		AvatarURL: record.AvatarURL,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}

func mapPersistenceError(err error) error {
	switch {
	case errors.Is(err, persistence.ErrProfileNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrProfileConflict):
		return ErrConflict
	default:
		return err
	}
}
