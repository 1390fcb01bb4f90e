package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Crane-Ceeshar/CCD-Suite-sub007/domains/tenants/be/repo"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/persistence"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/validation"
)

// Domain sentinel errors.
var (
	ErrNotFound = errors.New("tenant not found")
	ErrConflict = errors.New("tenant conflict")
)

// settingsSchema guards the settings PATCH payload: modules_enabled must be a
// string list, features a flat map of booleans, and the branding fields
// strings. Unknown top-level keys are rejected.
const settingsSchema = `{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "modules_enabled": {
      "type": "array",
      "items": {"type": "string", "minLength": 1}
    },
    "features": {
      "type": "object",
      "additionalProperties": {"type": "boolean"}
    },
    "brand_color": {
      "type": "string",
      "pattern": "^#[0-9a-fA-F]{6}$"
    },
    "custom_domain": {
      "type": "string",
      "minLength": 1
    }
  }
}`

var compiledSettingsSchema = jsonschema.MustCompileString("memory://tenant-settings.json", settingsSchema)

// Tenant represents the domain view of the caller's tenant.
type Tenant struct {
	ID          uuid.UUID
	Name        string
	Slug        string
	Plan        string
	Settings    persistence.TenantSettings
	MaxUsers    int
	IsActive    bool
	TrialEndsAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UpdateInput encapsulates tenant fields an admin can modify.
type UpdateInput struct {
	Name *string
}

// Service defines the business operations for the tenants domain.
type Service interface {
	Get(ctx context.Context) (Tenant, error)
	Update(ctx context.Context, input UpdateInput) (Tenant, error)
	GetSettings(ctx context.Context) (persistence.TenantSettings, error)
	// UpdateSettings validates the raw payload against the settings schema,
	// merges it over the current settings and persists the result.
	UpdateSettings(ctx context.Context, payload json.RawMessage) (persistence.TenantSettings, error)
}

type service struct {
	repo repo.Repository
}

// New constructs a tenants Service instance backed by the provided repository.
func New(r repo.Repository) Service {
	if r == nil {
		panic("tenants repository is required")
	}
	return &service{repo: r}
}

func (s *service) Get(ctx context.Context) (Tenant, error) {
	record, err := s.repo.Get(ctx)
	if err != nil {
		return Tenant{}, mapPersistenceError(err)
	}
	return mapTenant(record), nil
}

func (s *service) Update(ctx context.Context, input UpdateInput) (Tenant, error) {
	if input.Name == nil {
		return Tenant{}, validation.NewError(map[string]string{"payload": "at least one field must be provided"})
	}

	name := strings.TrimSpace(*input.Name)
	if name == "" {
		return Tenant{}, validation.NewError(map[string]string{"name": "name cannot be empty"})
	}

	record, err := s.repo.Update(ctx, persistence.UpdateTenantParams{Name: &name})
	if err != nil {
		return Tenant{}, mapPersistenceError(err)
	}

	return mapTenant(record), nil
}

func (s *service) GetSettings(ctx context.Context) (persistence.TenantSettings, error) {
	record, err := s.repo.Get(ctx)
	if err != nil {
		return persistence.TenantSettings{}, mapPersistenceError(err)
	}
	return record.Settings, nil
}

func (s *service) UpdateSettings(ctx context.Context, payload json.RawMessage) (persistence.TenantSettings, error) {
	if len(payload) == 0 {
		return persistence.TenantSettings{}, validation.NewError(map[string]string{"payload": "request body is required"})
	}

	var document any
	if err := json.Unmarshal(payload, &document); err != nil {
		return persistence.TenantSettings{}, validation.NewError(map[string]string{"payload": "request body must be a JSON object"})
	}

	if err := compiledSettingsSchema.Validate(document); err != nil {
		return persistence.TenantSettings{}, schemaValidationError(err)
	}

	current, err := s.repo.Get(ctx)
	if err != nil {
		return persistence.TenantSettings{}, mapPersistenceError(err)
	}

	merged := mergeSettings(current.Settings, payload)

	record, err := s.repo.UpdateSettings(ctx, merged)
	if err != nil {
		return persistence.TenantSettings{}, mapPersistenceError(err)
	}

	return record.Settings, nil
}

// mergeSettings applies the patch document over the current settings. Only
// keys present in the patch change; the schema has already vouched for types.
func mergeSettings(current persistence.TenantSettings, payload json.RawMessage) persistence.TenantSettings {
	var patch struct {
		ModulesEnabled *[]string        `json:"modules_enabled"`
		Features       *map[string]bool `json:"features"`
		BrandColor     *string          `json:"brand_color"`
		CustomDomain   *string          `json:"custom_domain"`
	}
	// Cannot fail: payload already unmarshalled and schema-validated.
	_ = json.Unmarshal(payload, &patch)

	merged := current
	if patch.ModulesEnabled != nil {
		merged.ModulesEnabled = *patch.ModulesEnabled
	}
	if patch.Features != nil {
		merged.Features = *patch.Features
	}
	if patch.BrandColor != nil {
		merged.BrandColor = patch.BrandColor
	}
	if patch.CustomDomain != nil {
		merged.CustomDomain = patch.CustomDomain
	}
	return merged
}

func schemaValidationError(err error) error {
	var schemaErr *jsonschema.ValidationError
	if errors.As(err, &schemaErr) {
		fields := validation.FieldErrors{}
		for _, cause := range schemaErr.BasicOutput().Errors {
			location := strings.TrimPrefix(cause.InstanceLocation, "/")
			if location == "" || cause.Error == "" {
				continue
			}
			fields.Add(location, cause.Error)
		}
		if len(fields) == 0 {
			fields.Add("payload", schemaErr.Message)
		}
		return &validation.Error{Fields: fields}
	}
	return validation.NewError(map[string]string{"payload": "settings payload is invalid"})
}

func mapTenant(record persistence.Tenant) Tenant {
	return Tenant{
		ID:          record.ID,
		Name:        record.Name,
		Slug:        record.Slug,
		Plan:        record.Plan,
		Settings:    record.Settings,
		MaxUsers:    record.MaxUsers,
		IsActive:    record.IsActive,
		TrialEndsAt: record.TrialEndsAt,
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}
}

func mapPersistenceError(err error) error {
	switch {
	case errors.Is(err, persistence.ErrTenantNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrTenantConflict):
		return ErrConflict
	default:
		return err
	}
}
