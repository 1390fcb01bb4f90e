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

const ProfilesTable = "profiles"

// Profile represents a row in the profiles table joined with its tenant role.
type Profile struct {
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	TenantID  uuid.UUID `db:"tenant_id" json:"tenant_id"`
	Email     string    `db:"email" json:"email"`
	FullName  string    `db:"full_name" json:"full_name"`
	Role      string    `db:"role" json:"role"`
	AvatarURL *string   `db:"avatar_url" json:"avatar_url,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

var (
	// ErrProfileNotFound indicates a missing profile record (or an inactive tenant).
	ErrProfileNotFound = errors.New("profile not found")
	// ErrProfileConflict indicates a uniqueness violation (duplicated email).
	ErrProfileConflict = errors.New("profile conflict")
)

// ProfileStore exposes persistence helpers for the profiles table.
type ProfileStore struct {
	db *TenantDB
}

// NewProfileStore returns a store instance bound to the shared TenantDB.
func NewProfileStore(db *TenantDB) *ProfileStore {
	if db == nil {
		panic("profile store requires tenant db")
	}
	return &ProfileStore{db: db}
}

// GetProfileBySubject loads a profile by verified user id, joined with its
// tenant, for session resolution. It runs on the privileged service path
// because no tenant is known yet; callers must have verified the subject
// before calling. Profiles of deactivated tenants are treated as absent.
func (s *ProfileStore) GetProfileBySubject(ctx context.Context, subject uuid.UUID) (Profile, error) {
	var profile Profile

	err := s.db.WithService(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, fmt.Sprintf(`
            SELECT p.user_id, p.tenant_id, p.email, p.full_name, p.role, p.avatar_url, p.created_at, p.updated_at
            FROM %s p
            JOIN %s t ON t.id = p.tenant_id
            WHERE p.user_id = $1 AND t.is_active
        `, ProfilesTable, TenantsTable), subject)

		var scanErr error
		profile, scanErr = scanProfile(row)
		return scanErr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, ErrProfileNotFound
		}
		return Profile{}, err
	}

	return profile, nil
}

// GetProfile returns the caller's own profile, scoped by tenant and user id.
func (s *ProfileStore) GetProfile(ctx context.Context, tenantID, userID uuid.UUID) (Profile, error) {
	var profile Profile

	err := s.db.WithTenant(ctx, tenantID, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, fmt.Sprintf(`
            SELECT user_id, tenant_id, email, full_name, role, avatar_url, created_at, updated_at
            FROM %s
            WHERE tenant_id = $1 AND user_id = $2
        `, ProfilesTable), tenantID, userID)

		var scanErr error
		profile, scanErr = scanProfile(row)
		return scanErr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, ErrProfileNotFound
		}
		return Profile{}, err
	}

	return profile, nil
}

// UpdateProfileParams represents self-editable fields.
type UpdateProfileParams struct {
	FullName  *string
	AvatarURL *string
}

// UpdateProfile applies the provided fields to the caller's profile and
// returns the updated record.
func (s *ProfileStore) UpdateProfile(ctx context.Context, tenantID, userID uuid.UUID, params UpdateProfileParams) (Profile, error) {
	setParts := []string{}
	var args []any

	if params.FullName != nil {
		args = append(args, strings.TrimSpace(*params.FullName))
		setParts = append(setParts, fmt.Sprintf("full_name = $%d", len(args)))
	}
	if params.AvatarURL != nil {
		args = append(args, strings.TrimSpace(*params.AvatarURL))
		setParts = append(setParts, fmt.Sprintf("avatar_url = $%d", len(args)))
	}

	if len(setParts) == 0 {
		return Profile{}, errors.New("no fields to update")
	}

	args = append(args, tenantID, userID)

	query := fmt.Sprintf(`
        UPDATE %s
        SET %s, updated_at = NOW()
        WHERE tenant_id = $%d AND user_id = $%d
        RETURNING user_id, tenant_id, email, full_name, role, avatar_url, created_at, updated_at
    `, ProfilesTable, strings.Join(setParts, ", "), len(args)-1, len(args))

	var profile Profile
	err := s.db.WithTenant(ctx, tenantID, func(tx pgx.Tx) error {
		var scanErr error
		profile, scanErr = scanProfile(tx.QueryRow(ctx, query, args...))
		return scanErr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, ErrProfileNotFound
		}
		if isUniqueViolation(err) {
			return Profile{}, ErrProfileConflict
		}
		return Profile{}, err
	}

	return profile, nil
}

// CreateProfileParams captures the fields required to insert a profile record.
// Used by provisioning (CLI), not by the HTTP surface.
type CreateProfileParams struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	Email    string
	FullName string
	Role     string
}

// CreateProfile inserts a profile on the privileged service path.
func (s *ProfileStore) CreateProfile(ctx context.Context, params CreateProfileParams) (Profile, error) {
	if params.UserID == uuid.Nil {
		return Profile{}, errors.New("user id is required")
	}
	if params.TenantID == uuid.Nil {
		return Profile{}, errors.New("tenant id is required")
	}

	role := params.Role
	if role == "" {
		role = "member"
	}

	var profile Profile
	err := s.db.WithService(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, fmt.Sprintf(`
            INSERT INTO %s (user_id, tenant_id, email, full_name, role)
            VALUES ($1, $2, $3, $4, $5)
            RETURNING user_id, tenant_id, email, full_name, role, avatar_url, created_at, updated_at
        `, ProfilesTable),
			params.UserID,
			params.TenantID,
			strings.ToLower(strings.TrimSpace(params.Email)),
			strings.TrimSpace(params.FullName),
			role,
		)

		var scanErr error
		profile, scanErr = scanProfile(row)
		return scanErr
	})
	if err != nil {
		if isUniqueViolation(err) {
			return Profile{}, ErrProfileConflict
		}
		return Profile{}, err
	}

	return profile, nil
}

func scanProfile(row pgx.Row) (Profile, error) {
	var profile Profile
	if err := row.Scan(
		&profile.UserID,
		&profile.TenantID,
		&profile.Email,
		&profile.FullName,
		&profile.Role,
		&profile.AvatarURL,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	); err != nil {
		return Profile{}, err
	}
	return profile, nil
}
