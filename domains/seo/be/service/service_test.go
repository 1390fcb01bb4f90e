package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/persistence"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/validation"
)

type mockRepository struct {
	listAuditsFn     func(ctx context.Context, params persistence.ListParams) ([]persistence.Audit, int, error)
	getAuditFn       func(ctx context.Context, id uuid.UUID) (persistence.Audit, error)
	createAuditFn    func(ctx context.Context, params persistence.CreateAuditParams) (persistence.Audit, error)
	deleteAuditFn    func(ctx context.Context, id uuid.UUID) error
	listBacklinksFn  func(ctx context.Context, params persistence.ListParams) ([]persistence.Backlink, int, error)
	createBacklinkFn func(ctx context.Context, params persistence.CreateBacklinkParams) (persistence.Backlink, error)
	deleteBacklinkFn func(ctx context.Context, id uuid.UUID) error
}

func (m *mockRepository) ListAudits(ctx context.Context, params persistence.ListParams) ([]persistence.Audit, int, error) {
	if m.listAuditsFn == nil {
		panic("listAuditsFn not configured")
	}
	return m.listAuditsFn(ctx, params)
}

func (m *mockRepository) GetAudit(ctx context.Context, id uuid.UUID) (persistence.Audit, error) {
	if m.getAuditFn == nil {
		panic("getAuditFn not configured")
	}
	return m.getAuditFn(ctx, id)
}

func (m *mockRepository) CreateAudit(ctx context.Context, params persistence.CreateAuditParams) (persistence.Audit, error) {
	if m.createAuditFn == nil {
		panic("createAuditFn not configured")
	}
	return m.createAuditFn(ctx, params)
}

func (m *mockRepository) DeleteAudit(ctx context.Context, id uuid.UUID) error {
	if m.deleteAuditFn == nil {
		panic("deleteAuditFn not configured")
	}
	return m.deleteAuditFn(ctx, id)
}

func (m *mockRepository) ListBacklinks(ctx context.Context, params persistence.ListParams) ([]persistence.Backlink, int, error) {
	if m.listBacklinksFn == nil {
		panic("listBacklinksFn not configured")
	}
	return m.listBacklinksFn(ctx, params)
}

func (m *mockRepository) CreateBacklink(ctx context.Context, params persistence.CreateBacklinkParams) (persistence.Backlink, error) {
	if m.createBacklinkFn == nil {
		panic("createBacklinkFn not configured")
	}
	return m.createBacklinkFn(ctx, params)
}

func (m *mockRepository) DeleteBacklink(ctx context.Context, id uuid.UUID) error {
	if m.deleteBacklinkFn == nil {
		panic("deleteBacklinkFn not configured")
	}
	return m.deleteBacklinkFn(ctx, id)
}

func TestCreateAuditRequiresHTTPURL(t *testing.T) {
	t.Parallel()

	svc := New(&mockRepository{})

	var validationErr *validation.Error

	_, err := svc.CreateAudit(context.Background(), CreateAuditInput{SiteURL: "not a url"})
	require.True(t, errors.As(err, &validationErr))

	_, err = svc.CreateAudit(context.Background(), CreateAuditInput{SiteURL: "ftp://example.com"})
	require.True(t, errors.As(err, &validationErr))
}

func TestCreateAuditDelegates(t *testing.T) {
	t.Parallel()

	repository := &mockRepository{
		createAuditFn: func(ctx context.Context, params persistence.CreateAuditParams) (persistence.Audit, error) {
			require.Equal(t, "https://example.com", params.SiteURL)
			return persistence.Audit{ID: uuid.New(), SiteURL: params.SiteURL, Status: "pending"}, nil
		},
	}

	audit, err := New(repository).CreateAudit(context.Background(), CreateAuditInput{SiteURL: "  https://example.com  "})
	require.NoError(t, err)
	require.Equal(t, "pending", audit.Status)
}

func TestCreateBacklinkValidatesRating(t *testing.T) {
	t.Parallel()

	svc := New(&mockRepository{})

	rating := 250
	_, err := svc.CreateBacklink(context.Background(), CreateBacklinkInput{
		SourceURL:    "https://blog.example.com/post",
		TargetURL:    "https://example.com",
		DomainRating: &rating,
	})

	var validationErr *validation.Error
	require.True(t, errors.As(err, &validationErr))
	require.Contains(t, validationErr.Fields, "domain_rating")
}

func TestCreateBacklinkMapsConflict(t *testing.T) {
	t.Parallel()

	repository := &mockRepository{
		createBacklinkFn: func(ctx context.Context, params persistence.CreateBacklinkParams) (persistence.Backlink, error) {
			return persistence.Backlink{}, persistence.ErrBacklinkConflict
		},
	}

	_, err := New(repository).CreateBacklink(context.Background(), CreateBacklinkInput{
		SourceURL: "https://blog.example.com/post",
		TargetURL: "https://example.com",
	})
	require.ErrorIs(t, err, ErrBacklinkConflict)
}

func TestGetAuditMapsNotFound(t *testing.T) {
	t.Parallel()

	repository := &mockRepository{
		getAuditFn: func(ctx context.Context, id uuid.UUID) (persistence.Audit, error) {
			return persistence.Audit{}, persistence.ErrAuditNotFound
		},
	}

	_, err := New(repository).GetAudit(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrAuditNotFound)
}
