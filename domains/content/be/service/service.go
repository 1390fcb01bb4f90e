package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Crane-Ceeshar/CCD-Suite-sub007/domains/content/be/repo"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/identity"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/persistence"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/storage"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/validation"
)

// Domain sentinel errors.
var (
	ErrPostNotFound  = errors.New("post not found")
	ErrPostConflict  = errors.New("post conflict")
	ErrAssetNotFound = errors.New("asset not found")
)

// maxAssetBytes caps a single asset upload.
const maxAssetBytes = 32 << 20

var (
	validPostStatuses = map[string]struct{}{"draft": {}, "published": {}, "archived": {}}
	slugPattern       = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// Post represents the domain view of a content post.
type Post struct {
	ID          uuid.UUID
	Title       string
	Slug        string
	Body        string
	Status      string
	PublishedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Asset represents the domain view of an uploaded asset.
type Asset struct {
	ID          uuid.UUID
	PostID      uuid.UUID
	FileName    string
	ContentType string
	SizeBytes   int64
	CreatedAt   time.Time
}

// AssetDownload bundles the blob reader with its serving metadata. The caller
// closes Body.
type AssetDownload struct {
	Asset Asset
	Body  io.ReadCloser
}

// ListOptions controls filtering and pagination.
type ListOptions struct {
	Page      int
	PerPage   int
	Search    *string
	SortBy    *string
	SortOrder *string
}

// ListResult wraps a page of posts with pagination state.
type ListResult struct {
	Posts   []Post
	Page    int
	PerPage int
	Total   int
}

// CreatePostInput represents the payload required to create a post.
type CreatePostInput struct {
	Title string
	Slug  string
	Body  string
}

// UpdatePostInput encapsulates patchable post fields.
type UpdatePostInput struct {
	Title  *string
	Slug   *string
	Body   *string
	Status *string
}

// UploadAssetInput carries an incoming asset upload.
type UploadAssetInput struct {
	PostID      uuid.UUID
	FileName    string
	ContentType string
	Body        io.Reader
}

// Service defines the business operations for the content domain.
type Service interface {
	ListPosts(ctx context.Context, opts ListOptions) (ListResult, error)
	GetPost(ctx context.Context, id uuid.UUID) (Post, error)
	CreatePost(ctx context.Context, input CreatePostInput) (Post, error)
	UpdatePost(ctx context.Context, id uuid.UUID, input UpdatePostInput) (Post, error)
	DeletePost(ctx context.Context, id uuid.UUID) error

	ListAssets(ctx context.Context, postID uuid.UUID) ([]Asset, error)
	UploadAsset(ctx context.Context, input UploadAssetInput) (Asset, error)
	DownloadAsset(ctx context.Context, id uuid.UUID) (AssetDownload, error)
	DeleteAsset(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo   repo.Repository
	blobs  storage.BlobStore
	logger *zap.Logger
	now    func() time.Time
}

// New constructs a content Service instance.
func New(r repo.Repository, blobs storage.BlobStore, logger *zap.Logger) Service {
	if r == nil {
		panic("content repository is required")
	}
	if blobs == nil {
		panic("blob store is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &service{repo: r, blobs: blobs, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

func (s *service) ListPosts(ctx context.Context, opts ListOptions) (ListResult, error) {
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

	records, total, err := s.repo.ListPosts(ctx, persistence.ListParams{
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

	posts := make([]Post, 0, len(records))
	for _, record := range records {
		posts = append(posts, mapPost(record))
	}

	return ListResult{Posts: posts, Page: page, PerPage: perPage, Total: total}, nil
}

func (s *service) GetPost(ctx context.Context, id uuid.UUID) (Post, error) {
	if id == uuid.Nil {
		return Post{}, ErrPostNotFound
	}

	record, err := s.repo.GetPost(ctx, id)
	if err != nil {
		return Post{}, mapPersistenceError(err)
	}
	return mapPost(record), nil
}

func (s *service) CreatePost(ctx context.Context, input CreatePostInput) (Post, error) {
	fieldErrors := validation.FieldErrors{}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		fieldErrors.Add("title", "title is required")
	}

	slug := strings.ToLower(strings.TrimSpace(input.Slug))
	if slug == "" {
		slug = slugify(title)
	}
	if !slugPattern.MatchString(slug) {
		fieldErrors.Add("slug", "slug must be lowercase letters, digits and hyphens")
	}

	if len(fieldErrors) > 0 {
		return Post{}, &validation.Error{Fields: fieldErrors}
	}

	record, err := s.repo.CreatePost(ctx, persistence.CreatePostParams{
		Title:  title,
		Slug:   slug,
		Body:   input.Body,
		Status: "draft",
	})
	if err != nil {
		return Post{}, mapPersistenceError(err)
	}

	return mapPost(record), nil
}

func (s *service) UpdatePost(ctx context.Context, id uuid.UUID, input UpdatePostInput) (Post, error) {
	if id == uuid.Nil {
		return Post{}, ErrPostNotFound
	}

	fieldErrors := validation.FieldErrors{}
	params := persistence.UpdatePostParams{Body: input.Body}
	fieldsSet := input.Body != nil

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			fieldErrors.Add("title", "title cannot be empty")
		} else {
			params.Title = &title
			fieldsSet = true
		}
	}
	if input.Slug != nil {
		slug := strings.ToLower(strings.TrimSpace(*input.Slug))
		if !slugPattern.MatchString(slug) {
			fieldErrors.Add("slug", "slug must be lowercase letters, digits and hyphens")
		} else {
			params.Slug = &slug
			fieldsSet = true
		}
	}
	if input.Status != nil {
		status := *input.Status
		if _, ok := validPostStatuses[status]; !ok {
			fieldErrors.Add("status", "unsupported status")
		} else {
			params.Status = &status
			fieldsSet = true
			// Publishing stamps the timestamp; leaving the published state
			// clears it.
			if status == "published" {
				now := s.now()
				params.PublishedAt = &now
			} else {
				params.ClearPublished = true
			}
		}
	}

	if !fieldsSet && len(fieldErrors) == 0 {
		fieldErrors.Add("payload", "at least one field must be provided")
	}
	if len(fieldErrors) > 0 {
		return Post{}, &validation.Error{Fields: fieldErrors}
	}

	record, err := s.repo.UpdatePost(ctx, id, params)
	if err != nil {
		return Post{}, mapPersistenceError(err)
	}

	return mapPost(record), nil
}

func (s *service) DeletePost(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return ErrPostNotFound
	}

	assets, err := s.repo.ListAssets(ctx, id)
	if err != nil {
		return mapPersistenceError(err)
	}

	if err := s.repo.DeletePost(ctx, id); err != nil {
		return mapPersistenceError(err)
	}

	// Blob cleanup is best effort: the records are gone, orphaned blobs are
	// invisible to the API.
	for _, asset := range assets {
		if err := s.blobs.Delete(ctx, asset.ObjectPath); err != nil {
			s.logger.Warn("orphaned asset blob", zap.String("object_path", asset.ObjectPath), zap.Error(err))
		}
	}

	return nil
}

func (s *service) ListAssets(ctx context.Context, postID uuid.UUID) ([]Asset, error) {
	if postID == uuid.Nil {
		return nil, ErrPostNotFound
	}

	// Missing posts and foreign posts both list as absent.
	if _, err := s.repo.GetPost(ctx, postID); err != nil {
		return nil, mapPersistenceError(err)
	}

	records, err := s.repo.ListAssets(ctx, postID)
	if err != nil {
		return nil, mapPersistenceError(err)
	}

	assets := make([]Asset, 0, len(records))
	for _, record := range records {
		assets = append(assets, mapAsset(record))
	}
	return assets, nil
}

func (s *service) UploadAsset(ctx context.Context, input UploadAssetInput) (Asset, error) {
	if input.PostID == uuid.Nil {
		return Asset{}, ErrPostNotFound
	}

	id, ok := identity.FromContext(ctx)
	if !ok {
		return Asset{}, errors.New("identity missing from context")
	}

	fieldErrors := validation.FieldErrors{}
	fileName := strings.TrimSpace(input.FileName)
	if fileName == "" {
		fieldErrors.Add("file", "file name is required")
	}
	contentType := strings.TrimSpace(input.ContentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if input.Body == nil {
		fieldErrors.Add("file", "file content is required")
	}
	if len(fieldErrors) > 0 {
		return Asset{}, &validation.Error{Fields: fieldErrors}
	}

	objectPath := storage.ObjectPath(id.TenantID, input.PostID, uuid.New(), fileName)

	// Read one byte past the cap so an oversize upload is rejected instead of
	// being stored with a silently truncated body.
	size, err := s.blobs.Put(ctx, objectPath, contentType, io.LimitReader(input.Body, maxAssetBytes+1))
	if err != nil {
		return Asset{}, fmt.Errorf("store asset blob: %w", err)
	}
	if size > maxAssetBytes {
		if delErr := s.blobs.Delete(ctx, objectPath); delErr != nil {
			s.logger.Warn("orphaned asset blob", zap.String("object_path", objectPath), zap.Error(delErr))
		}
		return Asset{}, validation.NewError(map[string]string{
			"file": fmt.Sprintf("file exceeds the %d byte limit", maxAssetBytes),
		})
	}

	record, err := s.repo.CreateAsset(ctx, persistence.CreateAssetParams{
		PostID:      input.PostID,
		FileName:    fileName,
		ContentType: contentType,
		SizeBytes:   size,
		ObjectPath:  objectPath,
	})
	if err != nil {
		if delErr := s.blobs.Delete(ctx, objectPath); delErr != nil {
			s.logger.Warn("orphaned asset blob", zap.String("object_path", objectPath), zap.Error(delErr))
		}
		return Asset{}, mapPersistenceError(err)
	}

	return mapAsset(record), nil
}

func (s *service) DownloadAsset(ctx context.Context, id uuid.UUID) (AssetDownload, error) {
	if id == uuid.Nil {
		return AssetDownload{}, ErrAssetNotFound
	}

	caller, ok := identity.FromContext(ctx)
	if !ok {
		return AssetDownload{}, errors.New("identity missing from context")
	}

	record, err := s.repo.GetAsset(ctx, id)
	if err != nil {
		return AssetDownload{}, mapPersistenceError(err)
	}

	if err := storage.ValidateTenantPrefix(caller.TenantID, record.ObjectPath); err != nil {
		// A record passed the tenant filter but points outside the tenant's
		// prefix; treat as absent and flag it.
		s.logger.Error("asset path outside tenant prefix", zap.String("object_path", record.ObjectPath))
		return AssetDownload{}, ErrAssetNotFound
	}

	body, err := s.blobs.Get(ctx, record.ObjectPath)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return AssetDownload{}, ErrAssetNotFound
		}
		return AssetDownload{}, fmt.Errorf("open asset blob: %w", err)
	}

	return AssetDownload{Asset: mapAsset(record), Body: body}, nil
}

func (s *service) DeleteAsset(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return ErrAssetNotFound
	}

	record, err := s.repo.DeleteAsset(ctx, id)
	if err != nil {
		return mapPersistenceError(err)
	}

	if err := s.blobs.Delete(ctx, record.ObjectPath); err != nil {
		s.logger.Warn("orphaned asset blob", zap.String("object_path", record.ObjectPath), zap.Error(err))
	}
	return nil
}

func slugify(title string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func mapPost(record persistence.Post) Post {
	return Post{
		ID:          record.ID,
		Title:       record.Title,
		Slug:        record.Slug,
		Body:        record.Body,
		Status:      record.Status,
		PublishedAt: record.PublishedAt,
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}
}

func mapAsset(record persistence.Asset) Asset {
	return Asset{
		ID:          record.ID,
		PostID:      record.PostID,
		FileName:    record.FileName,
		ContentType: record.ContentType,
		SizeBytes:   record.SizeBytes,
		CreatedAt:   record.CreatedAt,
	}
}

func mapPersistenceError(err error) error {
	switch {
	case errors.Is(err, persistence.ErrPostNotFound):
		return ErrPostNotFound
	case errors.Is(err, persistence.ErrPostConflict):
		return ErrPostConflict
	case errors.Is(err, persistence.ErrAssetNotFound):
		return ErrAssetNotFound
	default:
		return err
	}
}
