package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/identity"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/persistence"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/storage"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/validation"
)

type mockRepository struct {
	listPostsFn  func(ctx context.Context, params persistence.ListParams) ([]persistence.Post, int, error)
	getPostFn    func(ctx context.Context, id uuid.UUID) (persistence.Post, error)
	createPostFn func(ctx context.Context, params persistence.CreatePostParams) (persistence.Post, error)
	updatePostFn func(ctx context.Context, id uuid.UUID, params persistence.UpdatePostParams) (persistence.Post, error)
	deletePostFn func(ctx context.Context, id uuid.UUID) error

	listAssetsFn  func(ctx context.Context, postID uuid.UUID) ([]persistence.Asset, error)
	getAssetFn    func(ctx context.Context, id uuid.UUID) (persistence.Asset, error)
	createAssetFn func(ctx context.Context, params persistence.CreateAssetParams) (persistence.Asset, error)
	deleteAssetFn func(ctx context.Context, id uuid.UUID) (persistence.Asset, error)
}

func (m *mockRepository) ListPosts(ctx context.Context, params persistence.ListParams) ([]persistence.Post, int, error) {
	if m.listPostsFn == nil {
		panic("listPostsFn not configured")
	}
	return m.listPostsFn(ctx, params)
}

func (m *mockRepository) GetPost(ctx context.Context, id uuid.UUID) (persistence.Post, error) {
	if m.getPostFn == nil {
		panic("getPostFn not configured")
	}
	return m.getPostFn(ctx, id)
}

func (m *mockRepository) CreatePost(ctx context.Context, params persistence.CreatePostParams) (persistence.Post, error) {
	if m.createPostFn == nil {
		panic("createPostFn not configured")
	}
	return m.createPostFn(ctx, params)
}

func (m *mockRepository) UpdatePost(ctx context.Context, id uuid.UUID, params persistence.UpdatePostParams) (persistence.Post, error) {
	if m.updatePostFn == nil {
		panic("updatePostFn not configured")
	}
	return m.updatePostFn(ctx, id, params)
}

func (m *mockRepository) DeletePost(ctx context.Context, id uuid.UUID) error {
	if m.deletePostFn == nil {
		panic("deletePostFn not configured")
	}
	return m.deletePostFn(ctx, id)
}

func (m *mockRepository) ListAssets(ctx context.Context, postID uuid.UUID) ([]persistence.Asset, error) {
	if m.listAssetsFn == nil {
		panic("listAssetsFn not configured")
	}
	return m.listAssetsFn(ctx, postID)
}

func (m *mockRepository) GetAsset(ctx context.Context, id uuid.UUID) (persistence.Asset, error) {
	if m.getAssetFn == nil {
		panic("getAssetFn not configured")
	}
	return m.getAssetFn(ctx, id)
}

func (m *mockRepository) CreateAsset(ctx context.Context, params persistence.CreateAssetParams) (persistence.Asset, error) {
	if m.createAssetFn == nil {
		panic("createAssetFn not configured")
	}
	return m.createAssetFn(ctx, params)
}

func (m *mockRepository) DeleteAsset(ctx context.Context, id uuid.UUID) (persistence.Asset, error) {
	if m.deleteAssetFn == nil {
		panic("deleteAssetFn not configured")
	}
	return m.deleteAssetFn(ctx, id)
}

// memoryBlobStore is an in-memory storage.BlobStore for tests.
type memoryBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newMemoryBlobStore() *memoryBlobStore {
	return &memoryBlobStore{objects: map[string][]byte{}}
}

func (s *memoryBlobStore) Put(ctx context.Context, objectPath, contentType string, body io.Reader) (int64, error) {
	if s.putErr != nil {
		return 0, s.putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[objectPath] = data
	return int64(len(data)), nil
}

func (s *memoryBlobStore) Get(ctx context.Context, objectPath string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[objectPath]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memoryBlobStore) Delete(ctx context.Context, objectPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, objectPath)
	return nil
}

func testContext(tenantID uuid.UUID) context.Context {
	return identity.WithIdentity(context.Background(), identity.Identity{
		UserID:   uuid.New(),
		TenantID: tenantID,
		Role:     identity.RoleMember,
		Email:    "member@example.com",
	})
}

func TestCreatePostSlugifiesTitle(t *testing.T) {
	t.Parallel()

	repository := &mockRepository{
		createPostFn: func(ctx context.Context, params persistence.CreatePostParams) (persistence.Post, error) {
			require.Equal(t, "spring-launch-recap", params.Slug)
			require.Equal(t, "draft", params.Status)
			return persistence.Post{ID: uuid.New(), Title: params.Title, Slug: params.Slug, Status: params.Status}, nil
		},
	}
	svc := New(repository, newMemoryBlobStore(), zap.NewNop())

	post, err := svc.CreatePost(context.Background(), CreatePostInput{Title: "  Spring Launch: Recap!  "})
	require.NoError(t, err)
	require.Equal(t, "spring-launch-recap", post.Slug)
}

func TestCreatePostRejectsBadSlug(t *testing.T) {
	t.Parallel()

	svc := New(&mockRepository{}, newMemoryBlobStore(), zap.NewNop())

	_, err := svc.CreatePost(context.Background(), CreatePostInput{Title: "Hello", Slug: "Not A Slug"})

	var validationErr *validation.Error
	require.True(t, errors.As(err, &validationErr))
	require.Contains(t, validationErr.Fields, "slug")
}

func TestUpdatePostPublishStampsTimestamp(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	repository := &mockRepository{
		updatePostFn: func(ctx context.Context, id uuid.UUID, params persistence.UpdatePostParams) (persistence.Post, error) {
			require.NotNil(t, params.PublishedAt)
			require.Equal(t, fixed, *params.PublishedAt)
			require.False(t, params.ClearPublished)
			return persistence.Post{ID: id, Status: *params.Status, PublishedAt: params.PublishedAt}, nil
		},
	}

	svc := New(repository, newMemoryBlobStore(), zap.NewNop()).(*service)
	svc.now = func() time.Time { return fixed }

	status := "published"
	post, err := svc.UpdatePost(context.Background(), uuid.New(), UpdatePostInput{Status: &status})
	require.NoError(t, err)
	require.NotNil(t, post.PublishedAt)
	require.Equal(t, fixed, *post.PublishedAt)
}

func TestUpdatePostUnpublishClearsTimestamp(t *testing.T) {
	t.Parallel()

	repository := &mockRepository{
		updatePostFn: func(ctx context.Context, id uuid.UUID, params persistence.UpdatePostParams) (persistence.Post, error) {
			require.True(t, params.ClearPublished)
			require.Nil(t, params.PublishedAt)
			return persistence.Post{ID: id, Status: *params.Status}, nil
		},
	}

	status := "draft"
	_, err := New(repository, newMemoryBlobStore(), zap.NewNop()).UpdatePost(context.Background(), uuid.New(), UpdatePostInput{Status: &status})
	require.NoError(t, err)
}

func TestUpdatePostRequiresAField(t *testing.T) {
	t.Parallel()

	svc := New(&mockRepository{}, newMemoryBlobStore(), zap.NewNop())

	_, err := svc.UpdatePost(context.Background(), uuid.New(), UpdatePostInput{})

	var validationErr *validation.Error
	require.True(t, errors.As(err, &validationErr))
	require.Contains(t, validationErr.Fields, "payload")
}

func TestUploadAssetStoresUnderTenantPrefix(t *testing.T) {
	t.Parallel()

	tenantID := uuid.New()
	postID := uuid.New()
	blobs := newMemoryBlobStore()

	repository := &mockRepository{
		createAssetFn: func(ctx context.Context, params persistence.CreateAssetParams) (persistence.Asset, error) {
			require.NoError(t, storage.ValidateTenantPrefix(tenantID, params.ObjectPath))
			require.Equal(t, int64(11), params.SizeBytes)
			return persistence.Asset{
				ID:          uuid.New(),
				PostID:      params.PostID,
				FileName:    params.FileName,
				ContentType: params.ContentType,
				SizeBytes:   params.SizeBytes,
				ObjectPath:  params.ObjectPath,
			}, nil
		},
	}

	svc := New(repository, blobs, zap.NewNop())

	asset, err := svc.UploadAsset(testContext(tenantID), UploadAssetInput{
		PostID:      postID,
		FileName:    "banner.png",
		ContentType: "image/png",
		Body:        strings.NewReader("hello bytes"),
	})
	require.NoError(t, err)
	require.Equal(t, int64(11), asset.SizeBytes)
	require.Len(t, blobs.objects, 1)
}

func TestUploadAssetRejectsOversizeBody(t *testing.T) {
	t.Parallel()

	blobs := newMemoryBlobStore()
	svc := New(&mockRepository{}, blobs, zap.NewNop())

	_, err := svc.UploadAsset(testContext(uuid.New()), UploadAssetInput{
		PostID:   uuid.New(),
		FileName: "archive.zip",
		Body:     bytes.NewReader(make([]byte, maxAssetBytes+1)),
	})

	var validationErr *validation.Error
	require.True(t, errors.As(err, &validationErr))
	require.Contains(t, validationErr.Fields, "file")
	require.Empty(t, blobs.objects)
}

func TestUploadAssetAcceptsBodyAtTheCap(t *testing.T) {
	t.Parallel()

	blobs := newMemoryBlobStore()
	repository := &mockRepository{
		createAssetFn: func(ctx context.Context, params persistence.CreateAssetParams) (persistence.Asset, error) {
			require.Equal(t, int64(maxAssetBytes), params.SizeBytes)
			return persistence.Asset{ID: uuid.New(), PostID: params.PostID, SizeBytes: params.SizeBytes, ObjectPath: params.ObjectPath}, nil
		},
	}

	asset, err := New(repository, blobs, zap.NewNop()).UploadAsset(testContext(uuid.New()), UploadAssetInput{
		PostID:   uuid.New(),
		FileName: "archive.zip",
		Body:     bytes.NewReader(make([]byte, maxAssetBytes)),
	})
	require.NoError(t, err)
	require.Equal(t, int64(maxAssetBytes), asset.SizeBytes)
}

func TestUploadAssetRemovesBlobWhenRecordFails(t *testing.T) {
	t.Parallel()

	blobs := newMemoryBlobStore()
	repository := &mockRepository{
		createAssetFn: func(ctx context.Context, params persistence.CreateAssetParams) (persistence.Asset, error) {
			return persistence.Asset{}, persistence.ErrPostNotFound
		},
	}

	svc := New(repository, blobs, zap.NewNop())

	_, err := svc.UploadAsset(testContext(uuid.New()), UploadAssetInput{
		PostID:   uuid.New(),
		FileName: "banner.png",
		Body:     strings.NewReader("hello"),
	})
	require.ErrorIs(t, err, ErrPostNotFound)
	require.Empty(t, blobs.objects)
}

func TestDownloadAssetRejectsForeignPrefix(t *testing.T) {
	t.Parallel()

	otherTenant := uuid.New()
	assetID := uuid.New()

	repository := &mockRepository{
		getAssetFn: func(ctx context.Context, id uuid.UUID) (persistence.Asset, error) {
			return persistence.Asset{
				ID:         id,
				ObjectPath: storage.ObjectPath(otherTenant, uuid.New(), uuid.New(), "secret.pdf"),
			}, nil
		},
	}

	svc := New(repository, newMemoryBlobStore(), zap.NewNop())

	_, err := svc.DownloadAsset(testContext(uuid.New()), assetID)
	require.ErrorIs(t, err, ErrAssetNotFound)
}

func TestDownloadAssetStreamsBlob(t *testing.T) {
	t.Parallel()

	tenantID := uuid.New()
	blobs := newMemoryBlobStore()
	objectPath := storage.ObjectPath(tenantID, uuid.New(), uuid.New(), "report.csv")
	_, err := blobs.Put(context.Background(), objectPath, "text/csv", strings.NewReader("a,b,c"))
	require.NoError(t, err)

	repository := &mockRepository{
		getAssetFn: func(ctx context.Context, id uuid.UUID) (persistence.Asset, error) {
			return persistence.Asset{ID: id, FileName: "report.csv", ContentType: "text/csv", SizeBytes: 5, ObjectPath: objectPath}, nil
		},
	}

	download, err := New(repository, blobs, zap.NewNop()).DownloadAsset(testContext(tenantID), uuid.New())
	require.NoError(t, err)
	defer download.Body.Close()

	data, err := io.ReadAll(download.Body)
	require.NoError(t, err)
	require.Equal(t, "a,b,c", string(data))
}

func TestDeletePostCleansUpBlobs(t *testing.T) {
	t.Parallel()

	tenantID := uuid.New()
	postID := uuid.New()
	blobs := newMemoryBlobStore()

	paths := []string{
		storage.ObjectPath(tenantID, postID, uuid.New(), "one.png"),
		storage.ObjectPath(tenantID, postID, uuid.New(), "two.png"),
	}
	for _, p := range paths {
		_, err := blobs.Put(context.Background(), p, "image/png", strings.NewReader("x"))
		require.NoError(t, err)
	}

	repository := &mockRepository{
		listAssetsFn: func(ctx context.Context, id uuid.UUID) ([]persistence.Asset, error) {
			return []persistence.Asset{
				{ID: uuid.New(), PostID: id, ObjectPath: paths[0]},
				{ID: uuid.New(), PostID: id, ObjectPath: paths[1]},
			}, nil
		},
		deletePostFn: func(ctx context.Context, id uuid.UUID) error { return nil },
	}

	err := New(repository, blobs, zap.NewNop()).DeletePost(testContext(tenantID), postID)
	require.NoError(t, err)
	require.Empty(t, blobs.objects)
}
