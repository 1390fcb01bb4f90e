package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
)

// GCSBlobStore stores asset blobs in a Google Cloud Storage bucket.
type GCSBlobStore struct {
	client *gcs.Client
	bucket string
}

func NewGCSBlobStore(client *gcs.Client, bucket string) *GCSBlobStore {
	if client == nil {
		panic("gcs blob store requires client")
	}
	if bucket == "" {
		panic("gcs blob store requires bucket")
	}
	return &GCSBlobStore{client: client, bucket: bucket}
}

func (s *GCSBlobStore) Put(ctx context.Context, objectPath string, contentType string, r io.Reader) (int64, error) {
	w := s.client.Bucket(s.bucket).Object(objectPath).NewWriter(ctx)
	w.ContentType = contentType

	n, err := io.Copy(w, r)
	if err != nil {
		_ = w.Close()
		return 0, fmt.Errorf("write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return 0, fmt.Errorf("close object writer: %w", err)
	}

	return n, nil
}

func (s *GCSBlobStore) Get(ctx context.Context, objectPath string) (io.ReadCloser, error) {
	r, err := s.client.Bucket(s.bucket).Object(objectPath).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("open object: %w", err)
	}
	return r, nil
}

func (s *GCSBlobStore) Delete(ctx context.Context, objectPath string) error {
	err := s.client.Bucket(s.bucket).Object(objectPath).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

var _ BlobStore = (*GCSBlobStore)(nil)
