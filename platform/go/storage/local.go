package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalBlobStore stores asset blobs under a root directory. Development and
// test backend; the object path maps directly to a relative file path.
type LocalBlobStore struct {
	root string
}

func NewLocalBlobStore(root string) *LocalBlobStore {
	if root == "" {
		panic("local blob store requires root dir")
	}
	return &LocalBlobStore{root: root}
}

func (s *LocalBlobStore) Put(_ context.Context, objectPath string, _ string, r io.Reader) (int64, error) {
	full, err := s.fullPath(objectPath)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return 0, fmt.Errorf("create object dir: %w", err)
	}

	f, err := os.Create(full)
	if err != nil {
		return 0, fmt.Errorf("create object file: %w", err)
	}

	n, err := io.Copy(f, r)
	if err != nil {
		_ = f.Close()
		return 0, fmt.Errorf("write object file: %w", err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("close object file: %w", err)
	}

	return n, nil
}

func (s *LocalBlobStore) Get(_ context.Context, objectPath string) (io.ReadCloser, error) {
	full, err := s.fullPath(objectPath)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("open object file: %w", err)
	}
	return f, nil
}

func (s *LocalBlobStore) Delete(_ context.Context, objectPath string) error {
	full, err := s.fullPath(objectPath)
	if err != nil {
		return err
	}

	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete object file: %w", err)
	}
	return nil
}

// fullPath resolves the object path below the root and rejects traversal.
func (s *LocalBlobStore) fullPath(objectPath string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(objectPath))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid object path %q", objectPath)
	}
	return filepath.Join(s.root, clean), nil
}

var _ BlobStore = (*LocalBlobStore)(nil)
