// Package storage provides the blob store behind content assets. Every object
// path is prefixed with the owning tenant id so a record scoped to one tenant
// can never address another tenant's bytes.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ErrObjectNotFound indicates a missing blob.
var ErrObjectNotFound = errors.New("object not found")

// BlobStore reads and writes asset blobs addressed by object path.
type BlobStore interface {
	// Put writes the blob and returns the number of bytes stored.
	Put(ctx context.Context, objectPath string, contentType string, r io.Reader) (int64, error)
	// Get opens the blob for reading. The caller closes the reader.
	Get(ctx context.Context, objectPath string) (io.ReadCloser, error)
	// Delete removes the blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, objectPath string) error
}

// ObjectPath builds the canonical tenant-prefixed path for an asset blob:
// <tenant_id>/posts/<post_id>/<asset_id>/<file_name>.
func ObjectPath(tenantID, postID, assetID uuid.UUID, fileName string) string {
	return path.Join(tenantID.String(), "posts", postID.String(), assetID.String(), sanitizeFileName(fileName))
}

// ValidateTenantPrefix returns an error when objectPath does not live under
// the tenant's prefix. Stores call this before touching bytes.
func ValidateTenantPrefix(tenantID uuid.UUID, objectPath string) error {
	prefix := tenantID.String() + "/"
	if !strings.HasPrefix(objectPath, prefix) {
		return fmt.Errorf("object path %q outside tenant prefix", objectPath)
	}
	return nil
}

// sanitizeFileName strips path separators and traversal segments so a
// caller-supplied name cannot escape the asset's directory.
func sanitizeFileName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(path.Clean("/" + name))
	if name == "/" || name == "." || name == "" {
		return "file"
	}
	return name
}
