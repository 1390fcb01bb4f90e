package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestLocalBlobStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewLocalBlobStore(t.TempDir())
	ctx := context.Background()

	objectPath := ObjectPath(uuid.New(), uuid.New(), uuid.New(), "logo.png")

	n, err := store.Put(ctx, objectPath, "image/png", strings.NewReader("not really a png"))
	require.NoError(t, err)
	require.Equal(t, int64(16), n)

	r, err := store.Get(ctx, objectPath)
	require.NoError(t, err)
	defer r.Close()

	body, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "not really a png", string(body))

	require.NoError(t, store.Delete(ctx, objectPath))
	_, err = store.Get(ctx, objectPath)
	require.ErrorIs(t, err, ErrObjectNotFound)

	// Deleting again stays quiet.
	require.NoError(t, store.Delete(ctx, objectPath))
}

func TestLocalBlobStoreRejectsTraversal(t *testing.T) {
	t.Parallel()

	store := NewLocalBlobStore(t.TempDir())

	_, err := store.Get(context.Background(), "../outside")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrObjectNotFound)
}

func TestObjectPathIsTenantPrefixed(t *testing.T) {
	t.Parallel()

	tenantID := uuid.New()
	p := ObjectPath(tenantID, uuid.New(), uuid.New(), "../../etc/passwd")

	require.NoError(t, ValidateTenantPrefix(tenantID, p))
	require.Error(t, ValidateTenantPrefix(uuid.New(), p))
	require.True(t, strings.HasSuffix(p, "/passwd"))
	require.NotContains(t, p, "..")
}
