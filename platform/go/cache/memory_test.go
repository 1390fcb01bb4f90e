package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/identity"
)

func TestMemoryGetSetInvalidate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := NewMemory()

	id := identity.Identity{
		UserID:   uuid.New(),
		TenantID: uuid.New(),
		Role:     identity.RoleMember,
		Email:    "member@example.com",
	}

	_, ok := c.Get(ctx, "subject-1")
	require.False(t, ok)

	c.Set(ctx, "subject-1", id, time.Minute)

	got, ok := c.Get(ctx, "subject-1")
	require.True(t, ok)
	require.Equal(t, id, got)

	c.Invalidate(ctx, "subject-1")
	_, ok = c.Get(ctx, "subject-1")
	require.False(t, ok)
}

func TestMemoryExpiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := NewMemory()

	c.Set(ctx, "subject-1", identity.Identity{UserID: uuid.New()}, time.Nanosecond)
	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get(ctx, "subject-1")
	require.False(t, ok)
}

func TestMemoryZeroTTLIsNoop(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := NewMemory()

	c.Set(ctx, "subject-1", identity.Identity{UserID: uuid.New()}, 0)
	_, ok := c.Get(ctx, "subject-1")
	require.False(t, ok)
}
