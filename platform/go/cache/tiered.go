package cache

import (
	"context"
	"time"

	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/identity"
)

// Tiered reads through a fast local tier before a shared tier and backfills
// the local tier on shared hits.
type Tiered struct {
	local    IdentityCache
	shared   IdentityCache
	localTTL time.Duration
}

// NewTiered composes a local and a shared cache. localTTL bounds how long the
// local tier may lag behind invalidations performed by other replicas.
func NewTiered(local, shared IdentityCache, localTTL time.Duration) *Tiered {
	if local == nil || shared == nil {
		panic("tiered cache: both tiers are required")
	}
	if localTTL <= 0 {
		localTTL = 30 * time.Second
	}
	return &Tiered{local: local, shared: shared, localTTL: localTTL}
}

func (t *Tiered) Get(ctx context.Context, subject string) (identity.Identity, bool) {
	if id, ok := t.local.Get(ctx, subject); ok {
		return id, true
	}
	id, ok := t.shared.Get(ctx, subject)
	if ok {
		t.local.Set(ctx, subject, id, t.localTTL)
	}
	return id, ok
}

func (t *Tiered) Set(ctx context.Context, subject string, id identity.Identity, ttl time.Duration) {
	t.local.Set(ctx, subject, id, minDuration(ttl, t.localTTL))
	t.shared.Set(ctx, subject, id, ttl)
}

func (t *Tiered) Invalidate(ctx context.Context, subject string) {
	t.local.Invalidate(ctx, subject)
	t.shared.Invalidate(ctx, subject)
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
