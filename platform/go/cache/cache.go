package cache

import (
	"context"
	"time"

	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/identity"
)

// IdentityCache stores resolved identities keyed by the identity-provider
// subject so the tenant-scoping middleware can skip the profile lookup on hot
// paths. Implementations are best effort: a miss or a backend error just means
// the resolver runs again.
type IdentityCache interface {
	Get(ctx context.Context, subject string) (identity.Identity, bool)
	Set(ctx context.Context, subject string, id identity.Identity, ttl time.Duration)
	Invalidate(ctx context.Context, subject string)
}
