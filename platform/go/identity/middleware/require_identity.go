package middleware

import (
	"context"
	"net/http"
	"time"

	platformauth "github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/auth"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/cache"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/envelope"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/identity"
)

// Resolver looks up the caller's profile (joined with its tenant) for a
// verified identity-provider subject. Implemented by the profiles service.
// Implementations must fail for unknown subjects and for deactivated tenants;
// the middleware surfaces every failure uniformly as unauthenticated.
type Resolver interface {
	ResolveIdentity(ctx context.Context, subject string) (identity.Identity, error)
}

// Config controls middleware behavior.
type Config struct {
	// Optional cache to avoid a profile lookup per request; nil disables caching.
	Cache    cache.IdentityCache
	CacheTTL time.Duration
}

// RequireIdentity is the single access-control gate for protected routes.
// It requires verified credentials from the auth middleware, resolves them to
// an Identity (userId, tenantId, role) and attaches it to the request context.
// A handler behind this middleware never executes without a populated Identity.
func RequireIdentity(resolver Resolver, cfg Config) func(http.Handler) http.Handler {
	if resolver == nil {
		panic("identity middleware: resolver is required")
	}

	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = time.Minute
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			creds, ok := platformauth.UserFromContext(r.Context())
			if !ok || creds == nil || creds.Id == "" {
				reject(w)
				return
			}

			if cfg.Cache != nil {
				if cached, hit := cfg.Cache.Get(r.Context(), creds.Id); hit {
					next.ServeHTTP(w, r.WithContext(identity.WithIdentity(r.Context(), cached)))
					return
				}
			}

			id, err := resolver.ResolveIdentity(r.Context(), creds.Id)
			if err != nil {
				// Missing profile, deactivated tenant and backend failures all
				// look the same to the caller.
				reject(w)
				return
			}

			if cfg.Cache != nil {
				cfg.Cache.Set(r.Context(), creds.Id, id, ttl)
			}

			next.ServeHTTP(w, r.WithContext(identity.WithIdentity(r.Context(), id)))
		})
	}
}

// RequireAdmin gates a route group on the admin role. It must run after
// RequireIdentity.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity.FromContext(r.Context())
		if !ok {
			reject(w)
			return
		}
		if !id.IsAdmin() {
			envelope.WriteError(w, http.StatusForbidden, envelope.CodeForbidden, "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func reject(w http.ResponseWriter) {
	envelope.WriteError(w, http.StatusUnauthorized, envelope.CodeUnauthenticated, "authentication required")
}
