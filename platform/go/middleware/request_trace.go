package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/identity"
	platformlogging "github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/logging"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/requesttrace"
)

// RequestTrace populates the context with request-scoped AuditInfo so services
// and repositories can stamp audit fields. It should run after the identity
// middleware so the resolved tenant is available when present.
func RequestTrace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := platformlogging.FromRequest(r, nil)
		requestID, _ := r.Context().Value(middleware.RequestIDKey).(string)

		var audit requesttrace.AuditInfo
		if id, ok := identity.FromContext(r.Context()); ok {
			audit = requesttrace.FromIdentity(id, requestID)
		} else {
			audit = requesttrace.Anonymous(requestID)
		}

		ctx := requesttrace.IntoContext(r.Context(), audit)
		if logger != nil {
			fields := []zap.Field{zap.String("actor_kind", string(audit.ActorKind))}
			if audit.UserID != nil && *audit.UserID != "" {
				fields = append(fields, zap.String("user_id", *audit.UserID))
			}
			if audit.TenantID != nil && *audit.TenantID != "" {
				fields = append(fields, zap.String("tenant_id", *audit.TenantID))
			}
			logger = logger.With(fields...)
			ctx = platformlogging.WithLogger(ctx, logger)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
