package middleware

import (
	"net/http"
	"strings"
)

// CORS returns a middleware that answers cross-origin requests for the API.
// With an empty allow list every origin is accepted, which suits local
// development; deployments pass the dashboard origins explicitly. The exposed
// headers include Content-Disposition so browsers can read asset download
// file names.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowAll := len(allowedOrigins) == 0
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin != "" {
			allowed[origin] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			headers := w.Header()
			headers.Add("Vary", "Origin")

			if allowAll {
				headers.Set("Access-Control-Allow-Origin", "*")
			} else if _, ok := allowed[origin]; ok {
				headers.Set("Access-Control-Allow-Origin", origin)
			} else {
				// Unknown origin: no CORS headers, the browser blocks it.
				next.ServeHTTP(w, r)
				return
			}

			headers.Set("Access-Control-Allow-Methods", "GET,POST,PATCH,DELETE,OPTIONS")
			headers.Set("Access-Control-Allow-Headers", "Authorization,Content-Type,Idempotency-Key")
			headers.Set("Access-Control-Expose-Headers", "Content-Disposition")
			headers.Set("Access-Control-Max-Age", "300")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
