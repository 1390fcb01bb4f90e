// Package requestparams parses the query and path parameters shared by the
// resource list endpoints.
package requestparams

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// List carries the pagination/filter query parameters of a list request.
// Out-of-range numbers fall back to zero and are clamped by the service.
type List struct {
	Page      int
	PerPage   int
	Search    *string
	SortBy    *string
	SortOrder *string
}

// ParseList reads page, per_page, search, sort_by and sort_order.
func ParseList(r *http.Request) List {
	q := r.URL.Query()

	list := List{
		Page:    parseInt(q.Get("page")),
		PerPage: parseInt(q.Get("per_page")),
	}

	if v := strings.TrimSpace(q.Get("search")); v != "" {
		list.Search = &v
	}
	if v := strings.TrimSpace(q.Get("sort_by")); v != "" {
		list.SortBy = &v
	}
	if v := strings.TrimSpace(q.Get("sort_order")); v != "" {
		list.SortOrder = &v
	}

	return list
}

// UUIDParam parses a chi URL parameter as a UUID. The boolean is false for
// missing or malformed values; handlers answer 404 in that case so malformed
// ids are indistinguishable from absent records.
func UUIDParam(r *http.Request, name string) (uuid.UUID, bool) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

func parseInt(raw string) int {
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
