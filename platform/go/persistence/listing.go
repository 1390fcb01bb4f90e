package persistence

import (
	"errors"
	"fmt"
	"strings"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// ErrUnsupportedSort indicates a sort_by value outside the store's whitelist.
var ErrUnsupportedSort = errors.New("unsupported sort field")

// ListParams captures the pagination/filter knobs shared by all list queries.
type ListParams struct {
	Page      int
	PerPage   int
	Search    *string
	SortBy    *string
	SortOrder *string // "asc" | "desc"
}

// normalize clamps pagination to sane bounds. Mutates and returns the receiver
// copy so call sites stay one-liners.
func (p ListParams) normalize() ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage <= 0 {
		p.PerPage = defaultPerPage
	}
	if p.PerPage > maxPerPage {
		p.PerPage = maxPerPage
	}
	return p
}

func (p ListParams) limitOffset() (int, int) {
	return p.PerPage, (p.Page - 1) * p.PerPage
}

// searchTerm returns the trimmed search string, or "" when absent.
func (p ListParams) searchTerm() string {
	if p.Search == nil {
		return ""
	}
	return strings.TrimSpace(*p.Search)
}

// orderClause builds an ORDER BY from the store's column mapping. Unknown
// sort_by values fail with ErrUnsupportedSort; sort_order defaults to the
// store's preference and only accepts asc/desc.
func orderClause(mapping map[string]string, params ListParams, defaultClause string) (string, error) {
	if params.SortBy == nil || strings.TrimSpace(*params.SortBy) == "" {
		return defaultClause, nil
	}

	column, ok := mapping[strings.TrimSpace(*params.SortBy)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedSort, *params.SortBy)
	}

	direction := "ASC"
	if params.SortOrder != nil {
		switch strings.ToLower(strings.TrimSpace(*params.SortOrder)) {
		case "", "asc":
		case "desc":
			direction = "DESC"
		default:
			return "", fmt.Errorf("%w: sort_order %q", ErrUnsupportedSort, *params.SortOrder)
		}
	}

	return fmt.Sprintf("ORDER BY %s %s", column, direction), nil
}
