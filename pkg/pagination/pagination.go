// Package pagination resolves raw page/limit/sort options into a concrete
// page window.
package pagination

import (
	"math"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// SortOrder is asc or desc. The zero value means "not requested".
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder accepts asc/desc in any case, plus the 1/-1 shorthand.
// Anything else yields the empty order.
func ParseSortOrder(s string) SortOrder {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "1":
		return SortAsc
	case "desc", "-1":
		return SortDesc
	default:
		return ""
	}
}

// Options are the caller supplied values; every field is optional.
type Options struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// Result is the resolved window.
type Result struct {
	Page      int
	Limit     int
	Skip      int
	SortBy    string
	SortOrder SortOrder
}

// Sorted reports whether both a sort field and a direction were given.
// Sorting is only applied in that case.
func (r Result) Sorted() bool {
	return r.SortBy != "" && r.SortOrder != ""
}

// Calculate applies defaults: page 1, limit 10 (capped at 100),
// skip = (page-1)*limit. Pages past math.MaxInt/limit are clamped so skip
// cannot overflow; such a page is empty anyway. SortBy and SortOrder pass through untouched
// apart from normalising the direction.
func Calculate(opts Options) Result {
	page := opts.Page
	if page < 1 {
		page = DefaultPage
	}

	limit := opts.Limit
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if maxPage := math.MaxInt / limit; page > maxPage {
		page = maxPage
	}

	return Result{
		Page:      page,
		Limit:     limit,
		Skip:      (page - 1) * limit,
		SortBy:    strings.TrimSpace(opts.SortBy),
		SortOrder: ParseSortOrder(opts.SortOrder),
	}
}
