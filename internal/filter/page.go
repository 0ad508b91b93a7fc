package filter

import (
	"errors"
	"fmt"
	"strings"
)

// Pagination limits
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ErrInvalidPage is returned for out-of-range page requests and unknown sort keys.
var ErrInvalidPage = errors.New("invalid page request")

var sortColumns = map[string]string{
	"id":            "l.id",
	"name":          "l.name",
	"pricePerMonth": "l.price_per_month",
	"beds":          "l.beds",
	"postedDate":    "l.posted_date",
	"averageRating": "l.average_rating",
}

// Page is a zero-based page request with an optional sort key.
type Page struct {
	Number  int
	Size    int
	SortBy  string
	SortAsc bool
}

// NewPage validates a page request. Size 0 means DefaultPageSize; an empty
// sort key sorts by id ascending.
func NewPage(number, size int, sortBy, sortDir string) (Page, error) {
	if number < 0 {
		return Page{}, fmt.Errorf("%w: page must be non-negative, got %d", ErrInvalidPage, number)
	}
	if size == 0 {
		size = DefaultPageSize
	}
	if size < 1 || size > MaxPageSize {
		return Page{}, fmt.Errorf("%w: size must be between 1 and %d, got %d", ErrInvalidPage, MaxPageSize, size)
	}
	if sortBy == "" {
		sortBy = "id"
	}
	if _, ok := sortColumns[sortBy]; !ok {
		return Page{}, fmt.Errorf("%w: unknown sort field %q", ErrInvalidPage, sortBy)
	}

	asc := true
	switch strings.ToLower(sortDir) {
	case "", "asc":
	case "desc":
		asc = false
	default:
		return Page{}, fmt.Errorf("%w: sort direction must be asc or desc, got %q", ErrInvalidPage, sortDir)
	}

	return Page{Number: number, Size: size, SortBy: sortBy, SortAsc: asc}, nil
}

// Offset is the number of rows skipped before this page.
func (p Page) Offset() int {
	return p.Number * p.Size
}

// OrderBy renders the ORDER BY expression. The id tiebreaker keeps paging stable.
func (p Page) OrderBy() string {
	col, ok := sortColumns[p.SortBy]
	if !ok {
		col = "l.id"
	}
	dir := "ASC"
	if !p.SortAsc {
		dir = "DESC"
	}
	if col == "l.id" {
		return "l.id " + dir
	}
	return col + " " + dir + ", l.id ASC"
}
