package pagination

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
)

// Pagination defaults and limits.
const (
	DefaultPage      = 1
	MinPage          = 1
	DefaultPageSize  = 10
	MaxLimit         = 10000
	DefaultSortField = FieldTitle
	DefaultSortOrder = SortOrderAsc
	SortOrderAsc     = "asc"
	SortOrderDesc    = "desc"
)

// RowsPerPageOptions are the page sizes the table offers.
//
//nolint:gochecknoglobals // Fixed option list shared with the TUI.
var RowsPerPageOptions = []int{10, 50, 100}

var (
	ErrInvalidPage          = errors.New("page must be >= 1")
	ErrInvalidPageSize      = errors.New("page-size must be one of 10, 50 or 100")
	ErrInvalidLimit         = errors.New("limit must be between 1 and 10000")
	ErrInvalidOffset        = errors.New("offset must be non-negative")
	ErrMixedPaginationModes = errors.New("page and offset parameters are mutually exclusive")
	ErrInvalidSortFormat    = errors.New("invalid sort format: use 'field' or 'field:order' (e.g., 'title:desc')")
	ErrEmptySortField       = errors.New("sort field cannot be empty")
	ErrInvalidSortOrder     = errors.New("sort order must be 'asc' or 'desc'")
	ErrInvalidSortField     = errors.New("invalid sort field")
)

// Params holds the paging and sorting flags of the books command.
// Two modes are supported and are mutually exclusive:
//   - page-based: Page and PageSize (the default, page 1 of 10)
//   - offset-based: Offset and Limit
type Params struct {
	Page      int
	PageSize  int
	Offset    int
	Limit     int
	SortField string
	SortOrder string
}

// NewParams returns page 1 of 10 rows sorted by title ascending.
func NewParams() Params {
	return Params{
		Page:      DefaultPage,
		PageSize:  DefaultPageSize,
		SortField: DefaultSortField,
		SortOrder: DefaultSortOrder,
	}
}

// Validate checks bounds and mode exclusivity.
func (p Params) Validate() error {
	if p.Offset < 0 {
		return ErrInvalidOffset
	}
	if p.Limit < 0 || p.Limit > MaxLimit {
		return fmt.Errorf("%w: got %d", ErrInvalidLimit, p.Limit)
	}
	if p.IsOffsetBased() {
		if p.Page > DefaultPage {
			return ErrMixedPaginationModes
		}
		return nil
	}
	if p.Page < MinPage {
		return fmt.Errorf("%w: got %d", ErrInvalidPage, p.Page)
	}
	if !IsRowsPerPageOption(p.PageSize) {
		return fmt.Errorf("%w: got %d", ErrInvalidPageSize, p.PageSize)
	}
	if p.Page-1 > math.MaxInt/p.PageSize {
		return fmt.Errorf("%w: got %d", ErrInvalidPage, p.Page)
	}
	return nil
}

// IsOffsetBased reports whether --offset or --limit was used.
func (p Params) IsOffsetBased() bool {
	return p.Offset > 0 || p.Limit > 0
}

// OffsetLimit returns the slice window. A zero limit means "to the end".
//
//nolint:nonamedreturns // Named returns document the pair.
func (p Params) OffsetLimit() (offset, limit int) {
	if p.IsOffsetBased() {
		return p.Offset, p.Limit
	}
	page := max(p.Page, MinPage)
	return (page - 1) * p.PageSize, p.PageSize
}

// TotalPages returns how many pages totalItems fill.
func (p Params) TotalPages(totalItems int) int {
	_, limit := p.OffsetLimit()
	switch {
	case totalItems == 0:
		return 0
	case limit <= 0:
		return 1
	}
	return (totalItems + limit - 1) / limit
}

// Slice returns the window of items selected by p. An offset past the end
// yields an empty, non-nil slice.
func Slice[T any](p Params, items []T) []T {
	offset, limit := p.OffsetLimit()
	offset = max(offset, 0)
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 {
		end = min(offset+limit, len(items))
	}
	return items[offset:end]
}

// IsRowsPerPageOption reports whether n is an offered page size.
func IsRowsPerPageOption(n int) bool {
	return slices.Contains(RowsPerPageOptions, n)
}

// NextRowsPerPage returns the option after current, wrapping around.
func NextRowsPerPage(current int) int {
	i := slices.Index(RowsPerPageOptions, current)
	return RowsPerPageOptions[(i+1)%len(RowsPerPageOptions)]
}

const sortPartsMax = 2

// ParseSort parses "field" or "field:order". An empty string selects the
// default title:asc. The field must be a sortable column.
//
//nolint:nonamedreturns // Named returns improve readability for this multi-value function.
func ParseSort(sortStr string) (field, order string, err error) {
	if strings.TrimSpace(sortStr) == "" {
		return DefaultSortField, DefaultSortOrder, nil
	}

	parts := strings.Split(sortStr, ":")
	switch len(parts) {
	case 1:
		field = strings.TrimSpace(parts[0])
		order = DefaultSortOrder
	case sortPartsMax:
		field = strings.TrimSpace(parts[0])
		order = strings.ToLower(strings.TrimSpace(parts[1]))
	default:
		return "", "", fmt.Errorf("%w: %q", ErrInvalidSortFormat, sortStr)
	}

	if field == "" {
		return "", "", ErrEmptySortField
	}
	if order != SortOrderAsc && order != SortOrderDesc {
		return "", "", fmt.Errorf("%w: got %q", ErrInvalidSortOrder, order)
	}
	canonical, ok := canonicalField(field)
	if !ok {
		return "", "", fmt.Errorf("%w: %q (valid: %s)", ErrInvalidSortField, field, strings.Join(Fields(), ", "))
	}
	return canonical, order, nil
}
