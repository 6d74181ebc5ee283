package pagination

// Meta describes the returned page.
type Meta struct {
	CurrentPage int  `json:"current_page" yaml:"current_page"`
	PageSize    int  `json:"page_size"    yaml:"page_size"`
	TotalPages  int  `json:"total_pages"  yaml:"total_pages"`
	TotalItems  int  `json:"total_items"  yaml:"total_items"`
	HasPrevious bool `json:"has_previous" yaml:"has_previous"`
	HasNext     bool `json:"has_next"     yaml:"has_next"`
	// First and Last are 1-based row numbers of the page, both 0 when it is empty.
	First int `json:"first" yaml:"first"`
	Last  int `json:"last"  yaml:"last"`
}

// NewMeta builds metadata for params applied to totalItems rows.
func NewMeta(params Params, totalItems int) Meta {
	offset, limit := params.OffsetLimit()
	offset = max(offset, 0)
	pageSize := limit
	if pageSize <= 0 {
		pageSize = max(totalItems-offset, 0)
	}

	currentPage := DefaultPage
	if pageSize > 0 {
		currentPage = offset/pageSize + 1
	}
	totalPages := params.TotalPages(totalItems)

	meta := Meta{
		CurrentPage: currentPage,
		PageSize:    pageSize,
		TotalPages:  totalPages,
		TotalItems:  totalItems,
		HasPrevious: currentPage > 1,
		HasNext:     currentPage < totalPages,
	}
	if offset < totalItems {
		meta.First = offset + 1
		meta.Last = min(offset+pageSize, totalItems)
	}
	return meta
}
