package shared

// Filter is the listing query handed to repositories. Filters holds the
// per-resource criteria keyed by the Filter* constants of each domain.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Filters  map[string]any
}

// DefaultFilter is the first page of twenty, newest first.
func DefaultFilter() Filter {
	return Filter{
		Page:     1,
		PageSize: 20,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters:  map[string]any{},
	}
}

func (f Filter) Offset() int {
	if f.Page < 2 || f.PageSize < 1 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// Paginated is one page of a listing plus the totals needed to render a
// pager. Items is never nil so it always encodes as a JSON array.
type Paginated[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

func NewPaginated[T any](items []T, total int64, page, pageSize int) Paginated[T] {
	p := Paginated[T]{Items: items, Total: total, Page: page, PageSize: pageSize}
	if p.Items == nil {
		p.Items = make([]T, 0)
	}
	if pageSize > 0 {
		size := int64(pageSize)
		p.TotalPages = int((total + size - 1) / size)
	}
	return p
}
