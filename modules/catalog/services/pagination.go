package services

import "math"

// Page is one page of a listing. A zero PageSize means the listing is not paginated.
type Page[T any] struct {
	Items    []T
	Number   int
	PageSize int
	Total    int64
}

func (p *Page[T]) HasNext() bool {
	return p.PageSize > 0 && p.Number < p.LastPage()
}

func (p *Page[T]) HasPrev() bool {
	return p.PageSize > 0 && p.Number > 1
}

func (p *Page[T]) LastPage() int {
	if p.PageSize <= 0 || p.Total == 0 {
		return 1
	}
	return int((p.Total + int64(p.PageSize) - 1) / int64(p.PageSize))
}

// offsetFor reports false when the page lies beyond any representable offset.
func offsetFor(page, pageSize int) (int, bool) {
	if page < 1 {
		page = 1
	}
	if pageSize > 0 && page-1 > math.MaxInt/pageSize {
		return 0, false
	}
	return (page - 1) * pageSize, true
}
