package table

import (
	"errors"
	"fmt"
)

var ErrInvalidPageSize = errors.New("page size must be positive")

// Page is one slice of a paginated list. Number is the page actually served
// after clamping the requested page into [1, TotalPages].
type Page[T any] struct {
	Items      []T `json:"items"`
	Number     int `json:"page"`
	TotalPages int `json:"total_pages"`
	TotalItems int `json:"total_items"`
}

func (p Page[T]) HasPrev() bool { return p.Number > 1 }
func (p Page[T]) HasNext() bool { return p.Number < p.TotalPages }

// Links is the pager for p, see Window.
func (p Page[T]) Links() []int { return Window(p.Number, p.TotalPages) }

// Paginate slices items into pages of pageSize. Out-of-range pages are
// clamped rather than rejected.
func Paginate[T any](items []T, page, pageSize int) (Page[T], error) {
	if pageSize <= 0 {
		return Page[T]{}, fmt.Errorf("%w: %d", ErrInvalidPageSize, pageSize)
	}

	totalPages := TotalPages(len(items), pageSize)
	page = Clamp(page, totalPages)

	start := (page - 1) * pageSize
	end := min(start+pageSize, len(items))

	pageItems := make([]T, 0, end-start)
	if start < end {
		pageItems = append(pageItems, items[start:end]...)
	}

	return Page[T]{
		Items:      pageItems,
		Number:     page,
		TotalPages: totalPages,
		TotalItems: len(items),
	}, nil
}

// TotalPages is ceil(n/pageSize), never less than one.
func TotalPages(n, pageSize int) int {
	if pageSize <= 0 {
		return 1
	}
	return max(1, (n+pageSize-1)/pageSize)
}

func Clamp(page, totalPages int) int {
	return max(1, min(page, totalPages))
}

// Gap marks elided pages in a Window.
const Gap = 0

// Window lists the pages a pager shows around page: the first and last
// pages, the current one and its neighbours. The page two away on either
// side is replaced by Gap. A single page needs no pager and yields nil.
func Window(page, totalPages int) []int {
	if totalPages <= 1 {
		return nil
	}
	page = Clamp(page, totalPages)

	var out []int
	for p := 1; p <= totalPages; p++ {
		switch {
		case p == 1 || p == totalPages || (p >= page-1 && p <= page+1):
			out = append(out, p)
		case p == page-2 || p == page+2:
			out = append(out, Gap)
		}
	}
	return out
}
