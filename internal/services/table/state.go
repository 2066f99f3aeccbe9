package table

// SortState is the active sort of a table.
type SortState struct {
	Key       SortKey   `json:"key"`
	Direction Direction `json:"direction"`
}

// Toggle applies a header click: the active key flips direction, any other
// key becomes active in ascending order.
func (s SortState) Toggle(key SortKey) SortState {
	if key == SortNone {
		return SortState{Direction: Asc}
	}
	if s.Key == key {
		return SortState{Key: key, Direction: s.Direction.Flip()}
	}
	return SortState{Key: key, Direction: Asc}
}

// PageState tracks the page of a table with a fixed page size.
type PageState struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// GoTo moves to page, clamped against the number of items in the table.
func (p PageState) GoTo(page, totalItems int) PageState {
	p.Page = Clamp(page, TotalPages(totalItems, p.PageSize))
	return p
}
