package pagination

// DefaultPageSize is the number of items shown per window page.
const DefaultPageSize = 10

// Window is one display page of an in-memory collection.
type Window[T any] struct {
	// Items is the slice for this page (a copy, safe to modify)
	Items []T `json:"items"`

	// Page is the zero-based page index, always in [0, PageCount)
	Page int `json:"page"`

	// PageCount is max(1, ceil(Total/Size))
	PageCount int `json:"page_count"`

	// Total is the length of the whole collection
	Total int `json:"total"`

	// Size is the page size used
	Size int `json:"size"`
}

// Paginate slices items into fixed-size pages and returns the requested one.
// The page index is clamped into [0, PageCount-1]; a non-positive size falls
// back to DefaultPageSize. No I/O is performed.
func Paginate[T any](items []T, page, size int) Window[T] {
	if size <= 0 {
		size = DefaultPageSize
	}

	total := len(items)
	pageCount := (total + size - 1) / size
	if pageCount < 1 {
		pageCount = 1
	}

	if page < 0 {
		page = 0
	}
	if page > pageCount-1 {
		page = pageCount - 1
	}

	start := page * size
	end := start + size
	if end > total {
		end = total
	}

	pageItems := make([]T, end-start)
	copy(pageItems, items[start:end])

	return Window[T]{
		Items:     pageItems,
		Page:      page,
		PageCount: pageCount,
		Total:     total,
		Size:      size,
	}
}

// HasPrev reports whether the "previous" transition is enabled.
func (w Window[T]) HasPrev() bool {
	return w.Page > 0
}

// HasNext reports whether the "next" transition is enabled.
func (w Window[T]) HasNext() bool {
	return w.Page < w.PageCount-1
}

// PrevPage returns the page index for the "previous" transition, clamped at 0.
func (w Window[T]) PrevPage() int {
	if !w.HasPrev() {
		return w.Page
	}
	return w.Page - 1
}

// NextPage returns the page index for the "next" transition, clamped at the
// last page.
func (w Window[T]) NextPage() int {
	if !w.HasNext() {
		return w.Page
	}
	return w.Page + 1
}
