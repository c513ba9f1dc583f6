package query

// Page is one slice of a filtered collection.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// TotalPages is ceil(total/size), or 0 when size is not positive.
func TotalPages(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// ClampPage clamps page into [1, max(1, TotalPages(total, size))].
func ClampPage(page, total, size int) int {
	last := TotalPages(total, size)
	if last < 1 {
		last = 1
	}
	if page < 1 {
		return 1
	}
	if page > last {
		return last
	}
	return page
}

// Paginate returns the page of items selected by page and size, with the
// page index clamped into range. A non-positive size falls back to
// DefaultPageSize.
func Paginate[T any](items []T, page, size int) Page[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(items)
	page = ClampPage(page, total, size)

	start := (page - 1) * size
	end := start + size
	if end > total {
		end = total
	}

	slice := make([]T, 0, end-start)
	slice = append(slice, items[start:end]...)

	return Page[T]{
		Items:      slice,
		Page:       page,
		PageSize:   size,
		TotalItems: total,
		TotalPages: TotalPages(total, size),
	}
}
