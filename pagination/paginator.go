package pagination

import (
	"strconv"
)

// Page is one fixed-size slice of an ordered candidate set. Page numbers are
// 1-indexed; an empty candidate set still produces a single empty page so
// renderers always have a page object to work with.
type Page[T any] struct {
	Items      []T  `json:"items"`
	Number     int  `json:"number"`
	Size       int  `json:"size"`
	TotalItems int  `json:"total_items"`
	TotalPages int  `json:"total_pages"`
	HasPrev    bool `json:"has_prev"`
	HasNext    bool `json:"has_next"`
}

// Paginate slices items into pages of the given size and returns the page
// named by raw, typically the request's "page" query parameter. A missing
// value means the first page; a non-numeric or out-of-range value falls back
// to the last valid page instead of erroring. Each call re-slices the input
// independently, so no state survives between requests.
func Paginate[T any](items []T, size int, raw string) Page[T] {
	if size < 1 {
		size = 1
	}

	totalItems := len(items)
	totalPages := (totalItems + size - 1) / size
	if totalPages == 0 {
		totalPages = 1
	}

	number := 1
	if raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > totalPages {
			number = totalPages
		} else {
			number = parsed
		}
	}

	start := (number - 1) * size
	if start > totalItems {
		start = totalItems
	}
	end := start + size
	if end > totalItems {
		end = totalItems
	}

	return Page[T]{
		Items:      items[start:end],
		Number:     number,
		Size:       size,
		TotalItems: totalItems,
		TotalPages: totalPages,
		HasPrev:    number > 1,
		HasNext:    number < totalPages,
	}
}
