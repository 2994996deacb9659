package service

// Page is one slice of a paginated listing. Number is 1-based.
type Page[T any] struct {
	Items   []T   `json:"items"`
	Number  int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
}

func newPage[T any](items []T, number, perPage int, total int64) *Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := int((total + int64(perPage) - 1) / int64(perPage))
	return &Page[T]{Items: items, Number: number, PerPage: perPage, Total: total, Pages: pages}
}

// pageBounds clamps page to at least 1 and returns the matching offset.
func pageBounds(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	return page, (page - 1) * perPage
}
