package news

import "math"

// Page is one page of a result set. Store-backed and in-memory results both
// go through NewPage so callers cannot tell the two paths apart.
type Page struct {
	Items    []Article `json:"data"`
	Total    int       `json:"total"`
	Number   int       `json:"current_page"`
	Size     int       `json:"per_page"`
	LastPage int       `json:"last_page"`
}

// NewPage builds a page from an already sliced item list
func NewPage(items []Article, total, number, size int) Page {
	number, size = pageBounds(number, size)
	if items == nil {
		items = []Article{}
	}
	last := 1
	if total > 0 {
		last = (total + size - 1) / size
	}
	return Page{
		Items:    items,
		Total:    total,
		Number:   number,
		Size:     size,
		LastPage: last,
	}
}

// Paginate slices an in-memory sequence. Pages past the end are empty
// but still report the full total.
func Paginate(items []Article, number, size int) Page {
	number, size = pageBounds(number, size)
	total := len(items)

	start := Offset(number, size)
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}

	out := make([]Article, end-start)
	copy(out, items[start:end])
	return NewPage(out, total, number, size)
}

// Offset is the zero-based index of the first item on a page. It saturates
// at math.MaxInt instead of overflowing for very large page numbers.
func Offset(number, size int) int {
	number, size = pageBounds(number, size)
	if number-1 > math.MaxInt/size {
		return math.MaxInt
	}
	return (number - 1) * size
}

func pageBounds(number, size int) (int, int) {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = DefaultPerPage
	}
	return number, size
}
