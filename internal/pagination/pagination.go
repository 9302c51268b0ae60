// Package pagination slices ordered results into fixed-size pages.
//
// Requesting a page past the last non-empty one yields an empty slice,
// never an error; page numbers below 1 clamp to the first page.
package pagination

type Page struct {
	Number     int
	Size       int
	TotalItems int
	TotalPages int
}

func (p Page) HasPrev() bool { return p.Number > 1 }

func (p Page) HasNext() bool { return p.Number < p.TotalPages }

func (p Page) Prev() int { return p.Number - 1 }

func (p Page) Next() int { return p.Number + 1 }

func Paginate[T any](items []T, size, number int) ([]T, Page) {
	if size < 1 {
		size = 1
	}
	if number < 1 {
		number = 1
	}

	total := len(items)
	totalPages := (total + size - 1) / size
	if totalPages == 0 {
		// An empty listing still renders as page 1 of 1.
		totalPages = 1
	}

	info := Page{
		Number:     number,
		Size:       size,
		TotalItems: total,
		TotalPages: totalPages,
	}

	// Past the last page there is nothing to slice; deriving start from
	// an arbitrarily large number would also overflow the multiplication.
	if number > totalPages {
		return items[total:], info
	}

	start := (number - 1) * size
	end := min(start+size, total)
	return items[start:end], info
}
