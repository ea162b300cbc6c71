package models

const (
	DefaultPageSize = 10
	MaxPageSize     = 100

	// MaxPageNumber keeps (page-1)*size far from int overflow; pages past
	// it are simply empty.
	MaxPageNumber = 1_000_000
)

// Page is a 1-based page request.
type Page struct {
	Number int
	Size   int
}

// NewPage clamps the requested page and size to sane bounds.
func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if number > MaxPageNumber {
		number = MaxPageNumber
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}

func (p Page) Offset() int {
	number := p.Number
	if number < 1 {
		return 0
	}
	if number > MaxPageNumber {
		number = MaxPageNumber
	}
	return (number - 1) * p.Limit()
}

func (p Page) Limit() int {
	if p.Size < 1 {
		return DefaultPageSize
	}
	return p.Size
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func NewPagination(p Page, total int) Pagination {
	limit := p.Limit()
	pages := (total + limit - 1) / limit
	number := p.Number
	if number < 1 {
		number = 1
	}
	return Pagination{Page: number, Limit: limit, Total: total, TotalPages: pages}
}
