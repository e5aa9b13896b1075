package domain

import "strings"

// Pagination holds list-endpoint query parameters. A leading "-" on Sort
// flips the order to descending.
type Pagination struct {
	Page     int
	PageSize int
	Term     string
	Sort     string
}

func (p Pagination) SortColumn() string {
	return strings.TrimPrefix(p.Sort, "-")
}

func (p Pagination) SortDirection() string {
	if strings.HasPrefix(p.Sort, "-") {
		return "DESC"
	}
	return "ASC"
}

func (p Pagination) Limit() int {
	return p.PageSize
}

func (p Pagination) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}
