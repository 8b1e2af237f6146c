package utils

const DefaultPerPage = 20

// Pagination is a 1-based page window.
type Pagination struct {
	Page    int
	PerPage int
}

func NewPagination(page, perPage int) Pagination {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	return Pagination{Page: page, PerPage: perPage}
}

func (p Pagination) Offset() int { return (p.Page - 1) * p.Limit() }

func (p Pagination) Limit() int {
	if p.PerPage < 1 {
		return DefaultPerPage
	}
	return p.PerPage
}

// PageCount returns how many pages total items span; zero items is zero pages.
func (p Pagination) PageCount(total int64) int {
	limit := int64(p.Limit())
	return int((total + limit - 1) / limit)
}
