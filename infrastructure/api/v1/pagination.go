package v1

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/helixml/segalloc/domain/repository"
	"github.com/helixml/segalloc/infrastructure/api/jsonapi"
)

// Page size bounds for list endpoints.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PaginationParams is the page selected by the page and page_size query
// parameters.
type PaginationParams struct {
	page     int
	pageSize int
}

// ParsePagination reads page (1-indexed) and page_size from the query.
// Invalid values fall back to the defaults; page_size is capped at MaxPageSize.
func ParsePagination(r *http.Request) PaginationParams {
	p := PaginationParams{page: 1, pageSize: DefaultPageSize}
	q := r.URL.Query()
	if n, err := strconv.Atoi(q.Get("page")); err == nil && n >= 1 {
		p.page = n
	}
	if n, err := strconv.Atoi(q.Get("page_size")); err == nil && n >= 1 {
		p.pageSize = min(n, MaxPageSize)
	}
	return p
}

// Page returns the page number.
func (p PaginationParams) Page() int { return p.page }

// PageSize returns the page size.
func (p PaginationParams) PageSize() int { return p.pageSize }

// Offset returns the number of rows before this page.
func (p PaginationParams) Offset() int { return (p.page - 1) * p.pageSize }

// Limit returns the number of rows on this page.
func (p PaginationParams) Limit() int { return p.pageSize }

// Options returns the query options selecting this page, newest first.
func (p PaginationParams) Options() []repository.Option {
	return []repository.Option{
		repository.WithLimit(p.Limit()),
		repository.WithOffset(p.Offset()),
		repository.WithOrderDesc("id"),
	}
}

func (p PaginationParams) totalPages(total int64) int {
	return int((total + int64(p.pageSize) - 1) / int64(p.pageSize))
}

// PaginationMeta describes the page and the collection size.
func PaginationMeta(p PaginationParams, total int64) *jsonapi.Meta {
	return &jsonapi.Meta{
		"page":        p.page,
		"page_size":   p.pageSize,
		"total_count": total,
		"total_pages": p.totalPages(total),
	}
}

// PaginationLinks builds self, first, last, prev and next links that keep
// the other query parameters of r.
func PaginationLinks(r *http.Request, p PaginationParams, total int64) *jsonapi.Links {
	pages := p.totalPages(total)
	at := func(page int) string {
		q := r.URL.Query()
		q.Set("page", strconv.Itoa(page))
		q.Set("page_size", strconv.Itoa(p.pageSize))
		return fmt.Sprintf("%s?%s", r.URL.Path, q.Encode())
	}

	links := jsonapi.Links{Self: at(p.page), First: at(1)}
	if pages > 0 {
		links.Last = at(pages)
	}
	if p.page > 1 {
		links.Prev = at(p.page - 1)
	}
	if p.page < pages {
		links.Next = at(p.page + 1)
	}
	return &links
}
