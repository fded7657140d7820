package models

import (
	"math"
	"strings"
)

// PaginationSource says who computed the pagination metadata.
type PaginationSource string

// Pagination sources.
const (
	PaginationFromServer PaginationSource = "server"
	PaginationFromClient PaginationSource = "client"
)

// Pagination describes one page of a collection. Server metadata is passed
// through verbatim; client metadata is derived from the in-memory list.
type Pagination struct {
	Page        int              `json:"page"`
	PageSize    int              `json:"pageSize"`
	TotalPages  int              `json:"totalPages"`
	TotalItems  int              `json:"totalItems"`
	HasNextPage bool             `json:"hasNextPage"`
	Source      PaginationSource `json:"source"`
}

// ClientPagination derives metadata for a list of total items.
func ClientPagination(page, size, total int) *Pagination {
	pages := 0
	if size > 0 {
		pages = int(math.Ceil(float64(total) / float64(size)))
	}
	return &Pagination{
		Page:        page,
		PageSize:    size,
		TotalPages:  pages,
		TotalItems:  total,
		HasNextPage: page < pages,
		Source:      PaginationFromClient,
	}
}

// SortField selects the payments ordering.
type SortField string

// Supported sort fields.
const (
	SortByDate   SortField = "date"
	SortByAmount SortField = "amount"
)

// SortOrder is asc or desc.
type SortOrder string

// Sort orders.
const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Toggle flips the order.
func (o SortOrder) Toggle() SortOrder {
	if o == SortAsc {
		return SortDesc
	}
	return SortAsc
}

// PageQuery is built fresh for each collection fetch.
type PageQuery struct {
	Page      int          `json:"page"`
	Limit     int          `json:"limit"`
	Search    string       `json:"search"`
	Status    StatusFilter `json:"status"`
	SortBy    SortField    `json:"sortBy"`
	SortOrder SortOrder    `json:"sortOrder"`
}

// DefaultPageQuery is the first page sorted by newest first.
func DefaultPageQuery(limit int) PageQuery {
	return PageQuery{Page: 1, Limit: limit, Status: StatusFilterAll, SortBy: SortByDate, SortOrder: SortDesc}
}

// Normalize clamps page and limit and fills empty fields with defaults.
func (q PageQuery) Normalize(defaultLimit, maxLimit int) PageQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = defaultLimit
	}
	if maxLimit > 0 && q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	q.Search = strings.TrimSpace(q.Search)
	if q.Status == "" {
		q.Status = StatusFilterAll
	}
	switch q.SortBy {
	case SortByDate, SortByAmount:
	default:
		q.SortBy = SortByDate
	}
	if q.SortOrder != SortAsc {
		q.SortOrder = SortDesc
	}
	return q
}

// Offset is the index of the first item on the page.
func (q PageQuery) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.Limit
}
