package repository

import (
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/noah-isme/course-backoffice/internal/dto"
	"github.com/noah-isme/course-backoffice/internal/models"
)

// Page is one page of a remote collection.
type Page[T any] struct {
	Items      []T
	Pagination *models.Pagination
}

// SortKeys extracts the comparable values of an item for each sort field.
type SortKeys[T any] struct {
	Date   func(T) time.Time
	Amount func(T) float64
}

// PageQueryValues encodes q as a query string. The status filter is left
// out when it is "all" and the search term when it is empty.
func PageQueryValues(q models.PageQuery) url.Values {
	values := url.Values{}
	values.Set("page", strconv.Itoa(q.Page))
	values.Set("limit", strconv.Itoa(q.Limit))
	if q.Search != "" {
		values.Set("search", q.Search)
	}
	if q.Status != "" && q.Status != models.StatusFilterAll {
		values.Set("status", string(q.Status))
	}
	if q.SortBy != "" {
		values.Set("sortBy", string(q.SortBy))
		order := q.SortOrder
		if order == "" {
			order = models.SortDesc
		}
		values.Set("sortOrder", string(order))
	}
	return values
}

// ResolvePage returns items with the server's pagination when the backend
// sent any, and otherwise sorts and slices the full list in memory.
func ResolvePage[T any](items []T, raw *dto.RawPagination, q models.PageQuery, keys SortKeys[T]) Page[T] {
	if raw != nil {
		if items == nil {
			items = []T{}
		}
		return Page[T]{Items: items, Pagination: ServerPagination(raw, q)}
	}
	slice, pagination := PaginateInMemory(items, q, keys)
	return Page[T]{Items: slice, Pagination: pagination}
}

// ServerPagination copies the backend's metadata verbatim.
func ServerPagination(raw *dto.RawPagination, q models.PageQuery) *models.Pagination {
	page := raw.CurrentPage
	if page == 0 {
		page = q.Page
	}
	size := raw.Limit
	if size == 0 {
		size = q.Limit
	}
	return &models.Pagination{
		Page:        page,
		PageSize:    size,
		TotalPages:  raw.TotalPages,
		TotalItems:  raw.TotalItems,
		HasNextPage: raw.HasNextPage,
		Source:      models.PaginationFromServer,
	}
}

// PaginateInMemory sorts a copy of items by q's field and order and returns
// items [(page-1)*limit, min(page*limit, n)). Pages past the end yield an
// empty slice. Totals come from len(items).
func PaginateInMemory[T any](items []T, q models.PageQuery, keys SortKeys[T]) ([]T, *models.Pagination) {
	sorted := make([]T, len(items))
	copy(sorted, items)
	sortItems(sorted, q.SortBy, q.SortOrder, keys)

	limit := q.Limit
	if limit <= 0 {
		limit = len(sorted)
	}
	page := q.Page
	if page < 1 {
		page = 1
	}

	pagination := models.ClientPagination(page, limit, len(sorted))

	start := (page - 1) * limit
	if limit == 0 || start >= len(sorted) {
		return []T{}, pagination
	}
	end := start + limit
	if end > len(sorted) {
		end = len(sorted)
	}
	return sorted[start:end], pagination
}

func sortItems[T any](items []T, field models.SortField, order models.SortOrder, keys SortKeys[T]) {
	desc := order != models.SortAsc
	switch {
	case field == models.SortByDate && keys.Date != nil:
		sort.SliceStable(items, func(i, j int) bool {
			a, b := keys.Date(items[i]), keys.Date(items[j])
			if desc {
				return a.After(b)
			}
			return a.Before(b)
		})
	case field == models.SortByAmount && keys.Amount != nil:
		sort.SliceStable(items, func(i, j int) bool {
			a, b := keys.Amount(items[i]), keys.Amount(items[j])
			if desc {
				return a > b
			}
			return a < b
		})
	}
}

// EnrollmentSortKeys sorts enrollments by creation time and price.
var EnrollmentSortKeys = SortKeys[models.Enrollment]{
	Date:   models.Enrollment.CreatedTime,
	Amount: func(e models.Enrollment) float64 { return e.Price },
}
