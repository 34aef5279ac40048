package model

import (
	"math"
	"strconv"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// MaxPage keeps Offset within int32 for every page size.
const MaxPage = math.MaxInt32 / MaxPageSize

// Page is a normalised page request.
type Page struct {
	Page     int
	PageSize int
}

// NewPage parses raw query values. Invalid or missing values fall back to
// the first page of DefaultPageSize items. Pages are clamped to
// [1, MaxPage] and sizes to [1, MaxPageSize].
func NewPage(rawPage, rawPageSize string) Page {
	page, err := strconv.Atoi(rawPage)
	if err != nil || page < 1 {
		page = 1
	}
	page = min(page, MaxPage)

	size, err := strconv.Atoi(rawPageSize)
	if err != nil || size == 0 {
		size = DefaultPageSize
	}
	size = max(1, min(size, MaxPageSize))

	return Page{Page: page, PageSize: size}
}

// Offset returns the number of rows to skip.
func (p Page) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// PageMeta describes a page of results.
type PageMeta struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// NewPageMeta computes the page metadata for a total row count. TotalPages
// is never less than one.
func NewPageMeta(p Page, total int) PageMeta {
	pages := (total + p.PageSize - 1) / p.PageSize
	return PageMeta{
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalItems: total,
		TotalPages: max(pages, 1),
	}
}

// ListResponse is the envelope of list endpoints.
type ListResponse[T any] struct {
	Meta PageMeta `json:"meta"`
	Data []T      `json:"data"`
}

// DataResponse is the envelope of single-record endpoints.
type DataResponse[T any] struct {
	Data T `json:"data"`
}
