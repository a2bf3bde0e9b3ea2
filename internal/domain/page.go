package domain

import (
	"slices"
	"strings"
)

const MaxPageSize = 50

// Sortable article fields, as accepted in a "field,dir" sort parameter.
const (
	SortPublishedDate = "publishedDate"
	SortCreatedAt     = "createdAt"
	SortUpdatedAt     = "updatedAt"
	SortTitle         = "title"
	SortReadingTime   = "readingTimeMinutes"
	SortSlug          = "slug"
	SortID            = "id"
)

var sortFields = []string{
	SortPublishedDate, SortCreatedAt, SortUpdatedAt, SortTitle, SortReadingTime, SortSlug, SortID,
}

type Sort struct {
	Field     string
	Ascending bool
}

// ParseSort reads "field" or "field,dir". An empty field falls back to
// defaultField; any direction other than "asc" means descending.
func ParseSort(raw, defaultField string) (Sort, error) {
	field, dir, _ := strings.Cut(strings.TrimSpace(raw), ",")
	field = strings.TrimSpace(field)
	if field == "" {
		field = defaultField
	}

	if !slices.Contains(sortFields, field) {
		return Sort{}, InvalidEnumError{Field: "sort", Value: field, Allowed: sortFields}
	}

	return Sort{
		Field:     field,
		Ascending: strings.EqualFold(strings.TrimSpace(dir), "asc"),
	}, nil
}

type PageRequest struct {
	Page int
	Size int
	Sort Sort
}

// NewPageRequest normalises client paging input: negative pages become 0,
// non-positive sizes take defaultSize and every size is capped at MaxPageSize.
func NewPageRequest(page, size, defaultSize int, sort Sort) PageRequest {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = defaultSize
	}
	if size <= 0 {
		size = 1
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return PageRequest{Page: page, Size: size, Sort: sort}
}

func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	First         bool  `json:"first"`
	Last          bool  `json:"last"`
}

func NewPage[T any](content []T, req PageRequest, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := 0
	if req.Size > 0 {
		totalPages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return Page[T]{
		Content:       content,
		Page:          req.Page,
		Size:          req.Size,
		TotalElements: total,
		TotalPages:    totalPages,
		First:         req.Page == 0,
		Last:          req.Page+1 >= totalPages,
	}
}
