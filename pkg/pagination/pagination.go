// Package pagination provides page/per-page handling and allow-listed
// sorting for repository queries.
package pagination

import "strings"

// Defaults and bounds for page sizes.
const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Pagination holds pagination parameters.
type Pagination struct {
	Page    int
	PerPage int
}

// New creates a Pagination clamped to sane bounds.
func New(page, perPage int) Pagination {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return Pagination{Page: page, PerPage: perPage}
}

// Limit returns the SQL LIMIT value.
func (p Pagination) Limit() int {
	if p.PerPage < 1 {
		return DefaultPerPage
	}
	return p.PerPage
}

// Offset returns the SQL OFFSET value.
func (p Pagination) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit()
}

// Result is a page of items plus totals.
type Result[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalPages int   `json:"total_pages"`
}

// NewResult builds a Result computing the page count.
func NewResult[T any](data []T, total int64, p Pagination) Result[T] {
	perPage := p.Limit()
	totalPages := int(total) / perPage
	if int(total)%perPage != 0 {
		totalPages++
	}
	return Result[T]{
		Data:       data,
		Total:      total,
		Page:       p.Page,
		PerPage:    perPage,
		TotalPages: totalPages,
	}
}

// SortOrder represents the sort direction.
type SortOrder string

const (
	SortAsc  SortOrder = "ASC"
	SortDesc SortOrder = "DESC"
)

// Sort represents one sorting specification.
type Sort struct {
	Field string
	Order SortOrder
}

// SortOption parses and validates sort strings against an allow-list that
// maps request field names to database columns. Unknown fields are dropped,
// so user input never reaches the ORDER BY clause directly.
type SortOption struct {
	sorts         []Sort
	allowedFields map[string]string
}

// NewSortOption creates a SortOption with the given allow-list.
func NewSortOption(allowedFields map[string]string) *SortOption {
	return &SortOption{allowedFields: allowedFields}
}

// Parse parses a sort string like "-created_at,numero": a leading "-" means
// descending.
func (s *SortOption) Parse(sortStr string) *SortOption {
	for _, part := range strings.Split(sortStr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		order := SortAsc
		field := part
		switch {
		case strings.HasPrefix(part, "-"):
			order = SortDesc
			field = part[1:]
		case strings.HasPrefix(part, "+"):
			field = part[1:]
		}
		if column, ok := s.allowedFields[field]; ok {
			s.sorts = append(s.sorts, Sort{Field: column, Order: order})
		}
	}
	return s
}

// IsEmpty reports whether any sort was parsed.
func (s *SortOption) IsEmpty() bool {
	return len(s.sorts) == 0
}

// SQL returns the ORDER BY clause body, e.g. "created_at DESC, numero ASC".
func (s *SortOption) SQL() string {
	if len(s.sorts) == 0 {
		return ""
	}
	parts := make([]string, 0, len(s.sorts))
	for _, sort := range s.sorts {
		parts = append(parts, sort.Field+" "+string(sort.Order))
	}
	return strings.Join(parts, ", ")
}
