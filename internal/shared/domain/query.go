package domain

import (
	"fmt"
	"time"
)

const (
	OrderAsc  = "asc"
	OrderDesc = "desc"

	DefaultSortField = "created_at"
	DefaultPageSize  = 10
)

// Query son los filtros de listado comunes a todas las entidades. Los
// bounds de fecha y numéricos son inclusivos; la búsqueda es por
// subcadena case-insensitive sobre un campo registrado como buscable.
type Query struct {
	SortBy string
	Order  string

	MinDate *time.Time
	MaxDate *time.Time

	MinValue *int64
	MaxValue *int64

	SearchField string
	Search      string

	Page  int // 1-based
	Limit int
}

// Normalize aplica los defaults de orden y paginación.
func (q *Query) Normalize(defaultLimit int) {
	if q.Order == "" {
		q.Order = OrderAsc
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		if defaultLimit > 0 {
			q.Limit = defaultLimit
		} else {
			q.Limit = DefaultPageSize
		}
	}
}

// Validate comprueba los campos dinámicos contra el registro de la
// entidad. Cualquier violación es ErrInvalidInput.
func (q Query) Validate(s Schema) error {
	if q.Order != "" && q.Order != OrderAsc && q.Order != OrderDesc {
		return fmt.Errorf("%w: order must be %q or %q", ErrInvalidInput, OrderAsc, OrderDesc)
	}
	if q.SortBy != "" && !s.CanSort(q.SortBy) {
		return fmt.Errorf("%w: cannot sort by %q", ErrInvalidInput, q.SortBy)
	}
	if q.SearchField != "" && !s.CanSearch(q.SearchField) {
		return fmt.Errorf("%w: cannot search by %q", ErrInvalidInput, q.SearchField)
	}
	if q.Search != "" && q.SearchField == "" {
		return fmt.Errorf("%w: search requires search_field", ErrInvalidInput)
	}
	if (q.MinValue != nil || q.MaxValue != nil) && s.NumericField == "" {
		return fmt.Errorf("%w: %s has no numeric filter field", ErrInvalidInput, s.Entity)
	}
	return nil
}

func (q Query) Desc() bool {
	return q.Order == OrderDesc
}

// Offset traduce la página 1-based a offset de backend.
func (q Query) Offset() int {
	return (q.Page - 1) * q.Limit
}

// PageMeta son los metadatos de paginación que acompañan a cada página.
type PageMeta struct {
	TotalRecords int64 `json:"total_records"`
	TotalPages   int   `json:"total_pages"`
	Page         int   `json:"page"`
	PageSize     int   `json:"page_size"`
}

// NewPageMeta deriva los metadatos del total filtrado; total_pages es
// el techo de total/limit.
func NewPageMeta(total int64, page, limit int) PageMeta {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return PageMeta{
		TotalRecords: total,
		TotalPages:   pages,
		Page:         page,
		PageSize:     limit,
	}
}
