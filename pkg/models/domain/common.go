package domain

import (
	"math"
	"strings"
	"time"
)

const (
	DefaultPage  = 1
	DefaultLimit = 25
	MaxLimit     = 100
)

type Page struct {
	Page  int
	Limit int
}

// Normalize applies defaults and clamps the limit.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

func (p Page) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

type ListResult[T any] struct {
	Items []T
	Total int
	Page  Page
}

func (r ListResult[T]) TotalPages() int {
	if r.Page.Limit <= 0 {
		return 0
	}
	return (r.Total + r.Page.Limit - 1) / r.Page.Limit
}

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

type Sort struct {
	Field string
	Order SortOrder
}

// ParseSort reads "field:order" and checks field against allowed.
// An empty input yields def.
func ParseSort(raw string, allowed []string, def Sort) (Sort, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	field, order, _ := strings.Cut(raw, ":")
	field = strings.TrimSpace(field)

	ok := false
	for _, a := range allowed {
		if a == field {
			ok = true
			break
		}
	}
	if !ok {
		return Sort{}, NewValidation("sort", "unsupported sort field "+field)
	}

	s := Sort{Field: field, Order: SortAsc}
	switch strings.ToLower(strings.TrimSpace(order)) {
	case "", "asc":
	case "desc":
		s.Order = SortDesc
	default:
		return Sort{}, NewValidation("sort", "order must be asc or desc")
	}
	return s, nil
}

func (s Sort) SQL() string {
	if s.Order == SortDesc {
		return s.Field + " DESC"
	}
	return s.Field + " ASC"
}

// Ownership holds the audit columns shared by governance entities.
type Ownership struct {
	CreatedBy string
	UpdatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

type ImplementationStatus string

const (
	ImplNotImplemented ImplementationStatus = "not_implemented"
	ImplPlanned        ImplementationStatus = "planned"
	ImplInProgress     ImplementationStatus = "in_progress"
	ImplImplemented    ImplementationStatus = "implemented"
	ImplNotApplicable  ImplementationStatus = "not_applicable"
)

var ImplementationStatuses = []ImplementationStatus{
	ImplNotImplemented, ImplPlanned, ImplInProgress, ImplImplemented, ImplNotApplicable,
}

// Now returns the current time normalized for storage.
func Now() time.Time {
	return NormalizeTime(time.Now())
}

func NormalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
