package repository

import (
	"math"
	"time"

	"gorm.io/gorm"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	// MaxPage keeps (page-1)*limit inside an int.
	MaxPage = math.MaxInt / MaxLimit
)

// ListFilter holds the optional list filters and the pagination window.
// Nil filters are not applied.
type ListFilter struct {
	From  *time.Time
	To    *time.Time
	Paid  *bool
	Page  int
	Limit int
}

type predicate struct {
	clause string
	value  any
}

// Normalize fills in default pagination and caps the page and its size.
func (f ListFilter) Normalize() ListFilter {
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.Page > MaxPage {
		f.Page = MaxPage
	}
	if f.Limit < 1 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	return f
}

func (f ListFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// Pages is the number of pages needed for total rows at f.Limit per page.
func (f ListFilter) Pages(total int64) int64 {
	if f.Limit < 1 || total == 0 {
		return 0
	}
	limit := int64(f.Limit)
	return (total + limit - 1) / limit
}

// predicates lists the supplied filters in a fixed order: start lower
// bound, start upper bound, paid equality.
func (f ListFilter) predicates() []predicate {
	var out []predicate
	if f.From != nil {
		out = append(out, predicate{"start >= ?", f.From.UTC()})
	}
	if f.To != nil {
		out = append(out, predicate{"start <= ?", f.To.UTC()})
	}
	if f.Paid != nil {
		out = append(out, predicate{"paid = ?", *f.Paid})
	}
	return out
}

// Where is a gorm scope applying every supplied filter as a bound
// parameter. Both the count and the page query go through it.
func (f ListFilter) Where(db *gorm.DB) *gorm.DB {
	for _, p := range f.predicates() {
		db = db.Where(p.clause, p.value)
	}
	return db
}

// Paginate is a gorm scope applying the page ordering and window.
func (f ListFilter) Paginate(db *gorm.DB) *gorm.DB {
	return db.Order("start DESC").Order("id DESC").Limit(f.Limit).Offset(f.Offset())
}
