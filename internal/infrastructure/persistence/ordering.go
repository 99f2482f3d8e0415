package persistence

import (
	"strings"

	"github.com/shopflux/storefront/internal/domain/shared"
	"gorm.io/gorm"
)

// effectivePrice is what a product sells at.
const effectivePrice = "COALESCE(sale_price, price)"

// sortKeys whitelists the sort keys a listing accepts from clients and
// maps each to the SQL it orders by. Unknown keys fall back.
type sortKeys struct {
	fallback string
	exprs    map[string]string
}

var (
	productSort = sortKeys{fallback: "created_at", exprs: map[string]string{
		"created_at":   "created_at",
		"price":        effectivePrice,
		"name":         "name",
		"rating":       "rating",
		"review_count": "review_count",
	}}
	reviewSort = sortKeys{fallback: "created_at", exprs: map[string]string{
		"created_at":    "created_at",
		"rating":        "rating",
		"helpful_count": "helpful_count",
	}}
	orderSort = sortKeys{fallback: "created_at", exprs: map[string]string{
		"created_at":   "created_at",
		"total_amount": "total_amount",
		"status":       "status",
	}}
)

// clause is an ORDER BY body. id breaks ties so pages never overlap.
func (s sortKeys) clause(key, dir string) string {
	expr, ok := s.exprs[strings.TrimSpace(key)]
	if !ok {
		expr = s.exprs[s.fallback]
	}
	d := direction(dir)
	return expr + " " + d + ", id " + d
}

// scope orders a query by key and dir.
func (s sortKeys) scope(key, dir string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB { return db.Order(s.clause(key, dir)) }
}

// direction accepts asc in any case; anything else sorts descending.
func direction(dir string) string {
	if strings.EqualFold(strings.TrimSpace(dir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// paged limits a query to the filter's page. Without a page size the
// whole result is returned.
func paged(f shared.Filter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.PageSize < 1 {
			return db
		}
		return db.Offset(f.Offset()).Limit(f.PageSize)
	}
}
