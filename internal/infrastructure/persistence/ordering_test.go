package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirection(t *testing.T) {
	for in, want := range map[string]string{
		"":                            "DESC",
		"ASC":                         "ASC",
		"asc":                         "ASC",
		"  Asc ":                      "ASC",
		"desc":                        "DESC",
		"sideways":                    "DESC",
		"ASC; DROP TABLE products;--": "DESC",
	} {
		assert.Equal(t, want, direction(in), "%q", in)
	}
}

func TestSortKeys_Clause(t *testing.T) {
	tests := []struct {
		keys     sortKeys
		key, dir string
		want     string
	}{
		{productSort, "price", "asc", effectivePrice + " ASC, id ASC"},
		{productSort, " rating ", "", "rating DESC, id DESC"},
		{productSort, "", "asc", "created_at ASC, id ASC"},
		{productSort, "stock_quantity", "desc", "created_at DESC, id DESC"},
		{productSort, "NAME", "asc", "created_at ASC, id ASC"},
		{productSort, "name; DROP TABLE products;--", "asc", "created_at ASC, id ASC"},
		{reviewSort, "helpful_count", "desc", "helpful_count DESC, id DESC"},
		{orderSort, "total_amount", "asc", "total_amount ASC, id ASC"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.keys.clause(tt.key, tt.dir), "%q %q", tt.key, tt.dir)
	}
}
