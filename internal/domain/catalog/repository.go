package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopflux/storefront/internal/domain/shared"
)

// Filter keys understood by ProductRepository.FindActive and CountActive
const (
	FilterCategory = "category"
	FilterBrand    = "brand"
	FilterMinPrice = "min_price"
	FilterMaxPrice = "max_price"
	FilterOnSale   = "on_sale"
	FilterInStock  = "in_stock"
	FilterFeatured = "featured"
)

// ProductRepository defines the read access to catalog products
type ProductRepository interface {
	// FindByID finds a product by ID regardless of its active flag
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindActiveByID finds an active product by ID
	FindActiveByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDs finds all products with the given IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)

	// FindFeatured returns featured, active products, newest first, at most limit of them
	FindFeatured(ctx context.Context, limit int) ([]Product, error)

	// FindActive returns active products matching the filter
	FindActive(ctx context.Context, filter shared.Filter) ([]Product, error)

	// CountActive counts active products matching the filter
	CountActive(ctx context.Context, filter shared.Filter) (int64, error)
}
