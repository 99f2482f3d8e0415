package review

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopflux/storefront/internal/domain/shared"
)

// ReviewRepository reads product reviews
type ReviewRepository interface {
	// FindByProduct returns reviews of a product, newest first
	FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]Review, error)
	CountByProduct(ctx context.Context, productID uuid.UUID) (int64, error)
	// RatingHistogram counts the product's reviews per star rating
	RatingHistogram(ctx context.Context, productID uuid.UUID) (Histogram, error)
}
