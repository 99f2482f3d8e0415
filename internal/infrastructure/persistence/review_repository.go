package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopflux/storefront/internal/domain/review"
	"github.com/shopflux/storefront/internal/domain/shared"
	"gorm.io/gorm"
)

// GormReviewRepository implements review.ReviewRepository using GORM
type GormReviewRepository struct {
	db *gorm.DB
}

// NewGormReviewRepository creates a new GormReviewRepository
func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

// FindByProduct returns one page of a product's reviews
func (r *GormReviewRepository) FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]review.Review, error) {
	var reviews []review.Review
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Scopes(reviewSort.scope(filter.OrderBy, filter.OrderDir), paged(filter)).
		Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

// CountByProduct counts a product's reviews
func (r *GormReviewRepository) CountByProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&review.Review{}).
		Where("product_id = ?", productID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

type ratingCount struct {
	Rating int
	Count  int64
}

// RatingHistogram counts a product's reviews per star rating
func (r *GormReviewRepository) RatingHistogram(ctx context.Context, productID uuid.UUID) (review.Histogram, error) {
	var rows []ratingCount
	if err := r.db.WithContext(ctx).
		Model(&review.Review{}).
		Select("rating, COUNT(*) AS count").
		Where("product_id = ?", productID).
		Group("rating").
		Scan(&rows).Error; err != nil {
		return review.Histogram{}, err
	}

	var h review.Histogram
	for _, row := range rows {
		h.Add(row.Rating, row.Count)
	}
	return h, nil
}

var _ review.ReviewRepository = (*GormReviewRepository)(nil)
