package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopflux/storefront/internal/domain/shopping"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormWishlistRepository implements shopping.WishlistRepository using GORM
type GormWishlistRepository struct {
	db *gorm.DB
}

// NewGormWishlistRepository creates a new GormWishlistRepository
func NewGormWishlistRepository(db *gorm.DB) *GormWishlistRepository {
	return &GormWishlistRepository{db: db}
}

// FindByUser returns the user's saved products, most recent first
func (r *GormWishlistRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]shopping.WishlistItem, error) {
	var items []shopping.WishlistItem
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Add saves the product and reports false when it was already on the wishlist
func (r *GormWishlistRepository) Add(ctx context.Context, item *shopping.WishlistItem) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoNothing: true,
		}).
		Create(item)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Remove deletes the product from the wishlist; removing an absent product is a no-op
func (r *GormWishlistRepository) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&shopping.WishlistItem{}).Error
}

var _ shopping.WishlistRepository = (*GormWishlistRepository)(nil)
