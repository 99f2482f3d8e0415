package shopping

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopflux/storefront/internal/domain/shared"
)

// WishlistItem marks a product as saved by a user
type WishlistItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_items_user_product,priority:1"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_items_user_product,priority:2"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (WishlistItem) TableName() string {
	return "wishlist_items"
}

// NewWishlistItem creates a wishlist entry
func NewWishlistItem(userID, productID uuid.UUID) (*WishlistItem, error) {
	if userID == uuid.Nil {
		return nil, shared.ErrUnauthorized
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	return &WishlistItem{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: productID,
		CreatedAt: time.Now(),
	}, nil
}
