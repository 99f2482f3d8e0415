package shopping

import (
	"context"

	"github.com/google/uuid"
)

// CartRepository persists cart items
type CartRepository interface {
	FindByUser(ctx context.Context, userID uuid.UUID) ([]CartItem, error)
	// FindItem returns shared.ErrNotFound when the user has no line for the product
	FindItem(ctx context.Context, userID, productID uuid.UUID) (*CartItem, error)
	Save(ctx context.Context, item *CartItem) error
	// AddQuantity atomically adds item.Quantity to the user's line for the
	// product, creating it if needed. It reports false when the line would
	// end up above limit.
	AddQuantity(ctx context.Context, item *CartItem, limit int) (bool, error)
	DeleteItem(ctx context.Context, userID, productID uuid.UUID) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

// WishlistRepository persists wishlist items
type WishlistRepository interface {
	FindByUser(ctx context.Context, userID uuid.UUID) ([]WishlistItem, error)
	// Add stores the item and reports false when the product was already saved
	Add(ctx context.Context, item *WishlistItem) (bool, error)
	Remove(ctx context.Context, userID, productID uuid.UUID) error
}
