package shopping

import (
	"time"

	"github.com/google/uuid"
	catalogapp "github.com/shopflux/storefront/internal/application/catalog"
	"github.com/shopspring/decimal"
)

// AddToCartRequest adds a product to the cart; quantity defaults to 1
type AddToCartRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"omitempty,min=1,max=999"`
}

// UpdateCartItemRequest replaces the quantity of a line; 0 removes it
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required,min=0,max=999"`
}

// AddToWishlistRequest saves a product to the wishlist
type AddToWishlistRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
}

// CartLineResponse is one priced cart line
type CartLineResponse struct {
	ProductID     uuid.UUID               `json:"product_id"`
	Quantity      int                     `json:"quantity"`
	Available     bool                    `json:"available"`
	UnitPrice     decimal.Decimal         `json:"unit_price"`
	LineTotal     decimal.Decimal         `json:"line_total"`
	LineTotalText string                  `json:"line_total_text"`
	Product       *catalogapp.ProductCard `json:"product"`
	AddedAt       time.Time               `json:"added_at"`
}

// CartResponse is the priced cart of a user
type CartResponse struct {
	Items        []CartLineResponse `json:"items"`
	ItemCount    int                `json:"item_count"`
	Subtotal     decimal.Decimal    `json:"subtotal"`
	SubtotalText string             `json:"subtotal_text"`
	Currency     string             `json:"currency"`
	// Replayed is set when the request repeated an idempotency key
	Replayed bool `json:"replayed,omitempty"`
}

// WishlistItemResponse is one saved product
type WishlistItemResponse struct {
	ProductID uuid.UUID               `json:"product_id"`
	AddedAt   time.Time               `json:"added_at"`
	Product   *catalogapp.ProductCard `json:"product"`
}

// WishlistResponse lists the saved products of a user, newest first
type WishlistResponse struct {
	Items []WishlistItemResponse `json:"items"`
	Count int                    `json:"count"`
}
