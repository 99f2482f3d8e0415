package shopping

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopflux/storefront/internal/domain/catalog"
	"github.com/shopflux/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CartItem is one product line of a user's cart
type CartItem struct {
	shared.BaseEntity
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_user_product,priority:1"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_user_product,priority:2"`
	Quantity  int       `gorm:"not null;default:1"`
}

// TableName returns the table name for GORM
func (CartItem) TableName() string {
	return "cart_items"
}

// NewCartItem creates a cart line for the given user and product
func NewCartItem(userID, productID uuid.UUID, quantity int) (*CartItem, error) {
	if userID == uuid.Nil {
		return nil, shared.ErrUnauthorized
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	return &CartItem{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		ProductID:  productID,
		Quantity:   quantity,
	}, nil
}

// SetQuantity replaces the quantity of the line
func (c *CartItem) SetQuantity(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	c.Quantity = quantity
	c.UpdatedAt = time.Now()
	return nil
}

// ErrInvalidQuantity is returned for non-positive cart quantities
var ErrInvalidQuantity = shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")

// CartLine is a cart item priced against the current product record
type CartLine struct {
	Item         CartItem
	Product      *catalog.Product
	Presentation catalog.Presentation
	LineTotal    decimal.Decimal
	// Available is false when the product is gone, inactive or out of stock.
	Available bool
}

// Cart is the priced view of all items of one user
type Cart struct {
	UserID uuid.UUID
	Lines  []CartLine
}

// NewCart prices items with the given products, keyed by product ID.
// Lines are always priced at the product's effective price.
func NewCart(userID uuid.UUID, items []CartItem, products map[uuid.UUID]*catalog.Product) *Cart {
	cart := &Cart{UserID: userID, Lines: make([]CartLine, 0, len(items))}
	for _, item := range items {
		line := CartLine{Item: item, LineTotal: decimal.Zero}
		if p, ok := products[item.ProductID]; ok && p != nil {
			line.Product = p
			line.Presentation = catalog.Derive(p)
			line.Available = p.IsActive && line.Presentation.Availability.IsInStock()
			line.LineTotal = line.Presentation.EffectivePrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		}
		cart.Lines = append(cart.Lines, line)
	}
	return cart
}

// Subtotal sums the line totals of available lines
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Lines {
		if line.Available {
			total = total.Add(line.LineTotal)
		}
	}
	return total
}

// ItemCount returns the number of units across all lines
func (c *Cart) ItemCount() int {
	n := 0
	for _, line := range c.Lines {
		n += line.Item.Quantity
	}
	return n
}

// ProductIDs returns the product IDs referenced by items
func ProductIDs(items []CartItem) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	return ids
}
