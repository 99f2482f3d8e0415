package shopping

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopflux/storefront/internal/domain/catalog"
	"github.com/shopflux/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProduct(price, sale string, stock int) *catalog.Product {
	p := &catalog.Product{
		BaseEntity:    shared.NewBaseEntity(),
		Name:          "Product",
		Price:         decimal.RequireFromString(price),
		Category:      catalog.CategoryBooks,
		StockQuantity: stock,
		IsActive:      true,
	}
	if sale != "" {
		s := decimal.RequireFromString(sale)
		p.SalePrice = &s
	}
	return p
}

func TestNewCartItem(t *testing.T) {
	userID, productID := uuid.New(), uuid.New()

	item, err := NewCartItem(userID, productID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, item.Quantity)
	assert.Equal(t, userID, item.UserID)

	_, err = NewCartItem(uuid.Nil, productID, 1)
	assert.ErrorIs(t, err, shared.ErrUnauthorized)

	_, err = NewCartItem(userID, uuid.Nil, 1)
	assert.Error(t, err)

	_, err = NewCartItem(userID, productID, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestCartItem_Quantity(t *testing.T) {
	item, err := NewCartItem(uuid.New(), uuid.New(), 2)
	require.NoError(t, err)

	require.NoError(t, item.SetQuantity(10))
	assert.Equal(t, 10, item.Quantity)
	assert.Error(t, item.SetQuantity(-1))
}

func TestNewCart_PricesAtEffectivePrice(t *testing.T) {
	userID := uuid.New()
	discounted := testProduct("100.00", "75.00", 5)
	regular := testProduct("19.99", "", 5)
	soldOut := testProduct("10.00", "", 0)
	missingID := uuid.New()

	items := []CartItem{
		{UserID: userID, ProductID: discounted.ID, Quantity: 2},
		{UserID: userID, ProductID: regular.ID, Quantity: 1},
		{UserID: userID, ProductID: soldOut.ID, Quantity: 1},
		{UserID: userID, ProductID: missingID, Quantity: 4},
	}
	products := map[uuid.UUID]*catalog.Product{
		discounted.ID: discounted,
		regular.ID:    regular,
		soldOut.ID:    soldOut,
	}

	cart := NewCart(userID, items, products)

	require.Len(t, cart.Lines, 4)
	assert.True(t, decimal.RequireFromString("150.00").Equal(cart.Lines[0].LineTotal))
	assert.True(t, cart.Lines[0].Presentation.HasDiscount)
	assert.True(t, cart.Lines[1].Available)
	assert.False(t, cart.Lines[2].Available)
	assert.False(t, cart.Lines[3].Available)
	assert.Nil(t, cart.Lines[3].Product)

	assert.True(t, decimal.RequireFromString("169.99").Equal(cart.Subtotal()), cart.Subtotal().String())
	assert.Equal(t, 8, cart.ItemCount())
	assert.Equal(t, []uuid.UUID{discounted.ID, regular.ID, soldOut.ID, missingID}, ProductIDs(items))
}

func TestNewCart_InactiveProductIsUnavailable(t *testing.T) {
	p := testProduct("10.00", "", 3)
	p.IsActive = false

	cart := NewCart(uuid.New(), []CartItem{{ProductID: p.ID, Quantity: 1}}, map[uuid.UUID]*catalog.Product{p.ID: p})

	assert.False(t, cart.Lines[0].Available)
	assert.True(t, cart.Subtotal().IsZero())
}

func TestNewWishlistItem(t *testing.T) {
	item, err := NewWishlistItem(uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, item.ID)
	assert.False(t, item.CreatedAt.IsZero())

	_, err = NewWishlistItem(uuid.Nil, uuid.New())
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}
