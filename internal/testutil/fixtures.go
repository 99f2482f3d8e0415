package testutil

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopflux/storefront/internal/domain/catalog"
	"github.com/shopflux/storefront/internal/domain/identity"
	"github.com/shopflux/storefront/internal/domain/order"
	"github.com/shopflux/storefront/internal/domain/review"
	"github.com/shopflux/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// CreateProfile inserts a customer profile. Cart, wishlist, review and order
// rows reference profiles, so seed one before them.
func (tdb *TestDB) CreateProfile(email string) *identity.Profile {
	tdb.t.Helper()

	p := &identity.Profile{
		BaseEntity: shared.NewBaseEntity(),
		Email:      email,
		Role:       identity.RoleCustomer,
	}
	require.NoError(tdb.t, tdb.DB.Create(p).Error, "Failed to create profile")
	return p
}

// ProductOption adjusts a product before it is inserted
type ProductOption func(*catalog.Product)

// WithSalePrice sets the promotional price
func WithSalePrice(price string) ProductOption {
	return func(p *catalog.Product) {
		sale := decimal.RequireFromString(price)
		p.SalePrice = &sale
	}
}

// WithStock sets the quantity on hand
func WithStock(n int) ProductOption {
	return func(p *catalog.Product) { p.StockQuantity = n }
}

// WithCategory sets the product category
func WithCategory(c catalog.Category) ProductOption {
	return func(p *catalog.Product) { p.Category = c }
}

// Featured marks the product as featured
func Featured() ProductOption {
	return func(p *catalog.Product) { p.IsFeatured = true }
}

// Inactive hides the product from the storefront
func Inactive() ProductOption {
	return func(p *catalog.Product) { p.IsActive = false }
}

// WithBrand sets the brand
func WithBrand(brand string) ProductOption {
	return func(p *catalog.Product) { p.Brand = &brand }
}

// CreatedAt overrides the creation time, for ordering tests
func CreatedAt(at time.Time) ProductOption {
	return func(p *catalog.Product) {
		p.CreatedAt = at
		p.UpdatedAt = at
	}
}

// CreateProduct inserts an active electronics product with ten units in stock
func (tdb *TestDB) CreateProduct(name, price string, opts ...ProductOption) *catalog.Product {
	tdb.t.Helper()

	p, err := catalog.NewProduct(name, catalog.CategoryElectronics, decimal.RequireFromString(price))
	require.NoError(tdb.t, err)
	p.StockQuantity = 10
	for _, opt := range opts {
		opt(p)
	}

	require.NoError(tdb.t, tdb.DB.Create(p).Error, "Failed to create product")

	// false is a zero value, so gorm leaves is_active to the column default
	if !p.IsActive {
		require.NoError(tdb.t, tdb.DB.Model(p).Update("is_active", false).Error)
	}
	return p
}

// CreateReview inserts a review of productID by userID
func (tdb *TestDB) CreateReview(productID, userID uuid.UUID, rating int, createdAt time.Time) *review.Review {
	tdb.t.Helper()

	r, err := review.NewReview(productID, userID, rating)
	require.NoError(tdb.t, err)
	r.CreatedAt = createdAt
	r.UpdatedAt = createdAt
	require.NoError(tdb.t, tdb.DB.Create(r).Error, "Failed to create review")
	return r
}

// CreateOrder inserts a delivered order with one line per product, each of
// quantity one at the product's base price
func (tdb *TestDB) CreateOrder(userID uuid.UUID, createdAt time.Time, products ...*catalog.Product) *order.Order {
	tdb.t.Helper()

	o := &order.Order{
		BaseEntity:  shared.NewBaseEntity(),
		UserID:      userID,
		OrderNumber: fmt.Sprintf("ORD-%s", uuid.NewString()[:8]),
		Status:      order.StatusDelivered,
		Currency:    "USD",
	}
	o.CreatedAt = createdAt
	o.UpdatedAt = createdAt

	subtotal := decimal.Zero
	for _, p := range products {
		snapshot, err := json.Marshal(map[string]any{"name": p.Name})
		require.NoError(tdb.t, err)
		o.Items = append(o.Items, order.OrderItem{
			ID:              uuid.New(),
			OrderID:         o.ID,
			ProductID:       p.ID,
			Quantity:        1,
			UnitPrice:       p.Price,
			TotalPrice:      p.Price,
			ProductSnapshot: snapshot,
			CreatedAt:       createdAt,
		})
		subtotal = subtotal.Add(p.Price)
	}
	o.Subtotal = subtotal
	o.TotalAmount = subtotal

	require.NoError(tdb.t, tdb.DB.Create(o).Error, "Failed to create order")
	return o
}
