package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopflux/storefront/internal/domain/shared"
)

// FilterStatus restricts order listings to one Status
const FilterStatus = "status"

// OrderRepository reads a customer's orders
type OrderRepository interface {
	// FindByUser returns the user's orders without items, newest first
	FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]Order, error)
	CountByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) (int64, error)
	// FindByIDForUser returns one order with its items, or shared.ErrNotFound
	// when it does not exist or belongs to someone else
	FindByIDForUser(ctx context.Context, userID, orderID uuid.UUID) (*Order, error)
}
