package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopflux/storefront/internal/domain/order"
	"github.com/shopflux/storefront/internal/domain/shared"
	"gorm.io/gorm"
)

// GormOrderRepository implements order.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByUser returns one page of the user's orders without items
func (r *GormOrderRepository) FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]order.Order, error) {
	var orders []order.Order
	if err := r.userOrders(ctx, userID, filter).
		Scopes(orderSort.scope(filter.OrderBy, filter.OrderDir), paged(filter)).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// CountByUser counts the user's orders matching the filter
func (r *GormOrderRepository) CountByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.userOrders(ctx, userID, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindByIDForUser returns one of the user's orders with its items
func (r *GormOrderRepository) FindByIDForUser(ctx context.Context, userID, orderID uuid.UUID) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *GormOrderRepository) userOrders(ctx context.Context, userID uuid.UUID, filter shared.Filter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&order.Order{}).Where("user_id = ?", userID)
	if status, ok := filter.Filters[order.FilterStatus]; ok && status != nil {
		query = query.Where("status = ?", status)
	}
	return query
}

var _ order.OrderRepository = (*GormOrderRepository)(nil)
