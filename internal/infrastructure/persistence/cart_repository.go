package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopflux/storefront/internal/domain/shared"
	"github.com/shopflux/storefront/internal/domain/shopping"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCartRepository implements shopping.CartRepository using GORM
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new GormCartRepository
func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// FindByUser returns the user's cart lines in the order they were added
func (r *GormCartRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]shopping.CartItem, error) {
	var items []shopping.CartItem
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindItem returns the user's line for a product
func (r *GormCartRepository) FindItem(ctx context.Context, userID, productID uuid.UUID) (*shopping.CartItem, error) {
	var item shopping.CartItem
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// Save inserts the line or, when the user already has one for the product,
// overwrites its quantity.
func (r *GormCartRepository) Save(ctx context.Context, item *shopping.CartItem) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity", "updated_at"}),
		}).
		Create(item).Error
}

// AddQuantity inserts the line or adds item.Quantity to the existing one in a
// single statement, provided the resulting quantity stays within limit. It
// reports false, leaving the row untouched, when the limit would be
// exceeded. On success item carries the stored id and quantity.
func (r *GormCartRepository) AddQuantity(ctx context.Context, item *shopping.CartItem, limit int) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(
			clause.OnConflict{
				Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
				DoUpdates: clause.Assignments(map[string]any{
					"quantity":   gorm.Expr("cart_items.quantity + EXCLUDED.quantity"),
					"updated_at": clause.Column{Table: "excluded", Name: "updated_at"},
				}),
				Where: clause.Where{Exprs: []clause.Expression{
					gorm.Expr("cart_items.quantity + EXCLUDED.quantity <= ?", limit),
				}},
			},
			clause.Returning{Columns: []clause.Column{{Name: "id"}, {Name: "quantity"}}},
		).
		Create(item)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeleteItem removes the user's line for a product
func (r *GormCartRepository) DeleteItem(ctx context.Context, userID, productID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&shopping.CartItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteByUser empties the user's cart
func (r *GormCartRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&shopping.CartItem{}).Error
}

var _ shopping.CartRepository = (*GormCartRepository)(nil)
