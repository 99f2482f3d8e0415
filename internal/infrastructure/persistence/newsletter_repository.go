package persistence

import (
	"context"
	"errors"

	"github.com/shopflux/storefront/internal/domain/newsletter"
	"github.com/shopflux/storefront/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSubscriptionRepository implements newsletter.SubscriptionRepository using GORM
type GormSubscriptionRepository struct {
	db *gorm.DB
}

// NewGormSubscriptionRepository creates a new GormSubscriptionRepository
func NewGormSubscriptionRepository(db *gorm.DB) *GormSubscriptionRepository {
	return &GormSubscriptionRepository{db: db}
}

// Subscribe inserts the address, or reactivates it when it had unsubscribed.
// An address that is already active is left untouched and reported as false.
func (r *GormSubscriptionRepository) Subscribe(ctx context.Context, sub *newsletter.Subscription) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "email"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"is_active":     true,
				"subscribed_at": sub.SubscribedAt,
			}),
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Expr{SQL: "newsletter_subscriptions.is_active = ?", Vars: []interface{}{false}},
			}},
		}).
		Create(sub)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// FindByEmail finds a subscription by normalized address
func (r *GormSubscriptionRepository) FindByEmail(ctx context.Context, email string) (*newsletter.Subscription, error) {
	var sub newsletter.Subscription
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &sub, nil
}

var _ newsletter.SubscriptionRepository = (*GormSubscriptionRepository)(nil)
