package newsletter

import "context"

// SubscriptionRepository persists newsletter subscriptions
type SubscriptionRepository interface {
	// Subscribe stores the subscription, reactivating an inactive one.
	// It reports false when the address was already actively subscribed.
	Subscribe(ctx context.Context, sub *Subscription) (bool, error)
	FindByEmail(ctx context.Context, email string) (*Subscription, error)
}
