package newsletter

import (
	"context"
	"fmt"

	"github.com/shopflux/storefront/internal/domain/newsletter"
	"github.com/shopflux/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// SubscribeRequest signs an address up for the newsletter
type SubscribeRequest struct {
	Email string `json:"email" binding:"required,email,max=255"`
}

// SubscribeResponse tells whether the address was already on the list
type SubscribeResponse struct {
	Email             string `json:"email"`
	AlreadySubscribed bool   `json:"already_subscribed"`
}

// SubscriptionService handles newsletter sign-ups
type SubscriptionService struct {
	repo    newsletter.SubscriptionRepository
	logger  *zap.Logger
	metrics *telemetry.StorefrontMetrics
}

// NewSubscriptionService creates a new SubscriptionService
func NewSubscriptionService(repo newsletter.SubscriptionRepository, logger *zap.Logger) *SubscriptionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubscriptionService{repo: repo, logger: logger}
}

// SetMetrics sets the storefront metrics recorder. Nil disables recording.
func (s *SubscriptionService) SetMetrics(m *telemetry.StorefrontMetrics) {
	s.metrics = m
}

// Subscribe adds the address, or reactivates it after an unsubscribe.
// Signing up an active address again succeeds and reports AlreadySubscribed.
func (s *SubscriptionService) Subscribe(ctx context.Context, req SubscribeRequest) (*SubscribeResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "newsletter", "subscribe")
	defer span.End()

	sub, err := newsletter.NewSubscription(req.Email)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Subscribe(ctx, sub)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save subscription: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordNewsletterSignup(ctx, !created)
	}
	if created {
		s.logger.Info("Newsletter subscription added")
	}

	return &SubscribeResponse{Email: sub.Email, AlreadySubscribed: !created}, nil
}
