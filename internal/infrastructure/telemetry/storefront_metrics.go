package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Cart add outcomes reported by RecordCartAdd
const (
	CartAddAdded    = "added"
	CartAddReplayed = "replayed"
)

// StorefrontMetrics counts storefront activity: product presentations,
// misconfigured sale prices, cart additions and newsletter sign-ups.
type StorefrontMetrics struct {
	logger *zap.Logger

	presentationsTotal   *Counter
	ineffectiveSaleTotal *Counter
	cartAddTotal         *Counter
	newsletterTotal      *Counter
}

// StorefrontMetricsConfig holds configuration for storefront metrics
type StorefrontMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewStorefrontMetrics registers the storefront instruments on cfg.Meter
func NewStorefrontMetrics(cfg StorefrontMetricsConfig) (*StorefrontMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	sm := &StorefrontMetrics{logger: logger}

	var err error
	sm.presentationsTotal, err = NewCounter(cfg.Meter, Instrument{
		Name:        "storefront_product_presentations_total",
		Description: "Total number of derived product presentations served",
		Unit:        "{presentation}",
	})
	if err != nil {
		return nil, err
	}

	sm.ineffectiveSaleTotal, err = NewCounter(cfg.Meter, Instrument{
		Name:        "storefront_ineffective_sale_price_total",
		Description: "Products served with a sale price at or above the base price",
		Unit:        "{product}",
	})
	if err != nil {
		return nil, err
	}

	sm.cartAddTotal, err = NewCounter(cfg.Meter, Instrument{
		Name:        "storefront_cart_add_total",
		Description: "Total number of add-to-cart requests by outcome",
		Unit:        "{request}",
	})
	if err != nil {
		return nil, err
	}

	sm.newsletterTotal, err = NewCounter(cfg.Meter, Instrument{
		Name:        "storefront_newsletter_signup_total",
		Description: "Total number of newsletter sign-ups by outcome",
		Unit:        "{signup}",
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Storefront metrics initialized")
	return sm, nil
}

// RecordPresentation counts one derived presentation
func (m *StorefrontMetrics) RecordPresentation(ctx context.Context, category string, discounted bool) {
	m.presentationsTotal.Inc(ctx,
		AttrProductCategory.String(category),
		AttrDiscounted.Bool(discounted),
	)
}

// RecordIneffectiveSalePrice counts a product whose sale price does not discount
func (m *StorefrontMetrics) RecordIneffectiveSalePrice(ctx context.Context, category string) {
	m.ineffectiveSaleTotal.Inc(ctx, AttrProductCategory.String(category))
}

// RecordCartAdd counts an add-to-cart request that was applied or replayed
func (m *StorefrontMetrics) RecordCartAdd(ctx context.Context, replayed bool) {
	outcome := CartAddAdded
	if replayed {
		outcome = CartAddReplayed
	}
	m.cartAddTotal.Inc(ctx, AttrOutcome.String(outcome))
}

// RecordNewsletterSignup counts a sign-up, distinguishing repeated addresses
func (m *StorefrontMetrics) RecordNewsletterSignup(ctx context.Context, alreadySubscribed bool) {
	outcome := "subscribed"
	if alreadySubscribed {
		outcome = "already_subscribed"
	}
	m.newsletterTotal.Inc(ctx, AttrOutcome.String(outcome))
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewStorefrontMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
