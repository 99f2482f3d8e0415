package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Instrument names and documents one metric. Buckets apply to histograms only.
type Instrument struct {
	Name        string
	Description string
	Unit        string
	Buckets     []float64
}

// Counter is a monotonic int64 sum.
type Counter struct {
	inner metric.Int64Counter
}

func NewCounter(meter metric.Meter, spec Instrument) (*Counter, error) {
	c, err := meter.Int64Counter(spec.Name, metric.WithDescription(spec.Description), metric.WithUnit(spec.Unit))
	if err != nil {
		return nil, fmt.Errorf("counter %s: %w", spec.Name, err)
	}
	return &Counter{inner: c}, nil
}

func (c *Counter) Add(ctx context.Context, n int64, attrs ...attribute.KeyValue) {
	c.inner.Add(ctx, n, metric.WithAttributes(attrs...))
}

func (c *Counter) Inc(ctx context.Context, attrs ...attribute.KeyValue) {
	c.Add(ctx, 1, attrs...)
}

// Histogram is a float64 distribution; durations are recorded in seconds.
type Histogram struct {
	inner metric.Float64Histogram
}

func NewHistogram(meter metric.Meter, spec Instrument) (*Histogram, error) {
	opts := []metric.Float64HistogramOption{metric.WithDescription(spec.Description), metric.WithUnit(spec.Unit)}
	if len(spec.Buckets) > 0 {
		opts = append(opts, metric.WithExplicitBucketBoundaries(spec.Buckets...))
	}
	h, err := meter.Float64Histogram(spec.Name, opts...)
	if err != nil {
		return nil, fmt.Errorf("histogram %s: %w", spec.Name, err)
	}
	return &Histogram{inner: h}, nil
}

func (h *Histogram) Record(ctx context.Context, v float64, attrs ...attribute.KeyValue) {
	h.inner.Record(ctx, v, metric.WithAttributes(attrs...))
}

func (h *Histogram) RecordDuration(ctx context.Context, d time.Duration, attrs ...attribute.KeyValue) {
	h.Record(ctx, d.Seconds(), attrs...)
}

// Attribute keys shared by the storefront instruments.
var (
	AttrHTTPMethod     = attribute.Key("http.method")
	AttrHTTPStatusCode = attribute.Key("http.status_code")
	AttrHTTPRoute      = attribute.Key("http.route")

	AttrDBOperation = attribute.Key("db.operation")
	AttrDBTable     = attribute.Key("db.table")
	AttrDBState     = attribute.Key("db.pool.state")

	AttrProductCategory = attribute.Key("product.category")
	AttrDiscounted      = attribute.Key("discounted")
	AttrOutcome         = attribute.Key("outcome")
)

// Latency buckets, in seconds.
var (
	HTTPDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
	DBDurationBuckets   = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}
)
