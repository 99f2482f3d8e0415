package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopflux/storefront/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

var (
	attrAuthenticated = attribute.Key("authenticated")
	attrArea          = attribute.Key("storefront.area")

	sizeBuckets = []float64{100, 500, 1000, 5000, 10000, 50000, 100000, 500000, 1000000, 5000000}
)

type httpInstruments struct {
	requests     *telemetry.Counter
	duration     *telemetry.Histogram
	requestSize  *telemetry.Histogram
	responseSize *telemetry.Histogram
	inFlight     metric.Int64UpDownCounter
}

func newHTTPInstruments(meter metric.Meter) (*httpInstruments, error) {
	var (
		ins httpInstruments
		err error
	)
	if ins.requests, err = telemetry.NewCounter(meter, telemetry.Instrument{
		Name:        "http_server_request_total",
		Description: "Storefront API requests",
		Unit:        "{request}",
	}); err != nil {
		return nil, err
	}
	if ins.duration, err = telemetry.NewHistogram(meter, telemetry.Instrument{
		Name:        "http_server_request_duration_seconds",
		Description: "Storefront API latency",
		Unit:        "s",
		Buckets:     telemetry.HTTPDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if ins.requestSize, err = telemetry.NewHistogram(meter, telemetry.Instrument{
		Name:        "http_server_request_size_bytes",
		Description: "Declared request body size",
		Unit:        "By",
		Buckets:     sizeBuckets,
	}); err != nil {
		return nil, err
	}
	if ins.responseSize, err = telemetry.NewHistogram(meter, telemetry.Instrument{
		Name:        "http_server_response_size_bytes",
		Description: "Response body size",
		Unit:        "By",
		Buckets:     sizeBuckets,
	}); err != nil {
		return nil, err
	}
	if ins.inFlight, err = meter.Int64UpDownCounter("http_server_active_requests",
		metric.WithDescription("Requests being served"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, err
	}
	return &ins, nil
}

// HTTPMetrics records request counts, latency and body sizes per route.
// A nil meter, or one that cannot create the instruments, disables it.
func HTTPMetrics(meter metric.Meter, log *zap.Logger) gin.HandlerFunc {
	if meter == nil {
		return passThrough
	}
	ins, err := newHTTPInstruments(meter)
	if err != nil {
		if log != nil {
			log.Warn("HTTP metrics disabled", zap.Error(err))
		}
		return passThrough
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()

		ins.inFlight.Add(ctx, 1)
		c.Next()
		ins.inFlight.Add(ctx, -1)

		ins.record(ctx, c, time.Since(start))
	}
}

func (ins *httpInstruments) record(ctx context.Context, c *gin.Context, elapsed time.Duration) {
	route := routePattern(c)
	series := []attribute.KeyValue{
		telemetry.AttrHTTPMethod.String(c.Request.Method),
		telemetry.AttrHTTPRoute.String(route),
	}

	ins.requests.Inc(ctx, append(series,
		telemetry.AttrHTTPStatusCode.Int(c.Writer.Status()),
		attrAuthenticated.Bool(UserIDFrom(c) != ""),
		attrArea.String(apiArea(route)),
	)...)
	ins.duration.RecordDuration(ctx, elapsed, series...)

	if n := c.Request.ContentLength; n > 0 {
		ins.requestSize.Record(ctx, float64(n), series...)
	}
	if n := c.Writer.Size(); n > 0 {
		ins.responseSize.Record(ctx, float64(n), series...)
	}
}

func passThrough(c *gin.Context) {
	c.Next()
}
