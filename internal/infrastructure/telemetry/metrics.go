package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

// MetricsConfig enables metric export. A zero Interval pushes every minute.
type MetricsConfig struct {
	Collector
	Enabled  bool
	Interval time.Duration
}

// MeterProvider owns the periodic OTLP metric pipeline.
type MeterProvider struct {
	sdk *sdkmetric.MeterProvider
	log *zap.Logger
}

// NewMeterProvider installs the pipeline as the global meter provider.
func NewMeterProvider(ctx context.Context, cfg MetricsConfig, log *zap.Logger) (*MeterProvider, error) {
	mp := &MeterProvider{log: log}
	if !cfg.Enabled {
		log.Info("Metrics disabled")
		return mp, nil
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Minute
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("metric exporter: %w", err)
	}
	res, err := cfg.resource()
	if err != nil {
		return nil, err
	}

	mp.sdk = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	)
	otel.SetMeterProvider(mp.sdk)

	log.Info("Metrics enabled", zap.String("collector", cfg.Endpoint), zap.Duration("interval", interval))
	return mp, nil
}

// Meter returns a named meter, from the global provider while metrics are off.
func (mp *MeterProvider) Meter(name string) metric.Meter {
	if mp.sdk == nil {
		return otel.GetMeterProvider().Meter(name)
	}
	return mp.sdk.Meter(name)
}

func (mp *MeterProvider) IsEnabled() bool {
	return mp.sdk != nil
}

// Shutdown pushes the last collection and stops the reader.
func (mp *MeterProvider) Shutdown(ctx context.Context) error {
	if mp.sdk == nil {
		return nil
	}
	return shutdownSignal(ctx, mp.log, "metrics", mp.sdk.Shutdown)
}
