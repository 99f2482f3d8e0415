// Package telemetry wires OpenTelemetry traces, metrics and logs, the gorm
// tracing plugin and the Pyroscope profiler for the storefront service.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Collector addresses the OTLP collector shared by traces, metrics and logs.
type Collector struct {
	Endpoint       string
	Insecure       bool
	ServiceName    string
	ServiceVersion string
}

// resource describes this service on every exported signal.
func (c Collector) resource() (*resource.Resource, error) {
	version := c.ServiceVersion
	if version == "" {
		version = "dev"
	}
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(c.ServiceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry resource: %w", err)
	}
	return res, nil
}

// shutdownSignal bounds a provider shutdown by shutdownTimeout and logs the outcome.
// A nil stop means the signal was never started.
func shutdownSignal(ctx context.Context, log *zap.Logger, signal string, stop func(context.Context) error) error {
	if stop == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := stop(ctx); err != nil {
		log.Error("Telemetry shutdown failed", zap.String("signal", signal), zap.Error(err))
		return fmt.Errorf("shutdown %s: %w", signal, err)
	}
	log.Info("Telemetry flushed", zap.String("signal", signal))
	return nil
}
