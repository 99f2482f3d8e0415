package telemetry

import (
	"context"
	"fmt"
	"sync/atomic"

	otelpyroscope "github.com/grafana/otel-profiling-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// TracingConfig enables span export. SamplingRatio outside (0, 1) means
// never or always; values in between sample by trace id, honouring the parent.
type TracingConfig struct {
	Collector
	Enabled       bool
	SamplingRatio float64
}

// TracerProvider owns the span pipeline installed as the global provider.
type TracerProvider struct {
	sdk          *sdktrace.TracerProvider
	log          *zap.Logger
	spanProfiles atomic.Bool
}

// NewTracerProvider installs a batching OTLP span pipeline and the W3C
// propagators. Disabled tracing leaves the global no-op provider alone.
func NewTracerProvider(ctx context.Context, cfg TracingConfig, log *zap.Logger) (*TracerProvider, error) {
	tp := &TracerProvider{log: log}
	if !cfg.Enabled {
		log.Info("Tracing disabled")
		return tp, nil
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("span exporter: %w", err)
	}
	res, err := cfg.resource()
	if err != nil {
		return nil, err
	}

	tp.sdk = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(samplerFor(cfg.SamplingRatio)),
	)
	otel.SetTracerProvider(tp.sdk)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	log.Info("Tracing enabled",
		zap.String("collector", cfg.Endpoint),
		zap.Float64("sampling_ratio", cfg.SamplingRatio),
	)
	return tp, nil
}

func samplerFor(ratio float64) sdktrace.Sampler {
	if ratio >= 1 {
		return sdktrace.AlwaysSample()
	}
	if ratio <= 0 {
		return sdktrace.NeverSample()
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}

// EnableSpanProfiles tags Pyroscope CPU samples with the active span id.
// It needs a running profiler and an exporting provider, and reports
// whether the global provider was swapped.
func (tp *TracerProvider) EnableSpanProfiles() bool {
	if tp.sdk == nil || !tp.spanProfiles.CompareAndSwap(false, true) {
		return false
	}
	otel.SetTracerProvider(otelpyroscope.NewTracerProvider(tp.sdk))
	tp.log.Info("Span profiles enabled")
	return true
}

// Provider returns the provider instrumentation should use; the global one
// while tracing is off.
func (tp *TracerProvider) Provider() trace.TracerProvider {
	if tp.sdk == nil {
		return otel.GetTracerProvider()
	}
	return tp.sdk
}

func (tp *TracerProvider) IsEnabled() bool {
	return tp.sdk != nil
}

// Shutdown flushes buffered spans.
func (tp *TracerProvider) Shutdown(ctx context.Context) error {
	if tp.sdk == nil {
		return nil
	}
	return shutdownSignal(ctx, tp.log, "traces", tp.sdk.Shutdown)
}
