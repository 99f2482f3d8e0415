package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogsConfig enables shipping application log records to the collector.
type LogsConfig struct {
	Collector
	Enabled bool
}

// LoggerProvider owns the batching OTLP log pipeline.
type LoggerProvider struct {
	sdk         *sdklog.LoggerProvider
	serviceName string
	log         *zap.Logger
}

// NewLoggerProvider installs the pipeline as the global logger provider.
// log is the bootstrap logger; records reach the collector only through Core.
func NewLoggerProvider(ctx context.Context, cfg LogsConfig, log *zap.Logger) (*LoggerProvider, error) {
	lp := &LoggerProvider{serviceName: cfg.ServiceName, log: log}
	if !cfg.Enabled {
		log.Info("Log export disabled")
		return lp, nil
	}

	opts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlploggrpc.WithInsecure())
	}
	exporter, err := otlploggrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("log exporter: %w", err)
	}
	res, err := cfg.resource()
	if err != nil {
		return nil, err
	}

	lp.sdk = sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
	)
	global.SetLoggerProvider(lp.sdk)

	log.Info("Log export enabled", zap.String("collector", cfg.Endpoint))
	return lp, nil
}

func (lp *LoggerProvider) IsEnabled() bool {
	return lp.sdk != nil
}

// Core is a zap core that forwards entries at or above floor to the
// collector. Tee it with the console core through logger.New. It is a no-op
// while export is disabled.
func (lp *LoggerProvider) Core(floor zapcore.Level) zapcore.Core {
	if lp == nil || lp.sdk == nil {
		return zapcore.NewNopCore()
	}
	return &minLevelCore{
		Core:  otelzap.NewCore(lp.serviceName, otelzap.WithLoggerProvider(lp.sdk)),
		floor: floor,
	}
}

// Shutdown exports buffered records.
func (lp *LoggerProvider) Shutdown(ctx context.Context) error {
	if lp.sdk == nil {
		return nil
	}
	return shutdownSignal(ctx, lp.log, "logs", lp.sdk.Shutdown)
}

// minLevelCore raises the floor of the bridge core, which otherwise
// accepts every level the provider does.
type minLevelCore struct {
	zapcore.Core
	floor zapcore.Level
}

func (c *minLevelCore) Enabled(l zapcore.Level) bool {
	return l >= c.floor && c.Core.Enabled(l)
}

func (c *minLevelCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if e.Level < c.floor {
		return ce
	}
	return c.Core.Check(e, ce)
}

func (c *minLevelCore) With(fields []zapcore.Field) zapcore.Core {
	return &minLevelCore{Core: c.Core.With(fields), floor: c.floor}
}
