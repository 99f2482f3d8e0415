package telemetry

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap/zaptest"
)

func TestNewTracerProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	global := otel.GetTracerProvider()

	tp, err := NewTracerProvider(ctx, TracingConfig{
		Collector:     Collector{Endpoint: "localhost:14317", ServiceName: "storefront-test"},
		SamplingRatio: 1,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, tp.IsEnabled())
	assert.Equal(t, global, tp.Provider())
	assert.False(t, tp.EnableSpanProfiles())
	assert.Equal(t, global, otel.GetTracerProvider())
	assert.NoError(t, tp.Shutdown(ctx))
}

func TestSamplerFor(t *testing.T) {
	for ratio, want := range map[float64]string{
		1:    "AlwaysOnSampler",
		3:    "AlwaysOnSampler",
		0:    "AlwaysOffSampler",
		-1:   "AlwaysOffSampler",
		0.25: "ParentBased",
	} {
		assert.True(t, strings.HasPrefix(samplerFor(ratio).Description(), want), "ratio %v", ratio)
	}
}

func TestCollectorResource(t *testing.T) {
	attrs := map[string]string{}
	res, err := Collector{ServiceName: "shopflux-storefront"}.resource()
	require.NoError(t, err)
	for _, kv := range res.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}

	assert.Equal(t, "shopflux-storefront", attrs["service.name"])
	assert.Equal(t, "dev", attrs["service.version"])

	res, err = Collector{ServiceName: "shopflux-storefront", ServiceVersion: "1.4.0"}.resource()
	require.NoError(t, err)
	version, ok := res.Set().Value("service.version")
	require.True(t, ok)
	assert.Equal(t, "1.4.0", version.AsString())
}
