package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type testProduct struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:100"`
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&testProduct{}))
	return db
}

func newTestDBMetrics(t *testing.T, slow time.Duration) (*DBMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := NewDBMetrics(provider.Meter("test"), slow, zap.NewNop())
	require.NoError(t, err)
	return m, reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return rm
}

func sumValue(rm metricdata.ResourceMetrics, name string, attr attribute.KeyValue) int64 {
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				if v, ok := dp.Attributes.Value(attr.Key); ok && v == attr.Value {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func gaugeValue(rm metricdata.ResourceMetrics, name string, attrs ...attribute.KeyValue) (int64, bool) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			gauge, ok := m.Data.(metricdata.Gauge[int64])
			if !ok {
				continue
			}
			for _, dp := range gauge.DataPoints {
				if dp.Attributes.Equals(attributeSet(attrs)) {
					return dp.Value, true
				}
			}
		}
	}
	return 0, false
}

func attributeSet(attrs []attribute.KeyValue) *attribute.Set {
	set := attribute.NewSet(attrs...)
	return &set
}

func TestNewDBMetrics_NilMeter(t *testing.T) {
	m, err := NewDBMetrics(nil, 0, nil)
	assert.Nil(t, m)
	assert.EqualError(t, err, "NewDBMetrics: meter cannot be nil")
}

func TestDBMetrics_RecordQuery(t *testing.T) {
	m, reader := newTestDBMetrics(t, 100*time.Millisecond)
	ctx := context.Background()

	m.RecordQuery(ctx, "select", "products", 10*time.Millisecond)
	m.RecordQuery(ctx, "SELECT", "products", 250*time.Millisecond)
	m.RecordQuery(ctx, "", "", 300*time.Millisecond)

	rm := collectMetrics(t, reader)
	assert.Equal(t, int64(2), sumValue(rm, "db_query_total", AttrDBOperation.String("SELECT")))
	assert.Equal(t, int64(1), sumValue(rm, "db_query_total", AttrDBOperation.String("UNKNOWN")))
	assert.Equal(t, int64(1), sumValue(rm, "db_slow_query_total", AttrDBTable.String("products")))
	assert.Equal(t, int64(1), sumValue(rm, "db_slow_query_total", AttrDBTable.String("unknown")))
}

func TestDBMetrics_ObservePool(t *testing.T) {
	m, reader := newTestDBMetrics(t, 0)

	pool, _, err := sqlmock.New()
	require.NoError(t, err)
	defer pool.Close()
	pool.SetMaxOpenConns(12)

	require.NoError(t, m.ObservePool(pool))

	rm := collectMetrics(t, reader)
	limit, ok := gaugeValue(rm, "db_pool_connections_max")
	require.True(t, ok)
	assert.Equal(t, int64(12), limit)
	_, ok = gaugeValue(rm, "db_pool_connections", AttrDBState.String("idle"))
	assert.True(t, ok)

	m.Stop()
	m.Stop()
	_, ok = gaugeValue(collectMetrics(t, reader), "db_pool_connections_max")
	assert.False(t, ok)
}

func TestDBMetrics_ObserveNilPool(t *testing.T) {
	m, _ := newTestDBMetrics(t, 0)
	assert.Error(t, m.ObservePool(nil))
}

func TestDBMetrics_DefaultSlowThreshold(t *testing.T) {
	m, _ := newTestDBMetrics(t, 0)
	assert.Equal(t, DefaultSlowQuery, m.slow)
}

func TestDBMetricsPlugin_RecordsQueries(t *testing.T) {
	m, reader := newTestDBMetrics(t, 0)
	db := setupTestDB(t)

	plugin := NewDBMetricsPlugin(m)
	assert.Equal(t, "db_metrics", plugin.Name())
	require.NoError(t, db.Use(plugin))

	require.NoError(t, db.Create(&testProduct{Name: "Mug"}).Error)
	var rows []testProduct
	require.NoError(t, db.Find(&rows).Error)
	require.NoError(t, db.Exec("DELETE FROM test_products").Error)

	rm := collectMetrics(t, reader)
	assert.Equal(t, int64(1), sumValue(rm, "db_query_total", AttrDBOperation.String("INSERT")))
	assert.Equal(t, int64(1), sumValue(rm, "db_query_total", AttrDBOperation.String("SELECT")))
	assert.Equal(t, int64(1), sumValue(rm, "db_query_total", AttrDBOperation.String("DELETE")))
}

func TestStatementVerb(t *testing.T) {
	tests := map[string]string{
		"SELECT * FROM products":              "SELECT",
		"  insert into cart_items values (1)": "INSERT",
		"UPDATE products SET name = 'x'":      "UPDATE",
		"delete from wishlist_items":          "DELETE",
		"WITH ranked AS (SELECT 1) SELECT 1":  "SELECT",
		"VACUUM":                              "OTHER",
	}
	for sql, want := range tests {
		assert.Equal(t, want, statementVerb(sql), sql)
	}
}
