package telemetry

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultSlowQuery is the latency above which a statement counts as slow.
const DefaultSlowQuery = 200 * time.Millisecond

// DBMetrics counts and times statements and exposes the connection pool
// as observable gauges read at collection time.
type DBMetrics struct {
	meter metric.Meter
	slow  time.Duration
	log   *zap.Logger

	queries  *Counter
	slowOnes *Counter
	latency  *Histogram

	poolReg metric.Registration
}

// NewDBMetrics registers the statement instruments on meter. A zero
// slowQuery uses DefaultSlowQuery.
func NewDBMetrics(meter metric.Meter, slowQuery time.Duration, log *zap.Logger) (*DBMetrics, error) {
	if meter == nil {
		return nil, &MetricsError{Op: "NewDBMetrics", Err: "meter cannot be nil"}
	}
	if log == nil {
		log = zap.NewNop()
	}
	if slowQuery <= 0 {
		slowQuery = DefaultSlowQuery
	}

	m := &DBMetrics{meter: meter, slow: slowQuery, log: log}
	var err error
	if m.queries, err = NewCounter(meter, Instrument{
		Name: "db_query_total", Description: "Statements executed, by operation", Unit: "{query}",
	}); err != nil {
		return nil, err
	}
	if m.slowOnes, err = NewCounter(meter, Instrument{
		Name: "db_slow_query_total", Description: "Statements slower than the slow-query threshold, by table", Unit: "{query}",
	}); err != nil {
		return nil, err
	}
	if m.latency, err = NewHistogram(meter, Instrument{
		Name: "db_query_duration_seconds", Description: "Statement latency", Unit: "s", Buckets: DBDurationBuckets,
	}); err != nil {
		return nil, err
	}
	return m, nil
}

// ObservePool reports pool's size and per-state connection counts on every
// collection until Stop.
func (m *DBMetrics) ObservePool(pool *sql.DB) error {
	if pool == nil {
		return errors.New("observe pool: nil sql.DB")
	}

	conns, err := m.meter.Int64ObservableGauge("db_pool_connections",
		metric.WithDescription("Pooled connections by state"), metric.WithUnit("{connection}"))
	if err != nil {
		return err
	}
	limit, err := m.meter.Int64ObservableGauge("db_pool_connections_max",
		metric.WithDescription("Configured connection limit"), metric.WithUnit("{connection}"))
	if err != nil {
		return err
	}

	m.poolReg, err = m.meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s := pool.Stats()
		o.ObserveInt64(limit, int64(s.MaxOpenConnections))
		o.ObserveInt64(conns, int64(s.OpenConnections), metric.WithAttributes(AttrDBState.String("open")))
		o.ObserveInt64(conns, int64(s.InUse), metric.WithAttributes(AttrDBState.String("in_use")))
		o.ObserveInt64(conns, int64(s.Idle), metric.WithAttributes(AttrDBState.String("idle")))
		return nil
	}, conns, limit)
	return err
}

// Stop detaches the pool callback. Calling it twice is harmless.
func (m *DBMetrics) Stop() {
	if m.poolReg == nil {
		return
	}
	if err := m.poolReg.Unregister(); err != nil {
		m.log.Debug("Pool metrics callback already removed", zap.Error(err))
	}
	m.poolReg = nil
}

// RecordQuery counts one statement. Slow ones are also counted per table.
func (m *DBMetrics) RecordQuery(ctx context.Context, operation, table string, took time.Duration) {
	op := AttrDBOperation.String(strings.ToUpper(cmp.Or(operation, "unknown")))
	m.queries.Inc(ctx, op)
	m.latency.RecordDuration(ctx, took, op)

	if took > m.slow {
		m.slowOnes.Inc(ctx, AttrDBTable.String(cmp.Or(table, "unknown")))
	}
}

type statementStartKey struct{}

// DBMetricsPlugin feeds every gorm statement into DBMetrics.
type DBMetricsPlugin struct{ m *DBMetrics }

func NewDBMetricsPlugin(m *DBMetrics) *DBMetricsPlugin { return &DBMetricsPlugin{m: m} }

func (*DBMetricsPlugin) Name() string { return "db_metrics" }

// hookVerbs maps gorm's callback chains to SQL verbs. Row and raw chains
// are classified from the statement text instead.
var hookVerbs = map[string]string{"create": "INSERT", "query": "SELECT", "update": "UPDATE", "delete": "DELETE"}

func (p *DBMetricsPlugin) Initialize(db *gorm.DB) error {
	for _, h := range gormHooks(db) {
		verb := hookVerbs[h.op]
		if err := h.before("db_metrics:start_"+h.op, startStatement); err != nil {
			return err
		}
		if err := h.after("db_metrics:finish_"+h.op, func(tx *gorm.DB) { p.finish(tx, verb) }); err != nil {
			return err
		}
	}
	return nil
}

func startStatement(tx *gorm.DB) {
	ctx := tx.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}
	tx.Statement.Context = context.WithValue(ctx, statementStartKey{}, time.Now())
}

func (p *DBMetricsPlugin) finish(tx *gorm.DB, verb string) {
	ctx := tx.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}
	var took time.Duration
	if began, ok := ctx.Value(statementStartKey{}).(time.Time); ok {
		took = time.Since(began)
	}
	if verb == "" {
		verb = statementVerb(tx.Statement.SQL.String())
	}
	p.m.RecordQuery(ctx, verb, tx.Statement.Table, took)
}

// statementVerb reads the leading keyword of a statement. CTEs count as
// reads.
func statementVerb(stmt string) string {
	head, _, _ := strings.Cut(strings.TrimSpace(stmt), " ")
	switch verb := strings.ToUpper(head); verb {
	case "SELECT", "INSERT", "UPDATE", "DELETE":
		return verb
	case "WITH":
		return "SELECT"
	}
	return "OTHER"
}
