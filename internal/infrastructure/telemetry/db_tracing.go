package telemetry

import (
	"cmp"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

// DBTracing describes the statement spans the service wants.
type DBTracing struct {
	Provider trace.TracerProvider
	// DBName becomes db.name on every span.
	DBName string
	// Slow marks spans of statements slower than this; zero means
	// DefaultSlowQuery.
	Slow time.Duration
	// WithValues records bound parameters. Development only.
	WithValues bool
}

// Plugins returns otelgorm followed by the plugin that annotates its spans.
// Install both in that order with db.Use.
func (t DBTracing) Plugins() []gorm.Plugin {
	opts := []otelgorm.Option{otelgorm.WithDBName(cmp.Or(t.DBName, "postgresql"))}
	if !t.WithValues {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if t.Provider != nil {
		opts = append(opts, otelgorm.WithTracerProvider(t.Provider))
	}
	return []gorm.Plugin{
		otelgorm.NewPlugin(opts...),
		&spanMarker{slow: cmp.Or(t.Slow, DefaultSlowQuery)},
	}
}

// spanMarker adds table, row count, failure and slowness to the span
// otelgorm opened for the statement, just before otelgorm ends it.
type spanMarker struct {
	slow time.Duration
}

func (*spanMarker) Name() string { return "storefront:span_marker" }

func (m *spanMarker) Initialize(db *gorm.DB) error {
	for _, h := range gormHooks(db) {
		if err := h.before("span_marker:start_"+h.op, startStatement); err != nil {
			return err
		}
		if err := h.spanEnd("span_marker:annotate_"+h.op, m.annotate); err != nil {
			return err
		}
	}
	return nil
}

func (m *spanMarker) annotate(tx *gorm.DB) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	attrs := []attribute.KeyValue{attribute.Int64("db.rows_affected", tx.Statement.RowsAffected)}
	if tx.Statement.Table != "" {
		attrs = append(attrs, attribute.String("db.sql.table", tx.Statement.Table))
	}
	span.SetAttributes(attrs...)

	// A lookup that finds nothing is an answer, not a failure.
	if err := tx.Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	began, ok := ctx.Value(statementStartKey{}).(time.Time)
	if !ok {
		return
	}
	took := time.Since(began)
	if took <= m.slow {
		return
	}
	span.SetAttributes(
		attribute.Bool("db.slow_query", true),
		attribute.Int64("db.query_duration_ms", took.Milliseconds()),
	)
	span.AddEvent("slow_query", trace.WithAttributes(
		attribute.Int64("duration_ms", took.Milliseconds()),
		attribute.Int64("threshold_ms", m.slow.Milliseconds()),
	))
}

type register func(name string, fn func(*gorm.DB)) error

// gormHook holds the registration points around one gorm callback chain.
// spanEnd sits after the statement and ahead of otelgorm's own after
// callback, while the span is still open.
type gormHook struct {
	op                     string
	before, after, spanEnd register
}

func gormHooks(db *gorm.DB) []gormHook {
	cb := db.Callback()
	create, query, update := cb.Create(), cb.Query(), cb.Update()
	del, row, raw := cb.Delete(), cb.Row(), cb.Raw()
	return []gormHook{
		{"create", create.Before("gorm:create").Register, create.After("gorm:create").Register,
			create.After("gorm:create").Before("otel:after:create").Register},
		{"query", query.Before("gorm:query").Register, query.After("gorm:query").Register,
			query.After("gorm:query").Before("otel:after:query").Register},
		{"update", update.Before("gorm:update").Register, update.After("gorm:update").Register,
			update.After("gorm:update").Before("otel:after:update").Register},
		{"delete", del.Before("gorm:delete").Register, del.After("gorm:delete").Register,
			del.After("gorm:delete").Before("otel:after:delete").Register},
		{"row", row.Before("gorm:row").Register, row.After("gorm:row").Register,
			row.After("gorm:row").Before("otel:after:row").Register},
		{"raw", raw.Before("gorm:raw").Register, raw.After("gorm:raw").Register,
			raw.After("gorm:raw").Before("otel:after:raw").Register},
	}
}
