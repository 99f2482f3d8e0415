package logger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultSlowQuery is used when SQLConfig.SlowThreshold is zero.
const DefaultSlowQuery = 200 * time.Millisecond

// SQLConfig controls which statements reach the log.
type SQLConfig struct {
	Level         gormlogger.LogLevel
	SlowThreshold time.Duration
	// LogNotFound reports gorm.ErrRecordNotFound as an error. Product and
	// order lookups miss routinely, so it is off unless asked for.
	LogNotFound bool
}

// SQLLogger adapts zap to gorm's logger interface. Entries carry the
// request, shopper and trace identifiers of the calling request.
type SQLLogger struct {
	base *zap.Logger
	cfg  SQLConfig
}

var _ gormlogger.Interface = (*SQLLogger)(nil)

func NewGormLogger(base *zap.Logger, cfg SQLConfig) *SQLLogger {
	if cfg.SlowThreshold == 0 {
		cfg.SlowThreshold = DefaultSlowQuery
	}
	return &SQLLogger{base: base.Named("gorm"), cfg: cfg}
}

func (l *SQLLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.cfg.Level = level
	return &clone
}

func (l *SQLLogger) Info(ctx context.Context, format string, args ...any) {
	l.printf(ctx, gormlogger.Info, zapcore.InfoLevel, format, args)
}

func (l *SQLLogger) Warn(ctx context.Context, format string, args ...any) {
	l.printf(ctx, gormlogger.Warn, zapcore.WarnLevel, format, args)
}

func (l *SQLLogger) Error(ctx context.Context, format string, args ...any) {
	l.printf(ctx, gormlogger.Error, zapcore.ErrorLevel, format, args)
}

func (l *SQLLogger) printf(ctx context.Context, need gormlogger.LogLevel, lvl zapcore.Level, format string, args []any) {
	if l.cfg.Level < need {
		return
	}
	if ce := l.scoped(ctx).Check(lvl, fmt.Sprintf(format, args...)); ce != nil {
		ce.Write()
	}
}

// Trace is called by gorm after every statement.
func (l *SQLLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.cfg.Level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	lvl, msg, extra := l.classify(elapsed, err)
	if msg == "" {
		return
	}

	stmt, rows := fc()
	fields := append([]zap.Field{
		zap.String("sql", stmt),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	}, extra...)
	l.scoped(ctx).Log(lvl, msg, fields...)
}

// classify picks the entry for a finished statement. An empty message
// means the statement is not logged at the configured level.
func (l *SQLLogger) classify(elapsed time.Duration, err error) (zapcore.Level, string, []zap.Field) {
	switch {
	case err != nil:
		if errors.Is(err, gormlogger.ErrRecordNotFound) && !l.cfg.LogNotFound {
			return 0, "", nil
		}
		if l.cfg.Level >= gormlogger.Error {
			return zapcore.ErrorLevel, "SQL Error", []zap.Field{zap.Error(err)}
		}
	case elapsed > l.cfg.SlowThreshold:
		if l.cfg.Level >= gormlogger.Warn {
			return zapcore.WarnLevel, "Slow SQL", []zap.Field{zap.Duration("threshold", l.cfg.SlowThreshold)}
		}
	case l.cfg.Level >= gormlogger.Info:
		return zapcore.DebugLevel, "SQL Query", nil
	}
	return 0, "", nil
}

// scoped prefers the request logger attached to ctx, which already holds
// the request and shopper ids. Background work falls back to the base
// logger plus whatever ids ctx carries.
func (l *SQLLogger) scoped(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return l.base
	}
	if _, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return FromContext(ctx).Named("gorm")
	}

	log := l.base
	if id := RequestID(ctx); id != "" {
		log = log.With(zap.String("request_id", id))
	}
	if id := UserID(ctx); id != "" {
		log = log.With(zap.String("user_id", id))
	}
	return withSpan(ctx, log)
}

// GormLevel maps the application log level onto gorm's coarser scale.
// Unknown names fall back to warn.
func GormLevel(name string) gormlogger.LogLevel {
	switch strings.ToLower(name) {
	case "debug", "info":
		return gormlogger.Info
	case "warn", "warning":
		return gormlogger.Warn
	case "error", "fatal":
		return gormlogger.Error
	case "silent", "off":
		return gormlogger.Silent
	}
	return gormlogger.Warn
}
