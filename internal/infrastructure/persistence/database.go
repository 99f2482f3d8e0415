package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopflux/storefront/internal/infrastructure/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const connectTimeout = 5 * time.Second

// Database is the storefront's PostgreSQL handle. Repositories take DB;
// the pool is kept for health checks and pool metrics.
type Database struct {
	DB   *gorm.DB
	pool *sql.DB
}

// Option adjusts the gorm configuration before the connection is opened.
type Option func(*gorm.Config)

func WithLogger(l gormlogger.Interface) Option {
	return func(c *gorm.Config) { c.Logger = l }
}

// Open connects, sizes the pool from cfg and pings once within
// connectTimeout. Statements are prepared and cached per connection.
func Open(ctx context.Context, cfg config.DatabaseConfig, opts ...Option) (*Database, error) {
	gcfg := &gorm.Config{
		Logger:                 gormlogger.Discard,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	}
	for _, opt := range opts {
		opt(gcfg)
	}

	gdb, err := gorm.Open(postgres.Open(cfg.DSN()), gcfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	d, err := wrap(gdb)
	if err != nil {
		return nil, err
	}

	d.pool.SetMaxOpenConns(cfg.MaxOpenConns)
	d.pool.SetMaxIdleConns(cfg.MaxIdleConns)
	d.pool.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	d.pool.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := d.Ping(pingCtx); err != nil {
		return nil, errors.Join(fmt.Errorf("ping postgres: %w", err), d.Close())
	}
	return d, nil
}

func wrap(gdb *gorm.DB) (*Database, error) {
	pool, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}
	return &Database{DB: gdb, pool: pool}, nil
}

// Use installs gorm plugins, stopping at the first that fails.
func (d *Database) Use(plugins ...gorm.Plugin) error {
	for _, p := range plugins {
		if err := d.DB.Use(p); err != nil {
			return fmt.Errorf("gorm plugin %s: %w", p.Name(), err)
		}
	}
	return nil
}

func (d *Database) Pool() *sql.DB { return d.pool }

func (d *Database) Ping(ctx context.Context) error { return d.pool.PingContext(ctx) }

func (d *Database) Close() error { return d.pool.Close() }
