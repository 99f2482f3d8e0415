// Package migration applies and authors the versioned SQL files under
// migrations/ using golang-migrate.
package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

// Migrator moves a PostgreSQL schema between migration versions.
type Migrator struct {
	m   *migrate.Migrate
	log *zap.Logger
}

// Status is what schema_migrations records. Version 0 means nothing has
// been applied.
type Status struct {
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
}

// NewFromFS reads migrations from the root of fsys, normally the embedded
// migrations.FS.
func NewFromFS(db *sql.DB, fsys fs.FS, log *zap.Logger) (*Migrator, error) {
	src, err := iofs.New(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("migration source: %w", err)
	}
	target, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, errors.Join(fmt.Errorf("migration target: %w", err), src.Close())
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", target)
	if err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	if log == nil {
		log = zap.NewNop()
	}
	m.Log = printer{log.Named("migrate")}
	return &Migrator{m: m, log: log}, nil
}

// NewFromDir reads migrations from a directory on disk.
func NewFromDir(db *sql.DB, dir string, log *zap.Logger) (*Migrator, error) {
	return NewFromFS(db, os.DirFS(dir), log)
}

func (mg *Migrator) Up() error {
	return mg.apply("up", mg.m.Up)
}

func (mg *Migrator) Down() error {
	return mg.apply("down", mg.m.Down)
}

// Steps moves n versions, backwards when n is negative.
func (mg *Migrator) Steps(n int) error {
	return mg.apply(fmt.Sprintf("step %+d", n), func() error { return mg.m.Steps(n) })
}

// GoTo migrates in whichever direction reaches version.
func (mg *Migrator) GoTo(version uint) error {
	return mg.apply(fmt.Sprintf("goto %d", version), func() error { return mg.m.Migrate(version) })
}

// apply runs one golang-migrate action. Having nothing to do is not an error.
func (mg *Migrator) apply(action string, run func() error) error {
	mg.log.Info("Migrating", zap.String("action", action))

	err := run()
	if errors.Is(err, migrate.ErrNoChange) {
		mg.log.Info("Schema already at target", zap.String("action", action))
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", action, err)
	}

	st, err := mg.Status()
	if err != nil {
		return err
	}
	mg.log.Info("Migration finished",
		zap.String("action", action),
		zap.Uint("version", st.Version),
		zap.Bool("dirty", st.Dirty),
	)
	return nil
}

func (mg *Migrator) Status() (Status, error) {
	v, dirty, err := mg.m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return Status{}, nil
	case err != nil:
		return Status{}, fmt.Errorf("schema version: %w", err)
	}
	return Status{Version: v, Dirty: dirty}, nil
}

// Force marks version as applied and clean without running it. It is how a
// dirty schema is recovered after a failed migration has been fixed by hand.
func (mg *Migrator) Force(version int) error {
	mg.log.Warn("Forcing schema version", zap.Int("version", version))
	if err := mg.m.Force(version); err != nil {
		return fmt.Errorf("force version %d: %w", version, err)
	}
	return nil
}

// Drop removes every table, schema_migrations included.
func (mg *Migrator) Drop() error {
	mg.log.Warn("Dropping all tables")
	if err := mg.m.Drop(); err != nil {
		return fmt.Errorf("drop schema: %w", err)
	}
	return nil
}

func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	return errors.Join(srcErr, dbErr)
}

// printer is golang-migrate's logger, routed to zap at debug.
type printer struct{ log *zap.Logger }

func (p printer) Printf(format string, v ...any) { p.log.Sugar().Debugf(format, v...) }

func (p printer) Verbose() bool { return p.log.Core().Enabled(zap.DebugLevel) }
