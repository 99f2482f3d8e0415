package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/shopflux/storefront/internal/infrastructure/config"
	"github.com/shopflux/storefront/internal/infrastructure/logger"
	"github.com/shopflux/storefront/internal/infrastructure/migration"
	"github.com/shopflux/storefront/migrations"
	"go.uber.org/zap"
)

// defaultMigrationsDir is where create writes when -path is not given
const defaultMigrationsDir = "migrations"

func main() {
	var (
		migrationsPath string
		logLevel       string
	)
	flag.StringVar(&migrationsPath, "path", "", "Read migrations from this directory instead of the embedded set")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	// create and list only touch files
	switch command {
	case "create":
		if err := createMigration(migrationsPath, args[1:], log); err != nil {
			log.Fatal("Failed to create migration", zap.Error(err))
		}
		return
	case "list":
		if err := listMigrations(migrationsPath, log); err != nil {
			log.Fatal("Failed to list migrations", zap.Error(err))
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = db.PingContext(ctx)
	cancel()
	if err != nil {
		log.Fatal("Failed to ping database", zap.Error(err))
	}

	m, source, err := openMigrator(db, migrationsPath, log)
	if err != nil {
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer m.Close()

	log.Info("Migration CLI started",
		zap.String("command", command),
		zap.String("source", source),
		zap.String("database", cfg.Database.DBName),
	)

	if err := run(m, command, args[1:], log); err != nil {
		log.Fatal("Migration command failed", zap.String("command", command), zap.Error(err))
	}
}

func openMigrator(db *sql.DB, path string, log *zap.Logger) (*migration.Migrator, string, error) {
	if path == "" {
		m, err := migration.NewFromFS(db, migrations.FS, log)
		return m, "embedded", err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, "", fmt.Errorf("invalid migrations path: %w", err)
	}
	m, err := migration.NewFromDir(db, abs, log)
	return m, abs, err
}

func createMigration(path string, args []string, log *zap.Logger) error {
	if len(args) < 1 {
		return fmt.Errorf("name required: migrate create <name> [description]")
	}
	if path == "" {
		path = defaultMigrationsDir
	}
	description := ""
	if len(args) > 1 {
		description = strings.Join(args[1:], " ")
	}
	file, err := migration.CreateMigration(path, args[0], description)
	if err != nil {
		return err
	}
	log.Info("Created migration",
		zap.String("version", file.Version),
		zap.String("up", file.UpPath),
		zap.String("down", file.DownPath),
	)
	return nil
}

func listMigrations(path string, log *zap.Logger) error {
	var (
		names []string
		err   error
	)
	if path == "" {
		names, err = migration.ListMigrationsFS(migrations.FS)
	} else {
		names, err = migration.ListMigrations(path)
	}
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Println(name)
	}
	log.Debug("Listed migrations", zap.Int("count", len(names)))
	return nil
}

func run(m *migration.Migrator, command string, args []string, log *zap.Logger) error {
	switch command {
	case "up":
		return m.Up()

	case "down":
		return m.Down()

	case "step":
		if len(args) < 1 {
			return fmt.Errorf("step count required: migrate step <n>")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid step count %q", args[0])
		}
		return m.Steps(n)

	case "goto":
		if len(args) < 1 {
			return fmt.Errorf("version required: migrate goto <version>")
		}
		version, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid version %q", args[0])
		}
		return m.GoTo(uint(version))

	case "status", "version":
		status, err := m.Status()
		if err != nil {
			return err
		}
		if status.Version == 0 {
			log.Info("No migrations applied")
			return nil
		}
		log.Info("Current migration version",
			zap.Uint("version", status.Version),
			zap.Bool("dirty", status.Dirty),
		)
		return nil

	case "force":
		if len(args) < 1 {
			return fmt.Errorf("version required: migrate force <version>")
		}
		version, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q", args[0])
		}
		return m.Force(version)

	case "drop":
		if len(args) < 1 || (args[0] != "-confirm" && args[0] != "--confirm") {
			return fmt.Errorf("drop removes every table; run 'migrate drop -confirm'")
		}
		return m.Drop()

	default:
		printUsage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func printUsage() {
	fmt.Println(`Storefront database migration tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                Apply all pending migrations
  down              Roll back all migrations
  step <n>          Apply n migrations (positive=up, negative=down)
  goto <version>    Migrate to a specific version
  status            Show the applied version and dirty flag
  force <version>   Record a version as applied without running it
  drop -confirm     Drop every table (DANGEROUS)
  create <name>     Write an empty up/down pair (default dir: ./migrations)
  list              List known migrations without connecting

Flags:
  -path string       Migrations directory (default: embedded migrations)
  -log-level string  Log level: debug, info, warn, error (default: info)

Database settings come from config.toml and SHOPFLUX_DATABASE_* variables.`)
}
