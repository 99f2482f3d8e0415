package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/shopflux/storefront/internal/infrastructure/migration"
	"github.com/shopflux/storefront/migrations"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	postgresImage  = "postgres:16-alpine"
	startupTimeout = 2 * time.Minute
)

// pg is the migrated container shared by every test in one test binary.
var pg struct {
	sync.Mutex
	container *tcpostgres.PostgresContainer
	dsn       string
}

// TestDB is a gorm handle on the shared, migrated PostgreSQL database.
type TestDB struct {
	DB *gorm.DB
	t  *testing.T
}

// NewTestDB starts the shared container on first use and empties every
// application table before returning. It skips under -short.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("PostgreSQL integration test skipped with -short")
	}

	db := open(t, containerDSN(t))
	tdb := &TestDB{DB: db, t: t}
	tdb.truncate()
	return tdb
}

// TerminateSharedContainer belongs in TestMain, after m.Run.
func TerminateSharedContainer() {
	pg.Lock()
	defer pg.Unlock()
	if pg.container == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = pg.container.Terminate(ctx)
	pg.container, pg.dsn = nil, ""
}

func containerDSN(t *testing.T) string {
	t.Helper()
	pg.Lock()
	defer pg.Unlock()
	if pg.container != nil {
		return pg.dsn
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	container, err := tcpostgres.Run(ctx, postgresImage,
		tcpostgres.WithDatabase("storefront_test"),
		tcpostgres.WithUsername("storefront"),
		tcpostgres.WithPassword("storefront"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute)),
	)
	require.NoError(t, err, "start postgres container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "postgres connection string")

	conn, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	defer conn.Close()
	migrator, err := migration.NewFromFS(conn, migrations.FS, zap.NewNop())
	require.NoError(t, err, "load embedded migrations")
	require.NoError(t, migrator.Up(), "apply migrations")

	pg.container, pg.dsn = container, dsn
	return dsn
}

func open(t *testing.T, dsn string) *gorm.DB {
	t.Helper()

	level := gormlogger.Silent
	if os.Getenv("TEST_DB_DEBUG") != "" {
		level = gormlogger.Info
	}
	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(level)})
	require.NoError(t, err, "connect to test database")

	conn, err := db.DB()
	require.NoError(t, err)
	conn.SetMaxOpenConns(4)
	t.Cleanup(func() { _ = conn.Close() })
	return db
}

// truncate empties the schema in one statement, leaving the migration
// bookkeeping alone.
func (tdb *TestDB) truncate() {
	tdb.t.Helper()

	var tables []string
	require.NoError(tdb.t, tdb.DB.Raw(
		`SELECT quote_ident(tablename) FROM pg_tables WHERE schemaname = 'public' AND tablename <> 'schema_migrations'`,
	).Scan(&tables).Error)
	if len(tables) == 0 {
		return
	}

	stmt := fmt.Sprintf("TRUNCATE %s RESTART IDENTITY CASCADE", strings.Join(tables, ", "))
	require.NoError(tdb.t, tdb.DB.Exec(stmt).Error, "truncate tables")
}
