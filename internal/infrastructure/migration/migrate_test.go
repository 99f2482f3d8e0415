package migration_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/shopflux/storefront/internal/infrastructure/migration"
	"github.com/shopflux/storefront/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func emptyDatabase(t *testing.T) *sql.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("PostgreSQL integration test skipped with -short")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("migrate_test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var found bool
	require.NoError(t, db.QueryRow(`SELECT to_regclass($1) IS NOT NULL`, name).Scan(&found))
	return found
}

func TestMigrator_Lifecycle(t *testing.T) {
	db := emptyDatabase(t)
	core, recorded := observer.New(zapcore.InfoLevel)

	m, err := migration.NewFromFS(db, migrations.FS, zap.New(core))
	require.NoError(t, err)

	st, err := m.Status()
	require.NoError(t, err)
	assert.Equal(t, migration.Status{}, st)

	require.NoError(t, m.Up())
	st, err = m.Status()
	require.NoError(t, err)
	assert.Equal(t, uint(1), st.Version)
	assert.False(t, st.Dirty)
	assert.True(t, tableExists(t, db, "products"))

	require.NoError(t, m.Up(), "a second up has nothing to do")
	assert.Equal(t, 1, recorded.FilterMessage("Schema already at target").Len())

	require.NoError(t, m.Steps(-1))
	st, err = m.Status()
	require.NoError(t, err)
	assert.Zero(t, st.Version)
	assert.False(t, tableExists(t, db, "products"))

	require.NoError(t, m.GoTo(1))
	require.NoError(t, m.Force(1))
	require.NoError(t, m.Down())
	assert.False(t, tableExists(t, db, "products"))
}

func TestMigrator_MissingDirectory(t *testing.T) {
	_, err := migration.NewFromDir(nil, t.TempDir()+"/absent", nil)
	assert.Error(t, err)
}
