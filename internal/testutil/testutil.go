// Package testutil provides shared test helpers for the storefront: a gorm
// handle over sqlmock, a migrated PostgreSQL container, fixture builders and
// HTTP request helpers.
package testutil

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockDB is a gorm handle speaking the postgres dialect to sqlmock.
type MockDB struct {
	DB   *gorm.DB
	Mock sqlmock.Sqlmock
	Conn *sql.DB
}

// NewMockDB monitors pings, so a test that pings must expect it. Every
// expectation must be met by the end of the test.
func NewMockDB(t *testing.T) *MockDB {
	t.Helper()

	conn, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err, "sqlmock")

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn, DriverName: "postgres"}), &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
	})
	require.NoError(t, err, "open gorm over sqlmock")

	t.Cleanup(func() { _ = conn.Close() })
	return &MockDB{DB: db, Mock: mock, Conn: conn}
}

func (m *MockDB) ExpectationsWereMet(t *testing.T) {
	t.Helper()
	require.NoError(t, m.Mock.ExpectationsWereMet(), "unmet database expectations")
}
