package migration

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/shopflux/storefront/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add reviews index", "add_reviews_index"},
		{"Add-Reviews-Index", "add_reviews_index"},
		{"ADD_REVIEWS_INDEX", "add_reviews_index"},
		{"add__reviews__index", "add_reviews_index"},
		{"Add Coupons 2", "add_coupons_2"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("-- test"), 0o644))
	}
}

func TestCreateMigration(t *testing.T) {
	t.Run("numbers after the highest version", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir,
			"000001_init_schema.up.sql", "000001_init_schema.down.sql",
			"000004_add_coupons.up.sql", "000004_add_coupons.down.sql",
		)

		mf, err := CreateMigration(dir, "Add review votes", "Helpful votes per review")
		require.NoError(t, err)

		assert.Equal(t, "000005", mf.Version)
		assert.Equal(t, filepath.Join(dir, "000005_add_review_votes.up.sql"), mf.UpPath)
		assert.Equal(t, filepath.Join(dir, "000005_add_review_votes.down.sql"), mf.DownPath)

		up, err := os.ReadFile(mf.UpPath)
		require.NoError(t, err)
		assert.Contains(t, string(up), "Add review votes")
		assert.Contains(t, string(up), "Helpful votes per review")

		down, err := os.ReadFile(mf.DownPath)
		require.NoError(t, err)
		assert.Contains(t, string(down), "Rollback")
	})

	t.Run("creates the directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "migrations")

		mf, err := CreateMigration(dir, "init", "")
		require.NoError(t, err)
		assert.Equal(t, "000001", mf.Version)

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := CreateMigration(t.TempDir(), "!!!", "")
		assert.Error(t, err)
	})
}

func TestListMigrations(t *testing.T) {
	t.Run("sorted base names", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir,
			"000002_add_reviews.up.sql", "000002_add_reviews.down.sql",
			"000001_init.up.sql", "000001_init.down.sql",
			"README.md", ".gitkeep",
		)
		require.NoError(t, os.Mkdir(filepath.Join(dir, "000003_dir.up.sql"), 0o755))

		got, err := ListMigrations(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"000001_init", "000002_add_reviews"}, got)
	})

	t.Run("missing directory", func(t *testing.T) {
		got, err := ListMigrations(filepath.Join(t.TempDir(), "absent"))
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestListMigrationsFS_MissingDown(t *testing.T) {
	fsys := fstest.MapFS{
		"000001_init.up.sql": {Data: []byte("CREATE TABLE t (id int);")},
	}
	_, err := ListMigrationsFS(fsys)
	assert.ErrorContains(t, err, "000001_init has no down file")
}

func TestEmbeddedMigrations(t *testing.T) {
	got, err := ListMigrationsFS(migrations.FS)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "000001_init_schema", got[0])
}
