package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopflux/storefront/internal/domain/shopping"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormWishlistRepository_Add(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		want     bool
	}{
		{"new product is added", 1, true},
		{"saved product is left alone", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, mockDB := newMockGormDB(t)
			defer mockDB.Close()

			item, err := shopping.NewWishlistItem(uuid.New(), uuid.New())
			require.NoError(t, err)

			mock.ExpectExec(`INSERT INTO "wishlist_items" .* ON CONFLICT \("user_id","product_id"\) DO NOTHING`).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			added, err := NewGormWishlistRepository(db).Add(context.Background(), item)

			require.NoError(t, err)
			assert.Equal(t, tt.want, added)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGormWishlistRepository_FindByUser(t *testing.T) {
	db, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()

	userID := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "user_id", "product_id", "created_at"}).
		AddRow(uuid.NewString(), userID.String(), uuid.NewString(), time.Now())

	mock.ExpectQuery(`SELECT \* FROM "wishlist_items" WHERE user_id = \$1 ORDER BY created_at DESC, id DESC`).
		WithArgs(userID).
		WillReturnRows(rows)

	items, err := NewGormWishlistRepository(db).FindByUser(context.Background(), userID)

	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormWishlistRepository_Remove(t *testing.T) {
	db, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()

	userID, productID := uuid.New(), uuid.New()
	mock.ExpectExec(`DELETE FROM "wishlist_items" WHERE user_id = \$1 AND product_id = \$2`).
		WithArgs(userID, productID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, NewGormWishlistRepository(db).Remove(context.Background(), userID, productID))
	assert.NoError(t, mock.ExpectationsWereMet())
}
