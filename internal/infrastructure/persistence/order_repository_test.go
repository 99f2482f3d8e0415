package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopflux/storefront/internal/domain/order"
	"github.com/shopflux/storefront/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormOrderRepository_FindByUser(t *testing.T) {
	db, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()

	userID := uuid.New()
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "created_at", "updated_at", "user_id", "order_number", "status", "subtotal", "total_amount", "currency"}).
		AddRow(uuid.NewString(), now, now, userID.String(), "ORD-1001", "shipped", "90.00", "99.50", "USD")

	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE user_id = \$1 AND status = \$2 ORDER BY created_at DESC, id DESC LIMIT \$3`).
		WithArgs(userID, order.StatusShipped, 20).
		WillReturnRows(rows)

	filter := shared.Filter{
		Page:     1,
		PageSize: 20,
		Filters:  map[string]interface{}{order.FilterStatus: order.StatusShipped},
	}
	orders, err := NewGormOrderRepository(db).FindByUser(context.Background(), userID, filter)

	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "ORD-1001", orders[0].OrderNumber)
	assert.Equal(t, order.StatusShipped, orders[0].Status)
	assert.Equal(t, "99.5", orders[0].TotalAmount.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormOrderRepository_CountByUser(t *testing.T) {
	db, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()

	userID := uuid.New()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "orders" WHERE user_id = \$1`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := NewGormOrderRepository(db).CountByUser(context.Background(), userID, shared.Filter{})

	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormOrderRepository_FindByIDForUser(t *testing.T) {
	t.Run("loads order with items", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()

		userID, orderID := uuid.New(), uuid.New()
		now := time.Now()

		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE id = \$1 AND user_id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(orderID, userID, 1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at", "user_id", "order_number", "status"}).
				AddRow(orderID.String(), now, now, userID.String(), "ORD-7", "pending"))

		mock.ExpectQuery(`SELECT \* FROM "order_items" WHERE "order_items"."order_id" = \$1 ORDER BY created_at ASC, id ASC`).
			WithArgs(orderID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "product_id", "quantity", "unit_price", "total_price", "created_at"}).
				AddRow(uuid.NewString(), orderID.String(), uuid.NewString(), 2, "5.00", "10.00", now))

		o, err := NewGormOrderRepository(db).FindByIDForUser(context.Background(), userID, orderID)

		require.NoError(t, err)
		assert.Equal(t, "ORD-7", o.OrderNumber)
		require.Len(t, o.Items, 1)
		assert.Equal(t, 2, o.ItemCount())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("someone else's order is not found", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE id = \$1 AND user_id = \$2`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		o, err := NewGormOrderRepository(db).FindByIDForUser(context.Background(), uuid.New(), uuid.New())

		assert.Nil(t, o)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
