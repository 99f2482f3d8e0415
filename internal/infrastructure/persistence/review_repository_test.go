package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopflux/storefront/internal/domain/review"
	"github.com/shopflux/storefront/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormReviewRepository_FindByProduct(t *testing.T) {
	db, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()

	productID := uuid.New()
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "created_at", "updated_at", "product_id", "user_id", "rating", "title"}).
		AddRow(uuid.NewString(), now, now, productID.String(), uuid.NewString(), 5, "Great")

	mock.ExpectQuery(`SELECT \* FROM "reviews" WHERE product_id = \$1 ORDER BY created_at DESC, id DESC LIMIT \$2 OFFSET \$3`).
		WithArgs(productID, 5, 5).
		WillReturnRows(rows)

	reviews, err := NewGormReviewRepository(db).FindByProduct(context.Background(), productID,
		shared.Filter{Page: 2, PageSize: 5})

	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, 5, reviews[0].Rating)
	require.NotNil(t, reviews[0].Title)
	assert.Equal(t, "Great", *reviews[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormReviewRepository_CountByProduct(t *testing.T) {
	db, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()

	productID := uuid.New()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "reviews" WHERE product_id = \$1`).
		WithArgs(productID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := NewGormReviewRepository(db).CountByProduct(context.Background(), productID)

	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormReviewRepository_RatingHistogram(t *testing.T) {
	db, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()

	productID := uuid.New()
	rows := sqlmock.NewRows([]string{"rating", "count"}).
		AddRow(5, 10).
		AddRow(4, 3).
		AddRow(1, 1)

	mock.ExpectQuery(`SELECT rating, COUNT\(\*\) AS count FROM "reviews" WHERE product_id = \$1 GROUP BY .*rating`).
		WithArgs(productID).
		WillReturnRows(rows)

	h, err := NewGormReviewRepository(db).RatingHistogram(context.Background(), productID)

	require.NoError(t, err)
	assert.Equal(t, review.Histogram{1, 0, 0, 3, 10}, h)
	assert.NoError(t, mock.ExpectationsWereMet())
}
