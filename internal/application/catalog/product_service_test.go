package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopflux/storefront/internal/domain/catalog"
	"github.com/shopflux/storefront/internal/domain/shared"
	"github.com/shopflux/storefront/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindActiveByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindFeatured(ctx context.Context, limit int) ([]catalog.Product, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindActive(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) CountActive(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockImageResolver is a mock implementation of ImageResolver
type MockImageResolver struct {
	mock.Mock
}

func (m *MockImageResolver) ResolveImageURL(ctx context.Context, ref string) (string, error) {
	args := m.Called(ctx, ref)
	return args.String(0), args.Error(1)
}

func newTestProduct(t *testing.T, price string, sale *string, stock int, rating float64) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct("Trail Runner", catalog.CategorySports, decimal.RequireFromString(price))
	require.NoError(t, err)
	if sale != nil {
		d := decimal.RequireFromString(*sale)
		require.NoError(t, p.SetSalePrice(&d))
	}
	p.StockQuantity = stock
	p.Rating = rating
	return p
}

func strPtr(s string) *string { return &s }

func newTestService(repo *MockProductRepository, images ImageResolver) *ProductService {
	return NewProductService(repo, images, Settings{}, zap.NewNop())
}

func TestNewProductService_Defaults(t *testing.T) {
	svc := NewProductService(new(MockProductRepository), nil, Settings{MaxPageSize: 50}, nil)
	assert.Equal(t, 8, svc.settings.FeaturedLimit)
	assert.Equal(t, 20, svc.settings.DefaultPageSize)
	assert.Equal(t, 50, svc.settings.MaxPageSize)
	assert.Equal(t, "/placeholder.svg", svc.settings.PlaceholderImage)
	assert.Equal(t, "USD", svc.settings.Currency)
}

func TestProductService_Present(t *testing.T) {
	svc := newTestService(new(MockProductRepository), nil)
	ctx := context.Background()

	tests := []struct {
		name        string
		product     *catalog.Product
		wantPrice   string
		wantPercent int
		wantBadge   string
		wantStock   string
		wantStars   []bool
	}{
		{
			name:        "discounted and in stock",
			product:     newTestProduct(t, "100.00", strPtr("75.00"), 3, 4.2),
			wantPrice:   "75.00",
			wantPercent: 25,
			wantBadge:   "-25%",
			wantStock:   "In Stock (3 left)",
			wantStars:   []bool{true, true, true, true, false},
		},
		{
			name:      "no sale price and out of stock",
			product:   newTestProduct(t, "50.00", nil, 0, 0),
			wantPrice: "50.00",
			wantStock: "Out of Stock",
			wantStars: []bool{false, false, false, false, false},
		},
		{
			name:      "sale price equal to base price",
			product:   newTestProduct(t, "20.00", strPtr("20.00"), 5, 5.0),
			wantPrice: "20.00",
			wantStock: "In Stock (5 left)",
			wantStars: []bool{true, true, true, true, true},
		},
		{
			name:        "rounded discount",
			product:     newTestProduct(t, "33.00", strPtr("25.00"), 1, 3.5),
			wantPrice:   "25.00",
			wantPercent: 24,
			wantBadge:   "-24%",
			wantStock:   "In Stock (1 left)",
			wantStars:   []bool{true, true, true, true, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pres := svc.Present(ctx, tt.product)
			assert.Equal(t, tt.wantPrice, pres.EffectivePriceText)
			assert.Equal(t, tt.wantPercent > 0, pres.HasDiscount)
			assert.Equal(t, tt.wantPercent, pres.DiscountPercent)
			assert.Equal(t, tt.wantBadge, pres.DiscountBadge)
			assert.Equal(t, tt.wantStock, pres.StockLabel)
			assert.Equal(t, tt.wantStars, pres.StarFill)
			assert.Equal(t, "USD", pres.Currency)
		})
	}
}

func TestProductService_Present_IneffectiveSalePrice(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(context.Background()) }()
	metrics, err := telemetry.NewStorefrontMetrics(telemetry.StorefrontMetricsConfig{Meter: provider.Meter("test")})
	require.NoError(t, err)

	svc := NewProductService(new(MockProductRepository), nil, Settings{}, zap.New(core))
	svc.SetMetrics(metrics)

	pres := svc.Present(context.Background(), newTestProduct(t, "20.00", strPtr("25.00"), 5, 4))

	assert.False(t, pres.HasDiscount)
	assert.Equal(t, "25.00", pres.EffectivePriceText)
	require.Equal(t, 1, logs.FilterMessageSnippet("does not undercut").Len())

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	assert.Equal(t, int64(1), counterTotal(rm, "storefront_ineffective_sale_price_total"))
	assert.Equal(t, int64(1), counterTotal(rm, "storefront_product_presentations_total"))
}

func counterTotal(rm metricdata.ResourceMetrics, name string) int64 {
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func TestProductService_Featured(t *testing.T) {
	repo := new(MockProductRepository)
	images := new(MockImageResolver)
	svc := newTestService(repo, images)
	ctx := context.Background()

	withImage := newTestProduct(t, "10.00", nil, 2, 4)
	withImage.ImageURL = strPtr("products/mug.jpg")
	noImage := newTestProduct(t, "12.00", nil, 0, 3)

	repo.On("FindFeatured", mock.Anything, 8).Return([]catalog.Product{*withImage, *noImage}, nil)
	images.On("ResolveImageURL", mock.Anything, "products/mug.jpg").Return("https://cdn.example.com/mug.jpg?sig=1", nil)

	t.Run("anonymous viewer", func(t *testing.T) {
		cards, err := svc.Featured(ctx, uuid.Nil)
		require.NoError(t, err)
		require.Len(t, cards, 2)

		assert.Equal(t, "https://cdn.example.com/mug.jpg?sig=1", cards[0].ImageURL)
		assert.Equal(t, "/placeholder.svg", cards[1].ImageURL)
		assert.False(t, cards[0].Actions.CanAddToCart)
		assert.False(t, cards[0].Actions.CanWishlist)
	})

	t.Run("signed-in viewer", func(t *testing.T) {
		cards, err := svc.Featured(ctx, uuid.New())
		require.NoError(t, err)

		assert.True(t, cards[0].Actions.CanAddToCart)
		assert.True(t, cards[0].Actions.CanWishlist)
		assert.False(t, cards[1].Actions.CanAddToCart, "out of stock")
		assert.True(t, cards[1].Actions.CanWishlist)
	})

	repo.AssertExpectations(t)
}

func TestProductService_Featured_RepositoryError(t *testing.T) {
	repo := new(MockProductRepository)
	svc := newTestService(repo, nil)

	repo.On("FindFeatured", mock.Anything, 8).Return([]catalog.Product(nil), errors.New("connection reset"))

	cards, err := svc.Featured(context.Background(), uuid.Nil)
	assert.Nil(t, cards)
	assert.ErrorContains(t, err, "connection reset")
}

func TestProductService_List(t *testing.T) {
	t.Run("builds filter and paginates", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := newTestService(repo, nil)

		minPrice, maxPrice := 10.0, 50.0
		q := ListProductsQuery{
			Search:   "runner",
			Category: "sports",
			MinPrice: &minPrice,
			MaxPrice: &maxPrice,
			OnSale:   true,
			InStock:  true,
			Page:     2,
			PageSize: 500,
			OrderBy:  "price",
			OrderDir: "asc",
		}

		matchFilter := mock.MatchedBy(func(f shared.Filter) bool {
			return f.Page == 2 &&
				f.PageSize == 100 &&
				f.Search == "runner" &&
				f.OrderBy == "price" &&
				f.OrderDir == "asc" &&
				f.Filters[catalog.FilterCategory] == "sports" &&
				f.Filters[catalog.FilterMinPrice].(decimal.Decimal).Equal(decimal.NewFromInt(10)) &&
				f.Filters[catalog.FilterMaxPrice].(decimal.Decimal).Equal(decimal.NewFromInt(50)) &&
				f.Filters[catalog.FilterOnSale] == true &&
				f.Filters[catalog.FilterInStock] == true &&
				f.Filters[catalog.FilterFeatured] == nil
		})

		product := newTestProduct(t, "40.00", strPtr("30.00"), 4, 4.5)
		repo.On("FindActive", mock.Anything, matchFilter).Return([]catalog.Product{*product}, nil)
		repo.On("CountActive", mock.Anything, matchFilter).Return(int64(101), nil)

		page, err := svc.List(context.Background(), q, uuid.Nil)

		require.NoError(t, err)
		assert.Equal(t, int64(101), page.Total)
		assert.Equal(t, 2, page.TotalPages)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "-25%", page.Items[0].Presentation.DiscountBadge)
		repo.AssertExpectations(t)
	})

	t.Run("defaults", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := newTestService(repo, nil)

		matchFilter := mock.MatchedBy(func(f shared.Filter) bool {
			return f.Page == 1 && f.PageSize == 20 && f.OrderBy == "created_at" && len(f.Filters) == 0
		})
		repo.On("FindActive", mock.Anything, matchFilter).Return([]catalog.Product{}, nil)
		repo.On("CountActive", mock.Anything, matchFilter).Return(int64(0), nil)

		page, err := svc.List(context.Background(), ListProductsQuery{}, uuid.Nil)

		require.NoError(t, err)
		assert.NotNil(t, page.Items)
		assert.Empty(t, page.Items)
	})

	t.Run("inverted price range", func(t *testing.T) {
		svc := newTestService(new(MockProductRepository), nil)
		minPrice, maxPrice := 50.0, 10.0

		_, err := svc.List(context.Background(), ListProductsQuery{MinPrice: &minPrice, MaxPrice: &maxPrice}, uuid.Nil)
		assert.ErrorIs(t, err, ErrInvalidPriceRange)
	})

	t.Run("unknown category", func(t *testing.T) {
		svc := newTestService(new(MockProductRepository), nil)

		_, err := svc.List(context.Background(), ListProductsQuery{Category: "weapons"}, uuid.Nil)
		assert.ErrorIs(t, err, ErrInvalidCategory)
	})
}

func TestProductService_Detail(t *testing.T) {
	t.Run("active product", func(t *testing.T) {
		repo := new(MockProductRepository)
		images := new(MockImageResolver)
		svc := newTestService(repo, images)

		p := newTestProduct(t, "80.00", nil, 7, 4.6)
		p.ImageURL = strPtr("https://images.example.com/a.jpg")
		p.ImageURLs = []string{"https://images.example.com/a.jpg", "products/b.jpg"}
		p.Tags = []string{"outdoor"}
		p.Dimensions = &catalog.Dimensions{Width: 10, Height: 5, Depth: 30}

		repo.On("FindActiveByID", mock.Anything, p.ID).Return(p, nil)
		images.On("ResolveImageURL", mock.Anything, "https://images.example.com/a.jpg").Return("https://images.example.com/a.jpg", nil)
		images.On("ResolveImageURL", mock.Anything, "products/b.jpg").Return("", errors.New("signing failed"))

		detail, err := svc.Detail(context.Background(), p.ID, uuid.New())

		require.NoError(t, err)
		assert.Equal(t, p.ID, detail.ID)
		assert.Equal(t, []string{"https://images.example.com/a.jpg", "/placeholder.svg"}, detail.Images)
		assert.Equal(t, []string{"outdoor"}, detail.Tags)
		assert.Equal(t, "Sports", detail.CategoryName)
		require.NotNil(t, detail.Dimensions)
		assert.Equal(t, 30.0, detail.Dimensions.Depth)
		assert.True(t, detail.Actions.CanAddToCart)
	})

	t.Run("missing or inactive product", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := newTestService(repo, nil)
		id := uuid.New()

		repo.On("FindActiveByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

		detail, err := svc.Detail(context.Background(), id, uuid.Nil)
		assert.Nil(t, detail)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestProductService_Presentation(t *testing.T) {
	repo := new(MockProductRepository)
	svc := newTestService(repo, nil)

	p := newTestProduct(t, "100.00", strPtr("87.50"), 1, 2)
	repo.On("FindActiveByID", mock.Anything, p.ID).Return(p, nil)

	pres, err := svc.Presentation(context.Background(), p.ID)

	require.NoError(t, err)
	assert.Equal(t, 13, pres.DiscountPercent)
	assert.Equal(t, 2, pres.FilledStars)
}

func TestProductService_Categories(t *testing.T) {
	svc := newTestService(new(MockProductRepository), nil)

	categories := svc.Categories()

	require.Len(t, categories, 10)
	assert.Equal(t, CategoryResponse{Slug: "electronics", Label: "Electronics"}, categories[0])
	assert.Equal(t, CategoryResponse{Slug: "home", Label: "Home & Garden"}, categories[3])
}
