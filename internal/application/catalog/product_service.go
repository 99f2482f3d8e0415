package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopflux/storefront/internal/domain/catalog"
	"github.com/shopflux/storefront/internal/domain/shared"
	"github.com/shopflux/storefront/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ImageResolver turns a stored image reference into a URL a browser can load
type ImageResolver interface {
	ResolveImageURL(ctx context.Context, ref string) (string, error)
}

// Settings holds the storefront display settings used by ProductService
type Settings struct {
	FeaturedLimit    int
	DefaultPageSize  int
	MaxPageSize      int
	PlaceholderImage string
	Currency         string
}

// DefaultSettings returns the settings used when none are configured
func DefaultSettings() Settings {
	return Settings{
		FeaturedLimit:    8,
		DefaultPageSize:  20,
		MaxPageSize:      100,
		PlaceholderImage: "/placeholder.svg",
		Currency:         "USD",
	}
}

// ProductService serves catalog reads with derived presentation data
type ProductService struct {
	productRepo catalog.ProductRepository
	images      ImageResolver
	settings    Settings
	logger      *zap.Logger
	metrics     *telemetry.StorefrontMetrics
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	images ImageResolver,
	settings Settings,
	logger *zap.Logger,
) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	defaults := DefaultSettings()
	if settings.FeaturedLimit <= 0 {
		settings.FeaturedLimit = defaults.FeaturedLimit
	}
	if settings.DefaultPageSize <= 0 {
		settings.DefaultPageSize = defaults.DefaultPageSize
	}
	if settings.MaxPageSize <= 0 {
		settings.MaxPageSize = defaults.MaxPageSize
	}
	if settings.PlaceholderImage == "" {
		settings.PlaceholderImage = defaults.PlaceholderImage
	}
	if settings.Currency == "" {
		settings.Currency = defaults.Currency
	}
	return &ProductService{
		productRepo: productRepo,
		images:      images,
		settings:    settings,
		logger:      logger,
	}
}

// SetMetrics sets the storefront metrics recorder. Nil disables recording.
func (s *ProductService) SetMetrics(m *telemetry.StorefrontMetrics) {
	s.metrics = m
}

// Featured returns the featured, active products, newest first
func (s *ProductService) Featured(ctx context.Context, viewerID uuid.UUID) ([]ProductCard, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "catalog", "featured")
	defer span.End()

	products, err := s.productRepo.FindFeatured(ctx, s.settings.FeaturedLimit)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load featured products: %w", err)
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrResults, len(products))

	cards := make([]ProductCard, 0, len(products))
	for i := range products {
		cards = append(cards, s.Card(ctx, &products[i], viewerID))
	}
	return cards, nil
}

// List returns one page of active products matching the query
func (s *ProductService) List(ctx context.Context, q ListProductsQuery, viewerID uuid.UUID) (*shared.Paginated[ProductCard], error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "catalog", "list")
	defer span.End()

	filter, err := s.buildFilter(q)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	products, err := s.productRepo.FindActive(ctx, filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	total, err := s.productRepo.CountActive(ctx, filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrResults, len(products))

	cards := make([]ProductCard, 0, len(products))
	for i := range products {
		cards = append(cards, s.Card(ctx, &products[i], viewerID))
	}
	page := shared.NewPaginated(cards, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Detail returns the product page of an active product
func (s *ProductService) Detail(ctx context.Context, id, viewerID uuid.UUID) (*ProductDetailResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "catalog", "detail",
		telemetry.WithAttribute(telemetry.SpanAttrProductID, id.String()))
	defer span.End()

	product, err := s.findActive(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	gallery := product.Gallery()
	images := make([]string, 0, len(gallery))
	for _, ref := range gallery {
		images = append(images, s.resolveImage(ctx, ref))
	}
	if len(images) == 0 {
		images = append(images, s.settings.PlaceholderImage)
	}

	tags := []string(product.Tags)
	if tags == nil {
		tags = []string{}
	}

	return &ProductDetailResponse{
		ProductCard:  s.Card(ctx, product, viewerID),
		Description:  stringValue(product.Description),
		SKU:          stringValue(product.SKU),
		Images:       images,
		Tags:         tags,
		Weight:       product.Weight,
		Dimensions:   toDimensionsResponse(product.Dimensions),
		CategoryName: product.Category.Label(),
		CreatedAt:    product.CreatedAt,
		UpdatedAt:    product.UpdatedAt,
	}, nil
}

// Presentation returns only the derived display data of an active product
func (s *ProductService) Presentation(ctx context.Context, id uuid.UUID) (*PresentationResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "catalog", "presentation",
		telemetry.WithAttribute(telemetry.SpanAttrProductID, id.String()))
	defer span.End()

	product, err := s.findActive(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	pres := s.Present(ctx, product)
	return &pres, nil
}

// Categories returns the category list in display order
func (s *ProductService) Categories() []CategoryResponse {
	all := catalog.AllCategories()
	categories := make([]CategoryResponse, 0, len(all))
	for _, c := range all {
		categories = append(categories, CategoryResponse{Slug: string(c), Label: c.Label()})
	}
	return categories
}

// Present derives the display data of p
func (s *ProductService) Present(ctx context.Context, p *catalog.Product) PresentationResponse {
	return toPresentationResponse(p, s.derive(ctx, p), s.settings.Currency)
}

// derive wraps catalog.Derive with logging and metrics for misconfigured sale prices
func (s *ProductService) derive(ctx context.Context, p *catalog.Product) catalog.Presentation {
	pres := catalog.Derive(p)

	if p.HasIneffectiveSalePrice() {
		s.logger.Debug("Sale price does not undercut base price, no discount shown",
			zap.String("product_id", p.ID.String()),
			zap.String("price", p.Price.String()),
			zap.String("sale_price", p.SalePrice.String()),
		)
		if s.metrics != nil {
			s.metrics.RecordIneffectiveSalePrice(ctx, string(p.Category))
		}
	}
	if s.metrics != nil {
		s.metrics.RecordPresentation(ctx, string(p.Category), pres.HasDiscount)
	}
	return pres
}

// Card builds the listing entry of p for the given viewer; uuid.Nil is anonymous
func (s *ProductService) Card(ctx context.Context, p *catalog.Product, viewerID uuid.UUID) ProductCard {
	pres := s.derive(ctx, p)
	actions := catalog.ActionsFor(pres, viewerID != uuid.Nil)

	return ProductCard{
		ID:           p.ID,
		Name:         p.Name,
		Category:     string(p.Category),
		Brand:        stringValue(p.Brand),
		Price:        p.Price,
		SalePrice:    p.SalePrice,
		ImageURL:     s.resolveImage(ctx, p.PrimaryImage("")),
		Rating:       p.Rating,
		ReviewCount:  p.ReviewCount,
		Presentation: toPresentationResponse(p, pres, s.settings.Currency),
		Actions: ViewerActionsResponse{
			CanAddToCart: actions.CanAddToCart,
			CanWishlist:  actions.CanWishlist,
		},
	}
}

func (s *ProductService) findActive(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	product, err := s.productRepo.FindActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	return product, nil
}

// resolveImage falls back to the placeholder when ref is empty or cannot be resolved
func (s *ProductService) resolveImage(ctx context.Context, ref string) string {
	if ref == "" {
		return s.settings.PlaceholderImage
	}
	if s.images == nil {
		return ref
	}
	url, err := s.images.ResolveImageURL(ctx, ref)
	if err != nil {
		s.logger.Warn("Failed to resolve product image", zap.String("ref", ref), zap.Error(err))
		return s.settings.PlaceholderImage
	}
	return url
}

func (s *ProductService) buildFilter(q ListProductsQuery) (shared.Filter, error) {
	filter := shared.DefaultFilter()
	filter.PageSize = s.settings.DefaultPageSize
	if q.Page > 0 {
		filter.Page = q.Page
	}
	if q.PageSize > 0 {
		filter.PageSize = min(q.PageSize, s.settings.MaxPageSize)
	}
	if q.OrderBy != "" {
		filter.OrderBy = q.OrderBy
	}
	if q.OrderDir != "" {
		filter.OrderDir = q.OrderDir
	}
	filter.Search = q.Search

	if q.Category != "" {
		category := catalog.Category(q.Category)
		if !category.IsValid() {
			return filter, ErrInvalidCategory
		}
		filter.Filters[catalog.FilterCategory] = string(category)
	}
	if q.Brand != "" {
		filter.Filters[catalog.FilterBrand] = q.Brand
	}
	if q.MinPrice != nil && q.MaxPrice != nil && *q.MinPrice > *q.MaxPrice {
		return filter, ErrInvalidPriceRange
	}
	if q.MinPrice != nil {
		filter.Filters[catalog.FilterMinPrice] = decimal.NewFromFloat(*q.MinPrice)
	}
	if q.MaxPrice != nil {
		filter.Filters[catalog.FilterMaxPrice] = decimal.NewFromFloat(*q.MaxPrice)
	}
	if q.OnSale {
		filter.Filters[catalog.FilterOnSale] = true
	}
	if q.InStock {
		filter.Filters[catalog.FilterInStock] = true
	}
	if q.Featured {
		filter.Filters[catalog.FilterFeatured] = true
	}
	return filter, nil
}

var (
	// ErrInvalidCategory is returned for a category outside the fixed list
	ErrInvalidCategory = shared.NewDomainError("INVALID_CATEGORY", "Unknown product category")
	// ErrInvalidPriceRange is returned when min_price exceeds max_price
	ErrInvalidPriceRange = shared.NewDomainError("INVALID_PRICE_RANGE", "min_price cannot exceed max_price")
)
