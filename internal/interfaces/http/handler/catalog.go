package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/shopflux/storefront/internal/application/catalog"
	reviewapp "github.com/shopflux/storefront/internal/application/review"
	"github.com/shopflux/storefront/internal/domain/shared"
)

// CatalogReader is the product read side used by CatalogHandler
type CatalogReader interface {
	Featured(ctx context.Context, viewerID uuid.UUID) ([]catalogapp.ProductCard, error)
	List(ctx context.Context, q catalogapp.ListProductsQuery, viewerID uuid.UUID) (*shared.Paginated[catalogapp.ProductCard], error)
	Detail(ctx context.Context, id, viewerID uuid.UUID) (*catalogapp.ProductDetailResponse, error)
	Presentation(ctx context.Context, id uuid.UUID) (*catalogapp.PresentationResponse, error)
	Categories() []catalogapp.CategoryResponse
}

// ReviewReader lists the published reviews of a product
type ReviewReader interface {
	ListForProduct(ctx context.Context, productID uuid.UUID, q reviewapp.ListReviewsQuery) (*reviewapp.ProductReviewsResponse, error)
}

// CatalogHandler serves the public catalog. Prices, badges and viewer actions
// are derived per request; a signed-in viewer only changes the actions.
type CatalogHandler struct {
	BaseHandler
	products CatalogReader
	reviews  ReviewReader
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(products CatalogReader, reviews ReviewReader) *CatalogHandler {
	return &CatalogHandler{products: products, reviews: reviews}
}

// Featured godoc
// @ID           listFeaturedProducts
// @Summary      List featured products
// @Description  Featured, active products, newest first, with derived presentation
// @Tags         catalog
// @Produce      json
// @Success      200 {object} APIResponse[[]catalogapp.ProductCard]
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /catalog/featured [get]
func (h *CatalogHandler) Featured(c *gin.Context) {
	cards, err := h.products.Featured(c.Request.Context(), viewerID(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, cards)
}

// List godoc
// @ID           listProducts
// @Summary      List products
// @Description  Active products with filters, pagination and ordering
// @Tags         catalog
// @Produce      json
// @Param        search    query string  false "Name, description, brand or tag contains"
// @Param        category  query string  false "Category slug" Enums(electronics, clothing, books, home, sports, beauty, toys, automotive, jewelry, food)
// @Param        brand     query string  false "Brand"
// @Param        min_price query number  false "Minimum effective price"
// @Param        max_price query number  false "Maximum effective price"
// @Param        on_sale   query boolean false "Only discounted products"
// @Param        in_stock  query boolean false "Only products in stock"
// @Param        featured  query boolean false "Only featured products"
// @Param        page      query int     false "Page number" default(1)
// @Param        page_size query int     false "Page size" default(20)
// @Param        order_by  query string  false "Sort field" Enums(created_at, price, name, rating, review_count)
// @Param        order_dir query string  false "Sort direction" Enums(asc, desc)
// @Success      200 {object} PageResponse[catalogapp.ProductCard]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /catalog/products [get]
func (h *CatalogHandler) List(c *gin.Context) {
	var q catalogapp.ListProductsQuery
	if !h.bindQuery(c, &q) {
		return
	}

	page, err := h.products.List(c.Request.Context(), q, viewerID(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Page(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get godoc
// @ID           getProduct
// @Summary      Get a product
// @Description  Product page of an active product with gallery, dimensions and viewer actions
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} APIResponse[catalogapp.ProductDetailResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /catalog/products/{id} [get]
func (h *CatalogHandler) Get(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id", "product ID")
	if !ok {
		return
	}

	detail, err := h.products.Detail(c.Request.Context(), id, viewerID(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, detail)
}

// Presentation godoc
// @ID           getProductPresentation
// @Summary      Get product presentation
// @Description  Effective price, discount, stock label and star fill of an active product
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} APIResponse[catalogapp.PresentationResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /catalog/products/{id}/presentation [get]
func (h *CatalogHandler) Presentation(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id", "product ID")
	if !ok {
		return
	}

	pres, err := h.products.Presentation(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, pres)
}

// Reviews godoc
// @ID           listProductReviews
// @Summary      List product reviews
// @Description  Reviews of an active product, newest first, with the star histogram
// @Tags         catalog
// @Produce      json
// @Param        id        path  string true  "Product ID" format(uuid)
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(10)
// @Param        order_by  query string false "Sort field" Enums(created_at, rating, helpful_count)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} APIResponse[reviewapp.ProductReviewsResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /catalog/products/{id}/reviews [get]
func (h *CatalogHandler) Reviews(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id", "product ID")
	if !ok {
		return
	}
	var q reviewapp.ListReviewsQuery
	if !h.bindQuery(c, &q) {
		return
	}

	resp, err := h.reviews.ListForProduct(c.Request.Context(), id, q)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// Categories godoc
// @ID           listCategories
// @Summary      List categories
// @Description  The fixed category list in display order
// @Tags         catalog
// @Produce      json
// @Success      200 {object} APIResponse[[]catalogapp.CategoryResponse]
// @Router       /catalog/categories [get]
func (h *CatalogHandler) Categories(c *gin.Context) {
	h.Success(c, h.products.Categories())
}
