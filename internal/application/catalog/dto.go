package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopflux/storefront/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ListProductsQuery holds the query parameters of a product listing
type ListProductsQuery struct {
	Search   string   `form:"search" binding:"omitempty,max=100"`
	Category string   `form:"category" binding:"omitempty,category"`
	Brand    string   `form:"brand" binding:"omitempty,max=100"`
	MinPrice *float64 `form:"min_price" binding:"omitempty,gte=0"`
	MaxPrice *float64 `form:"max_price" binding:"omitempty,gte=0"`
	OnSale   bool     `form:"on_sale"`
	InStock  bool     `form:"in_stock"`
	Featured bool     `form:"featured"`
	Page     int      `form:"page" binding:"omitempty,min=1"`
	PageSize int      `form:"page_size" binding:"omitempty,min=1"`
	OrderBy  string   `form:"order_by" binding:"omitempty,oneof=created_at price name rating review_count"`
	OrderDir string   `form:"order_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// PresentationResponse is the derived display data of a product
type PresentationResponse struct {
	EffectivePrice     decimal.Decimal `json:"effective_price"`
	EffectivePriceText string          `json:"effective_price_text"`
	BasePriceText      string          `json:"base_price_text"`
	HasDiscount        bool            `json:"has_discount"`
	DiscountPercent    int             `json:"discount_percent"`
	DiscountBadge      string          `json:"discount_badge,omitempty"`
	InStock            bool            `json:"in_stock"`
	StockCount         int             `json:"stock_count"`
	StockLabel         string          `json:"stock_label"`
	StarFill           []bool          `json:"star_fill"`
	FilledStars        int             `json:"filled_stars"`
	IsFeatured         bool            `json:"is_featured"`
	Currency           string          `json:"currency"`
}

// ViewerActionsResponse tells the client which product actions to offer
type ViewerActionsResponse struct {
	CanAddToCart bool `json:"can_add_to_cart"`
	CanWishlist  bool `json:"can_wishlist"`
}

// ProductCard is a product in listings, carts and wishlists
type ProductCard struct {
	ID           uuid.UUID             `json:"id"`
	Name         string                `json:"name"`
	Category     string                `json:"category"`
	Brand        string                `json:"brand,omitempty"`
	Price        decimal.Decimal       `json:"price"`
	SalePrice    *decimal.Decimal      `json:"sale_price,omitempty"`
	ImageURL     string                `json:"image_url"`
	Rating       float64               `json:"rating"`
	ReviewCount  int                   `json:"review_count"`
	Presentation PresentationResponse  `json:"presentation"`
	Actions      ViewerActionsResponse `json:"actions"`
}

// DimensionsResponse is the package size of a product
type DimensionsResponse struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Depth  float64 `json:"depth"`
}

// ProductDetailResponse is the full product page
type ProductDetailResponse struct {
	ProductCard
	Description  string              `json:"description,omitempty"`
	SKU          string              `json:"sku,omitempty"`
	Images       []string            `json:"images"`
	Tags         []string            `json:"tags"`
	Weight       *decimal.Decimal    `json:"weight,omitempty"`
	Dimensions   *DimensionsResponse `json:"dimensions,omitempty"`
	CategoryName string              `json:"category_name"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// CategoryResponse is one entry of the category list
type CategoryResponse struct {
	Slug  string `json:"slug"`
	Label string `json:"label"`
}

func toPresentationResponse(p *catalog.Product, pres catalog.Presentation, currency string) PresentationResponse {
	stars := make([]bool, len(pres.StarFill))
	copy(stars, pres.StarFill[:])
	return PresentationResponse{
		EffectivePrice:     pres.EffectivePrice,
		EffectivePriceText: pres.EffectivePrice.StringFixed(2),
		BasePriceText:      p.Price.StringFixed(2),
		HasDiscount:        pres.HasDiscount,
		DiscountPercent:    pres.DiscountPercent,
		DiscountBadge:      pres.DiscountBadge(),
		InStock:            pres.Availability.IsInStock(),
		StockCount:         pres.Availability.Count,
		StockLabel:         pres.Availability.Label(),
		StarFill:           stars,
		FilledStars:        pres.FilledStars(),
		IsFeatured:         p.IsFeatured,
		Currency:           currency,
	}
}

func toDimensionsResponse(d *catalog.Dimensions) *DimensionsResponse {
	if d == nil {
		return nil
	}
	return &DimensionsResponse{Width: d.Width, Height: d.Height, Depth: d.Depth}
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
