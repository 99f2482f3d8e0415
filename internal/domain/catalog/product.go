package catalog

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/shopflux/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Category is the fixed product category set of the store
type Category string

const (
	CategoryElectronics Category = "electronics"
	CategoryClothing    Category = "clothing"
	CategoryBooks       Category = "books"
	CategoryHome        Category = "home"
	CategorySports      Category = "sports"
	CategoryBeauty      Category = "beauty"
	CategoryToys        Category = "toys"
	CategoryAutomotive  Category = "automotive"
	CategoryJewelry     Category = "jewelry"
	CategoryFood        Category = "food"
)

var categoryLabels = map[Category]string{
	CategoryElectronics: "Electronics",
	CategoryClothing:    "Clothing",
	CategoryBooks:       "Books",
	CategoryHome:        "Home & Garden",
	CategorySports:      "Sports",
	CategoryBeauty:      "Beauty",
	CategoryToys:        "Toys",
	CategoryAutomotive:  "Automotive",
	CategoryJewelry:     "Jewelry",
	CategoryFood:        "Food",
}

// AllCategories returns every category in display order
func AllCategories() []Category {
	return []Category{
		CategoryElectronics,
		CategoryClothing,
		CategoryBooks,
		CategoryHome,
		CategorySports,
		CategoryBeauty,
		CategoryToys,
		CategoryAutomotive,
		CategoryJewelry,
		CategoryFood,
	}
}

// IsValid reports whether c is a known category
func (c Category) IsValid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label returns the human readable category name
func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

// Dimensions holds the package size of a product
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Depth  float64 `json:"depth"`
}

// Value implements driver.Valuer for jsonb storage
func (d Dimensions) Value() (driver.Value, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for jsonb storage
func (d *Dimensions) Scan(value any) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Dimensions", value)
	}
	return json.Unmarshal(raw, d)
}

// Product is a sellable record of the catalog (the CatalogItem).
// Storefront code only reads products; they are maintained by the back office.
type Product struct {
	shared.BaseEntity
	Name          string           `gorm:"type:varchar(200);not null"`
	Description   *string          `gorm:"type:text"`
	Price         decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	SalePrice     *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Category      Category         `gorm:"type:varchar(32);not null;index"`
	ImageURL      *string          `gorm:"column:image_url;type:text"`
	ImageURLs     pq.StringArray   `gorm:"column:image_urls;type:text[]"`
	StockQuantity int              `gorm:"not null;default:0"`
	IsFeatured    bool             `gorm:"not null;default:false;index"`
	IsActive      bool             `gorm:"not null;default:true;index"`
	SKU           *string          `gorm:"column:sku;type:varchar(64);uniqueIndex"`
	Brand         *string          `gorm:"type:varchar(100)"`
	Weight        *decimal.Decimal `gorm:"type:decimal(10,3)"`
	Dimensions    *Dimensions      `gorm:"type:jsonb"`
	Tags          pq.StringArray   `gorm:"type:text[]"`
	Rating        float64          `gorm:"type:decimal(2,1);not null;default:0"`
	ReviewCount   int              `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates an active product with the given name, category and base price
func NewProduct(name string, category Category, price decimal.Decimal) (*Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	if !category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Unknown product category")
	}
	if !price.IsPositive() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Product price must be positive")
	}

	return &Product{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Price:      price,
		Category:   category,
		IsActive:   true,
	}, nil
}

// SetSalePrice sets or clears (nil) the promotional price
func (p *Product) SetSalePrice(sale *decimal.Decimal) error {
	if sale != nil && sale.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Sale price cannot be negative")
	}
	p.SalePrice = sale
	p.Touch()
	return nil
}

// SetStock sets the quantity on hand
func (p *Product) SetStock(quantity int) error {
	if quantity < 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Stock quantity cannot be negative")
	}
	p.StockQuantity = quantity
	p.Touch()
	return nil
}

// HasIneffectiveSalePrice reports a sale price that does not undercut the base price.
// Such a record is displayed at the sale price but without a discount badge.
func (p *Product) HasIneffectiveSalePrice() bool {
	return p.SalePrice != nil && !p.SalePrice.LessThan(p.Price)
}

// Gallery returns all image references of the product, primary first, without duplicates.
func (p *Product) Gallery() []string {
	seen := make(map[string]bool)
	images := make([]string, 0, len(p.ImageURLs)+1)
	add := func(ref string) {
		ref = strings.TrimSpace(ref)
		if ref == "" || seen[ref] {
			return
		}
		seen[ref] = true
		images = append(images, ref)
	}
	if p.ImageURL != nil {
		add(*p.ImageURL)
	}
	for _, ref := range p.ImageURLs {
		add(ref)
	}
	return images
}

// PrimaryImage returns the first image reference, or fallback when the product has none
func (p *Product) PrimaryImage(fallback string) string {
	if gallery := p.Gallery(); len(gallery) > 0 {
		return gallery[0]
	}
	return fallback
}

// ErrProductNotFound is returned when no active product matches
var ErrProductNotFound = shared.NewDomainError("NOT_FOUND", "Product not found")
