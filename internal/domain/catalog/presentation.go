package catalog

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// StarCount is the number of rating stars shown for a product
const StarCount = 5

// MaxRating is the upper bound of a product rating
const MaxRating = 5.0

var hundred = decimal.NewFromInt(100)

// StockState is the binary stock status of a product
type StockState string

const (
	StockStateInStock    StockState = "in_stock"
	StockStateOutOfStock StockState = "out_of_stock"
)

// Availability is the stock status plus the remaining count when in stock
type Availability struct {
	State StockState
	Count int
}

// OutOfStock is the availability of a product with nothing on hand
var OutOfStock = Availability{State: StockStateOutOfStock}

// InStock returns the availability of a product with count units on hand
func InStock(count int) Availability {
	return Availability{State: StockStateInStock, Count: count}
}

// IsInStock reports whether the product can be bought
func (a Availability) IsInStock() bool {
	return a.State == StockStateInStock
}

// Label returns the stock text shown next to the product
func (a Availability) Label() string {
	if a.IsInStock() {
		return fmt.Sprintf("In Stock (%d left)", a.Count)
	}
	return "Out of Stock"
}

// Presentation holds the display facts derived from a product.
// It is recomputed for every response and never stored.
type Presentation struct {
	EffectivePrice  decimal.Decimal
	HasDiscount     bool
	DiscountPercent int
	Availability    Availability
	StarFill        [StarCount]bool
}

// FilledStars returns the number of filled rating stars
func (p Presentation) FilledStars() int {
	n := 0
	for _, filled := range p.StarFill {
		if filled {
			n++
		}
	}
	return n
}

// DiscountBadge returns the badge text, such as "-25%", or "" without a discount
func (p Presentation) DiscountBadge() string {
	if !p.HasDiscount {
		return ""
	}
	return fmt.Sprintf("-%d%%", p.DiscountPercent)
}

// Derive computes the presentation of a product.
//
// A sale price always becomes the effective price, but it only counts as a
// discount when it is strictly below a positive base price. Negative stock is
// out of stock and the rating is clamped to [0, MaxRating] before rounding.
// Derive has no side effects.
func Derive(p *Product) Presentation {
	pres := Presentation{
		EffectivePrice: p.Price,
		Availability:   availabilityOf(p.StockQuantity),
		StarFill:       starFill(p.Rating),
	}

	if p.SalePrice == nil {
		return pres
	}

	sale := *p.SalePrice
	pres.EffectivePrice = sale

	if !p.Price.IsPositive() || !sale.LessThan(p.Price) {
		return pres
	}

	pres.HasDiscount = true
	pres.DiscountPercent = discountPercent(p.Price, sale)
	return pres
}

// discountPercent rounds half away from zero, so 12.5 becomes 13.
// A real discount never shows as 0%, and the result stays within [1, 100].
func discountPercent(base, sale decimal.Decimal) int {
	pct := base.Sub(sale).Div(base).Mul(hundred).Round(0).IntPart()
	if pct > 100 {
		return 100
	}
	if pct < 1 {
		return 1
	}
	return int(pct)
}

func availabilityOf(stock int) Availability {
	if stock > 0 {
		return InStock(stock)
	}
	return OutOfStock
}

func starFill(rating float64) [StarCount]bool {
	var fill [StarCount]bool
	filled := RoundedRating(rating)
	for i := range fill {
		fill[i] = i < filled
	}
	return fill
}

// RoundedRating clamps rating to [0, MaxRating] and rounds it to the nearest star
func RoundedRating(rating float64) int {
	if math.IsNaN(rating) || rating < 0 {
		return 0
	}
	if rating > MaxRating {
		rating = MaxRating
	}
	return int(math.Round(rating))
}

// ViewerActions tells which product actions are offered to the current visitor
type ViewerActions struct {
	CanAddToCart bool
	CanWishlist  bool
}

// ActionsFor gates cart and wishlist actions on a signed-in visitor,
// and adding to cart additionally on the product being in stock.
func ActionsFor(pres Presentation, signedIn bool) ViewerActions {
	return ViewerActions{
		CanAddToCart: signedIn && pres.Availability.IsInStock(),
		CanWishlist:  signedIn,
	}
}
