package review

import (
	"github.com/google/uuid"
	"github.com/shopflux/storefront/internal/domain/shared"
)

// Review is a customer's rating of a product
type Review struct {
	shared.BaseEntity
	ProductID          uuid.UUID `gorm:"type:uuid;not null;index"`
	UserID             uuid.UUID `gorm:"type:uuid;not null;index"`
	Rating             int       `gorm:"not null"`
	Title              *string   `gorm:"type:varchar(200)"`
	Comment            *string   `gorm:"type:text"`
	IsVerifiedPurchase bool      `gorm:"not null;default:false"`
	HelpfulCount       int       `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Review) TableName() string {
	return "reviews"
}

// NewReview creates a review with a rating between 1 and 5 stars
func NewReview(productID, userID uuid.UUID, rating int) (*Review, error) {
	if rating < 1 || rating > 5 {
		return nil, shared.NewDomainError("INVALID_RATING", "Rating must be between 1 and 5")
	}
	return &Review{
		BaseEntity: shared.NewBaseEntity(),
		ProductID:  productID,
		UserID:     userID,
		Rating:     rating,
	}, nil
}

// Histogram counts reviews per star rating; index 0 holds 1-star reviews
type Histogram [5]int64

// Total returns the number of counted reviews
func (h Histogram) Total() int64 {
	var total int64
	for _, n := range h {
		total += n
	}
	return total
}

// Add counts n reviews with the given star rating; out-of-range ratings are ignored
func (h *Histogram) Add(stars int, n int64) {
	if stars < 1 || stars > 5 {
		return
	}
	h[stars-1] += n
}
