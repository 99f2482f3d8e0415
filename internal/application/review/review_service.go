package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopflux/storefront/internal/domain/catalog"
	"github.com/shopflux/storefront/internal/domain/review"
	"github.com/shopflux/storefront/internal/domain/shared"
	"github.com/shopflux/storefront/internal/infrastructure/telemetry"
)

// ListReviewsQuery holds the paging and ordering of a review listing
type ListReviewsQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=created_at rating helpful_count"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// ReviewResponse is one published review
type ReviewResponse struct {
	ID                 uuid.UUID `json:"id"`
	Rating             int       `json:"rating"`
	Title              string    `json:"title,omitempty"`
	Comment            string    `json:"comment,omitempty"`
	IsVerifiedPurchase bool      `json:"is_verified_purchase"`
	HelpfulCount       int       `json:"helpful_count"`
	CreatedAt          time.Time `json:"created_at"`
}

// HistogramBucket is the review count of one star rating
type HistogramBucket struct {
	Stars   int     `json:"stars"`
	Count   int64   `json:"count"`
	Percent float64 `json:"percent"`
}

// ProductReviewsResponse is a page of reviews with the product's rating breakdown
type ProductReviewsResponse struct {
	shared.Paginated[ReviewResponse]
	// Histogram lists 5 stars first
	Histogram []HistogramBucket `json:"histogram"`
}

// ReviewService reads the reviews of catalog products
type ReviewService struct {
	reviewRepo  review.ReviewRepository
	productRepo catalog.ProductRepository
}

// NewReviewService creates a new ReviewService
func NewReviewService(reviewRepo review.ReviewRepository, productRepo catalog.ProductRepository) *ReviewService {
	return &ReviewService{reviewRepo: reviewRepo, productRepo: productRepo}
}

// ListForProduct returns one page of an active product's reviews and its rating histogram
func (s *ReviewService) ListForProduct(ctx context.Context, productID uuid.UUID, q ListReviewsQuery) (*ProductReviewsResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "review", "list_for_product",
		telemetry.WithAttribute(telemetry.SpanAttrProductID, productID.String()))
	defer span.End()

	if _, err := s.productRepo.FindActiveByID(ctx, productID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, catalog.ErrProductNotFound
		}
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	filter := shared.DefaultFilter()
	filter.PageSize = 10
	if q.Page > 0 {
		filter.Page = q.Page
	}
	if q.PageSize > 0 {
		filter.PageSize = q.PageSize
	}
	if q.OrderBy != "" {
		filter.OrderBy = q.OrderBy
	}
	if q.OrderDir != "" {
		filter.OrderDir = q.OrderDir
	}

	reviews, err := s.reviewRepo.FindByProduct(ctx, productID, filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load reviews: %w", err)
	}
	total, err := s.reviewRepo.CountByProduct(ctx, productID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to count reviews: %w", err)
	}
	histogram, err := s.reviewRepo.RatingHistogram(ctx, productID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load rating histogram: %w", err)
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrResults, len(reviews))

	items := make([]ReviewResponse, 0, len(reviews))
	for _, r := range reviews {
		items = append(items, toReviewResponse(r))
	}

	return &ProductReviewsResponse{
		Paginated: shared.NewPaginated(items, total, filter.Page, filter.PageSize),
		Histogram: toHistogram(histogram),
	}, nil
}

func toReviewResponse(r review.Review) ReviewResponse {
	resp := ReviewResponse{
		ID:                 r.ID,
		Rating:             r.Rating,
		IsVerifiedPurchase: r.IsVerifiedPurchase,
		HelpfulCount:       r.HelpfulCount,
		CreatedAt:          r.CreatedAt,
	}
	if r.Title != nil {
		resp.Title = *r.Title
	}
	if r.Comment != nil {
		resp.Comment = *r.Comment
	}
	return resp
}

// toHistogram converts counts to buckets; percentages are rounded to one decimal
func toHistogram(h review.Histogram) []HistogramBucket {
	total := h.Total()
	buckets := make([]HistogramBucket, 0, len(h))
	for stars := len(h); stars >= 1; stars-- {
		count := h[stars-1]
		var pct float64
		if total > 0 {
			pct = float64(count*1000/total) / 10
		}
		buckets = append(buckets, HistogramBucket{Stars: stars, Count: count, Percent: pct})
	}
	return buckets
}
