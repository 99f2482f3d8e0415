package shopping

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopflux/storefront/internal/domain/catalog"
	"github.com/shopflux/storefront/internal/domain/shared"
	"github.com/shopflux/storefront/internal/domain/shopping"
	"github.com/shopflux/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// WishlistService manages the saved products of a signed-in user
type WishlistService struct {
	wishlistRepo shopping.WishlistRepository
	productRepo  catalog.ProductRepository
	presenter    ProductPresenter
	logger       *zap.Logger
}

// NewWishlistService creates a new WishlistService
func NewWishlistService(
	wishlistRepo shopping.WishlistRepository,
	productRepo catalog.ProductRepository,
	presenter ProductPresenter,
	logger *zap.Logger,
) *WishlistService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WishlistService{
		wishlistRepo: wishlistRepo,
		productRepo:  productRepo,
		presenter:    presenter,
		logger:       logger,
	}
}

// List returns the saved products, newest first. Products that were removed
// from the catalog are listed without a product card.
func (s *WishlistService) List(ctx context.Context, userID uuid.UUID) (*WishlistResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "wishlist", "list",
		telemetry.WithAttribute(telemetry.SpanAttrUserID, userID.String()))
	defer span.End()

	items, err := s.wishlistRepo.FindByUser(ctx, userID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load wishlist: %w", err)
	}

	products := make(map[uuid.UUID]*catalog.Product, len(items))
	if len(items) > 0 {
		ids := make([]uuid.UUID, 0, len(items))
		for _, item := range items {
			ids = append(ids, item.ProductID)
		}
		found, err := s.productRepo.FindByIDs(ctx, ids)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to load wishlist products: %w", err)
		}
		for i := range found {
			products[found[i].ID] = &found[i]
		}
	}

	resp := &WishlistResponse{Items: make([]WishlistItemResponse, 0, len(items))}
	for _, item := range items {
		entry := WishlistItemResponse{ProductID: item.ProductID, AddedAt: item.CreatedAt}
		if p, ok := products[item.ProductID]; ok && p.IsActive && s.presenter != nil {
			card := s.presenter.Card(ctx, p, userID)
			entry.Product = &card
		}
		resp.Items = append(resp.Items, entry)
	}
	resp.Count = len(resp.Items)
	return resp, nil
}

// Add saves an active product and reports whether it was newly added
func (s *WishlistService) Add(ctx context.Context, userID uuid.UUID, req AddToWishlistRequest) (bool, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "wishlist", "add",
		telemetry.WithAttribute(telemetry.SpanAttrUserID, userID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrProductID, req.ProductID.String()))
	defer span.End()

	if _, err := s.productRepo.FindActiveByID(ctx, req.ProductID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return false, catalog.ErrProductNotFound
		}
		telemetry.RecordError(span, err)
		return false, fmt.Errorf("failed to load product: %w", err)
	}

	item, err := shopping.NewWishlistItem(userID, req.ProductID)
	if err != nil {
		return false, err
	}
	added, err := s.wishlistRepo.Add(ctx, item)
	if err != nil {
		telemetry.RecordError(span, err)
		return false, fmt.Errorf("failed to save wishlist item: %w", err)
	}
	return added, nil
}

// Remove drops a product from the wishlist; removing an unsaved product is not an error
func (s *WishlistService) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "wishlist", "remove",
		telemetry.WithAttribute(telemetry.SpanAttrUserID, userID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrProductID, productID.String()))
	defer span.End()

	if err := s.wishlistRepo.Remove(ctx, userID, productID); err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to remove wishlist item: %w", err)
	}
	return nil
}
