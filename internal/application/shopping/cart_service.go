package shopping

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	catalogapp "github.com/shopflux/storefront/internal/application/catalog"
	"github.com/shopflux/storefront/internal/domain/catalog"
	"github.com/shopflux/storefront/internal/domain/shared"
	"github.com/shopflux/storefront/internal/domain/shopping"
	"github.com/shopflux/storefront/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ProductPresenter builds product cards for cart and wishlist lines
type ProductPresenter interface {
	Card(ctx context.Context, p *catalog.Product, viewerID uuid.UUID) catalogapp.ProductCard
}

// CartSettings holds the cart limits
type CartSettings struct {
	MaxQuantity    int
	IdempotencyTTL time.Duration
	Currency       string
}

var (
	// ErrCartItemNotFound is returned when the cart has no line for a product
	ErrCartItemNotFound = shared.NewDomainError("NOT_FOUND", "Item is not in your cart")
	// ErrQuantityLimit is returned when a line would exceed the per-line maximum
	ErrQuantityLimit = shared.NewDomainError("QUANTITY_LIMIT", "Quantity exceeds the per-item limit")
)

// CartService manages the cart of a signed-in user
type CartService struct {
	cartRepo    shopping.CartRepository
	productRepo catalog.ProductRepository
	presenter   ProductPresenter
	idempotency shared.IdempotencyStore
	settings    CartSettings
	logger      *zap.Logger
	metrics     *telemetry.StorefrontMetrics
}

// NewCartService creates a new CartService. A nil idempotency store disables
// Idempotency-Key handling.
func NewCartService(
	cartRepo shopping.CartRepository,
	productRepo catalog.ProductRepository,
	presenter ProductPresenter,
	idempotency shared.IdempotencyStore,
	settings CartSettings,
	logger *zap.Logger,
) *CartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if settings.MaxQuantity <= 0 {
		settings.MaxQuantity = 99
	}
	if settings.IdempotencyTTL <= 0 {
		settings.IdempotencyTTL = 24 * time.Hour
	}
	if settings.Currency == "" {
		settings.Currency = "USD"
	}
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		presenter:   presenter,
		idempotency: idempotency,
		settings:    settings,
		logger:      logger,
	}
}

// SetMetrics sets the storefront metrics recorder. Nil disables recording.
func (s *CartService) SetMetrics(m *telemetry.StorefrontMetrics) {
	s.metrics = m
}

// Get returns the user's cart priced against current products
func (s *CartService) Get(ctx context.Context, userID uuid.UUID) (*CartResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "cart", "get",
		telemetry.WithAttribute(telemetry.SpanAttrUserID, userID.String()))
	defer span.End()

	cart, err := s.load(ctx, userID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return s.toResponse(ctx, cart), nil
}

// AddItem adds quantity units of a product, incrementing an existing line.
// A non-empty idempotencyKey is claimed before the cart changes; a key
// already claimed for this user returns the cart unchanged, and a failed
// request releases its key so the client can retry.
func (s *CartService) AddItem(ctx context.Context, userID uuid.UUID, req AddToCartRequest, idempotencyKey string) (*CartResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "cart", "add_item",
		telemetry.WithAttribute(telemetry.SpanAttrUserID, userID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrProductID, req.ProductID.String()))
	defer span.End()

	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrQuantity, quantity)

	key := s.idempotencyKey(userID, idempotencyKey)
	if key != "" {
		claimed, err := s.idempotency.MarkProcessed(ctx, key, s.settings.IdempotencyTTL)
		switch {
		case err != nil:
			s.logger.Warn("Idempotency claim failed, applying request", zap.Error(err))
			key = ""
		case !claimed:
			return s.replay(ctx, span, userID)
		}
	}

	if err := s.addItem(ctx, userID, req.ProductID, quantity); err != nil {
		telemetry.RecordError(span, err)
		if key != "" {
			if relErr := s.idempotency.Release(ctx, key); relErr != nil {
				s.logger.Warn("Failed to release idempotency key", zap.Error(relErr))
			}
		}
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordCartAdd(ctx, false)
	}

	return s.Get(ctx, userID)
}

func (s *CartService) replay(ctx context.Context, span trace.Span, userID uuid.UUID) (*CartResponse, error) {
	telemetry.AddEvent(span, "idempotent_replay")
	if s.metrics != nil {
		s.metrics.RecordCartAdd(ctx, true)
	}
	resp, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp.Replayed = true
	return resp, nil
}

func (s *CartService) addItem(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return shopping.ErrInvalidQuantity
	}
	product, err := s.activeProduct(ctx, productID)
	if err != nil {
		return err
	}
	if err := s.checkQuantity(product, quantity); err != nil {
		return err
	}

	item, err := shopping.NewCartItem(userID, productID, quantity)
	if err != nil {
		return err
	}
	limit := min(product.StockQuantity, s.settings.MaxQuantity)
	added, err := s.cartRepo.AddQuantity(ctx, item, limit)
	if err != nil {
		return fmt.Errorf("failed to save cart item: %w", err)
	}
	if !added {
		return s.refusedAdd(ctx, product, userID, quantity)
	}
	return nil
}

// refusedAdd names the limit an add of quantity units ran into
func (s *CartService) refusedAdd(ctx context.Context, product *catalog.Product, userID uuid.UUID, quantity int) error {
	item, err := s.cartRepo.FindItem(ctx, userID, product.ID)
	if err == nil {
		if err := s.checkQuantity(product, item.Quantity+quantity); err != nil {
			return err
		}
	}
	return ErrQuantityLimit
}

// UpdateItem replaces the quantity of a line; zero removes the line
func (s *CartService) UpdateItem(ctx context.Context, userID, productID uuid.UUID, req UpdateCartItemRequest) (*CartResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "cart", "update_item",
		telemetry.WithAttribute(telemetry.SpanAttrUserID, userID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrProductID, productID.String()))
	defer span.End()

	if req.Quantity == nil || *req.Quantity < 0 {
		return nil, shopping.ErrInvalidQuantity
	}
	if *req.Quantity == 0 {
		return s.RemoveItem(ctx, userID, productID)
	}

	item, err := s.cartRepo.FindItem(ctx, userID, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrCartItemNotFound
		}
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load cart item: %w", err)
	}

	product, err := s.activeProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := item.SetQuantity(*req.Quantity); err != nil {
		return nil, err
	}
	if err := s.checkQuantity(product, item.Quantity); err != nil {
		return nil, err
	}
	if err := s.cartRepo.Save(ctx, item); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save cart item: %w", err)
	}

	return s.Get(ctx, userID)
}

// RemoveItem deletes the user's line for a product
func (s *CartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*CartResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "cart", "remove_item",
		telemetry.WithAttribute(telemetry.SpanAttrUserID, userID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrProductID, productID.String()))
	defer span.End()

	if err := s.cartRepo.DeleteItem(ctx, userID, productID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrCartItemNotFound
		}
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to remove cart item: %w", err)
	}
	return s.Get(ctx, userID)
}

// Clear empties the user's cart
func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "cart", "clear",
		telemetry.WithAttribute(telemetry.SpanAttrUserID, userID.String()))
	defer span.End()

	if err := s.cartRepo.DeleteByUser(ctx, userID); err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func (s *CartService) activeProduct(ctx context.Context, productID uuid.UUID) (*catalog.Product, error) {
	product, err := s.productRepo.FindActiveByID(ctx, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	return product, nil
}

// checkQuantity enforces stock on hand and the per-line maximum
func (s *CartService) checkQuantity(product *catalog.Product, quantity int) error {
	if product.StockQuantity <= 0 {
		return shared.ErrInsufficientStock
	}
	if quantity > product.StockQuantity {
		return shared.NewDomainError("INSUFFICIENT_STOCK",
			fmt.Sprintf("Only %d left in stock", product.StockQuantity))
	}
	if quantity > s.settings.MaxQuantity {
		return shared.NewDomainError("QUANTITY_LIMIT",
			fmt.Sprintf("You can add at most %d of this item", s.settings.MaxQuantity))
	}
	return nil
}

func (s *CartService) idempotencyKey(userID uuid.UUID, key string) string {
	if key == "" || s.idempotency == nil {
		return ""
	}
	return "cart:" + userID.String() + ":" + key
}

func (s *CartService) load(ctx context.Context, userID uuid.UUID) (*shopping.Cart, error) {
	items, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	products := make(map[uuid.UUID]*catalog.Product, len(items))
	if len(items) > 0 {
		found, err := s.productRepo.FindByIDs(ctx, shopping.ProductIDs(items))
		if err != nil {
			return nil, fmt.Errorf("failed to load cart products: %w", err)
		}
		for i := range found {
			products[found[i].ID] = &found[i]
		}
	}
	return shopping.NewCart(userID, items, products), nil
}

func (s *CartService) toResponse(ctx context.Context, cart *shopping.Cart) *CartResponse {
	resp := &CartResponse{
		Items:    make([]CartLineResponse, 0, len(cart.Lines)),
		Currency: s.settings.Currency,
	}
	for _, line := range cart.Lines {
		lr := CartLineResponse{
			ProductID:     line.Item.ProductID,
			Quantity:      line.Item.Quantity,
			Available:     line.Available,
			UnitPrice:     line.Presentation.EffectivePrice,
			LineTotal:     line.LineTotal,
			LineTotalText: line.LineTotal.StringFixed(2),
			AddedAt:       line.Item.CreatedAt,
		}
		if line.Product != nil && s.presenter != nil {
			card := s.presenter.Card(ctx, line.Product, cart.UserID)
			lr.Product = &card
		}
		resp.Items = append(resp.Items, lr)
	}
	resp.ItemCount = cart.ItemCount()
	resp.Subtotal = cart.Subtotal()
	resp.SubtotalText = resp.Subtotal.StringFixed(2)
	return resp
}
