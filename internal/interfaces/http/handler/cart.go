package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopflux/storefront/internal/application/shopping"
)

// Idempotency headers of the cart add endpoint
const (
	IdempotencyKeyHeader     = "Idempotency-Key"
	IdempotentReplayedHeader = "Idempotent-Replayed"
	maxIdempotencyKeyLength  = 128
)

// CartManager is the cart use case surface used by CartHandler
type CartManager interface {
	Get(ctx context.Context, userID uuid.UUID) (*shopping.CartResponse, error)
	AddItem(ctx context.Context, userID uuid.UUID, req shopping.AddToCartRequest, idempotencyKey string) (*shopping.CartResponse, error)
	UpdateItem(ctx context.Context, userID, productID uuid.UUID, req shopping.UpdateCartItemRequest) (*shopping.CartResponse, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*shopping.CartResponse, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

// CartHandler serves the signed-in user's cart
type CartHandler struct {
	BaseHandler
	cart CartManager
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cart CartManager) *CartHandler {
	return &CartHandler{cart: cart}
}

// Get godoc
// @ID           getCart
// @Summary      Get cart
// @Description  Cart lines priced at each product's current effective price
// @Tags         cart
// @Produce      json
// @Success      200 {object} APIResponse[shopping.CartResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /cart [get]
func (h *CartHandler) Get(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	cart, err := h.cart.Get(c.Request.Context(), userID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, cart)
}

// AddItem godoc
// @ID           addCartItem
// @Summary      Add to cart
// @Description  Adds a product or increments its line. A repeated Idempotency-Key returns the cart unchanged.
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Client key that makes retries safe"
// @Param        request body shopping.AddToCartRequest true "Product and quantity"
// @Success      200 {object} APIResponse[shopping.CartResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	key := c.GetHeader(IdempotencyKeyHeader)
	if len(key) > maxIdempotencyKeyLength {
		h.BadRequest(c, "Idempotency-Key is too long")
		return
	}

	var req shopping.AddToCartRequest
	if !h.bindJSON(c, &req) {
		return
	}

	cart, err := h.cart.AddItem(c.Request.Context(), userID, req, key)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	if cart.Replayed {
		c.Header(IdempotentReplayedHeader, "true")
	}
	h.Success(c, cart)
}

// UpdateItem godoc
// @ID           updateCartItem
// @Summary      Change cart quantity
// @Description  Replaces the quantity of a cart line; 0 removes the line
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        product_id path string true "Product ID" format(uuid)
// @Param        request body shopping.UpdateCartItemRequest true "New quantity"
// @Success      200 {object} APIResponse[shopping.CartResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /cart/items/{product_id} [put]
func (h *CartHandler) UpdateItem(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	productID, ok := h.parseUUIDParam(c, "product_id", "product ID")
	if !ok {
		return
	}

	var req shopping.UpdateCartItemRequest
	if !h.bindJSON(c, &req) {
		return
	}

	cart, err := h.cart.UpdateItem(c.Request.Context(), userID, productID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, cart)
}

// RemoveItem godoc
// @ID           removeCartItem
// @Summary      Remove from cart
// @Tags         cart
// @Produce      json
// @Param        product_id path string true "Product ID" format(uuid)
// @Success      200 {object} APIResponse[shopping.CartResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /cart/items/{product_id} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	productID, ok := h.parseUUIDParam(c, "product_id", "product ID")
	if !ok {
		return
	}

	cart, err := h.cart.RemoveItem(c.Request.Context(), userID, productID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, cart)
}

// Clear godoc
// @ID           clearCart
// @Summary      Empty the cart
// @Tags         cart
// @Success      204
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /cart [delete]
func (h *CartHandler) Clear(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	if err := h.cart.Clear(c.Request.Context(), userID); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}
