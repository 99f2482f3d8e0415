package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	orderapp "github.com/shopflux/storefront/internal/application/order"
	"github.com/shopflux/storefront/internal/domain/shared"
)

// OrderReader is the order history read side
type OrderReader interface {
	List(ctx context.Context, userID uuid.UUID, q orderapp.ListOrdersQuery) (*shared.Paginated[orderapp.OrderSummaryResponse], error)
	Get(ctx context.Context, userID, orderID uuid.UUID) (*orderapp.OrderResponse, error)
}

// OrderHandler serves the signed-in user's order history
type OrderHandler struct {
	BaseHandler
	orders OrderReader
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders OrderReader) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// List godoc
// @ID           listOrders
// @Summary      List my orders
// @Description  Own orders, newest first
// @Tags         orders
// @Produce      json
// @Param        status    query string false "Order status" Enums(pending, processing, shipped, delivered, cancelled)
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Success      200 {object} PageResponse[orderapp.OrderSummaryResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	var q orderapp.ListOrdersQuery
	if !h.bindQuery(c, &q) {
		return
	}

	page, err := h.orders.List(c.Request.Context(), userID, q)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Page(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get godoc
// @ID           getOrder
// @Summary      Get my order
// @Description  One own order with its lines. Orders of other users are not found.
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[orderapp.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	orderID, ok := h.parseUUIDParam(c, "id", "order ID")
	if !ok {
		return
	}

	o, err := h.orders.Get(c.Request.Context(), userID, orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, o)
}
