package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopflux/storefront/internal/domain/order"
	"github.com/shopflux/storefront/internal/domain/shared"
	"github.com/shopflux/storefront/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
)

// ErrOrderNotFound is returned for orders that do not exist or belong to someone else
var ErrOrderNotFound = shared.NewDomainError("NOT_FOUND", "Order not found")

// ListOrdersQuery holds the filters and paging of the order history
type ListOrdersQuery struct {
	Status   string `form:"status" binding:"omitempty,oneof=pending processing shipped delivered cancelled"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// OrderSummaryResponse is an order in the history list
type OrderSummaryResponse struct {
	ID             uuid.UUID       `json:"id"`
	OrderNumber    string          `json:"order_number"`
	Status         string          `json:"status"`
	IsOpen         bool            `json:"is_open"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Currency       string          `json:"currency"`
	TrackingNumber string          `json:"tracking_number,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// OrderItemResponse is one purchased line
type OrderItemResponse struct {
	ID              uuid.UUID       `json:"id"`
	ProductID       uuid.UUID       `json:"product_id"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	ProductSnapshot json.RawMessage `json:"product_snapshot,omitempty"`
}

// OrderResponse is an order with its lines and amounts
type OrderResponse struct {
	OrderSummaryResponse
	Subtotal        decimal.Decimal     `json:"subtotal"`
	TaxAmount       decimal.Decimal     `json:"tax_amount"`
	ShippingAmount  decimal.Decimal     `json:"shipping_amount"`
	DiscountAmount  decimal.Decimal     `json:"discount_amount"`
	ShippingAddress json.RawMessage     `json:"shipping_address,omitempty"`
	BillingAddress  json.RawMessage     `json:"billing_address,omitempty"`
	Notes           string              `json:"notes,omitempty"`
	ShippedAt       *time.Time          `json:"shipped_at,omitempty"`
	DeliveredAt     *time.Time          `json:"delivered_at,omitempty"`
	ItemCount       int                 `json:"item_count"`
	Items           []OrderItemResponse `json:"items"`
}

// OrderService reads the order history of a signed-in user
type OrderService struct {
	orderRepo order.OrderRepository
}

// NewOrderService creates a new OrderService
func NewOrderService(orderRepo order.OrderRepository) *OrderService {
	return &OrderService{orderRepo: orderRepo}
}

// List returns one page of the user's orders, newest first
func (s *OrderService) List(ctx context.Context, userID uuid.UUID, q ListOrdersQuery) (*shared.Paginated[OrderSummaryResponse], error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "list",
		telemetry.WithAttribute(telemetry.SpanAttrUserID, userID.String()))
	defer span.End()

	filter := shared.DefaultFilter()
	if q.Page > 0 {
		filter.Page = q.Page
	}
	if q.PageSize > 0 {
		filter.PageSize = q.PageSize
	}
	if q.Status != "" {
		status := order.Status(q.Status)
		if !status.IsValid() {
			return nil, shared.NewDomainError("INVALID_STATUS", "Unknown order status")
		}
		filter.Filters[order.FilterStatus] = status
	}

	orders, err := s.orderRepo.FindByUser(ctx, userID, filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	total, err := s.orderRepo.CountByUser(ctx, userID, filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrResults, len(orders))

	items := make([]OrderSummaryResponse, 0, len(orders))
	for i := range orders {
		items = append(items, toSummary(&orders[i]))
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Get returns one of the user's orders with its items
func (s *OrderService) Get(ctx context.Context, userID, orderID uuid.UUID) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "get",
		telemetry.WithAttribute(telemetry.SpanAttrUserID, userID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrOrderID, orderID.String()))
	defer span.End()

	o, err := s.orderRepo.FindByIDForUser(ctx, userID, orderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemResponse{
			ID:              item.ID,
			ProductID:       item.ProductID,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			TotalPrice:      item.TotalPrice,
			ProductSnapshot: item.ProductSnapshot,
		})
	}

	resp := &OrderResponse{
		OrderSummaryResponse: toSummary(o),
		Subtotal:             o.Subtotal,
		TaxAmount:            o.TaxAmount,
		ShippingAmount:       o.ShippingAmount,
		DiscountAmount:       o.DiscountAmount,
		ShippingAddress:      o.ShippingAddress,
		BillingAddress:       o.BillingAddress,
		ShippedAt:            o.ShippedAt,
		DeliveredAt:          o.DeliveredAt,
		ItemCount:            o.ItemCount(),
		Items:                items,
	}
	if o.Notes != nil {
		resp.Notes = *o.Notes
	}
	return resp, nil
}

func toSummary(o *order.Order) OrderSummaryResponse {
	s := OrderSummaryResponse{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		Status:      string(o.Status),
		IsOpen:      o.Status.IsOpen(),
		TotalAmount: o.TotalAmount,
		Currency:    o.Currency,
		CreatedAt:   o.CreatedAt,
	}
	if o.TrackingNumber != nil {
		s.TrackingNumber = *o.TrackingNumber
	}
	return s
}
