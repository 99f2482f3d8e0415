package order

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopflux/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Status is the fulfilment status of an order
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// IsOpen reports whether the order is still on its way to the customer
func (s Status) IsOpen() bool {
	return s == StatusPending || s == StatusProcessing || s == StatusShipped
}

// Order is a placed order as seen by the customer. Orders are read-only here.
type Order struct {
	shared.BaseEntity
	UserID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	OrderNumber     string          `gorm:"type:varchar(32);not null;uniqueIndex"`
	Status          Status          `gorm:"type:varchar(20);not null;default:'pending'"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TaxAmount       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ShippingAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	DiscountAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency        string          `gorm:"type:varchar(3);not null;default:'USD'"`
	ShippingAddress json.RawMessage `gorm:"type:jsonb"`
	BillingAddress  json.RawMessage `gorm:"type:jsonb"`
	TrackingNumber  *string         `gorm:"type:varchar(100)"`
	Notes           *string         `gorm:"type:text"`
	ShippedAt       *time.Time
	DeliveredAt     *time.Time
	Items           []OrderItem `gorm:"foreignKey:OrderID"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// ItemCount returns the number of units in the order
func (o *Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// OrderItem is one product line of an order, priced at purchase time
type OrderItem struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity        int             `gorm:"not null"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalPrice      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ProductSnapshot json.RawMessage `gorm:"type:jsonb"`
	CreatedAt       time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderItem) TableName() string {
	return "order_items"
}
