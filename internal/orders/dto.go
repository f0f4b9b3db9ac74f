package orders

import (
	"time"

	"github.com/campuseats/campuseats-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// CreateOrderLine is one line of an order submission. VendorUsername must
// name the order's vendor.
type CreateOrderLine struct {
	ID             string          `json:"id"`
	Quantity       int             `json:"quantity" validate:"gt=0"`
	Price          decimal.Decimal `json:"Price"`
	VendorUsername string          `json:"vendor_username" validate:"required"`
	ItemName       string          `json:"item_name" validate:"required"`
}

// CreateOrderInput is the body of POST /orders/create. CustomerID and
// VendorID carry usernames, not numeric ids.
type CreateOrderInput struct {
	CustomerID string            `json:"customer_id" validate:"required"`
	VendorID   string            `json:"vendor_id" validate:"required"`
	TotalPrice decimal.Decimal   `json:"total_price"`
	Status     string            `json:"status"`
	Items      []CreateOrderLine `json:"items" validate:"required,min=1,dive"`
}

// CreateOrderResult reports the stored order.
type CreateOrderResult struct {
	OrderID    int64           `json:"order_id"`
	TotalPrice decimal.Decimal `json:"total_price"`
	LineCount  int             `json:"line_count"`
}

// UpdateStatusInput is the body of PUT /orders/{orderId}/status.
type UpdateStatusInput struct {
	OrderID        int64  `json:"-"`
	VendorUsername string `json:"vendor_username" validate:"required"`
	Status         string `json:"status" validate:"required"`
}

// OrderItemView is one line of a listed order.
type OrderItemView struct {
	ItemName string          `json:"item_name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// OrderView is one order in GET /orders/{username}.
type OrderView struct {
	OrderID    int64             `json:"order_id"`
	OrderDate  time.Time         `json:"order_date"`
	TotalPrice decimal.Decimal   `json:"total_price"`
	Status     enums.OrderStatus `json:"status"`
	VendorName string            `json:"vendor_name"`
	Items      []OrderItemView   `json:"items"`
}

// orderRow is one row of the orders/items flat join. Item columns are null
// for an order with no stored lines.
type orderRow struct {
	OrderID    int64               `gorm:"column:order_id"`
	OrderDate  time.Time           `gorm:"column:order_date"`
	TotalPrice decimal.Decimal     `gorm:"column:total_price"`
	Status     enums.OrderStatus   `gorm:"column:status"`
	VendorName string              `gorm:"column:vendor_name"`
	ItemName   *string             `gorm:"column:item_name"`
	Quantity   *int                `gorm:"column:quantity"`
	Price      decimal.NullDecimal `gorm:"column:price"`
}

// IncompleteOrder is a pending order holding fewer items than it was
// created for.
type IncompleteOrder struct {
	OrderID   int64     `gorm:"column:order_id"`
	OrderDate time.Time `gorm:"column:order_date"`
	LineCount int       `gorm:"column:line_count"`
	ItemCount int       `gorm:"column:item_count"`
}
