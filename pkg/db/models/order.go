package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/campuseats/campuseats-backend/pkg/enums"
)

// Order is the per-vendor order created from one basket group. LineCount is
// the number of lines the order was created for; fewer stored items marks a
// partial write.
type Order struct {
	ID         int64             `gorm:"column:order_id;primaryKey;autoIncrement"`
	CustomerID int64             `gorm:"column:customer_id;not null;index:orders_customer_id_idx"`
	VendorID   int64             `gorm:"column:vendor_id;not null;index:orders_vendor_id_idx"`
	OrderDate  time.Time         `gorm:"column:order_date;not null"`
	TotalPrice decimal.Decimal   `gorm:"column:total_price;type:numeric(10,2);not null"`
	Status     enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	LineCount  int               `gorm:"column:line_count;not null;default:0"`
	UpdatedAt  time.Time         `gorm:"column:updated_at;autoUpdateTime"`
	Items      []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (Order) TableName() string { return "orders" }
