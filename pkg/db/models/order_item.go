package models

import "github.com/shopspring/decimal"

// OrderItem captures quantity and the price at order time.
type OrderItem struct {
	ID       int64           `gorm:"column:order_item_id;primaryKey;autoIncrement"`
	OrderID  int64           `gorm:"column:order_id;not null;index:order_items_order_id_idx"`
	ItemID   int64           `gorm:"column:item_id;not null"`
	Quantity int             `gorm:"column:quantity;not null"`
	Price    decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
}

func (OrderItem) TableName() string { return "order_items" }
