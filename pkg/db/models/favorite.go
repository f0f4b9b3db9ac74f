package models

import "time"

// Favorite links a customer to a liked item.
type Favorite struct {
	ID         int64     `gorm:"column:favorite_id;primaryKey;autoIncrement"`
	CustomerID int64     `gorm:"column:customer_id;not null;uniqueIndex:favorites_customer_item_key"`
	VendorID   int64     `gorm:"column:vendor_id;not null"`
	ItemID     int64     `gorm:"column:item_id;not null;uniqueIndex:favorites_customer_item_key"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Favorite) TableName() string { return "favorites" }
