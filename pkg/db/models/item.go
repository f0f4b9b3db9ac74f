package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is a menu entry sold by one vendor.
type Item struct {
	ID          int64           `gorm:"column:item_id;primaryKey;autoIncrement"`
	VendorID    int64           `gorm:"column:vendor_id;not null;index:items_vendor_id_idx"`
	ItemName    string          `gorm:"column:item_name;not null"`
	Description *string         `gorm:"column:description"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	Category    *string         `gorm:"column:category"`
	ImageURL    *string         `gorm:"column:image_url"`
	Available   bool            `gorm:"column:available;not null;default:true"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	Vendor      *Vendor         `gorm:"foreignKey:VendorID;references:ID"`
}

func (Item) TableName() string { return "items" }
