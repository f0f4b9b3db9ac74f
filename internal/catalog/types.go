package catalog

import (
	"github.com/shopspring/decimal"
)

// ItemDTO is a menu entry as listed by /items and /search.
type ItemDTO struct {
	ItemID         int64           `json:"item_id" gorm:"column:item_id"`
	ItemName       string          `json:"item_name" gorm:"column:item_name"`
	Description    *string         `json:"description,omitempty" gorm:"column:description"`
	Price          decimal.Decimal `json:"price" gorm:"column:price"`
	Category       *string         `json:"category,omitempty" gorm:"column:category"`
	ImageURL       *string         `json:"image_url,omitempty" gorm:"column:image_url"`
	Available      bool            `json:"available" gorm:"column:available"`
	VendorUsername string          `json:"vendor_username" gorm:"column:vendor_username"`
	StallName      string          `json:"stall_name" gorm:"column:stall_name"`
}

// VendorDTO is a stall as listed by /vendors and /search.
type VendorDTO struct {
	VendorID  int64   `json:"vendor_id" gorm:"column:vendor_id"`
	Username  string  `json:"username" gorm:"column:username"`
	StallName string  `json:"stall_name" gorm:"column:stall_name"`
	Location  *string `json:"location,omitempty" gorm:"column:location"`
	ImageURL  *string `json:"image_url,omitempty" gorm:"column:image_url"`
	IsOpen    bool    `json:"is_open" gorm:"column:is_open"`
}

// SearchResult groups the matches of a /search query.
type SearchResult struct {
	Items   []ItemDTO   `json:"items"`
	Vendors []VendorDTO `json:"vendors"`
}
