package favorites

import (
	"time"

	"github.com/campuseats/campuseats-backend/pkg/pagination"
	"github.com/shopspring/decimal"
)

// CreateInput is the body of POST /favorites/create. CustomerID carries the
// customer's username.
type CreateInput struct {
	CustomerID     string `json:"customer_id" validate:"required"`
	VendorUsername string `json:"vendor_username" validate:"required"`
	ItemName       string `json:"item_name" validate:"required"`
}

// FavoriteDTO is one liked item in a favorites page.
type FavoriteDTO struct {
	FavoriteID     int64           `json:"favorite_id" gorm:"column:favorite_id"`
	ItemID         int64           `json:"item_id" gorm:"column:item_id"`
	ItemName       string          `json:"item_name" gorm:"column:item_name"`
	Price          decimal.Decimal `json:"price" gorm:"column:price"`
	ImageURL       *string         `json:"image_url,omitempty" gorm:"column:image_url"`
	Available      bool            `json:"available" gorm:"column:available"`
	VendorUsername string          `json:"vendor_username" gorm:"column:vendor_username"`
	StallName      string          `json:"stall_name" gorm:"column:stall_name"`
	CreatedAt      time.Time       `json:"created_at" gorm:"column:created_at"`
}

// PageDTO is the GET /favorites/{username} payload.
type PageDTO struct {
	Favorites  []FavoriteDTO   `json:"favorites"`
	Pagination pagination.Page `json:"pagination"`
}
