package models

import "time"

// Vendor is a campus food stall.
type Vendor struct {
	ID        int64     `gorm:"column:vendor_id;primaryKey;autoIncrement"`
	Username  string    `gorm:"column:username;not null;index:vendors_username_idx"`
	StallName string    `gorm:"column:stall_name;not null"`
	Location  *string   `gorm:"column:location"`
	ImageURL  *string   `gorm:"column:image_url"`
	IsOpen    bool      `gorm:"column:is_open;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Vendor) TableName() string { return "vendors" }
