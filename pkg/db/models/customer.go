package models

import "time"

// Customer is a student account. Username is the display handle orders are
// placed under; it is not unique in the schema.
type Customer struct {
	ID        int64     `gorm:"column:customer_id;primaryKey;autoIncrement"`
	Username  string    `gorm:"column:username;not null;index:customers_username_idx"`
	FullName  string    `gorm:"column:full_name"`
	Email     *string   `gorm:"column:email"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Customer) TableName() string { return "customers" }
