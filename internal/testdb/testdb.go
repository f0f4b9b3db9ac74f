// Package testdb opens isolated in-memory sqlite databases carrying the
// campus schema for package tests.
package testdb

import (
	"fmt"
	"testing"
	"time"

	"github.com/campuseats/campuseats-backend/pkg/db/models"
	"github.com/campuseats/campuseats-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var schema = []string{
	`CREATE TABLE customers (
  customer_id INTEGER PRIMARY KEY AUTOINCREMENT,
  username TEXT NOT NULL,
  full_name TEXT NOT NULL DEFAULT '',
  email TEXT,
  created_at DATETIME
);`,
	`CREATE TABLE vendors (
  vendor_id INTEGER PRIMARY KEY AUTOINCREMENT,
  username TEXT NOT NULL,
  stall_name TEXT NOT NULL,
  location TEXT,
  image_url TEXT,
  is_open INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME
);`,
	`CREATE TABLE items (
  item_id INTEGER PRIMARY KEY AUTOINCREMENT,
  vendor_id INTEGER NOT NULL,
  item_name TEXT NOT NULL,
  description TEXT,
  price NUMERIC NOT NULL,
  category TEXT,
  image_url TEXT,
  available INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME
);`,
	`CREATE TABLE orders (
  order_id INTEGER PRIMARY KEY AUTOINCREMENT,
  customer_id INTEGER NOT NULL,
  vendor_id INTEGER NOT NULL,
  order_date DATETIME NOT NULL,
  total_price NUMERIC NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  line_count INTEGER NOT NULL DEFAULT 0,
  updated_at DATETIME
);`,
	`CREATE TABLE order_items (
  order_item_id INTEGER PRIMARY KEY AUTOINCREMENT,
  order_id INTEGER NOT NULL,
  item_id INTEGER NOT NULL,
  quantity INTEGER NOT NULL CHECK (quantity > 0),
  price NUMERIC NOT NULL
);`,
	`CREATE TABLE favorites (
  favorite_id INTEGER PRIMARY KEY AUTOINCREMENT,
  customer_id INTEGER NOT NULL,
  vendor_id INTEGER NOT NULL,
  item_id INTEGER NOT NULL,
  created_at DATETIME,
  UNIQUE (customer_id, item_id)
);`,
}

// Open returns a fresh database private to t.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range schema {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

func Customer(t *testing.T, db *gorm.DB, username string) models.Customer {
	t.Helper()
	c := models.Customer{Username: username, FullName: username}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func Vendor(t *testing.T, db *gorm.DB, username string) models.Vendor {
	t.Helper()
	v := models.Vendor{Username: username, StallName: username + " stall", IsOpen: true}
	require.NoError(t, db.Create(&v).Error)
	return v
}

func Item(t *testing.T, db *gorm.DB, vendorID int64, name, price string) models.Item {
	t.Helper()
	it := models.Item{
		VendorID:  vendorID,
		ItemName:  name,
		Price:     decimal.RequireFromString(price),
		Available: true,
	}
	require.NoError(t, db.Create(&it).Error)
	return it
}

// Order inserts an order row with the given status, date and declared line
// count and no items.
func Order(t *testing.T, db *gorm.DB, customerID, vendorID int64, status enums.OrderStatus, at time.Time, lineCount int) models.Order {
	t.Helper()
	o := models.Order{
		CustomerID: customerID,
		VendorID:   vendorID,
		OrderDate:  at,
		TotalPrice: decimal.Zero,
		Status:     status,
		LineCount:  lineCount,
	}
	require.NoError(t, db.Create(&o).Error)
	return o
}
