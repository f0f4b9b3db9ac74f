package orders

import (
	"context"
	"time"

	"github.com/campuseats/campuseats-backend/pkg/db/models"
	"github.com/campuseats/campuseats-backend/pkg/enums"
)

// Repository defines persistence operations for the orders tables.
type Repository interface {
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	CreateOrderItem(ctx context.Context, item *models.OrderItem) error
	DeleteOrder(ctx context.Context, orderID int64) error
	FindOrder(ctx context.Context, orderID int64) (*models.Order, error)
	UpdateStatusIf(ctx context.Context, orderID int64, from, to enums.OrderStatus) (bool, error)
	ListCustomerOrderRows(ctx context.Context, customerID int64) ([]orderRow, error)
	FindIncompletePending(ctx context.Context, cutoff time.Time, limit int) ([]IncompleteOrder, error)
}

// Resolver is the per-request lookup surface CreateOrder needs.
// *resolver.Session satisfies it.
type Resolver interface {
	Customer(ctx context.Context, username string) (*models.Customer, error)
	Vendor(ctx context.Context, username string) (*models.Vendor, error)
	Item(ctx context.Context, itemName, vendorUsername string) (*models.Item, error)
}

// Metrics records submission and transition outcomes.
type Metrics interface {
	ObserveSubmission(stage string, ok bool)
	ObserveTransition(actor, to string)
}

// Service exposes order creation, listing and status changes.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error)
	ListByUsername(ctx context.Context, username string) ([]OrderView, error)
	Cancel(ctx context.Context, orderID int64) error
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error)
	ListIncomplete(ctx context.Context, cutoff time.Time, limit int) ([]IncompleteOrder, error)
	CancelIncomplete(ctx context.Context, orderID int64) (bool, error)
}
