package orders

import (
	"context"
	"time"

	"github.com/campuseats/campuseats-backend/internal/repo"
	"github.com/campuseats/campuseats-backend/pkg/db/models"
	"github.com/campuseats/campuseats-backend/pkg/enums"
	"gorm.io/gorm"
)

type repository struct {
	repo.Base
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.DB(ctx).Omit("Items").Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) CreateOrderItem(ctx context.Context, item *models.OrderItem) error {
	return r.DB(ctx).Create(item).Error
}

func (r *repository) DeleteOrder(ctx context.Context, orderID int64) error {
	return r.DB(ctx).Where("order_id = ?", orderID).Delete(&models.Order{}).Error
}

func (r *repository) FindOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	var order models.Order
	if err := r.DB(ctx).Where("order_id = ?", orderID).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateStatusIf moves the order to the new status only while it still holds
// from. It reports whether a row changed.
func (r *repository) UpdateStatusIf(ctx context.Context, orderID int64, from, to enums.OrderStatus) (bool, error) {
	res := r.DB(ctx).
		Model(&models.Order{}).
		Where("order_id = ? AND status = ?", orderID, from).
		Updates(map[string]any{
			"status":     to,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) ListCustomerOrderRows(ctx context.Context, customerID int64) ([]orderRow, error) {
	var rows []orderRow
	err := r.DB(ctx).Raw(`
SELECT o.order_id, o.order_date, o.total_price, o.status,
       v.stall_name AS vendor_name,
       i.item_name, oi.quantity, oi.price
FROM orders o
JOIN vendors v ON v.vendor_id = o.vendor_id
LEFT JOIN order_items oi ON oi.order_id = o.order_id
LEFT JOIN items i ON i.item_id = oi.item_id
WHERE o.customer_id = ?
ORDER BY o.order_date DESC, o.order_id DESC, oi.order_item_id ASC`, customerID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindIncompletePending lists pending orders older than cutoff whose stored
// item count is below their declared line count, oldest first.
func (r *repository) FindIncompletePending(ctx context.Context, cutoff time.Time, limit int) ([]IncompleteOrder, error) {
	var rows []IncompleteOrder
	q := r.DB(ctx).Raw(`
SELECT o.order_id, o.order_date, o.line_count, COUNT(oi.order_item_id) AS item_count
FROM orders o
LEFT JOIN order_items oi ON oi.order_id = o.order_id
WHERE o.status = ? AND o.order_date < ?
GROUP BY o.order_id, o.order_date, o.line_count
HAVING COUNT(oi.order_item_id) < o.line_count
ORDER BY o.order_date ASC
LIMIT ?`, enums.OrderStatusPending, cutoff, limit)
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
