package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/campuseats/campuseats-backend/pkg/db/models"
	"github.com/campuseats/campuseats-backend/pkg/enums"
	pkgerrors "github.com/campuseats/campuseats-backend/pkg/errors"
	"github.com/campuseats/campuseats-backend/pkg/logger"
	"github.com/campuseats/campuseats-backend/pkg/money"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// DefaultResolveConcurrency bounds parallel item lookups per submission.
const DefaultResolveConcurrency = 4

// ResolverFactory hands out a fresh lookup memo per request.
type ResolverFactory func() Resolver

type noopMetrics struct{}

func (noopMetrics) ObserveSubmission(string, bool) {}
func (noopMetrics) ObserveTransition(string, string) {}

type service struct {
	repo        Repository
	resolvers   ResolverFactory
	metrics     Metrics
	logg        *logger.Logger
	concurrency int
	now         func() time.Time
}

// ServiceParams groups the service dependencies.
type ServiceParams struct {
	Repo        Repository
	Resolvers   ResolverFactory
	Metrics     Metrics
	Logger      *logger.Logger
	Concurrency int
	Now         func() time.Time
}

// NewService builds the orders service.
func NewService(p ServiceParams) (Service, error) {
	if p.Repo == nil {
		return nil, fmt.Errorf("orders repo required")
	}
	if p.Resolvers == nil {
		return nil, fmt.Errorf("resolver factory required")
	}
	if p.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if p.Metrics == nil {
		p.Metrics = noopMetrics{}
	}
	if p.Concurrency <= 0 {
		p.Concurrency = DefaultResolveConcurrency
	}
	if p.Now == nil {
		p.Now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		repo:        p.Repo,
		resolvers:   p.Resolvers,
		metrics:     p.Metrics,
		logg:        p.Logger,
		concurrency: p.Concurrency,
		now:         p.Now,
	}, nil
}

type pricedLine struct {
	price decimal.Decimal
	qty   int
}

func (l pricedLine) Price() decimal.Decimal { return l.price }
func (l pricedLine) Qty() int               { return l.qty }

// CreateOrder walks the submission stages in order. Item lookups run
// concurrently, item inserts one at a time. A lookup failure removes the
// order row again; an insert failure leaves it and reports a partial write.
func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error) {
	if err := validateCreate(input); err != nil {
		return nil, s.fail(enums.SubmissionStageRequest, 0, err)
	}

	lookups := s.resolvers()

	customer, err := lookups.Customer(ctx, input.CustomerID)
	if err != nil {
		return nil, s.fail(enums.SubmissionStageCustomerResolution, 0, err)
	}
	vendor, err := lookups.Vendor(ctx, input.VendorID)
	if err != nil {
		return nil, s.fail(enums.SubmissionStageVendorResolution, 0, err)
	}
	ctx = s.logg.WithVendor(ctx, vendor.Username)

	lines := make([]pricedLine, len(input.Items))
	for i, item := range input.Items {
		lines[i] = pricedLine{price: item.Price, qty: item.Quantity}
	}
	total := money.Total(lines)
	if !input.TotalPrice.IsZero() && !money.Round(input.TotalPrice).Equal(total) {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"client_total": money.Format(input.TotalPrice),
			"total":        money.Format(total),
		}), "client total disagrees with line total; using line total")
	}

	order, err := s.repo.CreateOrder(ctx, &models.Order{
		CustomerID: customer.ID,
		VendorID:   vendor.ID,
		OrderDate:  s.now(),
		TotalPrice: total,
		Status:     enums.OrderStatusPending,
		LineCount:  len(input.Items),
	})
	if err != nil {
		return nil, s.fail(enums.SubmissionStageOrderRowCreated, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order row"))
	}
	ctx = s.logg.WithOrderID(ctx, order.ID)

	items, err := s.resolveItems(ctx, lookups, input.Items)
	if err != nil {
		if delErr := s.repo.DeleteOrder(ctx, order.ID); delErr != nil {
			s.logg.Error(ctx, "remove order after failed item lookup", delErr)
			return nil, s.fail(enums.SubmissionStageItemResolution, order.ID, partialWrite(order.ID, delErr))
		}
		return nil, s.fail(enums.SubmissionStageItemResolution, 0, err)
	}

	for i, line := range input.Items {
		row := &models.OrderItem{
			OrderID:  order.ID,
			ItemID:   items[i].ID,
			Quantity: line.Quantity,
			Price:    line.Price,
		}
		if err := s.repo.CreateOrderItem(ctx, row); err != nil {
			s.logg.Error(s.logg.WithField(ctx, "inserted_lines", i), "insert order item", err)
			return nil, s.fail(enums.SubmissionStageLineInsert, order.ID, partialWrite(order.ID, err).
				WithDetails(map[string]any{"order_id": order.ID, "inserted_lines": i}))
		}
	}

	s.metrics.ObserveSubmission(enums.SubmissionStageComplete.String(), true)
	s.logg.Info(ctx, "order created")
	return &CreateOrderResult{
		OrderID:    order.ID,
		TotalPrice: total,
		LineCount:  len(input.Items),
	}, nil
}

func (s *service) resolveItems(ctx context.Context, lookups Resolver, lines []CreateOrderLine) ([]*models.Item, error) {
	items := make([]*models.Item, len(lines))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, line := range lines {
		i, line := i, line
		g.Go(func() error {
			item, err := lookups.Item(gctx, line.ItemName, line.VendorUsername)
			if err != nil {
				return err
			}
			items[i] = item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

func validateCreate(input CreateOrderInput) error {
	if strings.TrimSpace(input.CustomerID) == "" {
		return fieldError("customer_id", "customer_id is required")
	}
	if strings.TrimSpace(input.VendorID) == "" {
		return fieldError("vendor_id", "vendor_id is required")
	}
	if input.Status != "" && input.Status != enums.OrderStatusPending.String() {
		return fieldError("status", "new orders must be pending")
	}
	if len(input.Items) == 0 {
		return fieldError("items", "order has no items")
	}
	vendor := strings.TrimSpace(input.VendorID)
	for i, item := range input.Items {
		field := fmt.Sprintf("items[%d]", i)
		switch {
		case strings.TrimSpace(item.ItemName) == "":
			return fieldError(field+".item_name", "item_name is required")
		case item.Quantity <= 0:
			return fieldError(field+".quantity", "quantity must be a positive integer")
		case !item.Price.IsPositive():
			return fieldError(field+".Price", "price must be positive")
		case !strings.EqualFold(strings.TrimSpace(item.VendorUsername), vendor):
			return fieldError(field+".vendor_username", "line belongs to a different vendor")
		}
	}
	return nil
}

func fieldError(field, msg string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, msg).WithDetails(map[string]any{"field": field})
}

func partialWrite(orderID int64, cause error) *pkgerrors.Error {
	return pkgerrors.Wrap(pkgerrors.CodePartialWrite, cause, fmt.Sprintf("order %d partially written", orderID)).
		WithDetails(map[string]any{"order_id": orderID})
}

// fail stamps the stage (and order id, when one exists) into the error
// details and counts the failure.
func (s *service) fail(stage enums.SubmissionStage, orderID int64, err error) error {
	s.metrics.ObserveSubmission(stage.String(), false)
	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
	}
	details := map[string]any{}
	for k, v := range pkgerrors.DetailMap(typed) {
		details[k] = v
	}
	details["stage"] = stage.String()
	if orderID > 0 {
		details["order_id"] = orderID
	}
	return pkgerrors.Wrap(typed.Code(), err, typed.Message()).WithDetails(details)
}

func (s *service) ListByUsername(ctx context.Context, username string) ([]OrderView, error) {
	customer, err := s.resolvers().Customer(ctx, username)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListCustomerOrderRows(ctx, customer.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return groupOrderRows(rows), nil
}

// groupOrderRows folds the flat join into one view per order, keeping the
// query order of both orders and items.
func groupOrderRows(rows []orderRow) []OrderView {
	views := make([]OrderView, 0)
	index := map[int64]int{}
	for _, row := range rows {
		pos, ok := index[row.OrderID]
		if !ok {
			pos = len(views)
			index[row.OrderID] = pos
			views = append(views, OrderView{
				OrderID:    row.OrderID,
				OrderDate:  row.OrderDate,
				TotalPrice: row.TotalPrice,
				Status:     row.Status,
				VendorName: row.VendorName,
				Items:      make([]OrderItemView, 0),
			})
		}
		if row.ItemName == nil || row.Quantity == nil {
			continue
		}
		views[pos].Items = append(views[pos].Items, OrderItemView{
			ItemName: *row.ItemName,
			Quantity: *row.Quantity,
			Price:    row.Price.Decimal,
		})
	}
	return views
}

// Cancel applies the customer cancellation, which only a pending order allows.
func (s *service) Cancel(ctx context.Context, orderID int64) error {
	ctx = s.logg.WithOrderID(ctx, orderID)
	changed, err := s.repo.UpdateStatusIf(ctx, orderID, enums.OrderStatusPending, enums.OrderStatusCancelled)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
	}
	if !changed {
		order, err := s.findOrder(ctx, orderID)
		if err != nil {
			return err
		}
		return transitionError(enums.StatusActorCustomer, order, enums.OrderStatusCancelled)
	}
	s.metrics.ObserveTransition(string(enums.StatusActorCustomer), enums.OrderStatusCancelled.String())
	s.logg.Info(ctx, "order cancelled by customer")
	return nil
}

// UpdateStatus applies a vendor status change to one of the vendor's orders.
func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error) {
	ctx = s.logg.WithOrderID(ctx, input.OrderID)
	to, err := enums.ParseOrderStatus(input.Status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status").
			WithDetails(map[string]any{"field": "status"})
	}
	order, err := s.findOrder(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	vendor, err := s.resolvers().Vendor(ctx, input.VendorUsername)
	if err != nil {
		return nil, err
	}
	if vendor.ID != order.VendorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another vendor")
	}
	if !enums.CanTransition(enums.StatusActorVendor, order.Status, to) {
		return nil, transitionError(enums.StatusActorVendor, order, to)
	}
	changed, err := s.repo.UpdateStatusIf(ctx, order.ID, order.Status, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	if !changed {
		current, err := s.findOrder(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		return nil, transitionError(enums.StatusActorVendor, current, to)
	}
	s.metrics.ObserveTransition(string(enums.StatusActorVendor), to.String())
	s.logg.Info(s.logg.WithField(ctx, "status", to.String()), "order status updated")
	order.Status = to
	return order, nil
}

func (s *service) ListIncomplete(ctx context.Context, cutoff time.Time, limit int) ([]IncompleteOrder, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}
	rows, err := s.repo.FindIncompletePending(ctx, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("find incomplete orders: %w", err)
	}
	return rows, nil
}

// CancelIncomplete cancels a partially written order on behalf of the
// system. It reports false when the order left pending in the meantime.
func (s *service) CancelIncomplete(ctx context.Context, orderID int64) (bool, error) {
	if !enums.CanTransition(enums.StatusActorSystem, enums.OrderStatusPending, enums.OrderStatusCancelled) {
		return false, fmt.Errorf("system may not cancel pending orders")
	}
	changed, err := s.repo.UpdateStatusIf(ctx, orderID, enums.OrderStatusPending, enums.OrderStatusCancelled)
	if err != nil {
		return false, fmt.Errorf("cancel order %d: %w", orderID, err)
	}
	if changed {
		s.metrics.ObserveTransition(string(enums.StatusActorSystem), enums.OrderStatusCancelled.String())
	}
	return changed, nil
}

func (s *service) findOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found").
				WithDetails(map[string]any{
					"entity_kind": enums.EntityKindOrder.String(),
					"key":         fmt.Sprint(orderID),
				})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func transitionError(actor enums.StatusActor, order *models.Order, to enums.OrderStatus) error {
	allowed := enums.AllowedTransitions(actor, order.Status)
	msg := fmt.Sprintf("order is %s; cannot move to %s", order.Status, to)
	if actor == enums.StatusActorCustomer {
		msg = fmt.Sprintf("only pending orders can be cancelled; order is %s", order.Status)
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, msg).WithDetails(map[string]any{
		"order_id": order.ID,
		"from":     order.Status.String(),
		"to":       to.String(),
		"allowed":  enums.JoinStatuses(allowed),
	})
}
