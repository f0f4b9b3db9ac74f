package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/campuseats/campuseats-backend/internal/orders"
	"github.com/campuseats/campuseats-backend/pkg/logger"
	"go.uber.org/multierr"
)

const (
	defaultReconcileGrace = 10 * time.Minute
	defaultReconcileBatch = 100
)

type incompleteOrders interface {
	ListIncomplete(ctx context.Context, cutoff time.Time, limit int) ([]orders.IncompleteOrder, error)
	CancelIncomplete(ctx context.Context, orderID int64) (bool, error)
}

type reconcileCounter interface {
	AddReconciled(n int)
}

type ReconcileJobParams struct {
	Logger  *logger.Logger
	Orders  incompleteOrders
	Counter reconcileCounter
	Grace   time.Duration
	Batch   int
}

// NewReconcileJob builds the job that cancels pending orders left with fewer
// items than they were created for.
func NewReconcileJob(params ReconcileJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders service required")
	}
	if params.Grace <= 0 {
		params.Grace = defaultReconcileGrace
	}
	if params.Batch <= 0 {
		params.Batch = defaultReconcileBatch
	}
	return &reconcileJob{
		logg:    params.Logger,
		orders:  params.Orders,
		counter: params.Counter,
		grace:   params.Grace,
		batch:   params.Batch,
		now:     time.Now,
	}, nil
}

type reconcileJob struct {
	logg    *logger.Logger
	orders  incompleteOrders
	counter reconcileCounter
	grace   time.Duration
	batch   int
	now     func() time.Time
}

func (j *reconcileJob) Name() string { return "partial-order-reconcile" }

func (j *reconcileJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.grace)
	pending, err := j.orders.ListIncomplete(ctx, cutoff, j.batch)
	if err != nil {
		return err
	}

	var errs error
	cancelled := 0
	for _, o := range pending {
		orderCtx := j.logg.WithFields(j.logg.WithOrderID(ctx, o.OrderID), map[string]any{
			"line_count": o.LineCount,
			"item_count": o.ItemCount,
		})
		changed, err := j.orders.CancelIncomplete(orderCtx, o.OrderID)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if !changed {
			j.logg.Debug(orderCtx, "order left pending before reconcile")
			continue
		}
		cancelled++
		j.logg.Warn(orderCtx, "cancelled partially written order")
	}
	if j.counter != nil {
		j.counter.AddReconciled(cancelled)
	}
	if cancelled > 0 {
		j.logg.Info(j.logg.WithField(ctx, "cancelled", cancelled), "reconcile pass finished")
	}
	return errs
}
