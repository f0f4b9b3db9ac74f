package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/campuseats/campuseats-backend/internal/app"
	"github.com/campuseats/campuseats-backend/internal/cron"
	"github.com/campuseats/campuseats-backend/pkg/metrics"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "cron-worker:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	a, err := app.Open(ctx, "cron-worker")
	if err != nil {
		return err
	}
	defer a.Close(context.WithoutCancel(ctx))
	if err := a.ConnectRedis(ctx); err != nil {
		return err
	}
	ctx = a.Logger.WithFields(ctx, a.Fields())

	orderMetrics := metrics.NewOrderMetrics(prometheus.DefaultRegisterer)
	ordersService, _, err := a.Orders(orderMetrics)
	if err != nil {
		return err
	}

	reconcile, err := cron.NewReconcileJob(cron.ReconcileJobParams{
		Logger:  a.Logger,
		Orders:  ordersService,
		Counter: orderMetrics,
		Grace:   a.Config.Cron.ReconcileGrace,
		Batch:   a.Config.Cron.ReconcileBatch,
	})
	if err != nil {
		return err
	}
	registry, err := cron.NewRegistry(reconcile)
	if err != nil {
		return err
	}

	env := a.Config.App.Env
	if env == "" {
		env = "local"
	}
	lock, err := cron.NewRedisLock(a.Redis, a.Redis.LockKey("cron-worker:"+env), a.Config.Cron.LockTTL)
	if err != nil {
		return err
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   a.Logger,
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: a.Config.Cron.Interval,
	})
	if err != nil {
		return err
	}

	a.Logger.Info(ctx, "cron-worker.started")
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	a.Logger.Info(ctx, "cron-worker.stopped")
	return nil
}
