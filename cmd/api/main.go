package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/campuseats/campuseats-backend/api/routes"
	"github.com/campuseats/campuseats-backend/internal/app"
	"github.com/campuseats/campuseats-backend/internal/catalog"
	"github.com/campuseats/campuseats-backend/internal/favorites"
	"github.com/campuseats/campuseats-backend/pkg/metrics"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "api:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	a, err := app.Open(ctx, "api")
	if err != nil {
		return err
	}
	defer a.Close(context.WithoutCancel(ctx))
	if err := a.ConnectRedis(ctx); err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	ordersService, refs, err := a.Orders(metrics.NewOrderMetrics(registry))
	if err != nil {
		return err
	}
	favoritesService, err := favorites.NewService(favorites.ServiceParams{
		Repo:     favorites.NewRepository(a.DB.DB()),
		Resolver: refs,
	})
	if err != nil {
		return err
	}
	catalogService, err := catalog.NewService(catalog.ServiceParams{
		Repo:           catalog.NewRepository(a.DB.DB()),
		Cache:          a.Redis,
		Logger:         a.Logger,
		VendorCacheTTL: a.Config.Catalog.VendorCacheTTL,
	})
	if err != nil {
		return err
	}

	addr := ":" + firstNonZero(os.Getenv("PORT"), a.Config.App.Port)
	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:      a.Config,
			Logger:      a.Logger,
			DB:          a.DB,
			Redis:       a.Redis,
			Idempotency: a.Redis,
			Gatherer:    registry,
			Orders:      ordersService,
			Favorites:   favoritesService,
			Catalog:     catalogService,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx = a.Logger.WithField(a.Logger.WithFields(ctx, a.Fields()), "addr", addr)
	a.Logger.Info(ctx, "api.listening")

	serveErr := make(chan error, 1)
	go func() { serveErr <- server.ListenAndServe() }()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	a.Logger.Info(shutdownCtx, "api.stopped")
	return nil
}
