// Package app holds the process bootstrap shared by the api and cron-worker
// binaries.
package app

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"

	"github.com/campuseats/campuseats-backend/internal/orders"
	"github.com/campuseats/campuseats-backend/internal/resolver"
	"github.com/campuseats/campuseats-backend/pkg/config"
	"github.com/campuseats/campuseats-backend/pkg/db"
	"github.com/campuseats/campuseats-backend/pkg/logger"
	"github.com/campuseats/campuseats-backend/pkg/metrics"
	"github.com/campuseats/campuseats-backend/pkg/migrate"
	"github.com/campuseats/campuseats-backend/pkg/redis"
)

type App struct {
	Config *config.Config
	Logger *logger.Logger
	DB     *db.Client
	Redis  *redis.Client

	closers []func() error
}

// Open loads .env and config, builds the logger, connects the database and
// applies dev migrations. Redis is connected separately by ConnectRedis.
func Open(ctx context.Context, service string) (*App, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.Service.Kind = service

	a := &App{
		Config: cfg,
		Logger: logger.New(logger.Options{
			ServiceName: service,
			Level:       logger.ParseLevel(cfg.App.LogLevel),
			WarnStack:   cfg.App.LogWarnStack,
			Console:     cfg.App.LogFormat == config.LogFormatConsole,
		}),
	}

	a.DB, err = db.New(ctx, cfg.DB, a.Logger)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	a.closers = append(a.closers, a.DB.Close)

	if err := migrate.MaybeRunDev(ctx, cfg, a.Logger, a.DB); err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("dev migrations: %w", err)
	}
	return a, nil
}

func (a *App) ConnectRedis(ctx context.Context) error {
	client, err := redis.New(ctx, a.Config.Redis, a.Logger)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	a.Redis = client
	a.closers = append(a.closers, client.Close)
	return nil
}

// Orders wires the order service and the resolver it shares with favorites.
func (a *App) Orders(m *metrics.OrderMetrics) (orders.Service, *resolver.Resolver, error) {
	refs, err := resolver.New(a.DB.DB(), resolver.WithRecorder(m))
	if err != nil {
		return nil, nil, fmt.Errorf("resolver: %w", err)
	}
	svc, err := orders.NewService(orders.ServiceParams{
		Repo:        orders.NewRepository(a.DB.DB()),
		Resolvers:   func() orders.Resolver { return refs.Session() },
		Metrics:     m,
		Logger:      a.Logger,
		Concurrency: a.Config.Orders.ResolveConcurrency,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("orders service: %w", err)
	}
	return svc, refs, nil
}

// Close releases connections in reverse order of opening.
func (a *App) Close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Logger.Error(ctx, "app.close_failed", err)
		}
	}
	a.closers = nil
}

// Fields are attached to every log line of a running binary.
func (a *App) Fields() map[string]any {
	return map[string]any{
		"env":          a.Config.App.Env,
		"service_kind": a.Config.Service.Kind,
		"db_driver":    a.Config.DB.Driver,
	}
}
