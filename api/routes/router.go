package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/campuseats/campuseats-backend/api/controllers"
	catalogcontrollers "github.com/campuseats/campuseats-backend/api/controllers/catalog"
	favoritecontrollers "github.com/campuseats/campuseats-backend/api/controllers/favorites"
	ordercontrollers "github.com/campuseats/campuseats-backend/api/controllers/orders"
	"github.com/campuseats/campuseats-backend/api/middleware"
	"github.com/campuseats/campuseats-backend/internal/catalog"
	"github.com/campuseats/campuseats-backend/internal/favorites"
	"github.com/campuseats/campuseats-backend/internal/orders"
	"github.com/campuseats/campuseats-backend/pkg/config"
	"github.com/campuseats/campuseats-backend/pkg/logger"
	"github.com/campuseats/campuseats-backend/pkg/redis"
)

// RouterParams carries everything the HTTP surface is built from. A nil
// Idempotency store disables replay; a nil Gatherer hides /metrics.
type RouterParams struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          controllers.Pinger
	Redis       controllers.Pinger
	Idempotency redis.IdempotencyStore
	Gatherer    prometheus.Gatherer
	Orders      orders.Service
	Favorites   favorites.Service
	Catalog     catalog.Service
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.AllowedOrigins()),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"db":    p.DB,
			"redis": p.Redis,
		}))
	})
	if p.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	}

	idempotent := middleware.Idempotency(p.Idempotency, cfg.Idempotency.TTL, logg)
	r.With(idempotent).Post("/orders/create", ordercontrollers.Create(p.Orders, logg))
	r.Put("/orders/cancel/{orderId}", ordercontrollers.Cancel(p.Orders, logg))
	r.Put("/orders/{orderId}/status", ordercontrollers.UpdateStatus(p.Orders, logg))
	r.Get("/orders/{username}", ordercontrollers.ListByUsername(p.Orders, logg))

	r.Post("/favorites/create", favoritecontrollers.Create(p.Favorites, logg))
	r.Get("/favorites/{username}", favoritecontrollers.List(p.Favorites, logg))

	r.Get("/items", catalogcontrollers.Items(p.Catalog, logg))
	r.Get("/vendors", catalogcontrollers.Vendors(p.Catalog, logg))
	r.Get("/search", catalogcontrollers.Search(p.Catalog, logg))

	return r
}
