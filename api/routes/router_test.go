package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuseats/campuseats-backend/internal/catalog"
	"github.com/campuseats/campuseats-backend/internal/favorites"
	"github.com/campuseats/campuseats-backend/internal/orders"
	"github.com/campuseats/campuseats-backend/pkg/config"
	"github.com/campuseats/campuseats-backend/pkg/db/models"
	"github.com/campuseats/campuseats-backend/pkg/enums"
	"github.com/campuseats/campuseats-backend/pkg/metrics"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubOrders struct {
	cancelled []int64
	listed    []string
}

func (s *stubOrders) CreateOrder(context.Context, orders.CreateOrderInput) (*orders.CreateOrderResult, error) {
	return &orders.CreateOrderResult{OrderID: 1}, nil
}

func (s *stubOrders) ListByUsername(_ context.Context, username string) ([]orders.OrderView, error) {
	s.listed = append(s.listed, username)
	return nil, nil
}

func (s *stubOrders) Cancel(_ context.Context, orderID int64) error {
	s.cancelled = append(s.cancelled, orderID)
	return nil
}

func (s *stubOrders) UpdateStatus(_ context.Context, input orders.UpdateStatusInput) (*models.Order, error) {
	return &models.Order{ID: input.OrderID, Status: enums.OrderStatusConfirmed}, nil
}

func (s *stubOrders) ListIncomplete(context.Context, time.Time, int) ([]orders.IncompleteOrder, error) {
	return nil, nil
}

func (s *stubOrders) CancelIncomplete(context.Context, int64) (bool, error) { return false, nil }

type stubFavorites struct{}

func (stubFavorites) Create(context.Context, favorites.CreateInput) (*models.Favorite, error) {
	return &models.Favorite{ID: 1}, nil
}

func (stubFavorites) List(context.Context, string, int) (favorites.PageDTO, error) {
	return favorites.PageDTO{Favorites: []favorites.FavoriteDTO{}}, nil
}

type stubCatalog struct{}

func (stubCatalog) Items(context.Context, string, int) ([]catalog.ItemDTO, error) { return nil, nil }

func (stubCatalog) Vendors(context.Context) ([]catalog.VendorDTO, error) { return nil, nil }

func (stubCatalog) Search(context.Context, string, int) (catalog.SearchResult, error) {
	return catalog.SearchResult{}, nil
}

func testRouter(t *testing.T, ordersSvc *stubOrders) http.Handler {
	t.Helper()
	reg := prometheus.NewRegistry()
	cronMetrics := metrics.NewCronJobMetrics(reg)
	cronMetrics.IncSuccess("partial-order-reconcile")

	return NewRouter(RouterParams{
		Config:    &config.Config{App: config.AppConfig{Env: "test", CORSOrigins: "*"}},
		DB:        stubPinger{},
		Redis:     stubPinger{},
		Gatherer:  reg,
		Orders:    ordersSvc,
		Favorites: stubFavorites{},
		Catalog:   stubCatalog{},
	})
}

func TestRoutesAreRegistered(t *testing.T) {
	router := testRouter(t, &stubOrders{})
	cases := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/health/live", "", http.StatusOK},
		{http.MethodGet, "/health/ready", "", http.StatusOK},
		{http.MethodPost, "/orders/create", `{"customer_id":"ana"}`, http.StatusCreated},
		{http.MethodGet, "/orders/ana", "", http.StatusOK},
		{http.MethodPut, "/orders/cancel/4", "", http.StatusOK},
		{http.MethodPut, "/orders/4/status", `{"vendor_username":"v","status":"confirmed"}`, http.StatusOK},
		{http.MethodPost, "/favorites/create", `{"customer_id":"ana","vendor_username":"v","item_name":"Tea"}`, http.StatusCreated},
		{http.MethodGet, "/favorites/ana", "", http.StatusOK},
		{http.MethodGet, "/items", "", http.StatusOK},
		{http.MethodGet, "/vendors", "", http.StatusOK},
		{http.MethodGet, "/search?q=tea", "", http.StatusOK},
		{http.MethodGet, "/nope", "", http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body)))
			assert.Equal(t, tc.want, w.Code, w.Body.String())
		})
	}
}

func TestCancelAndListDoNotCollide(t *testing.T) {
	svc := &stubOrders{}
	router := testRouter(t, svc)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPut, "/orders/cancel/12", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/orders/cancel", nil))

	assert.Equal(t, []int64{12}, svc.cancelled)
	assert.Equal(t, []string{"cancel"}, svc.listed)
}

func TestMetricsEndpoint(t *testing.T) {
	router := testRouter(t, &stubOrders{})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "campuseats_cron_job_runs_total")
}

func TestRequestIDHeaderIsSet(t *testing.T) {
	router := testRouter(t, &stubOrders{})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}
