package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuseats/campuseats-backend/pkg/money"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func respond(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func newTestClient(t *testing.T, rt roundTripFunc) *Client {
	t.Helper()
	c, err := New("http://api.test/", WithHTTPClient(&http.Client{Transport: rt}))
	require.NoError(t, err)
	return c
}

func TestCreateOrderSendsWireShape(t *testing.T) {
	var captured map[string]any
	var header http.Header
	var path string

	c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		path = req.URL.Path
		header = req.Header.Clone()
		raw, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &captured))
		return respond(http.StatusCreated, `{"success":true,"order_id":41}`), nil
	})

	id, err := c.CreateOrder(context.Background(), CreateOrderRequest{
		CustomerID: "alice",
		VendorID:   "stallA",
		TotalPrice: money.MustParse("50.00"),
		Status:     "pending",
		Items: []CreateOrderItem{{
			ID: "b-1", Quantity: 2, Price: money.MustParse("25.00"), VendorUsername: "stallA", ItemName: "Rice",
		}},
	}, "sess:abc")
	require.NoError(t, err)

	assert.Equal(t, int64(41), id)
	assert.Equal(t, "/orders/create", path)
	assert.Equal(t, "sess:abc", header.Get(IdempotencyHeader))
	assert.Equal(t, float64(50), captured["total_price"])
	items := captured["items"].([]any)
	first := items[0].(map[string]any)
	assert.Equal(t, float64(25), first["Price"])
	assert.Equal(t, "Rice", first["item_name"])
}

func TestServerFailureBecomesAPIError(t *testing.T) {
	c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return respond(http.StatusNotFound, `{"success":false,"code":"NOT_FOUND","message":"vendor \"ghost\" not found","details":{"stage":"vendor_resolution","entity_kind":"vendor","key":"ghost"}}`), nil
	})

	_, err := c.CreateOrder(context.Background(), CreateOrderRequest{}, "")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "NOT_FOUND", apiErr.Code)
	assert.Equal(t, "vendor_resolution", apiErr.Stage())
	assert.False(t, IsTransport(err))
}

func TestPartialWriteCarriesOrderID(t *testing.T) {
	c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return respond(http.StatusInternalServerError, `{"success":false,"code":"PARTIAL_WRITE","message":"order partially written","details":{"stage":"line_insert","order_id":12}}`), nil
	})

	_, err := c.CreateOrder(context.Background(), CreateOrderRequest{}, "")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, int64(12), apiErr.OrderID())
}

func TestNetworkFailureIsTransportError(t *testing.T) {
	c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})

	_, err := c.ListOrders(context.Background(), "alice")
	require.Error(t, err)
	assert.True(t, IsTransport(err))
}

func TestUnreadableBodyIsTransportError(t *testing.T) {
	c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return respond(http.StatusBadGateway, `<html>bad gateway</html>`), nil
	})

	_, err := c.CancelOrder(context.Background(), 3)
	assert.True(t, IsTransport(err))
}

func TestListOrdersEscapesUsername(t *testing.T) {
	var rawPath string
	c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		rawPath = req.URL.EscapedPath()
		return respond(http.StatusOK, `{"success":true,"orders":[{"order_id":1,"order_date":"2025-03-01T12:00:00Z","total_price":50,"status":"pending","vendor_name":"Stall A","items":[{"item_name":"Rice","quantity":2,"price":25}]}]}`), nil
	})

	orders, err := c.ListOrders(context.Background(), "jo doe")
	require.NoError(t, err)
	assert.Equal(t, "/orders/jo%20doe", rawPath)
	require.Len(t, orders, 1)
	assert.Equal(t, "50.00", money.Format(orders[0].TotalPrice))
	assert.Equal(t, 2, orders[0].Items[0].Quantity)
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New("::not a url")
	assert.Error(t, err)
}
