// Package apiclient is the HTTP client the campus app uses to talk to the
// orders API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultTimeout               = 10 * time.Second
	IdempotencyHeader            = "Idempotency-Key"
	errorBodyReadLimit     int64 = 4096
	defaultBaseURL               = "http://localhost:8080"
)

// Client wraps the orders endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid api base url %q: %w", baseURL, err)
	}

	client := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// TransportError covers network failures, timeouts and unreadable responses.
// The request may be retried.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// APIError is a {success:false} response from the server.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
}

// Stage returns the submission stage the server reported, if any.
func (e *APIError) Stage() string {
	s, _ := e.Details["stage"].(string)
	return s
}

// OrderID returns the order id carried by partial-write failures.
func (e *APIError) OrderID() int64 {
	switch v := e.Details["order_id"].(type) {
	case float64:
		return int64(v)
	case json.Number:
		n, _ := v.Int64()
		return n
	}
	return 0
}

// IsTransport reports whether err is a retryable transport failure.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

type CreateOrderItem struct {
	ID             string          `json:"id"`
	Quantity       int             `json:"quantity"`
	Price          decimal.Decimal `json:"Price"`
	VendorUsername string          `json:"vendor_username"`
	ItemName       string          `json:"item_name"`
}

type CreateOrderRequest struct {
	CustomerID string            `json:"customer_id"`
	VendorID   string            `json:"vendor_id"`
	TotalPrice decimal.Decimal   `json:"total_price"`
	Status     string            `json:"status"`
	Items      []CreateOrderItem `json:"items"`
}

type OrderItem struct {
	ItemName string          `json:"item_name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type Order struct {
	OrderID    int64           `json:"order_id"`
	OrderDate  time.Time       `json:"order_date"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Status     string          `json:"status"`
	VendorName string          `json:"vendor_name"`
	Items      []OrderItem     `json:"items"`
}

// CreateOrder posts one vendor order. A non-empty idempotencyKey is sent so a
// replayed request returns the original result.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest, idempotencyKey string) (int64, error) {
	var resp struct {
		OrderID int64 `json:"order_id"`
	}
	headers := map[string]string{}
	if idempotencyKey != "" {
		headers[IdempotencyHeader] = idempotencyKey
	}
	if err := c.do(ctx, http.MethodPost, "/orders/create", req, headers, &resp); err != nil {
		return 0, err
	}
	return resp.OrderID, nil
}

// ListOrders returns a customer's orders, newest first.
func (c *Client) ListOrders(ctx context.Context, username string) ([]Order, error) {
	var resp struct {
		Orders []Order `json:"orders"`
	}
	if err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(username), nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Orders, nil
}

// CancelOrder cancels a pending order and returns the server message.
func (c *Client) CancelOrder(ctx context.Context, orderID int64) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/orders/cancel/%d", orderID), nil, nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, headers map[string]string, out any) error {
	op := method + " " + path

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}

	var envelope struct {
		Success *bool          `json:"success"`
		Message string         `json:"message"`
		Code    string         `json:"code"`
		Details map[string]any `json:"details"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Success == nil {
		return &TransportError{Op: op, Err: fmt.Errorf("status %d: unreadable response %q", resp.StatusCode, truncate(raw))}
	}
	if !*envelope.Success || resp.StatusCode >= http.StatusBadRequest {
		return &APIError{
			Status:  resp.StatusCode,
			Code:    envelope.Code,
			Message: envelope.Message,
			Details: envelope.Details,
		}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
		}
	}
	return nil
}

func truncate(raw []byte) string {
	if int64(len(raw)) > errorBodyReadLimit {
		raw = raw[:errorBodyReadLimit]
	}
	return strings.TrimSpace(string(raw))
}
