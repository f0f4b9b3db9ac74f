package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuseats/campuseats-backend/pkg/apiclient"
	"github.com/campuseats/campuseats-backend/pkg/enums"
	"github.com/campuseats/campuseats-backend/pkg/money"
)

type fakeCreator struct {
	req apiclient.CreateOrderRequest
	key string
	id  int64
	err error
}

func (f *fakeCreator) CreateOrder(ctx context.Context, req apiclient.CreateOrderRequest, key string) (int64, error) {
	f.req = req
	f.key = key
	return f.id, f.err
}

func TestHTTPSubmitterMapsSubmission(t *testing.T) {
	fc := &fakeCreator{id: 3}
	h, err := NewHTTPSubmitter(fc)
	require.NoError(t, err)

	sub := OrderSubmission{
		CustomerIdentifier: "alice",
		VendorIdentifier:   "stallA",
		Status:             enums.OrderStatusPending,
		TotalPrice:         money.MustParse("50.00"),
		Lines: []SubmissionLine{{
			BasketID: "b1", ItemName: "Rice", VendorUsername: "stallA", Quantity: 2, Price: money.MustParse("25.00"),
		}},
	}
	id, err := h.SubmitOrder(context.Background(), sub, "k1")
	require.NoError(t, err)

	assert.Equal(t, int64(3), id)
	assert.Equal(t, "k1", fc.key)
	assert.Equal(t, "alice", fc.req.CustomerID)
	assert.Equal(t, "stallA", fc.req.VendorID)
	assert.Equal(t, "pending", fc.req.Status)
	require.Len(t, fc.req.Items, 1)
	assert.Equal(t, "b1", fc.req.Items[0].ID)
	assert.Equal(t, "stallA", fc.req.Items[0].VendorUsername)
}

func TestHTTPSubmitterClassifiesErrors(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		stage     enums.SubmissionStage
		orderID   int64
		retryable bool
	}{
		{
			name:  "not found at vendor resolution",
			err:   &apiclient.APIError{Status: 404, Code: "NOT_FOUND", Details: map[string]any{"stage": "vendor_resolution"}},
			stage: enums.SubmissionStageVendorResolution,
		},
		{
			name:    "partial write",
			err:     &apiclient.APIError{Status: 500, Code: "PARTIAL_WRITE", Details: map[string]any{"stage": "line_insert", "order_id": float64(8)}},
			stage:   enums.SubmissionStageLineInsert,
			orderID: 8,
		},
		{
			name:  "validation without stage",
			err:   &apiclient.APIError{Status: 400, Code: "VALIDATION_ERROR"},
			stage: enums.SubmissionStageRequest,
		},
		{
			name:      "dependency outage",
			err:       &apiclient.APIError{Status: 503, Code: "DEPENDENCY_ERROR", Details: map[string]any{"stage": "order_row_created"}},
			stage:     enums.SubmissionStageOrderRowCreated,
			retryable: true,
		},
		{
			name:      "transport",
			err:       &apiclient.TransportError{Op: "POST /orders/create", Err: errors.New("timeout")},
			stage:     enums.SubmissionStageRequest,
			retryable: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, err := NewHTTPSubmitter(&fakeCreator{err: tc.err})
			require.NoError(t, err)

			_, err = h.SubmitOrder(context.Background(), OrderSubmission{Status: enums.OrderStatusPending}, "")
			var se *StageError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tc.stage, se.Stage)
			assert.Equal(t, tc.orderID, se.OrderID)
			assert.Equal(t, tc.retryable, se.Retryable)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}
