package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/campuseats/campuseats-backend/pkg/apiclient"
	"github.com/campuseats/campuseats-backend/pkg/enums"
)

type orderCreator interface {
	CreateOrder(ctx context.Context, req apiclient.CreateOrderRequest, idempotencyKey string) (int64, error)
}

// HTTPSubmitter places orders through the orders API.
type HTTPSubmitter struct {
	client orderCreator
}

func NewHTTPSubmitter(client orderCreator) (*HTTPSubmitter, error) {
	if client == nil {
		return nil, fmt.Errorf("api client required")
	}
	return &HTTPSubmitter{client: client}, nil
}

func (h *HTTPSubmitter) SubmitOrder(ctx context.Context, sub OrderSubmission, idempotencyKey string) (int64, error) {
	req := apiclient.CreateOrderRequest{
		CustomerID: sub.CustomerIdentifier,
		VendorID:   sub.VendorIdentifier,
		TotalPrice: sub.TotalPrice,
		Status:     sub.Status.String(),
		Items:      make([]apiclient.CreateOrderItem, 0, len(sub.Lines)),
	}
	for _, l := range sub.Lines {
		req.Items = append(req.Items, apiclient.CreateOrderItem{
			ID:             l.BasketID,
			Quantity:       l.Quantity,
			Price:          l.Price,
			VendorUsername: l.VendorUsername,
			ItemName:       l.ItemName,
		})
	}

	orderID, err := h.client.CreateOrder(ctx, req, idempotencyKey)
	if err != nil {
		return 0, classify(err)
	}
	return orderID, nil
}

// classify maps client errors onto submission stages.
func classify(err error) error {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		stage, perr := enums.ParseSubmissionStage(apiErr.Stage())
		if perr != nil {
			stage = enums.SubmissionStageRequest
		}
		return &StageError{
			Stage:     stage,
			OrderID:   apiErr.OrderID(),
			Retryable: apiErr.Status == http.StatusServiceUnavailable,
			Err:       err,
		}
	}
	return &StageError{
		Stage:     enums.SubmissionStageRequest,
		Retryable: apiclient.IsTransport(err),
		Err:       err,
	}
}
