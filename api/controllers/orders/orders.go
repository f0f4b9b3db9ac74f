package orders

import (
	"net/http"

	"github.com/campuseats/campuseats-backend/api/responses"
	"github.com/campuseats/campuseats-backend/api/validators"
	internalorders "github.com/campuseats/campuseats-backend/internal/orders"
	pkgerrors "github.com/campuseats/campuseats-backend/pkg/errors"
	"github.com/campuseats/campuseats-backend/pkg/logger"
)

// Create stores one vendor order from a basket group.
func Create(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		// Field rules are checked by the service so failures carry their stage.
		var input internalorders.CreateOrderInput
		if err := validators.DecodeJSON(r, &input); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.CreateOrder(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(logg.WithOrderID(ctx, result.OrderID), "order.created")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"order_id":    result.OrderID,
			"total_price": result.TotalPrice,
		})
	}
}

// ListByUsername returns a customer's orders, newest first.
func ListByUsername(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		username, err := validators.PathString(r, "username")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		orders, err := svc.ListByUsername(ctx, username)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if orders == nil {
			orders = []internalorders.OrderView{}
		}
		responses.WriteSuccess(w, map[string]any{"orders": orders})
	}
}

// Cancel moves a pending order to cancelled.
func Cancel(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := validators.ParsePathID(r, "orderId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Cancel(ctx, orderID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"message":  "order cancelled",
			"order_id": orderID,
		})
	}
}

// UpdateStatus applies a vendor-driven status change.
func UpdateStatus(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := validators.ParsePathID(r, "orderId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var input internalorders.UpdateStatusInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		input.OrderID = orderID

		order, err := svc.UpdateStatus(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"order_id": order.ID,
			"status":   order.Status,
		})
	}
}
