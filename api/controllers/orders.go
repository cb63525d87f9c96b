package controllers

import (
	"net/http"

	"github.com/praveensri2018/sivanyaAPI/api/middleware"
	"github.com/praveensri2018/sivanyaAPI/api/responses"
	"github.com/praveensri2018/sivanyaAPI/api/validators"
	orderssvc "github.com/praveensri2018/sivanyaAPI/internal/orders"
	"github.com/praveensri2018/sivanyaAPI/pkg/enums"
	pkgerrors "github.com/praveensri2018/sivanyaAPI/pkg/errors"
	"github.com/praveensri2018/sivanyaAPI/pkg/logger"
	"github.com/praveensri2018/sivanyaAPI/pkg/types"
)

type placeOrderRequest struct {
	PaymentReference string         `json:"payment_reference" validate:"required,max=100"`
	ShippingAddress  *types.Address `json:"shipping_address" validate:"required"`
}

// OrderPlace turns the caller's cart into an order against a completed
// payment.
func OrderPlace(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload placeOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		order, err := svc.Place(ctx, orderssvc.PlaceInput{
			UserID:           middleware.UserIDFromContext(ctx),
			Tier:             middleware.TierFromContext(ctx),
			PaymentReference: validators.SanitizeString(payload.PaymentReference, 100),
			ShippingAddress:  payload.ShippingAddress,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// OrderList returns the caller's orders, newest first.
func OrderList(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orders, err := svc.ListMine(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders)
	}
}

// OrderListAll returns every order. Admin only.
func OrderListAll(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orders, err := svc.ListAll(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders)
	}
}

// OrderGet returns one order with its lines.
func OrderGet(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := pathID(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		detail, err := svc.Get(ctx, middleware.UserIDFromContext(ctx), middleware.IsAdminFromContext(ctx), orderID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

type updateOrderStatusRequest struct {
	OrderStatus string `json:"order_status" validate:"required"`
}

// OrderUpdateStatus moves an order along its status machine. Admin only.
func OrderUpdateStatus(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := pathID(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseOrderStatus(payload.OrderStatus)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status"))
			return
		}

		order, err := svc.UpdateStatus(r.Context(), orderID, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// OrderCancel cancels the caller's own pending order.
func OrderCancel(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := pathID(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Cancel(r.Context(), middleware.UserIDFromContext(r.Context()), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
