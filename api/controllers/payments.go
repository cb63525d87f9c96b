package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/praveensri2018/sivanyaAPI/api/middleware"
	"github.com/praveensri2018/sivanyaAPI/api/responses"
	"github.com/praveensri2018/sivanyaAPI/api/validators"
	paymentssvc "github.com/praveensri2018/sivanyaAPI/internal/payments"
	"github.com/praveensri2018/sivanyaAPI/pkg/enums"
	pkgerrors "github.com/praveensri2018/sivanyaAPI/pkg/errors"
	"github.com/praveensri2018/sivanyaAPI/pkg/logger"
)

type recordPaymentRequest struct {
	OrderID          *int64          `json:"order_id,omitempty" validate:"omitempty,gt=0"`
	Amount           decimal.Decimal `json:"amount" validate:"required"`
	PaymentMethod    string          `json:"payment_method" validate:"required"`
	PaymentReference string          `json:"payment_reference" validate:"required,max=100"`
}

// PaymentRecord registers a pending payment, optionally against an
// existing order.
func PaymentRecord(svc paymentssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload recordPaymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(payload.PaymentMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}

		payment, err := svc.Record(r.Context(), paymentssvc.RecordInput{
			UserID:    middleware.UserIDFromContext(r.Context()),
			OrderID:   payload.OrderID,
			Amount:    payload.Amount,
			Method:    method,
			Reference: validators.SanitizeString(payload.PaymentReference, 100),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, payment)
	}
}

type updatePaymentStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// PaymentUpdateStatus moves a payment through its lifecycle. Admin only.
func PaymentUpdateStatus(svc paymentssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		paymentID, err := pathID(r, "paymentID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updatePaymentStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParsePaymentStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment status"))
			return
		}

		payment, err := svc.UpdateStatus(r.Context(), paymentID, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payment)
	}
}

// PaymentRefund refunds a completed payment. Admin only.
func PaymentRefund(svc paymentssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		paymentID, err := pathID(r, "paymentID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payment, err := svc.Refund(r.Context(), paymentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payment)
	}
}

// PaymentListMine returns the caller's payments.
func PaymentListMine(svc paymentssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payments, err := svc.ListByUser(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payments)
	}
}

// PaymentListAll returns every payment. Admin only.
func PaymentListAll(svc paymentssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payments, err := svc.ListAll(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payments)
	}
}

// PaymentsByOrder returns the payments recorded against one order.
func PaymentsByOrder(svc paymentssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := pathID(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		payments, err := svc.ListByOrder(ctx, middleware.UserIDFromContext(ctx), middleware.IsAdminFromContext(ctx), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payments)
	}
}
