package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/praveensri2018/sivanyaAPI/pkg/db/models"
	"github.com/praveensri2018/sivanyaAPI/pkg/enums"
	pkgerrors "github.com/praveensri2018/sivanyaAPI/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Reconciler answers the two questions checkout asks of a payment: does a
// completed payment exist for this reference, and does its amount match the
// order total.
type Reconciler struct {
	repo Repository
}

// NewReconciler wires a reconciler over the payments repository.
func NewReconciler(repo Repository) (*Reconciler, error) {
	if repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	return &Reconciler{repo: repo}, nil
}

// VerifyCompleted loads the payment for the reference and requires it to be
// in Completed status. Any other status, or a missing reference, rejects the
// checkout.
func (r *Reconciler) VerifyCompleted(ctx context.Context, reference string) (*models.Payment, error) {
	if reference == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment reference is required")
	}
	payment, err := r.repo.FindByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodePayment, "Payment not completed")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find payment by reference")
	}
	if payment.Status != enums.PaymentStatusCompleted {
		return nil, pkgerrors.New(pkgerrors.CodePayment, "Payment not completed")
	}
	return payment, nil
}

// ReconcileAmount requires the paid amount to exactly equal the order total.
func (r *Reconciler) ReconcileAmount(payment *models.Payment, total decimal.Decimal) error {
	if payment == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "payment is missing")
	}
	if !payment.Amount.Equal(total) {
		return pkgerrors.New(pkgerrors.CodePayment, "Payment amount does not match order total")
	}
	return nil
}
