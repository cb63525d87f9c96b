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

// txRunner runs a closure inside one database transaction.
type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// orderReader looks up order headers for ownership checks.
type orderReader interface {
	FindByID(ctx context.Context, orderID int64) (*models.Order, error)
}

// RecordInput captures a payment submission. OrderID is optional; a payment
// recorded before checkout is linked to its order when the order is placed.
type RecordInput struct {
	UserID    int64
	OrderID   *int64
	Amount    decimal.Decimal
	Method    enums.PaymentMethod
	Reference string
}

// Service records payments and moves them through their status lifecycle.
type Service interface {
	Record(ctx context.Context, input RecordInput) (*models.Payment, error)
	UpdateStatus(ctx context.Context, paymentID int64, status enums.PaymentStatus) (*models.Payment, error)
	Refund(ctx context.Context, paymentID int64) (*models.Payment, error)
	ListByOrder(ctx context.Context, userID int64, admin bool, orderID int64) ([]models.Payment, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Payment, error)
	ListAll(ctx context.Context) ([]models.Payment, error)
}

type service struct {
	repo   Repository
	orders orderReader
	runner txRunner
}

// NewService wires a payments service.
func NewService(repo Repository, orders orderReader, runner txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order reader required")
	}
	if runner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, orders: orders, runner: runner}, nil
}

// Record persists a pending payment. When an order id is supplied the order
// must belong to the payer and must not already be paid.
func (s *service) Record(ctx context.Context, input RecordInput) (*models.Payment, error) {
	if input.UserID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.Reference == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment reference is required")
	}
	if !input.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}
	if input.Amount.IsNegative() || input.Amount.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	if input.OrderID != nil {
		order, err := s.orders.FindByID(ctx, *input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Order not found or does not belong to the user")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find order")
		}
		if order.UserID != input.UserID {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Order not found or does not belong to the user")
		}
		if order.PaymentStatus == enums.PaymentStatusCompleted {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "Payment already completed for this order")
		}
	}

	payment := &models.Payment{
		UserID:    input.UserID,
		OrderID:   input.OrderID,
		Amount:    input.Amount,
		Method:    input.Method,
		Reference: input.Reference,
		Status:    enums.PaymentStatusPending,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create payment")
	}
	return payment, nil
}

// UpdateStatus sets a payment's status and mirrors it onto the linked order
// header in the same transaction.
func (s *service) UpdateStatus(ctx context.Context, paymentID int64, status enums.PaymentStatus) (*models.Payment, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment status")
	}

	payment, err := s.findPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	err = s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.UpdateStatus(ctx, paymentID, status); err != nil {
			return err
		}
		if payment.OrderID != nil {
			return repo.CascadeOrderStatus(ctx, *payment.OrderID, status)
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update payment status")
	}
	payment.Status = status
	return payment, nil
}

// Refund moves a completed payment to Refunded. Refunding twice is an error.
func (s *service) Refund(ctx context.Context, paymentID int64) (*models.Payment, error) {
	payment, err := s.findPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status == enums.PaymentStatusRefunded {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "Payment is already refunded")
	}
	if payment.Status != enums.PaymentStatusCompleted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "Only completed payments can be refunded")
	}
	return s.UpdateStatus(ctx, paymentID, enums.PaymentStatusRefunded)
}

// ListByOrder returns an order's payments. Non-admin callers are told the
// order does not exist when it belongs to someone else.
func (s *service) ListByOrder(ctx context.Context, userID int64, admin bool, orderID int64) ([]models.Payment, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find order")
	}
	if !admin && order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Order not found")
	}

	payments, err := s.repo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list payments by order")
	}
	if len(payments) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "No payments found for this order")
	}
	return payments, nil
}

func (s *service) ListByUser(ctx context.Context, userID int64) ([]models.Payment, error) {
	payments, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list payments by user")
	}
	return payments, nil
}

func (s *service) ListAll(ctx context.Context) ([]models.Payment, error) {
	payments, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list payments")
	}
	return payments, nil
}

func (s *service) findPayment(ctx context.Context, paymentID int64) (*models.Payment, error) {
	payment, err := s.repo.FindByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Payment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find payment")
	}
	return payment, nil
}
