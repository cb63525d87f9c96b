package payments

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/praveensri2018/sivanyaAPI/pkg/db/models"
	"github.com/praveensri2018/sivanyaAPI/pkg/enums"
	pkgerrors "github.com/praveensri2018/sivanyaAPI/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type gormRunner struct {
	db *gorm.DB
}

func (r *gormRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type gormOrderReader struct {
	db *gorm.DB
}

func (r *gormOrderReader) FindByID(ctx context.Context, orderID int64) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "order_id = ?", orderID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	dsn := "file:payments_" + uuid.NewString() + "?mode=memory&cache=shared"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := gdb.AutoMigrate(&models.Payment{}, &models.Order{}, &models.OrderLine{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	svc, err := NewService(NewRepository(gdb), &gormOrderReader{db: gdb}, &gormRunner{db: gdb})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, gdb
}

func amount(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return d
}

func seedOrder(t *testing.T, gdb *gorm.DB, userID int64, paymentStatus enums.PaymentStatus) *models.Order {
	t.Helper()
	order := &models.Order{
		UserID:        userID,
		TotalAmount:   amount(t, "500.00"),
		OrderStatus:   enums.OrderStatusPending,
		PaymentStatus: paymentStatus,
	}
	if err := gdb.Create(order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return order
}

func TestRecordPendingPayment(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	payment, err := svc.Record(ctx, RecordInput{
		UserID:    4,
		Amount:    amount(t, "500.00"),
		Method:    enums.PaymentMethodUPI,
		Reference: "pay_ref_001",
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if payment.Status != enums.PaymentStatusPending {
		t.Fatalf("status = %s, want %s", payment.Status, enums.PaymentStatusPending)
	}
	if payment.OrderID != nil {
		t.Fatalf("order id = %v, want nil", payment.OrderID)
	}
}

func TestRecordAgainstOrderChecksOwnershipAndState(t *testing.T) {
	t.Parallel()

	svc, gdb := newTestService(t)
	ctx := context.Background()

	open := seedOrder(t, gdb, 4, enums.PaymentStatusPending)
	paid := seedOrder(t, gdb, 4, enums.PaymentStatusCompleted)

	if _, err := svc.Record(ctx, RecordInput{
		UserID: 4, OrderID: &open.ID, Amount: amount(t, "500.00"),
		Method: enums.PaymentMethodCard, Reference: "pay_ref_open",
	}); err != nil {
		t.Fatalf("record against open order: %v", err)
	}

	// Someone else's order looks like a missing order.
	_, err := svc.Record(ctx, RecordInput{
		UserID: 5, OrderID: &open.ID, Amount: amount(t, "500.00"),
		Method: enums.PaymentMethodCard, Reference: "pay_ref_other",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("foreign order: error = %v, want code %s", err, pkgerrors.CodeNotFound)
	}

	_, err = svc.Record(ctx, RecordInput{
		UserID: 4, OrderID: &paid.ID, Amount: amount(t, "500.00"),
		Method: enums.PaymentMethodCard, Reference: "pay_ref_paid",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("paid order: error = %v, want code %s", err, pkgerrors.CodeStateConflict)
	}
	if typed.Message() != "Payment already completed for this order" {
		t.Fatalf("message = %q", typed.Message())
	}
}

func TestUpdateStatusCascadesToOrder(t *testing.T) {
	t.Parallel()

	svc, gdb := newTestService(t)
	ctx := context.Background()

	order := seedOrder(t, gdb, 4, enums.PaymentStatusPending)
	payment, err := svc.Record(ctx, RecordInput{
		UserID: 4, OrderID: &order.ID, Amount: amount(t, "500.00"),
		Method: enums.PaymentMethodUPI, Reference: "pay_ref_cascade",
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	updated, err := svc.UpdateStatus(ctx, payment.ID, enums.PaymentStatusCompleted)
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if updated.Status != enums.PaymentStatusCompleted {
		t.Fatalf("status = %s", updated.Status)
	}

	var reloaded models.Order
	if err := gdb.First(&reloaded, "order_id = ?", order.ID).Error; err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if reloaded.PaymentStatus != enums.PaymentStatusCompleted {
		t.Fatalf("order payment status = %s, want %s", reloaded.PaymentStatus, enums.PaymentStatusCompleted)
	}
}

func TestRefundLifecycle(t *testing.T) {
	t.Parallel()

	svc, gdb := newTestService(t)
	ctx := context.Background()

	order := seedOrder(t, gdb, 4, enums.PaymentStatusPending)
	payment, err := svc.Record(ctx, RecordInput{
		UserID: 4, OrderID: &order.ID, Amount: amount(t, "500.00"),
		Method: enums.PaymentMethodUPI, Reference: "pay_ref_refund",
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	// A pending payment cannot be refunded.
	if _, err := svc.Refund(ctx, payment.ID); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("refund pending: error = %v, want code %s", err, pkgerrors.CodeStateConflict)
	}

	if _, err := svc.UpdateStatus(ctx, payment.ID, enums.PaymentStatusCompleted); err != nil {
		t.Fatalf("complete: %v", err)
	}
	refunded, err := svc.Refund(ctx, payment.ID)
	if err != nil {
		t.Fatalf("refund: %v", err)
	}
	if refunded.Status != enums.PaymentStatusRefunded {
		t.Fatalf("status = %s", refunded.Status)
	}

	_, err = svc.Refund(ctx, payment.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("double refund: error = %v, want code %s", err, pkgerrors.CodeStateConflict)
	}
	if typed.Message() != "Payment is already refunded" {
		t.Fatalf("message = %q", typed.Message())
	}

	var reloaded models.Order
	if err := gdb.First(&reloaded, "order_id = ?", order.ID).Error; err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if reloaded.PaymentStatus != enums.PaymentStatusRefunded {
		t.Fatalf("order payment status = %s, want %s", reloaded.PaymentStatus, enums.PaymentStatusRefunded)
	}
}

func TestListByOrderHidesForeignOrders(t *testing.T) {
	t.Parallel()

	svc, gdb := newTestService(t)
	ctx := context.Background()

	order := seedOrder(t, gdb, 4, enums.PaymentStatusPending)
	if _, err := svc.Record(ctx, RecordInput{
		UserID: 4, OrderID: &order.ID, Amount: amount(t, "500.00"),
		Method: enums.PaymentMethodUPI, Reference: "pay_ref_list",
	}); err != nil {
		t.Fatalf("record: %v", err)
	}

	payments, err := svc.ListByOrder(ctx, 4, false, order.ID)
	if err != nil {
		t.Fatalf("list as owner: %v", err)
	}
	if len(payments) != 1 {
		t.Fatalf("payments = %d, want 1", len(payments))
	}

	// Another user gets the same answer as for a missing order.
	_, err = svc.ListByOrder(ctx, 5, false, order.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound || typed.Message() != "Order not found" {
		t.Fatalf("list as other user: error = %v", err)
	}
	if _, err := svc.ListByOrder(ctx, 5, false, order.ID+100); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("list missing order: error = %v", err)
	}

	// Admins see any order's payments.
	if payments, err = svc.ListByOrder(ctx, 5, true, order.ID); err != nil || len(payments) != 1 {
		t.Fatalf("list as admin: payments = %d, err = %v", len(payments), err)
	}
}

func TestVerifyCompleted(t *testing.T) {
	t.Parallel()

	svc, gdb := newTestService(t)
	ctx := context.Background()

	reconciler, err := NewReconciler(NewRepository(gdb))
	if err != nil {
		t.Fatalf("new reconciler: %v", err)
	}

	payment, err := svc.Record(ctx, RecordInput{
		UserID: 4, Amount: amount(t, "500.00"),
		Method: enums.PaymentMethodUPI, Reference: "pay_ref_verify",
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	// Pending payments do not verify.
	_, err = reconciler.VerifyCompleted(ctx, "pay_ref_verify")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodePayment || typed.Message() != "Payment not completed" {
		t.Fatalf("verify pending: error = %v", err)
	}

	// Unknown references look the same as incomplete payments.
	if _, err := reconciler.VerifyCompleted(ctx, "no_such_ref"); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodePayment {
		t.Fatalf("verify unknown: error = %v", err)
	}

	if _, err := svc.UpdateStatus(ctx, payment.ID, enums.PaymentStatusCompleted); err != nil {
		t.Fatalf("complete: %v", err)
	}
	verified, err := reconciler.VerifyCompleted(ctx, "pay_ref_verify")
	if err != nil {
		t.Fatalf("verify completed: %v", err)
	}

	if err := reconciler.ReconcileAmount(verified, amount(t, "500.00")); err != nil {
		t.Fatalf("reconcile equal: %v", err)
	}
	err = reconciler.ReconcileAmount(verified, amount(t, "400.00"))
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodePayment {
		t.Fatalf("reconcile mismatch: error = %v", err)
	}
	if typed.Message() != "Payment amount does not match order total" {
		t.Fatalf("message = %q", typed.Message())
	}
}
