package orders

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/praveensri2018/sivanyaAPI/internal/cart"
	"github.com/praveensri2018/sivanyaAPI/internal/payments"
	"github.com/praveensri2018/sivanyaAPI/internal/pricing"
	"github.com/praveensri2018/sivanyaAPI/internal/stock"
	"github.com/praveensri2018/sivanyaAPI/pkg/db/models"
	"github.com/praveensri2018/sivanyaAPI/pkg/enums"
	pkgerrors "github.com/praveensri2018/sivanyaAPI/pkg/errors"
	"github.com/praveensri2018/sivanyaAPI/pkg/logger"
	"github.com/praveensri2018/sivanyaAPI/pkg/types"
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

type stubLocker struct {
	busy bool
}

func (l *stubLocker) Acquire(ctx context.Context, userID int64) (string, bool, error) {
	if l.busy {
		return "", false, nil
	}
	return "token", true, nil
}

func (l *stubLocker) Release(ctx context.Context, userID int64, token string) error {
	return nil
}

type harness struct {
	svc      Service
	db       *gorm.DB
	cart     cart.Repository
	stock    stock.Repository
	payments payments.Repository
	locker   *stubLocker
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dsn := "file:orders_" + uuid.NewString() + "?mode=memory&cache=shared"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = gdb.AutoMigrate(
		&models.Product{}, &models.PriceEntry{}, &models.StockMovement{},
		&models.CartLine{}, &models.Order{}, &models.OrderLine{}, &models.Payment{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cartRepo := cart.NewRepository(gdb)
	stockRepo := stock.NewRepository(gdb)
	paymentsRepo := payments.NewRepository(gdb)
	priceSvc, err := pricing.NewService(pricing.NewRepository(gdb))
	if err != nil {
		t.Fatalf("pricing service: %v", err)
	}
	reconciler, err := payments.NewReconciler(paymentsRepo)
	if err != nil {
		t.Fatalf("reconciler: %v", err)
	}
	locker := &stubLocker{}
	svc, err := NewService(
		NewRepository(gdb), cartRepo, stockRepo, paymentsRepo,
		priceSvc, reconciler, locker, &gormRunner{db: gdb},
		logger.New(logger.Options{ServiceName: "orders-test"}),
	)
	if err != nil {
		t.Fatalf("orders service: %v", err)
	}
	return &harness{svc: svc, db: gdb, cart: cartRepo, stock: stockRepo, payments: paymentsRepo, locker: locker}
}

func shipTo() *types.Address {
	return &types.Address{
		Line1:      "12 Weaver Street",
		City:       "Kanchipuram",
		State:      "Tamil Nadu",
		PostalCode: "631501",
	}
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return d
}

// seedCatalog sets up product 10 in size M with the given stock and a
// retailer price of 250.00.
func (h *harness) seedCatalog(t *testing.T, stockQty int) {
	t.Helper()
	ctx := context.Background()
	if err := h.db.Create(&models.Product{ID: 10, Name: "Silk Saree"}).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	if err := h.db.Create(&models.PriceEntry{
		ProductID: 10, Size: "M", UserType: enums.UserTierRetailer, Price: dec(t, "250.00"),
	}).Error; err != nil {
		t.Fatalf("seed price: %v", err)
	}
	if stockQty > 0 {
		err := h.stock.Append(ctx, &models.StockMovement{
			ProductID: 10, Size: "M", Quantity: stockQty, Direction: enums.StockDirectionIn,
		})
		if err != nil {
			t.Fatalf("seed stock: %v", err)
		}
	}
}

func (h *harness) seedCart(t *testing.T, userID int64, qty int) {
	t.Helper()
	err := h.cart.Upsert(context.Background(), &models.CartLine{
		UserID: userID, ProductID: 10, Size: "M", Quantity: qty,
	})
	if err != nil {
		t.Fatalf("seed cart: %v", err)
	}
}

func (h *harness) seedPayment(t *testing.T, userID int64, amount string, status enums.PaymentStatus, reference string) *models.Payment {
	t.Helper()
	payment := &models.Payment{
		UserID:    userID,
		Amount:    dec(t, amount),
		Method:    enums.PaymentMethodUPI,
		Reference: reference,
		Status:    status,
	}
	if err := h.payments.Create(context.Background(), payment); err != nil {
		t.Fatalf("seed payment: %v", err)
	}
	return payment
}

func TestPlaceOrderHappyPath(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()

	h.seedCatalog(t, 5)
	h.seedCart(t, 4, 2)
	h.seedPayment(t, 4, "500.00", enums.PaymentStatusCompleted, "pay_ref_ok")

	order, err := h.svc.Place(ctx, PlaceInput{
		UserID: 4, Tier: enums.UserTierRetailer, PaymentReference: "pay_ref_ok",
		ShippingAddress: shipTo(),
	})
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if !order.TotalAmount.Equal(dec(t, "500.00")) {
		t.Fatalf("total = %s, want 500.00", order.TotalAmount)
	}
	if order.OrderStatus != enums.OrderStatusPending {
		t.Fatalf("order status = %s, want Pending", order.OrderStatus)
	}
	if order.PaymentStatus != enums.PaymentStatusCompleted {
		t.Fatalf("payment status = %s, want Completed", order.PaymentStatus)
	}

	balance, err := h.stock.Balance(ctx, 10, "M")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 3 {
		t.Fatalf("balance = %d, want 3", balance)
	}

	lines, err := h.cart.ListByUser(ctx, 4)
	if err != nil {
		t.Fatalf("list cart: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("cart lines = %d, want 0", len(lines))
	}

	payment, err := h.payments.FindByReference(ctx, "pay_ref_ok")
	if err != nil {
		t.Fatalf("find payment: %v", err)
	}
	if payment.OrderID == nil || *payment.OrderID != order.ID {
		t.Fatalf("payment order id = %v, want %d", payment.OrderID, order.ID)
	}

	detail, err := h.svc.Get(ctx, 4, false, order.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(detail.Lines) != 1 {
		t.Fatalf("detail lines = %d, want 1", len(detail.Lines))
	}
	line := detail.Lines[0]
	if line.ProductName != "Silk Saree" || line.Quantity != 2 || !line.Price.Equal(dec(t, "250.00")) {
		t.Fatalf("line = %+v", line)
	}
	if !line.Total.Equal(dec(t, "500.00")) {
		t.Fatalf("line total = %s, want 500.00", line.Total)
	}

	// The detail line serializes with snake_case keys and the computed total.
	body, err := json.Marshal(line)
	if err != nil {
		t.Fatalf("marshal line: %v", err)
	}
	for _, key := range []string{`"product_name"`, `"price"`, `"line_total":"500"`} {
		if !strings.Contains(string(body), key) {
			t.Fatalf("line json %s missing %s", body, key)
		}
	}
}

func TestPlaceOrderRequiresShippingAddress(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()

	h.seedCatalog(t, 5)
	h.seedCart(t, 4, 2)
	h.seedPayment(t, 4, "500.00", enums.PaymentStatusCompleted, "pay_ref_noaddr")

	_, err := h.svc.Place(ctx, PlaceInput{
		UserID: 4, Tier: enums.UserTierRetailer, PaymentReference: "pay_ref_noaddr",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("place without address: error = %v, want code %s", err, pkgerrors.CodeValidation)
	}
	if typed.Message() != "Valid shipping address is required" {
		t.Fatalf("message = %q", typed.Message())
	}

	// An all-blank address is no better than a missing one.
	_, err = h.svc.Place(ctx, PlaceInput{
		UserID: 4, Tier: enums.UserTierRetailer, PaymentReference: "pay_ref_noaddr",
		ShippingAddress: &types.Address{},
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("place with blank address: error = %v, want code %s", err, pkgerrors.CodeValidation)
	}

	assertUntouched(t, h, 5)
}

func TestPlaceOrderAmountMismatchRollsBack(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()

	h.seedCatalog(t, 5)
	h.seedCart(t, 4, 2)
	h.seedPayment(t, 4, "400.00", enums.PaymentStatusCompleted, "pay_ref_short")

	_, err := h.svc.Place(ctx, PlaceInput{
		UserID: 4, Tier: enums.UserTierRetailer, PaymentReference: "pay_ref_short",
		ShippingAddress: shipTo(),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodePayment {
		t.Fatalf("place: error = %v, want code %s", err, pkgerrors.CodePayment)
	}
	if typed.Message() != "Payment amount does not match order total" {
		t.Fatalf("message = %q", typed.Message())
	}

	assertUntouched(t, h, 5)
}

func TestPlaceOrderRequiresCompletedPayment(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()

	h.seedCatalog(t, 5)
	h.seedCart(t, 4, 2)
	h.seedPayment(t, 4, "500.00", enums.PaymentStatusPending, "pay_ref_pending")

	_, err := h.svc.Place(ctx, PlaceInput{
		UserID: 4, Tier: enums.UserTierRetailer, PaymentReference: "pay_ref_pending",
		ShippingAddress: shipTo(),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodePayment || typed.Message() != "Payment not completed" {
		t.Fatalf("place: error = %v", err)
	}

	// Another user's completed payment does not verify either.
	h.seedPayment(t, 9, "500.00", enums.PaymentStatusCompleted, "pay_ref_foreign")
	_, err = h.svc.Place(ctx, PlaceInput{
		UserID: 4, Tier: enums.UserTierRetailer, PaymentReference: "pay_ref_foreign",
		ShippingAddress: shipTo(),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodePayment {
		t.Fatalf("place with foreign payment: error = %v", err)
	}

	assertUntouched(t, h, 5)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()

	h.seedCatalog(t, 5)
	h.seedPayment(t, 4, "500.00", enums.PaymentStatusCompleted, "pay_ref_empty")

	_, err := h.svc.Place(ctx, PlaceInput{
		UserID: 4, Tier: enums.UserTierRetailer, PaymentReference: "pay_ref_empty",
		ShippingAddress: shipTo(),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation || typed.Message() != "Cart is empty" {
		t.Fatalf("place: error = %v", err)
	}
}

func TestPlaceOrderInsufficientStockRollsBack(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()

	h.seedCatalog(t, 1)
	h.seedCart(t, 4, 2)
	h.seedPayment(t, 4, "500.00", enums.PaymentStatusCompleted, "pay_ref_oos")

	_, err := h.svc.Place(ctx, PlaceInput{
		UserID: 4, Tier: enums.UserTierRetailer, PaymentReference: "pay_ref_oos",
		ShippingAddress: shipTo(),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("place: error = %v, want code %s", err, pkgerrors.CodeConflict)
	}

	assertUntouched(t, h, 1)
}

func TestPlaceOrderWhileCheckoutInProgress(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()

	h.seedCatalog(t, 5)
	h.seedCart(t, 4, 2)
	h.seedPayment(t, 4, "500.00", enums.PaymentStatusCompleted, "pay_ref_busy")
	h.locker.busy = true

	_, err := h.svc.Place(ctx, PlaceInput{
		UserID: 4, Tier: enums.UserTierRetailer, PaymentReference: "pay_ref_busy",
		ShippingAddress: shipTo(),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict || typed.Message() != "Checkout already in progress" {
		t.Fatalf("place: error = %v", err)
	}
}

func TestPlaceOrderRejectsReusedPayment(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()

	h.seedCatalog(t, 5)
	h.seedCart(t, 4, 2)
	h.seedPayment(t, 4, "500.00", enums.PaymentStatusCompleted, "pay_ref_reuse")

	if _, err := h.svc.Place(ctx, PlaceInput{
		UserID: 4, Tier: enums.UserTierRetailer, PaymentReference: "pay_ref_reuse",
		ShippingAddress: shipTo(),
	}); err != nil {
		t.Fatalf("first place: %v", err)
	}

	h.seedCart(t, 4, 2)
	_, err := h.svc.Place(ctx, PlaceInput{
		UserID: 4, Tier: enums.UserTierRetailer, PaymentReference: "pay_ref_reuse",
		ShippingAddress: shipTo(),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("second place: error = %v, want code %s", err, pkgerrors.CodeConflict)
	}
}

func TestStatusTransitions(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()

	order := &models.Order{
		UserID: 4, TotalAmount: dec(t, "500.00"),
		OrderStatus: enums.OrderStatusPending, PaymentStatus: enums.PaymentStatusCompleted,
	}
	if err := h.db.Create(order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}

	updated, err := h.svc.UpdateStatus(ctx, order.ID, enums.OrderStatusShipped)
	if err != nil {
		t.Fatalf("ship: %v", err)
	}
	if updated.OrderStatus != enums.OrderStatusShipped {
		t.Fatalf("status = %s", updated.OrderStatus)
	}

	// Shipped orders cannot go back to pending or be cancelled.
	if _, err := h.svc.UpdateStatus(ctx, order.ID, enums.OrderStatusPending); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("unship: error = %v, want code %s", err, pkgerrors.CodeStateConflict)
	}
	if _, err := h.svc.UpdateStatus(ctx, order.ID, enums.OrderStatusCancelled); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("cancel shipped: error = %v, want code %s", err, pkgerrors.CodeStateConflict)
	}

	if _, err := h.svc.UpdateStatus(ctx, order.ID, enums.OrderStatusDelivered); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	// Delivered is terminal.
	if _, err := h.svc.UpdateStatus(ctx, order.ID, enums.OrderStatusShipped); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("reship delivered: error = %v, want code %s", err, pkgerrors.CodeStateConflict)
	}
}

func TestStatusWriteGuardsAgainstConcurrentChange(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()

	order := &models.Order{
		UserID: 4, TotalAmount: dec(t, "500.00"),
		OrderStatus: enums.OrderStatusPending, PaymentStatus: enums.PaymentStatusCompleted,
	}
	if err := h.db.Create(order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	repo := NewRepository(h.db)

	// The write predicates on the status the caller read; a stale read
	// matches zero rows and changes nothing.
	err := repo.UpdateStatusFrom(ctx, order.ID, enums.OrderStatusShipped, enums.OrderStatusDelivered)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("stale update: error = %v, want record not found", err)
	}
	var reloaded models.Order
	if err := h.db.First(&reloaded, "order_id = ?", order.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.OrderStatus != enums.OrderStatusPending {
		t.Fatalf("status = %s, want Pending", reloaded.OrderStatus)
	}

	if err := repo.UpdateStatusFrom(ctx, order.ID, enums.OrderStatusPending, enums.OrderStatusShipped); err != nil {
		t.Fatalf("current update: %v", err)
	}

	// A cancel raced by the ship above reports the state conflict.
	_, err = h.svc.Cancel(ctx, 4, order.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("cancel shipped: error = %v, want code %s", err, pkgerrors.CodeStateConflict)
	}
}

func TestCancelOnlyPendingOrders(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()

	order := &models.Order{
		UserID: 4, TotalAmount: dec(t, "500.00"),
		OrderStatus: enums.OrderStatusPending, PaymentStatus: enums.PaymentStatusCompleted,
	}
	if err := h.db.Create(order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}

	// Another user cannot see or cancel the order.
	if _, err := h.svc.Cancel(ctx, 5, order.ID); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("cancel as other user: error = %v, want code %s", err, pkgerrors.CodeNotFound)
	}

	cancelled, err := h.svc.Cancel(ctx, 4, order.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.OrderStatus != enums.OrderStatusCancelled {
		t.Fatalf("status = %s", cancelled.OrderStatus)
	}

	_, err = h.svc.Cancel(ctx, 4, order.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("cancel twice: error = %v, want code %s", err, pkgerrors.CodeStateConflict)
	}
	if typed.Message() != "Only pending orders can be cancelled" {
		t.Fatalf("message = %q", typed.Message())
	}
}

// assertUntouched verifies a failed checkout left no trace.
func assertUntouched(t *testing.T, h *harness, wantBalance int) {
	t.Helper()
	ctx := context.Background()

	balance, err := h.stock.Balance(ctx, 10, "M")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != wantBalance {
		t.Fatalf("balance = %d, want %d", balance, wantBalance)
	}

	lines, err := h.cart.ListByUser(ctx, 4)
	if err != nil {
		t.Fatalf("list cart: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("cart lines = %d, want 1", len(lines))
	}

	var count int64
	if err := h.db.Model(&models.Order{}).Count(&count).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if count != 0 {
		t.Fatalf("orders = %d, want 0", count)
	}
}
