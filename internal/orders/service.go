package orders

import (
	"context"
	"errors"
	"fmt"

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
	"gorm.io/gorm"
)

// txRunner runs a closure inside one database transaction.
type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// paymentVerifier answers whether a completed payment exists for a
// reference and whether its amount matches the computed total.
type paymentVerifier interface {
	VerifyCompleted(ctx context.Context, reference string) (*models.Payment, error)
	ReconcileAmount(payment *models.Payment, total decimal.Decimal) error
}

// checkoutLocker serializes checkouts per user.
type checkoutLocker interface {
	Acquire(ctx context.Context, userID int64) (token string, ok bool, err error)
	Release(ctx context.Context, userID int64, token string) error
}

// priceResolver freezes tier unit prices onto cart lines.
type priceResolver interface {
	Resolve(ctx context.Context, tier enums.UserTier, lines []models.CartLine) ([]pricing.ResolvedLine, error)
}

// PlaceInput captures a checkout request.
type PlaceInput struct {
	UserID           int64
	Tier             enums.UserTier
	PaymentReference string
	ShippingAddress  *types.Address
}

// Detail is an order header with its joined lines.
type Detail struct {
	Order models.Order `json:"order"`
	Lines []DetailLine `json:"items"`
}

// Service materializes orders from carts and manages their lifecycle.
type Service interface {
	Place(ctx context.Context, input PlaceInput) (*models.Order, error)
	Get(ctx context.Context, userID int64, admin bool, orderID int64) (*Detail, error)
	ListMine(ctx context.Context, userID int64) ([]models.Order, error)
	ListAll(ctx context.Context) ([]models.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, status enums.OrderStatus) (*models.Order, error)
	Cancel(ctx context.Context, userID, orderID int64) (*models.Order, error)
}

type service struct {
	repo     Repository
	cart     cart.Repository
	stock    stock.Repository
	payments payments.Repository
	prices   priceResolver
	verifier paymentVerifier
	locker   checkoutLocker
	runner   txRunner
	log      *logger.Logger
}

// NewService wires the order service with every collaborator checkout
// touches.
func NewService(
	repo Repository,
	cartRepo cart.Repository,
	stockRepo stock.Repository,
	paymentsRepo payments.Repository,
	prices priceResolver,
	verifier paymentVerifier,
	locker checkoutLocker,
	runner txRunner,
	log *logger.Logger,
) (Service, error) {
	switch {
	case repo == nil:
		return nil, fmt.Errorf("orders repository required")
	case cartRepo == nil:
		return nil, fmt.Errorf("cart repository required")
	case stockRepo == nil:
		return nil, fmt.Errorf("stock repository required")
	case paymentsRepo == nil:
		return nil, fmt.Errorf("payments repository required")
	case prices == nil:
		return nil, fmt.Errorf("price resolver required")
	case verifier == nil:
		return nil, fmt.Errorf("payment verifier required")
	case locker == nil:
		return nil, fmt.Errorf("checkout locker required")
	case runner == nil:
		return nil, fmt.Errorf("transaction runner required")
	case log == nil:
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		cart:     cartRepo,
		stock:    stockRepo,
		payments: paymentsRepo,
		prices:   prices,
		verifier: verifier,
		locker:   locker,
		runner:   runner,
		log:      log,
	}, nil
}

// Place turns the user's cart into an order. The payment is verified up
// front; everything that writes runs in one transaction so a failure at any
// step leaves cart, stock and orders untouched.
func (s *service) Place(ctx context.Context, input PlaceInput) (*models.Order, error) {
	if input.UserID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.PaymentReference == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment reference is required")
	}
	if !input.Tier.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown user tier")
	}
	if input.ShippingAddress == nil || input.ShippingAddress.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Valid shipping address is required")
	}

	payment, err := s.verifier.VerifyCompleted(ctx, input.PaymentReference)
	if err != nil {
		return nil, err
	}
	if payment.UserID != input.UserID {
		return nil, pkgerrors.New(pkgerrors.CodePayment, "Payment not completed")
	}
	if payment.OrderID != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "Payment already used for another order")
	}

	token, ok, err := s.locker.Acquire(ctx, input.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire checkout lock")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "Checkout already in progress")
	}
	defer func() {
		if err := s.locker.Release(ctx, input.UserID, token); err != nil {
			s.log.Warn(ctx, "release checkout lock: "+err.Error())
		}
	}()

	// The lock keeps the cart stable from here on, so pricing and the
	// amount check can run before the write transaction opens.
	lines, err := s.cart.ListByUser(ctx, input.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Cart is empty")
	}

	resolved, err := s.prices.Resolve(ctx, input.Tier, lines)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, line := range resolved {
		total = total.Add(line.Subtotal())
	}
	if err := s.verifier.ReconcileAmount(payment, total); err != nil {
		return nil, err
	}

	var order *models.Order
	err = s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.cart.WithTx(tx)
		stockRepo := s.stock.WithTx(tx)
		ordersRepo := s.repo.WithTx(tx)
		paymentsRepo := s.payments.WithTx(tx)

		order = &models.Order{
			UserID:          input.UserID,
			TotalAmount:     total,
			ShippingAddress: input.ShippingAddress,
			OrderStatus:     enums.OrderStatusPending,
			PaymentStatus:   enums.PaymentStatusCompleted,
		}
		if err := ordersRepo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
		}

		orderLines := make([]models.OrderLine, 0, len(resolved))
		for _, line := range resolved {
			orderLines = append(orderLines, models.OrderLine{
				OrderID:   order.ID,
				ProductID: line.ProductID,
				Size:      line.Size,
				Quantity:  line.Quantity,
				Price:     line.UnitPrice,
			})
		}
		if err := ordersRepo.CreateLines(ctx, orderLines); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order lines")
		}

		// Decrement by appending OUT movements, then verify no balance went
		// negative. A negative balance rolls the whole checkout back.
		for _, line := range resolved {
			movement := &models.StockMovement{
				ProductID: line.ProductID,
				Size:      line.Size,
				Quantity:  line.Quantity,
				Direction: enums.StockDirectionOut,
			}
			if err := stockRepo.Append(ctx, movement); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record stock movement")
			}
			balance, err := stockRepo.Balance(ctx, line.ProductID, line.Size)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check stock balance")
			}
			if balance < 0 {
				return pkgerrors.New(pkgerrors.CodeConflict,
					fmt.Sprintf("Insufficient stock for product %d size %s", line.ProductID, line.Size))
			}
		}

		if err := cartRepo.DeleteAllForUser(ctx, input.UserID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
		}
		if err := paymentsRepo.LinkOrder(ctx, payment.ID, order.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "link payment")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(s.log.WithOrderID(ctx, order.ID), "order placed")
	return order, nil
}

// Get returns an order with its lines. Non-admin callers only see their
// own orders.
func (s *service) Get(ctx context.Context, userID int64, admin bool, orderID int64) (*Detail, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !admin && order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Order not found")
	}
	lines, err := s.repo.ListLines(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list order lines")
	}
	for i := range lines {
		lines[i].Total = lines[i].LineTotal()
	}
	return &Detail{Order: *order, Lines: lines}, nil
}

func (s *service) ListMine(ctx context.Context, userID int64) ([]models.Order, error) {
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return orders, nil
}

func (s *service) ListAll(ctx context.Context) ([]models.Order, error) {
	orders, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return orders, nil
}

// UpdateStatus moves an order along the status machine. Disallowed moves
// are reported to the caller as client errors.
func (s *service) UpdateStatus(ctx context.Context, orderID int64, status enums.OrderStatus) (*models.Order, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(order.OrderStatus, status) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("Cannot change order status from %s to %s", order.OrderStatus, status))
	}
	if err := s.repo.UpdateStatusFrom(ctx, orderID, order.OrderStatus, status); err != nil {
		// Zero rows means the status moved between our read and the write.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("Cannot change order status from %s to %s", order.OrderStatus, status))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
	}
	order.OrderStatus = status
	return order, nil
}

// Cancel lets a user cancel their own order while it is still pending.
func (s *service) Cancel(ctx context.Context, userID, orderID int64) (*models.Order, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Order not found")
	}
	if order.OrderStatus != enums.OrderStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "Only pending orders can be cancelled")
	}
	if err := s.repo.UpdateStatusFrom(ctx, orderID, enums.OrderStatusPending, enums.OrderStatusCancelled); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "Only pending orders can be cancelled")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cancel order")
	}
	order.OrderStatus = enums.OrderStatusCancelled
	return order, nil
}

func (s *service) findOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find order")
	}
	return order, nil
}
