package cart

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

// stockChecker reports the available quantity for a (product, size).
type stockChecker interface {
	Available(ctx context.Context, productID int64, size string) (int, error)
}

// View is a user's cart rendered for display, with tier prices applied
// where entries exist.
type View struct {
	Lines []ViewLine      `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// ViewLine is one displayed cart line. LineTotal is zero when the product
// has no price for the viewer's tier.
type ViewLine struct {
	CartID      int64            `json:"cart_id"`
	ProductID   int64            `json:"product_id"`
	ProductName string           `json:"product_name"`
	Size        string           `json:"size"`
	Quantity    int              `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
	LineTotal   decimal.Decimal  `json:"line_total"`
}

// AddInput captures a request to put a quantity of one (product, size)
// into a user's cart.
type AddInput struct {
	UserID    int64
	ProductID int64
	Size      string
	Quantity  int
}

// Service manages a user's in-progress cart.
type Service interface {
	Add(ctx context.Context, input AddInput) (*models.CartLine, error)
	Get(ctx context.Context, userID int64, tier enums.UserTier) (*View, error)
	UpdateQuantity(ctx context.Context, userID, cartID int64, quantity int) (*models.CartLine, error)
	Remove(ctx context.Context, userID, cartID int64) error
	Clear(ctx context.Context, userID int64) error
}

type service struct {
	repo  Repository
	stock stockChecker
}

// NewService wires a cart service with its repository and a stock checker.
func NewService(repo Repository, stock stockChecker) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if stock == nil {
		return nil, fmt.Errorf("stock checker required")
	}
	return &service{repo: repo, stock: stock}, nil
}

// Add puts a line into the cart. Re-adding the same (product, size)
// accumulates quantity. Stock is not reserved here; the final check
// happens when the order is placed.
func (s *service) Add(ctx context.Context, input AddInput) (*models.CartLine, error) {
	if input.UserID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.ProductID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if input.Size == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "size is required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	line := &models.CartLine{
		UserID:    input.UserID,
		ProductID: input.ProductID,
		Size:      input.Size,
		Quantity:  input.Quantity,
	}
	if err := s.repo.Upsert(ctx, line); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "upsert cart line")
	}
	return line, nil
}

func (s *service) Get(ctx context.Context, userID int64, tier enums.UserTier) (*View, error) {
	detailed, err := s.repo.ListDetailed(ctx, userID, tier)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list cart lines")
	}

	view := &View{Lines: make([]ViewLine, 0, len(detailed)), Total: decimal.Zero}
	for _, line := range detailed {
		out := ViewLine{
			CartID:      line.CartID,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Size:        line.Size,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			LineTotal:   decimal.Zero,
		}
		if line.UnitPrice != nil {
			out.LineTotal = line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
			view.Total = view.Total.Add(out.LineTotal)
		}
		view.Lines = append(view.Lines, out)
	}
	return view, nil
}

// UpdateQuantity sets a line's quantity. The new quantity must not exceed
// the ledger balance for the line's (product, size).
func (s *service) UpdateQuantity(ctx context.Context, userID, cartID int64, quantity int) (*models.CartLine, error) {
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	line, err := s.findOwnedLine(ctx, userID, cartID)
	if err != nil {
		return nil, err
	}

	available, err := s.stock.Available(ctx, line.ProductID, line.Size)
	if err != nil {
		return nil, err
	}
	if quantity > available {
		return nil, pkgerrors.New(pkgerrors.CodeConflict,
			fmt.Sprintf("Only %d items are available in stock", available))
	}

	updated, err := s.repo.UpdateQuantity(ctx, cartID, quantity)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart line")
	}
	return updated, nil
}

func (s *service) Remove(ctx context.Context, userID, cartID int64) error {
	if _, err := s.findOwnedLine(ctx, userID, cartID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, cartID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "Cart item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete cart line")
	}
	return nil
}

func (s *service) Clear(ctx context.Context, userID int64) error {
	if err := s.repo.DeleteAllForUser(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
	}
	return nil
}

// findOwnedLine loads a cart line and hides its existence from other users.
func (s *service) findOwnedLine(ctx context.Context, userID, cartID int64) (*models.CartLine, error) {
	line, err := s.repo.FindByID(ctx, cartID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find cart line")
	}
	if line.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Cart item not found")
	}
	return line, nil
}
