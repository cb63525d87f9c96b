package stock

import (
	"context"
	"errors"
	"fmt"

	"github.com/praveensri2018/sivanyaAPI/pkg/db/models"
	"github.com/praveensri2018/sivanyaAPI/pkg/enums"
	pkgerrors "github.com/praveensri2018/sivanyaAPI/pkg/errors"
	"gorm.io/gorm"
)

// Service exposes the stock ledger. Movements are immutable facts; the
// ledger itself never refuses an append on balance grounds — the
// non-negativity check belongs to the caller's transaction.
type Service interface {
	Available(ctx context.Context, productID int64, size string) (int, error)
	Record(ctx context.Context, input RecordMovementInput) (*models.StockMovement, error)
	ListByProduct(ctx context.Context, productID int64) ([]models.StockMovement, error)
	UpdateQuantity(ctx context.Context, stockID int64, quantity int) (*models.StockMovement, error)
	Delete(ctx context.Context, stockID int64) error
}

// RecordMovementInput captures one ledger append.
type RecordMovementInput struct {
	ProductID int64
	Size      string
	Quantity  int
	Direction enums.StockDirection
}

type service struct {
	repo Repository
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("stock repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Available(ctx context.Context, productID int64, size string) (int, error) {
	if productID <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if size == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "size is required")
	}
	balance, err := s.repo.Balance(ctx, productID, size)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "compute stock balance")
	}
	return balance, nil
}

func (s *service) Record(ctx context.Context, input RecordMovementInput) (*models.StockMovement, error) {
	if err := validateMovement(input); err != nil {
		return nil, err
	}

	movement := &models.StockMovement{
		ProductID: input.ProductID,
		Size:      input.Size,
		Quantity:  input.Quantity,
		Direction: input.Direction,
	}
	if err := s.repo.Append(ctx, movement); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "append stock movement")
	}
	return movement, nil
}

func validateMovement(input RecordMovementInput) error {
	if input.ProductID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if input.Size == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "size is required")
	}
	if input.Quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive integer")
	}
	if !input.Direction.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock direction must be IN or OUT")
	}
	return nil
}

func (s *service) ListByProduct(ctx context.Context, productID int64) ([]models.StockMovement, error) {
	if productID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	movements, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list stock movements")
	}
	if len(movements) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "No stock found for this product")
	}
	return movements, nil
}

func (s *service) UpdateQuantity(ctx context.Context, stockID int64, quantity int) (*models.StockMovement, error) {
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive integer")
	}
	movement, err := s.repo.UpdateQuantity(ctx, stockID, quantity)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Stock entry not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update stock entry")
	}
	return movement, nil
}

func (s *service) Delete(ctx context.Context, stockID int64) error {
	if err := s.repo.Delete(ctx, stockID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "Stock entry not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete stock entry")
	}
	return nil
}
