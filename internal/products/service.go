package products

import (
	"context"
	"errors"
	"fmt"

	"github.com/praveensri2018/sivanyaAPI/internal/pricing"
	"github.com/praveensri2018/sivanyaAPI/internal/stock"
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

// SizeStock sets an opening stock level for one size.
type SizeStock struct {
	Size     string
	Quantity int
}

// TierPrice sets the unit price for one (size, tier) pair.
type TierPrice struct {
	Size     string
	UserType enums.UserTier
	Price    decimal.Decimal
}

// CreateInput captures a new catalog entry with its opening stock and
// prices. Everything lands in one transaction.
type CreateInput struct {
	Name        string
	CategoryID  *int64
	Description *string
	Stock       []SizeStock
	Prices      []TierPrice
}

// SizeBalance is the net ledger balance for one size.
type SizeBalance struct {
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
}

// View is a product with its current balances and price entries.
type View struct {
	Product models.Product      `json:"product"`
	Stock   []SizeBalance       `json:"stock"`
	Prices  []models.PriceEntry `json:"prices"`
}

// Service manages the catalog.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Product, error)
	Get(ctx context.Context, productID int64) (*View, error)
	List(ctx context.Context) ([]models.Product, error)
}

type service struct {
	repo    Repository
	stock   stock.Repository
	pricing pricing.Repository
	runner  txRunner
}

// NewService wires a products service.
func NewService(repo Repository, stockRepo stock.Repository, pricingRepo pricing.Repository, runner txRunner) (Service, error) {
	switch {
	case repo == nil:
		return nil, fmt.Errorf("products repository required")
	case stockRepo == nil:
		return nil, fmt.Errorf("stock repository required")
	case pricingRepo == nil:
		return nil, fmt.Errorf("pricing repository required")
	case runner == nil:
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, stock: stockRepo, pricing: pricingRepo, runner: runner}, nil
}

// Create inserts the catalog entry together with its opening IN movements
// and price entries.
func (s *service) Create(ctx context.Context, input CreateInput) (*models.Product, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	for _, entry := range input.Stock {
		if entry.Size == "" || entry.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock entries need a size and a positive quantity")
		}
	}
	for _, entry := range input.Prices {
		if entry.Size == "" || !entry.UserType.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price entries need a size and a known user tier")
		}
		if entry.Price.IsNegative() || entry.Price.IsZero() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
		}
	}

	product := &models.Product{
		Name:        input.Name,
		CategoryID:  input.CategoryID,
		Description: input.Description,
	}
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, product); err != nil {
			return err
		}
		stockRepo := s.stock.WithTx(tx)
		for _, entry := range input.Stock {
			movement := &models.StockMovement{
				ProductID: product.ID,
				Size:      entry.Size,
				Quantity:  entry.Quantity,
				Direction: enums.StockDirectionIn,
			}
			if err := stockRepo.Append(ctx, movement); err != nil {
				return err
			}
		}
		pricingRepo := s.pricing.WithTx(tx)
		for _, entry := range input.Prices {
			price := &models.PriceEntry{
				ProductID: product.ID,
				Size:      entry.Size,
				UserType:  entry.UserType,
				Price:     entry.Price,
			}
			if err := pricingRepo.Upsert(ctx, price); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
	}
	return product, nil
}

func (s *service) Get(ctx context.Context, productID int64) (*View, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find product")
	}

	movements, err := s.stock.ListByProduct(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list stock movements")
	}
	prices, err := s.pricing.ListByProduct(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list price entries")
	}

	return &View{
		Product: *product,
		Stock:   balancesBySize(movements),
		Prices:  prices,
	}, nil
}

func (s *service) List(ctx context.Context) ([]models.Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	return products, nil
}

// balancesBySize nets the movement ledger into per-size quantities,
// preserving first-seen size order.
func balancesBySize(movements []models.StockMovement) []SizeBalance {
	totals := make(map[string]int, len(movements))
	order := make([]string, 0, len(movements))
	for _, movement := range movements {
		if _, seen := totals[movement.Size]; !seen {
			order = append(order, movement.Size)
		}
		qty := movement.Quantity
		if movement.Direction == enums.StockDirectionOut {
			qty = -qty
		}
		totals[movement.Size] += qty
	}

	balances := make([]SizeBalance, 0, len(order))
	for _, size := range order {
		balances = append(balances, SizeBalance{Size: size, Quantity: totals[size]})
	}
	return balances
}
