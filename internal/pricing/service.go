package pricing

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

// ResolvedLine is one cart line with the unit price applicable to the
// buyer's tier frozen in.
type ResolvedLine struct {
	ProductID int64
	Size      string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Subtotal returns quantity times unit price.
func (l ResolvedLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Service resolves tier prices and manages price entries. Resolution is
// read-only.
type Service interface {
	Resolve(ctx context.Context, tier enums.UserTier, lines []models.CartLine) ([]ResolvedLine, error)
	Upsert(ctx context.Context, input UpsertInput) (*models.PriceEntry, error)
	ListByProduct(ctx context.Context, productID int64) ([]models.PriceEntry, error)
	UpdatePrice(ctx context.Context, priceID int64, price decimal.Decimal) (*models.PriceEntry, error)
	Delete(ctx context.Context, priceID int64) error
}

// UpsertInput captures a price entry write.
type UpsertInput struct {
	ProductID int64
	Size      string
	UserType  enums.UserTier
	Price     decimal.Decimal
}

type service struct {
	repo Repository
}

// NewService wires a pricing service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("pricing repository required")
	}
	return &service{repo: repo}, nil
}

// Resolve returns one priced line per cart line. A line without a price
// entry for the tier fails the whole resolution: dropping it would silently
// undercharge the order.
func (s *service) Resolve(ctx context.Context, tier enums.UserTier, lines []models.CartLine) ([]ResolvedLine, error) {
	if !tier.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown user tier")
	}

	resolved := make([]ResolvedLine, 0, len(lines))
	for _, line := range lines {
		entry, err := s.repo.FindForTier(ctx, line.ProductID, line.Size, tier)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeConflict,
					fmt.Sprintf("no %s price for product %d size %s", tier, line.ProductID, line.Size))
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup tier price")
		}
		resolved = append(resolved, ResolvedLine{
			ProductID: line.ProductID,
			Size:      line.Size,
			Quantity:  line.Quantity,
			UnitPrice: entry.Price,
		})
	}
	return resolved, nil
}

func (s *service) Upsert(ctx context.Context, input UpsertInput) (*models.PriceEntry, error) {
	if input.ProductID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if input.Size == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "size is required")
	}
	if !input.UserType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown user tier")
	}
	if input.Price.IsNegative() || input.Price.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}

	entry := &models.PriceEntry{
		ProductID: input.ProductID,
		Size:      input.Size,
		UserType:  input.UserType,
		Price:     input.Price,
	}
	if err := s.repo.Upsert(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "upsert price entry")
	}
	return entry, nil
}

func (s *service) ListByProduct(ctx context.Context, productID int64) ([]models.PriceEntry, error) {
	entries, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list price entries")
	}
	if len(entries) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "No pricing found for this product")
	}
	return entries, nil
}

func (s *service) UpdatePrice(ctx context.Context, priceID int64, price decimal.Decimal) (*models.PriceEntry, error) {
	if price.IsNegative() || price.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	entry, err := s.repo.UpdatePrice(ctx, priceID, price)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Pricing entry not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update price entry")
	}
	return entry, nil
}

func (s *service) Delete(ctx context.Context, priceID int64) error {
	if err := s.repo.Delete(ctx, priceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "Pricing entry not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete price entry")
	}
	return nil
}
