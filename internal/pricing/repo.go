package pricing

import (
	"context"

	"github.com/praveensri2018/sivanyaAPI/pkg/db/models"
	"github.com/praveensri2018/sivanyaAPI/pkg/enums"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository manages persistence for tier price entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Upsert(ctx context.Context, entry *models.PriceEntry) error
	ListByProduct(ctx context.Context, productID int64) ([]models.PriceEntry, error)
	FindForTier(ctx context.Context, productID int64, size string, tier enums.UserTier) (*models.PriceEntry, error)
	UpdatePrice(ctx context.Context, priceID int64, price decimal.Decimal) (*models.PriceEntry, error)
	Delete(ctx context.Context, priceID int64) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a pricing repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Upsert inserts the entry or, on (product, size, tier) conflict, overwrites
// the price. Last write wins.
func (r *repository) Upsert(ctx context.Context, entry *models.PriceEntry) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "product_id"}, {Name: "size"}, {Name: "user_type"}},
			DoUpdates: clause.Assignments(map[string]any{
				"price": entry.Price,
			}),
		}).
		Create(entry).Error
}

func (r *repository) ListByProduct(ctx context.Context, productID int64) ([]models.PriceEntry, error) {
	var entries []models.PriceEntry
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("size ASC, user_type ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) FindForTier(ctx context.Context, productID int64, size string, tier enums.UserTier) (*models.PriceEntry, error) {
	var entry models.PriceEntry
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND size = ? AND user_type = ?", productID, size, tier).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) UpdatePrice(ctx context.Context, priceID int64, price decimal.Decimal) (*models.PriceEntry, error) {
	var entry models.PriceEntry
	if err := r.db.WithContext(ctx).First(&entry, "price_id = ?", priceID).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&entry).Update("price", price).Error; err != nil {
		return nil, err
	}
	entry.Price = price
	return &entry, nil
}

func (r *repository) Delete(ctx context.Context, priceID int64) error {
	res := r.db.WithContext(ctx).Delete(&models.PriceEntry{}, "price_id = ?", priceID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
