package stock

import (
	"context"

	"github.com/praveensri2018/sivanyaAPI/pkg/db/models"
	"gorm.io/gorm"
)

// Repository manages persistence for the append-only stock ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Append(ctx context.Context, movement *models.StockMovement) error
	Balance(ctx context.Context, productID int64, size string) (int, error)
	ListByProduct(ctx context.Context, productID int64) ([]models.StockMovement, error)
	FindByID(ctx context.Context, stockID int64) (*models.StockMovement, error)
	UpdateQuantity(ctx context.Context, stockID int64, quantity int) (*models.StockMovement, error)
	Delete(ctx context.Context, stockID int64) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Append(ctx context.Context, movement *models.StockMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

// Balance computes the signed sum of movements for a (product, size).
// No rows yields 0, not an error.
func (r *repository) Balance(ctx context.Context, productID int64, size string) (int, error) {
	var balance int
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(CASE WHEN stock_type = 'IN' THEN quantity ELSE -quantity END), 0)
		FROM product_stock
		WHERE product_id = ? AND size = ?
	`, productID, size).Scan(&balance).Error
	if err != nil {
		return 0, err
	}
	return balance, nil
}

func (r *repository) ListByProduct(ctx context.Context, productID int64) ([]models.StockMovement, error) {
	var movements []models.StockMovement
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at ASC").
		Find(&movements).Error
	if err != nil {
		return nil, err
	}
	return movements, nil
}

func (r *repository) FindByID(ctx context.Context, stockID int64) (*models.StockMovement, error) {
	var movement models.StockMovement
	if err := r.db.WithContext(ctx).First(&movement, "stock_id = ?", stockID).Error; err != nil {
		return nil, err
	}
	return &movement, nil
}

func (r *repository) UpdateQuantity(ctx context.Context, stockID int64, quantity int) (*models.StockMovement, error) {
	movement, err := r.FindByID(ctx, stockID)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).
		Model(movement).
		Update("quantity", quantity).Error; err != nil {
		return nil, err
	}
	movement.Quantity = quantity
	return movement, nil
}

func (r *repository) Delete(ctx context.Context, stockID int64) error {
	res := r.db.WithContext(ctx).Delete(&models.StockMovement{}, "stock_id = ?", stockID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
