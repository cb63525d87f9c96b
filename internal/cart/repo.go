package cart

import (
	"context"

	"github.com/praveensri2018/sivanyaAPI/pkg/db"
	"github.com/praveensri2018/sivanyaAPI/pkg/db/models"
	"github.com/praveensri2018/sivanyaAPI/pkg/enums"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DetailedLine is a cart line joined with the product name and the unit
// price for the viewer's tier. UnitPrice is nil when no price entry exists
// for the tier yet.
type DetailedLine struct {
	CartID      int64            `gorm:"column:cart_id"`
	ProductID   int64            `gorm:"column:product_id"`
	ProductName string           `gorm:"column:product_name"`
	Size        string           `gorm:"column:size"`
	Quantity    int              `gorm:"column:quantity"`
	UnitPrice   *decimal.Decimal `gorm:"column:price"`
}

// Repository manages persistence for cart lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Upsert(ctx context.Context, line *models.CartLine) error
	ListByUser(ctx context.Context, userID int64) ([]models.CartLine, error)
	ListDetailed(ctx context.Context, userID int64, tier enums.UserTier) ([]DetailedLine, error)
	FindByID(ctx context.Context, cartID int64) (*models.CartLine, error)
	UpdateQuantity(ctx context.Context, cartID int64, quantity int) (*models.CartLine, error)
	Delete(ctx context.Context, cartID int64) error
	DeleteAllForUser(ctx context.Context, userID int64) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a cart repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Upsert inserts the line, or accumulates its quantity onto the existing
// line for the same (user, product, size).
func (r *repository) Upsert(ctx context.Context, line *models.CartLine) error {
	err := r.db.WithContext(ctx).Create(line).Error
	if err == nil {
		return nil
	}
	if !db.IsUniqueViolation(err) {
		return err
	}

	var existing models.CartLine
	tx := r.db.WithContext(ctx)
	if err := tx.
		Where("user_id = ? AND product_id = ? AND size = ?", line.UserID, line.ProductID, line.Size).
		First(&existing).Error; err != nil {
		return err
	}
	if err := tx.Model(&existing).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", line.Quantity)).Error; err != nil {
		return err
	}
	existing.Quantity += line.Quantity
	*line = existing
	return nil
}

func (r *repository) ListByUser(ctx context.Context, userID int64) ([]models.CartLine, error) {
	var lines []models.CartLine
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("cart_id").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *repository) ListDetailed(ctx context.Context, userID int64, tier enums.UserTier) ([]DetailedLine, error) {
	var lines []DetailedLine
	err := r.db.WithContext(ctx).Raw(`
		SELECT c.cart_id, c.product_id, p.name AS product_name, c.size, c.quantity, pp.price
		FROM cart c
		JOIN products p ON p.product_id = c.product_id
		LEFT JOIN product_pricing pp
			ON pp.product_id = c.product_id AND pp.size = c.size AND pp.user_type = ?
		WHERE c.user_id = ?
		ORDER BY c.cart_id`, tier, userID).
		Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *repository) FindByID(ctx context.Context, cartID int64) (*models.CartLine, error) {
	var line models.CartLine
	if err := r.db.WithContext(ctx).First(&line, "cart_id = ?", cartID).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *repository) UpdateQuantity(ctx context.Context, cartID int64, quantity int) (*models.CartLine, error) {
	var line models.CartLine
	if err := r.db.WithContext(ctx).First(&line, "cart_id = ?", cartID).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&line).Update("quantity", quantity).Error; err != nil {
		return nil, err
	}
	line.Quantity = quantity
	return &line, nil
}

func (r *repository) Delete(ctx context.Context, cartID int64) error {
	res := r.db.WithContext(ctx).Delete(&models.CartLine{}, "cart_id = ?", cartID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) DeleteAllForUser(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).Delete(&models.CartLine{}, "user_id = ?", userID).Error
}
