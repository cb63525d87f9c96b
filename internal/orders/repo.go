package orders

import (
	"context"

	"github.com/praveensri2018/sivanyaAPI/pkg/db/models"
	"github.com/praveensri2018/sivanyaAPI/pkg/enums"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DetailLine is an order line joined with the catalog name, as rendered in
// the order detail view.
type DetailLine struct {
	OrderDetailID int64           `gorm:"column:order_detail_id" json:"order_detail_id"`
	ProductID     int64           `gorm:"column:product_id" json:"product_id"`
	ProductName   string          `gorm:"column:product_name" json:"product_name"`
	Size          string          `gorm:"column:size" json:"size"`
	Quantity      int             `gorm:"column:quantity" json:"quantity"`
	Price         decimal.Decimal `gorm:"column:price" json:"price"`
	Total         decimal.Decimal `gorm:"-" json:"line_total"`
}

// LineTotal returns quantity times the frozen unit price.
func (l DetailLine) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Repository manages persistence for order headers and lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	CreateLines(ctx context.Context, lines []models.OrderLine) error
	FindByID(ctx context.Context, orderID int64) (*models.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Order, error)
	ListAll(ctx context.Context) ([]models.Order, error)
	ListLines(ctx context.Context, orderID int64) ([]DetailLine, error)
	UpdateStatusFrom(ctx context.Context, orderID int64, from, to enums.OrderStatus) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an orders repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Omit("Lines").Create(order).Error
}

func (r *repository) CreateLines(ctx context.Context, lines []models.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&lines).Error
}

func (r *repository) FindByID(ctx context.Context, orderID int64) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "order_id = ?", orderID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListByUser(ctx context.Context, userID int64) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("order_id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) ListAll(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.WithContext(ctx).Order("order_id DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) ListLines(ctx context.Context, orderID int64) ([]DetailLine, error) {
	var lines []DetailLine
	err := r.db.WithContext(ctx).Raw(`
		SELECT d.order_detail_id, d.product_id, p.name AS product_name, d.size, d.quantity, d.price
		FROM order_details d
		JOIN products p ON p.product_id = d.product_id
		WHERE d.order_id = ?
		ORDER BY d.order_detail_id`, orderID).
		Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// UpdateStatusFrom flips the status only while the row still holds the
// status the caller just read, so two concurrent updates cannot both win.
func (r *repository) UpdateStatusFrom(ctx context.Context, orderID int64, from, to enums.OrderStatus) error {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("order_id = ? AND order_status = ?", orderID, from).
		Update("order_status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
