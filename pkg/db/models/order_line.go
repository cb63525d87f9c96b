package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLine freezes product, size, quantity and unit price at order time,
// decoupled from later price entry changes.
type OrderLine struct {
	ID        int64           `gorm:"column:order_detail_id;primaryKey;autoIncrement"`
	OrderID   int64           `gorm:"column:order_id;not null;index"`
	ProductID int64           `gorm:"column:product_id;not null"`
	Size      string          `gorm:"column:size;not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (OrderLine) TableName() string {
	return "order_details"
}
