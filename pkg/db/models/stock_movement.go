package models

import (
	"time"

	"github.com/praveensri2018/sivanyaAPI/pkg/enums"
)

// StockMovement is one immutable row of the stock ledger. Rows are only
// appended; available quantity is the signed sum per (product, size).
type StockMovement struct {
	ID        int64                `gorm:"column:stock_id;primaryKey;autoIncrement"`
	ProductID int64                `gorm:"column:product_id;not null;index:idx_stock_product_size,priority:1"`
	Size      string               `gorm:"column:size;not null;index:idx_stock_product_size,priority:2"`
	Quantity  int                  `gorm:"column:quantity;not null"`
	Direction enums.StockDirection `gorm:"column:stock_type;type:text;not null"`
	CreatedAt time.Time            `gorm:"column:created_at;autoCreateTime"`
}

func (StockMovement) TableName() string {
	return "product_stock"
}
