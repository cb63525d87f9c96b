package models

import (
	"time"

	"github.com/praveensri2018/sivanyaAPI/pkg/enums"
	"github.com/shopspring/decimal"
)

// PriceEntry holds the unit price for a (product, size, tier) triple.
// Writes are upserts; the last write wins.
type PriceEntry struct {
	ID        int64           `gorm:"column:price_id;primaryKey;autoIncrement"`
	ProductID int64           `gorm:"column:product_id;not null;uniqueIndex:uniq_price_product_size_tier,priority:1"`
	Size      string          `gorm:"column:size;not null;uniqueIndex:uniq_price_product_size_tier,priority:2"`
	UserType  enums.UserTier  `gorm:"column:user_type;type:text;not null;uniqueIndex:uniq_price_product_size_tier,priority:3"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (PriceEntry) TableName() string {
	return "product_pricing"
}
