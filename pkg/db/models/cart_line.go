package models

import "time"

// CartLine is one line of a user's in-progress cart. Re-adding the same
// (product, size) accumulates quantity onto the existing line. The order
// materializer consumes and deletes lines wholesale.
type CartLine struct {
	ID        int64     `gorm:"column:cart_id;primaryKey;autoIncrement"`
	UserID    int64     `gorm:"column:user_id;not null;uniqueIndex:uniq_cart_user_product_size,priority:1"`
	ProductID int64     `gorm:"column:product_id;not null;uniqueIndex:uniq_cart_user_product_size,priority:2"`
	Size      string    `gorm:"column:size;not null;uniqueIndex:uniq_cart_user_product_size,priority:3"`
	Quantity  int       `gorm:"column:quantity;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (CartLine) TableName() string {
	return "cart"
}
