package models

import "time"

// Product is a catalog entry. Stock movements and price entries hang off
// the (product, size) pair rather than the product alone.
type Product struct {
	ID          int64     `gorm:"column:product_id;primaryKey;autoIncrement"`
	Name        string    `gorm:"column:name;not null"`
	CategoryID  *int64    `gorm:"column:category_id"`
	Description *string   `gorm:"column:description"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Product) TableName() string {
	return "products"
}
