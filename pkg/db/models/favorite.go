package models

import "time"

// Favorite is a simple (user, product) existence record.
type Favorite struct {
	ID        int64     `gorm:"column:favorite_id;primaryKey;autoIncrement"`
	UserID    int64     `gorm:"column:user_id;not null;uniqueIndex:uniq_favorite_user_product,priority:1"`
	ProductID int64     `gorm:"column:product_id;not null;uniqueIndex:uniq_favorite_user_product,priority:2"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Favorite) TableName() string {
	return "favorites"
}
