package favorites

import (
	"context"

	"github.com/praveensri2018/sivanyaAPI/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Listed is a favorite joined with catalog fields for display.
type Listed struct {
	FavoriteID  int64   `gorm:"column:favorite_id"`
	ProductID   int64   `gorm:"column:product_id"`
	ProductName string  `gorm:"column:product_name"`
	Description *string `gorm:"column:description"`
}

// Repository manages persistence for favorites.
type Repository interface {
	Add(ctx context.Context, favorite *models.Favorite) error
	ListByUser(ctx context.Context, userID int64) ([]Listed, error)
	Delete(ctx context.Context, userID, productID int64) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Add is idempotent. Marking an already favorited product is a no-op.
func (r *repository) Add(ctx context.Context, favorite *models.Favorite) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoNothing: true,
		}).
		Create(favorite).Error
}

func (r *repository) ListByUser(ctx context.Context, userID int64) ([]Listed, error) {
	var listed []Listed
	err := r.db.WithContext(ctx).Raw(`
		SELECT f.favorite_id, f.product_id, p.name AS product_name, p.description
		FROM favorites f
		JOIN products p ON p.product_id = f.product_id
		WHERE f.user_id = ?
		ORDER BY f.favorite_id DESC`, userID).
		Scan(&listed).Error
	if err != nil {
		return nil, err
	}
	return listed, nil
}

func (r *repository) Delete(ctx context.Context, userID, productID int64) error {
	res := r.db.WithContext(ctx).
		Delete(&models.Favorite{}, "user_id = ? AND product_id = ?", userID, productID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
