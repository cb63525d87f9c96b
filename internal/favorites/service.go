package favorites

import (
	"context"
	"errors"
	"fmt"

	"github.com/praveensri2018/sivanyaAPI/pkg/db/models"
	pkgerrors "github.com/praveensri2018/sivanyaAPI/pkg/errors"
	"gorm.io/gorm"
)

// Service manages a user's favorited products.
type Service interface {
	Add(ctx context.Context, userID, productID int64) error
	List(ctx context.Context, userID int64) ([]Listed, error)
	Remove(ctx context.Context, userID, productID int64) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("favorites repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Add(ctx context.Context, userID, productID int64) error {
	if productID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	favorite := &models.Favorite{UserID: userID, ProductID: productID}
	if err := s.repo.Add(ctx, favorite); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "add favorite")
	}
	return nil
}

func (s *service) List(ctx context.Context, userID int64) ([]Listed, error) {
	listed, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list favorites")
	}
	return listed, nil
}

func (s *service) Remove(ctx context.Context, userID, productID int64) error {
	if err := s.repo.Delete(ctx, userID, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "Favorite not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove favorite")
	}
	return nil
}
