package controllers

import (
	"net/http"

	"github.com/praveensri2018/sivanyaAPI/api/middleware"
	"github.com/praveensri2018/sivanyaAPI/api/responses"
	"github.com/praveensri2018/sivanyaAPI/api/validators"
	favoritessvc "github.com/praveensri2018/sivanyaAPI/internal/favorites"
	"github.com/praveensri2018/sivanyaAPI/pkg/logger"
)

type addFavoriteRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
}

// FavoriteAdd marks a product as favorited. Re-adding is a no-op.
func FavoriteAdd(svc favoritessvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addFavoriteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Add(r.Context(), middleware.UserIDFromContext(r.Context()), payload.ProductID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"message": "Added to favorites"})
	}
}

// FavoriteList returns the caller's favorites.
func FavoriteList(svc favoritessvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listed, err := svc.List(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, listed)
	}
}

// FavoriteRemove unmarks a product.
func FavoriteRemove(svc favoritessvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := pathID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Remove(r.Context(), middleware.UserIDFromContext(r.Context()), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "Removed from favorites"})
	}
}
