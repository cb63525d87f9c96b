package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/praveensri2018/sivanyaAPI/api/responses"
	"github.com/praveensri2018/sivanyaAPI/api/validators"
	pricingsvc "github.com/praveensri2018/sivanyaAPI/internal/pricing"
	"github.com/praveensri2018/sivanyaAPI/pkg/enums"
	pkgerrors "github.com/praveensri2018/sivanyaAPI/pkg/errors"
	"github.com/praveensri2018/sivanyaAPI/pkg/logger"
)

type upsertPriceRequest struct {
	ProductID int64           `json:"product_id" validate:"required,gt=0"`
	Size      string          `json:"size" validate:"required,max=10"`
	UserType  string          `json:"user_type" validate:"required"`
	Price     decimal.Decimal `json:"price" validate:"required"`
}

// PriceUpsert writes a (product, size, tier) price. Repeated writes
// overwrite.
func PriceUpsert(svc pricingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload upsertPriceRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tier, err := enums.ParseUserTier(payload.UserType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user type"))
			return
		}

		entry, err := svc.Upsert(r.Context(), pricingsvc.UpsertInput{
			ProductID: payload.ProductID,
			Size:      validators.SanitizeString(payload.Size, 10),
			UserType:  tier,
			Price:     payload.Price,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, entry)
	}
}

// PricesByProduct lists every tier price for a product.
func PricesByProduct(svc pricingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := pathID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, err := svc.ListByProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entries)
	}
}

type updatePriceRequest struct {
	Price decimal.Decimal `json:"price" validate:"required"`
}

// PriceUpdate rewrites one price entry.
func PriceUpdate(svc pricingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		priceID, err := pathID(r, "priceID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updatePriceRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.UpdatePrice(r.Context(), priceID, payload.Price)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entry)
	}
}

// PriceDelete removes one price entry.
func PriceDelete(svc pricingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		priceID, err := pathID(r, "priceID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), priceID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "Pricing entry deleted"})
	}
}
