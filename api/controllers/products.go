package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/praveensri2018/sivanyaAPI/api/responses"
	"github.com/praveensri2018/sivanyaAPI/api/validators"
	productssvc "github.com/praveensri2018/sivanyaAPI/internal/products"
	"github.com/praveensri2018/sivanyaAPI/pkg/enums"
	pkgerrors "github.com/praveensri2018/sivanyaAPI/pkg/errors"
	"github.com/praveensri2018/sivanyaAPI/pkg/logger"
)

type sizeStockPayload struct {
	Size     string `json:"size" validate:"required,max=10"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

type tierPricePayload struct {
	Size     string          `json:"size" validate:"required,max=10"`
	UserType string          `json:"user_type" validate:"required"`
	Price    decimal.Decimal `json:"price" validate:"required"`
}

type createProductRequest struct {
	Name        string             `json:"name" validate:"required,min=2,max=200"`
	CategoryID  *int64             `json:"category_id,omitempty"`
	Description *string            `json:"description,omitempty"`
	Stock       []sizeStockPayload `json:"stock,omitempty" validate:"omitempty,dive"`
	Prices      []tierPricePayload `json:"prices,omitempty" validate:"omitempty,dive"`
}

func (p createProductRequest) toInput() (productssvc.CreateInput, error) {
	input := productssvc.CreateInput{
		Name:        validators.SanitizeString(p.Name, 200),
		CategoryID:  p.CategoryID,
		Description: p.Description,
	}
	for _, entry := range p.Stock {
		input.Stock = append(input.Stock, productssvc.SizeStock{
			Size:     validators.SanitizeString(entry.Size, 10),
			Quantity: entry.Quantity,
		})
	}
	for _, entry := range p.Prices {
		tier, err := enums.ParseUserTier(entry.UserType)
		if err != nil {
			return productssvc.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user type")
		}
		input.Prices = append(input.Prices, productssvc.TierPrice{
			Size:     validators.SanitizeString(entry.Size, 10),
			UserType: tier,
			Price:    entry.Price,
		})
	}
	return input, nil
}

// ProductCreate handles catalog entry creation with opening stock and
// prices.
func ProductCreate(svc productssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// ProductList returns the catalog.
func ProductList(svc productssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

// ProductGet returns one product with its balances and price entries.
func ProductGet(svc productssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := pathID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Get(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}
