package controllers

import (
	"net/http"

	"github.com/praveensri2018/sivanyaAPI/api/middleware"
	"github.com/praveensri2018/sivanyaAPI/api/responses"
	"github.com/praveensri2018/sivanyaAPI/api/validators"
	userssvc "github.com/praveensri2018/sivanyaAPI/internal/users"
	"github.com/praveensri2018/sivanyaAPI/pkg/db/models"
	"github.com/praveensri2018/sivanyaAPI/pkg/enums"
	pkgerrors "github.com/praveensri2018/sivanyaAPI/pkg/errors"
	"github.com/praveensri2018/sivanyaAPI/pkg/logger"
)

type registerRequest struct {
	Name     string  `json:"name" validate:"required,min=2,max=100"`
	Email    string  `json:"email" validate:"required,email"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,min=7,max=15"`
	Password string  `json:"password" validate:"required,min=8,max=128"`
	Address  *string `json:"address,omitempty"`
	UserType string  `json:"user_type" validate:"required"`
}

type loginRequest struct {
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	UserID   int64   `json:"user_id"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Phone    *string `json:"phone,omitempty"`
	Address  *string `json:"address,omitempty"`
	UserType string  `json:"user_type"`
}

func newUserResponse(user *models.User) userResponse {
	return userResponse{
		UserID:   user.ID,
		Name:     user.Name,
		Email:    user.Email,
		Phone:    user.Phone,
		Address:  user.Address,
		UserType: string(user.UserType),
	}
}

// Register handles account signup.
func Register(svc userssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload registerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tier, err := enums.ParseUserTier(payload.UserType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user type"))
			return
		}

		user, err := svc.Register(r.Context(), userssvc.RegisterInput{
			Name:     validators.SanitizeString(payload.Name, 100),
			Email:    validators.SanitizeString(payload.Email, 255),
			Phone:    payload.Phone,
			Password: payload.Password,
			Address:  payload.Address,
			UserType: tier,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newUserResponse(user))
	}
}

// Login exchanges phone and password for a signed token.
func Login(svc userssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, token, err := svc.Login(r.Context(), payload.Phone, payload.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"token": token,
			"user":  newUserResponse(user),
		})
	}
}

// Profile returns the authenticated user's account.
func Profile(svc userssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := svc.Get(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newUserResponse(user))
	}
}

type updateProfileRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Address *string `json:"address,omitempty"`
}

// UpdateProfile patches the authenticated user's mutable fields.
func UpdateProfile(svc userssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload updateProfileRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Update(r.Context(), middleware.UserIDFromContext(r.Context()), userssvc.UpdateInput{
			Name:    payload.Name,
			Address: payload.Address,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newUserResponse(user))
	}
}
