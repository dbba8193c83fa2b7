package controllers

import (
	"net/http"

	"github.com/scrapmandi/scrapmandi-backend/api/responses"
	"github.com/scrapmandi/scrapmandi-backend/api/validators"
	"github.com/scrapmandi/scrapmandi-backend/internal/users"
	"github.com/scrapmandi/scrapmandi-backend/pkg/enums"
	pkgerrors "github.com/scrapmandi/scrapmandi-backend/pkg/errors"
	"github.com/scrapmandi/scrapmandi-backend/pkg/logger"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"omitempty,min=7,max=20"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=seller buyer"`
	Location string `json:"location" validate:"omitempty,max=200"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthRegister onboards a new seller or buyer account. Sellers land in the
// admin approval queue; buyers can transact immediately.
func AuthRegister(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		var body registerRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.Register(r.Context(), users.RegisterInput{
			Name:     body.Name,
			Email:    body.Email,
			Phone:    body.Phone,
			Password: body.Password,
			Role:     enums.UserRole(body.Role),
			Location: body.Location,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]users.UserSummary{"user": *summary})
	}
}

func AuthLogin(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		var body loginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), body.Email, body.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
