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

type setUserStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved active suspended"`
}

// AdminPendingSellers lists seller accounts awaiting approval.
func AdminPendingSellers(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		rows, err := svc.PendingApprovals(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// AdminSetUserStatus approves, activates or suspends an account.
func AdminSetUserStatus(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		userID, err := validators.ParseUUIDParam(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body setUserStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseUserStatus(body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, err.Error()))
			return
		}

		if err := svc.SetStatus(r.Context(), userID, status); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": string(status)})
	}
}
