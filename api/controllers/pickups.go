package controllers

import (
	"net/http"
	"time"

	"github.com/scrapmandi/scrapmandi-backend/api/middleware"
	"github.com/scrapmandi/scrapmandi-backend/api/responses"
	"github.com/scrapmandi/scrapmandi-backend/api/validators"
	"github.com/scrapmandi/scrapmandi-backend/internal/pickups"
	"github.com/scrapmandi/scrapmandi-backend/pkg/enums"
	pkgerrors "github.com/scrapmandi/scrapmandi-backend/pkg/errors"
	"github.com/scrapmandi/scrapmandi-backend/pkg/logger"
)

type schedulePickupRequest struct {
	OrderID       string `json:"order_id" validate:"required,uuid"`
	ScheduledDate string `json:"scheduled_date" validate:"required"`
}

type pickupStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=in_transit delivered"`
	// Proof images are required when moving to delivered.
	ProofImages []string `json:"proof_images" validate:"omitempty,dive,url"`
}

// AdminSchedulePickup books collection for a confirmed order.
func AdminSchedulePickup(svc pickups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pickups service unavailable"))
			return
		}

		var body schedulePickupRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := validators.ParseUUIDField(body.OrderID, "order_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		scheduled, err := time.Parse(time.RFC3339, body.ScheduledDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "scheduled_date must be RFC 3339"))
			return
		}

		pickup, err := svc.Schedule(r.Context(), pickups.ScheduleInput{
			OrderID:       orderID,
			ScheduledDate: scheduled,
			ActorID:       middleware.UserIDFromContext(r.Context()),
			ActorRole:     enums.UserRole(middleware.RoleFromContext(r.Context())),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, pickup)
	}
}

// AdminUpdatePickupStatus moves a pickup to in_transit or delivered. The
// owning order advances in lockstep.
func AdminUpdatePickupStatus(svc pickups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pickups service unavailable"))
			return
		}

		pickupID, err := validators.ParseUUIDParam(r, "pickupId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body pickupStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actorID := middleware.UserIDFromContext(r.Context())
		actorRole := enums.UserRole(middleware.RoleFromContext(r.Context()))

		switch enums.PickupStatus(body.Status) {
		case enums.PickupStatusInTransit:
			pickup, err := svc.MarkInTransit(r.Context(), pickupID, actorID, actorRole)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, pickup)
		case enums.PickupStatusDelivered:
			pickup, err := svc.MarkDelivered(r.Context(), pickups.DeliverInput{
				PickupID:    pickupID,
				ProofImages: body.ProofImages,
				ActorID:     actorID,
				ActorRole:   actorRole,
			})
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, pickup)
		default:
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unsupported pickup status"))
		}
	}
}

// PickupByOrder returns the pickup booked for an order.
func PickupByOrder(svc pickups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pickups service unavailable"))
			return
		}

		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pickup, err := svc.GetByOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pickup)
	}
}
