package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/scrapmandi/scrapmandi-backend/api/middleware"
	"github.com/scrapmandi/scrapmandi-backend/api/responses"
	"github.com/scrapmandi/scrapmandi-backend/api/validators"
	"github.com/scrapmandi/scrapmandi-backend/internal/listings"
	pkgerrors "github.com/scrapmandi/scrapmandi-backend/pkg/errors"
	"github.com/scrapmandi/scrapmandi-backend/pkg/logger"
)

type submitListingRequest struct {
	Title           string   `json:"title" validate:"required,min=3,max=200"`
	CategoryID      string   `json:"category_id" validate:"required,uuid"`
	Description     string   `json:"description" validate:"omitempty,max=2000"`
	EstimatedWeight string   `json:"estimated_weight" validate:"required"`
	Price           string   `json:"price" validate:"required"`
	Images          []string `json:"images" validate:"required,dive,url"`
	Location        string   `json:"location" validate:"omitempty,max=200"`
}

// SellerSubmitListing creates a listing in the moderation queue.
func SellerSubmitListing(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listings service unavailable"))
			return
		}

		var body submitListingRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		categoryID, err := uuid.Parse(body.CategoryID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "category_id must be a uuid"))
			return
		}
		price, err := decimal.NewFromString(body.Price)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "price must be a decimal number"))
			return
		}
		weight, err := decimal.NewFromString(body.EstimatedWeight)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "estimated_weight must be a decimal number"))
			return
		}

		listing, err := svc.Submit(r.Context(), listings.SubmitInput{
			SellerID:        middleware.UserIDFromContext(r.Context()),
			Title:           body.Title,
			CategoryID:      categoryID,
			Description:     body.Description,
			EstimatedWeight: weight,
			Price:           price,
			Images:          body.Images,
			Location:        body.Location,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, listing)
	}
}

// SellerListings returns the caller's own listings in every status.
func SellerListings(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listings service unavailable"))
			return
		}

		rows, err := svc.SellerListings(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// BrowseListings serves the public storefront. Anonymous callers get a
// preview slice; authenticated callers see the full purchasable set.
func BrowseListings(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listings service unavailable"))
			return
		}

		authenticated := middleware.UserIDFromContext(r.Context()) != uuid.Nil
		rows, err := svc.Browse(r.Context(), authenticated)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func ListingDetail(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listings service unavailable"))
			return
		}

		listingID, err := validators.ParseUUIDParam(r, "listingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listing, err := svc.Get(r.Context(), listingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, listing)
	}
}

// CategoryList exposes the scrap material categories for pickers.
func CategoryList(repo listings.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listings repository unavailable"))
			return
		}

		rows, err := repo.Categories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories"))
			return
		}
		responses.WriteSuccess(w, rows)
	}
}
