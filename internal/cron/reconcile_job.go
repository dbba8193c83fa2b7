package cron

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/scrapmandi/scrapmandi-backend/internal/audit"
	"github.com/scrapmandi/scrapmandi-backend/pkg/db/models"
	"github.com/scrapmandi/scrapmandi-backend/pkg/enums"
	pkgerrors "github.com/scrapmandi/scrapmandi-backend/pkg/errors"
	"github.com/scrapmandi/scrapmandi-backend/pkg/logger"
)

const reconcileActorRole = "cron"

type confirmedOrdersLister interface {
	ListByStatus(ctx context.Context, status enums.OrderStatus) ([]models.Order, error)
}

type listingReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
}

type listingSeller interface {
	MarkSold(ctx context.Context, tx *gorm.DB, listingID uuid.UUID) error
}

// ReconcileListingsJob repairs confirmed orders whose listing never flipped
// to sold. The payment resolver commits the order confirmation first and the
// listing flip second; a crash or transient failure between the two leaves a
// pair this sweep completes.
type ReconcileListingsJob struct {
	orders   confirmedOrdersLister
	listings listingReader
	seller   listingSeller
	audit    audit.Recorder
	logg     *logger.Logger
}

// ReconcileListingsJobParams configure the reconciliation sweep.
type ReconcileListingsJobParams struct {
	Orders   confirmedOrdersLister
	Listings listingReader
	Seller   listingSeller
	Audit    audit.Recorder
	Logger   *logger.Logger
}

func NewReconcileListingsJob(params ReconcileListingsJobParams) (*ReconcileListingsJob, error) {
	if params.Orders == nil {
		return nil, fmt.Errorf("orders lister required")
	}
	if params.Listings == nil {
		return nil, fmt.Errorf("listing reader required")
	}
	if params.Seller == nil {
		return nil, fmt.Errorf("listing seller required")
	}
	if params.Audit == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &ReconcileListingsJob{
		orders:   params.Orders,
		listings: params.Listings,
		seller:   params.Seller,
		audit:    params.Audit,
		logg:     params.Logger,
	}, nil
}

func (j *ReconcileListingsJob) Name() string {
	return "reconcile_sold_listings"
}

// Run sweeps every confirmed order and finishes the listing-sold half where
// it is missing. Failures on one order do not stop the sweep.
func (j *ReconcileListingsJob) Run(ctx context.Context) error {
	orders, err := j.orders.ListByStatus(ctx, enums.OrderStatusConfirmed)
	if err != nil {
		return fmt.Errorf("list confirmed orders: %w", err)
	}

	var errs error
	repaired := 0
	for _, order := range orders {
		fixed, repairErr := j.repair(ctx, order)
		if repairErr != nil {
			errs = multierr.Append(errs, fmt.Errorf("order %s: %w", order.ID, repairErr))
			continue
		}
		if fixed {
			repaired++
		}
	}

	if repaired > 0 {
		j.logg.Info(j.logg.WithField(ctx, "repaired", repaired), "completed listing flips for confirmed orders")
	}
	return errs
}

func (j *ReconcileListingsJob) repair(ctx context.Context, order models.Order) (bool, error) {
	listing, err := j.listings.FindByID(ctx, order.ListingID)
	if err != nil {
		return false, fmt.Errorf("load listing %s: %w", order.ListingID, err)
	}
	if listing.Status == enums.ListingStatusSold {
		return false, nil
	}

	if err := j.seller.MarkSold(ctx, nil, listing.ID); err != nil {
		// A conflict here means the listing moved out of a purchasable
		// status since the check above; the next sweep sees the new state.
		if pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
			return false, nil
		}
		return false, fmt.Errorf("mark listing %s sold: %w", listing.ID, err)
	}

	j.audit.Record(ctx, audit.Entry{
		EntityType: "listing",
		EntityID:   listing.ID,
		FromStatus: string(listing.Status),
		ToStatus:   string(enums.ListingStatusSold),
		ActorRole:  reconcileActorRole,
		Note:       fmt.Sprintf("reconciled against confirmed order %s", order.ID),
	})
	return true, nil
}
