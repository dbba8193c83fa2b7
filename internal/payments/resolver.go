package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scrapmandi/scrapmandi-backend/internal/audit"
	"github.com/scrapmandi/scrapmandi-backend/internal/orders"
	"github.com/scrapmandi/scrapmandi-backend/pkg/db/models"
	"github.com/scrapmandi/scrapmandi-backend/pkg/enums"
	pkgerrors "github.com/scrapmandi/scrapmandi-backend/pkg/errors"
	"github.com/scrapmandi/scrapmandi-backend/pkg/logger"
	"github.com/scrapmandi/scrapmandi-backend/pkg/metrics"
)

// Confirmation sources, used for audit trails and metrics labels.
const (
	SourceClient  = "client"
	SourceWebhook = "webhook"
)

type listingSeller interface {
	MarkSold(ctx context.Context, tx *gorm.DB, listingID uuid.UUID) error
}

// Resolver applies a successful payment to an order exactly once. Both the
// client callback and the provider webhook funnel into it, in either order,
// possibly concurrently.
type Resolver interface {
	ResolvePaymentSuccess(ctx context.Context, input ResolveInput) (*Resolution, error)
	MarkPaymentFailed(ctx context.Context, providerOrderID string) error
}

// ResolveInput identifies the paid provider order.
type ResolveInput struct {
	ProviderOrderID   string
	ProviderPaymentID string
	Source            string
}

// Resolution reports what the attempt did.
type Resolution struct {
	Order            *models.Order
	AlreadyConfirmed bool
	ListingSold      bool
}

type resolver struct {
	orders   orders.Repository
	listings listingSeller
	audit    audit.Recorder
	metrics  *metrics.PaymentMetrics
	logg     *logger.Logger
}

// NewResolver builds the payment confirmation resolver.
func NewResolver(ordersRepo orders.Repository, listings listingSeller, rec audit.Recorder, pm *metrics.PaymentMetrics, logg *logger.Logger) (Resolver, error) {
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if listings == nil {
		return nil, fmt.Errorf("listing seller required")
	}
	if rec == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	return &resolver{
		orders:   ordersRepo,
		listings: listings,
		audit:    rec,
		metrics:  pm,
		logg:     logg,
	}, nil
}

// ResolvePaymentSuccess confirms the order behind providerOrderID. The order
// row is the synchronization point: a conditional update from initiated to
// confirmed can only ever succeed once, so whichever entry path loses the
// race sees a no-op and reports the order as already confirmed. The order
// confirm is deliberately written before the listing flip; if the listing
// write is lost the reconciliation job repairs it later.
func (r *resolver) ResolvePaymentSuccess(ctx context.Context, input ResolveInput) (*Resolution, error) {
	providerOrderID := strings.TrimSpace(input.ProviderOrderID)
	if providerOrderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "provider order id required")
	}
	source := input.Source
	if source == "" {
		source = SourceClient
	}

	order, err := r.orders.FindByProviderOrderID(ctx, providerOrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no order for provider order id")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order by provider id")
	}

	now := time.Now().UTC()
	updates := map[string]any{
		"payment_status": enums.PaymentStatusPaid,
		"confirmed_at":   now,
	}
	if pid := strings.TrimSpace(input.ProviderPaymentID); pid != "" {
		updates["provider_payment_id"] = pid
	}

	moved, err := r.orders.UpdateStatusIf(ctx, order.ID,
		[]enums.OrderStatus{enums.OrderStatusInitiated},
		enums.OrderStatusConfirmed, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm order")
	}
	if !moved {
		// Someone else confirmed first. That is success, not an error;
		// webhooks retry and clients double-submit.
		r.metrics.IncDuplicate(source)
		current, err := r.orders.FindByID(ctx, order.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}
		if current.Status == enums.OrderStatusInitiated {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order confirmation did not apply")
		}
		return &Resolution{Order: current, AlreadyConfirmed: true}, nil
	}

	r.metrics.IncConfirmed(source)
	r.audit.Record(ctx, audit.Entry{
		EntityType: "order",
		EntityID:   order.ID,
		FromStatus: string(enums.OrderStatusInitiated),
		ToStatus:   string(enums.OrderStatusConfirmed),
		ActorRole:  source,
	})
	r.audit.Record(ctx, audit.Entry{
		EntityType: "payment",
		EntityID:   order.ID,
		FromStatus: string(enums.PaymentStatusPending),
		ToStatus:   string(enums.PaymentStatusPaid),
		ActorRole:  source,
	})

	resolution := &Resolution{Order: order, ListingSold: true}

	if err := r.listings.MarkSold(ctx, nil, order.ListingID); err != nil {
		// The payment is captured either way. A state conflict means a
		// competing order already sold the listing; anything else is a
		// lost write the reconciliation job will retry.
		resolution.ListingSold = false
		if r.logg != nil {
			lctx := r.logg.WithFields(ctx, map[string]any{
				"order_id":   order.ID.String(),
				"listing_id": order.ListingID.String(),
			})
			if pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
				r.logg.Warn(lctx, "listing already sold when confirming order")
			} else {
				r.logg.Error(lctx, "marking listing sold after confirmation", err)
			}
		}
	} else {
		r.audit.Record(ctx, audit.Entry{
			EntityType: "listing",
			EntityID:   order.ListingID,
			ToStatus:   string(enums.ListingStatusSold),
			ActorRole:  source,
		})
	}

	confirmed, err := r.orders.FindByID(ctx, order.ID)
	if err == nil {
		resolution.Order = confirmed
	}
	return resolution, nil
}

// MarkPaymentFailed records a failed capture. The order stays initiated so
// the buyer can retry checkout.
func (r *resolver) MarkPaymentFailed(ctx context.Context, providerOrderID string) error {
	providerOrderID = strings.TrimSpace(providerOrderID)
	if providerOrderID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "provider order id required")
	}
	order, err := r.orders.FindByProviderOrderID(ctx, providerOrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "no order for provider order id")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order by provider id")
	}
	if order.Status != enums.OrderStatusInitiated {
		// Confirmed orders keep their paid status even if a stale
		// failure event arrives afterwards.
		return nil
	}
	moved, err := r.orders.UpdateStatusIf(ctx, order.ID,
		[]enums.OrderStatus{enums.OrderStatusInitiated},
		enums.OrderStatusInitiated,
		map[string]any{"payment_status": enums.PaymentStatusFailed})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark payment failed")
	}
	if moved {
		r.audit.Record(ctx, audit.Entry{
			EntityType: "payment",
			EntityID:   order.ID,
			FromStatus: string(enums.PaymentStatusPending),
			ToStatus:   string(enums.PaymentStatusFailed),
		})
	}
	return nil
}
