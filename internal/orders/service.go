package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scrapmandi/scrapmandi-backend/internal/audit"
	"github.com/scrapmandi/scrapmandi-backend/pkg/db/models"
	"github.com/scrapmandi/scrapmandi-backend/pkg/enums"
	pkgerrors "github.com/scrapmandi/scrapmandi-backend/pkg/errors"
	"github.com/scrapmandi/scrapmandi-backend/pkg/logger"
	"github.com/scrapmandi/scrapmandi-backend/pkg/razorpay"
)

const entityType = "order"

type listingGetter interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
}

type userGetter interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type providerClient interface {
	CreateOrder(ctx context.Context, params razorpay.CreateOrderParams) (*razorpay.Order, error)
	KeyID() string
	Currency() string
}

type service struct {
	repo     Repository
	listings listingGetter
	users    userGetter
	provider providerClient
	audit    audit.Recorder
	logg     *logger.Logger
}

// InitiateInput captures a buyer's purchase attempt.
type InitiateInput struct {
	BuyerID   uuid.UUID
	ListingID uuid.UUID
}

// InitiateResult carries everything the checkout client needs to open the
// payment widget.
type InitiateResult struct {
	Order           *models.Order `json:"order"`
	ProviderOrderID string        `json:"provider_order_id"`
	ProviderKeyID   string        `json:"provider_key_id"`
	AmountPaise     int64         `json:"amount_paise"`
	Currency        string        `json:"currency"`
}

// NewService builds the order lifecycle service.
func NewService(repo Repository, listings listingGetter, users userGetter, provider providerClient, rec audit.Recorder, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if listings == nil {
		return nil, fmt.Errorf("listing getter required")
	}
	if users == nil {
		return nil, fmt.Errorf("user getter required")
	}
	if provider == nil {
		return nil, fmt.Errorf("payment provider client required")
	}
	if rec == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	return &service{
		repo:     repo,
		listings: listings,
		users:    users,
		provider: provider,
		audit:    rec,
		logg:     logg,
	}, nil
}

func (s *service) Initiate(ctx context.Context, input InitiateInput) (*InitiateResult, error) {
	if input.BuyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "buyer identity missing")
	}
	if input.ListingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing id required")
	}

	buyer, err := s.users.FindByID(ctx, input.BuyerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "buyer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load buyer")
	}
	if !buyer.Status.CanTransact() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "buyer account is not active")
	}

	listing, err := s.listings.FindByID(ctx, input.ListingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}
	if listing.SellerID == input.BuyerID {
		return nil, pkgerrors.New(pkgerrors.CodeSelfPurchase, "sellers cannot buy their own listing")
	}
	if !listing.Status.IsPurchasable() {
		return nil, pkgerrors.New(pkgerrors.CodeNotPurchasable, "listing is not available for purchase")
	}

	// Price is snapshotted here; later listing edits never change the order.
	order := &models.Order{
		ListingID:     listing.ID,
		BuyerID:       input.BuyerID,
		Amount:        listing.Price,
		Currency:      s.provider.Currency(),
		Status:        enums.OrderStatusInitiated,
		PaymentStatus: enums.PaymentStatusPending,
	}
	draft, err := s.repo.Create(ctx, order)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}

	amountPaise := draft.Amount.Shift(2).IntPart()
	providerOrder, err := s.provider.CreateOrder(ctx, razorpay.CreateOrderParams{
		Amount:  amountPaise,
		Receipt: draft.ID.String(),
		Notes:   map[string]string{"order_id": draft.ID.String()},
	})
	if err != nil {
		// The draft is unusable without a provider order; remove it so the
		// listing is not blocked by a phantom purchase.
		if delErr := s.repo.Delete(ctx, draft.ID); delErr != nil && s.logg != nil {
			s.logg.Error(s.logg.WithOrderID(ctx, draft.ID.String()), "deleting draft order after provider failure", delErr)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create provider order")
	}

	if err := s.repo.UpdateProviderOrderID(ctx, draft.ID, providerOrder.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store provider order id")
	}
	draft.ProviderOrderID = &providerOrder.ID

	s.audit.Record(ctx, audit.Entry{
		EntityType: entityType,
		EntityID:   draft.ID,
		FromStatus: "",
		ToStatus:   string(enums.OrderStatusInitiated),
		ActorID:    &input.BuyerID,
		ActorRole:  string(enums.UserRoleBuyer),
	})

	return &InitiateResult{
		Order:           draft,
		ProviderOrderID: providerOrder.ID,
		ProviderKeyID:   s.provider.KeyID(),
		AmountPaise:     amountPaise,
		Currency:        draft.Currency,
	}, nil
}

func (s *service) Get(ctx context.Context, orderID, actorID uuid.UUID, role enums.UserRole) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if role != enums.UserRoleAdmin && order.BuyerID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to caller")
	}
	return order, nil
}

func (s *service) BuyerOrders(ctx context.Context, buyerID uuid.UUID) ([]models.Order, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "buyer identity missing")
	}
	rows, err := s.repo.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list buyer orders")
	}
	return rows, nil
}

// Advance moves an order one step along the pickup progression. Used by the
// pickup tracker so order and pickup statuses stay in lockstep.
func (s *service) Advance(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, from, to enums.OrderStatus, actorID uuid.UUID, actorRole enums.UserRole) error {
	if from == to {
		// The conditional update would still match the row, so a
		// same-status write has to be rejected before it.
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("order is already %s", to))
	}
	repo := s.repo.WithTx(tx)
	moved, err := repo.UpdateStatusIf(ctx, orderID, []enums.OrderStatus{from}, to, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "advance order status")
	}
	if !moved {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("order cannot move to %s unless it is %s", to, from))
	}
	s.audit.Record(ctx, audit.Entry{
		EntityType: entityType,
		EntityID:   orderID,
		FromStatus: string(from),
		ToStatus:   string(to),
		ActorID:    &actorID,
		ActorRole:  string(actorRole),
	})
	return nil
}
