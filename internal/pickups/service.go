package pickups

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scrapmandi/scrapmandi-backend/internal/audit"
	"github.com/scrapmandi/scrapmandi-backend/pkg/db/models"
	"github.com/scrapmandi/scrapmandi-backend/pkg/enums"
	pkgerrors "github.com/scrapmandi/scrapmandi-backend/pkg/errors"
)

const entityType = "pickup"

type orderAdvancer interface {
	Advance(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, from, to enums.OrderStatus, actorID uuid.UUID, actorRole enums.UserRole) error
}

// Service tracks physical collection of sold material. Each pickup
// transition drags the owning order along the
// confirmed -> pickup_scheduled -> picked -> completed progression.
type Service interface {
	Schedule(ctx context.Context, input ScheduleInput) (*models.Pickup, error)
	MarkInTransit(ctx context.Context, pickupID, actorID uuid.UUID, actorRole enums.UserRole) (*models.Pickup, error)
	MarkDelivered(ctx context.Context, input DeliverInput) (*models.Pickup, error)
	GetByOrder(ctx context.Context, orderID uuid.UUID) (*models.Pickup, error)
}

type service struct {
	repo   Repository
	orders orderAdvancer
	audit  audit.Recorder
}

// ScheduleInput books the collection slot for a confirmed order.
type ScheduleInput struct {
	OrderID       uuid.UUID
	ScheduledDate time.Time
	ActorID       uuid.UUID
	ActorRole     enums.UserRole
}

// DeliverInput closes out a pickup with its proof photos.
type DeliverInput struct {
	PickupID    uuid.UUID
	ProofImages []string
	ActorID     uuid.UUID
	ActorRole   enums.UserRole
}

// NewService builds the pickup tracker.
func NewService(repo Repository, orders orderAdvancer, rec audit.Recorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("pickups repository required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order advancer required")
	}
	if rec == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	return &service{repo: repo, orders: orders, audit: rec}, nil
}

func (s *service) Schedule(ctx context.Context, input ScheduleInput) (*models.Pickup, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.ScheduledDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "scheduled date required")
	}

	if _, err := s.repo.FindByOrderID(ctx, input.OrderID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "pickup already scheduled for order")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing pickup")
	}

	// Moving the order first means an order that is not confirmed (or
	// already scheduled elsewhere) rejects the booking.
	if err := s.orders.Advance(ctx, nil, input.OrderID,
		enums.OrderStatusConfirmed, enums.OrderStatusPickupScheduled,
		input.ActorID, input.ActorRole); err != nil {
		return nil, err
	}

	pickup, err := s.repo.Create(ctx, &models.Pickup{
		OrderID:       input.OrderID,
		ScheduledDate: input.ScheduledDate.UTC(),
		Status:        enums.PickupStatusScheduled,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create pickup")
	}

	s.audit.Record(ctx, audit.Entry{
		EntityType: entityType,
		EntityID:   pickup.ID,
		FromStatus: "",
		ToStatus:   string(enums.PickupStatusScheduled),
		ActorID:    &input.ActorID,
		ActorRole:  string(input.ActorRole),
	})

	return pickup, nil
}

func (s *service) MarkInTransit(ctx context.Context, pickupID, actorID uuid.UUID, actorRole enums.UserRole) (*models.Pickup, error) {
	pickup, err := s.load(ctx, pickupID)
	if err != nil {
		return nil, err
	}

	moved, err := s.repo.UpdateStatusIf(ctx, pickup.ID,
		[]enums.PickupStatus{enums.PickupStatusScheduled},
		enums.PickupStatusInTransit, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update pickup status")
	}
	if !moved {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("pickup cannot move to in_transit from %s", pickup.Status))
	}

	if err := s.orders.Advance(ctx, nil, pickup.OrderID,
		enums.OrderStatusPickupScheduled, enums.OrderStatusPicked,
		actorID, actorRole); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Entry{
		EntityType: entityType,
		EntityID:   pickup.ID,
		FromStatus: string(enums.PickupStatusScheduled),
		ToStatus:   string(enums.PickupStatusInTransit),
		ActorID:    &actorID,
		ActorRole:  string(actorRole),
	})

	return s.repo.FindByID(ctx, pickup.ID)
}

func (s *service) MarkDelivered(ctx context.Context, input DeliverInput) (*models.Pickup, error) {
	if len(input.ProofImages) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery proof images required")
	}
	pickup, err := s.load(ctx, input.PickupID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	moved, err := s.repo.UpdateStatusIf(ctx, pickup.ID,
		[]enums.PickupStatus{enums.PickupStatusInTransit},
		enums.PickupStatusDelivered,
		map[string]any{"delivered_at": now})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update pickup status")
	}
	if !moved {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("pickup cannot move to delivered from %s", pickup.Status))
	}

	if err := s.repo.SetProofImages(ctx, pickup.ID, input.ProofImages); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store proof images")
	}

	if err := s.orders.Advance(ctx, nil, pickup.OrderID,
		enums.OrderStatusPicked, enums.OrderStatusCompleted,
		input.ActorID, input.ActorRole); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Entry{
		EntityType: entityType,
		EntityID:   pickup.ID,
		FromStatus: string(enums.PickupStatusInTransit),
		ToStatus:   string(enums.PickupStatusDelivered),
		ActorID:    &input.ActorID,
		ActorRole:  string(input.ActorRole),
	})

	return s.repo.FindByID(ctx, pickup.ID)
}

func (s *service) GetByOrder(ctx context.Context, orderID uuid.UUID) (*models.Pickup, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	pickup, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no pickup for order")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pickup")
	}
	return pickup, nil
}

func (s *service) load(ctx context.Context, pickupID uuid.UUID) (*models.Pickup, error) {
	if pickupID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pickup id required")
	}
	pickup, err := s.repo.FindByID(ctx, pickupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pickup not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pickup")
	}
	return pickup, nil
}
