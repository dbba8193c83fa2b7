package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scrapmandi/scrapmandi-backend/pkg/db/models"
	"github.com/scrapmandi/scrapmandi-backend/pkg/enums"
)

// Repository defines persistence operations for orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByProviderOrderID(ctx context.Context, providerOrderID string) (*models.Order, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.Order, error)
	ListByStatus(ctx context.Context, status enums.OrderStatus) ([]models.Order, error)
	ListRecent(ctx context.Context, limit int) ([]models.Order, error)
	UpdateStatusIf(ctx context.Context, id uuid.UUID, from []enums.OrderStatus, to enums.OrderStatus, updates map[string]any) (bool, error)
	UpdateProviderOrderID(ctx context.Context, id uuid.UUID, providerOrderID string) error
}

// Service exposes the order lifecycle operations.
type Service interface {
	Initiate(ctx context.Context, input InitiateInput) (*InitiateResult, error)
	Get(ctx context.Context, orderID, actorID uuid.UUID, role enums.UserRole) (*models.Order, error)
	BuyerOrders(ctx context.Context, buyerID uuid.UUID) ([]models.Order, error)
	Advance(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, from, to enums.OrderStatus, actorID uuid.UUID, actorRole enums.UserRole) error
}
