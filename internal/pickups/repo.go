package pickups

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scrapmandi/scrapmandi-backend/pkg/db/models"
	"github.com/scrapmandi/scrapmandi-backend/pkg/enums"
)

// Repository defines persistence operations for pickups.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, pickup *models.Pickup) (*models.Pickup, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Pickup, error)
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Pickup, error)
	UpdateStatusIf(ctx context.Context, id uuid.UUID, from []enums.PickupStatus, to enums.PickupStatus, updates map[string]any) (bool, error)
	SetProofImages(ctx context.Context, id uuid.UUID, images []string) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a pickups repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, pickup *models.Pickup) (*models.Pickup, error) {
	if pickup.ID == uuid.Nil {
		pickup.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(pickup).Error; err != nil {
		return nil, err
	}
	return pickup, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Pickup, error) {
	var pickup models.Pickup
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&pickup).Error
	if err != nil {
		return nil, err
	}
	return &pickup, nil
}

func (r *repository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Pickup, error) {
	var pickup models.Pickup
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&pickup).Error
	if err != nil {
		return nil, err
	}
	return &pickup, nil
}

func (r *repository) UpdateStatusIf(ctx context.Context, id uuid.UUID, from []enums.PickupStatus, to enums.PickupStatus, updates map[string]any) (bool, error) {
	set := map[string]any{"status": to}
	for k, v := range updates {
		set[k] = v
	}
	res := r.db.WithContext(ctx).
		Model(&models.Pickup{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(set)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SetProofImages goes through the model so the json serializer applies.
func (r *repository) SetProofImages(ctx context.Context, id uuid.UUID, images []string) error {
	return r.db.WithContext(ctx).
		Model(&models.Pickup{}).
		Where("id = ?", id).
		Select("proof_images").
		Updates(&models.Pickup{ProofImages: images}).Error
}
