package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/scrapmandi/scrapmandi-backend/pkg/enums"
)

// Pickup tracks physical collection of a purchased listing. One per order.
type Pickup struct {
	ID            uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID       uuid.UUID          `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	ScheduledDate time.Time          `gorm:"column:scheduled_date;not null"`
	Status        enums.PickupStatus `gorm:"column:status;type:text;not null;default:'scheduled'"`
	ProofImages   []string           `gorm:"column:proof_images;type:jsonb;serializer:json"`
	DeliveredAt   *time.Time         `gorm:"column:delivered_at"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
