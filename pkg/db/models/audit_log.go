package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog is an append-only record of a status transition on a listing,
// order, payment or pickup. Rows are never updated or deleted.
type AuditLog struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EntityType string     `gorm:"column:entity_type;not null;index:idx_audit_entity"`
	EntityID   uuid.UUID  `gorm:"column:entity_id;type:uuid;not null;index:idx_audit_entity"`
	FromStatus string     `gorm:"column:from_status;not null"`
	ToStatus   string     `gorm:"column:to_status;not null"`
	ActorID    *uuid.UUID `gorm:"column:actor_id;type:uuid"`
	ActorRole  string     `gorm:"column:actor_role"`
	Note       string     `gorm:"column:note"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
}
