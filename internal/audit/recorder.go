package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scrapmandi/scrapmandi-backend/pkg/db/models"
	"github.com/scrapmandi/scrapmandi-backend/pkg/logger"
)

// Entry describes a single status transition to be recorded.
type Entry struct {
	EntityType string
	EntityID   uuid.UUID
	FromStatus string
	ToStatus   string
	ActorID    *uuid.UUID
	ActorRole  string
	Note       string
}

// Recorder appends transition entries to the audit log. Failures are
// logged and swallowed so auditing never blocks a workflow.
type Recorder interface {
	Record(ctx context.Context, entry Entry)
}

type recorder struct {
	db   *gorm.DB
	logg *logger.Logger
}

// NewRecorder builds an audit recorder bound to the provided DB.
func NewRecorder(db *gorm.DB, logg *logger.Logger) (Recorder, error) {
	if db == nil {
		return nil, fmt.Errorf("audit db handle required")
	}
	return &recorder{db: db, logg: logg}, nil
}

func (r *recorder) Record(ctx context.Context, entry Entry) {
	row := models.AuditLog{
		ID:         uuid.New(),
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		FromStatus: entry.FromStatus,
		ToStatus:   entry.ToStatus,
		ActorID:    entry.ActorID,
		ActorRole:  entry.ActorRole,
		Note:       entry.Note,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil && r.logg != nil {
		ctx = r.logg.WithFields(ctx, map[string]any{
			"entity_type": entry.EntityType,
			"entity_id":   entry.EntityID.String(),
		})
		r.logg.Error(ctx, "recording audit entry", err)
	}
}

// ListByEntity returns transitions for one entity, oldest first.
func ListByEntity(ctx context.Context, db *gorm.DB, entityType string, entityID uuid.UUID) ([]models.AuditLog, error) {
	var rows []models.AuditLog
	err := db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
