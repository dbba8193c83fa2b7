package models

import (
	"time"

	"github.com/google/uuid"
)

type Category struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null;uniqueIndex"`
	Unit      string    `gorm:"column:unit;not null;default:'kg'"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
