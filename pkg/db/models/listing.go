package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/scrapmandi/scrapmandi-backend/pkg/enums"
)

// Listing is a seller's offer of scrap material with its approval lifecycle.
type Listing struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID        uuid.UUID           `gorm:"column:seller_id;type:uuid;not null"`
	Title           string              `gorm:"column:title;not null"`
	CategoryID      uuid.UUID           `gorm:"column:category_id;type:uuid;not null"`
	Description     string              `gorm:"column:description;not null"`
	EstimatedWeight decimal.Decimal     `gorm:"column:estimated_weight;type:numeric(12,3);not null"`
	Price           decimal.Decimal     `gorm:"column:price;type:numeric(12,2);not null"`
	Images          []string            `gorm:"column:images;type:jsonb;serializer:json"`
	Location        string              `gorm:"column:location;not null"`
	Status          enums.ListingStatus `gorm:"column:status;type:text;not null;default:'submitted'"`
	RejectionReason *string             `gorm:"column:rejection_reason"`
	ApprovedBy      *uuid.UUID          `gorm:"column:approved_by;type:uuid"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
