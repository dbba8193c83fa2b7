package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/scrapmandi/scrapmandi-backend/pkg/enums"
)

// Order records a buyer's purchase of one listing. Amount is snapshotted
// from the listing price at initiation so later edits never change what
// the buyer owes.
type Order struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ListingID         uuid.UUID           `gorm:"column:listing_id;type:uuid;not null"`
	BuyerID           uuid.UUID           `gorm:"column:buyer_id;type:uuid;not null"`
	Amount            decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null"`
	Currency          string              `gorm:"column:currency;not null;default:'INR'"`
	Status            enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'initiated'"`
	PaymentStatus     enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	ProviderOrderID   *string             `gorm:"column:provider_order_id;uniqueIndex"`
	ProviderPaymentID *string             `gorm:"column:provider_payment_id"`
	ConfirmedAt       *time.Time          `gorm:"column:confirmed_at"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
