package listings

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scrapmandi/scrapmandi-backend/pkg/db/models"
	"github.com/scrapmandi/scrapmandi-backend/pkg/enums"
)

// Repository defines persistence operations for listings.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, listing *models.Listing) (*models.Listing, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.Listing, error)
	ListByStatus(ctx context.Context, statuses []enums.ListingStatus, limit int) ([]models.Listing, error)
	Categories(ctx context.Context) ([]models.Category, error)
	UpdateStatusIf(ctx context.Context, id uuid.UUID, from []enums.ListingStatus, to enums.ListingStatus, updates map[string]any) (bool, error)
}

// Service exposes the listing lifecycle operations.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*models.Listing, error)
	Approve(ctx context.Context, listingID, adminID uuid.UUID) (*models.Listing, error)
	Reject(ctx context.Context, listingID, adminID uuid.UUID, reason string) (*models.Listing, error)
	RecordInspection(ctx context.Context, input InspectionInput) (*models.Listing, error)
	Publish(ctx context.Context, listingID, adminID uuid.UUID) (*models.Listing, error)
	Get(ctx context.Context, listingID uuid.UUID) (*models.Listing, error)
	Browse(ctx context.Context, authenticated bool) ([]models.Listing, error)
	SellerListings(ctx context.Context, sellerID uuid.UUID) ([]models.Listing, error)
	MarkSold(ctx context.Context, tx *gorm.DB, listingID uuid.UUID) error
	ReviewQueue(ctx context.Context) ([]models.Listing, error)
}
