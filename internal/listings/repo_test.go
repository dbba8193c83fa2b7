package listings

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/scrapmandi/scrapmandi-backend/pkg/db/models"
	"github.com/scrapmandi/scrapmandi-backend/pkg/enums"
)

func setupListingsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`
CREATE TABLE IF NOT EXISTS listings (
  id TEXT PRIMARY KEY,
  seller_id TEXT NOT NULL,
  title TEXT NOT NULL,
  category_id TEXT NOT NULL,
  description TEXT NOT NULL,
  estimated_weight NUMERIC NOT NULL,
  price NUMERIC NOT NULL,
  images TEXT,
  location TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'submitted',
  rejection_reason TEXT,
  approved_by TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`).Error)

	return db
}

func seedListing(t *testing.T, repo Repository, status enums.ListingStatus) *models.Listing {
	t.Helper()
	listing, err := repo.Create(context.Background(), &models.Listing{
		SellerID:        uuid.New(),
		Title:           "copper wire scrap",
		CategoryID:      uuid.New(),
		Description:     "stripped household wiring",
		EstimatedWeight: decimal.NewFromInt(120),
		Price:           decimal.NewFromInt(54000),
		Images:          []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg"},
		Location:        "Pune",
		Status:          status,
	})
	require.NoError(t, err)
	return listing
}

func TestUpdateStatusIfGuardsCurrentStatus(t *testing.T) {
	db := setupListingsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	listing := seedListing(t, repo, enums.ListingStatusSubmitted)

	moved, err := repo.UpdateStatusIf(ctx, listing.ID,
		[]enums.ListingStatus{enums.ListingStatusSubmitted},
		enums.ListingStatusAdminApproved, nil)
	require.NoError(t, err)
	assert.True(t, moved)

	// Same precondition again must not match.
	moved, err = repo.UpdateStatusIf(ctx, listing.ID,
		[]enums.ListingStatus{enums.ListingStatusSubmitted},
		enums.ListingStatusRejected, nil)
	require.NoError(t, err)
	assert.False(t, moved)

	stored, err := repo.FindByID(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ListingStatusAdminApproved, stored.Status)
}

func TestUpdateStatusIfAppliesExtraColumns(t *testing.T) {
	db := setupListingsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	listing := seedListing(t, repo, enums.ListingStatusSubmitted)

	moved, err := repo.UpdateStatusIf(ctx, listing.ID,
		[]enums.ListingStatus{enums.ListingStatusSubmitted},
		enums.ListingStatusRejected,
		map[string]any{"rejection_reason": "images do not match description"})
	require.NoError(t, err)
	require.True(t, moved)

	stored, err := repo.FindByID(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ListingStatusRejected, stored.Status)
	require.NotNil(t, stored.RejectionReason)
	assert.Equal(t, "images do not match description", *stored.RejectionReason)
}

func TestMarkSoldFromEitherPurchasableStatus(t *testing.T) {
	db := setupListingsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	live := seedListing(t, repo, enums.ListingStatusLive)
	passed := seedListing(t, repo, enums.ListingStatusInspectionPassed)
	failed := seedListing(t, repo, enums.ListingStatusInspectionFailed)

	for _, listing := range []*models.Listing{live, passed} {
		moved, err := repo.UpdateStatusIf(ctx, listing.ID, enums.PurchasableListingStatuses, enums.ListingStatusSold, nil)
		require.NoError(t, err)
		assert.True(t, moved, "status %s should be purchasable", listing.Status)
	}

	moved, err := repo.UpdateStatusIf(ctx, failed.ID, enums.PurchasableListingStatuses, enums.ListingStatusSold, nil)
	require.NoError(t, err)
	assert.False(t, moved)
}

func TestListByStatusHonorsLimit(t *testing.T) {
	db := setupListingsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		seedListing(t, repo, enums.ListingStatusLive)
	}
	seedListing(t, repo, enums.ListingStatusSubmitted)

	rows, err := repo.ListByStatus(ctx, []enums.ListingStatus{enums.ListingStatusLive}, 6)
	require.NoError(t, err)
	assert.Len(t, rows, 6)

	all, err := repo.ListByStatus(ctx, []enums.ListingStatus{enums.ListingStatusLive}, 0)
	require.NoError(t, err)
	assert.Len(t, all, 8)
}

func TestListBySeller(t *testing.T) {
	db := setupListingsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	sellerID := uuid.New()
	for i := 0; i < 3; i++ {
		_, err := repo.Create(ctx, &models.Listing{
			SellerID:        sellerID,
			Title:           "aluminium sheets",
			CategoryID:      uuid.New(),
			Description:     "offcuts",
			EstimatedWeight: decimal.NewFromInt(40),
			Price:           decimal.NewFromInt(9000),
			Images:          []string{"1.jpg"},
			Location:        "Nagpur",
			Status:          enums.ListingStatusSubmitted,
		})
		require.NoError(t, err)
	}
	seedListing(t, repo, enums.ListingStatusSubmitted)

	rows, err := repo.ListBySeller(ctx, sellerID)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}
