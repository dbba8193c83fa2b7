package pickups

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/scrapmandi/scrapmandi-backend/pkg/db/models"
	"github.com/scrapmandi/scrapmandi-backend/pkg/enums"
)

func setupPickupsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`
CREATE TABLE IF NOT EXISTS pickups (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL UNIQUE,
  scheduled_date DATETIME NOT NULL,
  status TEXT NOT NULL DEFAULT 'scheduled',
  proof_images TEXT,
  delivered_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`).Error)

	return db
}

func seedPickup(t *testing.T, repo Repository) *models.Pickup {
	t.Helper()
	pickup, err := repo.Create(context.Background(), &models.Pickup{
		OrderID:       uuid.New(),
		ScheduledDate: time.Now().Add(24 * time.Hour).UTC(),
		Status:        enums.PickupStatusScheduled,
	})
	require.NoError(t, err)
	return pickup
}

func TestPickupCreateEnforcesOnePerOrder(t *testing.T) {
	db := setupPickupsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	pickup := seedPickup(t, repo)

	_, err := repo.Create(ctx, &models.Pickup{
		OrderID:       pickup.OrderID,
		ScheduledDate: time.Now().UTC(),
		Status:        enums.PickupStatusScheduled,
	})
	assert.Error(t, err)
}

func TestPickupFindByOrderID(t *testing.T) {
	db := setupPickupsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	pickup := seedPickup(t, repo)

	found, err := repo.FindByOrderID(ctx, pickup.OrderID)
	require.NoError(t, err)
	assert.Equal(t, pickup.ID, found.ID)

	_, err = repo.FindByOrderID(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPickupUpdateStatusIfGuardsTransitions(t *testing.T) {
	db := setupPickupsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	pickup := seedPickup(t, repo)

	// A scheduled pickup cannot jump straight to delivered.
	moved, err := repo.UpdateStatusIf(ctx, pickup.ID,
		[]enums.PickupStatus{enums.PickupStatusInTransit},
		enums.PickupStatusDelivered, nil)
	require.NoError(t, err)
	assert.False(t, moved)

	moved, err = repo.UpdateStatusIf(ctx, pickup.ID,
		[]enums.PickupStatus{enums.PickupStatusScheduled},
		enums.PickupStatusInTransit, nil)
	require.NoError(t, err)
	assert.True(t, moved)

	now := time.Now().UTC()
	moved, err = repo.UpdateStatusIf(ctx, pickup.ID,
		[]enums.PickupStatus{enums.PickupStatusInTransit},
		enums.PickupStatusDelivered,
		map[string]any{"delivered_at": now})
	require.NoError(t, err)
	assert.True(t, moved)

	reloaded, err := repo.FindByID(ctx, pickup.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PickupStatusDelivered, reloaded.Status)
	require.NotNil(t, reloaded.DeliveredAt)
}

func TestPickupSetProofImages(t *testing.T) {
	db := setupPickupsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	pickup := seedPickup(t, repo)

	images := []string{
		"https://cdn.scrapmandi.in/proof/a.jpg",
		"https://cdn.scrapmandi.in/proof/b.jpg",
	}
	require.NoError(t, repo.SetProofImages(ctx, pickup.ID, images))

	reloaded, err := repo.FindByID(ctx, pickup.ID)
	require.NoError(t, err)
	assert.Equal(t, images, reloaded.ProofImages)
}
