package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/scrapmandi/scrapmandi-backend/internal/audit"
	"github.com/scrapmandi/scrapmandi-backend/pkg/db/models"
	"github.com/scrapmandi/scrapmandi-backend/pkg/enums"
	pkgerrors "github.com/scrapmandi/scrapmandi-backend/pkg/errors"
	"github.com/scrapmandi/scrapmandi-backend/pkg/razorpay"
)

type memOrdersRepo struct {
	orders  map[uuid.UUID]*models.Order
	deleted []uuid.UUID
}

func newMemOrdersRepo() *memOrdersRepo {
	return &memOrdersRepo{orders: make(map[uuid.UUID]*models.Order)}
}

func (s *memOrdersRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *memOrdersRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	copied := *order
	s.orders[order.ID] = &copied
	return order, nil
}

func (s *memOrdersRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.orders, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *memOrdersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *order
	return &copied, nil
}

func (s *memOrdersRepo) FindByProviderOrderID(ctx context.Context, providerOrderID string) (*models.Order, error) {
	for _, order := range s.orders {
		if order.ProviderOrderID != nil && *order.ProviderOrderID == providerOrderID {
			copied := *order
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *memOrdersRepo) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.Order, error) {
	var rows []models.Order
	for _, order := range s.orders {
		if order.BuyerID == buyerID {
			rows = append(rows, *order)
		}
	}
	return rows, nil
}

func (s *memOrdersRepo) ListByStatus(ctx context.Context, status enums.OrderStatus) ([]models.Order, error) {
	return nil, nil
}

func (s *memOrdersRepo) ListRecent(ctx context.Context, limit int) ([]models.Order, error) {
	var rows []models.Order
	for _, order := range s.orders {
		rows = append(rows, *order)
	}
	return rows, nil
}

func (s *memOrdersRepo) UpdateStatusIf(ctx context.Context, id uuid.UUID, from []enums.OrderStatus, to enums.OrderStatus, updates map[string]any) (bool, error) {
	order, ok := s.orders[id]
	if !ok {
		return false, nil
	}
	for _, status := range from {
		if order.Status == status {
			order.Status = to
			return true, nil
		}
	}
	return false, nil
}

func (s *memOrdersRepo) UpdateProviderOrderID(ctx context.Context, id uuid.UUID, providerOrderID string) error {
	if order, ok := s.orders[id]; ok {
		order.ProviderOrderID = &providerOrderID
	}
	return nil
}

type memListingGetter struct {
	listings map[uuid.UUID]*models.Listing
}

func (s *memListingGetter) FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	listing, ok := s.listings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return listing, nil
}

type memUserGetter struct {
	users map[uuid.UUID]*models.User
}

func (s *memUserGetter) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

type memProvider struct {
	fail    bool
	created []razorpay.CreateOrderParams
}

func (s *memProvider) CreateOrder(ctx context.Context, params razorpay.CreateOrderParams) (*razorpay.Order, error) {
	if s.fail {
		return nil, errors.New("provider unavailable")
	}
	s.created = append(s.created, params)
	return &razorpay.Order{ID: "order_rzp_new", Amount: params.Amount, Currency: "INR", Status: "created"}, nil
}

func (s *memProvider) KeyID() string {
	return "rzp_test_key"
}

func (s *memProvider) Currency() string {
	return "INR"
}

type memRecorder struct {
	entries []audit.Entry
}

func (s *memRecorder) Record(ctx context.Context, entry audit.Entry) {
	s.entries = append(s.entries, entry)
}

type ordersFixture struct {
	svc      Service
	repo     *memOrdersRepo
	listings *memListingGetter
	users    *memUserGetter
	provider *memProvider
	rec      *memRecorder
}

func newOrdersFixture(t *testing.T) *ordersFixture {
	t.Helper()
	f := &ordersFixture{
		repo:     newMemOrdersRepo(),
		listings: &memListingGetter{listings: make(map[uuid.UUID]*models.Listing)},
		users:    &memUserGetter{users: make(map[uuid.UUID]*models.User)},
		provider: &memProvider{},
		rec:      &memRecorder{},
	}
	svc, err := NewService(f.repo, f.listings, f.users, f.provider, f.rec, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	f.svc = svc
	return f
}

func (f *ordersFixture) addBuyer() uuid.UUID {
	id := uuid.New()
	f.users.users[id] = &models.User{ID: id, Role: enums.UserRoleBuyer, Status: enums.UserStatusActive}
	return id
}

func (f *ordersFixture) addListing(status enums.ListingStatus) *models.Listing {
	listing := &models.Listing{
		ID:       uuid.New(),
		SellerID: uuid.New(),
		Price:    decimal.RequireFromString("1250.50"),
		Status:   status,
	}
	f.listings.listings[listing.ID] = listing
	return listing
}

func TestInitiateCreatesOrderWithSnapshot(t *testing.T) {
	f := newOrdersFixture(t)
	ctx := context.Background()
	buyerID := f.addBuyer()
	listing := f.addListing(enums.ListingStatusLive)

	result, err := f.svc.Initiate(ctx, InitiateInput{BuyerID: buyerID, ListingID: listing.ID})
	if err != nil {
		t.Fatalf("initiate failed: %v", err)
	}
	if result.Order.Status != enums.OrderStatusInitiated {
		t.Fatalf("unexpected status %s", result.Order.Status)
	}
	if !result.Order.Amount.Equal(listing.Price) {
		t.Fatalf("amount snapshot mismatch: %s", result.Order.Amount)
	}
	if result.AmountPaise != 125050 {
		t.Fatalf("expected 125050 paise, got %d", result.AmountPaise)
	}
	if result.ProviderOrderID != "order_rzp_new" {
		t.Fatalf("provider order id %s", result.ProviderOrderID)
	}
	if result.ProviderKeyID != "rzp_test_key" {
		t.Fatalf("provider key id %s", result.ProviderKeyID)
	}

	if len(f.provider.created) != 1 {
		t.Fatalf("expected one provider call")
	}
	notes := f.provider.created[0].Notes
	if notes["order_id"] != result.Order.ID.String() {
		t.Fatalf("provider order missing order_id note: %v", notes)
	}
}

func TestInitiateAllowsInspectionPassedListing(t *testing.T) {
	f := newOrdersFixture(t)
	listing := f.addListing(enums.ListingStatusInspectionPassed)

	_, err := f.svc.Initiate(context.Background(), InitiateInput{BuyerID: f.addBuyer(), ListingID: listing.ID})
	if err != nil {
		t.Fatalf("initiate failed for inspection_passed listing: %v", err)
	}
}

func TestInitiateRejectsNonPurchasableListing(t *testing.T) {
	f := newOrdersFixture(t)
	ctx := context.Background()
	buyerID := f.addBuyer()

	for _, status := range []enums.ListingStatus{
		enums.ListingStatusSubmitted,
		enums.ListingStatusAdminApproved,
		enums.ListingStatusInspectionFailed,
		enums.ListingStatusSold,
		enums.ListingStatusRejected,
	} {
		listing := f.addListing(status)
		_, err := f.svc.Initiate(ctx, InitiateInput{BuyerID: buyerID, ListingID: listing.ID})
		if !pkgerrors.IsCode(err, pkgerrors.CodeNotPurchasable) {
			t.Fatalf("status %s: expected not purchasable, got %v", status, err)
		}
	}
}

func TestInitiateRejectsSelfPurchase(t *testing.T) {
	f := newOrdersFixture(t)
	listing := f.addListing(enums.ListingStatusLive)
	f.users.users[listing.SellerID] = &models.User{
		ID:     listing.SellerID,
		Role:   enums.UserRoleSeller,
		Status: enums.UserStatusActive,
	}

	_, err := f.svc.Initiate(context.Background(), InitiateInput{BuyerID: listing.SellerID, ListingID: listing.ID})
	if !pkgerrors.IsCode(err, pkgerrors.CodeSelfPurchase) {
		t.Fatalf("expected self purchase error, got %v", err)
	}
}

func TestInitiateCompensatesOnProviderFailure(t *testing.T) {
	f := newOrdersFixture(t)
	f.provider.fail = true
	listing := f.addListing(enums.ListingStatusLive)

	_, err := f.svc.Initiate(context.Background(), InitiateInput{BuyerID: f.addBuyer(), ListingID: listing.ID})
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if len(f.repo.orders) != 0 {
		t.Fatalf("draft order must be deleted, %d remain", len(f.repo.orders))
	}
	if len(f.repo.deleted) != 1 {
		t.Fatalf("expected one compensating delete, got %d", len(f.repo.deleted))
	}
}

func TestInitiateRejectsInactiveBuyer(t *testing.T) {
	f := newOrdersFixture(t)
	listing := f.addListing(enums.ListingStatusLive)
	suspendedID := uuid.New()
	f.users.users[suspendedID] = &models.User{ID: suspendedID, Role: enums.UserRoleBuyer, Status: enums.UserStatusSuspended}

	_, err := f.svc.Initiate(context.Background(), InitiateInput{BuyerID: suspendedID, ListingID: listing.ID})
	if !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestGetEnforcesOwnership(t *testing.T) {
	f := newOrdersFixture(t)
	ctx := context.Background()
	buyerID := f.addBuyer()
	listing := f.addListing(enums.ListingStatusLive)

	result, err := f.svc.Initiate(ctx, InitiateInput{BuyerID: buyerID, ListingID: listing.ID})
	if err != nil {
		t.Fatalf("initiate failed: %v", err)
	}

	if _, err := f.svc.Get(ctx, result.Order.ID, buyerID, enums.UserRoleBuyer); err != nil {
		t.Fatalf("owner get failed: %v", err)
	}
	if _, err := f.svc.Get(ctx, result.Order.ID, uuid.New(), enums.UserRoleBuyer); !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden for stranger, got %v", err)
	}
	if _, err := f.svc.Get(ctx, result.Order.ID, uuid.New(), enums.UserRoleAdmin); err != nil {
		t.Fatalf("admin get failed: %v", err)
	}
}

func TestAdvanceFollowsPickupProgression(t *testing.T) {
	f := newOrdersFixture(t)
	ctx := context.Background()
	buyerID := f.addBuyer()
	listing := f.addListing(enums.ListingStatusLive)

	result, err := f.svc.Initiate(ctx, InitiateInput{BuyerID: buyerID, ListingID: listing.ID})
	if err != nil {
		t.Fatalf("initiate failed: %v", err)
	}
	orderID := result.Order.ID
	f.repo.orders[orderID].Status = enums.OrderStatusConfirmed

	steps := []struct {
		from, to enums.OrderStatus
	}{
		{enums.OrderStatusConfirmed, enums.OrderStatusPickupScheduled},
		{enums.OrderStatusPickupScheduled, enums.OrderStatusPicked},
		{enums.OrderStatusPicked, enums.OrderStatusCompleted},
	}
	for _, step := range steps {
		if err := f.svc.Advance(ctx, nil, orderID, step.from, step.to, uuid.New(), enums.UserRoleAdmin); err != nil {
			t.Fatalf("advance %s -> %s failed: %v", step.from, step.to, err)
		}
	}

	// Skipping a step must fail.
	err = f.svc.Advance(ctx, nil, orderID, enums.OrderStatusConfirmed, enums.OrderStatusPickupScheduled, uuid.New(), enums.UserRoleAdmin)
	if !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestAdvanceRejectsSameStatusWrite(t *testing.T) {
	f := newOrdersFixture(t)
	ctx := context.Background()
	buyerID := f.addBuyer()
	listing := f.addListing(enums.ListingStatusLive)

	result, err := f.svc.Initiate(ctx, InitiateInput{BuyerID: buyerID, ListingID: listing.ID})
	if err != nil {
		t.Fatalf("initiate failed: %v", err)
	}
	orderID := result.Order.ID
	f.repo.orders[orderID].Status = enums.OrderStatusPickupScheduled
	audits := len(f.rec.entries)

	err = f.svc.Advance(ctx, nil, orderID, enums.OrderStatusPickupScheduled, enums.OrderStatusPickupScheduled, uuid.New(), enums.UserRoleAdmin)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for same-status advance, got %v", err)
	}
	if f.repo.orders[orderID].Status != enums.OrderStatusPickupScheduled {
		t.Fatalf("order status changed to %s", f.repo.orders[orderID].Status)
	}
	if len(f.rec.entries) != audits {
		t.Fatal("same-status advance recorded an audit entry")
	}
}
