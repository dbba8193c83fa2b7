package listings

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/scrapmandi/scrapmandi-backend/internal/audit"
	"github.com/scrapmandi/scrapmandi-backend/pkg/config"
	"github.com/scrapmandi/scrapmandi-backend/pkg/db/models"
	"github.com/scrapmandi/scrapmandi-backend/pkg/enums"
	pkgerrors "github.com/scrapmandi/scrapmandi-backend/pkg/errors"
)

const entityType = "listing"

type userGetter interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type service struct {
	repo  Repository
	users userGetter
	audit audit.Recorder
	cfg   config.ListingsConfig
}

// SubmitInput captures a seller's new listing.
type SubmitInput struct {
	SellerID        uuid.UUID
	Title           string
	CategoryID      uuid.UUID
	Description     string
	EstimatedWeight decimal.Decimal
	Price           decimal.Decimal
	Images          []string
	Location        string
}

// InspectionInput records the on-site inspection outcome.
type InspectionInput struct {
	ListingID uuid.UUID
	AdminID   uuid.UUID
	Result    enums.InspectionResult
	Note      string
}

// NewService builds the listing lifecycle service.
func NewService(repo Repository, users userGetter, rec audit.Recorder, cfg config.ListingsConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("listings repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("user getter required")
	}
	if rec == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	return &service{repo: repo, users: users, audit: rec, cfg: cfg}, nil
}

func (s *service) Submit(ctx context.Context, input SubmitInput) (*models.Listing, error) {
	if input.SellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "seller identity missing")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}
	if input.CategoryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category required")
	}
	if !input.Price.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	if !input.EstimatedWeight.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "estimated weight must be positive")
	}
	minImages := s.cfg.MinImages
	if len(input.Images) < minImages {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("at least %d images required", minImages))
	}

	seller, err := s.users.FindByID(ctx, input.SellerID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "seller not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller")
	}
	if seller.Role != enums.UserRoleSeller {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only sellers can create listings")
	}
	if !seller.Status.CanTransact() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "seller account is not active")
	}

	listing := &models.Listing{
		SellerID:        input.SellerID,
		Title:           strings.TrimSpace(input.Title),
		CategoryID:      input.CategoryID,
		Description:     strings.TrimSpace(input.Description),
		EstimatedWeight: input.EstimatedWeight,
		Price:           input.Price,
		Images:          input.Images,
		Location:        strings.TrimSpace(input.Location),
		Status:          enums.ListingStatusSubmitted,
	}

	created, err := s.repo.Create(ctx, listing)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create listing")
	}

	s.audit.Record(ctx, audit.Entry{
		EntityType: entityType,
		EntityID:   created.ID,
		FromStatus: "",
		ToStatus:   string(enums.ListingStatusSubmitted),
		ActorID:    &input.SellerID,
		ActorRole:  string(enums.UserRoleSeller),
	})

	return created, nil
}

func (s *service) Approve(ctx context.Context, listingID, adminID uuid.UUID) (*models.Listing, error) {
	return s.transition(ctx, listingID, adminID,
		[]enums.ListingStatus{enums.ListingStatusSubmitted},
		enums.ListingStatusAdminApproved,
		map[string]any{"approved_by": adminID},
		"")
}

func (s *service) Reject(ctx context.Context, listingID, adminID uuid.UUID, reason string) (*models.Listing, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rejection reason required")
	}
	return s.transition(ctx, listingID, adminID,
		[]enums.ListingStatus{enums.ListingStatusSubmitted},
		enums.ListingStatusRejected,
		map[string]any{"rejection_reason": reason},
		reason)
}

func (s *service) RecordInspection(ctx context.Context, input InspectionInput) (*models.Listing, error) {
	if !input.Result.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "inspection result must be passed or failed")
	}
	target := enums.ListingStatusInspectionPassed
	if input.Result == enums.InspectionResultFailed {
		target = enums.ListingStatusInspectionFailed
	}
	return s.transition(ctx, input.ListingID, input.AdminID,
		[]enums.ListingStatus{enums.ListingStatusAdminApproved},
		target,
		nil,
		input.Note)
}

func (s *service) Publish(ctx context.Context, listingID, adminID uuid.UUID) (*models.Listing, error) {
	return s.transition(ctx, listingID, adminID,
		[]enums.ListingStatus{enums.ListingStatusInspectionPassed},
		enums.ListingStatusLive,
		nil,
		"")
}

// transition applies a guarded status move and records the audit entry.
func (s *service) transition(ctx context.Context, listingID, adminID uuid.UUID, from []enums.ListingStatus, to enums.ListingStatus, updates map[string]any, note string) (*models.Listing, error) {
	if listingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing id required")
	}
	if adminID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "admin identity missing")
	}

	listing, err := s.repo.FindByID(ctx, listingID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}

	moved, err := s.repo.UpdateStatusIf(ctx, listingID, from, to, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update listing status")
	}
	if !moved {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("listing cannot move to %s from %s", to, listing.Status))
	}

	s.audit.Record(ctx, audit.Entry{
		EntityType: entityType,
		EntityID:   listingID,
		FromStatus: string(listing.Status),
		ToStatus:   string(to),
		ActorID:    &adminID,
		ActorRole:  string(enums.UserRoleAdmin),
		Note:       note,
	})

	updated, err := s.repo.FindByID(ctx, listingID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload listing")
	}
	return updated, nil
}

func (s *service) Get(ctx context.Context, listingID uuid.UUID) (*models.Listing, error) {
	if listingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing id required")
	}
	listing, err := s.repo.FindByID(ctx, listingID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}
	return listing, nil
}

// Browse returns purchasable listings. Anonymous callers only get a short
// preview so the public page stays cheap; authenticated buyers see the full
// feed. The feed shares the purchasable set with the purchase guard so a
// buyer is never shown a listing they cannot buy, nor the other way around.
func (s *service) Browse(ctx context.Context, authenticated bool) ([]models.Listing, error) {
	limit := 0
	if !authenticated {
		limit = s.cfg.BrowsePreview
	}
	rows, err := s.repo.ListByStatus(ctx, enums.PurchasableListingStatuses, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list purchasable listings")
	}
	return rows, nil
}

func (s *service) SellerListings(ctx context.Context, sellerID uuid.UUID) ([]models.Listing, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "seller identity missing")
	}
	rows, err := s.repo.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list seller listings")
	}
	return rows, nil
}

// ReviewQueue returns listings awaiting an admin decision or inspection.
func (s *service) ReviewQueue(ctx context.Context) ([]models.Listing, error) {
	rows, err := s.repo.ListByStatus(ctx, []enums.ListingStatus{
		enums.ListingStatusSubmitted,
		enums.ListingStatusAdminApproved,
		enums.ListingStatusInspectionPassed,
	}, 0)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list review queue")
	}
	return rows, nil
}

// MarkSold flips a purchasable listing to sold inside the caller's
// transaction. The conditional update is what makes double-selling
// impossible when two confirmations race.
func (s *service) MarkSold(ctx context.Context, tx *gorm.DB, listingID uuid.UUID) error {
	repo := s.repo.WithTx(tx)
	moved, err := repo.UpdateStatusIf(ctx, listingID, enums.PurchasableListingStatuses, enums.ListingStatusSold, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark listing sold")
	}
	if !moved {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "listing is no longer purchasable")
	}
	return nil
}
