package enums

import "fmt"

// ListingStatus tracks the approval and sale lifecycle of a scrap listing.
type ListingStatus string

const (
	ListingStatusSubmitted        ListingStatus = "submitted"
	ListingStatusAdminApproved    ListingStatus = "admin_approved"
	ListingStatusInspectionPassed ListingStatus = "inspection_passed"
	ListingStatusInspectionFailed ListingStatus = "inspection_failed"
	ListingStatusLive             ListingStatus = "live"
	ListingStatusSold             ListingStatus = "sold"
	ListingStatusRejected         ListingStatus = "rejected"
)

var validListingStatuses = []ListingStatus{
	ListingStatusSubmitted,
	ListingStatusAdminApproved,
	ListingStatusInspectionPassed,
	ListingStatusInspectionFailed,
	ListingStatusLive,
	ListingStatusSold,
	ListingStatusRejected,
}

// PurchasableListingStatuses are the statuses a buyer may purchase from.
// Both live and inspection_passed are treated as purchasable; the predicate
// is the single place that decides this.
var PurchasableListingStatuses = []ListingStatus{
	ListingStatusLive,
	ListingStatusInspectionPassed,
}

// String implements fmt.Stringer.
func (l ListingStatus) String() string {
	return string(l)
}

// IsValid reports whether the value is a known ListingStatus.
func (l ListingStatus) IsValid() bool {
	for _, candidate := range validListingStatuses {
		if candidate == l {
			return true
		}
	}
	return false
}

// IsPurchasable reports whether a listing in this status may be bought.
func (l ListingStatus) IsPurchasable() bool {
	for _, candidate := range PurchasableListingStatuses {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseListingStatus converts raw input into a ListingStatus.
func ParseListingStatus(value string) (ListingStatus, error) {
	for _, candidate := range validListingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid listing status %q", value)
}
