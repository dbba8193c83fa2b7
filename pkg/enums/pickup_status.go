package enums

import "fmt"

// PickupStatus tracks the physical collection of a sold listing.
type PickupStatus string

const (
	PickupStatusScheduled PickupStatus = "scheduled"
	PickupStatusInTransit PickupStatus = "in_transit"
	PickupStatusDelivered PickupStatus = "delivered"
)

var validPickupStatuses = []PickupStatus{
	PickupStatusScheduled,
	PickupStatusInTransit,
	PickupStatusDelivered,
}

// String implements fmt.Stringer.
func (p PickupStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PickupStatus.
func (p PickupStatus) IsValid() bool {
	for _, candidate := range validPickupStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePickupStatus converts raw input into a PickupStatus.
func ParsePickupStatus(value string) (PickupStatus, error) {
	for _, candidate := range validPickupStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid pickup status %q", value)
}
