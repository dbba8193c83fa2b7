package enums

import "fmt"

// UserRole distinguishes the three actor types on the platform.
type UserRole string

const (
	UserRoleAdmin  UserRole = "admin"
	UserRoleSeller UserRole = "seller"
	UserRoleBuyer  UserRole = "buyer"
)

var validUserRoles = []UserRole{
	UserRoleAdmin,
	UserRoleSeller,
	UserRoleBuyer,
}

func (u UserRole) String() string {
	return string(u)
}

func (u UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == u {
			return true
		}
	}
	return false
}

// UserStatus gates whether an account may sell or buy.
type UserStatus string

const (
	UserStatusPending   UserStatus = "pending"
	UserStatusApproved  UserStatus = "approved"
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

var validUserStatuses = []UserStatus{
	UserStatusPending,
	UserStatusApproved,
	UserStatusActive,
	UserStatusSuspended,
}

func (u UserStatus) String() string {
	return string(u)
}

func (u UserStatus) IsValid() bool {
	for _, candidate := range validUserStatuses {
		if candidate == u {
			return true
		}
	}
	return false
}

// CanTransact reports whether the account may create listings or purchase.
func (u UserStatus) CanTransact() bool {
	return u == UserStatusApproved || u == UserStatusActive
}

// ParseUserStatus converts raw input into a UserStatus.
func ParseUserStatus(value string) (UserStatus, error) {
	for _, candidate := range validUserStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user status %q", value)
}
