package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/scrapmandi/scrapmandi-backend/pkg/db/models"
	"github.com/scrapmandi/scrapmandi-backend/pkg/enums"
)

// CreateUserDTO carries the fields needed to persist a new account.
type CreateUserDTO struct {
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	Role         enums.UserRole
	Status       enums.UserStatus
	Location     string
}

// ToModel converts the DTO into the persistence model.
func (d CreateUserDTO) ToModel() *models.User {
	return &models.User{
		Name:         d.Name,
		Email:        d.Email,
		Phone:        d.Phone,
		PasswordHash: d.PasswordHash,
		Role:         d.Role,
		Status:       d.Status,
		Location:     d.Location,
	}
}

// UserSummary is the public shape returned to API clients.
type UserSummary struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	Phone     string           `json:"phone"`
	Role      enums.UserRole   `json:"role"`
	Status    enums.UserStatus `json:"status"`
	Location  string           `json:"location,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// FromModel maps a persistence model to the API shape.
func FromModel(user *models.User) UserSummary {
	return UserSummary{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Phone:     user.Phone,
		Role:      user.Role,
		Status:    user.Status,
		Location:  user.Location,
		CreatedAt: user.CreatedAt,
	}
}
