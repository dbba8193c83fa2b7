package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/scrapmandi/scrapmandi-backend/pkg/auth"
	"github.com/scrapmandi/scrapmandi-backend/pkg/config"
	"github.com/scrapmandi/scrapmandi-backend/pkg/db/models"
	"github.com/scrapmandi/scrapmandi-backend/pkg/enums"
	pkgerrors "github.com/scrapmandi/scrapmandi-backend/pkg/errors"
	"github.com/scrapmandi/scrapmandi-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines account registration, login and status management.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*UserSummary, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	SetStatus(ctx context.Context, userID uuid.UUID, status enums.UserStatus) error
	PendingApprovals(ctx context.Context) ([]UserSummary, error)
}

type repository interface {
	Create(ctx context.Context, dto CreateUserDTO) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.UserStatus) error
	ListByStatus(ctx context.Context, status enums.UserStatus) ([]models.User, error)
}

type service struct {
	repo        repository
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
}

// RegisterInput captures a new account request.
type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
	Role     enums.UserRole
	Location string
}

// LoginResult bundles the minted token with the account summary.
type LoginResult struct {
	AccessToken string      `json:"access_token"`
	User        UserSummary `json:"user"`
}

// NewService constructs the users service.
func NewService(repo repository, jwtCfg config.JWTConfig, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{repo: repo, jwtCfg: jwtCfg, passwordCfg: passwordCfg}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*UserSummary, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name required")
	}
	if len(input.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}
	if input.Role != enums.UserRoleSeller && input.Role != enums.UserRoleBuyer {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "role must be seller or buyer")
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing email")
	}

	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	// Sellers need an admin approval before they can list; buyers can
	// transact immediately.
	status := enums.UserStatusPending
	if input.Role == enums.UserRoleBuyer {
		status = enums.UserStatusActive
	}

	user, err := s.repo.Create(ctx, CreateUserDTO{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		Phone:        strings.TrimSpace(input.Phone),
		PasswordHash: hash,
		Role:         input.Role,
		Status:       status,
		Location:     strings.TrimSpace(input.Location),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}

	summary := FromModel(user)
	return &summary, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	if user.Status == enums.UserStatusSuspended {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account suspended")
	}

	token, err := pkgauth.MintAccessToken(s.jwtCfg, time.Now().UTC(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	return &LoginResult{AccessToken: token, User: FromModel(user)}, nil
}

func (s *service) SetStatus(ctx context.Context, userID uuid.UUID, status enums.UserStatus) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if !status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid user status")
	}
	if _, err := s.repo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if err := s.repo.UpdateStatus(ctx, userID, status); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user status")
	}
	return nil
}

func (s *service) PendingApprovals(ctx context.Context) ([]UserSummary, error) {
	rows, err := s.repo.ListByStatus(ctx, enums.UserStatusPending)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending users")
	}
	summaries := make([]UserSummary, 0, len(rows))
	for i := range rows {
		summaries = append(summaries, FromModel(&rows[i]))
	}
	return summaries, nil
}
