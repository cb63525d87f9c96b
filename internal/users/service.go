package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/praveensri2018/sivanyaAPI/pkg/auth"
	"github.com/praveensri2018/sivanyaAPI/pkg/config"
	"github.com/praveensri2018/sivanyaAPI/pkg/db/models"
	"github.com/praveensri2018/sivanyaAPI/pkg/enums"
	pkgerrors "github.com/praveensri2018/sivanyaAPI/pkg/errors"
	"github.com/praveensri2018/sivanyaAPI/pkg/security"
	"gorm.io/gorm"
)

// RegisterInput captures an account signup.
type RegisterInput struct {
	Name     string
	Email    string
	Phone    *string
	Password string
	Address  *string
	UserType enums.UserTier
}

// UpdateInput carries the mutable profile fields. Nil fields are left
// unchanged.
type UpdateInput struct {
	Name    *string
	Address *string
}

// Service manages accounts and credentials.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	Login(ctx context.Context, phone, password string) (*models.User, string, error)
	Get(ctx context.Context, userID int64) (*models.User, error)
	Update(ctx context.Context, userID int64, input UpdateInput) (*models.User, error)
}

type service struct {
	repo        Repository
	jwtConfig   config.JWTConfig
	passwordCfg config.PasswordConfig
}

// NewService wires a users service.
func NewService(repo Repository, jwtConfig config.JWTConfig, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if jwtConfig.Secret == "" {
		return nil, fmt.Errorf("jwt secret required")
	}
	return &service{repo: repo, jwtConfig: jwtConfig, passwordCfg: passwordCfg}, nil
}

// Register creates an account with the argon2id hash of the password. The
// tier fixed here governs every subsequent price lookup.
func (s *service) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.Email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password is required")
	}
	if !input.UserType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown user tier")
	}

	if _, err := s.repo.FindByEmail(ctx, input.Email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "Email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check email")
	}
	if input.Phone != nil {
		if _, err := s.repo.FindByPhone(ctx, *input.Phone); err == nil {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "Phone already exists")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check phone")
		}
	}

	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		Name:         input.Name,
		Email:        input.Email,
		Phone:        input.Phone,
		PasswordHash: hash,
		Address:      input.Address,
		UserType:     input.UserType,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}
	return user, nil
}

// Login verifies the phone and password pair and issues a signed token. A
// wrong phone and a wrong password are indistinguishable to the caller.
func (s *service) Login(ctx context.Context, phone, password string) (*models.User, string, error) {
	if phone == "" || password == "" {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "phone and password are required")
	}

	user, err := s.repo.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "Invalid credentials")
		}
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find user")
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "Invalid credentials")
	}

	token, err := auth.IssueToken(s.jwtConfig, user.ID, user.UserType, user.IsAdmin)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "issue token")
	}
	return user, token, nil
}

func (s *service) Get(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "User not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find user")
	}
	return user, nil
}

func (s *service) Update(ctx context.Context, userID int64, input UpdateInput) (*models.User, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		if *input.Name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		user.Name = *input.Name
	}
	if input.Address != nil {
		user.Address = input.Address
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update user")
	}
	return user, nil
}
