package service

import (
	"context"
	"errors"
	"fmt"

	"market-tips/internal/dto"
	"market-tips/internal/repository"
	"market-tips/pkg/logger"
)

var (
	ErrOAuthOnlyAccount  = errors.New("cannot change password for an oauth-only account")
	ErrWrongPassword     = errors.New("current password is incorrect")
	ErrProviderNotLinked = errors.New("oauth provider is not connected")
	ErrLastAuthMethod    = errors.New("cannot disconnect last authentication method, set a password first")
	ErrUserNotFound      = errors.New("user not found")
)

type UserService interface {
	GetProfile(ctx context.Context, userID uint) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, userID uint, req dto.UpdateProfileRequest) (*dto.UserResponse, error)
	ChangePassword(ctx context.Context, userID uint, req dto.ChangePasswordRequest) error
	DisconnectOAuth(ctx context.Context, userID uint, provider string) error
	DeleteAccount(ctx context.Context, userID uint) error
}

type userService struct {
	logger    *logger.Logger
	userRepo  repository.UserRepository
	oauthRepo repository.OAuthConnectionRepository
}

func NewUserService(log *logger.Logger, userRepo repository.UserRepository, oauthRepo repository.OAuthConnectionRepository) UserService {
	return &userService{
		logger:    log,
		userRepo:  userRepo,
		oauthRepo: oauthRepo,
	}
}

func (s *userService) GetProfile(ctx context.Context, userID uint) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return userToResponse(user), nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uint, req dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil && *req.Email != user.Email {
		if _, err := s.userRepo.GetByEmail(ctx, *req.Email); err == nil {
			return nil, ErrEmailExists
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		user.Email = *req.Email
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return userToResponse(user), nil
}

func (s *userService) ChangePassword(ctx context.Context, userID uint, req dto.ChangePasswordRequest) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}

	if user.PasswordHash == "" {
		return ErrOAuthOnlyAccount
	}
	if !CheckPassword(user.PasswordHash, req.CurrentPassword) {
		return ErrWrongPassword
	}
	if err := ValidatePasswordStrength(req.NewPassword); err != nil {
		return err
	}

	hash, err := HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Password changed", logger.IntField("user_id", int(userID)))
	return nil
}

func (s *userService) DisconnectOAuth(ctx context.Context, userID uint, provider string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}

	conns, err := s.oauthRepo.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	linked := false
	for _, conn := range conns {
		if conn.Provider == provider {
			linked = true
			break
		}
	}
	if !linked {
		return fmt.Errorf("%w: %s", ErrProviderNotLinked, provider)
	}

	hasPassword := user.PasswordHash != ""
	hasOtherOAuth := len(conns) > 1
	if !hasPassword && !hasOtherOAuth {
		return ErrLastAuthMethod
	}

	_, err = s.oauthRepo.DeleteByUserAndProvider(ctx, userID, provider)
	return err
}

func (s *userService) DeleteAccount(ctx context.Context, userID uint) error {
	if _, err := s.userRepo.GetByID(ctx, userID); errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	} else if err != nil {
		return err
	}
	// OAuth connections go with the user via the FK cascade.
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Account deleted", logger.IntField("user_id", int(userID)))
	return nil
}
