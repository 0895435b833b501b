package service

import (
	"context"
	"errors"

	"market-tips/config"
	"market-tips/internal/dto"
	"market-tips/internal/model"
	"market-tips/internal/repository"
	"market-tips/pkg/logger"
)

var (
	// ErrEmailExists maps to 409 EMAIL_EXISTS.
	ErrEmailExists = errors.New("email already registered")
	// ErrInvalidCredentials deliberately covers both unknown email and
	// wrong password so responses do not leak which one failed.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
}

type authService struct {
	cfg      *config.Config
	logger   *logger.Logger
	userRepo repository.UserRepository
	tokens   TokenService
}

func NewAuthService(cfg *config.Config, log *logger.Logger, userRepo repository.UserRepository, tokens TokenService) AuthService {
	return &authService{
		cfg:      cfg,
		logger:   log,
		userRepo: userRepo,
		tokens:   tokens,
	}
}

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.UserResponse, error) {
	if err := ValidatePasswordStrength(req.Password); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "User registered", logger.StringField("email", user.Email))
	return userToResponse(user), nil
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	// OAuth-only accounts have no password hash and cannot log in here.
	if user.PasswordHash == "" || !CheckPassword(user.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(user.ID)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	userID, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, ErrInvalidToken
	}
	return s.issueTokens(userID)
}

func (s *authService) issueTokens(userID uint) (*dto.TokenResponse, error) {
	access, err := s.tokens.GenerateAccessToken(userID)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.GenerateRefreshToken(userID)
	if err != nil {
		return nil, err
	}
	return &dto.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int(s.tokens.AccessTokenTTL().Seconds()),
	}, nil
}

func userToResponse(user *model.User) *dto.UserResponse {
	providers := make([]string, 0, len(user.OAuthConnections))
	for _, conn := range user.OAuthConnections {
		providers = append(providers, conn.Provider)
	}
	return &dto.UserResponse{
		ID:              user.ID,
		Email:           user.Email,
		Name:            user.Name,
		IsEmailVerified: user.IsEmailVerified,
		OAuthProviders:  providers,
		HasPassword:     user.PasswordHash != "",
		CreatedAt:       user.CreatedAt,
	}
}
