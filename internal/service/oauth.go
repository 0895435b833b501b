package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"market-tips/config"
	"market-tips/internal/dto"
	"market-tips/internal/model"
	"market-tips/internal/repository"
	"market-tips/pkg/cache"
	"market-tips/pkg/logger"
)

const oauthStateTTL = 10 * time.Minute

var ErrInvalidOAuthState = errors.New("invalid or expired oauth state")

// OAuthService drives the Google and GitHub login flows. A callback for a
// known (provider, provider user id) pair logs that user in; an unknown
// pair links to an existing account by email or creates a fresh one.
// Replaying a callback never creates a duplicate.
type OAuthService interface {
	AuthorizeURL(ctx context.Context, provider string) (*dto.OAuthAuthorizeResponse, error)
	HandleCallback(ctx context.Context, provider, code, state string) (*dto.TokenResponse, error)
}

type oauthService struct {
	cfg          *config.Config
	logger       *logger.Logger
	userRepo     repository.UserRepository
	oauthRepo    repository.OAuthConnectionRepository
	providerRepo repository.OAuthProviderRepository
	tokens       TokenService
	cache        cache.Cache
}

func NewOAuthService(
	cfg *config.Config,
	log *logger.Logger,
	userRepo repository.UserRepository,
	oauthRepo repository.OAuthConnectionRepository,
	providerRepo repository.OAuthProviderRepository,
	tokens TokenService,
	inmemoryCache cache.Cache,
) OAuthService {
	return &oauthService{
		cfg:          cfg,
		logger:       log,
		userRepo:     userRepo,
		oauthRepo:    oauthRepo,
		providerRepo: providerRepo,
		tokens:       tokens,
		cache:        inmemoryCache,
	}
}

func (s *oauthService) AuthorizeURL(ctx context.Context, provider string) (*dto.OAuthAuthorizeResponse, error) {
	state, err := generateState()
	if err != nil {
		return nil, err
	}

	authURL, err := s.providerRepo.AuthorizeURL(provider, state)
	if err != nil {
		return nil, err
	}

	s.cache.Set(stateCacheKey(provider, state), true, oauthStateTTL)
	return &dto.OAuthAuthorizeResponse{
		AuthorizationURL: authURL,
		State:            state,
	}, nil
}

func (s *oauthService) HandleCallback(ctx context.Context, provider, code, state string) (*dto.TokenResponse, error) {
	key := stateCacheKey(provider, state)
	if _, found := s.cache.Get(key); !found {
		return nil, ErrInvalidOAuthState
	}
	// One-shot: a state survives exactly one callback.
	s.cache.Delete(key)

	info, err := s.providerRepo.Exchange(ctx, provider, code)
	if err != nil {
		return nil, err
	}
	if info.Email == "" {
		return nil, fmt.Errorf("email not provided by %s", provider)
	}
	info.Email = strings.ToLower(strings.TrimSpace(info.Email))

	user, err := s.resolveUser(ctx, info)
	if err != nil {
		return nil, err
	}

	access, err := s.tokens.GenerateAccessToken(user.ID)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.GenerateRefreshToken(user.ID)
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

// resolveUser finds or creates the account behind an OAuth identity.
func (s *oauthService) resolveUser(ctx context.Context, info *dto.OAuthUserInfo) (*model.User, error) {
	conn, err := s.oauthRepo.GetByProviderUser(ctx, info.Provider, info.ProviderUserID)
	if err == nil {
		conn.AccessToken = info.AccessToken
		if info.RefreshToken != "" {
			conn.RefreshToken = info.RefreshToken
		}
		if err := s.oauthRepo.Update(ctx, conn); err != nil {
			s.logger.ErrorContext(ctx, "Failed to refresh oauth tokens", logger.ErrorField(err))
		}
		return s.userRepo.GetByID(ctx, conn.UserID)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, info.Email)
	if errors.Is(err, repository.ErrNotFound) {
		user = &model.User{
			Email: info.Email,
			Name:  info.Name,
			// The provider has already verified this address.
			IsEmailVerified: true,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, err
		}
		s.logger.InfoContext(ctx, "User created from oauth login",
			logger.StringField("provider", info.Provider),
			logger.StringField("email", info.Email))
	} else if err != nil {
		return nil, err
	}

	if err := s.oauthRepo.Create(ctx, &model.OAuthConnection{
		UserID:         user.ID,
		Provider:       info.Provider,
		ProviderUserID: info.ProviderUserID,
		AccessToken:    info.AccessToken,
		RefreshToken:   info.RefreshToken,
	}); err != nil {
		return nil, err
	}
	return user, nil
}

func stateCacheKey(provider, state string) string {
	return "oauth:state:" + provider + ":" + state
}

func generateState() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
