package repository

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"market-tips/config"
	"market-tips/internal/dto"
	"market-tips/pkg/httpclient"
	"market-tips/pkg/logger"
)

const (
	googleAuthURL     = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL    = "https://oauth2.googleapis.com/token"
	googleUserinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

	githubAuthURL  = "https://github.com/login/oauth/authorize"
	githubTokenURL = "https://github.com/login/oauth/access_token"
	githubUserURL  = "https://api.github.com/user"
	githubEmailURL = "https://api.github.com/user/emails"

	oauthExchangeTimeout = 15 * time.Second
)

var ErrProviderNotConfigured = fmt.Errorf("oauth provider is not configured")

// OAuthProviderRepository talks to the Google and GitHub OAuth APIs.
type OAuthProviderRepository interface {
	AuthorizeURL(provider, state string) (string, error)
	Exchange(ctx context.Context, provider, code string) (*dto.OAuthUserInfo, error)
}

type oauthProviderRepository struct {
	httpClient httpclient.HTTPClient
	cfg        *config.Config
	logger     *logger.Logger
}

func NewOAuthProviderRepository(cfg *config.Config, log *logger.Logger) OAuthProviderRepository {
	return &oauthProviderRepository{
		httpClient: httpclient.New("", oauthExchangeTimeout, ""),
		cfg:        cfg,
		logger:     log,
	}
}

func (r *oauthProviderRepository) AuthorizeURL(provider, state string) (string, error) {
	switch provider {
	case dto.ProviderGoogle:
		p := r.cfg.OAuth.Google
		if p.ClientID == "" || p.RedirectURI == "" {
			return "", ErrProviderNotConfigured
		}
		params := url.Values{}
		params.Set("client_id", p.ClientID)
		params.Set("redirect_uri", p.RedirectURI)
		params.Set("response_type", "code")
		params.Set("scope", "openid email profile")
		params.Set("state", state)
		params.Set("access_type", "offline")
		params.Set("prompt", "consent")
		return googleAuthURL + "?" + params.Encode(), nil

	case dto.ProviderGitHub:
		p := r.cfg.OAuth.GitHub
		if p.ClientID == "" || p.RedirectURI == "" {
			return "", ErrProviderNotConfigured
		}
		params := url.Values{}
		params.Set("client_id", p.ClientID)
		params.Set("redirect_uri", p.RedirectURI)
		params.Set("scope", "user:email")
		params.Set("state", state)
		return githubAuthURL + "?" + params.Encode(), nil

	default:
		return "", fmt.Errorf("unknown oauth provider: %s", provider)
	}
}

func (r *oauthProviderRepository) Exchange(ctx context.Context, provider, code string) (*dto.OAuthUserInfo, error) {
	if code == "" {
		return nil, fmt.Errorf("authorization code cannot be empty")
	}
	switch provider {
	case dto.ProviderGoogle:
		return r.exchangeGoogle(ctx, code)
	case dto.ProviderGitHub:
		return r.exchangeGitHub(ctx, code)
	default:
		return nil, fmt.Errorf("unknown oauth provider: %s", provider)
	}
}

type oauthTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (r *oauthProviderRepository) exchangeGoogle(ctx context.Context, code string) (*dto.OAuthUserInfo, error) {
	p := r.cfg.OAuth.Google
	if p.ClientID == "" || p.ClientSecret == "" {
		return nil, ErrProviderNotConfigured
	}

	var tokenResp oauthTokenResponse
	resp, err := r.httpClient.PostForm(ctx, googleTokenURL, map[string]string{
		"code":          code,
		"client_id":     p.ClientID,
		"client_secret": p.ClientSecret,
		"redirect_uri":  p.RedirectURI,
		"grant_type":    "authorization_code",
	}, nil, &tokenResp)
	if err != nil {
		return nil, fmt.Errorf("google code exchange failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK || tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("google code exchange returned status %d", resp.StatusCode)
	}

	var userInfo struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	resp, err = r.httpClient.Get(ctx, googleUserinfoURL, nil,
		map[string]string{"Authorization": "Bearer " + tokenResp.AccessToken}, &userInfo)
	if err != nil {
		return nil, fmt.Errorf("google userinfo fetch failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google userinfo returned status %d", resp.StatusCode)
	}

	return &dto.OAuthUserInfo{
		Provider:       dto.ProviderGoogle,
		ProviderUserID: userInfo.ID,
		Email:          userInfo.Email,
		Name:           userInfo.Name,
		AccessToken:    tokenResp.AccessToken,
		RefreshToken:   tokenResp.RefreshToken,
	}, nil
}

func (r *oauthProviderRepository) exchangeGitHub(ctx context.Context, code string) (*dto.OAuthUserInfo, error) {
	p := r.cfg.OAuth.GitHub
	if p.ClientID == "" || p.ClientSecret == "" {
		return nil, ErrProviderNotConfigured
	}

	var tokenResp oauthTokenResponse
	resp, err := r.httpClient.PostForm(ctx, githubTokenURL, map[string]string{
		"code":          code,
		"client_id":     p.ClientID,
		"client_secret": p.ClientSecret,
		"redirect_uri":  p.RedirectURI,
	}, map[string]string{"Accept": "application/json"}, &tokenResp)
	if err != nil {
		return nil, fmt.Errorf("github code exchange failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK || tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("github code exchange returned status %d", resp.StatusCode)
	}

	authHeader := map[string]string{
		"Authorization": "Bearer " + tokenResp.AccessToken,
		"Accept":        "application/json",
	}

	var userInfo struct {
		ID    int64  `json:"id"`
		Login string `json:"login"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	resp, err = r.httpClient.Get(ctx, githubUserURL, nil, authHeader, &userInfo)
	if err != nil {
		return nil, fmt.Errorf("github user fetch failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github user returned status %d", resp.StatusCode)
	}

	email := userInfo.Email
	if email == "" {
		// GitHub keeps emails behind a separate endpoint; prefer the
		// primary address.
		var emails []struct {
			Email   string `json:"email"`
			Primary bool   `json:"primary"`
		}
		resp, err = r.httpClient.Get(ctx, githubEmailURL, nil, authHeader, &emails)
		if err == nil && resp.StatusCode == http.StatusOK {
			for _, e := range emails {
				if e.Primary {
					email = e.Email
					break
				}
			}
			if email == "" && len(emails) > 0 {
				email = emails[0].Email
			}
		}
	}

	name := userInfo.Name
	if name == "" {
		name = userInfo.Login
	}

	return &dto.OAuthUserInfo{
		Provider:       dto.ProviderGitHub,
		ProviderUserID: fmt.Sprintf("%d", userInfo.ID),
		Email:          email,
		Name:           name,
		AccessToken:    tokenResp.AccessToken,
		RefreshToken:   tokenResp.RefreshToken,
	}, nil
}
