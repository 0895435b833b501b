package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"market-tips/config"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// TokenService issues and verifies HS256 JWTs. Access and refresh tokens
// share the signing key and differ by the "type" claim and lifetime.
type TokenService interface {
	GenerateAccessToken(userID uint) (string, error)
	GenerateRefreshToken(userID uint) (string, error)
	VerifyAccessToken(token string) (uint, error)
	VerifyRefreshToken(token string) (uint, error)
	AccessTokenTTL() time.Duration
}

type tokenService struct {
	secretKey  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenService(cfg *config.Config) TokenService {
	return &tokenService{
		secretKey:  []byte(cfg.JWT.SecretKey),
		accessTTL:  cfg.JWT.AccessTokenExpire,
		refreshTTL: cfg.JWT.RefreshTokenExpire,
		now:        time.Now,
	}
}

func (s *tokenService) AccessTokenTTL() time.Duration {
	return s.accessTTL
}

func (s *tokenService) GenerateAccessToken(userID uint) (string, error) {
	return s.generate(userID, tokenTypeAccess, s.accessTTL)
}

func (s *tokenService) GenerateRefreshToken(userID uint) (string, error) {
	return s.generate(userID, tokenTypeRefresh, s.refreshTTL)
}

func (s *tokenService) generate(userID uint, tokenType string, ttl time.Duration) (string, error) {
	now := s.now().UTC()
	claims := jwt.MapClaims{
		"sub":  strconv.FormatUint(uint64(userID), 10),
		"type": tokenType,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
}

func (s *tokenService) VerifyAccessToken(token string) (uint, error) {
	return s.verify(token, tokenTypeAccess)
}

func (s *tokenService) VerifyRefreshToken(token string) (uint, error) {
	return s.verify(token, tokenTypeRefresh)
}

func (s *tokenService) verify(tokenString, wantType string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secretKey, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	if tokenType, _ := claims["type"].(string); tokenType != wantType {
		return 0, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	userID, err := strconv.ParseUint(sub, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return uint(userID), nil
}
