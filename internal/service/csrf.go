package service

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"market-tips/pkg/cache"
)

const csrfTokenTTL = time.Hour

// CSRFService issues single-origin tokens checked on state-changing
// dashboard requests.
type CSRFService interface {
	GenerateToken() (string, error)
	ValidateToken(token string) bool
}

type csrfService struct {
	cache cache.Cache
}

func NewCSRFService(inmemoryCache cache.Cache) CSRFService {
	return &csrfService{cache: inmemoryCache}
}

func (s *csrfService) GenerateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)
	s.cache.Set("csrf:"+token, true, csrfTokenTTL)
	return token, nil
}

func (s *csrfService) ValidateToken(token string) bool {
	if token == "" {
		return false
	}
	_, found := s.cache.Get("csrf:" + token)
	return found
}
