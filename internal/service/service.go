package service

import (
	"market-tips/config"
	"market-tips/internal/repository"
	"market-tips/pkg/cache"
	"market-tips/pkg/eventstore"
	"market-tips/pkg/logger"
	"market-tips/pkg/mailer"
)

type Service struct {
	AggregatorService AggregatorService
	AnalysisService   AnalysisService
	EmailService      EmailService
	SchedulerService  SchedulerService
	TokenService      TokenService
	CSRFService       CSRFService
	AuthService       AuthService
	OAuthService      OAuthService
	UserService       UserService
	MetricsService    MetricsService
}

func NewService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
	inmemoryCache cache.Cache,
	events *eventstore.Store,
	sender mailer.Sender,
) (*Service, error) {
	aggregatorService := NewAggregatorService(cfg, log, repo.CoinGeckoRepo, repo.AlphaVantageRepo, repo.MarketDataRepo, inmemoryCache, events)
	analysisService := NewAnalysisService(cfg, log, repo.TipRepo, events)
	emailService, err := NewEmailService(cfg, log, sender, repo.DeliveryLogRepo, events)
	if err != nil {
		return nil, err
	}
	schedulerService, err := NewSchedulerService(cfg, log, aggregatorService, analysisService, emailService, repo.TipRepo, repo.MarketDataRepo, events)
	if err != nil {
		return nil, err
	}

	tokenService := NewTokenService(cfg)
	csrfService := NewCSRFService(inmemoryCache)
	authService := NewAuthService(cfg, log, repo.UserRepo, tokenService)
	oauthService := NewOAuthService(cfg, log, repo.UserRepo, repo.OAuthRepo, repo.OAuthProvider, tokenService, inmemoryCache)
	userService := NewUserService(log, repo.UserRepo, repo.OAuthRepo)

	return &Service{
		AggregatorService: aggregatorService,
		AnalysisService:   analysisService,
		EmailService:      emailService,
		SchedulerService:  schedulerService,
		TokenService:      tokenService,
		CSRFService:       csrfService,
		AuthService:       authService,
		OAuthService:      oauthService,
		UserService:       userService,
		MetricsService:    NewMetricsService(events),
	}, nil
}
