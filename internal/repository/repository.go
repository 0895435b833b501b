package repository

import (
	"market-tips/config"
	"market-tips/pkg/logger"

	"gorm.io/gorm"
)

type Repository struct {
	CoinGeckoRepo    CoinGeckoRepository
	AlphaVantageRepo AlphaVantageRepository
	TipRepo          TradingTipRepository
	MarketDataRepo   MarketDataRepository
	DeliveryLogRepo  DeliveryLogRepository
	UserRepo         UserRepository
	OAuthRepo        OAuthConnectionRepository
	OAuthProvider    OAuthProviderRepository
}

func NewRepository(cfg *config.Config, db *gorm.DB, log *logger.Logger) *Repository {
	return &Repository{
		CoinGeckoRepo:    NewCoinGeckoRepository(cfg, log),
		AlphaVantageRepo: NewAlphaVantageRepository(cfg, log),
		TipRepo:          NewTradingTipRepository(db),
		MarketDataRepo:   NewMarketDataRepository(db),
		DeliveryLogRepo:  NewDeliveryLogRepository(db),
		UserRepo:         NewUserRepository(db),
		OAuthRepo:        NewOAuthConnectionRepository(db),
		OAuthProvider:    NewOAuthProviderRepository(cfg, log),
	}
}
