package repository

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"market-tips/config"
	"market-tips/internal/dto"
	"market-tips/pkg/httpclient"
	"market-tips/pkg/logger"

	"golang.org/x/time/rate"
)

type CoinGeckoRepository interface {
	GetSimplePrice(ctx context.Context, coinIDs []string) (dto.CoinGeckoSimplePrice, error)
	GetMarketChart(ctx context.Context, coinID string, days int) (*dto.CoinGeckoMarketChart, error)
	BaseURL() string
}

type coinGeckoRepository struct {
	httpClient     httpclient.HTTPClient
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
}

func NewCoinGeckoRepository(cfg *config.Config, log *logger.Logger) CoinGeckoRepository {
	secondsPerRequest := time.Minute / time.Duration(cfg.MarketData.MaxRequestPerMin)

	return &coinGeckoRepository{
		httpClient:     httpclient.New(cfg.MarketData.CoinGeckoBaseURL, cfg.MarketData.Timeout, ""),
		cfg:            cfg,
		logger:         log,
		requestLimiter: rate.NewLimiter(rate.Every(secondsPerRequest), 1),
	}
}

func (r *coinGeckoRepository) BaseURL() string {
	return r.cfg.MarketData.CoinGeckoBaseURL
}

func (r *coinGeckoRepository) GetSimplePrice(ctx context.Context, coinIDs []string) (dto.CoinGeckoSimplePrice, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	queryParams := map[string]string{
		"ids":                 strings.Join(coinIDs, ","),
		"vs_currencies":       "usd",
		"include_24hr_vol":    "true",
		"include_24hr_change": "true",
	}

	var priceResp dto.CoinGeckoSimplePrice
	resp, err := r.httpClient.Get(ctx, "/simple/price", queryParams, nil, &priceResp)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prices from coingecko: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		r.logger.ErrorContext(ctx, "CoinGecko API returned Non-OK status",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("body", string(resp.Body)))
		return nil, fmt.Errorf("coingecko api returned status: %d", resp.StatusCode)
	}

	return priceResp, nil
}

func (r *coinGeckoRepository) GetMarketChart(ctx context.Context, coinID string, days int) (*dto.CoinGeckoMarketChart, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("/coins/%s/market_chart", coinID)
	queryParams := map[string]string{
		"vs_currency": "usd",
		"days":        fmt.Sprintf("%d", days),
	}

	var chartResp dto.CoinGeckoMarketChart
	resp, err := r.httpClient.Get(ctx, endpoint, queryParams, nil, &chartResp)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch market chart from coingecko: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		r.logger.ErrorContext(ctx, "CoinGecko API returned Non-OK status",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("coin_id", coinID))
		return nil, fmt.Errorf("coingecko api returned status: %d", resp.StatusCode)
	}

	if len(chartResp.Prices) == 0 {
		return nil, fmt.Errorf("no chart data returned for coin: %s", coinID)
	}

	return &chartResp, nil
}
