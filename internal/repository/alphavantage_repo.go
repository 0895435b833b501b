package repository

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"market-tips/config"
	"market-tips/internal/dto"
	"market-tips/pkg/httpclient"
	"market-tips/pkg/logger"

	"golang.org/x/time/rate"
)

type AlphaVantageRepository interface {
	GetGlobalQuote(ctx context.Context, symbol string) (*dto.StockQuote, error)
	GetDailySeries(ctx context.Context, symbol string, days int) (*dto.StockSeries, error)
	BaseURL() string
}

type alphaVantageRepository struct {
	httpClient     httpclient.HTTPClient
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
}

func NewAlphaVantageRepository(cfg *config.Config, log *logger.Logger) AlphaVantageRepository {
	secondsPerRequest := time.Minute / time.Duration(cfg.MarketData.MaxRequestPerMin)

	return &alphaVantageRepository{
		httpClient:     httpclient.New(cfg.MarketData.AlphaVantageBaseURL, cfg.MarketData.Timeout, ""),
		cfg:            cfg,
		logger:         log,
		requestLimiter: rate.NewLimiter(rate.Every(secondsPerRequest), 1),
	}
}

func (r *alphaVantageRepository) BaseURL() string {
	return r.cfg.MarketData.AlphaVantageBaseURL
}

func (r *alphaVantageRepository) GetGlobalQuote(ctx context.Context, symbol string) (*dto.StockQuote, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	queryParams := map[string]string{
		"function": "GLOBAL_QUOTE",
		"symbol":   symbol,
		"apikey":   r.cfg.MarketData.AlphaVantageAPIKey,
	}

	var quoteResp dto.AlphaVantageGlobalQuote
	resp, err := r.httpClient.Get(ctx, "/query", queryParams, nil, &quoteResp)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quote from alpha vantage: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		r.logger.ErrorContext(ctx, "Alpha Vantage API returned Non-OK status",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("symbol", symbol))
		return nil, fmt.Errorf("alpha vantage api returned status: %d", resp.StatusCode)
	}

	q := quoteResp.GlobalQuote
	if q.Symbol == "" {
		return nil, fmt.Errorf("no quote data returned for symbol: %s", symbol)
	}

	price, err := strconv.ParseFloat(q.Price, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid price for symbol %s: %w", symbol, err)
	}
	volume, _ := strconv.ParseFloat(q.Volume, 64)
	changePct, err := strconv.ParseFloat(strings.TrimSuffix(q.ChangePercent, "%"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid change percent for symbol %s: %w", symbol, err)
	}

	return &dto.StockQuote{
		Symbol:        q.Symbol,
		Price:         price,
		Volume:        volume,
		ChangePercent: changePct,
	}, nil
}

func (r *alphaVantageRepository) GetDailySeries(ctx context.Context, symbol string, days int) (*dto.StockSeries, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	queryParams := map[string]string{
		"function": "TIME_SERIES_DAILY",
		"symbol":   symbol,
		"apikey":   r.cfg.MarketData.AlphaVantageAPIKey,
	}

	var seriesResp dto.AlphaVantageDailySeries
	resp, err := r.httpClient.Get(ctx, "/query", queryParams, nil, &seriesResp)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch daily series from alpha vantage: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		r.logger.ErrorContext(ctx, "Alpha Vantage API returned Non-OK status",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("symbol", symbol))
		return nil, fmt.Errorf("alpha vantage api returned status: %d", resp.StatusCode)
	}

	if len(seriesResp.TimeSeries) == 0 {
		return nil, fmt.Errorf("no daily series returned for symbol: %s", symbol)
	}

	// Keys are ISO dates, so lexicographic order is chronological order.
	dates := make([]string, 0, len(seriesResp.TimeSeries))
	for date := range seriesResp.TimeSeries {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	if days > 0 && len(dates) > days {
		dates = dates[len(dates)-days:]
	}

	series := &dto.StockSeries{
		Symbol:     symbol,
		Prices:     make([]float64, 0, len(dates)),
		Timestamps: make([]int64, 0, len(dates)),
	}
	for _, date := range dates {
		bar := seriesResp.TimeSeries[date]
		closePrice, err := strconv.ParseFloat(bar.Close, 64)
		if err != nil {
			continue
		}
		t, err := time.Parse("2006-01-02", date)
		if err != nil {
			continue
		}
		series.Prices = append(series.Prices, closePrice)
		series.Timestamps = append(series.Timestamps, t.Unix())
	}

	if len(series.Prices) == 0 {
		return nil, fmt.Errorf("no parsable closes in daily series for symbol: %s", symbol)
	}

	return series, nil
}
