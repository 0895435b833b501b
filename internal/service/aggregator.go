package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"market-tips/config"
	"market-tips/internal/dto"
	"market-tips/internal/model"
	"market-tips/internal/repository"
	"market-tips/pkg/cache"
	"market-tips/pkg/eventstore"
	"market-tips/pkg/logger"
	"market-tips/pkg/metrics"
	"market-tips/pkg/trace"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
)

const (
	sourceCoinGecko    = "CoinGecko"
	sourceAlphaVantage = "Alpha Vantage"

	lastGoodCacheKeyFmt = "market_data:last:%s"
)

// AggregatorService fetches current and historical market data for every
// configured symbol. A symbol whose upstream call fails falls back to the
// last successful fetch; symbols with no fallback are skipped.
type AggregatorService interface {
	FetchAll(ctx context.Context) ([]dto.MarketData, error)
	GetLatestSnapshots(ctx context.Context) ([]model.MarketDataSnapshot, error)
}

type aggregatorService struct {
	cfg            *config.Config
	logger         *logger.Logger
	coinGeckoRepo  repository.CoinGeckoRepository
	alphaRepo      repository.AlphaVantageRepository
	marketDataRepo repository.MarketDataRepository
	cache          cache.Cache
	events         *eventstore.Store
}

func NewAggregatorService(
	cfg *config.Config,
	log *logger.Logger,
	coinGeckoRepo repository.CoinGeckoRepository,
	alphaRepo repository.AlphaVantageRepository,
	marketDataRepo repository.MarketDataRepository,
	inmemoryCache cache.Cache,
	events *eventstore.Store,
) AggregatorService {
	return &aggregatorService{
		cfg:            cfg,
		logger:         log,
		coinGeckoRepo:  coinGeckoRepo,
		alphaRepo:      alphaRepo,
		marketDataRepo: marketDataRepo,
		cache:          inmemoryCache,
		events:         events,
	}
}

func (s *aggregatorService) FetchAll(ctx context.Context) ([]dto.MarketData, error) {
	start := time.Now()
	traceID := trace.FromContext(ctx)

	var (
		mu      sync.Mutex
		results []dto.MarketData
	)
	appendResults := func(data []dto.MarketData) {
		mu.Lock()
		results = append(results, data...)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		appendResults(s.fetchCrypto(gctx))
		return nil
	})
	g.Go(func() error {
		appendResults(s.fetchStocks(gctx))
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(results) == 0 {
		s.events.Add(traceID, eventstore.TypeFetchComplete, "aggregator", "market data fetch failed",
			map[string]interface{}{"status": dto.DeliveryStatusFailed},
			float64(time.Since(start).Milliseconds()))
		return nil, fmt.Errorf("no market data available from any source")
	}

	if err := s.persistSnapshots(ctx, results); err != nil {
		// Persistence is best-effort, the delivery pipeline keeps going.
		s.logger.ErrorContext(ctx, "Failed to persist market data snapshots", logger.ErrorField(err))
		s.events.Add(traceID, eventstore.TypeError, "aggregator", "failed to persist snapshots: "+err.Error(), nil, 0)
	}

	s.events.Add(traceID, eventstore.TypeFetchComplete, "aggregator", "market data fetch complete",
		map[string]interface{}{
			"status":            dto.DeliveryStatusSuccess,
			"symbols_requested": len(s.cfg.MarketData.CryptoSymbols) + len(s.cfg.MarketData.StockSymbols),
			"symbols_fetched":   len(results),
		}, float64(time.Since(start).Milliseconds()))

	return results, nil
}

func (s *aggregatorService) GetLatestSnapshots(ctx context.Context) ([]model.MarketDataSnapshot, error) {
	return s.marketDataRepo.GetLatest(ctx)
}

func (s *aggregatorService) fetchCrypto(ctx context.Context) []dto.MarketData {
	symbols := s.cfg.MarketData.CryptoSymbols
	if len(symbols) == 0 {
		return nil
	}

	start := time.Now()
	prices, err := s.coinGeckoRepo.GetSimplePrice(ctx, symbols)
	if err != nil {
		s.logger.ErrorContext(ctx, "CoinGecko price fetch failed", logger.ErrorField(err))
		metrics.FetchesTotal.WithLabelValues(sourceCoinGecko, "error").Inc()
		return s.fallbackAll(ctx, symbols, sourceCoinGecko, err)
	}

	days, ok := dto.PeriodDays(s.cfg.MarketData.HistoricalPeriod)
	if !ok {
		days = 30
	}

	var out []dto.MarketData
	for _, symbol := range symbols {
		quote, found := prices[symbol]
		if !found {
			out = s.appendWithFallback(ctx, out, symbol, sourceCoinGecko, fmt.Errorf("symbol %s missing from price response", symbol))
			continue
		}

		chart, err := s.coinGeckoRepo.GetMarketChart(ctx, symbol, days)
		if err != nil {
			out = s.appendWithFallback(ctx, out, symbol, sourceCoinGecko, err)
			continue
		}

		historical := dto.HistoricalData{
			Period:     s.cfg.MarketData.HistoricalPeriod,
			Prices:     make([]float64, 0, len(chart.Prices)),
			Timestamps: make([]int64, 0, len(chart.Prices)),
		}
		for _, point := range chart.Prices {
			if len(point) < 2 {
				continue
			}
			historical.Timestamps = append(historical.Timestamps, int64(point[0])/1000)
			historical.Prices = append(historical.Prices, point[1])
		}

		data := dto.MarketData{
			Symbol:         symbol,
			AssetType:      dto.AssetCrypto,
			CurrentPrice:   quote.USD,
			PriceChange24h: quote.USD24hChange,
			Volume24h:      quote.USD24hVol,
			Historical:     historical,
			Source: dto.DataSource{
				Name:      sourceCoinGecko,
				URL:       s.coinGeckoRepo.BaseURL(),
				FetchedAt: time.Now().UTC(),
			},
		}
		s.cache.Set(fmt.Sprintf(lastGoodCacheKeyFmt, symbol), data, cache.NoExpiration)
		metrics.FetchesTotal.WithLabelValues(sourceCoinGecko, "success").Inc()
		out = append(out, data)
	}

	metrics.FetchDuration.WithLabelValues(sourceCoinGecko).Observe(time.Since(start).Seconds())
	return out
}

func (s *aggregatorService) fetchStocks(ctx context.Context) []dto.MarketData {
	symbols := s.cfg.MarketData.StockSymbols
	if len(symbols) == 0 {
		return nil
	}

	start := time.Now()
	days, ok := dto.PeriodDays(s.cfg.MarketData.HistoricalPeriod)
	if !ok {
		days = 30
	}

	var out []dto.MarketData
	for _, symbol := range symbols {
		quote, err := s.alphaRepo.GetGlobalQuote(ctx, symbol)
		if err != nil {
			metrics.FetchesTotal.WithLabelValues(sourceAlphaVantage, "error").Inc()
			out = s.appendWithFallback(ctx, out, symbol, sourceAlphaVantage, err)
			continue
		}

		series, err := s.alphaRepo.GetDailySeries(ctx, symbol, days)
		if err != nil {
			metrics.FetchesTotal.WithLabelValues(sourceAlphaVantage, "error").Inc()
			out = s.appendWithFallback(ctx, out, symbol, sourceAlphaVantage, err)
			continue
		}

		data := dto.MarketData{
			Symbol:         symbol,
			AssetType:      dto.AssetStock,
			CurrentPrice:   quote.Price,
			PriceChange24h: quote.ChangePercent,
			Volume24h:      quote.Volume,
			Historical: dto.HistoricalData{
				Period:     s.cfg.MarketData.HistoricalPeriod,
				Prices:     series.Prices,
				Timestamps: series.Timestamps,
			},
			Source: dto.DataSource{
				Name:      sourceAlphaVantage,
				URL:       s.alphaRepo.BaseURL(),
				FetchedAt: time.Now().UTC(),
			},
		}
		s.cache.Set(fmt.Sprintf(lastGoodCacheKeyFmt, symbol), data, cache.NoExpiration)
		metrics.FetchesTotal.WithLabelValues(sourceAlphaVantage, "success").Inc()
		out = append(out, data)
	}

	metrics.FetchDuration.WithLabelValues(sourceAlphaVantage).Observe(time.Since(start).Seconds())
	return out
}

// appendWithFallback records the failure and appends the symbol's last
// successful fetch: the in-process cache first, then the newest persisted
// snapshot. The snapshot path covers restarts, where the cache is empty.
func (s *aggregatorService) appendWithFallback(ctx context.Context, out []dto.MarketData, symbol, source string, cause error) []dto.MarketData {
	traceID := trace.FromContext(ctx)
	s.logger.WarnContext(ctx, "Market data fetch failed, trying fallback",
		logger.StringField("symbol", symbol),
		logger.StringField("source", source),
		logger.ErrorField(cause))
	s.events.Add(traceID, eventstore.TypeError, "aggregator",
		fmt.Sprintf("fetch failed for %s: %s", symbol, cause.Error()),
		map[string]interface{}{"symbol": symbol, "source": source}, 0)

	cached, found := cache.Get[dto.MarketData](s.cache, fmt.Sprintf(lastGoodCacheKeyFmt, symbol))
	if found {
		return append(out, cached)
	}

	snapshot, err := s.marketDataRepo.GetLatestBySymbol(ctx, symbol)
	if err != nil {
		s.logger.WarnContext(ctx, "No fallback market data for symbol, skipping",
			logger.StringField("symbol", symbol))
		return out
	}
	data, err := snapshotToMarketData(snapshot)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to decode persisted snapshot",
			logger.StringField("symbol", symbol),
			logger.ErrorField(err))
		return out
	}
	return append(out, data)
}

func snapshotToMarketData(snap *model.MarketDataSnapshot) (dto.MarketData, error) {
	var historical dto.HistoricalData
	if len(snap.Historical) > 0 {
		if err := json.Unmarshal(snap.Historical, &historical); err != nil {
			return dto.MarketData{}, err
		}
	}
	return dto.MarketData{
		Symbol:         snap.Symbol,
		AssetType:      dto.AssetType(snap.AssetType),
		CurrentPrice:   snap.CurrentPrice,
		PriceChange24h: snap.PriceChange24h,
		Volume24h:      snap.Volume24h,
		Historical:     historical,
		Source: dto.DataSource{
			Name:      snap.SourceName,
			URL:       snap.SourceURL,
			FetchedAt: snap.FetchedAt,
		},
	}, nil
}

func (s *aggregatorService) fallbackAll(ctx context.Context, symbols []string, source string, cause error) []dto.MarketData {
	var out []dto.MarketData
	for _, symbol := range symbols {
		out = s.appendWithFallback(ctx, out, symbol, source, cause)
	}
	return out
}

func (s *aggregatorService) persistSnapshots(ctx context.Context, data []dto.MarketData) error {
	snapshots := make([]model.MarketDataSnapshot, 0, len(data))
	for _, d := range data {
		historical, err := json.Marshal(d.Historical)
		if err != nil {
			return err
		}
		snapshots = append(snapshots, model.MarketDataSnapshot{
			ID:             uuid.NewString(),
			Symbol:         d.Symbol,
			AssetType:      string(d.AssetType),
			CurrentPrice:   d.CurrentPrice,
			PriceChange24h: d.PriceChange24h,
			Volume24h:      d.Volume24h,
			Historical:     datatypes.JSON(historical),
			SourceName:     d.Source.Name,
			SourceURL:      d.Source.URL,
			FetchedAt:      d.Source.FetchedAt,
		})
	}
	return s.marketDataRepo.CreateBulk(ctx, snapshots)
}
