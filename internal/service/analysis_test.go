package service

import (
	"context"
	"testing"
	"time"

	"market-tips/config"
	"market-tips/internal/dto"
	"market-tips/internal/model"
	"market-tips/pkg/eventstore"
	"market-tips/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTipRepo struct {
	created       []model.TradingTip
	tips          []model.TradingTip
	deletedBefore time.Time
}

func (f *fakeTipRepo) CreateBulk(ctx context.Context, tips []model.TradingTip) error {
	f.created = append(f.created, tips...)
	return nil
}

func (f *fakeTipRepo) Get(ctx context.Context, param model.GetTipsParam) ([]model.TradingTip, int64, error) {
	return f.tips, int64(len(f.tips)), nil
}

func (f *fakeTipRepo) DeleteOlderThan(ctx context.Context, date time.Time) (int64, error) {
	f.deletedBefore = date
	return int64(len(f.created)), nil
}

func newAnalysisForTest(t *testing.T) (AnalysisService, *fakeTipRepo) {
	t.Helper()
	repo := &fakeTipRepo{}
	return NewAnalysisService(&config.Config{}, logger.NewNop(), repo, eventstore.New(100, time.Hour)), repo
}

func marketDataWith(prices []float64, change24h float64) dto.MarketData {
	return dto.MarketData{
		Symbol:         "bitcoin",
		AssetType:      dto.AssetCrypto,
		CurrentPrice:   50000,
		PriceChange24h: change24h,
		Historical: dto.HistoricalData{
			Period: dto.PeriodMonth,
			Prices: prices,
		},
		Source: dto.DataSource{Name: "CoinGecko", URL: "https://api.coingecko.com/api/v3"},
	}
}

func TestAnalyze_InsufficientData(t *testing.T) {
	svc, _ := newAnalysisForTest(t)

	tips := svc.Analyze(context.Background(), []dto.MarketData{
		marketDataWith([]float64{100}, 0),
	}, dto.DeliveryMorning)

	require.Len(t, tips, 1)
	assert.Equal(t, dto.RecommendHold, tips[0].Recommendation)
	assert.Equal(t, 30, tips[0].Confidence)
	assert.Equal(t, "Insufficient historical data for analysis", tips[0].Reasoning)
	assert.Empty(t, tips[0].Indicators)
}

func TestAnalyze_UptrendProducesBuy(t *testing.T) {
	svc, _ := newAnalysisForTest(t)

	prices := make([]float64, 40)
	for i := range prices {
		prices[i] = 100 + float64(i)*2
	}
	tips := svc.Analyze(context.Background(), []dto.MarketData{
		marketDataWith(prices, 8),
	}, dto.DeliveryEvening)

	require.Len(t, tips, 1)
	tip := tips[0]
	// SMA crossover, MACD and 24h momentum all vote buy; RSI is pinned at
	// 100 on a loss-free series so it votes sell. 3/4 positive.
	assert.Equal(t, dto.RecommendBuy, tip.Recommendation)
	assert.Equal(t, 75, tip.Confidence)
	assert.Equal(t, "Technical indicators suggest upward momentum (3/4 signals positive)", tip.Reasoning)
	assert.ElementsMatch(t, []string{"RSI", "SMA", "MACD"}, tip.Indicators)
	assert.Equal(t, dto.DeliveryEvening, tip.DeliveryType)
}

func TestAnalyze_DowntrendProducesSell(t *testing.T) {
	svc, _ := newAnalysisForTest(t)

	prices := make([]float64, 40)
	for i := range prices {
		prices[i] = 200 - float64(i)*2
	}
	tips := svc.Analyze(context.Background(), []dto.MarketData{
		marketDataWith(prices, -8),
	}, dto.DeliveryMorning)

	require.Len(t, tips, 1)
	tip := tips[0]
	// RSI below 30 votes buy; SMA, MACD and momentum vote sell. 3/4 negative.
	assert.Equal(t, dto.RecommendSell, tip.Recommendation)
	assert.Equal(t, 75, tip.Confidence)
	assert.Equal(t, "Technical indicators suggest downward pressure (3/4 signals negative)", tip.Reasoning)
}

func TestAnalyze_ShortSeriesSkipsUnavailableIndicators(t *testing.T) {
	svc, _ := newAnalysisForTest(t)

	// 10 points: enough for SMA5 but not SMA20, RSI14 or MACD26.
	prices := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	tips := svc.Analyze(context.Background(), []dto.MarketData{
		marketDataWith(prices, 0),
	}, dto.DeliveryMorning)

	require.Len(t, tips, 1)
	assert.Equal(t, dto.RecommendHold, tips[0].Recommendation)
	assert.Equal(t, 30, tips[0].Confidence)
	assert.Equal(t, "Insufficient indicator data", tips[0].Reasoning)
}

func TestAnalyze_SourceAttributionCarriedToTip(t *testing.T) {
	svc, _ := newAnalysisForTest(t)

	tips := svc.Analyze(context.Background(), []dto.MarketData{
		marketDataWith([]float64{100, 101}, 0),
	}, dto.DeliveryMorning)

	require.Len(t, tips, 1)
	require.Len(t, tips[0].Sources, 1)
	assert.Equal(t, "CoinGecko", tips[0].Sources[0].Name)
	assert.Equal(t, "https://api.coingecko.com/api/v3", tips[0].Sources[0].URL)
}

func TestPersistTips(t *testing.T) {
	svc, repo := newAnalysisForTest(t)

	tips := []dto.TradingTip{
		{
			Symbol:         "bitcoin",
			AssetType:      dto.AssetCrypto,
			Recommendation: dto.RecommendBuy,
			Reasoning:      "Technical indicators suggest upward momentum (3/4 signals positive)",
			Confidence:     75,
			Indicators:     []string{"RSI", "SMA", "MACD"},
			Sources:        []dto.TipSource{{Name: "CoinGecko", URL: "https://api.coingecko.com/api/v3"}},
			GeneratedAt:    time.Now().UTC(),
			DeliveryType:   dto.DeliveryMorning,
		},
	}
	require.NoError(t, svc.PersistTips(context.Background(), tips))

	require.Len(t, repo.created, 1)
	record := repo.created[0]
	assert.NotEmpty(t, record.ID)
	assert.Equal(t, "bitcoin", record.Symbol)
	assert.Equal(t, "BUY", record.Recommendation)
	assert.JSONEq(t, `["RSI","SMA","MACD"]`, string(record.Indicators))
}
