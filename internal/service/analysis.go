package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"market-tips/config"
	"market-tips/internal/dto"
	"market-tips/internal/indicator"
	"market-tips/internal/model"
	"market-tips/internal/repository"
	"market-tips/pkg/eventstore"
	"market-tips/pkg/logger"
	"market-tips/pkg/metrics"
	"market-tips/pkg/trace"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AnalysisService turns market data into trading tips using a simple
// vote over RSI, SMA crossover, MACD and 24h momentum.
type AnalysisService interface {
	Analyze(ctx context.Context, data []dto.MarketData, deliveryType dto.DeliveryType) []dto.TradingTip
	PersistTips(ctx context.Context, tips []dto.TradingTip) error
	GetTips(ctx context.Context, param model.GetTipsParam) ([]model.TradingTip, int64, error)
}

type analysisService struct {
	cfg     *config.Config
	logger  *logger.Logger
	tipRepo repository.TradingTipRepository
	events  *eventstore.Store
}

func NewAnalysisService(cfg *config.Config, log *logger.Logger, tipRepo repository.TradingTipRepository, events *eventstore.Store) AnalysisService {
	return &analysisService{
		cfg:     cfg,
		logger:  log,
		tipRepo: tipRepo,
		events:  events,
	}
}

func (s *analysisService) Analyze(ctx context.Context, data []dto.MarketData, deliveryType dto.DeliveryType) []dto.TradingTip {
	start := time.Now()
	traceID := trace.FromContext(ctx)
	now := time.Now().UTC().Truncate(time.Second)

	s.events.Add(traceID, eventstore.TypeAnalysisStart, "analysis", "starting market analysis",
		map[string]interface{}{"data_count": len(data)}, 0)

	tips := make([]dto.TradingTip, 0, len(data))
	for _, d := range data {
		tip := s.analyzeOne(d)
		tip.GeneratedAt = now
		tip.DeliveryType = deliveryType
		tips = append(tips, tip)

		metrics.TipsGeneratedTotal.WithLabelValues(string(d.AssetType)).Inc()
		s.logger.InfoContext(ctx, "Analysis completed for symbol",
			logger.StringField("symbol", d.Symbol),
			logger.StringField("recommendation", string(tip.Recommendation)),
			logger.IntField("confidence", tip.Confidence))
	}

	s.events.Add(traceID, eventstore.TypeAnalysisComplete, "analysis", "market analysis complete",
		map[string]interface{}{"tips_generated": len(tips)},
		float64(time.Since(start).Milliseconds()))

	return tips
}

func (s *analysisService) analyzeOne(d dto.MarketData) dto.TradingTip {
	tip := dto.TradingTip{
		Symbol:    d.Symbol,
		AssetType: d.AssetType,
		Sources:   []dto.TipSource{{Name: d.Source.Name, URL: d.Source.URL}},
	}

	prices := d.Historical.Prices
	if len(prices) < 2 {
		tip.Recommendation = dto.RecommendHold
		tip.Confidence = 30
		tip.Reasoning = "Insufficient historical data for analysis"
		tip.Indicators = []string{}
		return tip
	}

	rsi, rsiOK := indicator.RSI(prices, indicator.RSIPeriod)
	smaShort, smaShortOK := indicator.SMA(prices, indicator.SMAShortPeriod)
	smaLong, smaLongOK := indicator.SMA(prices, indicator.SMALongPeriod)
	macd, macdOK := indicator.MACD(prices)

	var buySignals, sellSignals, totalSignals int

	if rsiOK {
		totalSignals++
		if rsi < 30 {
			buySignals++
		} else if rsi > 70 {
			sellSignals++
		}
	}

	if smaShortOK && smaLongOK {
		totalSignals++
		if smaShort > smaLong {
			buySignals++
		} else {
			sellSignals++
		}
	}

	if macdOK {
		totalSignals++
		if macd > 0 {
			buySignals++
		} else {
			sellSignals++
		}
	}

	if d.PriceChange24h > 5 {
		buySignals++
		totalSignals++
	} else if d.PriceChange24h < -5 {
		sellSignals++
		totalSignals++
	}

	used := []string{}
	if rsiOK {
		used = append(used, "RSI")
	}
	if smaShortOK && smaLongOK {
		used = append(used, "SMA")
	}
	if macdOK {
		used = append(used, "MACD")
	}
	tip.Indicators = used

	if totalSignals == 0 {
		tip.Recommendation = dto.RecommendHold
		tip.Confidence = 30
		tip.Reasoning = "Insufficient indicator data"
		return tip
	}

	maxSignals := buySignals
	if sellSignals > maxSignals {
		maxSignals = sellSignals
	}
	tip.Confidence = maxSignals * 100 / totalSignals

	switch {
	case buySignals > sellSignals:
		tip.Recommendation = dto.RecommendBuy
		tip.Reasoning = fmt.Sprintf("Technical indicators suggest upward momentum (%d/%d signals positive)", buySignals, totalSignals)
	case sellSignals > buySignals:
		tip.Recommendation = dto.RecommendSell
		tip.Reasoning = fmt.Sprintf("Technical indicators suggest downward pressure (%d/%d signals negative)", sellSignals, totalSignals)
	default:
		tip.Recommendation = dto.RecommendHold
		tip.Reasoning = "Mixed signals from technical indicators"
	}

	return tip
}

func (s *analysisService) PersistTips(ctx context.Context, tips []dto.TradingTip) error {
	records := make([]model.TradingTip, 0, len(tips))
	for _, tip := range tips {
		indicators, err := json.Marshal(tip.Indicators)
		if err != nil {
			return err
		}
		sources, err := json.Marshal(tip.Sources)
		if err != nil {
			return err
		}
		records = append(records, model.TradingTip{
			ID:             uuid.NewString(),
			Symbol:         tip.Symbol,
			AssetType:      string(tip.AssetType),
			Recommendation: string(tip.Recommendation),
			Reasoning:      tip.Reasoning,
			Confidence:     tip.Confidence,
			Indicators:     datatypes.JSON(indicators),
			Sources:        datatypes.JSON(sources),
			DeliveryType:   string(tip.DeliveryType),
			GeneratedAt:    tip.GeneratedAt,
		})
	}
	return s.tipRepo.CreateBulk(ctx, records)
}

func (s *analysisService) GetTips(ctx context.Context, param model.GetTipsParam) ([]model.TradingTip, int64, error) {
	return s.tipRepo.Get(ctx, param)
}
