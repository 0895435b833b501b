package service

import (
	"context"
	"errors"
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

type fakeAggregator struct {
	data []dto.MarketData
	err  error
}

func (f *fakeAggregator) FetchAll(ctx context.Context) ([]dto.MarketData, error) {
	return f.data, f.err
}

func (f *fakeAggregator) GetLatestSnapshots(ctx context.Context) ([]model.MarketDataSnapshot, error) {
	return nil, nil
}

type fakeAnalysis struct {
	tips       []dto.TradingTip
	persistErr error
	persisted  bool
}

func (f *fakeAnalysis) Analyze(ctx context.Context, data []dto.MarketData, deliveryType dto.DeliveryType) []dto.TradingTip {
	return f.tips
}

func (f *fakeAnalysis) PersistTips(ctx context.Context, tips []dto.TradingTip) error {
	f.persisted = true
	return f.persistErr
}

func (f *fakeAnalysis) GetTips(ctx context.Context, param model.GetTipsParam) ([]model.TradingTip, int64, error) {
	return nil, 0, nil
}

type fakeEmail struct {
	sent int
	err  error
}

func (f *fakeEmail) Deliver(ctx context.Context, tips []dto.TradingTip, data []dto.MarketData, deliveryType dto.DeliveryType) (int, error) {
	return f.sent, f.err
}

func (f *fakeEmail) SendWithRetry(ctx context.Context, content dto.EmailContent) error {
	return nil
}

func (f *fakeEmail) RenderHTML(content dto.EmailContent) (string, error) {
	return "", nil
}

func (f *fakeEmail) RecentDeliveries(ctx context.Context, limit int) ([]model.DeliveryLog, error) {
	return nil, nil
}

func newSchedulerForTest(t *testing.T, aggregator AggregatorService, analysis AnalysisService, email EmailService) (SchedulerService, *eventstore.Store) {
	t.Helper()
	cfg := &config.Config{}
	cfg.Scheduler.Timezone = "UTC"
	cfg.Scheduler.MorningTime = "08:00"
	cfg.Scheduler.EveningTime = "20:00"
	cfg.Scheduler.RetentionDays = 90

	events := eventstore.New(100, time.Hour)
	svc, err := NewSchedulerService(cfg, logger.NewNop(), aggregator, analysis, email, &fakeTipRepo{}, &fakeMarketDataRepo{}, events)
	require.NoError(t, err)
	return svc, events
}

func TestNewSchedulerService_RejectsBadTimezone(t *testing.T) {
	cfg := &config.Config{}
	cfg.Scheduler.Timezone = "Mars/Olympus_Mons"

	_, err := NewSchedulerService(cfg, logger.NewNop(), &fakeAggregator{}, &fakeAnalysis{}, &fakeEmail{}, &fakeTipRepo{}, &fakeMarketDataRepo{}, eventstore.New(100, time.Hour))
	assert.Error(t, err)
}

func TestPurgeAgedRecords(t *testing.T) {
	svc, _ := newSchedulerForTest(t, &fakeAggregator{}, &fakeAnalysis{}, &fakeEmail{})

	s := svc.(*schedulerService)
	tipRepo := &fakeTipRepo{}
	marketRepo := &fakeMarketDataRepo{}
	s.tipRepo = tipRepo
	s.marketDataRepo = marketRepo

	s.purgeAgedRecords(context.Background())

	cutoff := time.Now().UTC().AddDate(0, 0, -90)
	assert.WithinDuration(t, cutoff, tipRepo.deletedBefore, time.Minute)
	assert.WithinDuration(t, cutoff, marketRepo.deletedBefore, time.Minute)
}

func TestExecuteDelivery_Success(t *testing.T) {
	analysis := &fakeAnalysis{tips: []dto.TradingTip{{Symbol: "bitcoin"}, {Symbol: "AAPL"}}}
	svc, events := newSchedulerForTest(t,
		&fakeAggregator{data: []dto.MarketData{{Symbol: "bitcoin"}}},
		analysis,
		&fakeEmail{sent: 2},
	)

	err := svc.ExecuteDelivery(context.Background(), dto.DeliveryMorning)
	require.NoError(t, err)
	assert.True(t, analysis.persisted)

	complete := events.ByType(eventstore.TypeDeliveryComplete, 0)
	require.Len(t, complete, 1)
	assert.Equal(t, dto.DeliveryStatusSuccess, complete[0].Context["status"])
	assert.Equal(t, 2, complete[0].Context["tips_generated"])
	assert.Equal(t, 2, complete[0].Context["recipients_sent"])
	assert.NotEmpty(t, complete[0].TraceID)

	starts := events.ByType(eventstore.TypeDeliveryStart, 0)
	require.Len(t, starts, 1)
	assert.Equal(t, starts[0].TraceID, complete[0].TraceID)
}

func TestExecuteDelivery_FetchFailure(t *testing.T) {
	svc, events := newSchedulerForTest(t,
		&fakeAggregator{err: errors.New("all sources unavailable")},
		&fakeAnalysis{},
		&fakeEmail{},
	)

	err := svc.ExecuteDelivery(context.Background(), dto.DeliveryEvening)
	require.Error(t, err)

	complete := events.ByType(eventstore.TypeDeliveryComplete, 0)
	require.Len(t, complete, 1)
	assert.Equal(t, dto.DeliveryStatusFailed, complete[0].Context["status"])
	assert.Len(t, events.ByType(eventstore.TypeError, 0), 1)
}

// A persistence error must not stop the outgoing email.
func TestExecuteDelivery_PersistFailureStillDelivers(t *testing.T) {
	analysis := &fakeAnalysis{
		tips:       []dto.TradingTip{{Symbol: "bitcoin"}},
		persistErr: errors.New("database unavailable"),
	}
	email := &fakeEmail{sent: 1}
	svc, events := newSchedulerForTest(t,
		&fakeAggregator{data: []dto.MarketData{{Symbol: "bitcoin"}}},
		analysis,
		email,
	)

	err := svc.ExecuteDelivery(context.Background(), dto.DeliveryMorning)
	require.NoError(t, err)

	complete := events.ByType(eventstore.TypeDeliveryComplete, 0)
	require.Len(t, complete, 1)
	assert.Equal(t, dto.DeliveryStatusSuccess, complete[0].Context["status"])
	assert.Equal(t, 1, complete[0].Context["recipients_sent"])
}

func TestExecuteDelivery_EmailFailure(t *testing.T) {
	svc, events := newSchedulerForTest(t,
		&fakeAggregator{data: []dto.MarketData{{Symbol: "bitcoin"}}},
		&fakeAnalysis{tips: []dto.TradingTip{{Symbol: "bitcoin"}}},
		&fakeEmail{err: errors.New("smtp unavailable")},
	)

	err := svc.ExecuteDelivery(context.Background(), dto.DeliveryManual)
	require.Error(t, err)

	complete := events.ByType(eventstore.TypeDeliveryComplete, 0)
	require.Len(t, complete, 1)
	assert.Equal(t, dto.DeliveryStatusFailed, complete[0].Context["status"])
	assert.Equal(t, string(dto.DeliveryManual), complete[0].Context["delivery_type"])
}

func TestCronSpecFromTimeOfDay(t *testing.T) {
	tests := []struct {
		in       string
		expected string
		wantErr  bool
	}{
		{"08:00", "0 8 * * *", false},
		{"20:30", "30 20 * * *", false},
		{"00:00", "0 0 * * *", false},
		{"23:59", "59 23 * * *", false},
		{"24:00", "", true},
		{"08:60", "", true},
		{"8am", "", true},
		{"", "", true},
		{"08:00:00", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			spec, err := cronSpecFromTimeOfDay(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, spec)
			}
		})
	}
}
