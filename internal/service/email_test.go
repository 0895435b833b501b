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
	"market-tips/pkg/mailer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	failures int
	calls    int
	messages []mailer.Message
}

func (f *fakeSender) Send(ctx context.Context, msg mailer.Message) error {
	f.calls++
	f.messages = append(f.messages, msg)
	if f.calls <= f.failures {
		return errors.New("smtp connection refused")
	}
	return nil
}

type fakeDeliveryLogRepo struct {
	entries []model.DeliveryLog
}

func (f *fakeDeliveryLogRepo) Create(ctx context.Context, log *model.DeliveryLog) error {
	f.entries = append(f.entries, *log)
	return nil
}

func (f *fakeDeliveryLogRepo) GetRecent(ctx context.Context, limit int) ([]model.DeliveryLog, error) {
	entries := make([]model.DeliveryLog, len(f.entries))
	copy(entries, f.entries)
	// Newest first, like the persistence layer.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func newEmailForTest(t *testing.T, sender mailer.Sender) (*emailService, *fakeDeliveryLogRepo) {
	t.Helper()
	cfg := &config.Config{}
	cfg.Email.Recipients = []string{"trader@example.com"}
	cfg.Email.RetryDelays = []time.Duration{time.Minute, 2 * time.Minute}

	logRepo := &fakeDeliveryLogRepo{}
	svc, err := NewEmailService(cfg, logger.NewNop(), sender, logRepo, eventstore.New(100, time.Hour))
	require.NoError(t, err)

	es := svc.(*emailService)
	es.sleep = func(ctx context.Context, d time.Duration) error { return ctx.Err() }
	return es, logRepo
}

func testContent() dto.EmailContent {
	return dto.EmailContent{
		Recipient:    "trader@example.com",
		Subject:      "Morning Market Tips - 2026-08-23",
		DeliveryType: dto.DeliveryMorning,
		Tips: []dto.TradingTip{{
			Symbol:         "bitcoin",
			AssetType:      dto.AssetCrypto,
			Recommendation: dto.RecommendBuy,
			Reasoning:      "Technical indicators suggest upward momentum (3/4 signals positive)",
			Confidence:     75,
			Indicators:     []string{"RSI", "SMA"},
			Sources:        []dto.TipSource{{Name: "CoinGecko", URL: "https://api.coingecko.com"}},
		}},
		MarketData: []dto.MarketData{{
			Symbol:         "bitcoin",
			AssetType:      dto.AssetCrypto,
			CurrentPrice:   50123.45,
			PriceChange24h: 2.5,
			Volume24h:      1234567890,
			Source:         dto.DataSource{Name: "CoinGecko", URL: "https://api.coingecko.com"},
		}},
		GeneratedAt: time.Date(2026, 8, 23, 6, 0, 0, 0, time.UTC),
	}
}

func TestSendWithRetry_SucceedsFirstAttempt(t *testing.T) {
	sender := &fakeSender{}
	svc, logRepo := newEmailForTest(t, sender)

	err := svc.SendWithRetry(context.Background(), testContent())

	require.NoError(t, err)
	assert.Equal(t, 1, sender.calls)
	require.Len(t, logRepo.entries, 1)
	assert.Equal(t, dto.DeliveryStatusSuccess, logRepo.entries[0].Status)
	assert.Equal(t, 1, logRepo.entries[0].AttemptNumber)
}

func TestSendWithRetry_RecoversAfterFailure(t *testing.T) {
	sender := &fakeSender{failures: 1}
	svc, logRepo := newEmailForTest(t, sender)

	err := svc.SendWithRetry(context.Background(), testContent())

	require.NoError(t, err)
	assert.Equal(t, 2, sender.calls)
	require.Len(t, logRepo.entries, 2)
	assert.Equal(t, dto.DeliveryStatusRetrying, logRepo.entries[0].Status)
	assert.Equal(t, "smtp connection refused", logRepo.entries[0].ErrorMessage)
	assert.Equal(t, dto.DeliveryStatusSuccess, logRepo.entries[1].Status)
	assert.Equal(t, 2, logRepo.entries[1].AttemptNumber)
}

func TestSendWithRetry_ExhaustsAttempts(t *testing.T) {
	sender := &fakeSender{failures: 10}
	svc, logRepo := newEmailForTest(t, sender)

	err := svc.SendWithRetry(context.Background(), testContent())

	require.Error(t, err)
	// Two retry delays configured means three attempts total.
	assert.Equal(t, 3, sender.calls)
	require.Len(t, logRepo.entries, 3)
	assert.Equal(t, dto.DeliveryStatusRetrying, logRepo.entries[0].Status)
	assert.Equal(t, dto.DeliveryStatusRetrying, logRepo.entries[1].Status)
	assert.Equal(t, dto.DeliveryStatusFailed, logRepo.entries[2].Status)
}

func TestSendWithRetry_WaitsConfiguredDelays(t *testing.T) {
	sender := &fakeSender{failures: 10}
	svc, _ := newEmailForTest(t, sender)
	svc.cfg.Email.RetryDelays = []time.Duration{5 * time.Minute, 15 * time.Minute, 30 * time.Minute}

	var slept []time.Duration
	svc.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return ctx.Err()
	}

	err := svc.SendWithRetry(context.Background(), testContent())

	require.Error(t, err)
	assert.Equal(t, 4, sender.calls)
	assert.Equal(t, []time.Duration{5 * time.Minute, 15 * time.Minute, 30 * time.Minute}, slept)
}

func TestSendWithRetry_StopsOnCancelledContext(t *testing.T) {
	sender := &fakeSender{failures: 10}
	svc, _ := newEmailForTest(t, sender)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := svc.SendWithRetry(ctx, testContent())

	require.Error(t, err)
	assert.Equal(t, 1, sender.calls)
}

func TestDeliver_CountsSuccessfulSends(t *testing.T) {
	sender := &fakeSender{}
	svc, _ := newEmailForTest(t, sender)
	svc.cfg.Email.Recipients = []string{"a@example.com", "b@example.com"}

	sent, err := svc.Deliver(context.Background(), nil, nil, dto.DeliveryMorning)

	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	require.Len(t, sender.messages, 2)
	assert.Contains(t, sender.messages[0].Subject, "Morning Market Tips - ")
}

func TestRecentDeliveries(t *testing.T) {
	sender := &fakeSender{failures: 1}
	svc, _ := newEmailForTest(t, sender)

	require.NoError(t, svc.SendWithRetry(context.Background(), testContent()))

	entries, err := svc.RecentDeliveries(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, dto.DeliveryStatusSuccess, entries[0].Status)
}

func TestRenderHTML(t *testing.T) {
	svc, _ := newEmailForTest(t, &fakeSender{})

	html, err := svc.RenderHTML(testContent())

	require.NoError(t, err)
	assert.Contains(t, html, "Morning Market Tips")
	assert.Contains(t, html, "bitcoin (CRYPTO)")
	assert.Contains(t, html, `class="recommendation buy"`)
	assert.Contains(t, html, "RSI, SMA")
	assert.Contains(t, html, "$50123.45")
	assert.Contains(t, html, "+2.50%")
	assert.Contains(t, html, "$1,234,567,890")
	assert.Contains(t, html, "Generated at 2026-08-23 06:00:00 UTC")
}

func TestFormatVolume(t *testing.T) {
	tests := []struct {
		in       float64
		expected string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567890, "1,234,567,890"},
		{-45000, "-45,000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, formatVolume(tt.in))
	}
}
