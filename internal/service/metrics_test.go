package service

import (
	"testing"
	"time"

	"market-tips/internal/dto"
	"market-tips/pkg/eventstore"

	"github.com/stretchr/testify/assert"
)

func TestCalculateMetrics(t *testing.T) {
	events := eventstore.New(100, time.Hour)

	events.Add("t1", eventstore.TypeDeliveryComplete, "scheduler", "Delivery complete", map[string]interface{}{
		"status":          dto.DeliveryStatusSuccess,
		"tips_generated":  5,
		"recipients_sent": 2,
	}, 1200)
	events.Add("t2", eventstore.TypeDeliveryComplete, "scheduler", "Delivery complete", map[string]interface{}{
		"status":          dto.DeliveryStatusSuccess,
		"tips_generated":  3,
		"recipients_sent": 2,
	}, 800)
	events.Add("t3", eventstore.TypeDeliveryComplete, "scheduler", "Delivery failed", map[string]interface{}{
		"status": dto.DeliveryStatusFailed,
	}, 0)

	events.Add("t1", eventstore.TypeFetchComplete, "aggregator", "Fetch complete", map[string]interface{}{
		"status": dto.DeliveryStatusSuccess,
	}, 300)
	events.Add("t3", eventstore.TypeFetchComplete, "aggregator", "Fetch failed", map[string]interface{}{
		"status": dto.DeliveryStatusFailed,
	}, 0)

	events.Add("t3", eventstore.TypeError, "aggregator", "All sources unavailable", nil, 0)

	svc := NewMetricsService(events).(*metricsService)
	svc.startTime = time.Date(2026, 8, 23, 6, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return time.Date(2026, 8, 23, 6, 1, 30, 0, time.UTC) }

	m := svc.Calculate()

	assert.Equal(t, 3, m.TotalDeliveries)
	assert.Equal(t, 2, m.SuccessfulDeliveries)
	assert.Equal(t, 1, m.FailedDeliveries)
	assert.InDelta(t, 66.66, m.SuccessRate, 0.01)
	assert.InDelta(t, 1000, m.AverageDeliveryDurationMS, 0.01)
	assert.Equal(t, 8, m.TotalTipsGenerated)
	assert.Equal(t, 4, m.TotalEmailsSent)
	assert.Equal(t, 2, m.TotalFetchAttempts)
	assert.Equal(t, 1, m.SuccessfulFetches)
	assert.Equal(t, 1, m.FailedFetches)
	assert.InDelta(t, 300, m.AverageFetchDurationMS, 0.01)
	assert.Equal(t, 1, m.RecentErrorsCount)
	assert.Equal(t, 90, m.UptimeSeconds)
}

func TestCalculateMetrics_EmptyStore(t *testing.T) {
	svc := NewMetricsService(eventstore.New(100, time.Hour))

	m := svc.Calculate()

	assert.Zero(t, m.TotalDeliveries)
	assert.Zero(t, m.SuccessRate)
	assert.Zero(t, m.AverageDeliveryDurationMS)
	assert.Zero(t, m.RecentErrorsCount)
}

func TestCalculateMetrics_JSONRatesIgnoreUnknownStatus(t *testing.T) {
	events := eventstore.New(100, time.Hour)
	events.Add("t1", eventstore.TypeDeliveryComplete, "scheduler", "Delivery complete", map[string]interface{}{
		"status": "something-else",
	}, 0)

	m := NewMetricsService(events).Calculate()

	assert.Equal(t, 1, m.TotalDeliveries)
	assert.Zero(t, m.SuccessfulDeliveries)
	assert.Zero(t, m.FailedDeliveries)
	assert.Zero(t, m.SuccessRate)
}
