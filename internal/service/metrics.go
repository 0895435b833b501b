package service

import (
	"time"

	"market-tips/internal/dto"
	"market-tips/pkg/eventstore"
)

// Metrics is the aggregate view served by the debug API, derived entirely
// from the in-memory event store.
type Metrics struct {
	TotalDeliveries           int     `json:"total_deliveries"`
	SuccessfulDeliveries      int     `json:"successful_deliveries"`
	FailedDeliveries          int     `json:"failed_deliveries"`
	SuccessRate               float64 `json:"success_rate"`
	AverageDeliveryDurationMS float64 `json:"average_delivery_duration_ms"`
	TotalTipsGenerated        int     `json:"total_tips_generated"`
	TotalEmailsSent           int     `json:"total_emails_sent"`
	TotalFetchAttempts        int     `json:"total_fetch_attempts"`
	SuccessfulFetches         int     `json:"successful_fetches"`
	FailedFetches             int     `json:"failed_fetches"`
	AverageFetchDurationMS    float64 `json:"average_fetch_duration_ms"`
	RecentErrorsCount         int     `json:"recent_errors_count"`
	UptimeSeconds             int     `json:"uptime_seconds"`
}

type MetricsService interface {
	Calculate() Metrics
}

type metricsService struct {
	events    *eventstore.Store
	startTime time.Time
	now       func() time.Time
}

func NewMetricsService(events *eventstore.Store) MetricsService {
	return &metricsService{
		events:    events,
		startTime: time.Now().UTC(),
		now:       time.Now,
	}
}

func (s *metricsService) Calculate() Metrics {
	events := s.events.All()
	var m Metrics

	var deliveryDurations, fetchDurations []float64
	for _, e := range events {
		switch e.Type {
		case eventstore.TypeDeliveryComplete:
			m.TotalDeliveries++
			switch contextString(e.Context, "status") {
			case dto.DeliveryStatusSuccess:
				m.SuccessfulDeliveries++
			case dto.DeliveryStatusFailed:
				m.FailedDeliveries++
			}
			if e.DurationMS > 0 {
				deliveryDurations = append(deliveryDurations, e.DurationMS)
			}
			m.TotalTipsGenerated += contextInt(e.Context, "tips_generated")
			m.TotalEmailsSent += contextInt(e.Context, "recipients_sent")

		case eventstore.TypeFetchComplete:
			m.TotalFetchAttempts++
			switch contextString(e.Context, "status") {
			case dto.DeliveryStatusSuccess:
				m.SuccessfulFetches++
			case dto.DeliveryStatusFailed:
				m.FailedFetches++
			}
			if e.DurationMS > 0 {
				fetchDurations = append(fetchDurations, e.DurationMS)
			}

		case eventstore.TypeError:
			m.RecentErrorsCount++
		}
	}

	if m.TotalDeliveries > 0 {
		m.SuccessRate = float64(m.SuccessfulDeliveries) / float64(m.TotalDeliveries) * 100
	}
	m.AverageDeliveryDurationMS = average(deliveryDurations)
	m.AverageFetchDurationMS = average(fetchDurations)
	m.UptimeSeconds = int(s.now().UTC().Sub(s.startTime).Seconds())
	return m
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func contextString(ctx map[string]interface{}, key string) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx[key].(string)
	return v
}

func contextInt(ctx map[string]interface{}, key string) int {
	if ctx == nil {
		return 0
	}
	switch v := ctx[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
