package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DeliveriesTotal counts scheduled delivery executions by type and outcome.
	DeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_tips_deliveries_total",
			Help: "Delivery pipeline executions",
		},
		[]string{"delivery_type", "status"},
	)

	// EmailsSentTotal counts email send outcomes.
	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_tips_emails_sent_total",
			Help: "Email send attempts by final outcome",
		},
		[]string{"status"},
	)

	// FetchesTotal counts upstream market data fetches by source and outcome.
	FetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_tips_fetches_total",
			Help: "Upstream market data fetches",
		},
		[]string{"source", "status"},
	)

	// TipsGeneratedTotal counts generated trading tips by asset type.
	TipsGeneratedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_tips_tips_generated_total",
			Help: "Trading tips generated",
		},
		[]string{"asset_type"},
	)

	// DeliveryDuration observes end-to-end delivery pipeline duration.
	DeliveryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "market_tips_delivery_duration_seconds",
			Help:    "Delivery pipeline duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		},
		[]string{"delivery_type"},
	)

	// FetchDuration observes upstream fetch duration per source.
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "market_tips_fetch_duration_seconds",
			Help:    "Upstream fetch duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
		[]string{"source"},
	)
)
