package dto

import "time"

// DataSource attributes a MarketData record to the upstream API it came from.
type DataSource struct {
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	FetchedAt time.Time `json:"fetched_at"`
}

// HistoricalData is a price series for one period tag.
type HistoricalData struct {
	Period     string    `json:"period"` // 24h, 7d or 30d
	Prices     []float64 `json:"prices"`
	Timestamps []int64   `json:"timestamps"` // unix seconds
}

// MarketData is one symbol's fetch result flowing through the pipeline.
// Immutable once produced; superseded on the next fetch cycle.
type MarketData struct {
	Symbol         string         `json:"symbol"`
	AssetType      AssetType      `json:"asset_type"`
	CurrentPrice   float64        `json:"current_price"`
	PriceChange24h float64        `json:"price_change_24h"`
	Volume24h      float64        `json:"volume_24h"`
	Historical     HistoricalData `json:"historical"`
	Source         DataSource     `json:"source"`
}

// TipSource is a citation attached to a generated tip.
type TipSource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// TradingTip is a generated recommendation before persistence.
type TradingTip struct {
	Symbol         string         `json:"symbol"`
	AssetType      AssetType      `json:"asset_type"`
	Recommendation Recommendation `json:"recommendation"`
	Reasoning      string         `json:"reasoning"`
	Confidence     int            `json:"confidence"` // 0..100
	Indicators     []string       `json:"indicators"`
	Sources        []TipSource    `json:"sources"`
	GeneratedAt    time.Time      `json:"generated_at"`
	DeliveryType   DeliveryType   `json:"delivery_type"`
}

// EmailContent is built and consumed within one delivery cycle.
type EmailContent struct {
	Recipient    string       `json:"recipient"`
	Subject      string       `json:"subject"`
	DeliveryType DeliveryType `json:"delivery_type"`
	Tips         []TradingTip `json:"tips"`
	MarketData   []MarketData `json:"market_data"`
	GeneratedAt  time.Time    `json:"generated_at"`
}
