package model

import (
	"time"

	"gorm.io/datatypes"
)

// MarketDataSnapshot is one persisted fetch result. Snapshots are immutable,
// the latest row per symbol supersedes the previous cycle.
type MarketDataSnapshot struct {
	ID             string         `gorm:"primaryKey" json:"id"`
	Symbol         string         `gorm:"not null;index" json:"symbol"`
	AssetType      string         `gorm:"not null" json:"asset_type"`
	CurrentPrice   float64        `gorm:"not null" json:"current_price"`
	PriceChange24h float64        `gorm:"not null" json:"price_change_24h"`
	Volume24h      float64        `gorm:"not null" json:"volume_24h"`
	Historical     datatypes.JSON `gorm:"type:jsonb" json:"historical"`
	SourceName     string         `gorm:"not null" json:"source_name"`
	SourceURL      string         `gorm:"not null" json:"source_url"`
	FetchedAt      time.Time      `gorm:"not null;index" json:"fetched_at"`
}

func (MarketDataSnapshot) TableName() string {
	return "market_data"
}
