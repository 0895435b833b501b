package model

import (
	"time"

	"gorm.io/datatypes"
)

type TradingTip struct {
	ID             string         `gorm:"primaryKey" json:"id"`
	Symbol         string         `gorm:"not null;index" json:"symbol"`
	AssetType      string         `gorm:"not null" json:"asset_type"`
	Recommendation string         `gorm:"not null" json:"recommendation"`
	Reasoning      string         `gorm:"not null;type:text" json:"reasoning"`
	Confidence     int            `gorm:"not null" json:"confidence"`
	Indicators     datatypes.JSON `gorm:"type:jsonb" json:"indicators"`
	Sources        datatypes.JSON `gorm:"type:jsonb" json:"sources"`
	DeliveryType   string         `gorm:"not null" json:"delivery_type"`
	GeneratedAt    time.Time      `gorm:"not null;index" json:"generated_at"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (TradingTip) TableName() string {
	return "trading_tips"
}

type GetTipsParam struct {
	AssetType string
	Since     time.Time
	Skip      int
	Limit     int
}
