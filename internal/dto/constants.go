package dto

type AssetType string

const (
	AssetCrypto AssetType = "crypto"
	AssetStock  AssetType = "stock"
)

func (a AssetType) Valid() bool {
	return a == AssetCrypto || a == AssetStock
}

type Recommendation string

const (
	RecommendBuy  Recommendation = "BUY"
	RecommendSell Recommendation = "SELL"
	RecommendHold Recommendation = "HOLD"
)

type DeliveryType string

const (
	DeliveryMorning DeliveryType = "morning"
	DeliveryEvening DeliveryType = "evening"
	DeliveryManual  DeliveryType = "manual"
)

func (d DeliveryType) Valid() bool {
	return d == DeliveryMorning || d == DeliveryEvening || d == DeliveryManual
}

const (
	DeliveryStatusSuccess  = "success"
	DeliveryStatusRetrying = "retrying"
	DeliveryStatusFailed   = "failed"
)

const (
	PeriodDay   = "24h"
	PeriodWeek  = "7d"
	PeriodMonth = "30d"
)

// PeriodDays maps a historical period tag to a day count.
func PeriodDays(period string) (int, bool) {
	switch period {
	case PeriodDay:
		return 1, true
	case PeriodWeek:
		return 7, true
	case PeriodMonth:
		return 30, true
	default:
		return 0, false
	}
}

const (
	ProviderGoogle = "google"
	ProviderGitHub = "github"
)
