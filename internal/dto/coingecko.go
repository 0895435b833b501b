package dto

// CoinGeckoSimplePrice is the /simple/price payload keyed by coin id.
type CoinGeckoSimplePrice map[string]CoinGeckoQuote

type CoinGeckoQuote struct {
	USD          float64 `json:"usd"`
	USDMarketCap float64 `json:"usd_market_cap"`
	USD24hVol    float64 `json:"usd_24h_vol"`
	USD24hChange float64 `json:"usd_24h_change"`
}

// CoinGeckoMarketChart is the /coins/{id}/market_chart payload.
// Each entry is a [timestamp_ms, value] pair.
type CoinGeckoMarketChart struct {
	Prices       [][]float64 `json:"prices"`
	MarketCaps   [][]float64 `json:"market_caps"`
	TotalVolumes [][]float64 `json:"total_volumes"`
}
