package dto

// AlphaVantageGlobalQuote is the GLOBAL_QUOTE payload. Alpha Vantage keys
// fields with numeric prefixes and encodes all numbers as strings.
type AlphaVantageGlobalQuote struct {
	GlobalQuote struct {
		Symbol        string `json:"01. symbol"`
		Price         string `json:"05. price"`
		Volume        string `json:"06. volume"`
		Change        string `json:"09. change"`
		ChangePercent string `json:"10. change percent"`
	} `json:"Global Quote"`
}

// AlphaVantageDailySeries is the TIME_SERIES_DAILY payload.
type AlphaVantageDailySeries struct {
	TimeSeries map[string]AlphaVantageDailyBar `json:"Time Series (Daily)"`
}

type AlphaVantageDailyBar struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

// StockQuote is a parsed GLOBAL_QUOTE with numeric fields.
type StockQuote struct {
	Symbol        string
	Price         float64
	Volume        float64
	ChangePercent float64
}

// StockSeries is a parsed daily close series ordered oldest to newest.
type StockSeries struct {
	Symbol     string
	Prices     []float64
	Timestamps []int64
}
