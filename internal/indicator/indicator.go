// Package indicator implements the technical indicators used by the
// analysis engine. All functions operate on a price series ordered
// oldest to newest and are pure. The ok result reports whether the
// series was long enough for the indicator to be meaningful.
package indicator

const (
	SMAShortPeriod = 5
	SMALongPeriod  = 20
	RSIPeriod      = 14
	MACDFastPeriod = 12
	MACDSlowPeriod = 26
)

// SMA returns the simple moving average of the last period prices.
func SMA(prices []float64, period int) (float64, bool) {
	if period <= 0 || len(prices) < period {
		return 0, false
	}
	sum := 0.0
	for _, p := range prices[len(prices)-period:] {
		sum += p
	}
	return sum / float64(period), true
}

// EMA returns the exponential moving average with smoothing 2/(period+1),
// seeded from the SMA of the first period prices.
func EMA(prices []float64, period int) (float64, bool) {
	if period <= 0 || len(prices) < period {
		return 0, false
	}
	k := 2.0 / float64(period+1)
	ema := 0.0
	for _, p := range prices[:period] {
		ema += p
	}
	ema /= float64(period)
	for _, p := range prices[period:] {
		ema = p*k + ema*(1-k)
	}
	return ema, true
}

// RSI returns the relative strength index over the last period deltas.
// A loss-free window yields 100 when any gain exists, 50 when flat.
func RSI(prices []float64, period int) (float64, bool) {
	if period <= 0 || len(prices) < period+1 {
		return 0, false
	}
	var gains, losses float64
	for i := len(prices) - period; i < len(prices); i++ {
		delta := prices[i] - prices[i-1]
		if delta > 0 {
			gains += delta
		} else {
			losses -= delta
		}
	}
	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)
	if avgLoss == 0 {
		if avgGain > 0 {
			return 100, true
		}
		return 50, true
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), true
}

// MACD returns the difference between the fast and slow EMAs. It needs
// at least MACDSlowPeriod prices.
func MACD(prices []float64) (float64, bool) {
	if len(prices) < MACDSlowPeriod {
		return 0, false
	}
	fast, _ := EMA(prices, MACDFastPeriod)
	slow, _ := EMA(prices, MACDSlowPeriod)
	return fast - slow, true
}
