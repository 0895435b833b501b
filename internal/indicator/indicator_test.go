package indicator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSMA(t *testing.T) {
	tests := []struct {
		name     string
		prices   []float64
		period   int
		expected float64
		ok       bool
	}{
		{
			name:     "averages last period prices",
			prices:   []float64{1, 2, 3, 4, 5, 6},
			period:   5,
			expected: 4,
			ok:       true,
		},
		{
			name:   "series shorter than period",
			prices: []float64{10, 20},
			period: 20,
			ok:     false,
		},
		{
			name:   "empty series",
			prices: nil,
			period: 5,
			ok:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SMA(tt.prices, tt.period)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.expected, got, 1e-9)
			}
		})
	}
}

func TestEMA(t *testing.T) {
	t.Run("constant series stays flat", func(t *testing.T) {
		prices := []float64{50, 50, 50, 50, 50}
		ema, ok := EMA(prices, 3)
		assert.True(t, ok)
		assert.InDelta(t, 50, ema, 1e-9)
	})

	t.Run("weights recent prices more than SMA", func(t *testing.T) {
		prices := []float64{10, 10, 10, 10, 100}
		ema, ok := EMA(prices, 3)
		assert.True(t, ok)
		sma, _ := SMA(prices, 5)
		assert.Greater(t, ema, sma)
	})

	t.Run("series shorter than period", func(t *testing.T) {
		_, ok := EMA([]float64{1, 2}, 12)
		assert.False(t, ok)
	})
}

func TestRSI(t *testing.T) {
	t.Run("needs period plus one prices", func(t *testing.T) {
		prices := make([]float64, RSIPeriod)
		_, ok := RSI(prices, RSIPeriod)
		assert.False(t, ok)
	})

	t.Run("monotonic gains pin at 100", func(t *testing.T) {
		prices := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}
		rsi, ok := RSI(prices, RSIPeriod)
		assert.True(t, ok)
		assert.InDelta(t, 100, rsi, 1e-9)
	})

	t.Run("flat series is neutral", func(t *testing.T) {
		prices := make([]float64, RSIPeriod+1)
		for i := range prices {
			prices[i] = 42
		}
		rsi, ok := RSI(prices, RSIPeriod)
		assert.True(t, ok)
		assert.InDelta(t, 50, rsi, 1e-9)
	})

	t.Run("equal gains and losses center near 50", func(t *testing.T) {
		prices := []float64{100, 101, 100, 101, 100, 101, 100, 101, 100, 101, 100, 101, 100, 101, 100}
		rsi, ok := RSI(prices, RSIPeriod)
		assert.True(t, ok)
		assert.InDelta(t, 50, rsi, 1)
	})

	t.Run("downtrend stays below 50", func(t *testing.T) {
		prices := []float64{20, 19, 18, 17, 16, 15, 14, 13, 12, 11, 10, 9, 8, 7, 6}
		rsi, ok := RSI(prices, RSIPeriod)
		assert.True(t, ok)
		assert.Less(t, rsi, 50.0)
	})
}

func TestMACD(t *testing.T) {
	t.Run("requires slow period of prices", func(t *testing.T) {
		prices := make([]float64, MACDSlowPeriod-1)
		for i := range prices {
			prices[i] = float64(i + 1)
		}
		_, ok := MACD(prices)
		assert.False(t, ok)
	})

	t.Run("positive for an uptrend", func(t *testing.T) {
		prices := make([]float64, 40)
		for i := range prices {
			prices[i] = 100 + float64(i)
		}
		macd, ok := MACD(prices)
		assert.True(t, ok)
		assert.Greater(t, macd, 0.0)
	})

	t.Run("negative for a downtrend", func(t *testing.T) {
		prices := make([]float64, 40)
		for i := range prices {
			prices[i] = 200 - float64(i)
		}
		macd, ok := MACD(prices)
		assert.True(t, ok)
		assert.Less(t, macd, 0.0)
	})
}
