package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-autotrader/internal/types"
)

// TrueRange of a candle given the previous close.
func TrueRange(candle types.Candle, prevClose float64) float64 {
	return math.Max(
		candle.High-candle.Low,
		math.Max(math.Abs(candle.High-prevClose), math.Abs(candle.Low-prevClose)),
	)
}

// ATR computes the average true range with Wilder's smoothing.
// It needs at least period+1 candles; the first candle only provides a previous close.
func ATR(candles []types.Candle, period int) float64 {
	if period <= 0 || len(candles) < period+1 {
		return 0
	}

	ranges := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		ranges = append(ranges, TrueRange(candles[i], candles[i-1].Close))
	}

	atr := sma(ranges[:period])
	for i := period; i < len(ranges); i++ {
		atr = (atr*float64(period-1) + ranges[i]) / float64(period)
	}

	return atr
}
