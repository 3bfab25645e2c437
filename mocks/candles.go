package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/argo-autotrader/internal/types"
)

// CandleGenerator produces synthetic OHLCV bars for tests.
type CandleGenerator struct {
	rng *rand.Rand
}

// NewCandleGenerator creates a generator. A fixed seed gives reproducible bars.
func NewCandleGenerator(seed int64) *CandleGenerator {
	return &CandleGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// CandleConfig shapes the generated series.
type CandleConfig struct {
	Symbol    string
	StartTime time.Time
	Interval  time.Duration
	Count     int
	// InitialPrice is the open of the first bar.
	InitialPrice float64
	// Step is added to the close of every bar, before noise.
	Step float64
	// Noise is the standard deviation of the random close offset, in price units.
	Noise float64
	// Range is the typical distance from close to high and low.
	Range float64
}

// DefaultCandleConfig returns a flat one-minute XAUUSD series around 1950.
func DefaultCandleConfig() CandleConfig {
	return CandleConfig{
		Symbol:       "XAUUSD",
		StartTime:    time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		Interval:     time.Minute,
		Count:        100,
		InitialPrice: 1950,
		Step:         0,
		Noise:        0.5,
		Range:        2,
	}
}

// Generate builds Count consecutive bars. Each bar opens at the previous close.
func (g *CandleGenerator) Generate(config CandleConfig) []types.Candle {
	candles := make([]types.Candle, config.Count)
	price := config.InitialPrice
	openTime := config.StartTime

	for i := 0; i < config.Count; i++ {
		open := price

		// Box-Muller
		u1 := 1 - g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		closePrice := open + config.Step + config.Noise*z
		if closePrice <= 0 {
			closePrice = open * 0.99
		}

		high := math.Max(open, closePrice) + config.Range*g.rng.Float64()
		low := math.Min(open, closePrice) - config.Range*g.rng.Float64()

		if low <= 0 {
			low = math.Min(open, closePrice) * 0.99
		}

		candles[i] = types.Candle{
			Symbol:    config.Symbol,
			OpenTime:  openTime,
			CloseTime: openTime.Add(config.Interval - time.Millisecond),
			Open:      round(open, 2),
			High:      round(high, 2),
			Low:       round(low, 2),
			Close:     round(closePrice, 2),
			Volume:    round(1000+500*g.rng.Float64(), 2),
		}

		price = closePrice
		openTime = openTime.Add(config.Interval)
	}

	return candles
}

// Trending returns count noiseless bars rising (step > 0) or falling (step < 0).
func Trending(count int, start, step float64) []types.Candle {
	config := DefaultCandleConfig()
	config.Count = count
	config.InitialPrice = start
	config.Step = step
	config.Noise = 0
	config.Range = 0

	return NewCandleGenerator(1).Generate(config)
}

func round(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))

	return math.Round(val*pow) / pow
}
