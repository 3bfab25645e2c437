// Package indicator turns a window of candles into the indicator snapshot the
// decision cycle consumes.
package indicator

import (
	"github.com/rxtech-lab/argo-autotrader/internal/types"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
)

// Config holds the lookback periods for every indicator in the snapshot.
type Config struct {
	ShortPeriod int `json:"short_period" yaml:"short_period" jsonschema:"title=Short EMA Period,default=9" validate:"required,gt=0"`
	LongPeriod  int `json:"long_period" yaml:"long_period" jsonschema:"title=Long EMA Period,default=21" validate:"required,gtfield=ShortPeriod"`
	RSIPeriod   int `json:"rsi_period" yaml:"rsi_period" jsonschema:"title=RSI Period,default=14" validate:"required,gt=1"`
	ATRPeriod   int `json:"atr_period" yaml:"atr_period" jsonschema:"title=ATR Period,default=14" validate:"required,gt=0"`
}

// DefaultConfig is the 9/21 EMA, 14 RSI, 14 ATR setup.
func DefaultConfig() Config {
	return Config{
		ShortPeriod: 9,
		LongPeriod:  21,
		RSIPeriod:   14,
		ATRPeriod:   14,
	}
}

// Calculator computes snapshots from candle windows.
type Calculator struct {
	config Config
}

// NewCalculator creates a calculator for the given periods.
func NewCalculator(config Config) (*Calculator, error) {
	if config.ShortPeriod <= 0 || config.LongPeriod <= 0 || config.RSIPeriod <= 1 || config.ATRPeriod <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "indicator periods must be positive, got %+v", config)
	}

	return &Calculator{config: config}, nil
}

// RequiredCandles is the minimum window size Snapshot accepts.
func (c *Calculator) RequiredCandles() int {
	required := c.config.LongPeriod
	if c.config.RSIPeriod+1 > required {
		required = c.config.RSIPeriod + 1
	}

	if c.config.ATRPeriod+1 > required {
		required = c.config.ATRPeriod + 1
	}

	return required
}

// Snapshot computes the indicator snapshot from candles sorted oldest first.
// The snapshot is stamped with the close time of the newest candle.
func (c *Calculator) Snapshot(symbol string, candles []types.Candle) (types.IndicatorSnapshot, error) {
	required := c.RequiredCandles()
	if len(candles) < required {
		return types.IndicatorSnapshot{}, errors.Wrap(errors.ErrCodeInsufficientData, "not enough candles for indicators",
			errors.NewInsufficientDataErrorf(required, len(candles), symbol,
				"insufficient candles for %s: required %d, got %d", symbol, required, len(candles)))
	}

	closes := make([]float64, len(candles))
	for i, candle := range candles {
		closes[i] = candle.Close
	}

	last := candles[len(candles)-1]

	return types.IndicatorSnapshot{
		Symbol:     symbol,
		Price:      last.Close,
		ShortAvg:   EMA(closes, c.config.ShortPeriod),
		LongAvg:    EMA(closes, c.config.LongPeriod),
		Momentum:   RSI(closes, c.config.RSIPeriod),
		Volatility: ATR(candles, c.config.ATRPeriod),
		CapturedAt: last.CloseTime,
	}, nil
}
