package types

import "time"

// Candle is one OHLCV bar from the market data provider.
type Candle struct {
	Symbol    string    `json:"symbol"`
	OpenTime  time.Time `json:"open_time"`
	CloseTime time.Time `json:"close_time"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// IndicatorSnapshot is the market view one decision cycle works from.
type IndicatorSnapshot struct {
	Symbol string `json:"symbol"`
	// Price is the latest traded price.
	Price float64 `json:"price"`
	// ShortAvg and LongAvg are the fast and slow exponential moving averages.
	ShortAvg float64 `json:"short_avg"`
	LongAvg  float64 `json:"long_avg"`
	// Momentum is the relative strength index in [0, 100].
	Momentum float64 `json:"momentum"`
	// Volatility is the average true range, always >= 0.
	Volatility float64   `json:"volatility"`
	CapturedAt time.Time `json:"captured_at"`
}
