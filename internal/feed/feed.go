// Package feed is the indicator feed adapter: it pulls recent candles from a
// market data provider and turns them into one IndicatorSnapshot per cycle.
package feed

import (
	"context"
	"time"

	"github.com/rxtech-lab/argo-autotrader/internal/indicator"
	"github.com/rxtech-lab/argo-autotrader/internal/logger"
	"github.com/rxtech-lab/argo-autotrader/internal/types"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
	"go.uber.org/zap"
)

// Feed supplies the current indicators for a symbol. Every error it returns is
// transient: the caller skips the cycle and tries again on the next tick.
type Feed interface {
	FetchIndicators(ctx context.Context, symbol string) (types.IndicatorSnapshot, error)
}

// CandleSource returns the most recent candles for a symbol, oldest first.
type CandleSource interface {
	Candles(ctx context.Context, symbol string, interval Interval, limit int) ([]types.Candle, error)
	Name() string
}

// Provider names accepted by New.
const (
	ProviderBinance = "binance"
	ProviderPolygon = "polygon"
)

// Config selects the market data provider and the candle window.
type Config struct {
	Provider string   `json:"provider" yaml:"provider" jsonschema:"title=Provider,enum=binance,enum=polygon,default=binance" validate:"required,oneof=binance polygon"`
	Interval Interval `json:"interval" yaml:"interval" jsonschema:"title=Candle Interval,default=1m" validate:"required"`
	// Lookback is the number of candles requested per fetch.
	Lookback int `json:"lookback" yaml:"lookback" jsonschema:"title=Lookback,default=200" validate:"gte=0"`
	// MaxAge rejects snapshots whose newest closed candle is older than this.
	MaxAge        time.Duration `json:"max_age" yaml:"max_age" jsonschema:"title=Max Indicator Age,default=2m"`
	PolygonAPIKey string        `json:"polygon_api_key" yaml:"polygon_api_key" jsonschema:"title=Polygon API Key"`
	BinanceURL    string        `json:"binance_url" yaml:"binance_url" jsonschema:"title=Binance Base URL"`
}

// New builds the configured feed.
func New(config Config, indicators indicator.Config, log *logger.Logger) (Feed, error) {
	var source CandleSource

	switch config.Provider {
	case ProviderBinance, "":
		source = NewBinanceCandles(config.BinanceURL)
	case ProviderPolygon:
		polygonSource, err := NewPolygonCandles(config.PolygonAPIKey)
		if err != nil {
			return nil, err
		}

		source = polygonSource
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported feed provider %q", config.Provider)
	}

	return NewIndicatorFeed(source, indicators, config, log)
}

// IndicatorFeed computes snapshots from a CandleSource.
type IndicatorFeed struct {
	source     CandleSource
	calculator *indicator.Calculator
	interval   Interval
	lookback   int
	maxAge     time.Duration
	now        func() time.Time
	logger     *logger.Logger
}

// NewIndicatorFeed wraps source with the indicator calculator and a staleness guard.
func NewIndicatorFeed(source CandleSource, indicators indicator.Config, config Config, log *logger.Logger) (*IndicatorFeed, error) {
	calculator, err := indicator.NewCalculator(indicators)
	if err != nil {
		return nil, err
	}

	if config.Interval == "" {
		config.Interval = IntervalOneMinute
	}

	if err := config.Interval.Validate(); err != nil {
		return nil, err
	}

	lookback := config.Lookback
	if lookback < calculator.RequiredCandles()+1 {
		lookback = max(200, calculator.RequiredCandles()+1)
	}

	return &IndicatorFeed{
		source:     source,
		calculator: calculator,
		interval:   config.Interval,
		lookback:   lookback,
		maxAge:     config.MaxAge,
		now:        time.Now,
		logger:     log,
	}, nil
}

// FetchIndicators fetches candles, drops the one still forming and computes the snapshot.
func (f *IndicatorFeed) FetchIndicators(ctx context.Context, symbol string) (types.IndicatorSnapshot, error) {
	candles, err := f.source.Candles(ctx, symbol, f.interval, f.lookback)
	if err != nil {
		if errors.IsTransientFeedError(err) {
			return types.IndicatorSnapshot{}, err
		}

		return types.IndicatorSnapshot{}, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err,
			"failed to fetch %s candles from %s", symbol, f.source.Name())
	}

	now := f.now()
	closed := closedCandles(candles, now)

	snapshot, err := f.calculator.Snapshot(symbol, closed)
	if err != nil {
		return types.IndicatorSnapshot{}, err
	}

	if f.maxAge > 0 && now.Sub(snapshot.CapturedAt) > f.maxAge {
		return types.IndicatorSnapshot{}, errors.Newf(errors.ErrCodeFeedStale,
			"%s indicators are %s old, limit is %s", symbol, now.Sub(snapshot.CapturedAt).Truncate(time.Second), f.maxAge)
	}

	f.logger.Debug("Fetched indicators",
		zap.String("symbol", symbol),
		zap.String("source", f.source.Name()),
		zap.Float64("price", snapshot.Price),
		zap.Float64("short_avg", snapshot.ShortAvg),
		zap.Float64("long_avg", snapshot.LongAvg),
		zap.Float64("momentum", snapshot.Momentum),
		zap.Float64("volatility", snapshot.Volatility))

	return snapshot, nil
}

// closedCandles trims candles whose close time is still in the future.
func closedCandles(candles []types.Candle, now time.Time) []types.Candle {
	end := len(candles)
	for end > 0 && candles[end-1].CloseTime.After(now) {
		end--
	}

	return candles[:end]
}
