package feed

import (
	"context"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/rxtech-lab/argo-autotrader/internal/types"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
)

// KlinesService is the subset of the Binance klines builder the feed uses.
type KlinesService interface {
	Symbol(symbol string) KlinesService
	Interval(interval string) KlinesService
	Limit(limit int) KlinesService
	Do(ctx context.Context) ([]*binance.Kline, error)
}

// KlinesClient abstracts the Binance client for testing.
type KlinesClient interface {
	NewKlinesService() KlinesService
}

type realKlinesClient struct {
	client *binance.Client
}

func (r *realKlinesClient) NewKlinesService() KlinesService {
	return &realKlinesService{service: r.client.NewKlinesService()}
}

type realKlinesService struct {
	service *binance.KlinesService
}

func (s *realKlinesService) Symbol(symbol string) KlinesService {
	s.service = s.service.Symbol(symbol)

	return s
}

func (s *realKlinesService) Interval(interval string) KlinesService {
	s.service = s.service.Interval(interval)

	return s
}

func (s *realKlinesService) Limit(limit int) KlinesService {
	s.service = s.service.Limit(limit)

	return s
}

func (s *realKlinesService) Do(ctx context.Context) ([]*binance.Kline, error) {
	return s.service.Do(ctx)
}

// binanceMaxKlines is the largest page the klines endpoint returns.
const binanceMaxKlines = 1000

// BinanceCandles reads public klines; no credentials are needed.
type BinanceCandles struct {
	client KlinesClient
}

// NewBinanceCandles creates a klines source. baseURL overrides the public endpoint when set.
func NewBinanceCandles(baseURL string) *BinanceCandles {
	client := binance.NewClient("", "")
	if baseURL != "" {
		client.BaseURL = baseURL
	}

	return &BinanceCandles{client: &realKlinesClient{client: client}}
}

func newBinanceCandlesWithClient(client KlinesClient) *BinanceCandles {
	return &BinanceCandles{client: client}
}

func (b *BinanceCandles) Name() string {
	return ProviderBinance
}

func (b *BinanceCandles) Candles(ctx context.Context, symbol string, interval Interval, limit int) ([]types.Candle, error) {
	klines, err := b.client.NewKlinesService().
		Symbol(symbol).
		Interval(string(interval)).
		Limit(min(limit, binanceMaxKlines)).
		Do(ctx)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch %s klines from binance", symbol)
	}

	candles := make([]types.Candle, 0, len(klines))

	for _, k := range klines {
		candle, err := parseKline(symbol, k)
		if err != nil {
			return nil, err
		}

		candles = append(candles, candle)
	}

	return candles, nil
}

func parseKline(symbol string, k *binance.Kline) (types.Candle, error) {
	fields := [5]string{k.Open, k.High, k.Low, k.Close, k.Volume}

	var values [5]float64

	for i, field := range fields {
		value, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return types.Candle{}, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err,
				"invalid kline value %q for %s", field, symbol)
		}

		values[i] = value
	}

	return types.Candle{
		Symbol:    symbol,
		OpenTime:  time.UnixMilli(k.OpenTime).UTC(),
		CloseTime: time.UnixMilli(k.CloseTime).UTC(),
		Open:      values[0],
		High:      values[1],
		Low:       values[2],
		Close:     values[3],
		Volume:    values[4],
	}, nil
}
