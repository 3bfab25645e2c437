package feed

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-autotrader/internal/indicator"
	"github.com/rxtech-lab/argo-autotrader/internal/logger"
	"github.com/rxtech-lab/argo-autotrader/internal/types"
	"github.com/rxtech-lab/argo-autotrader/mocks"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
	"github.com/stretchr/testify/suite"
)

// fakeSource implements CandleSource for testing.
type fakeSource struct {
	candles []types.Candle
	err     error
	limit   int
}

func (f *fakeSource) Candles(_ context.Context, _ string, _ Interval, limit int) ([]types.Candle, error) {
	f.limit = limit

	return f.candles, f.err
}

func (f *fakeSource) Name() string {
	return "fake"
}

// mockKlinesClient implements KlinesClient for testing.
type mockKlinesClient struct {
	service *mockKlinesService
}

func (m *mockKlinesClient) NewKlinesService() KlinesService {
	return m.service
}

type mockKlinesService struct {
	klines   []*binance.Kline
	err      error
	symbol   string
	interval string
	limit    int
}

func (m *mockKlinesService) Symbol(symbol string) KlinesService {
	m.symbol = symbol
	return m
}

func (m *mockKlinesService) Interval(interval string) KlinesService {
	m.interval = interval
	return m
}

func (m *mockKlinesService) Limit(limit int) KlinesService {
	m.limit = limit
	return m
}

func (m *mockKlinesService) Do(_ context.Context) ([]*binance.Kline, error) {
	return m.klines, m.err
}

// mockPolygonAPIClient implements PolygonAPIClient for testing.
type mockPolygonAPIClient struct {
	iterator PolygonAggsIterator
	params   *models.ListAggsParams
}

func (m *mockPolygonAPIClient) ListAggs(_ context.Context, params *models.ListAggsParams, _ ...models.RequestOption) PolygonAggsIterator {
	m.params = params

	return m.iterator
}

// mockPolygonIterator implements PolygonAggsIterator for testing.
type mockPolygonIterator struct {
	aggs  []models.Agg
	index int
	err   error
}

func (m *mockPolygonIterator) Next() bool {
	if m.index < len(m.aggs) {
		m.index++
		return true
	}
	return false
}

func (m *mockPolygonIterator) Item() models.Agg {
	return m.aggs[m.index-1]
}

func (m *mockPolygonIterator) Err() error {
	return m.err
}

type FeedTestSuite struct {
	suite.Suite
	ctx     context.Context
	candles []types.Candle
}

func TestFeedSuite(t *testing.T) {
	suite.Run(t, new(FeedTestSuite))
}

func (s *FeedTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.candles = mocks.NewCandleGenerator(42).Generate(mocks.DefaultCandleConfig())
}

func (s *FeedTestSuite) newFeed(source CandleSource, maxAge time.Duration, now time.Time) *IndicatorFeed {
	f, err := NewIndicatorFeed(source, indicator.DefaultConfig(), Config{
		Provider:      "",
		Interval:      IntervalOneMinute,
		Lookback:      100,
		MaxAge:        maxAge,
		PolygonAPIKey: "",
		BinanceURL:    "",
	}, logger.NewNop())
	s.Require().NoError(err)

	f.now = func() time.Time { return now }

	return f
}

func (s *FeedTestSuite) TestFetchIndicators() {
	last := s.candles[len(s.candles)-1]
	source := &fakeSource{candles: s.candles, err: nil, limit: 0}
	f := s.newFeed(source, 2*time.Minute, last.CloseTime.Add(30*time.Second))

	snapshot, err := f.FetchIndicators(s.ctx, "XAUUSD")
	s.Require().NoError(err)
	s.Equal(last.Close, snapshot.Price)
	s.Equal(last.CloseTime, snapshot.CapturedAt)
	s.Greater(snapshot.Volatility, 0.0)
	s.Equal(100, source.limit)
}

func (s *FeedTestSuite) TestFetchIndicatorsDropsFormingCandle() {
	last := s.candles[len(s.candles)-1]
	previous := s.candles[len(s.candles)-2]
	f := s.newFeed(&fakeSource{candles: s.candles, err: nil, limit: 0}, 0, last.OpenTime.Add(10*time.Second))

	snapshot, err := f.FetchIndicators(s.ctx, "XAUUSD")
	s.Require().NoError(err)
	s.Equal(previous.Close, snapshot.Price)
}

func (s *FeedTestSuite) TestFetchIndicatorsStale() {
	last := s.candles[len(s.candles)-1]
	f := s.newFeed(&fakeSource{candles: s.candles, err: nil, limit: 0}, 2*time.Minute, last.CloseTime.Add(10*time.Minute))

	_, err := f.FetchIndicators(s.ctx, "XAUUSD")
	s.True(errors.HasCode(err, errors.ErrCodeFeedStale))
	s.True(errors.IsTransientFeedError(err))
}

func (s *FeedTestSuite) TestFetchIndicatorsInsufficientData() {
	short := s.candles[:10]
	f := s.newFeed(&fakeSource{candles: short, err: nil, limit: 0}, 0, short[9].CloseTime)

	_, err := f.FetchIndicators(s.ctx, "XAUUSD")
	s.True(errors.HasCode(err, errors.ErrCodeInsufficientData))
	s.True(errors.IsTransientFeedError(err))
}

func (s *FeedTestSuite) TestFetchIndicatorsSourceError() {
	f := s.newFeed(&fakeSource{candles: nil, err: fmt.Errorf("connection reset"), limit: 0}, 0, time.Now())

	_, err := f.FetchIndicators(s.ctx, "XAUUSD")
	s.True(errors.HasCode(err, errors.ErrCodeMarketDataFetchFailed))
	s.True(errors.IsTransientFeedError(err))
}

func (s *FeedTestSuite) TestNewRejectsUnknownProvider() {
	_, err := New(Config{Provider: "yahoo"}, indicator.DefaultConfig(), logger.NewNop())
	s.True(errors.HasCode(err, errors.ErrCodeInvalidProvider))

	_, err = New(Config{Provider: ProviderPolygon}, indicator.DefaultConfig(), logger.NewNop())
	s.True(errors.HasCode(err, errors.ErrCodeMissingParameter))

	_, err = NewIndicatorFeed(&fakeSource{}, indicator.DefaultConfig(), Config{Interval: "7m"}, logger.NewNop())
	s.True(errors.HasCode(err, errors.ErrCodeInvalidTimespan))
}

func (s *FeedTestSuite) TestBinanceCandles() {
	service := &mockKlinesService{
		klines: []*binance.Kline{
			{OpenTime: 1772442000000, CloseTime: 1772442059999, Open: "1950.10", High: "1951.00", Low: "1949.50", Close: "1950.80", Volume: "12.5"},
		},
	}
	source := newBinanceCandlesWithClient(&mockKlinesClient{service: service})

	candles, err := source.Candles(s.ctx, "PAXGUSDT", IntervalFiveMinutes, 5000)
	s.Require().NoError(err)
	s.Len(candles, 1)
	s.Equal("PAXGUSDT", service.symbol)
	s.Equal("5m", service.interval)
	s.Equal(binanceMaxKlines, service.limit)
	s.InDelta(1950.80, candles[0].Close, 1e-9)
	s.Equal(time.UnixMilli(1772442059999).UTC(), candles[0].CloseTime)
}

func (s *FeedTestSuite) TestBinanceCandlesParseError() {
	service := &mockKlinesService{
		klines: []*binance.Kline{{Open: "abc", High: "1", Low: "1", Close: "1", Volume: "1"}},
	}
	source := newBinanceCandlesWithClient(&mockKlinesClient{service: service})

	_, err := source.Candles(s.ctx, "PAXGUSDT", IntervalOneMinute, 10)
	s.True(errors.HasCode(err, errors.ErrCodeMarketDataParseFailed))
}

func (s *FeedTestSuite) TestPolygonCandles() {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	aggs := make([]models.Agg, 0, 5)

	for i := 0; i < 5; i++ {
		aggs = append(aggs, models.Agg{
			Open:      1950,
			High:      1952,
			Low:       1948,
			Close:     1950 + float64(i),
			Volume:    100,
			Timestamp: models.Millis(start.Add(time.Duration(i) * time.Hour)),
		})
	}

	api := &mockPolygonAPIClient{iterator: &mockPolygonIterator{aggs: aggs}}
	source := newPolygonCandlesWithClient(api)
	source.now = func() time.Time { return start.Add(5 * time.Hour) }

	candles, err := source.Candles(s.ctx, "C:XAUUSD", IntervalOneHour, 3)
	s.Require().NoError(err)
	s.Len(candles, 3)
	s.InDelta(1954, candles[2].Close, 1e-9)
	s.Equal(start.Add(5*time.Hour), candles[2].CloseTime)
	s.Equal(models.Hour, api.params.Timespan)
	s.Equal(1, api.params.Multiplier)
}

func (s *FeedTestSuite) TestPolygonCandlesError() {
	api := &mockPolygonAPIClient{iterator: &mockPolygonIterator{err: fmt.Errorf("rate limited")}}

	_, err := newPolygonCandlesWithClient(api).Candles(s.ctx, "C:XAUUSD", IntervalOneMinute, 10)
	s.True(errors.HasCode(err, errors.ErrCodeMarketDataFetchFailed))
}

func (s *FeedTestSuite) TestIntervalMapping() {
	s.Equal(15*time.Minute, IntervalFifteenMinutes.Duration())
	s.Equal(4*time.Hour, IntervalFourHours.Duration())
	s.Equal(models.Day, IntervalOneDay.Timespan())
	s.Equal(30, IntervalThirtyMinutes.Multiplier())
}
