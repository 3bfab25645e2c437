package feed

import (
	"context"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-autotrader/internal/types"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
)

// PolygonAggsIterator is the iterator returned by ListAggs.
type PolygonAggsIterator interface {
	Next() bool
	Item() models.Agg
	Err() error
}

// PolygonAPIClient abstracts the Polygon REST client for testing.
type PolygonAPIClient interface {
	ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator
}

type realPolygonClient struct {
	client *polygon.Client
}

func (r *realPolygonClient) ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator {
	return r.client.ListAggs(ctx, params, options...)
}

// PolygonCandles reads aggregate bars for FX, metals and equities.
type PolygonCandles struct {
	client PolygonAPIClient
	now    func() time.Time
}

// NewPolygonCandles creates an aggregates source.
func NewPolygonCandles(apiKey string) (*PolygonCandles, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "polygon feed requires polygon_api_key")
	}

	return newPolygonCandlesWithClient(&realPolygonClient{client: polygon.New(apiKey)}), nil
}

func newPolygonCandlesWithClient(client PolygonAPIClient) *PolygonCandles {
	return &PolygonCandles{client: client, now: time.Now}
}

func (p *PolygonCandles) Name() string {
	return ProviderPolygon
}

// Candles requests the last limit bars ending now. Polygon stamps bars with their
// start time, so the close time is derived from the interval.
func (p *PolygonCandles) Candles(ctx context.Context, symbol string, interval Interval, limit int) ([]types.Candle, error) {
	to := p.now()
	// weekends and market closures leave gaps, so ask for a wider window and keep the tail
	from := to.Add(-3 * time.Duration(limit) * interval.Duration())

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     symbol,
		Multiplier: interval.Multiplier(),
		Timespan:   interval.Timespan(),
		From:       models.Millis(from),
		To:         models.Millis(to),
	}.WithAdjusted(true).WithOrder(models.Asc).WithLimit(50000)

	iter := p.client.ListAggs(ctx, params)

	candles := make([]types.Candle, 0, limit)

	for iter.Next() {
		agg := iter.Item()
		openTime := time.Time(agg.Timestamp).UTC()

		candles = append(candles, types.Candle{
			Symbol:    symbol,
			OpenTime:  openTime,
			CloseTime: openTime.Add(interval.Duration()),
			Open:      agg.Open,
			High:      agg.High,
			Low:       agg.Low,
			Close:     agg.Close,
			Volume:    agg.Volume,
		})
	}

	if err := iter.Err(); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to list %s aggregates from polygon", symbol)
	}

	if len(candles) > limit {
		candles = candles[len(candles)-limit:]
	}

	return candles, nil
}
