package feed

import (
	"time"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
)

// Interval is the candle width the indicators are computed on, in Binance notation.
type Interval string

const (
	IntervalOneMinute      Interval = "1m"
	IntervalThreeMinutes   Interval = "3m"
	IntervalFiveMinutes    Interval = "5m"
	IntervalFifteenMinutes Interval = "15m"
	IntervalThirtyMinutes  Interval = "30m"
	IntervalOneHour        Interval = "1h"
	IntervalFourHours      Interval = "4h"
	IntervalOneDay         Interval = "1d"
)

// Validate rejects intervals no provider can serve.
func (i Interval) Validate() error {
	switch i {
	case IntervalOneMinute, IntervalThreeMinutes, IntervalFiveMinutes, IntervalFifteenMinutes,
		IntervalThirtyMinutes, IntervalOneHour, IntervalFourHours, IntervalOneDay:
		return nil
	default:
		return errors.Newf(errors.ErrCodeInvalidTimespan, "unsupported candle interval %q", string(i))
	}
}

// Multiplier is the number of Timespan units in one candle.
func (i Interval) Multiplier() int {
	switch i {
	case IntervalThreeMinutes:
		return 3
	case IntervalFiveMinutes:
		return 5
	case IntervalFifteenMinutes:
		return 15
	case IntervalThirtyMinutes:
		return 30
	case IntervalFourHours:
		return 4
	default:
		return 1
	}
}

// Timespan is the Polygon aggregate unit for this interval.
func (i Interval) Timespan() models.Timespan {
	switch i {
	case IntervalOneHour, IntervalFourHours:
		return models.Hour
	case IntervalOneDay:
		return models.Day
	default:
		return models.Minute
	}
}

// Duration is the wall-clock width of one candle.
func (i Interval) Duration() time.Duration {
	unit := time.Minute

	switch i.Timespan() {
	case models.Hour:
		unit = time.Hour
	case models.Day:
		unit = 24 * time.Hour
	}

	return time.Duration(i.Multiplier()) * unit
}
