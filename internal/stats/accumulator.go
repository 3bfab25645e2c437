// Package stats aggregates closed trades into daily and session performance figures.
package stats

import (
	"sort"
	"time"

	"github.com/rxtech-lab/argo-autotrader/internal/types"
	"github.com/shopspring/decimal"
)

// Accumulator holds running statistics for closed trades.
type Accumulator struct {
	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	RealizedPnL   decimal.Decimal
	MaxProfit     float64
	MaxLoss       float64
	MaxDrawdown   float64
	PeakPnL       float64
	HoldingTimes  []int // in seconds
}

// NewAccumulator creates an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		TotalTrades:   0,
		WinningTrades: 0,
		LosingTrades:  0,
		RealizedPnL:   decimal.Zero,
		MaxProfit:     0,
		MaxLoss:       0,
		MaxDrawdown:   0,
		PeakPnL:       0,
		HoldingTimes:  make([]int, 0),
	}
}

// Record adds a closed trade. Open trades are ignored.
func (a *Accumulator) Record(trade types.Trade) {
	if !trade.Status.IsTerminal() {
		return
	}

	profit := trade.Profit.TakeOr(0)

	a.TotalTrades++
	a.RealizedPnL = a.RealizedPnL.Add(decimal.NewFromFloat(profit))

	if trade.Status == types.TradeStatusWon {
		a.WinningTrades++
	} else {
		a.LosingTrades++
	}

	if profit > a.MaxProfit {
		a.MaxProfit = profit
	}

	if profit < a.MaxLoss {
		a.MaxLoss = profit
	}

	realized := a.RealizedPnL.InexactFloat64()
	if realized > a.PeakPnL {
		a.PeakPnL = realized
	}

	if drawdown := a.PeakPnL - realized; drawdown > a.MaxDrawdown {
		a.MaxDrawdown = drawdown
	}

	if closedAt, err := trade.ClosedAt.Take(); err == nil {
		if holding := int(closedAt.Sub(trade.OpenedAt).Seconds()); holding > 0 {
			a.HoldingTimes = append(a.HoldingTimes, holding)
		}
	}
}

// Summary renders the accumulator as the summary of one trading day.
func (a *Accumulator) Summary(accountID, date string, closedAt time.Time) types.DailySummary {
	winRate := 0.0
	if a.TotalTrades > 0 {
		winRate = float64(a.WinningTrades) / float64(a.TotalTrades)
	}

	return types.DailySummary{
		AccountID:     accountID,
		Date:          date,
		TotalTrades:   a.TotalTrades,
		WinningTrades: a.WinningTrades,
		LosingTrades:  a.LosingTrades,
		WinRate:       winRate,
		RealizedPnL:   a.RealizedPnL.Round(2).InexactFloat64(),
		MaxProfit:     a.MaxProfit,
		MaxLoss:       a.MaxLoss,
		MaxDrawdown:   decimal.NewFromFloat(a.MaxDrawdown).Round(2).InexactFloat64(),
		ClosedAt:      closedAt,
	}
}

// HoldingTime returns the min, max and average holding time in seconds.
func (a *Accumulator) HoldingTime() HoldingTime {
	holding := HoldingTime{Min: 0, Max: 0, Avg: 0}
	if len(a.HoldingTimes) == 0 {
		return holding
	}

	holding.Min = a.HoldingTimes[0]
	holding.Max = a.HoldingTimes[0]
	total := 0

	for _, t := range a.HoldingTimes {
		total += t
		holding.Min = min(holding.Min, t)
		holding.Max = max(holding.Max, t)
	}

	holding.Avg = total / len(a.HoldingTimes)

	return holding
}

// Summarize builds the summary for trades closed during one day, in closing order.
func Summarize(accountID, date string, trades []types.Trade, closedAt time.Time) types.DailySummary {
	ordered := make([]types.Trade, len(trades))
	copy(ordered, trades)

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ClosedAt.TakeOr(time.Time{}).Before(ordered[j].ClosedAt.TakeOr(time.Time{}))
	})

	acc := NewAccumulator()
	for _, trade := range ordered {
		acc.Record(trade)
	}

	return acc.Summary(accountID, date, closedAt)
}
