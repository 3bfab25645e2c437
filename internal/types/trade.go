package types

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
)

// Side is the direction of a trade.
type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// TradeStatus is the lifecycle status of a trade. WON and LOST are terminal.
type TradeStatus string

const (
	TradeStatusOpen TradeStatus = "OPEN"
	TradeStatusWon  TradeStatus = "WON"
	TradeStatusLost TradeStatus = "LOST"
)

// DefaultContractMultiplier converts a price difference per lot into account currency.
const DefaultContractMultiplier = 100.0

// IsTerminal reports whether the status can no longer change.
func (s TradeStatus) IsTerminal() bool {
	return s == TradeStatusWon || s == TradeStatusLost
}

// Trade is a single position from open to close. The entry fields are immutable;
// the exit fields are written exactly once when the trade is closed.
type Trade struct {
	ID         string      `json:"id" yaml:"id"`
	AccountID  string      `json:"account_id" yaml:"account_id"`
	Symbol     string      `json:"symbol" yaml:"symbol"`
	Side       Side        `json:"side" yaml:"side"`
	EntryPrice float64     `json:"entry_price" yaml:"entry_price"`
	Volume     float64     `json:"volume" yaml:"volume"`
	StopLoss   float64     `json:"stop_loss" yaml:"stop_loss"`
	TakeProfit float64     `json:"take_profit" yaml:"take_profit"`
	Confidence string      `json:"confidence" yaml:"confidence"`
	Status     TradeStatus `json:"status" yaml:"status"`
	OpenedAt   time.Time   `json:"opened_at" yaml:"opened_at"`
	// ExitPrice, Profit and ClosedAt are set only once the trade is terminal.
	ExitPrice optional.Option[float64]   `json:"exit_price" yaml:"exit_price"`
	Profit    optional.Option[float64]   `json:"profit" yaml:"profit"`
	ClosedAt  optional.Option[time.Time] `json:"closed_at" yaml:"closed_at"`
}

// TradePatch carries the closing fields applied to an open trade.
type TradePatch struct {
	ExitPrice float64     `json:"exit_price"`
	Profit    float64     `json:"profit"`
	Status    TradeStatus `json:"status"`
	ClosedAt  time.Time   `json:"closed_at"`
}

// ComputeProfit returns the realized profit of closing a position at exitPrice,
// rounded to cents.
func ComputeProfit(side Side, entryPrice, exitPrice, volume, multiplier float64) float64 {
	diff := decimal.NewFromFloat(exitPrice).Sub(decimal.NewFromFloat(entryPrice))
	if side == SideShort {
		diff = diff.Neg()
	}

	result, _ := diff.
		Mul(decimal.NewFromFloat(volume)).
		Mul(decimal.NewFromFloat(multiplier)).
		Round(2).
		Float64()

	return result
}

// StatusForProfit maps a realized profit onto its terminal status. Break-even counts as a win.
func StatusForProfit(profit float64) TradeStatus {
	if profit >= 0 {
		return TradeStatusWon
	}

	return TradeStatusLost
}

// ClosePatch builds the patch that closes the trade at exitPrice.
func (t Trade) ClosePatch(exitPrice, multiplier float64, closedAt time.Time) TradePatch {
	profit := ComputeProfit(t.Side, t.EntryPrice, exitPrice, t.Volume, multiplier)

	return TradePatch{
		ExitPrice: exitPrice,
		Profit:    profit,
		Status:    StatusForProfit(profit),
		ClosedAt:  closedAt,
	}
}

// UnrealizedProfit is the profit the trade would realize if closed at price.
func (t Trade) UnrealizedProfit(price, multiplier float64) float64 {
	return ComputeProfit(t.Side, t.EntryPrice, price, t.Volume, multiplier)
}

// Apply returns a copy of the trade with the patch written into the exit fields.
func (t Trade) Apply(patch TradePatch) Trade {
	t.ExitPrice = optional.Some(patch.ExitPrice)
	t.Profit = optional.Some(patch.Profit)
	t.ClosedAt = optional.Some(patch.ClosedAt)
	t.Status = patch.Status

	return t
}

// StopLossHit reports whether price has reached the protective stop.
func (t Trade) StopLossHit(price float64) bool {
	if t.Side == SideShort {
		return price >= t.StopLoss
	}

	return price <= t.StopLoss
}

// TakeProfitHit reports whether price has reached the profit target.
func (t Trade) TakeProfitHit(price float64) bool {
	if t.Side == SideShort {
		return price <= t.TakeProfit
	}

	return price >= t.TakeProfit
}
