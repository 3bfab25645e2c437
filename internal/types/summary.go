package types

import "time"

// DailySummary aggregates the trades an account closed during one trading day.
type DailySummary struct {
	AccountID     string    `json:"account_id" yaml:"account_id"`
	Date          string    `json:"date" yaml:"date"`
	TotalTrades   int       `json:"total_trades" yaml:"total_trades"`
	WinningTrades int       `json:"winning_trades" yaml:"winning_trades"`
	LosingTrades  int       `json:"losing_trades" yaml:"losing_trades"`
	WinRate       float64   `json:"win_rate" yaml:"win_rate"`
	RealizedPnL   float64   `json:"realized_pnl" yaml:"realized_pnl"`
	MaxProfit     float64   `json:"max_profit" yaml:"max_profit"`
	MaxLoss       float64   `json:"max_loss" yaml:"max_loss"`
	MaxDrawdown   float64   `json:"max_drawdown" yaml:"max_drawdown"`
	ClosedAt      time.Time `json:"closed_at" yaml:"closed_at"`
}

// AdvisoryRequest is what the position-size advisor is asked about.
type AdvisoryRequest struct {
	AccountID               string `json:"account_id"`
	PreviousTradingData     string `json:"previous_trading_data"`
	CurrentMarketConditions string `json:"current_market_conditions"`
	TechnicalIndicators     string `json:"technical_indicators"`
}

// AdvisorySuggestion is the advisor's answer. It never feeds back into gating.
type AdvisorySuggestion struct {
	SuggestedPositionSize string `json:"suggested_position_size"`
	Reasoning             string `json:"reasoning"`
}
