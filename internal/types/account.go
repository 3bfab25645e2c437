package types

import "time"

const (
	DefaultStartingBalance   = 10000.0
	DefaultDailyRiskLimit    = 500.0
	DefaultDailyProfitTarget = 1000.0
	DefaultMaxPositionSize   = 1.0
)

// Account is the per-owner trading configuration and running balance.
// CurrentBalance always equals StartingBalance plus the realized profit of every closed trade.
type Account struct {
	ID                 string  `json:"id" yaml:"id" validate:"required"`
	StartingBalance    float64 `json:"starting_balance" yaml:"starting_balance" validate:"gt=0"`
	CurrentBalance     float64 `json:"current_balance" yaml:"current_balance"`
	DailyRiskLimit     float64 `json:"daily_risk_limit" yaml:"daily_risk_limit" validate:"gte=0"`
	DailyProfitTarget  float64 `json:"daily_profit_target" yaml:"daily_profit_target" validate:"gte=0"`
	MaxPositionSize    float64 `json:"max_position_size" yaml:"max_position_size" validate:"gt=0"`
	AutoTradingEnabled bool    `json:"auto_trading_enabled" yaml:"auto_trading_enabled"`
	// Version is bumped on every successful save and used for optimistic concurrency.
	Version   int64     `json:"version" yaml:"version"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// NewAccount returns an account seeded with the default limits. Auto-trading starts disabled.
func NewAccount(id string, now time.Time) Account {
	return Account{
		ID:                 id,
		StartingBalance:    DefaultStartingBalance,
		CurrentBalance:     DefaultStartingBalance,
		DailyRiskLimit:     DefaultDailyRiskLimit,
		DailyProfitTarget:  DefaultDailyProfitTarget,
		MaxPositionSize:    DefaultMaxPositionSize,
		AutoTradingEnabled: false,
		Version:            0,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}
