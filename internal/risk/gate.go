package risk

import (
	"fmt"
	"math"

	"github.com/rxtech-lab/argo-autotrader/internal/types"
)

// Config controls the gate's sizing and stop placement.
type Config struct {
	// DefaultVolume is the proposed lot size before clamping to the account maximum.
	DefaultVolume       float64 `json:"default_volume" yaml:"default_volume" jsonschema:"title=Default Volume,default=0.1" validate:"gt=0"`
	StopATRMultiplier   float64 `json:"stop_atr_multiplier" yaml:"stop_atr_multiplier" jsonschema:"title=Stop ATR Multiplier,default=1.5" validate:"gt=0"`
	TargetATRMultiplier float64 `json:"target_atr_multiplier" yaml:"target_atr_multiplier" jsonschema:"title=Target ATR Multiplier,default=2.0" validate:"gt=0"`
	// ForceCloseOnBreach closes an open trade once realized plus unrealized P/L reaches the daily risk limit.
	ForceCloseOnBreach bool    `json:"force_close_on_breach" yaml:"force_close_on_breach" jsonschema:"title=Force Close On Breach,default=true"`
	ContractMultiplier float64 `json:"contract_multiplier" yaml:"contract_multiplier" jsonschema:"title=Contract Multiplier,default=100" validate:"gt=0"`
}

// DefaultConfig returns the 0.1 lot, 1.5/2.0 ATR setup.
func DefaultConfig() Config {
	return Config{
		DefaultVolume:       0.1,
		StopATRMultiplier:   DefaultStopATRMultiplier,
		TargetATRMultiplier: DefaultTargetATRMultiplier,
		ForceCloseOnBreach:  true,
		ContractMultiplier:  types.DefaultContractMultiplier,
	}
}

// Gate applies the daily risk limit, the daily profit target and position sizing.
// It is pure: the caller records the narration carried in the result.
type Gate struct {
	config Config
}

// NewGate creates a gate.
func NewGate(config Config) *Gate {
	return &Gate{config: config}
}

// Input is everything the gate looks at for one cycle.
type Input struct {
	Decision       types.Decision
	Account        types.Account
	TodaysRealized float64
	Snapshot       types.IndicatorSnapshot
	OpenTrade      *types.Trade
	ProposedVolume float64
}

// Apply returns the gated decision.
func (g *Gate) Apply(in Input) types.GatedDecision {
	gated := types.GatedDecision{
		Original:   in.Decision,
		Action:     in.Decision.Action,
		Volume:     0,
		EntryPrice: 0,
		StopLoss:   0,
		TakeProfit: 0,
		Reason:     types.GateReasonNone,
		Message:    "",
	}

	switch {
	case in.Decision.Action.IsOpen():
		return g.gateOpen(in, gated)
	case in.OpenTrade != nil && in.Decision.Action == types.DecisionHold && g.config.ForceCloseOnBreach:
		return g.gateBreach(in, gated)
	default:
		return gated
	}
}

//nolint:funcorder // helper method used by Apply
func (g *Gate) gateOpen(in Input, gated types.GatedDecision) types.GatedDecision {
	limit := in.Account.DailyRiskLimit
	target := in.Account.DailyProfitTarget

	if in.TodaysRealized <= -limit {
		gated.Action = types.DecisionHold
		gated.Reason = types.GateReasonRiskExhausted
		gated.Message = fmt.Sprintf("Daily risk limit reached (%s / -%s). No new trades today.",
			FormatMoney(in.TodaysRealized), FormatMoney(limit))

		return gated
	}

	if in.TodaysRealized >= target {
		gated.Action = types.DecisionHold
		gated.Reason = types.GateReasonGoalMet
		gated.Message = fmt.Sprintf("Daily profit target met (%s / %s). Holding off new entries.",
			FormatMoney(in.TodaysRealized), FormatMoney(target))

		return gated
	}

	proposed := in.ProposedVolume
	if proposed <= 0 {
		proposed = g.config.DefaultVolume
	}

	side := types.SideLong
	if in.Decision.Action == types.DecisionOpenShort {
		side = types.SideShort
	}

	stop, takeProfit := DeriveStopAndTarget(side, in.Snapshot.Price, in.Snapshot.Volatility,
		g.config.StopATRMultiplier, g.config.TargetATRMultiplier)

	gated.Volume = math.Min(proposed, in.Account.MaxPositionSize)
	gated.EntryPrice = in.Snapshot.Price
	gated.StopLoss = stop
	gated.TakeProfit = takeProfit

	return gated
}

//nolint:funcorder // helper method used by Apply
func (g *Gate) gateBreach(in Input, gated types.GatedDecision) types.GatedDecision {
	unrealized := in.OpenTrade.UnrealizedProfit(in.Snapshot.Price, g.config.ContractMultiplier)
	total := in.TodaysRealized + unrealized

	if in.Account.DailyRiskLimit > 0 && total <= -in.Account.DailyRiskLimit {
		gated.Action = types.DecisionClose
		gated.Reason = types.GateReasonLimitBreach
		gated.Message = fmt.Sprintf("Daily risk limit breached with open trade (%s incl. %s unrealized). Closing position.",
			FormatMoney(total), FormatMoney(unrealized))
	}

	return gated
}
