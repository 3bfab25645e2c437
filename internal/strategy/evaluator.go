// Package strategy maps an indicator snapshot and the open trade onto a decision.
package strategy

import (
	"fmt"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-autotrader/internal/risk"
	"github.com/rxtech-lab/argo-autotrader/internal/types"
)

// Config holds the momentum bands and the ATR multipliers used for proposals.
type Config struct {
	RSIUpper            float64 `json:"rsi_upper" yaml:"rsi_upper" jsonschema:"title=RSI Upper Band,default=70" validate:"gtfield=RSIMid"`
	RSIMid              float64 `json:"rsi_mid" yaml:"rsi_mid" jsonschema:"title=RSI Mid Line,default=50" validate:"gtfield=RSILower"`
	RSILower            float64 `json:"rsi_lower" yaml:"rsi_lower" jsonschema:"title=RSI Lower Band,default=30" validate:"gte=0"`
	StopATRMultiplier   float64 `json:"stop_atr_multiplier" yaml:"stop_atr_multiplier" jsonschema:"title=Stop ATR Multiplier,default=1.5" validate:"gt=0"`
	TargetATRMultiplier float64 `json:"target_atr_multiplier" yaml:"target_atr_multiplier" jsonschema:"title=Target ATR Multiplier,default=2.0" validate:"gt=0"`
}

// DefaultConfig returns the 30/50/70 bands.
func DefaultConfig() Config {
	return Config{
		RSIUpper:            70,
		RSIMid:              50,
		RSILower:            30,
		StopATRMultiplier:   risk.DefaultStopATRMultiplier,
		TargetATRMultiplier: risk.DefaultTargetATRMultiplier,
	}
}

// Evaluator is deterministic: the same snapshot and open trade always give the same decision.
type Evaluator struct {
	config Config
}

// NewEvaluator creates an evaluator.
func NewEvaluator(config Config) *Evaluator {
	return &Evaluator{config: config}
}

// Evaluate returns the decision for this cycle.
func (e *Evaluator) Evaluate(snapshot types.IndicatorSnapshot, openTrade optional.Option[types.Trade]) types.Decision {
	if openTrade.IsSome() {
		return e.evaluateExit(snapshot, openTrade.Unwrap())
	}

	return e.evaluateEntry(snapshot)
}

//nolint:funcorder // helper method used by Evaluate
func (e *Evaluator) evaluateEntry(s types.IndicatorSnapshot) types.Decision {
	switch {
	case s.ShortAvg > s.LongAvg && s.Momentum > e.config.RSIMid && s.Momentum < e.config.RSIUpper:
		stop, target := risk.DeriveStopAndTarget(types.SideLong, s.Price, s.Volatility,
			e.config.StopATRMultiplier, e.config.TargetATRMultiplier)

		return types.Decision{
			Action:     types.DecisionOpenLong,
			Reason:     fmt.Sprintf("Bullish crossover (EMA %.2f > %.2f) with RSI %.1f", s.ShortAvg, s.LongAvg, s.Momentum),
			StopLoss:   stop,
			TakeProfit: target,
		}
	case s.ShortAvg < s.LongAvg && s.Momentum > e.config.RSILower && s.Momentum < e.config.RSIMid:
		stop, target := risk.DeriveStopAndTarget(types.SideShort, s.Price, s.Volatility,
			e.config.StopATRMultiplier, e.config.TargetATRMultiplier)

		return types.Decision{
			Action:     types.DecisionOpenShort,
			Reason:     fmt.Sprintf("Bearish crossover (EMA %.2f < %.2f) with RSI %.1f", s.ShortAvg, s.LongAvg, s.Momentum),
			StopLoss:   stop,
			TakeProfit: target,
		}
	default:
		return hold("No entry signal. Waiting for better setup...")
	}
}

//nolint:funcorder // helper method used by Evaluate
func (e *Evaluator) evaluateExit(s types.IndicatorSnapshot, trade types.Trade) types.Decision {
	switch {
	case trade.Side == types.SideLong && s.Momentum > e.config.RSIUpper:
		return closeDecision(fmt.Sprintf("RSI %.1f overbought", s.Momentum))
	case trade.Side == types.SideShort && s.Momentum < e.config.RSILower:
		return closeDecision(fmt.Sprintf("RSI %.1f oversold", s.Momentum))
	case trade.StopLossHit(s.Price):
		return closeDecision(fmt.Sprintf("Stop loss %.2f reached at %.2f", trade.StopLoss, s.Price))
	case trade.TakeProfitHit(s.Price):
		return closeDecision(fmt.Sprintf("Take profit %.2f reached at %.2f", trade.TakeProfit, s.Price))
	default:
		return hold("Trade running")
	}
}

func hold(reason string) types.Decision {
	return types.Decision{Action: types.DecisionHold, Reason: reason, StopLoss: 0, TakeProfit: 0}
}

func closeDecision(reason string) types.Decision {
	return types.Decision{Action: types.DecisionClose, Reason: reason, StopLoss: 0, TakeProfit: 0}
}
