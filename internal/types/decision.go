package types

// DecisionAction is what the evaluator wants to do this cycle.
type DecisionAction string

const (
	DecisionOpenLong  DecisionAction = "OPEN_LONG"
	DecisionOpenShort DecisionAction = "OPEN_SHORT"
	DecisionClose     DecisionAction = "CLOSE"
	DecisionHold      DecisionAction = "HOLD"
)

// IsOpen reports whether the action opens a new trade.
func (a DecisionAction) IsOpen() bool {
	return a == DecisionOpenLong || a == DecisionOpenShort
}

// Decision is the evaluator's raw output.
type Decision struct {
	Action DecisionAction `json:"action"`
	Reason string         `json:"reason"`
	// StopLoss and TakeProfit are proposed only when opening.
	StopLoss   float64 `json:"stop_loss"`
	TakeProfit float64 `json:"take_profit"`
}

// GateReason explains why the risk gate changed a decision.
type GateReason string

const (
	GateReasonNone          GateReason = ""
	GateReasonRiskExhausted GateReason = "daily_risk_exhausted"
	GateReasonGoalMet       GateReason = "daily_goal_met"
	GateReasonLimitBreach   GateReason = "daily_risk_breach"
)

// GatedDecision is the decision after the risk gate. Action may differ from Original.Action.
type GatedDecision struct {
	Original   Decision       `json:"original"`
	Action     DecisionAction `json:"action"`
	Volume     float64        `json:"volume"`
	EntryPrice float64        `json:"entry_price"`
	StopLoss   float64        `json:"stop_loss"`
	TakeProfit float64        `json:"take_profit"`
	Reason     GateReason     `json:"reason"`
	// Message is the narration text describing the gate's intervention.
	Message string `json:"message"`
}

// Gated reports whether the risk gate altered the evaluator's action.
func (g GatedDecision) Gated() bool {
	return g.Reason != GateReasonNone
}

// Side returns the trade side implied by an opening action.
func (g GatedDecision) Side() Side {
	if g.Action == DecisionOpenShort {
		return SideShort
	}

	return SideLong
}
