package risk

import (
	"testing"

	"github.com/rxtech-lab/argo-autotrader/internal/types"
	"github.com/stretchr/testify/suite"
)

type GateTestSuite struct {
	suite.Suite
	gate    *Gate
	account types.Account
}

func TestGateSuite(t *testing.T) {
	suite.Run(t, new(GateTestSuite))
}

func (suite *GateTestSuite) SetupTest() {
	suite.gate = NewGate(DefaultConfig())
	suite.account = types.Account{
		ID:                "acc-1",
		StartingBalance:   10000,
		CurrentBalance:    10000,
		DailyRiskLimit:    500,
		DailyProfitTarget: 1000,
		MaxPositionSize:   1.0,
	}
}

func (suite *GateTestSuite) snapshot(price, atr float64) types.IndicatorSnapshot {
	return types.IndicatorSnapshot{Symbol: "XAUUSD", Price: price, Volatility: atr}
}

func (suite *GateTestSuite) TestDeriveStopAndTarget() {
	stop, target := DeriveStopAndTarget(types.SideLong, 1950, 4, 1.5, 2.0)
	suite.InDelta(1944.0, stop, 1e-6)
	suite.InDelta(1958.0, target, 1e-6)

	stop, target = DeriveStopAndTarget(types.SideShort, 1950, 4, 1.5, 2.0)
	suite.InDelta(1956.0, stop, 1e-6)
	suite.InDelta(1942.0, target, 1e-6)
}

func (suite *GateTestSuite) TestOpenPassesThrough() {
	gated := suite.gate.Apply(Input{
		Decision: types.Decision{Action: types.DecisionOpenLong},
		Account:  suite.account,
		Snapshot: suite.snapshot(1950, 4),
	})

	suite.False(gated.Gated())
	suite.Equal(types.DecisionOpenLong, gated.Action)
	suite.Equal(0.1, gated.Volume)
	suite.Equal(1950.0, gated.EntryPrice)
	suite.InDelta(1944.0, gated.StopLoss, 1e-6)
	suite.InDelta(1958.0, gated.TakeProfit, 1e-6)
	suite.Equal(types.SideLong, gated.Side())
}

func (suite *GateTestSuite) TestRiskExhaustedForcesHold() {
	gated := suite.gate.Apply(Input{
		Decision:       types.Decision{Action: types.DecisionOpenShort},
		Account:        suite.account,
		TodaysRealized: -500,
		Snapshot:       suite.snapshot(1950, 4),
	})

	suite.Equal(types.DecisionHold, gated.Action)
	suite.Equal(types.GateReasonRiskExhausted, gated.Reason)
	suite.Equal(types.DecisionOpenShort, gated.Original.Action)
	suite.Contains(gated.Message, "Daily risk limit reached")
}

func (suite *GateTestSuite) TestRiskExhaustedForAnyLoss() {
	for _, pnl := range []float64{-500, -500.01, -750, -10000} {
		for _, action := range []types.DecisionAction{types.DecisionOpenLong, types.DecisionOpenShort} {
			gated := suite.gate.Apply(Input{
				Decision:       types.Decision{Action: action},
				Account:        suite.account,
				TodaysRealized: pnl,
				Snapshot:       suite.snapshot(1950, 4),
			})
			suite.False(gated.Action.IsOpen(), "pnl %v action %v", pnl, action)
		}
	}
}

func (suite *GateTestSuite) TestGoalMetForcesHold() {
	gated := suite.gate.Apply(Input{
		Decision:       types.Decision{Action: types.DecisionOpenLong},
		Account:        suite.account,
		TodaysRealized: 1000,
		Snapshot:       suite.snapshot(1950, 4),
	})

	suite.Equal(types.DecisionHold, gated.Action)
	suite.Equal(types.GateReasonGoalMet, gated.Reason)
}

func (suite *GateTestSuite) TestZeroProfitTargetIsMetImmediately() {
	suite.account.DailyProfitTarget = 0
	gated := suite.gate.Apply(Input{
		Decision: types.Decision{Action: types.DecisionOpenShort},
		Account:  suite.account,
		Snapshot: suite.snapshot(1950, 4),
	})

	suite.Equal(types.DecisionHold, gated.Action)
	suite.Equal(types.GateReasonGoalMet, gated.Reason)
}

func (suite *GateTestSuite) TestGoalMetStillAllowsClose() {
	trade := types.Trade{Side: types.SideLong, EntryPrice: 1950, Volume: 0.1, StopLoss: 1944, TakeProfit: 1958}
	gated := suite.gate.Apply(Input{
		Decision:       types.Decision{Action: types.DecisionClose},
		Account:        suite.account,
		TodaysRealized: 1200,
		Snapshot:       suite.snapshot(1958, 4),
		OpenTrade:      &trade,
	})

	suite.Equal(types.DecisionClose, gated.Action)
	suite.False(gated.Gated())
}

func (suite *GateTestSuite) TestVolumeClampedToMaxPosition() {
	suite.account.MaxPositionSize = 0.05
	gated := suite.gate.Apply(Input{
		Decision: types.Decision{Action: types.DecisionOpenLong},
		Account:  suite.account,
		Snapshot: suite.snapshot(1950, 4),
	})
	suite.Equal(0.05, gated.Volume)

	suite.account.MaxPositionSize = 1.0
	gated = suite.gate.Apply(Input{
		Decision:       types.Decision{Action: types.DecisionOpenLong},
		Account:        suite.account,
		Snapshot:       suite.snapshot(1950, 4),
		ProposedVolume: 2.5,
	})
	suite.Equal(1.0, gated.Volume)
}

func (suite *GateTestSuite) TestBreachForcesClose() {
	trade := types.Trade{Side: types.SideLong, EntryPrice: 1950, Volume: 0.5, StopLoss: 1900, TakeProfit: 2000}

	gated := suite.gate.Apply(Input{
		Decision:       types.Decision{Action: types.DecisionHold},
		Account:        suite.account,
		TodaysRealized: -300,
		Snapshot:       suite.snapshot(1946, 4),
		OpenTrade:      &trade,
	})
	suite.Equal(types.DecisionClose, gated.Action)
	suite.Equal(types.GateReasonLimitBreach, gated.Reason)

	// within the limit the hold stands
	gated = suite.gate.Apply(Input{
		Decision:       types.Decision{Action: types.DecisionHold},
		Account:        suite.account,
		TodaysRealized: -300,
		Snapshot:       suite.snapshot(1948, 4),
		OpenTrade:      &trade,
	})
	suite.Equal(types.DecisionHold, gated.Action)
	suite.False(gated.Gated())
}

func (suite *GateTestSuite) TestBreachDisabled() {
	cfg := DefaultConfig()
	cfg.ForceCloseOnBreach = false
	gate := NewGate(cfg)
	trade := types.Trade{Side: types.SideLong, EntryPrice: 1950, Volume: 1, StopLoss: 1900, TakeProfit: 2000}

	gated := gate.Apply(Input{
		Decision:       types.Decision{Action: types.DecisionHold},
		Account:        suite.account,
		TodaysRealized: -400,
		Snapshot:       suite.snapshot(1940, 4),
		OpenTrade:      &trade,
	})
	suite.Equal(types.DecisionHold, gated.Action)
}

func (suite *GateTestSuite) TestFormatMoney() {
	suite.Equal("$0.00", FormatMoney(0))
	suite.Equal("$500.00", FormatMoney(500))
	suite.Equal("$1,240.50", FormatMoney(1240.5))
	suite.Equal("-$1,000,000.00", FormatMoney(-1000000))
	suite.Equal("+$80.00", FormatSignedMoney(80))
	suite.Equal("-$60.00", FormatSignedMoney(-60))
}
