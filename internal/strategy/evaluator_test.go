package strategy

import (
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-autotrader/internal/types"
	"github.com/stretchr/testify/suite"
)

type EvaluatorTestSuite struct {
	suite.Suite
	evaluator *Evaluator
}

func TestEvaluatorSuite(t *testing.T) {
	suite.Run(t, new(EvaluatorTestSuite))
}

func (suite *EvaluatorTestSuite) SetupTest() {
	suite.evaluator = NewEvaluator(DefaultConfig())
}

func snapshot(price, short, long, rsi, atr float64) types.IndicatorSnapshot {
	return types.IndicatorSnapshot{
		Symbol:     "XAUUSD",
		Price:      price,
		ShortAvg:   short,
		LongAvg:    long,
		Momentum:   rsi,
		Volatility: atr,
		CapturedAt: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
	}
}

func openTrade(side types.Side, entry, stop, target float64) optional.Option[types.Trade] {
	return optional.Some(types.Trade{
		ID:         "trade-1",
		AccountID:  "acc-1",
		Symbol:     "XAUUSD",
		Side:       side,
		EntryPrice: entry,
		Volume:     0.1,
		StopLoss:   stop,
		TakeProfit: target,
		Status:     types.TradeStatusOpen,
	})
}

func (suite *EvaluatorTestSuite) TestOpenLongWithStops() {
	decision := suite.evaluator.Evaluate(snapshot(1950, 1955, 1945, 60, 4), optional.None[types.Trade]())

	suite.Equal(types.DecisionOpenLong, decision.Action)
	suite.InDelta(1944.0, decision.StopLoss, 1e-6)
	suite.InDelta(1958.0, decision.TakeProfit, 1e-6)
}

func (suite *EvaluatorTestSuite) TestOpenShortWithStops() {
	decision := suite.evaluator.Evaluate(snapshot(1950, 1945, 1955, 40, 4), optional.None[types.Trade]())

	suite.Equal(types.DecisionOpenShort, decision.Action)
	suite.InDelta(1956.0, decision.StopLoss, 1e-6)
	suite.InDelta(1942.0, decision.TakeProfit, 1e-6)
}

func (suite *EvaluatorTestSuite) TestEntryBoundaries() {
	tests := []struct {
		name     string
		snapshot types.IndicatorSnapshot
		expected types.DecisionAction
	}{
		{name: "rsi exactly 50 blocks long", snapshot: snapshot(1950, 1955, 1945, 50, 4), expected: types.DecisionHold},
		{name: "rsi exactly 70 blocks long", snapshot: snapshot(1950, 1955, 1945, 70, 4), expected: types.DecisionHold},
		{name: "rsi exactly 30 blocks short", snapshot: snapshot(1950, 1945, 1955, 30, 4), expected: types.DecisionHold},
		{name: "rsi exactly 50 blocks short", snapshot: snapshot(1950, 1945, 1955, 50, 4), expected: types.DecisionHold},
		{name: "equal averages hold", snapshot: snapshot(1950, 1950, 1950, 60, 4), expected: types.DecisionHold},
		{name: "bullish trend with bearish momentum", snapshot: snapshot(1950, 1955, 1945, 40, 4), expected: types.DecisionHold},
		{name: "bearish trend with bullish momentum", snapshot: snapshot(1950, 1945, 1955, 60, 4), expected: types.DecisionHold},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			decision := suite.evaluator.Evaluate(tc.snapshot, optional.None[types.Trade]())
			suite.Equal(tc.expected, decision.Action)
		})
	}
}

func (suite *EvaluatorTestSuite) TestExitRules() {
	long := openTrade(types.SideLong, 1950, 1944, 1958)
	short := openTrade(types.SideShort, 1950, 1956, 1942)

	tests := []struct {
		name     string
		trade    optional.Option[types.Trade]
		snapshot types.IndicatorSnapshot
		expected types.DecisionAction
	}{
		{name: "long at stop", trade: long, snapshot: snapshot(1944, 1950, 1952, 45, 4), expected: types.DecisionClose},
		{name: "long below stop", trade: long, snapshot: snapshot(1940, 1950, 1952, 45, 4), expected: types.DecisionClose},
		{name: "long at target", trade: long, snapshot: snapshot(1958, 1956, 1950, 65, 4), expected: types.DecisionClose},
		{name: "long overbought", trade: long, snapshot: snapshot(1952, 1956, 1950, 71, 4), expected: types.DecisionClose},
		{name: "long running", trade: long, snapshot: snapshot(1952, 1956, 1950, 65, 4), expected: types.DecisionHold},
		{name: "long ignores oversold", trade: long, snapshot: snapshot(1950, 1956, 1950, 20, 4), expected: types.DecisionHold},
		{name: "short at stop", trade: short, snapshot: snapshot(1956, 1950, 1952, 45, 4), expected: types.DecisionClose},
		{name: "short at target", trade: short, snapshot: snapshot(1942, 1950, 1952, 45, 4), expected: types.DecisionClose},
		{name: "short oversold", trade: short, snapshot: snapshot(1948, 1950, 1952, 29, 4), expected: types.DecisionClose},
		{name: "short ignores overbought", trade: short, snapshot: snapshot(1950, 1950, 1952, 80, 4), expected: types.DecisionHold},
		{name: "short running", trade: short, snapshot: snapshot(1948, 1950, 1952, 40, 4), expected: types.DecisionHold},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			decision := suite.evaluator.Evaluate(tc.snapshot, tc.trade)
			suite.Equal(tc.expected, decision.Action)
		})
	}
}

func (suite *EvaluatorTestSuite) TestOpenTradeNeverOpensAnother() {
	// a perfect long setup while a trade is open must not open a second one
	decision := suite.evaluator.Evaluate(snapshot(1951, 1955, 1945, 60, 4), openTrade(types.SideLong, 1950, 1944, 1958))
	suite.Equal(types.DecisionHold, decision.Action)
}

func (suite *EvaluatorTestSuite) TestDeterministic() {
	s := snapshot(1950, 1955, 1945, 60, 4)
	first := suite.evaluator.Evaluate(s, optional.None[types.Trade]())

	for i := 0; i < 50; i++ {
		suite.Equal(first, suite.evaluator.Evaluate(s, optional.None[types.Trade]()))
	}
}
