package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type TradeTestSuite struct {
	suite.Suite
}

func TestTradeSuite(t *testing.T) {
	suite.Run(t, new(TradeTestSuite))
}

func (suite *TradeTestSuite) longTrade() Trade {
	return Trade{
		ID:         "trade-1",
		AccountID:  "acc-1",
		Symbol:     "XAUUSD",
		Side:       SideLong,
		EntryPrice: 1950,
		Volume:     0.1,
		StopLoss:   1944,
		TakeProfit: 1958,
		Confidence: "Moderate",
		Status:     TradeStatusOpen,
		OpenedAt:   time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
	}
}

func (suite *TradeTestSuite) TestComputeProfit() {
	tests := []struct {
		name     string
		side     Side
		entry    float64
		exit     float64
		volume   float64
		expected float64
	}{
		{name: "long loss at stop", side: SideLong, entry: 1950, exit: 1944, volume: 0.1, expected: -60},
		{name: "long win at target", side: SideLong, entry: 1950, exit: 1958, volume: 0.1, expected: 80},
		{name: "short win", side: SideShort, entry: 1950, exit: 1944, volume: 0.1, expected: 60},
		{name: "short loss", side: SideShort, entry: 1950, exit: 1956.5, volume: 0.2, expected: -130},
		{name: "rounded to cents", side: SideLong, entry: 1950.123, exit: 1950.456, volume: 0.1, expected: 3.33},
		{name: "break even", side: SideLong, entry: 1950, exit: 1950, volume: 1, expected: 0},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.Equal(tc.expected, ComputeProfit(tc.side, tc.entry, tc.exit, tc.volume, DefaultContractMultiplier))
		})
	}
}

func (suite *TradeTestSuite) TestClosePatchAtStopIsLost() {
	closedAt := time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)
	patch := suite.longTrade().ClosePatch(1944, DefaultContractMultiplier, closedAt)

	suite.Equal(1944.0, patch.ExitPrice)
	suite.Equal(-60.0, patch.Profit)
	suite.Equal(TradeStatusLost, patch.Status)
	suite.Equal(closedAt, patch.ClosedAt)
}

func (suite *TradeTestSuite) TestBreakEvenIsWon() {
	suite.Equal(TradeStatusWon, StatusForProfit(0))
	suite.Equal(TradeStatusLost, StatusForProfit(-0.01))
}

func (suite *TradeTestSuite) TestApply() {
	trade := suite.longTrade()
	closed := trade.Apply(trade.ClosePatch(1958, DefaultContractMultiplier, trade.OpenedAt.Add(time.Hour)))

	suite.True(trade.ExitPrice.IsNone())
	suite.Equal(TradeStatusWon, closed.Status)
	suite.Equal(1958.0, closed.ExitPrice.Unwrap())
	suite.Equal(80.0, closed.Profit.Unwrap())
	suite.True(closed.Status.IsTerminal())
	suite.False(trade.Status.IsTerminal())
}

func (suite *TradeTestSuite) TestStopAndTargetHits() {
	long := suite.longTrade()
	suite.True(long.StopLossHit(1944))
	suite.False(long.StopLossHit(1944.5))
	suite.True(long.TakeProfitHit(1958))
	suite.False(long.TakeProfitHit(1957))

	short := long
	short.Side = SideShort
	short.StopLoss = 1956
	short.TakeProfit = 1942
	suite.True(short.StopLossHit(1956))
	suite.False(short.StopLossHit(1955))
	suite.True(short.TakeProfitHit(1941))
	suite.False(short.TakeProfitHit(1943))
}

func (suite *TradeTestSuite) TestUnrealizedProfit() {
	suite.Equal(30.0, suite.longTrade().UnrealizedProfit(1953, DefaultContractMultiplier))
}
