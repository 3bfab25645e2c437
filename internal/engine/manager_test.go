package engine

import (
	"context"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-autotrader/internal/channel"
	"github.com/rxtech-lab/argo-autotrader/internal/ledger"
	"github.com/rxtech-lab/argo-autotrader/internal/logger"
	"github.com/rxtech-lab/argo-autotrader/internal/risk"
	"github.com/rxtech-lab/argo-autotrader/internal/stats"
	"github.com/rxtech-lab/argo-autotrader/internal/strategy"
	"github.com/rxtech-lab/argo-autotrader/internal/types"
	"github.com/rxtech-lab/argo-autotrader/internal/venue"
	"github.com/rxtech-lab/argo-autotrader/mocks"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

const testAccount = "acc-1"

type ManagerTestSuite struct {
	suite.Suite
	ctx     context.Context
	ctrl    *gomock.Controller
	store   *ledger.MemoryStore
	feed    *mocks.MockFeed
	paper   *venue.PaperVenue
	channel *channel.Channel
	tracker *stats.Tracker
	now     time.Time
	log     *logger.Logger
}

func TestManagerSuite(t *testing.T) {
	suite.Run(t, new(ManagerTestSuite))
}

func (s *ManagerTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.store = ledger.NewMemoryStore()
	s.feed = mocks.NewMockFeed(s.ctrl)
	s.paper = venue.NewPaperVenue()
	s.log = logger.NewNop()
	s.now = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	s.tracker = stats.NewTracker(testAccount, "run_1", s.now, s.log)

	config := channel.DefaultConfig()
	config.AckTimeout = time.Second
	config.RetryInterval = time.Millisecond
	s.channel = channel.New(s.paper, config, s.log)
	s.channel.Start()

	account := types.NewAccount(testAccount, s.now)
	account.AutoTradingEnabled = true
	s.Require().NoError(s.store.CreateAccount(s.ctx, account))
}

func (s *ManagerTestSuite) TearDownTest() {
	s.Require().NoError(s.channel.Close())
	s.ctrl.Finish()
}

func (s *ManagerTestSuite) manager(dispatcher channel.Dispatcher) *Manager {
	manager, err := NewManager(testAccount, DefaultConfig(), Dependencies{
		Store:      s.store,
		Feed:       s.feed,
		Dispatcher: dispatcher,
		Evaluator:  strategy.NewEvaluator(strategy.DefaultConfig()),
		Gate:       risk.NewGate(risk.DefaultConfig()),
		Tracker:    s.tracker,
		Logger:     s.log,
		Now:        func() time.Time { return s.now },
	}, Callbacks{})
	s.Require().NoError(err)

	return manager
}

func (s *ManagerTestSuite) snapshot(price, short, long, rsi, atr float64) types.IndicatorSnapshot {
	return types.IndicatorSnapshot{
		Symbol:     "XAUUSD",
		Price:      price,
		ShortAvg:   short,
		LongAvg:    long,
		Momentum:   rsi,
		Volatility: atr,
		CapturedAt: s.now,
	}
}

func (s *ManagerTestSuite) bullish() types.IndicatorSnapshot {
	return s.snapshot(1950, 1955, 1945, 60, 4)
}

func (s *ManagerTestSuite) expectSnapshot(snapshot types.IndicatorSnapshot) {
	s.feed.EXPECT().FetchIndicators(gomock.Any(), "XAUUSD").Return(snapshot, nil)
}

func (s *ManagerTestSuite) seedClosedTrade(id string, volume, exit float64, closedAt time.Time) {
	trade := types.Trade{
		ID:         id,
		AccountID:  testAccount,
		Symbol:     "XAUUSD",
		Side:       types.SideLong,
		EntryPrice: 1950,
		Volume:     volume,
		StopLoss:   1900,
		TakeProfit: 2000,
		Confidence: "Moderate",
		Status:     types.TradeStatusOpen,
		OpenedAt:   closedAt.Add(-time.Hour),
		ExitPrice:  optional.None[float64](),
		Profit:     optional.None[float64](),
		ClosedAt:   optional.None[time.Time](),
	}
	s.Require().NoError(s.store.CreateTrade(s.ctx, trade))

	changed, err := s.store.UpdateTrade(s.ctx, id, trade.ClosePatch(exit, types.DefaultContractMultiplier, closedAt))
	s.Require().NoError(err)
	s.Require().True(changed)
}

func (s *ManagerTestSuite) activity(category types.ActivityCategory) []types.ActivityLogEntry {
	entries, err := s.store.ListActivity(s.ctx, testAccount, 0)
	s.Require().NoError(err)

	var matched []types.ActivityLogEntry

	for _, entry := range entries {
		if entry.Category == category {
			matched = append(matched, entry)
		}
	}

	return matched
}

func (s *ManagerTestSuite) openTrade() optional.Option[types.Trade] {
	open, err := s.store.ReadOpenTrade(s.ctx, testAccount)
	s.Require().NoError(err)

	return open
}

func (s *ManagerTestSuite) TestOpenLong() {
	manager := s.manager(s.channel)
	s.expectSnapshot(s.bullish())

	result, err := manager.RunCycle(s.ctx)
	s.Require().NoError(err)

	s.Equal(StateInTrade, result.State)
	s.Equal(types.DecisionOpenLong, result.Gated.Unwrap().Action)

	trade := result.Trade.Unwrap()
	s.Equal(types.SideLong, trade.Side)
	s.Equal(types.TradeStatusOpen, trade.Status)
	s.InDelta(1950.0, trade.EntryPrice, 1e-6)
	s.InDelta(1944.0, trade.StopLoss, 1e-6)
	s.InDelta(1958.0, trade.TakeProfit, 1e-6)
	s.InDelta(0.1, trade.Volume, 1e-9)
	s.Equal("Moderate", trade.Confidence)

	s.Equal(trade.ID, s.openTrade().Unwrap().ID)
	s.Equal([]string{trade.ID}, s.paper.OpenPositions())

	cmd, err := s.store.GetCommand(s.ctx, types.CommandID(trade.ID, types.CommandActionOpen))
	s.Require().NoError(err)
	s.Equal(types.CommandStatusAcknowledged, cmd.Unwrap().Status)
	s.True(cmd.Unwrap().Applied)
	s.Equal("paper-000001", cmd.Unwrap().TicketID)

	signals := s.activity(types.ActivitySignal)
	s.Require().Len(signals, 1)
	s.Contains(signals[0].Message, "Opened LONG trade: 0.10 lots @ $1950.00")
}

func (s *ManagerTestSuite) TestCloseAtStopLoss() {
	manager := s.manager(s.channel)
	s.expectSnapshot(s.bullish())

	opened, err := manager.RunCycle(s.ctx)
	s.Require().NoError(err)

	s.now = s.now.Add(5 * time.Minute)
	s.expectSnapshot(s.snapshot(1944, 1952, 1948, 55, 4))

	result, err := manager.RunCycle(s.ctx)
	s.Require().NoError(err)

	s.Equal(types.DecisionClose, result.Decision.Unwrap().Action)
	s.Equal(StateIdle, result.State)

	closed := result.Trade.Unwrap()
	s.Equal(opened.Trade.Unwrap().ID, closed.ID)
	s.Equal(types.TradeStatusLost, closed.Status)
	s.InDelta(-60.0, closed.Profit.Unwrap(), 1e-9)
	s.InDelta(1944.0, closed.ExitPrice.Unwrap(), 1e-9)
	s.True(s.openTrade().IsNone())
	s.Empty(s.paper.OpenPositions())

	account, err := s.store.GetAccount(s.ctx, testAccount)
	s.Require().NoError(err)
	s.InDelta(9940.0, account.CurrentBalance, 1e-9)

	results := s.activity(types.ActivityResult)
	s.Require().Len(results, 1)
	s.Contains(results[0].Message, "Closed trade: P/L $-60.00")
	s.Contains(results[0].Message, "TRADE LOST: -$60.00")
	s.Contains(results[0].Message, "Today: -$60.00/$1,000.00")

	report := s.tracker.Report(s.now)
	s.Equal(1, report.Daily.TotalTrades)
	s.InDelta(9940.0, report.Balance, 1e-9)
}

func (s *ManagerTestSuite) TestRiskExhaustedHoldsShort() {
	s.seedClosedTrade("loss-1", 1.0, 1945, s.now.Add(-time.Hour))

	manager := s.manager(mocks.NewMockDispatcher(s.ctrl))
	bearish := s.snapshot(1950, 1945, 1955, 40, 4)
	s.expectSnapshot(bearish)
	s.expectSnapshot(bearish)

	result, err := manager.RunCycle(s.ctx)
	s.Require().NoError(err)

	s.Equal(types.DecisionOpenShort, result.Decision.Unwrap().Action)
	gated := result.Gated.Unwrap()
	s.Equal(types.DecisionHold, gated.Action)
	s.Equal(types.GateReasonRiskExhausted, gated.Reason)
	s.Equal(StateIdle, result.State)

	_, err = manager.RunCycle(s.ctx)
	s.Require().NoError(err)

	updates := s.activity(types.ActivityUpdate)
	s.Require().Len(updates, 1)
	s.Contains(updates[0].Message, "Daily risk limit reached")

	account, err := s.store.GetAccount(s.ctx, testAccount)
	s.Require().NoError(err)
	s.InDelta(9500.0, account.CurrentBalance, 1e-9)
}

func (s *ManagerTestSuite) TestDispatchFailureCreatesNoTrade() {
	dispatcher := mocks.NewMockDispatcher(s.ctrl)
	timeout := errors.New(errors.ErrCodeVenueTimeout, "no acknowledgement")
	dispatcher.EXPECT().Dispatch(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, cmd types.TradeCommand) (types.CommandOutcome, error) {
			return types.CommandOutcome{
				CommandID:     cmd.ID,
				CorrelationID: cmd.CorrelationID,
				Status:        types.CommandStatusFailed,
				TicketID:      "",
				Error:         timeout.Error(),
				Attempts:      1,
				Duplicate:     false,
			}, timeout
		})

	manager := s.manager(dispatcher)
	s.expectSnapshot(s.bullish())

	result, err := manager.RunCycle(s.ctx)
	s.Require().Error(err)
	s.True(errors.IsVenueDispatchError(err))
	s.Equal(StateIdle, result.State)
	s.True(s.openTrade().IsNone())

	trades, err := s.store.ListTrades(s.ctx, ledger.TradeFilter{AccountID: testAccount})
	s.Require().NoError(err)
	s.Empty(trades)

	unsettled, err := s.store.ListUnsettledCommands(s.ctx, testAccount)
	s.Require().NoError(err)
	s.Require().Len(unsettled, 1)
	s.Equal(types.CommandStatusFailed, unsettled[0].Status)
	s.False(unsettled[0].Applied)

	s.Require().Len(s.activity(types.ActivityUpdate), 1)
	s.Contains(s.activity(types.ActivityUpdate)[0].Message, "OPEN command for LONG trade failed")
}

func (s *ManagerTestSuite) TestRejectedOpenIsFinal() {
	dispatcher := mocks.NewMockDispatcher(s.ctrl)
	rejected := errors.New(errors.ErrCodeCommandRejected, "market closed")
	dispatcher.EXPECT().Dispatch(gomock.Any(), gomock.Any()).Return(types.CommandOutcome{}, rejected)

	manager := s.manager(dispatcher)
	s.expectSnapshot(s.bullish())

	_, err := manager.RunCycle(s.ctx)
	s.Require().Error(err)

	unsettled, err := s.store.ListUnsettledCommands(s.ctx, testAccount)
	s.Require().NoError(err)
	s.Empty(unsettled)
}

func (s *ManagerTestSuite) TestTimedOutOpenIsConfirmedOnce() {
	dispatcher := mocks.NewMockDispatcher(s.ctrl)
	timeout := errors.New(errors.ErrCodeVenueTimeout, "no acknowledgement")

	var dispatched []string

	dispatcher.EXPECT().Dispatch(gomock.Any(), gomock.Any()).Times(2).DoAndReturn(
		func(_ context.Context, cmd types.TradeCommand) (types.CommandOutcome, error) {
			dispatched = append(dispatched, cmd.ID)

			return types.CommandOutcome{}, timeout
		})

	manager := s.manager(dispatcher)
	s.expectSnapshot(s.bullish())

	_, err := manager.RunCycle(s.ctx)
	s.Require().Error(err)

	s.feed.EXPECT().FetchIndicators(gomock.Any(), "XAUUSD").
		Return(types.IndicatorSnapshot{}, errors.New(errors.ErrCodeFeedStale, "stale"))

	result, err := manager.RunCycle(s.ctx)
	s.Require().NoError(err)
	s.True(result.Skipped)
	s.Equal(StateIdle, result.State)

	s.Require().Len(dispatched, 2)
	s.Equal(dispatched[0], dispatched[1])

	unsettled, err := s.store.ListUnsettledCommands(s.ctx, testAccount)
	s.Require().NoError(err)
	s.Empty(unsettled)

	stored, err := s.store.GetCommand(s.ctx, dispatched[0])
	s.Require().NoError(err)
	s.Equal(types.CommandStatusFailed, stored.Unwrap().Status)
	s.True(stored.Unwrap().Applied)
	s.True(s.openTrade().IsNone())
}

func (s *ManagerTestSuite) TestLateOpenAcknowledgementIsRecorded() {
	slow := &slowVenue{PaperVenue: venue.NewPaperVenue(), delay: 150 * time.Millisecond}

	config := channel.DefaultConfig()
	config.AckTimeout = 50 * time.Millisecond
	commands := channel.New(slow, config, s.log)
	commands.Start()

	defer commands.Close()

	manager := s.manager(commands)
	s.expectSnapshot(s.bullish())

	first, err := manager.RunCycle(s.ctx)
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeVenueTimeout))
	s.Equal(StateIdle, first.State)
	s.True(s.openTrade().IsNone())

	s.Eventually(func() bool {
		return len(slow.OpenPositions()) == 1
	}, time.Second, 10*time.Millisecond)

	s.expectSnapshot(s.bullish())

	second, err := manager.RunCycle(s.ctx)
	s.Require().NoError(err)
	s.Equal(StateInTrade, second.State)

	trade := s.openTrade().Unwrap()
	s.Equal([]string{trade.ID}, slow.OpenPositions())

	trades, err := s.store.ListTrades(s.ctx, ledger.TradeFilter{AccountID: testAccount})
	s.Require().NoError(err)
	s.Len(trades, 1)

	cmd, err := s.store.GetCommand(s.ctx, types.CommandID(trade.ID, types.CommandActionOpen))
	s.Require().NoError(err)
	s.Equal(types.CommandStatusAcknowledged, cmd.Unwrap().Status)
	s.True(cmd.Unwrap().Applied)
	s.Require().Len(s.activity(types.ActivitySignal), 1)
}

func (s *ManagerTestSuite) TestCloseAcknowledgementIsIdempotent() {
	manager := s.manager(s.channel)
	s.expectSnapshot(s.bullish())
	s.expectSnapshot(s.snapshot(1958, 1957, 1950, 65, 4))

	_, err := manager.RunCycle(s.ctx)
	s.Require().NoError(err)

	result, err := manager.RunCycle(s.ctx)
	s.Require().NoError(err)

	closed := result.Trade.Unwrap()
	s.Equal(types.TradeStatusWon, closed.Status)
	s.InDelta(80.0, closed.Profit.Unwrap(), 1e-9)

	cmd, err := s.store.GetCommand(s.ctx, types.CommandID(closed.ID, types.CommandActionClose))
	s.Require().NoError(err)

	before, err := s.store.GetAccount(s.ctx, testAccount)
	s.Require().NoError(err)
	activityBefore, err := s.store.ListActivity(s.ctx, testAccount, 0)
	s.Require().NoError(err)

	again, err := manager.ApplyCloseAcknowledgement(s.ctx, cmd.Unwrap(), result.Outcome.Unwrap())
	s.Require().NoError(err)
	s.Equal(closed.Profit.Unwrap(), again.Profit.Unwrap())

	stale := cmd.Unwrap()
	stale.Applied = false
	stale.Price = 1990
	_, err = manager.ApplyCloseAcknowledgement(s.ctx, stale, result.Outcome.Unwrap())
	s.Require().NoError(err)

	after, err := s.store.GetAccount(s.ctx, testAccount)
	s.Require().NoError(err)
	s.Equal(before.CurrentBalance, after.CurrentBalance)
	s.InDelta(10080.0, after.CurrentBalance, 1e-9)

	activityAfter, err := s.store.ListActivity(s.ctx, testAccount, 0)
	s.Require().NoError(err)
	s.Len(activityAfter, len(activityBefore))

	stored, err := s.store.GetTrade(s.ctx, closed.ID)
	s.Require().NoError(err)
	s.InDelta(80.0, stored.Unwrap().Profit.Unwrap(), 1e-9)
	s.Equal(1, s.tracker.Report(s.now).Daily.TotalTrades)
}

func (s *ManagerTestSuite) TestReconcilesAcknowledgedOpen() {
	gated := types.GatedDecision{
		Original:   types.Decision{Action: types.DecisionOpenShort},
		Action:     types.DecisionOpenShort,
		Volume:     0.2,
		EntryPrice: 1950,
		StopLoss:   1956,
		TakeProfit: 1942,
	}
	cmd := types.NewOpenCommand("trade-crash", testAccount, "XAUUSD", gated, "Moderate", s.now.Add(-time.Minute))
	cmd.Status = types.CommandStatusAcknowledged
	cmd.TicketID = "paper-000042"
	s.Require().NoError(s.store.CreateCommand(s.ctx, cmd))

	manager := s.manager(mocks.NewMockDispatcher(s.ctrl))
	s.feed.EXPECT().FetchIndicators(gomock.Any(), "XAUUSD").
		Return(types.IndicatorSnapshot{}, errors.New(errors.ErrCodeMarketDataFetchFailed, "http 502"))

	result, err := manager.RunCycle(s.ctx)
	s.Require().NoError(err)
	s.True(result.Skipped)
	s.Equal(StateInTrade, result.State)

	trade := s.openTrade().Unwrap()
	s.Equal("trade-crash", trade.ID)
	s.Equal(types.SideShort, trade.Side)
	s.InDelta(0.2, trade.Volume, 1e-9)

	stored, err := s.store.GetCommand(s.ctx, cmd.ID)
	s.Require().NoError(err)
	s.True(stored.Unwrap().Applied)
	s.Require().Len(s.activity(types.ActivitySignal), 1)
}

func (s *ManagerTestSuite) TestResumesPendingClose() {
	manager := s.manager(s.channel)
	s.expectSnapshot(s.bullish())

	opened, err := manager.RunCycle(s.ctx)
	s.Require().NoError(err)

	trade := opened.Trade.Unwrap()
	s.Require().NoError(s.store.CreateCommand(s.ctx, types.NewCloseCommand(trade, 1952, s.now)))

	s.feed.EXPECT().FetchIndicators(gomock.Any(), "XAUUSD").
		Return(types.IndicatorSnapshot{}, errors.New(errors.ErrCodeFeedStale, "stale"))

	result, err := manager.RunCycle(s.ctx)
	s.Require().NoError(err)
	s.Equal(StateIdle, result.State)
	s.True(s.openTrade().IsNone())

	stored, err := s.store.GetTrade(s.ctx, trade.ID)
	s.Require().NoError(err)
	s.Equal(types.TradeStatusWon, stored.Unwrap().Status)
	s.InDelta(20.0, stored.Unwrap().Profit.Unwrap(), 1e-9)
}

func (s *ManagerTestSuite) TestFeedErrorSkipsCycle() {
	manager := s.manager(mocks.NewMockDispatcher(s.ctrl))
	s.feed.EXPECT().FetchIndicators(gomock.Any(), "XAUUSD").
		Return(types.IndicatorSnapshot{}, errors.New(errors.ErrCodeMarketDataFetchFailed, "timeout"))

	result, err := manager.RunCycle(s.ctx)
	s.Require().NoError(err)
	s.True(result.Skipped)
	s.Contains(result.SkipReason, "timeout")
	s.True(result.Decision.IsNone())

	entries, err := s.store.ListActivity(s.ctx, testAccount, 0)
	s.Require().NoError(err)
	s.Empty(entries)
}

func (s *ManagerTestSuite) TestDisabledAccountIsPaused() {
	_, err := SetAutoTrading(s.ctx, s.store, testAccount, false, s.now)
	s.Require().NoError(err)

	manager := s.manager(mocks.NewMockDispatcher(s.ctrl))

	result, err := manager.RunCycle(s.ctx)
	s.Require().NoError(err)
	s.True(result.Skipped)
	s.Equal("auto-trading disabled", result.SkipReason)

	updates := s.activity(types.ActivityUpdate)
	s.Require().Len(updates, 1)
	s.Contains(updates[0].Message, "AUTO-TRADING: PAUSED")

	account, err := SetAutoTrading(s.ctx, s.store, testAccount, true, s.now)
	s.Require().NoError(err)
	s.True(account.AutoTradingEnabled)
	s.Contains(s.activity(types.ActivityUpdate)[0].Message,
		"AUTO-TRADING: ACTIVE. Goal: $1,000.00 Profit. Max Risk: $500.00.")
}

func (s *ManagerTestSuite) TestHoldNarration() {
	manager := s.manager(s.channel)
	s.expectSnapshot(s.snapshot(1950, 1950, 1950, 50, 4))

	_, err := manager.RunCycle(s.ctx)
	s.Require().NoError(err)

	analysis := s.activity(types.ActivityAnalysis)
	s.Require().Len(analysis, 1)
	s.Equal("No entry signal. Waiting for better setup...", analysis[0].Message)

	s.expectSnapshot(s.bullish())
	_, err = manager.RunCycle(s.ctx)
	s.Require().NoError(err)

	s.now = s.now.Add(5 * time.Minute)
	s.expectSnapshot(s.snapshot(1952, 1956, 1946, 62, 4))

	result, err := manager.RunCycle(s.ctx)
	s.Require().NoError(err)
	s.Equal(StateInTrade, result.State)

	updates := s.activity(types.ActivityUpdate)
	s.Require().Len(updates, 1)
	s.Equal("Trade running: LONG @ $1950.00, Current: $1952.00, P/L: +$20.00, Duration: 5m0s", updates[0].Message)
	s.InDelta(20.0, s.tracker.Report(s.now).UnrealizedPnL, 1e-9)
}

func (s *ManagerTestSuite) TestForceCloseOnLimitBreach() {
	s.seedClosedTrade("loss-1", 1.0, 1945.5, s.now.Add(-2*time.Hour))

	manager := s.manager(s.channel)
	s.expectSnapshot(s.bullish())

	_, err := manager.RunCycle(s.ctx)
	s.Require().NoError(err)

	s.expectSnapshot(s.snapshot(1945, 1952, 1948, 55, 8))

	result, err := manager.RunCycle(s.ctx)
	s.Require().NoError(err)

	s.Equal(types.DecisionHold, result.Decision.Unwrap().Action)
	s.Equal(types.GateReasonLimitBreach, result.Gated.Unwrap().Reason)
	s.Equal(StateIdle, result.State)
	s.InDelta(-50.0, result.Trade.Unwrap().Profit.Unwrap(), 1e-9)
	s.Contains(s.activity(types.ActivityUpdate)[0].Message, "Daily risk limit breached")
}

func (s *ManagerTestSuite) TestDaySummaryOnBoundary() {
	var summaries []types.DailySummary

	onSummary := OnDailySummaryCallback(func(summary types.DailySummary) {
		summaries = append(summaries, summary)
	})

	manager, err := NewManager(testAccount, DefaultConfig(), Dependencies{
		Store:      s.store,
		Feed:       s.feed,
		Dispatcher: s.channel,
		Evaluator:  strategy.NewEvaluator(strategy.DefaultConfig()),
		Gate:       risk.NewGate(risk.DefaultConfig()),
		Tracker:    s.tracker,
		Logger:     s.log,
		Now:        func() time.Time { return s.now },
	}, Callbacks{OnDailySummary: &onSummary})
	s.Require().NoError(err)

	s.expectSnapshot(s.bullish())
	_, err = manager.RunCycle(s.ctx)
	s.Require().NoError(err)

	s.expectSnapshot(s.snapshot(1944, 1952, 1948, 55, 4))
	_, err = manager.RunCycle(s.ctx)
	s.Require().NoError(err)

	s.now = time.Date(2026, 3, 3, 0, 0, 15, 0, time.UTC)
	s.expectSnapshot(s.snapshot(1950, 1950, 1950, 50, 4))

	result, err := manager.RunCycle(s.ctx)
	s.Require().NoError(err)

	summary := result.DaySummary.Unwrap()
	s.Equal("2026-03-02", summary.Date)
	s.Equal(1, summary.TotalTrades)
	s.Equal(0, summary.WinningTrades)
	s.InDelta(-60.0, summary.RealizedPnL, 1e-9)
	s.Require().Len(summaries, 1)

	entries := s.activity(types.ActivitySummary)
	s.Require().Len(entries, 1)
	s.Contains(entries[0].Message, "DAILY SUMMARY: 1 trades, 0 wins (0.0%), -$60.00 profit")

	s.Equal("2026-03-03", s.tracker.CurrentDate())
	s.Equal(0, s.tracker.Report(s.now).Daily.TotalTrades)
}

func (s *ManagerTestSuite) TestLedgerInvariantsHoldAcrossCycles() {
	manager := s.manager(s.channel)

	snapshots := []types.IndicatorSnapshot{
		s.bullish(),
		s.snapshot(1951, 1956, 1946, 61, 4),
		s.snapshot(1959, 1958, 1950, 66, 4),
		s.snapshot(1955, 1950, 1956, 45, 3),
		s.snapshot(1953, 1949, 1955, 44, 3),
		s.snapshot(1959, 1952, 1954, 52, 3),
		s.snapshot(1960, 1962, 1955, 58, 2),
		s.snapshot(1961, 1963, 1956, 75, 2),
		s.snapshot(1961, 1963, 1956, 60, 2),
		s.snapshot(1955, 1960, 1957, 55, 2),
	}

	for i, snapshot := range snapshots {
		s.now = s.now.Add(time.Minute)
		s.expectSnapshot(snapshot)

		_, err := manager.RunCycle(s.ctx)
		s.Require().NoError(err, "cycle %d", i)

		open, err := s.store.ListTrades(s.ctx, ledger.TradeFilter{
			AccountID: testAccount,
			Statuses:  []types.TradeStatus{types.TradeStatusOpen},
		})
		s.Require().NoError(err)
		s.LessOrEqual(len(open), 1, "cycle %d", i)

		realized, err := s.store.RealizedPnL(s.ctx, testAccount, time.Time{})
		s.Require().NoError(err)

		account, err := s.store.GetAccount(s.ctx, testAccount)
		s.Require().NoError(err)
		s.InDelta(account.StartingBalance+realized, account.CurrentBalance, 1e-6, "cycle %d", i)
	}

	closed, err := s.store.ListTrades(s.ctx, ledger.TradeFilter{AccountID: testAccount, Statuses: ledger.ClosedStatuses})
	s.Require().NoError(err)
	s.NotEmpty(closed)
}

func (s *ManagerTestSuite) TestNewManagerValidates() {
	_, err := NewManager("", DefaultConfig(), Dependencies{}, Callbacks{})
	s.True(errors.HasCode(err, errors.ErrCodeMissingParameter))

	_, err = NewManager(testAccount, DefaultConfig(), Dependencies{Store: s.store}, Callbacks{})
	s.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))

	config := DefaultConfig()
	config.DayBoundaryTimezone = "Mars/Olympus"
	_, err = NewManager(testAccount, config, Dependencies{
		Store:      s.store,
		Feed:       s.feed,
		Dispatcher: s.channel,
		Evaluator:  strategy.NewEvaluator(strategy.DefaultConfig()),
		Gate:       risk.NewGate(risk.DefaultConfig()),
	}, Callbacks{})
	s.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

// slowVenue fills commands after a delay and ignores cancellation, like a venue
// that executes an order the caller already gave up on.
type slowVenue struct {
	*venue.PaperVenue
	delay time.Duration
}

func (v *slowVenue) Submit(_ context.Context, cmd types.TradeCommand) (string, error) {
	time.Sleep(v.delay)

	return v.PaperVenue.Submit(context.Background(), cmd)
}
