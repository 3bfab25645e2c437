// Package engine runs the per-account decision cycle: it reconciles the ledger,
// evaluates the market, gates the decision against the account's daily limits and
// turns the result into venue commands and ledger entries.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-autotrader/internal/channel"
	"github.com/rxtech-lab/argo-autotrader/internal/feed"
	"github.com/rxtech-lab/argo-autotrader/internal/ledger"
	"github.com/rxtech-lab/argo-autotrader/internal/logger"
	"github.com/rxtech-lab/argo-autotrader/internal/risk"
	"github.com/rxtech-lab/argo-autotrader/internal/stats"
	"github.com/rxtech-lab/argo-autotrader/internal/strategy"
	"github.com/rxtech-lab/argo-autotrader/internal/types"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
	"go.uber.org/zap"
)

// State is the lifecycle state of an account.
type State string

const (
	StateIdle    State = "IDLE"
	StateInTrade State = "IN_TRADE"
)

// Dependencies are the collaborators of a Manager. Tracker and Now are optional.
type Dependencies struct {
	Store      ledger.Store
	Feed       feed.Feed
	Dispatcher channel.Dispatcher
	Evaluator  *strategy.Evaluator
	Gate       *risk.Gate
	Tracker    *stats.Tracker
	Logger     *logger.Logger
	Now        func() time.Time
}

// CycleResult describes what one cycle saw and did.
type CycleResult struct {
	AccountID string
	// State is the account state at the end of the cycle.
	State      State
	Skipped    bool
	SkipReason string
	Snapshot   optional.Option[types.IndicatorSnapshot]
	Decision   optional.Option[types.Decision]
	Gated      optional.Option[types.GatedDecision]
	// Trade is the trade opened, closed or held during the cycle.
	Trade   optional.Option[types.Trade]
	Outcome optional.Option[types.CommandOutcome]
	// DaySummary is set on the first cycle of a new trading day.
	DaySummary optional.Option[types.DailySummary]
}

// Manager owns the trades and commands of one account. Cycles are serialized.
type Manager struct {
	accountID  string
	config     Config
	location   *time.Location
	store      ledger.Store
	feed       feed.Feed
	dispatcher channel.Dispatcher
	evaluator  *strategy.Evaluator
	gate       *risk.Gate
	tracker    *stats.Tracker
	logger     *logger.Logger
	now        func() time.Time
	callbacks  Callbacks

	mu         sync.Mutex
	currentDay string
	// gateNotices remembers the day each gate reason was last narrated.
	gateNotices map[types.GateReason]string
}

// NewManager creates the lifecycle manager for accountID.
func NewManager(accountID string, config Config, deps Dependencies, callbacks Callbacks) (*Manager, error) {
	if accountID == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "account id is required")
	}

	if deps.Store == nil || deps.Feed == nil || deps.Dispatcher == nil || deps.Evaluator == nil || deps.Gate == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "store, feed, dispatcher, evaluator and gate are required")
	}

	timezone := config.DayBoundaryTimezone
	if timezone == "" {
		timezone = "UTC"
	}

	location, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "unknown day boundary timezone %q", timezone)
	}

	if config.ContractMultiplier <= 0 {
		config.ContractMultiplier = types.DefaultContractMultiplier
	}

	if config.CloseRetryAttempts < 1 {
		config.CloseRetryAttempts = 1
	}

	log := deps.Logger
	if log == nil {
		log = logger.NewNop()
	}

	now := deps.Now
	if now == nil {
		now = time.Now
	}

	return &Manager{
		accountID:   accountID,
		config:      config,
		location:    location,
		store:       deps.Store,
		feed:        deps.Feed,
		dispatcher:  deps.Dispatcher,
		evaluator:   deps.Evaluator,
		gate:        deps.Gate,
		tracker:     deps.Tracker,
		logger:      log,
		now:         now,
		callbacks:   callbacks,
		mu:          sync.Mutex{},
		currentDay:  "",
		gateNotices: make(map[types.GateReason]string),
	}, nil
}

// AccountID returns the account the manager trades for.
func (m *Manager) AccountID() string {
	return m.accountID
}

// RunCycle runs one decision cycle. A feed failure skips the cycle without an error;
// persistence and venue failures abort it and are returned.
func (m *Manager) RunCycle(ctx context.Context) (CycleResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result, err := m.runCycle(ctx)
	if err != nil {
		m.logger.Error("Trading cycle failed",
			zap.String("account_id", m.accountID),
			zap.Error(err))

		if m.callbacks.OnCycleError != nil {
			(*m.callbacks.OnCycleError)(m.accountID, err)
		}
	}

	return result, err
}

//nolint:funcorder // helper method used by RunCycle
func (m *Manager) runCycle(ctx context.Context) (CycleResult, error) {
	now := m.now()
	result := CycleResult{
		AccountID:  m.accountID,
		State:      StateIdle,
		Skipped:    false,
		SkipReason: "",
		Snapshot:   optional.None[types.IndicatorSnapshot](),
		Decision:   optional.None[types.Decision](),
		Gated:      optional.None[types.GatedDecision](),
		Trade:      optional.None[types.Trade](),
		Outcome:    optional.None[types.CommandOutcome](),
		DaySummary: optional.None[types.DailySummary](),
	}

	account, err := m.reconcile(ctx, now)
	if err != nil {
		return result, err
	}

	summary, err := m.handleDayBoundary(ctx, now)
	if err != nil {
		return result, err
	}

	result.DaySummary = summary

	openTrade, err := m.store.ReadOpenTrade(ctx, m.accountID)
	if err != nil {
		return result, err
	}

	if openTrade.IsSome() {
		result.State = StateInTrade
		result.Trade = openTrade
	}

	if !account.AutoTradingEnabled {
		result.Skipped = true
		result.SkipReason = "auto-trading disabled"

		return result, nil
	}

	snapshot, err := m.feed.FetchIndicators(ctx, m.config.Symbol)
	if err != nil {
		m.logger.Warn("Skipping cycle, indicators unavailable",
			zap.String("account_id", m.accountID),
			zap.String("symbol", m.config.Symbol),
			zap.Bool("transient", errors.IsTransientFeedError(err)),
			zap.Error(err))

		result.Skipped = true
		result.SkipReason = err.Error()

		return result, nil
	}

	result.Snapshot = optional.Some(snapshot)

	todays, err := m.store.RealizedPnL(ctx, m.accountID, m.dayStart(now))
	if err != nil {
		return result, err
	}

	decision := m.evaluator.Evaluate(snapshot, openTrade)
	result.Decision = optional.Some(decision)

	var open *types.Trade

	if trade, takeErr := openTrade.Take(); takeErr == nil {
		open = &trade
	}

	gated := m.gate.Apply(risk.Input{
		Decision:       decision,
		Account:        account,
		TodaysRealized: todays,
		Snapshot:       snapshot,
		OpenTrade:      open,
		ProposedVolume: m.config.DefaultVolume,
	})
	result.Gated = optional.Some(gated)

	if gated.Gated() {
		if err := m.noteGate(ctx, gated, now); err != nil {
			return result, err
		}
	}

	switch {
	case gated.Action.IsOpen() && open == nil:
		trade, outcome, err := m.open(ctx, gated, now)
		result.Outcome = outcome
		if err != nil {
			return result, err
		}

		if trade.IsSome() {
			result.State = StateInTrade
			result.Trade = trade
		}
	case gated.Action == types.DecisionClose && open != nil:
		trade, outcome, err := m.close(ctx, *open, snapshot.Price, now)
		result.Outcome = outcome
		if err != nil {
			return result, err
		}

		result.State = StateIdle
		result.Trade = optional.Some(trade)
	default:
		if err := m.hold(ctx, decision, gated, open, snapshot, now); err != nil {
			return result, err
		}
	}

	m.updateTracker(ctx, result, snapshot)

	return result, nil
}

// open persists the OPEN command, dispatches it and records the trade only once the
// venue has acknowledged it.
//
//nolint:funcorder // helper method used by runCycle
func (m *Manager) open(ctx context.Context, gated types.GatedDecision, now time.Time) (optional.Option[types.Trade], optional.Option[types.CommandOutcome], error) {
	none := optional.None[types.Trade]()
	noOutcome := optional.None[types.CommandOutcome]()

	cmd := types.NewOpenCommand(uuid.NewString(), m.accountID, m.config.Symbol, gated, m.config.Confidence, now)
	if err := cmd.Validate(); err != nil {
		m.logger.Warn("Signal produced an invalid command",
			zap.String("account_id", m.accountID),
			zap.Error(err))

		return none, noOutcome, m.record(ctx, types.ActivityAnalysis,
			fmt.Sprintf("Skipped %s signal at $%.2f: %s", gated.Side(), gated.EntryPrice, err.Error()), now)
	}

	if err := m.store.CreateCommand(ctx, cmd); err != nil {
		return none, noOutcome, err
	}

	m.logger.Info("Dispatching open command",
		zap.String("account_id", m.accountID),
		zap.String("command_id", cmd.ID),
		zap.String("side", string(cmd.Side)),
		zap.Float64("volume", cmd.Volume),
		zap.Float64("price", cmd.Price))

	outcome, err := m.dispatcher.Dispatch(ctx, cmd)
	if err != nil || !outcome.Acknowledged() {
		return none, optional.Some(outcome), m.dispatchFailed(ctx, cmd, outcome, err, now)
	}

	// the venue holds the position now, so the ledger write must not be cancelled
	trade, err := m.applyOpenAcknowledgement(context.WithoutCancel(ctx), cmd, outcome, now)
	if err != nil {
		return none, optional.Some(outcome), err
	}

	return optional.Some(trade), optional.Some(outcome), nil
}

// close dispatches the CLOSE command with retries and applies the acknowledgement.
//
//nolint:funcorder // helper method used by runCycle
func (m *Manager) close(ctx context.Context, trade types.Trade, exitPrice float64, now time.Time) (types.Trade, optional.Option[types.CommandOutcome], error) {
	noOutcome := optional.None[types.CommandOutcome]()

	existing, err := m.store.GetCommand(ctx, types.CommandID(trade.ID, types.CommandActionClose))
	if err != nil {
		return trade, noOutcome, err
	}

	cmd, getErr := existing.Take()
	if getErr != nil {
		cmd = types.NewCloseCommand(trade, exitPrice, now)
		if err := m.store.CreateCommand(ctx, cmd); err != nil {
			return trade, noOutcome, err
		}
	} else {
		// a FAILED close is retried at today's price
		cmd.Status = types.CommandStatusPending
		cmd.Price = exitPrice
		cmd.Error = ""
		cmd.Applied = false
		cmd.UpdatedAt = now

		if err := m.store.UpdateCommand(ctx, cmd); err != nil {
			return trade, noOutcome, err
		}
	}

	return m.dispatchClose(ctx, cmd, trade, now)
}

//nolint:funcorder // helper method used by close and reconcile
func (m *Manager) dispatchClose(ctx context.Context, cmd types.TradeCommand, trade types.Trade, now time.Time) (types.Trade, optional.Option[types.CommandOutcome], error) {
	m.logger.Info("Dispatching close command",
		zap.String("account_id", m.accountID),
		zap.String("command_id", cmd.ID),
		zap.Float64("price", cmd.Price),
		zap.Int("attempts", m.config.CloseRetryAttempts))

	outcome, err := m.dispatcher.DispatchWithRetry(ctx, cmd, m.config.CloseRetryAttempts)
	if err != nil || !outcome.Acknowledged() {
		return trade, optional.Some(outcome), m.dispatchFailed(ctx, cmd, outcome, err, now)
	}

	closed, err := m.ApplyCloseAcknowledgement(context.WithoutCancel(ctx), cmd, outcome)

	return closed, optional.Some(outcome), err
}

// applyOpenAcknowledgement marks cmd ACKNOWLEDGED and records the trade it opened.
//
//nolint:funcorder // helper method used by open
func (m *Manager) applyOpenAcknowledgement(ctx context.Context, cmd types.TradeCommand, outcome types.CommandOutcome, now time.Time) (types.Trade, error) {
	cmd.Status = types.CommandStatusAcknowledged
	cmd.TicketID = outcome.TicketID
	cmd.Attempts = outcome.Attempts
	cmd.Error = ""
	cmd.UpdatedAt = now

	if err := m.store.UpdateCommand(ctx, cmd); err != nil {
		return types.Trade{}, err
	}

	return m.recordOpen(ctx, cmd, now)
}

// recordOpen writes the trade of an acknowledged OPEN command and marks the command applied.
// Every step is idempotent, so an interrupted call can be repeated.
//
//nolint:funcorder // helper method used by applyOpenAcknowledgement and reconcile
func (m *Manager) recordOpen(ctx context.Context, cmd types.TradeCommand, openedAt time.Time) (types.Trade, error) {
	trade := cmd.OpenedTrade(openedAt)

	if err := m.store.CreateTrade(ctx, trade); err != nil {
		return trade, err
	}

	if stored, err := m.store.GetTrade(ctx, trade.ID); err == nil && stored.IsSome() {
		trade = stored.Unwrap()
	}

	entry := types.NewActivity(m.accountID, types.ActivitySignal, openedMessage(trade), openedAt)
	entry.ID = cmd.ID

	if err := m.appendEntry(ctx, entry); err != nil {
		return trade, err
	}

	cmd.Applied = true
	if err := m.store.UpdateCommand(ctx, cmd); err != nil {
		return trade, err
	}

	m.logger.Info("Trade opened",
		zap.String("account_id", m.accountID),
		zap.String("trade_id", trade.ID),
		zap.String("side", string(trade.Side)),
		zap.Float64("entry", trade.EntryPrice),
		zap.Float64("stop_loss", trade.StopLoss),
		zap.Float64("take_profit", trade.TakeProfit))

	if m.callbacks.OnTradeOpened != nil {
		if err := (*m.callbacks.OnTradeOpened)(trade); err != nil {
			m.logger.Warn("OnTradeOpened callback failed", zap.Error(err))
		}
	}

	return trade, nil
}

// ApplyCloseAcknowledgement settles an acknowledged CLOSE command against the ledger:
// it closes the trade at the command's price, recomputes the balance and narrates the
// result. Applying the same acknowledgement again changes nothing.
func (m *Manager) ApplyCloseAcknowledgement(ctx context.Context, cmd types.TradeCommand, outcome types.CommandOutcome) (types.Trade, error) {
	now := m.now()

	stored, err := m.store.GetCommand(ctx, cmd.ID)
	if err != nil {
		return types.Trade{}, err
	}

	alreadyApplied := stored.IsSome() && stored.Unwrap().Applied

	tradeOpt, err := m.store.GetTrade(ctx, cmd.CorrelationID)
	if err != nil {
		return types.Trade{}, err
	}

	trade, takeErr := tradeOpt.Take()
	if takeErr != nil {
		return types.Trade{}, errors.Newf(errors.ErrCodeInvariantViolation,
			"close command %s acknowledged for unknown trade %s", cmd.ID, cmd.CorrelationID)
	}

	if alreadyApplied {
		return trade, nil
	}

	cmd.Status = types.CommandStatusAcknowledged
	if outcome.TicketID != "" {
		cmd.TicketID = outcome.TicketID
	}

	if outcome.Attempts > 0 {
		cmd.Attempts = outcome.Attempts
	}

	cmd.Error = ""
	cmd.UpdatedAt = now

	if err := m.store.UpdateCommand(ctx, cmd); err != nil {
		return trade, err
	}

	changed := false

	if !trade.Status.IsTerminal() {
		patch := trade.ClosePatch(cmd.Price, m.config.ContractMultiplier, now)

		changed, err = m.store.UpdateTrade(ctx, trade.ID, patch)
		if err != nil {
			return trade, err
		}

		if changed {
			trade = trade.Apply(patch)
		}
	}

	if _, _, err := ledger.SyncBalance(ctx, m.store, m.accountID, now); err != nil {
		return trade, err
	}

	if changed {
		if err := m.narrateClose(ctx, cmd, trade, now); err != nil {
			return trade, err
		}
	}

	cmd.Applied = true
	if err := m.store.UpdateCommand(ctx, cmd); err != nil {
		return trade, err
	}

	if changed {
		m.logger.Info("Trade closed",
			zap.String("account_id", m.accountID),
			zap.String("trade_id", trade.ID),
			zap.String("status", string(trade.Status)),
			zap.Float64("exit", cmd.Price),
			zap.Float64("profit", trade.Profit.TakeOr(0)))

		if m.tracker != nil {
			m.tracker.RecordTrade(trade)
		}

		if m.callbacks.OnTradeClosed != nil {
			if err := (*m.callbacks.OnTradeClosed)(trade); err != nil {
				m.logger.Warn("OnTradeClosed callback failed", zap.Error(err))
			}
		}
	}

	return trade, nil
}

//nolint:funcorder // helper method used by ApplyCloseAcknowledgement
func (m *Manager) narrateClose(ctx context.Context, cmd types.TradeCommand, trade types.Trade, now time.Time) error {
	account, err := m.store.GetAccount(ctx, m.accountID)
	if err != nil {
		return err
	}

	today, err := m.store.RealizedPnL(ctx, m.accountID, m.dayStart(now))
	if err != nil {
		return err
	}

	entry := types.NewActivity(m.accountID, types.ActivityResult,
		closedMessage(trade, today, account.DailyProfitTarget), now)
	entry.ID = cmd.ID

	return m.appendEntry(ctx, entry)
}

// dispatchFailed marks cmd FAILED and narrates it. It returns the error the cycle ends with.
//
//nolint:funcorder // helper method used by open and dispatchClose
func (m *Manager) dispatchFailed(ctx context.Context, cmd types.TradeCommand, outcome types.CommandOutcome, cause error, now time.Time) error {
	if cause == nil {
		cause = errors.Newf(errors.ErrCodeCommandRejected, "venue did not acknowledge command %s: %s", cmd.ID, outcome.Error)
	}

	if err := m.markFailed(context.WithoutCancel(ctx), cmd, outcome.Attempts, cause, now); err != nil {
		return err
	}

	return cause
}

//nolint:funcorder // helper method used by dispatchFailed and reconcile
func (m *Manager) markFailed(ctx context.Context, cmd types.TradeCommand, attempts int, cause error, now time.Time) error {
	// a timed out OPEN may still fill, so reconcile asks the venue about it once more
	cmd.Applied = !awaitsConfirmation(cmd, cause)
	cmd.Status = types.CommandStatusFailed
	cmd.Error = cause.Error()
	cmd.UpdatedAt = now

	if attempts > 0 {
		cmd.Attempts = attempts
	}

	if err := m.store.UpdateCommand(ctx, cmd); err != nil {
		return err
	}

	m.logger.Warn("Command failed",
		zap.String("account_id", m.accountID),
		zap.String("command_id", cmd.ID),
		zap.String("action", string(cmd.Action)),
		zap.Error(cause))

	return m.record(ctx, types.ActivityUpdate,
		fmt.Sprintf("%s command for %s trade failed: %s", cmd.Action, cmd.Side, cause.Error()), now)
}

// awaitsConfirmation reports whether a failed command may still have been executed
// by the venue. Only the first timeout of an OPEN qualifies.
func awaitsConfirmation(cmd types.TradeCommand, cause error) bool {
	return cmd.Action == types.CommandActionOpen &&
		cmd.Status != types.CommandStatusFailed &&
		errors.HasCode(cause, errors.ErrCodeVenueTimeout)
}

//nolint:funcorder // helper method used by runCycle
func (m *Manager) hold(ctx context.Context, decision types.Decision, gated types.GatedDecision, open *types.Trade, snapshot types.IndicatorSnapshot, now time.Time) error {
	if open != nil {
		unrealized := open.UnrealizedProfit(snapshot.Price, m.config.ContractMultiplier)

		return m.record(ctx, types.ActivityUpdate,
			runningMessage(*open, snapshot.Price, unrealized, now.Sub(open.OpenedAt)), now)
	}

	if gated.Gated() {
		return nil
	}

	m.logger.Debug("No entry",
		zap.String("account_id", m.accountID),
		zap.Float64("price", snapshot.Price),
		zap.Float64("ema_short", snapshot.ShortAvg),
		zap.Float64("ema_long", snapshot.LongAvg),
		zap.Float64("rsi", snapshot.Momentum),
		zap.Float64("atr", snapshot.Volatility))

	return m.record(ctx, types.ActivityAnalysis, decision.Reason, now)
}

// noteGate narrates a gate intervention. Held entries are narrated once per day and reason.
//
//nolint:funcorder // helper method used by runCycle
func (m *Manager) noteGate(ctx context.Context, gated types.GatedDecision, now time.Time) error {
	day := m.day(now)

	if gated.Action == types.DecisionHold && m.gateNotices[gated.Reason] == day {
		return nil
	}

	if err := m.record(ctx, types.ActivityUpdate, gated.Message, now); err != nil {
		return err
	}

	m.gateNotices[gated.Reason] = day

	return nil
}

//nolint:funcorder // helper method used by runCycle
func (m *Manager) updateTracker(ctx context.Context, result CycleResult, snapshot types.IndicatorSnapshot) {
	if m.tracker == nil {
		return
	}

	account, err := m.store.GetAccount(ctx, m.accountID)
	if err != nil {
		return
	}

	unrealized := 0.0

	if trade, err := result.Trade.Take(); err == nil && trade.Status == types.TradeStatusOpen {
		unrealized = trade.UnrealizedProfit(snapshot.Price, m.config.ContractMultiplier)
	}

	m.tracker.SetPosition(account.CurrentBalance, unrealized)
}

//nolint:funcorder // helper method used throughout the cycle
func (m *Manager) record(ctx context.Context, category types.ActivityCategory, message string, at time.Time) error {
	return m.appendEntry(ctx, types.NewActivity(m.accountID, category, message, at))
}

//nolint:funcorder // helper method used throughout the cycle
func (m *Manager) appendEntry(ctx context.Context, entry types.ActivityLogEntry) error {
	if err := m.store.AppendActivity(ctx, entry); err != nil {
		return err
	}

	m.logger.Debug("Activity",
		zap.String("account_id", m.accountID),
		zap.String("category", string(entry.Category)),
		zap.String("message", entry.Message))

	if m.callbacks.OnActivity != nil {
		(*m.callbacks.OnActivity)(entry)
	}

	return nil
}

// day returns the trading day of t in the day boundary timezone.
func (m *Manager) day(t time.Time) string {
	return t.In(m.location).Format(time.DateOnly)
}

// dayStart returns midnight of t's trading day.
func (m *Manager) dayStart(t time.Time) time.Time {
	local := t.In(m.location)

	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, m.location)
}
