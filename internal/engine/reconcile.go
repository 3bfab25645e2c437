package engine

import (
	"context"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-autotrader/internal/ledger"
	"github.com/rxtech-lab/argo-autotrader/internal/stats"
	"github.com/rxtech-lab/argo-autotrader/internal/types"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
	"go.uber.org/zap"
)

// reconcile re-reads the account and settles every command a previous cycle left
// behind before the new cycle trusts the ledger.
//
//nolint:funcorder // helper method used by runCycle
func (m *Manager) reconcile(ctx context.Context, now time.Time) (types.Account, error) {
	commands, err := m.store.ListUnsettledCommands(ctx, m.accountID)
	if err != nil {
		return types.Account{}, err
	}

	for _, cmd := range commands {
		m.logger.Info("Settling command from an earlier cycle",
			zap.String("account_id", m.accountID),
			zap.String("command_id", cmd.ID),
			zap.String("status", string(cmd.Status)))

		if err := m.settle(ctx, cmd, now); err != nil {
			return types.Account{}, err
		}
	}

	// fails with an invariant violation when two trades are open
	if _, err := m.store.ReadOpenTrade(ctx, m.accountID); err != nil {
		return types.Account{}, err
	}

	account, changed, err := ledger.SyncBalance(ctx, m.store, m.accountID, now)
	if err != nil {
		return types.Account{}, err
	}

	if changed {
		m.logger.Warn("Account balance corrected from closed trades",
			zap.String("account_id", m.accountID),
			zap.Float64("balance", account.CurrentBalance))
	}

	return account, nil
}

//nolint:funcorder // helper method used by reconcile
func (m *Manager) settle(ctx context.Context, cmd types.TradeCommand, now time.Time) error {
	if cmd.Status == types.CommandStatusAcknowledged {
		switch cmd.Action {
		case types.CommandActionOpen:
			_, err := m.recordOpen(ctx, cmd, cmd.UpdatedAt)

			return err
		case types.CommandActionClose:
			_, err := m.ApplyCloseAcknowledgement(ctx, cmd, outcomeOf(cmd))

			return err
		default:
			cmd.Applied = true
			cmd.UpdatedAt = now

			return m.store.UpdateCommand(ctx, cmd)
		}
	}

	if cmd.Status == types.CommandStatusFailed && cmd.Action != types.CommandActionOpen {
		cmd.Applied = true
		cmd.UpdatedAt = now

		return m.store.UpdateCommand(ctx, cmd)
	}

	switch cmd.Action {
	case types.CommandActionOpen:
		return m.resumeOpen(ctx, cmd, now)
	case types.CommandActionClose:
		return m.resumeClose(ctx, cmd, now)
	default:
		return m.markFailed(ctx, cmd, 0,
			errors.Newf(errors.ErrCodeUnsupportedAction, "%s commands are not resumed", cmd.Action), now)
	}
}

// resumeOpen redispatches an OPEN command whose answer was never recorded, or whose
// acknowledgement timed out. The venue deduplicates by command id, so a fill it already
// made is only acknowledged again and the trade is recorded instead of opened twice.
//
//nolint:funcorder // helper method used by settle
func (m *Manager) resumeOpen(ctx context.Context, cmd types.TradeCommand, now time.Time) error {
	open, err := m.store.ReadOpenTrade(ctx, m.accountID)
	if err != nil {
		return err
	}

	if open.IsSome() {
		return m.markFailed(ctx, cmd, 0, errors.Newf(errors.ErrCodeInvariantViolation,
			"trade %s is already open", open.Unwrap().ID), now)
	}

	outcome, err := m.dispatcher.Dispatch(ctx, cmd)
	if err != nil || !outcome.Acknowledged() {
		return m.ignoreVenueError(m.dispatchFailed(ctx, cmd, outcome, err, now))
	}

	if cmd.Status == types.CommandStatusFailed {
		m.logger.Info("Venue confirmed an open command that had timed out",
			zap.String("account_id", m.accountID),
			zap.String("command_id", cmd.ID),
			zap.String("ticket_id", outcome.TicketID))
	}

	_, err = m.applyOpenAcknowledgement(context.WithoutCancel(ctx), cmd, outcome, now)

	return err
}

// resumeClose retries a pending CLOSE while its trade is still open.
//
//nolint:funcorder // helper method used by settle
func (m *Manager) resumeClose(ctx context.Context, cmd types.TradeCommand, now time.Time) error {
	tradeOpt, err := m.store.GetTrade(ctx, cmd.CorrelationID)
	if err != nil {
		return err
	}

	trade, takeErr := tradeOpt.Take()
	if takeErr != nil || trade.Status.IsTerminal() {
		return m.markFailed(ctx, cmd, 0, errors.Newf(errors.ErrCodeTradeNotFound,
			"trade %s is not open", cmd.CorrelationID), now)
	}

	_, _, err = m.dispatchClose(ctx, cmd, trade, now)

	return m.ignoreVenueError(err)
}

// ignoreVenueError drops venue failures during reconciliation: the command is already
// FAILED and the cycle may go on.
func (m *Manager) ignoreVenueError(err error) error {
	if err != nil && errors.IsVenueDispatchError(err) {
		m.logger.Warn("Command could not be settled", zap.String("account_id", m.accountID), zap.Error(err))

		return nil
	}

	return err
}

// handleDayBoundary writes the summary of the finished day on the first cycle of a new one.
//
//nolint:funcorder // helper method used by runCycle
func (m *Manager) handleDayBoundary(ctx context.Context, now time.Time) (optional.Option[types.DailySummary], error) {
	today := m.day(now)

	if m.currentDay == "" || m.currentDay == today {
		m.currentDay = today

		return optional.None[types.DailySummary](), nil
	}

	finished := m.currentDay
	start, err := time.ParseInLocation(time.DateOnly, finished, m.location)
	if err != nil {
		return optional.None[types.DailySummary](), errors.Wrap(errors.ErrCodeInvalidParameter, "invalid trading day", err)
	}

	trades, err := m.store.ListTrades(ctx, ledger.TradeFilter{
		AccountID:  m.accountID,
		Statuses:   ledger.ClosedStatuses,
		ClosedFrom: start,
		ClosedTo:   m.dayStart(now),
		Limit:      0,
	})
	if err != nil {
		return optional.None[types.DailySummary](), err
	}

	summary := stats.Summarize(m.accountID, finished, trades, now)

	entry := types.NewActivity(m.accountID, types.ActivitySummary, summaryMessage(summary), now)
	entry.ID = "summary:" + m.accountID + ":" + finished

	if err := m.appendEntry(ctx, entry); err != nil {
		return optional.None[types.DailySummary](), err
	}

	if m.tracker != nil {
		m.tracker.HandleDateBoundary(today, now)
	}

	m.currentDay = today

	m.logger.Info("Trading day closed",
		zap.String("account_id", m.accountID),
		zap.String("date", finished),
		zap.Int("trades", summary.TotalTrades),
		zap.Float64("realized_pnl", summary.RealizedPnL))

	if m.callbacks.OnDailySummary != nil {
		(*m.callbacks.OnDailySummary)(summary)
	}

	return optional.Some(summary), nil
}

func outcomeOf(cmd types.TradeCommand) types.CommandOutcome {
	return types.CommandOutcome{
		CommandID:     cmd.ID,
		CorrelationID: cmd.CorrelationID,
		Status:        cmd.Status,
		TicketID:      cmd.TicketID,
		Error:         cmd.Error,
		Attempts:      cmd.Attempts,
		Duplicate:     true,
	}
}
