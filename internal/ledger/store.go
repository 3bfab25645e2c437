// Package ledger is the system of record for accounts, trades, commands and
// the activity narration. Every write is idempotent under retry.
package ledger

import (
	"context"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-autotrader/internal/types"
)

// Store persists the trading aggregate. Implementations never decide anything;
// the lifecycle manager is the only writer of trades and commands.
type Store interface {
	// CreateAccount inserts the account unless one with the same id exists.
	CreateAccount(ctx context.Context, account types.Account) error
	// GetAccount returns ErrCodeAccountNotFound when the id is unknown.
	GetAccount(ctx context.Context, id string) (types.Account, error)
	ListAccounts(ctx context.Context) ([]types.Account, error)
	// SaveAccount writes the account if its Version still matches the stored one
	// and returns it with the bumped version. A mismatch yields ErrCodeVersionConflict.
	SaveAccount(ctx context.Context, account types.Account) (types.Account, error)

	// CreateTrade inserts the trade. Re-inserting the same id is a no-op.
	// Inserting a second OPEN trade for an account yields ErrCodeInvariantViolation.
	CreateTrade(ctx context.Context, trade types.Trade) error
	// UpdateTrade closes an OPEN trade. It reports false without changing anything
	// when the trade is already terminal.
	UpdateTrade(ctx context.Context, id string, patch types.TradePatch) (bool, error)
	GetTrade(ctx context.Context, id string) (optional.Option[types.Trade], error)
	// ReadOpenTrade returns the account's open trade, or ErrCodeInvariantViolation
	// when more than one is open.
	ReadOpenTrade(ctx context.Context, accountID string) (optional.Option[types.Trade], error)
	ListTrades(ctx context.Context, filter TradeFilter) ([]types.Trade, error)
	// RealizedPnL sums the profit of trades closed at or after since. A zero since
	// covers every closed trade.
	RealizedPnL(ctx context.Context, accountID string, since time.Time) (float64, error)

	// CreateCommand inserts the command unless one with the same id exists.
	CreateCommand(ctx context.Context, cmd types.TradeCommand) error
	// UpdateCommand overwrites the mutable fields of an existing command.
	UpdateCommand(ctx context.Context, cmd types.TradeCommand) error
	GetCommand(ctx context.Context, id string) (optional.Option[types.TradeCommand], error)
	// ListUnsettledCommands returns PENDING commands and every command the ledger
	// has not marked applied yet, oldest first.
	ListUnsettledCommands(ctx context.Context, accountID string) ([]types.TradeCommand, error)

	// AppendActivity inserts the entry unless one with the same id exists.
	AppendActivity(ctx context.Context, entry types.ActivityLogEntry) error
	// ListActivity returns the newest entries first. A zero limit returns everything.
	ListActivity(ctx context.Context, accountID string, limit int) ([]types.ActivityLogEntry, error)

	Close() error
}

// TradeFilter narrows ListTrades. Zero values mean no filter.
type TradeFilter struct {
	AccountID  string
	Statuses   []types.TradeStatus
	ClosedFrom time.Time
	ClosedTo   time.Time
	Limit      int
}

// ClosedStatuses selects every terminal trade.
var ClosedStatuses = []types.TradeStatus{types.TradeStatusWon, types.TradeStatusLost}

func (f TradeFilter) matches(trade types.Trade) bool {
	if f.AccountID != "" && trade.AccountID != f.AccountID {
		return false
	}

	if len(f.Statuses) > 0 {
		found := false

		for _, status := range f.Statuses {
			if trade.Status == status {
				found = true

				break
			}
		}

		if !found {
			return false
		}
	}

	if !f.ClosedFrom.IsZero() || !f.ClosedTo.IsZero() {
		closedAt, err := trade.ClosedAt.Take()
		if err != nil {
			return false
		}

		if !f.ClosedFrom.IsZero() && closedAt.Before(f.ClosedFrom) {
			return false
		}

		if !f.ClosedTo.IsZero() && !closedAt.Before(f.ClosedTo) {
			return false
		}
	}

	return true
}
