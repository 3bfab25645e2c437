package engine

import (
	"context"
	"time"

	"github.com/rxtech-lab/argo-autotrader/internal/ledger"
	"github.com/rxtech-lab/argo-autotrader/internal/types"
)

// SetAutoTrading toggles the account's auto-trading flag and narrates the change.
// Open trades and in-flight commands are left as they are.
func SetAutoTrading(ctx context.Context, store ledger.Store, accountID string, enabled bool, now time.Time) (types.Account, error) {
	current, err := store.GetAccount(ctx, accountID)
	if err != nil {
		return types.Account{}, err
	}

	if current.AutoTradingEnabled == enabled {
		return current, nil
	}

	account, err := ledger.SetAutoTrading(ctx, store, accountID, enabled, now)
	if err != nil {
		return types.Account{}, err
	}

	entry := types.NewActivity(accountID, types.ActivityUpdate, autoTradingMessage(account), now)
	if err := store.AppendActivity(ctx, entry); err != nil {
		return account, err
	}

	return account, nil
}
