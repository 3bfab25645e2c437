package ledger

import (
	"context"
	"time"

	"github.com/rxtech-lab/argo-autotrader/internal/types"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
	"github.com/shopspring/decimal"
)

const maxSaveAttempts = 3

// SetAutoTrading flips the account's auto-trading flag, retrying on version conflicts.
func SetAutoTrading(ctx context.Context, store Store, accountID string, enabled bool, now time.Time) (types.Account, error) {
	return mutateAccount(ctx, store, accountID, func(account *types.Account) bool {
		if account.AutoTradingEnabled == enabled {
			return false
		}

		account.AutoTradingEnabled = enabled
		account.UpdatedAt = now

		return true
	})
}

// SyncBalance recomputes the current balance from the closed trades in the ledger.
// It reports whether the stored balance had to be corrected.
func SyncBalance(ctx context.Context, store Store, accountID string, now time.Time) (types.Account, bool, error) {
	realized, err := store.RealizedPnL(ctx, accountID, time.Time{})
	if err != nil {
		return types.Account{}, false, err
	}

	changed := false

	account, err := mutateAccount(ctx, store, accountID, func(account *types.Account) bool {
		balance, _ := decimal.NewFromFloat(account.StartingBalance).
			Add(decimal.NewFromFloat(realized)).
			Round(2).
			Float64()
		if balance == account.CurrentBalance {
			changed = false

			return false
		}

		account.CurrentBalance = balance
		account.UpdatedAt = now
		changed = true

		return true
	})

	return account, changed, err
}

// mutateAccount re-reads the account, applies fn and saves it if fn reports a change.
func mutateAccount(ctx context.Context, store Store, accountID string, fn func(*types.Account) bool) (types.Account, error) {
	var lastErr error

	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		account, err := store.GetAccount(ctx, accountID)
		if err != nil {
			return types.Account{}, err
		}

		if !fn(&account) {
			return account, nil
		}

		saved, err := store.SaveAccount(ctx, account)
		if err == nil {
			return saved, nil
		}

		if !errors.HasCode(err, errors.ErrCodeVersionConflict) {
			return types.Account{}, err
		}

		lastErr = err
	}

	return types.Account{}, errors.Wrapf(errors.ErrCodeVersionConflict, lastErr,
		"account %s kept changing after %d attempts", accountID, maxSaveAttempts)
}
