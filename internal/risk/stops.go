// Package risk gates evaluator decisions against the account's daily limits.
package risk

import "github.com/rxtech-lab/argo-autotrader/internal/types"

const (
	DefaultStopATRMultiplier   = 1.5
	DefaultTargetATRMultiplier = 2.0
)

// DeriveStopAndTarget places the protective stop and profit target around entry
// using the volatility measure. LONG stops sit below entry, SHORT stops above.
func DeriveStopAndTarget(side types.Side, entry, atr, stopMultiplier, targetMultiplier float64) (float64, float64) {
	if side == types.SideShort {
		return entry + stopMultiplier*atr, entry - targetMultiplier*atr
	}

	return entry - stopMultiplier*atr, entry + targetMultiplier*atr
}
