package engine

import "github.com/rxtech-lab/argo-autotrader/internal/types"

// OnTradeOpenedCallback is called after an acknowledged OPEN is recorded in the ledger.
type OnTradeOpenedCallback func(trade types.Trade) error

// OnTradeClosedCallback is called after an acknowledged CLOSE is recorded in the ledger.
type OnTradeClosedCallback func(trade types.Trade) error

// OnActivityCallback is called for every activity entry written.
type OnActivityCallback func(entry types.ActivityLogEntry)

// OnDailySummaryCallback is called when a trading day has been summarized.
type OnDailySummaryCallback func(summary types.DailySummary)

// OnCycleErrorCallback is called when a cycle ends with an error.
type OnCycleErrorCallback func(accountID string, err error)

// Callbacks holds optional hooks into the lifecycle manager.
// All fields are pointers - nil means no callback will be invoked.
type Callbacks struct {
	OnTradeOpened  *OnTradeOpenedCallback
	OnTradeClosed  *OnTradeClosedCallback
	OnActivity     *OnActivityCallback
	OnDailySummary *OnDailySummaryCallback
	OnCycleError   *OnCycleErrorCallback
}
