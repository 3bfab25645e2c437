package engine

import (
	"fmt"
	"time"

	"github.com/rxtech-lab/argo-autotrader/internal/risk"
	"github.com/rxtech-lab/argo-autotrader/internal/types"
)

func openedMessage(trade types.Trade) string {
	return fmt.Sprintf("Opened %s trade: %.2f lots @ $%.2f (SL $%.2f, TP $%.2f, %s confidence)",
		trade.Side, trade.Volume, trade.EntryPrice, trade.StopLoss, trade.TakeProfit, trade.Confidence)
}

func closedMessage(trade types.Trade, today, target float64) string {
	profit := trade.Profit.TakeOr(0)

	result := "TRADE WON"
	if trade.Status == types.TradeStatusLost {
		result = "TRADE LOST"
	}

	return fmt.Sprintf("Closed trade: P/L $%.2f. %s: %s | Today: %s/%s",
		profit, result, risk.FormatSignedMoney(profit), risk.FormatSignedMoney(today), risk.FormatMoney(target))
}

func runningMessage(trade types.Trade, price, unrealized float64, elapsed time.Duration) string {
	return fmt.Sprintf("Trade running: %s @ $%.2f, Current: $%.2f, P/L: %s, Duration: %s",
		trade.Side, trade.EntryPrice, price, risk.FormatSignedMoney(unrealized), elapsed.Truncate(time.Second))
}

func summaryMessage(summary types.DailySummary) string {
	return fmt.Sprintf("DAILY SUMMARY: %d trades, %d wins (%.1f%%), %s profit, max drawdown %s.",
		summary.TotalTrades, summary.WinningTrades, summary.WinRate*100,
		risk.FormatSignedMoney(summary.RealizedPnL), risk.FormatMoney(summary.MaxDrawdown))
}

func autoTradingMessage(account types.Account) string {
	if !account.AutoTradingEnabled {
		return "AUTO-TRADING: PAUSED. Open trades stay in place until trading resumes."
	}

	return fmt.Sprintf("AUTO-TRADING: ACTIVE. Goal: %s Profit. Max Risk: %s.",
		risk.FormatMoney(account.DailyProfitTarget), risk.FormatMoney(account.DailyRiskLimit))
}
