// Package advisory asks an external service for a next-day position size
// suggestion. Suggestions are narration only and never gate a trade.
package advisory

import (
	"context"
	"fmt"
	"time"

	"github.com/rxtech-lab/argo-autotrader/internal/logger"
	"github.com/rxtech-lab/argo-autotrader/internal/types"
)

// Advisor returns a position size suggestion for the next trading day.
type Advisor interface {
	Suggest(ctx context.Context, request types.AdvisoryRequest) (types.AdvisorySuggestion, error)
}

// Config enables the HTTP advisor.
type Config struct {
	Enabled bool          `json:"enabled" yaml:"enabled" jsonschema:"title=Enabled,default=false"`
	URL     string        `json:"url" yaml:"url" jsonschema:"title=Advisory URL" validate:"required_if=Enabled true,omitempty,url"`
	APIKey  string        `json:"api_key" yaml:"api_key" jsonschema:"title=API Key"`
	Timeout time.Duration `json:"timeout" yaml:"timeout" jsonschema:"title=Timeout,default=20s"`
}

// New returns the HTTP advisor when enabled and a no-op advisor otherwise.
func New(config Config, log *logger.Logger) Advisor {
	if !config.Enabled {
		return Noop{}
	}

	return NewHTTPAdvisor(config, log)
}

// Noop never has a suggestion.
type Noop struct{}

func (Noop) Suggest(_ context.Context, _ types.AdvisoryRequest) (types.AdvisorySuggestion, error) {
	return types.AdvisorySuggestion{SuggestedPositionSize: "", Reasoning: ""}, nil
}

// BuildRequest describes a finished day and the latest indicators in the
// plain-text form the advisory service expects.
func BuildRequest(summary types.DailySummary, snapshot types.IndicatorSnapshot) types.AdvisoryRequest {
	trend := "ranging"

	switch {
	case snapshot.ShortAvg > snapshot.LongAvg:
		trend = "trending up"
	case snapshot.ShortAvg < snapshot.LongAvg:
		trend = "trending down"
	}

	return types.AdvisoryRequest{
		AccountID: summary.AccountID,
		PreviousTradingData: fmt.Sprintf(
			"Date: %s. Trades: %d (%d won, %d lost). Win rate: %.1f%%. Profit/loss: %.2f. Max drawdown: %.2f.",
			summary.Date, summary.TotalTrades, summary.WinningTrades, summary.LosingTrades,
			summary.WinRate*100, summary.RealizedPnL, summary.MaxDrawdown),
		CurrentMarketConditions: fmt.Sprintf("%s at %.2f, %s, volatility (ATR) %.2f.",
			snapshot.Symbol, snapshot.Price, trend, snapshot.Volatility),
		TechnicalIndicators: fmt.Sprintf("EMA short %.2f, EMA long %.2f, RSI %.1f, ATR %.2f.",
			snapshot.ShortAvg, snapshot.LongAvg, snapshot.Momentum, snapshot.Volatility),
	}
}
