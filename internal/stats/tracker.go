package stats

import (
	"os"
	"sync"
	"time"

	"github.com/rxtech-lab/argo-autotrader/internal/logger"
	"github.com/rxtech-lab/argo-autotrader/internal/types"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// HoldingTime is in seconds.
type HoldingTime struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
	Avg int `yaml:"avg" json:"avg"`
}

// Report is the content of a session stats file.
type Report struct {
	AccountID     string             `yaml:"account_id" json:"account_id"`
	RunID         string             `yaml:"run_id" json:"run_id"`
	SessionStart  time.Time          `yaml:"session_start" json:"session_start"`
	LastUpdated   time.Time          `yaml:"last_updated" json:"last_updated"`
	Balance       float64            `yaml:"balance" json:"balance"`
	UnrealizedPnL float64            `yaml:"unrealized_pnl" json:"unrealized_pnl"`
	Daily         types.DailySummary `yaml:"daily" json:"daily"`
	Cumulative    types.DailySummary `yaml:"cumulative" json:"cumulative"`
	HoldingTime   HoldingTime        `yaml:"holding_time" json:"holding_time"`
	TradesFile    string             `yaml:"trades_file,omitempty" json:"trades_file,omitempty"`
	ActivityFile  string             `yaml:"activity_file,omitempty" json:"activity_file,omitempty"`
}

// Tracker keeps the daily and session statistics of one account.
type Tracker struct {
	accountID     string
	runID         string
	sessionStart  time.Time
	currentDate   string
	balance       float64
	unrealizedPnL float64

	daily      *Accumulator
	cumulative *Accumulator

	mu     sync.Mutex
	logger *logger.Logger
}

// NewTracker creates a tracker for accountID starting on the date of sessionStart.
func NewTracker(accountID, runID string, sessionStart time.Time, log *logger.Logger) *Tracker {
	return &Tracker{
		accountID:     accountID,
		runID:         runID,
		sessionStart:  sessionStart,
		currentDate:   sessionStart.Format(time.DateOnly),
		balance:       0,
		unrealizedPnL: 0,
		daily:         NewAccumulator(),
		cumulative:    NewAccumulator(),
		mu:            sync.Mutex{},
		logger:        log,
	}
}

// RecordTrade adds a closed trade to the daily and session figures.
func (t *Tracker) RecordTrade(trade types.Trade) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.daily.Record(trade)
	t.cumulative.Record(trade)

	t.logger.Debug("Trade recorded",
		zap.String("trade_id", trade.ID),
		zap.Float64("profit", trade.Profit.TakeOr(0)),
		zap.Int("total_trades", t.cumulative.TotalTrades))
}

// SetPosition updates the account balance and the open trade's unrealized P/L.
func (t *Tracker) SetPosition(balance, unrealizedPnL float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.balance = balance
	t.unrealizedPnL = unrealizedPnL
}

// HandleDateBoundary resets the daily figures and returns the finished day's summary.
func (t *Tracker) HandleDateBoundary(newDate string, at time.Time) types.DailySummary {
	t.mu.Lock()
	defer t.mu.Unlock()

	finished := t.daily.Summary(t.accountID, t.currentDate, at)
	oldDate := t.currentDate
	t.currentDate = newDate
	t.daily = NewAccumulator()

	t.logger.Info("Date boundary handled, daily stats reset",
		zap.String("account_id", t.accountID),
		zap.String("old_date", oldDate),
		zap.String("new_date", newDate))

	return finished
}

// SetRunID names the session run the report belongs to.
func (t *Tracker) SetRunID(runID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.runID = runID
}

// CurrentDate returns the day the daily figures belong to.
func (t *Tracker) CurrentDate() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.currentDate
}

// Report snapshots the tracker.
func (t *Tracker) Report(now time.Time) Report {
	t.mu.Lock()
	defer t.mu.Unlock()

	return Report{
		AccountID:     t.accountID,
		RunID:         t.runID,
		SessionStart:  t.sessionStart,
		LastUpdated:   now,
		Balance:       t.balance,
		UnrealizedPnL: t.unrealizedPnL,
		Daily:         t.daily.Summary(t.accountID, t.currentDate, now),
		Cumulative:    t.cumulative.Summary(t.accountID, t.sessionStart.Format(time.DateOnly), now),
		HoldingTime:   t.cumulative.HoldingTime(),
		TradesFile:    "",
		ActivityFile:  "",
	}
}

// WriteReport writes report as YAML to path.
func WriteReport(path string, report Report) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, "failed to marshal stats report", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(errors.ErrCodeExportFailed, err, "failed to write stats report to %s", path)
	}

	return nil
}

// ReadReport reads a report written by WriteReport.
func ReadReport(path string) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Report{}, errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to read stats report %s", path)
	}

	var report Report
	if err := yaml.Unmarshal(data, &report); err != nil {
		return Report{}, errors.Wrapf(errors.ErrCodeInvalidParameter, err, "failed to parse stats report %s", path)
	}

	return report, nil
}
