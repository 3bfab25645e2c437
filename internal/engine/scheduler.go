package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rxtech-lab/argo-autotrader/internal/advisory"
	"github.com/rxtech-lab/argo-autotrader/internal/ledger"
	"github.com/rxtech-lab/argo-autotrader/internal/logger"
	"github.com/rxtech-lab/argo-autotrader/internal/session"
	"github.com/rxtech-lab/argo-autotrader/internal/stats"
	"github.com/rxtech-lab/argo-autotrader/internal/types"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultAdvisoryTimeout = 20 * time.Second

// SchedulerOptions wires the scheduler. Advisor, Session and Trackers are optional.
type SchedulerOptions struct {
	Interval        time.Duration
	AdvisoryTimeout time.Duration
	Store           ledger.Store
	Advisor         advisory.Advisor
	Session         *session.Manager
	// Trackers holds the stats tracker of each account, keyed by account id.
	Trackers map[string]*stats.Tracker
	Logger   *logger.Logger
	Now      func() time.Time
}

// Scheduler runs one serialized cycle loop per account, accounts in parallel.
type Scheduler struct {
	managers        []*Manager
	interval        time.Duration
	advisoryTimeout time.Duration
	store           ledger.Store
	advisor         advisory.Advisor
	session         *session.Manager
	trackers        map[string]*stats.Tracker
	logger          *logger.Logger
	now             func() time.Time

	advisories sync.WaitGroup
}

// NewScheduler creates a scheduler for managers.
func NewScheduler(managers []*Manager, opts SchedulerOptions) (*Scheduler, error) {
	if len(managers) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "no accounts to trade")
	}

	if opts.Store == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "scheduler needs a ledger store")
	}

	if opts.Interval <= 0 {
		opts.Interval = DefaultConfig().CycleInterval
	}

	if opts.AdvisoryTimeout <= 0 {
		opts.AdvisoryTimeout = defaultAdvisoryTimeout
	}

	if opts.Advisor == nil {
		opts.Advisor = advisory.Noop{}
	}

	if opts.Trackers == nil {
		opts.Trackers = make(map[string]*stats.Tracker)
	}

	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}

	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Scheduler{
		managers:        managers,
		interval:        opts.Interval,
		advisoryTimeout: opts.AdvisoryTimeout,
		store:           opts.Store,
		advisor:         opts.Advisor,
		session:         opts.Session,
		trackers:        opts.Trackers,
		logger:          opts.Logger,
		now:             opts.Now,
		advisories:      sync.WaitGroup{},
	}, nil
}

// Run cycles every account until ctx is cancelled. A cycle already dispatching a
// command finishes before its loop exits.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.session != nil {
		if err := s.session.Initialize(s.now()); err != nil {
			return err
		}

		for _, tracker := range s.trackers {
			tracker.SetRunID(s.session.RunID())
		}
	}

	s.logger.Info("Scheduler started",
		zap.Int("accounts", len(s.managers)),
		zap.Duration("interval", s.interval))

	group, groupCtx := errgroup.WithContext(ctx)

	for _, manager := range s.managers {
		group.Go(func() error {
			return s.loop(groupCtx, manager)
		})
	}

	err := group.Wait()

	s.advisories.Wait()
	s.writeFinalReports()

	s.logger.Info("Scheduler stopped")

	return err
}

//nolint:funcorder // helper method used by Run
func (s *Scheduler) loop(ctx context.Context, manager *Manager) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if stop := s.cycle(ctx, manager); stop {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// cycle runs one cycle and reports whether the account must stop trading.
//
//nolint:funcorder // helper method used by loop
func (s *Scheduler) cycle(ctx context.Context, manager *Manager) bool {
	result, err := manager.RunCycle(ctx)
	if err != nil && errors.IsInvariantViolation(err) {
		s.logger.Error("Ledger invariant violated, account stopped",
			zap.String("account_id", manager.AccountID()),
			zap.Error(err))

		return true
	}

	if summary, takeErr := result.DaySummary.Take(); takeErr == nil {
		s.closeDay(ctx, manager.AccountID(), summary, result)
	}

	return false
}

// closeDay writes the finished day's report and export and asks the advisor for the
// next day's position size.
//
//nolint:funcorder // helper method used by cycle
func (s *Scheduler) closeDay(ctx context.Context, accountID string, summary types.DailySummary, result CycleResult) {
	if s.session != nil {
		if _, err := s.session.HandleDateBoundary(s.now()); err != nil {
			s.logger.Warn("Failed to move session folder", zap.Error(err))
		}

		s.writeDayReport(ctx, accountID, summary)
	}

	snapshot, err := result.Snapshot.Take()
	if err != nil {
		s.logger.Debug("No indicators for advisory request", zap.String("account_id", accountID))

		return
	}

	s.advisories.Add(1)

	go func() {
		defer s.advisories.Done()

		s.requestAdvice(context.WithoutCancel(ctx), summary, snapshot)
	}()
}

//nolint:funcorder // helper method used by closeDay
func (s *Scheduler) writeDayReport(ctx context.Context, accountID string, summary types.DailySummary) {
	report := stats.Report{
		AccountID:     accountID,
		RunID:         s.session.RunID(),
		SessionStart:  time.Time{},
		LastUpdated:   s.now(),
		Balance:       0,
		UnrealizedPnL: 0,
		Daily:         summary,
		Cumulative:    summary,
		HoldingTime:   stats.HoldingTime{Min: 0, Max: 0, Avg: 0},
		TradesFile:    "",
		ActivityFile:  "",
	}

	if tracker, ok := s.trackers[accountID]; ok {
		report = tracker.Report(s.now())
		report.Daily = summary
	}

	export, err := ledger.ExportParquet(ctx, s.store, accountID, s.session.CurrentRunPath())
	if err != nil {
		s.logger.Warn("Failed to export ledger", zap.String("account_id", accountID), zap.Error(err))
	} else {
		report.TradesFile = export.TradesPath
		report.ActivityFile = export.ActivityPath
	}

	path := s.session.FilePath(fmt.Sprintf("%s_%s_stats.yaml", accountID, summary.Date))
	if err := stats.WriteReport(path, report); err != nil {
		s.logger.Warn("Failed to write daily report", zap.String("path", path), zap.Error(err))
	}
}

//nolint:funcorder // helper method used by closeDay
func (s *Scheduler) requestAdvice(ctx context.Context, summary types.DailySummary, snapshot types.IndicatorSnapshot) {
	adviceCtx, cancel := context.WithTimeout(ctx, s.advisoryTimeout)
	defer cancel()

	suggestion, err := s.advisor.Suggest(adviceCtx, advisory.BuildRequest(summary, snapshot))
	if err != nil {
		s.logger.Warn("Advisory request failed", zap.String("account_id", summary.AccountID), zap.Error(err))

		return
	}

	if suggestion.SuggestedPositionSize == "" {
		return
	}

	entry := types.NewActivity(summary.AccountID, types.ActivityAnalysis,
		fmt.Sprintf("ADVISORY: suggested position size %s. %s", suggestion.SuggestedPositionSize, suggestion.Reasoning),
		s.now())

	if err := s.store.AppendActivity(ctx, entry); err != nil {
		s.logger.Warn("Failed to record advisory suggestion", zap.Error(err))
	}
}

//nolint:funcorder // helper method used by Run
func (s *Scheduler) writeFinalReports() {
	if s.session == nil {
		return
	}

	for accountID, tracker := range s.trackers {
		path := s.session.FilePath(accountID + "_stats.yaml")
		if err := stats.WriteReport(path, tracker.Report(s.now())); err != nil {
			s.logger.Warn("Failed to write final stats", zap.String("path", path), zap.Error(err))
		}
	}
}
