package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rxtech-lab/argo-autotrader/internal/advisory"
	"github.com/rxtech-lab/argo-autotrader/internal/api"
	"github.com/rxtech-lab/argo-autotrader/internal/channel"
	"github.com/rxtech-lab/argo-autotrader/internal/config"
	"github.com/rxtech-lab/argo-autotrader/internal/engine"
	"github.com/rxtech-lab/argo-autotrader/internal/feed"
	"github.com/rxtech-lab/argo-autotrader/internal/ledger"
	"github.com/rxtech-lab/argo-autotrader/internal/logger"
	"github.com/rxtech-lab/argo-autotrader/internal/risk"
	"github.com/rxtech-lab/argo-autotrader/internal/session"
	"github.com/rxtech-lab/argo-autotrader/internal/stats"
	"github.com/rxtech-lab/argo-autotrader/internal/strategy"
	"github.com/rxtech-lab/argo-autotrader/internal/types"
	"github.com/rxtech-lab/argo-autotrader/internal/venue"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Trade every configured account until interrupted",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "account",
				Aliases: []string{"a"},
				Usage:   "Account id to trade, overrides the accounts list of the config",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Do not print activity entries",
			},
		},
		Action: runAction,
	}
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	cfg, store, log, err := openLedger(cmd)
	if err != nil {
		return err
	}

	defer func() {
		_ = log.Sync()
	}()
	defer store.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	accountIDs := cfg.Accounts
	if ids := cmd.StringSlice("account"); len(ids) > 0 {
		accountIDs = ids
	}

	if len(accountIDs) == 0 {
		return errors.New(errors.ErrCodeInvalidConfiguration, "no accounts configured, pass --account or set accounts in the config")
	}

	if err := ensureAccounts(ctx, store, accountIDs, time.Now(), log); err != nil {
		return err
	}

	marketFeed, err := feed.New(cfg.Feed, cfg.Indicators, log)
	if err != nil {
		return err
	}

	executionVenue, err := venue.New(cfg.Venue, log)
	if err != nil {
		return err
	}
	defer executionVenue.Close()

	commands := channel.New(executionVenue, cfg.Channel, log)
	commands.Start()
	defer commands.Close()

	var out io.Writer = cmd.Root().Writer
	if cmd.Bool("quiet") || out == nil {
		out = io.Discard
	}

	scheduler, err := buildScheduler(cfg, accountIDs, store, marketFeed, commands, runCallbacks(out), log)
	if err != nil {
		return err
	}

	log.Info("Starting autotrader",
		zap.Strings("accounts", accountIDs),
		zap.String("symbol", cfg.Engine.Symbol),
		zap.String("feed", cfg.Feed.Provider),
		zap.String("venue", executionVenue.Name()))

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return scheduler.Run(groupCtx)
	})

	if cfg.API.Enabled {
		group.Go(func() error {
			return api.NewServer(store, log).Serve(groupCtx, cfg.API.Listen)
		})
	}

	return group.Wait()
}

// ensureAccounts seeds every missing account with the default limits. Seeded
// accounts start with auto-trading disabled.
func ensureAccounts(ctx context.Context, store ledger.Store, accountIDs []string, now time.Time, log *logger.Logger) error {
	for _, id := range accountIDs {
		_, err := store.GetAccount(ctx, id)
		if err == nil {
			continue
		}

		if !errors.HasCode(err, errors.ErrCodeAccountNotFound) {
			return err
		}

		if err := store.CreateAccount(ctx, types.NewAccount(id, now)); err != nil {
			return err
		}

		log.Info("Account seeded with default limits, enable auto-trading to start trading",
			zap.String("account_id", id))
	}

	return nil
}

// buildScheduler wires one lifecycle manager per account onto the shared feed and channel.
func buildScheduler(
	cfg config.Config,
	accountIDs []string,
	store ledger.Store,
	marketFeed feed.Feed,
	dispatcher channel.Dispatcher,
	callbacks engine.Callbacks,
	log *logger.Logger,
) (*engine.Scheduler, error) {
	now := time.Now()
	evaluator := strategy.NewEvaluator(cfg.Strategy)
	gate := risk.NewGate(cfg.GateConfig())

	managers := make([]*engine.Manager, 0, len(accountIDs))
	trackers := make(map[string]*stats.Tracker, len(accountIDs))

	for _, id := range accountIDs {
		tracker := stats.NewTracker(id, "", now, log)

		manager, err := engine.NewManager(id, cfg.Engine, engine.Dependencies{
			Store:      store,
			Feed:       marketFeed,
			Dispatcher: dispatcher,
			Evaluator:  evaluator,
			Gate:       gate,
			Tracker:    tracker,
			Logger:     log,
			Now:        nil,
		}, callbacks)
		if err != nil {
			return nil, err
		}

		managers = append(managers, manager)
		trackers[id] = tracker
	}

	return engine.NewScheduler(managers, engine.SchedulerOptions{
		Interval:        cfg.Engine.CycleInterval,
		AdvisoryTimeout: cfg.Advisory.Timeout,
		Store:           store,
		Advisor:         advisory.New(cfg.Advisory, log),
		Session:         session.NewManager(cfg.Engine.SummaryOutput, log),
		Trackers:        trackers,
		Logger:          log,
		Now:             nil,
	})
}

// runCallbacks prints the activity feed and cycle errors to out.
func runCallbacks(out io.Writer) engine.Callbacks {
	onActivity := engine.OnActivityCallback(func(entry types.ActivityLogEntry) {
		fmt.Fprintf(out, "[%s] %s %-8s %s\n",
			entry.Timestamp.Format(time.TimeOnly), entry.AccountID, entry.Category, entry.Message)
	})
	onCycleError := engine.OnCycleErrorCallback(func(accountID string, err error) {
		fmt.Fprintf(out, "Cycle error for %s: %v\n", accountID, err)
	})

	return engine.Callbacks{
		OnTradeOpened:  nil,
		OnTradeClosed:  nil,
		OnActivity:     &onActivity,
		OnDailySummary: nil,
		OnCycleError:   &onCycleError,
	}
}
