package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/rxtech-lab/argo-autotrader/internal/ledger"
	"github.com/rxtech-lab/argo-autotrader/internal/risk"
	"github.com/rxtech-lab/argo-autotrader/internal/stats"
	"github.com/rxtech-lab/argo-autotrader/internal/types"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

func tradesCommand() *cli.Command {
	return &cli.Command{
		Name:      "trades",
		Usage:     "List an account's trades, newest first",
		ArgsUsage: "<account-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "status", Usage: "Only trades in this status (OPEN, WON, LOST)"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "Maximum number of trades", Value: 20},
		},
		Action: tradesAction,
	}
}

func tradesAction(ctx context.Context, cmd *cli.Command) error {
	id, err := accountArg(cmd)
	if err != nil {
		return err
	}

	_, store, _, err := openLedger(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	filter := ledger.TradeFilter{
		AccountID:  id,
		Statuses:   nil,
		ClosedFrom: time.Time{},
		ClosedTo:   time.Time{},
		Limit:      int(cmd.Int("limit")),
	}

	if status := cmd.String("status"); status != "" {
		switch tradeStatus := types.TradeStatus(status); tradeStatus {
		case types.TradeStatusOpen, types.TradeStatusWon, types.TradeStatusLost:
			filter.Statuses = []types.TradeStatus{tradeStatus}
		default:
			return errors.Newf(errors.ErrCodeInvalidParameter, "unknown trade status %q", status)
		}
	}

	trades, err := store.ListTrades(ctx, filter)
	if err != nil {
		return err
	}

	out := newTable(cmd.Root().Writer)
	fmt.Fprintln(out, "ID\tSIDE\tSTATUS\tVOLUME\tENTRY\tEXIT\tP/L\tOPENED")

	for _, trade := range trades {
		exit := "-"
		if price, takeErr := trade.ExitPrice.Take(); takeErr == nil {
			exit = fmt.Sprintf("%.2f", price)
		}

		profit := "-"
		if value, takeErr := trade.Profit.Take(); takeErr == nil {
			profit = risk.FormatSignedMoney(value)
		}

		fmt.Fprintf(out, "%s\t%s\t%s\t%.2f\t%.2f\t%s\t%s\t%s\n",
			trade.ID, trade.Side, trade.Status, trade.Volume, trade.EntryPrice, exit, profit,
			trade.OpenedAt.Format(time.DateTime))
	}

	return out.Flush()
}

func activityCommand() *cli.Command {
	return &cli.Command{
		Name:      "activity",
		Usage:     "Show an account's activity feed, newest first",
		ArgsUsage: "<account-id>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "Maximum number of entries", Value: 50},
		},
		Action: activityAction,
	}
}

func activityAction(ctx context.Context, cmd *cli.Command) error {
	id, err := accountArg(cmd)
	if err != nil {
		return err
	}

	_, store, _, err := openLedger(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.ListActivity(ctx, id, int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	out := newTable(cmd.Root().Writer)

	for _, entry := range entries {
		fmt.Fprintf(out, "%s\t%s\t%s\n", entry.Timestamp.Format(time.DateTime), entry.Category, entry.Message)
	}

	return out.Flush()
}

func summaryCommand() *cli.Command {
	return &cli.Command{
		Name:      "summary",
		Usage:     "Summarize the trades an account closed on one trading day",
		ArgsUsage: "<account-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "date", Aliases: []string{"d"}, Usage: "Trading day in `YYYY-MM-DD` format, defaults to today"},
		},
		Action: summaryAction,
	}
}

func summaryAction(ctx context.Context, cmd *cli.Command) error {
	id, err := accountArg(cmd)
	if err != nil {
		return err
	}

	cfg, store, _, err := openLedger(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	location, err := time.LoadLocation(cfg.Engine.DayBoundaryTimezone)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid day boundary timezone", err)
	}

	now := time.Now().In(location)
	date := cmd.String("date")

	if date == "" {
		date = now.Format(time.DateOnly)
	}

	start, err := time.ParseInLocation(time.DateOnly, date, location)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidParameter, err, "invalid date %q", date)
	}

	trades, err := store.ListTrades(ctx, ledger.TradeFilter{
		AccountID:  id,
		Statuses:   ledger.ClosedStatuses,
		ClosedFrom: start,
		ClosedTo:   start.AddDate(0, 0, 1),
		Limit:      0,
	})
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(stats.Summarize(id, date, trades, now))
	if err != nil {
		return err
	}

	_, err = cmd.Root().Writer.Write(data)

	return err
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Export an account's trades and activity to parquet files",
		ArgsUsage: "<account-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output directory", Value: "./export"},
		},
		Action: exportAction,
	}
}

func exportAction(ctx context.Context, cmd *cli.Command) error {
	id, err := accountArg(cmd)
	if err != nil {
		return err
	}

	_, store, _, err := openLedger(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	if _, err := store.GetAccount(ctx, id); err != nil {
		return err
	}

	result, err := ledger.ExportParquet(ctx, store, id, cmd.String("output"))
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.Root().Writer, "Exported %d trades to %s\nExported %d activity entries to %s\n",
		result.Trades, result.TradesPath, result.Activity, result.ActivityPath)

	return nil
}
