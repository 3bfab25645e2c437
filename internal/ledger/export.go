package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
)

// ExportResult lists the parquet files written by ExportParquet.
type ExportResult struct {
	TradesPath   string `json:"trades_path" yaml:"trades_path"`
	ActivityPath string `json:"activity_path" yaml:"activity_path"`
	Trades       int    `json:"trades" yaml:"trades"`
	Activity     int    `json:"activity" yaml:"activity"`
}

// ExportParquet copies the account's trades and activity log out of any store into
// {dir}/{account}_trades.parquet and {dir}/{account}_activity.parquet.
func ExportParquet(ctx context.Context, store Store, accountID, dir string) (ExportResult, error) {
	result := ExportResult{
		TradesPath:   filepath.Join(dir, accountID+"_trades.parquet"),
		ActivityPath: filepath.Join(dir, accountID+"_activity.parquet"),
		Trades:       0,
		Activity:     0,
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return result, errors.Wrap(errors.ErrCodeExportFailed, "failed to create export directory", err)
	}

	trades, err := store.ListTrades(ctx, TradeFilter{
		AccountID:  accountID,
		Statuses:   nil,
		ClosedFrom: time.Time{},
		ClosedTo:   time.Time{},
		Limit:      0,
	})
	if err != nil {
		return result, err
	}

	activity, err := store.ListActivity(ctx, accountID, 0)
	if err != nil {
		return result, err
	}

	db, err := sql.Open(DriverDuckDB, "")
	if err != nil {
		return result, errors.Wrap(errors.ErrCodeExportFailed, "failed to open DuckDB connection", err)
	}
	defer db.Close()

	for _, stmt := range schema[1:] {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return result, errors.Wrap(errors.ErrCodeExportFailed, "failed to create export tables", err)
		}
	}

	sq := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

	for _, trade := range trades {
		query, args, err := sq.Insert("trades").
			Columns(tradeColumns...).
			Values(
				trade.ID, trade.AccountID, trade.Symbol, string(trade.Side), trade.EntryPrice, trade.Volume,
				trade.StopLoss, trade.TakeProfit, trade.Confidence, string(trade.Status), toMicros(trade.OpenedAt),
				nullFloat(trade.ExitPrice), nullFloat(trade.Profit), nullMicros(trade.ClosedAt),
			).
			ToSql()
		if err != nil {
			return result, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build trade insert", err)
		}

		if _, err := db.ExecContext(ctx, query, args...); err != nil {
			return result, errors.Wrapf(errors.ErrCodeExportFailed, err, "failed to stage trade %s", trade.ID)
		}
	}

	for _, entry := range activity {
		query, args, err := sq.Insert("activity").
			Columns(activityColumns...).
			Values(entry.ID, entry.AccountID, toMicros(entry.Timestamp), entry.Message, string(entry.Category)).
			ToSql()
		if err != nil {
			return result, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build activity insert", err)
		}

		if _, err := db.ExecContext(ctx, query, args...); err != nil {
			return result, errors.Wrapf(errors.ErrCodeExportFailed, err, "failed to stage activity %s", entry.ID)
		}
	}

	_, err = db.ExecContext(ctx, fmt.Sprintf(`
		COPY (
			SELECT id, account_id, symbol, side, entry_price, volume, stop_loss, take_profit, confidence, status,
				make_timestamp(opened_at) AS opened_at, exit_price, profit,
				CASE WHEN closed_at IS NULL THEN NULL ELSE make_timestamp(closed_at) END AS closed_at
			FROM trades ORDER BY opened_at ASC
		) TO '%s' (FORMAT PARQUET)
	`, result.TradesPath))
	if err != nil {
		return result, errors.Wrap(errors.ErrCodeExportFailed, "failed to export trades to parquet", err)
	}

	_, err = db.ExecContext(ctx, fmt.Sprintf(`
		COPY (
			SELECT id, account_id, make_timestamp(timestamp) AS timestamp, message, category
			FROM activity ORDER BY timestamp ASC
		) TO '%s' (FORMAT PARQUET)
	`, result.ActivityPath))
	if err != nil {
		return result, errors.Wrap(errors.ErrCodeExportFailed, "failed to export activity to parquet", err)
	}

	result.Trades = len(trades)
	result.Activity = len(activity)

	return result, nil
}
