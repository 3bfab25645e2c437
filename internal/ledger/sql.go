package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/mattn/go-sqlite3"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-autotrader/internal/logger"
	"github.com/rxtech-lab/argo-autotrader/internal/types"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Driver names accepted by NewSQLStore.
const (
	DriverMemory  = "memory"
	DriverDuckDB  = "duckdb"
	DriverSQLite3 = "sqlite3"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id VARCHAR PRIMARY KEY,
		starting_balance DOUBLE NOT NULL,
		current_balance DOUBLE NOT NULL,
		daily_risk_limit DOUBLE NOT NULL,
		daily_profit_target DOUBLE NOT NULL,
		max_position_size DOUBLE NOT NULL,
		auto_trading_enabled BOOLEAN NOT NULL,
		version BIGINT NOT NULL,
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS trades (
		id VARCHAR PRIMARY KEY,
		account_id VARCHAR NOT NULL,
		symbol VARCHAR NOT NULL,
		side VARCHAR NOT NULL,
		entry_price DOUBLE NOT NULL,
		volume DOUBLE NOT NULL,
		stop_loss DOUBLE NOT NULL,
		take_profit DOUBLE NOT NULL,
		confidence VARCHAR NOT NULL,
		status VARCHAR NOT NULL,
		opened_at BIGINT NOT NULL,
		exit_price DOUBLE,
		profit DOUBLE,
		closed_at BIGINT
	)`,
	`CREATE TABLE IF NOT EXISTS commands (
		id VARCHAR PRIMARY KEY,
		correlation_id VARCHAR NOT NULL,
		account_id VARCHAR NOT NULL,
		action VARCHAR NOT NULL,
		symbol VARCHAR NOT NULL,
		side VARCHAR NOT NULL,
		volume DOUBLE NOT NULL,
		price DOUBLE NOT NULL,
		stop_loss DOUBLE NOT NULL,
		take_profit DOUBLE NOT NULL,
		confidence VARCHAR NOT NULL,
		status VARCHAR NOT NULL,
		ticket_id VARCHAR NOT NULL,
		error VARCHAR NOT NULL,
		attempts INTEGER NOT NULL,
		applied BOOLEAN NOT NULL,
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS activity (
		id VARCHAR PRIMARY KEY,
		account_id VARCHAR NOT NULL,
		timestamp BIGINT NOT NULL,
		message VARCHAR NOT NULL,
		category VARCHAR NOT NULL
	)`,
}

var (
	accountColumns = []string{
		"id", "starting_balance", "current_balance", "daily_risk_limit", "daily_profit_target",
		"max_position_size", "auto_trading_enabled", "version", "created_at", "updated_at",
	}
	tradeColumns = []string{
		"id", "account_id", "symbol", "side", "entry_price", "volume", "stop_loss", "take_profit",
		"confidence", "status", "opened_at", "exit_price", "profit", "closed_at",
	}
	commandColumns = []string{
		"id", "correlation_id", "account_id", "action", "symbol", "side", "volume", "price",
		"stop_loss", "take_profit", "confidence", "status", "ticket_id", "error", "attempts",
		"applied", "created_at", "updated_at",
	}
	activityColumns = []string{"id", "account_id", "timestamp", "message", "category"}
)

// sqliteIndexes back the single open trade rule for writers in other processes.
var sqliteIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS trades_single_open ON trades (account_id) WHERE status = 'OPEN'`,
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// SQLStore keeps the ledger in DuckDB or SQLite. Timestamps are stored as unix
// microseconds so both engines read them back identically.
type SQLStore struct {
	db     *sql.DB
	driver string
	sq     squirrel.StatementBuilderType
	logger *logger.Logger

	// tradeMu serializes CreateTrade within the process
	tradeMu sync.Mutex
}

// NewSQLStore opens dsn with the given driver and creates the schema.
// An empty dsn opens an in-memory database.
func NewSQLStore(driver, dsn string, log *logger.Logger) (*SQLStore, error) {
	if driver != DriverDuckDB && driver != DriverSQLite3 {
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "unsupported ledger driver %q", driver)
	}

	if dsn == "" && driver == DriverSQLite3 {
		dsn = ":memory:"
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to open %s ledger", driver)
	}

	if driver == DriverSQLite3 {
		// a single connection keeps :memory: databases shared and avoids SQLITE_BUSY
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()

		return nil, errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to connect to %s ledger", driver)
	}

	store := &SQLStore{
		db:      db,
		driver:  driver,
		sq:      squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		logger:  log,
		tradeMu: sync.Mutex{},
	}

	if err := store.initialize(); err != nil {
		db.Close()

		return nil, err
	}

	log.Debug("Ledger opened", zap.String("driver", driver), zap.String("dsn", dsn))

	return store, nil
}

// Open returns the store selected by driver.
func Open(driver, dsn string, log *logger.Logger) (Store, error) {
	if driver == "" || driver == DriverMemory {
		return NewMemoryStore(), nil
	}

	return NewSQLStore(driver, dsn, log)
}

//nolint:funcorder // helper method used by NewSQLStore
func (s *SQLStore) initialize() error {
	statements := schema
	if s.driver == DriverSQLite3 {
		statements = append(append([]string{}, schema...), sqliteIndexes...)
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return errors.Wrap(errors.ErrCodePersistenceFailed, "failed to create ledger schema", err)
		}
	}

	return nil
}

func (s *SQLStore) CreateAccount(ctx context.Context, account types.Account) error {
	query, args, err := s.sq.Insert("accounts").
		Columns(accountColumns...).
		Values(
			account.ID, account.StartingBalance, account.CurrentBalance, account.DailyRiskLimit,
			account.DailyProfitTarget, account.MaxPositionSize, account.AutoTradingEnabled,
			account.Version, toMicros(account.CreatedAt), toMicros(account.UpdatedAt),
		).
		Suffix("ON CONFLICT DO NOTHING").
		ToSql()
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to build account insert", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrapf(errors.ErrCodePersistenceFailed, err, "failed to create account %s", account.ID)
	}

	return nil
}

func (s *SQLStore) GetAccount(ctx context.Context, id string) (types.Account, error) {
	accounts, err := s.queryAccounts(ctx, squirrel.Eq{"id": id})
	if err != nil {
		return types.Account{}, err
	}

	if len(accounts) == 0 {
		return types.Account{}, errors.Newf(errors.ErrCodeAccountNotFound, "account %s not found", id)
	}

	return accounts[0], nil
}

func (s *SQLStore) ListAccounts(ctx context.Context) ([]types.Account, error) {
	return s.queryAccounts(ctx, nil)
}

func (s *SQLStore) SaveAccount(ctx context.Context, account types.Account) (types.Account, error) {
	query, args, err := s.sq.Update("accounts").
		Set("starting_balance", account.StartingBalance).
		Set("current_balance", account.CurrentBalance).
		Set("daily_risk_limit", account.DailyRiskLimit).
		Set("daily_profit_target", account.DailyProfitTarget).
		Set("max_position_size", account.MaxPositionSize).
		Set("auto_trading_enabled", account.AutoTradingEnabled).
		Set("version", account.Version+1).
		Set("updated_at", toMicros(account.UpdatedAt)).
		Where(squirrel.Eq{"id": account.ID, "version": account.Version}).
		ToSql()
	if err != nil {
		return types.Account{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build account update", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return types.Account{}, errors.Wrapf(errors.ErrCodePersistenceFailed, err, "failed to save account %s", account.ID)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return types.Account{}, errors.Wrap(errors.ErrCodePersistenceFailed, "failed to read affected rows", err)
	}

	if affected == 0 {
		if _, err := s.GetAccount(ctx, account.ID); err != nil {
			return types.Account{}, err
		}

		return types.Account{}, errors.Newf(errors.ErrCodeVersionConflict,
			"account %s changed since version %d", account.ID, account.Version)
	}

	account.Version++

	return account, nil
}

// CreateTrade checks for an open trade and inserts in one transaction, so two writers
// cannot both open a trade for the same account.
func (s *SQLStore) CreateTrade(ctx context.Context, trade types.Trade) error {
	s.tradeMu.Lock()
	defer s.tradeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrapf(errors.ErrCodePersistenceFailed, err, "failed to begin trade %s", trade.ID)
	}

	defer func() {
		_ = tx.Rollback()
	}()

	existing, err := s.queryTrades(ctx, tx, s.sq.Select(tradeColumns...).From("trades").Where(squirrel.Eq{"id": trade.ID}))
	if err != nil {
		return err
	}

	if len(existing) > 0 {
		return nil
	}

	if trade.Status == types.TradeStatusOpen {
		open, err := s.queryTrades(ctx, tx, s.sq.Select(tradeColumns...).From("trades").Where(squirrel.Eq{
			"account_id": trade.AccountID,
			"status":     string(types.TradeStatusOpen),
		}))
		if err != nil {
			return err
		}

		if len(open) > 0 {
			return errors.Newf(errors.ErrCodeInvariantViolation,
				"account %s already has open trade %s", trade.AccountID, open[0].ID)
		}
	}

	query, args, err := s.sq.Insert("trades").
		Columns(tradeColumns...).
		Values(
			trade.ID, trade.AccountID, trade.Symbol, string(trade.Side), trade.EntryPrice, trade.Volume,
			trade.StopLoss, trade.TakeProfit, trade.Confidence, string(trade.Status), toMicros(trade.OpenedAt),
			nullFloat(trade.ExitPrice), nullFloat(trade.Profit), nullMicros(trade.ClosedAt),
		).
		Suffix("ON CONFLICT (id) DO NOTHING").
		ToSql()
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to build trade insert", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return errors.Wrapf(errors.ErrCodeInvariantViolation, err,
				"account %s already has an open trade", trade.AccountID)
		}

		return errors.Wrapf(errors.ErrCodePersistenceFailed, err, "failed to create trade %s", trade.ID)
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrapf(errors.ErrCodePersistenceFailed, err, "failed to commit trade %s", trade.ID)
	}

	return nil
}

func (s *SQLStore) UpdateTrade(ctx context.Context, id string, patch types.TradePatch) (bool, error) {
	query, args, err := s.sq.Update("trades").
		Set("exit_price", patch.ExitPrice).
		Set("profit", patch.Profit).
		Set("status", string(patch.Status)).
		Set("closed_at", toMicros(patch.ClosedAt)).
		Where(squirrel.Eq{"id": id, "status": string(types.TradeStatusOpen)}).
		ToSql()
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build trade update", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, errors.Wrapf(errors.ErrCodePersistenceFailed, err, "failed to update trade %s", id)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, errors.Wrap(errors.ErrCodePersistenceFailed, "failed to read affected rows", err)
	}

	if affected > 0 {
		return true, nil
	}

	existing, err := s.GetTrade(ctx, id)
	if err != nil {
		return false, err
	}

	if existing.IsNone() {
		return false, errors.Newf(errors.ErrCodeTradeNotFound, "trade %s not found", id)
	}

	return false, nil
}

func (s *SQLStore) GetTrade(ctx context.Context, id string) (optional.Option[types.Trade], error) {
	trades, err := s.queryTrades(ctx, s.db, s.sq.Select(tradeColumns...).From("trades").Where(squirrel.Eq{"id": id}))
	if err != nil {
		return optional.None[types.Trade](), err
	}

	if len(trades) == 0 {
		return optional.None[types.Trade](), nil
	}

	return optional.Some(trades[0]), nil
}

func (s *SQLStore) ReadOpenTrade(ctx context.Context, accountID string) (optional.Option[types.Trade], error) {
	open, err := s.queryTrades(ctx, s.db, s.sq.Select(tradeColumns...).From("trades").Where(squirrel.Eq{
		"account_id": accountID,
		"status":     string(types.TradeStatusOpen),
	}))
	if err != nil {
		return optional.None[types.Trade](), err
	}

	return singleOpenTrade(accountID, open)
}

func (s *SQLStore) ListTrades(ctx context.Context, filter TradeFilter) ([]types.Trade, error) {
	builder := s.sq.Select(tradeColumns...).From("trades")
	builder = applyTradeFilter(builder, filter)

	if filter.Limit > 0 {
		// newest trades, returned oldest first
		inner := builder.OrderBy("opened_at DESC", "id DESC").Limit(uint64(filter.Limit))
		builder = s.sq.Select(tradeColumns...).FromSelect(inner, "recent")
	}

	return s.queryTrades(ctx, s.db, builder.OrderBy("opened_at ASC", "id ASC"))
}

func (s *SQLStore) RealizedPnL(ctx context.Context, accountID string, since time.Time) (float64, error) {
	builder := s.sq.Select("SUM(profit)").From("trades")
	builder = applyTradeFilter(builder, TradeFilter{
		AccountID:  accountID,
		Statuses:   ClosedStatuses,
		ClosedFrom: since,
		ClosedTo:   time.Time{},
		Limit:      0,
	})

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build realized pnl query", err)
	}

	var total sql.NullFloat64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to sum realized pnl for %s", accountID)
	}

	if !total.Valid {
		return 0, nil
	}

	return roundCents(total.Float64), nil
}

func (s *SQLStore) CreateCommand(ctx context.Context, cmd types.TradeCommand) error {
	query, args, err := s.sq.Insert("commands").
		Columns(commandColumns...).
		Values(
			cmd.ID, cmd.CorrelationID, cmd.AccountID, string(cmd.Action), cmd.Symbol, string(cmd.Side),
			cmd.Volume, cmd.Price, cmd.StopLoss, cmd.TakeProfit, cmd.Confidence, string(cmd.Status),
			cmd.TicketID, cmd.Error, cmd.Attempts, cmd.Applied, toMicros(cmd.CreatedAt), toMicros(cmd.UpdatedAt),
		).
		Suffix("ON CONFLICT DO NOTHING").
		ToSql()
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to build command insert", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrapf(errors.ErrCodePersistenceFailed, err, "failed to create command %s", cmd.ID)
	}

	return nil
}

func (s *SQLStore) UpdateCommand(ctx context.Context, cmd types.TradeCommand) error {
	query, args, err := s.sq.Update("commands").
		Set("volume", cmd.Volume).
		Set("price", cmd.Price).
		Set("stop_loss", cmd.StopLoss).
		Set("take_profit", cmd.TakeProfit).
		Set("status", string(cmd.Status)).
		Set("ticket_id", cmd.TicketID).
		Set("error", cmd.Error).
		Set("attempts", cmd.Attempts).
		Set("applied", cmd.Applied).
		Set("updated_at", toMicros(cmd.UpdatedAt)).
		Where(squirrel.Eq{"id": cmd.ID}).
		ToSql()
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to build command update", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.Wrapf(errors.ErrCodePersistenceFailed, err, "failed to update command %s", cmd.ID)
	}

	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return errors.Newf(errors.ErrCodeDataNotFound, "command %s not found", cmd.ID)
	}

	return nil
}

func (s *SQLStore) GetCommand(ctx context.Context, id string) (optional.Option[types.TradeCommand], error) {
	commands, err := s.queryCommands(ctx, s.sq.Select(commandColumns...).From("commands").Where(squirrel.Eq{"id": id}))
	if err != nil {
		return optional.None[types.TradeCommand](), err
	}

	if len(commands) == 0 {
		return optional.None[types.TradeCommand](), nil
	}

	return optional.Some(commands[0]), nil
}

func (s *SQLStore) ListUnsettledCommands(ctx context.Context, accountID string) ([]types.TradeCommand, error) {
	return s.queryCommands(ctx, s.sq.Select(commandColumns...).
		From("commands").
		Where(squirrel.And{
			squirrel.Eq{"account_id": accountID},
			squirrel.Or{
				squirrel.Eq{"status": string(types.CommandStatusPending)},
				squirrel.Eq{"applied": false},
			},
		}).
		OrderBy("created_at ASC", "id ASC"))
}

func (s *SQLStore) AppendActivity(ctx context.Context, entry types.ActivityLogEntry) error {
	query, args, err := s.sq.Insert("activity").
		Columns(activityColumns...).
		Values(entry.ID, entry.AccountID, toMicros(entry.Timestamp), entry.Message, string(entry.Category)).
		Suffix("ON CONFLICT DO NOTHING").
		ToSql()
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to build activity insert", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrapf(errors.ErrCodePersistenceFailed, err, "failed to append activity %s", entry.ID)
	}

	return nil
}

func (s *SQLStore) ListActivity(ctx context.Context, accountID string, limit int) ([]types.ActivityLogEntry, error) {
	builder := s.sq.Select(activityColumns...).
		From("activity").
		Where(squirrel.Eq{"account_id": accountID}).
		OrderBy("timestamp DESC", "id DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build activity query", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to list activity for %s", accountID)
	}
	defer rows.Close()

	entries := make([]types.ActivityLogEntry, 0)

	for rows.Next() {
		var (
			entry     types.ActivityLogEntry
			timestamp int64
			category  string
		)

		if err := rows.Scan(&entry.ID, &entry.AccountID, &timestamp, &entry.Message, &category); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan activity", err)
		}

		entry.Timestamp = fromMicros(timestamp)
		entry.Category = types.ActivityCategory(category)
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to iterate activity", err)
	}

	return entries, nil
}

// Close releases database resources.
func (s *SQLStore) Close() error {
	if s.db == nil {
		return nil
	}

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close ledger: %w", err)
	}

	s.db = nil

	return nil
}

//nolint:funcorder // helper method used by GetAccount and ListAccounts
func (s *SQLStore) queryAccounts(ctx context.Context, where squirrel.Sqlizer) ([]types.Account, error) {
	builder := s.sq.Select(accountColumns...).From("accounts").OrderBy("id ASC")
	if where != nil {
		builder = builder.Where(where)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build account query", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query accounts", err)
	}
	defer rows.Close()

	accounts := make([]types.Account, 0)

	for rows.Next() {
		var (
			account              types.Account
			createdAt, updatedAt int64
		)

		err := rows.Scan(&account.ID, &account.StartingBalance, &account.CurrentBalance, &account.DailyRiskLimit,
			&account.DailyProfitTarget, &account.MaxPositionSize, &account.AutoTradingEnabled, &account.Version,
			&createdAt, &updatedAt)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan account", err)
		}

		account.CreatedAt = fromMicros(createdAt)
		account.UpdatedAt = fromMicros(updatedAt)
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to iterate accounts", err)
	}

	return accounts, nil
}

//nolint:funcorder // helper method used by the trade readers
func (s *SQLStore) queryTrades(ctx context.Context, runner queryer, builder squirrel.SelectBuilder) ([]types.Trade, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build trade query", err)
	}

	rows, err := runner.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query trades", err)
	}
	defer rows.Close()

	trades := make([]types.Trade, 0)

	for rows.Next() {
		var (
			trade             types.Trade
			side, status      string
			openedAt          int64
			exitPrice, profit sql.NullFloat64
			closedAt          sql.NullInt64
		)

		err := rows.Scan(&trade.ID, &trade.AccountID, &trade.Symbol, &side, &trade.EntryPrice, &trade.Volume,
			&trade.StopLoss, &trade.TakeProfit, &trade.Confidence, &status, &openedAt,
			&exitPrice, &profit, &closedAt)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan trade", err)
		}

		trade.Side = types.Side(side)
		trade.Status = types.TradeStatus(status)
		trade.OpenedAt = fromMicros(openedAt)
		trade.ExitPrice = optionalFloat(exitPrice)
		trade.Profit = optionalFloat(profit)
		trade.ClosedAt = optional.None[time.Time]()

		if closedAt.Valid {
			trade.ClosedAt = optional.Some(fromMicros(closedAt.Int64))
		}

		trades = append(trades, trade)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to iterate trades", err)
	}

	return trades, nil
}

//nolint:funcorder // helper method used by the command readers
func (s *SQLStore) queryCommands(ctx context.Context, builder squirrel.SelectBuilder) ([]types.TradeCommand, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build command query", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query commands", err)
	}
	defer rows.Close()

	commands := make([]types.TradeCommand, 0)

	for rows.Next() {
		var (
			cmd                  types.TradeCommand
			action, side, status string
			createdAt, updatedAt int64
		)

		err := rows.Scan(&cmd.ID, &cmd.CorrelationID, &cmd.AccountID, &action, &cmd.Symbol, &side,
			&cmd.Volume, &cmd.Price, &cmd.StopLoss, &cmd.TakeProfit, &cmd.Confidence, &status,
			&cmd.TicketID, &cmd.Error, &cmd.Attempts, &cmd.Applied, &createdAt, &updatedAt)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan command", err)
		}

		cmd.Action = types.CommandAction(action)
		cmd.Side = types.Side(side)
		cmd.Status = types.CommandStatus(status)
		cmd.CreatedAt = fromMicros(createdAt)
		cmd.UpdatedAt = fromMicros(updatedAt)
		commands = append(commands, cmd)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to iterate commands", err)
	}

	return commands, nil
}

func applyTradeFilter(builder squirrel.SelectBuilder, filter TradeFilter) squirrel.SelectBuilder {
	if filter.AccountID != "" {
		builder = builder.Where(squirrel.Eq{"account_id": filter.AccountID})
	}

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			statuses[i] = string(status)
		}

		builder = builder.Where(squirrel.Eq{"status": statuses})
	}

	if !filter.ClosedFrom.IsZero() {
		builder = builder.Where(squirrel.GtOrEq{"closed_at": toMicros(filter.ClosedFrom)})
	}

	if !filter.ClosedTo.IsZero() {
		builder = builder.Where(squirrel.Lt{"closed_at": toMicros(filter.ClosedTo)})
	}

	return builder
}

func toMicros(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}

	return t.UnixMicro()
}

func fromMicros(micros int64) time.Time {
	if micros == 0 {
		return time.Time{}
	}

	return time.UnixMicro(micros).UTC()
}

func nullFloat(value optional.Option[float64]) sql.NullFloat64 {
	if value.IsNone() {
		return sql.NullFloat64{Float64: 0, Valid: false}
	}

	return sql.NullFloat64{Float64: value.Unwrap(), Valid: true}
}

func nullMicros(value optional.Option[time.Time]) sql.NullInt64 {
	if value.IsNone() {
		return sql.NullInt64{Int64: 0, Valid: false}
	}

	return sql.NullInt64{Int64: toMicros(value.Unwrap()), Valid: true}
}

func optionalFloat(value sql.NullFloat64) optional.Option[float64] {
	if !value.Valid {
		return optional.None[float64]()
	}

	return optional.Some(value.Float64)
}

func roundCents(value float64) float64 {
	result, _ := decimal.NewFromFloat(value).Round(2).Float64()

	return result
}
