package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-autotrader/internal/types"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
	"github.com/shopspring/decimal"
)

// MemoryStore keeps the ledger in process memory. It backs tests and paper runs.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]types.Account
	trades   map[string]types.Trade
	commands map[string]types.TradeCommand
	activity []types.ActivityLogEntry
	seen     map[string]struct{}
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mu:       sync.RWMutex{},
		accounts: make(map[string]types.Account),
		trades:   make(map[string]types.Trade),
		commands: make(map[string]types.TradeCommand),
		activity: make([]types.ActivityLogEntry, 0),
		seen:     make(map[string]struct{}),
	}
}

func (m *MemoryStore) CreateAccount(_ context.Context, account types.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.accounts[account.ID]; ok {
		return nil
	}

	m.accounts[account.ID] = account

	return nil
}

func (m *MemoryStore) GetAccount(_ context.Context, id string) (types.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	account, ok := m.accounts[id]
	if !ok {
		return types.Account{}, errors.Newf(errors.ErrCodeAccountNotFound, "account %s not found", id)
	}

	return account, nil
}

func (m *MemoryStore) ListAccounts(_ context.Context) ([]types.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	accounts := make([]types.Account, 0, len(m.accounts))
	for _, account := range m.accounts {
		accounts = append(accounts, account)
	}

	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })

	return accounts, nil
}

func (m *MemoryStore) SaveAccount(_ context.Context, account types.Account) (types.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.accounts[account.ID]
	if !ok {
		return types.Account{}, errors.Newf(errors.ErrCodeAccountNotFound, "account %s not found", account.ID)
	}

	if stored.Version != account.Version {
		return types.Account{}, errors.Newf(errors.ErrCodeVersionConflict,
			"account %s is at version %d, not %d", account.ID, stored.Version, account.Version)
	}

	account.Version++
	m.accounts[account.ID] = account

	return account, nil
}

func (m *MemoryStore) CreateTrade(_ context.Context, trade types.Trade) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.trades[trade.ID]; ok {
		return nil
	}

	if trade.Status == types.TradeStatusOpen {
		for _, existing := range m.trades {
			if existing.AccountID == trade.AccountID && existing.Status == types.TradeStatusOpen {
				return errors.Newf(errors.ErrCodeInvariantViolation,
					"account %s already has open trade %s", trade.AccountID, existing.ID)
			}
		}
	}

	m.trades[trade.ID] = trade

	return nil
}

func (m *MemoryStore) UpdateTrade(_ context.Context, id string, patch types.TradePatch) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	trade, ok := m.trades[id]
	if !ok {
		return false, errors.Newf(errors.ErrCodeTradeNotFound, "trade %s not found", id)
	}

	if trade.Status.IsTerminal() {
		return false, nil
	}

	m.trades[id] = trade.Apply(patch)

	return true, nil
}

func (m *MemoryStore) GetTrade(_ context.Context, id string) (optional.Option[types.Trade], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	trade, ok := m.trades[id]
	if !ok {
		return optional.None[types.Trade](), nil
	}

	return optional.Some(trade), nil
}

func (m *MemoryStore) ReadOpenTrade(ctx context.Context, accountID string) (optional.Option[types.Trade], error) {
	open, err := m.ListTrades(ctx, TradeFilter{
		AccountID:  accountID,
		Statuses:   []types.TradeStatus{types.TradeStatusOpen},
		ClosedFrom: time.Time{},
		ClosedTo:   time.Time{},
		Limit:      0,
	})
	if err != nil {
		return optional.None[types.Trade](), err
	}

	return singleOpenTrade(accountID, open)
}

func (m *MemoryStore) ListTrades(_ context.Context, filter TradeFilter) ([]types.Trade, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	trades := make([]types.Trade, 0)

	for _, trade := range m.trades {
		if filter.matches(trade) {
			trades = append(trades, trade)
		}
	}

	sort.Slice(trades, func(i, j int) bool {
		if trades[i].OpenedAt.Equal(trades[j].OpenedAt) {
			return trades[i].ID < trades[j].ID
		}

		return trades[i].OpenedAt.Before(trades[j].OpenedAt)
	})

	if filter.Limit > 0 && len(trades) > filter.Limit {
		trades = trades[len(trades)-filter.Limit:]
	}

	return trades, nil
}

func (m *MemoryStore) RealizedPnL(ctx context.Context, accountID string, since time.Time) (float64, error) {
	closed, err := m.ListTrades(ctx, TradeFilter{
		AccountID:  accountID,
		Statuses:   ClosedStatuses,
		ClosedFrom: since,
		ClosedTo:   time.Time{},
		Limit:      0,
	})
	if err != nil {
		return 0, err
	}

	total := decimal.Zero

	for _, trade := range closed {
		if trade.Profit.IsSome() {
			total = total.Add(decimal.NewFromFloat(trade.Profit.Unwrap()))
		}
	}

	result, _ := total.Round(2).Float64()

	return result, nil
}

func (m *MemoryStore) CreateCommand(_ context.Context, cmd types.TradeCommand) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.commands[cmd.ID]; ok {
		return nil
	}

	m.commands[cmd.ID] = cmd

	return nil
}

func (m *MemoryStore) UpdateCommand(_ context.Context, cmd types.TradeCommand) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.commands[cmd.ID]; !ok {
		return errors.Newf(errors.ErrCodeDataNotFound, "command %s not found", cmd.ID)
	}

	m.commands[cmd.ID] = cmd

	return nil
}

func (m *MemoryStore) GetCommand(_ context.Context, id string) (optional.Option[types.TradeCommand], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cmd, ok := m.commands[id]
	if !ok {
		return optional.None[types.TradeCommand](), nil
	}

	return optional.Some(cmd), nil
}

func (m *MemoryStore) ListUnsettledCommands(_ context.Context, accountID string) ([]types.TradeCommand, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	commands := make([]types.TradeCommand, 0)

	for _, cmd := range m.commands {
		if cmd.AccountID == accountID && isUnsettled(cmd) {
			commands = append(commands, cmd)
		}
	}

	sort.Slice(commands, func(i, j int) bool {
		if commands[i].CreatedAt.Equal(commands[j].CreatedAt) {
			return commands[i].ID < commands[j].ID
		}

		return commands[i].CreatedAt.Before(commands[j].CreatedAt)
	})

	return commands, nil
}

func (m *MemoryStore) AppendActivity(_ context.Context, entry types.ActivityLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.seen[entry.ID]; ok {
		return nil
	}

	m.seen[entry.ID] = struct{}{}
	m.activity = append(m.activity, entry)

	return nil
}

func (m *MemoryStore) ListActivity(_ context.Context, accountID string, limit int) ([]types.ActivityLogEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := make([]types.ActivityLogEntry, 0)

	for i := len(m.activity) - 1; i >= 0; i-- {
		if m.activity[i].AccountID != accountID {
			continue
		}

		entries = append(entries, m.activity[i])
		if limit > 0 && len(entries) == limit {
			break
		}
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Timestamp.After(entries[j].Timestamp) })

	return entries, nil
}

func (m *MemoryStore) Close() error {
	return nil
}

func isUnsettled(cmd types.TradeCommand) bool {
	return cmd.Status == types.CommandStatusPending || !cmd.Applied
}

func singleOpenTrade(accountID string, open []types.Trade) (optional.Option[types.Trade], error) {
	switch len(open) {
	case 0:
		return optional.None[types.Trade](), nil
	case 1:
		return optional.Some(open[0]), nil
	default:
		return optional.None[types.Trade](), errors.Newf(errors.ErrCodeInvariantViolation,
			"account %s has %d open trades", accountID, len(open))
	}
}
