package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-autotrader/internal/engine"
	"github.com/rxtech-lab/argo-autotrader/internal/ledger"
	"github.com/rxtech-lab/argo-autotrader/internal/logger"
	"github.com/rxtech-lab/argo-autotrader/internal/types"
	"github.com/stretchr/testify/suite"
)

type ServerTestSuite struct {
	suite.Suite
	ctx    context.Context
	store  *ledger.MemoryStore
	server *httptest.Server
	now    time.Time
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func (s *ServerTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = ledger.NewMemoryStore()
	s.now = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	s.Require().NoError(s.store.CreateAccount(s.ctx, types.NewAccount("acc-1", s.now)))
	s.Require().NoError(s.store.CreateTrade(s.ctx, types.Trade{
		ID:         "trade-1",
		AccountID:  "acc-1",
		Symbol:     "XAUUSD",
		Side:       types.SideLong,
		EntryPrice: 1950,
		Volume:     0.1,
		StopLoss:   1944,
		TakeProfit: 1958,
		Confidence: "Moderate",
		Status:     types.TradeStatusOpen,
		OpenedAt:   s.now,
		ExitPrice:  optional.None[float64](),
		Profit:     optional.None[float64](),
		ClosedAt:   optional.None[time.Time](),
	}))
	s.Require().NoError(s.store.AppendActivity(s.ctx,
		types.NewActivity("acc-1", types.ActivitySignal, "Opened LONG trade: 0.10 lots @ $1950.00", s.now)))

	api := NewServer(s.store, logger.NewNop())
	api.now = func() time.Time { return s.now }
	s.server = httptest.NewServer(api.Handler())
}

func (s *ServerTestSuite) TearDownTest() {
	s.server.Close()
}

func (s *ServerTestSuite) do(method, path, body string) *http.Response {
	req, err := http.NewRequestWithContext(s.ctx, method, s.server.URL+path, strings.NewReader(body))
	s.Require().NoError(err)

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	s.T().Cleanup(func() { resp.Body.Close() })

	return resp
}

func (s *ServerTestSuite) decode(resp *http.Response, target any) {
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(target))
}

func (s *ServerTestSuite) TestHealth() {
	resp := s.do(http.MethodGet, "/healthz", "")
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *ServerTestSuite) TestGetAccount() {
	resp := s.do(http.MethodGet, "/accounts/acc-1", "")
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var view AccountView
	s.decode(resp, &view)
	s.Equal("acc-1", view.Account.ID)
	s.Equal(engine.StateInTrade, view.State)
	s.Require().NotNil(view.OpenTrade)
	s.Equal("trade-1", view.OpenTrade.ID)
}

func (s *ServerTestSuite) TestUnknownAccount() {
	resp := s.do(http.MethodGet, "/accounts/nobody", "")
	s.Equal(http.StatusNotFound, resp.StatusCode)

	var body errorResponse
	s.decode(resp, &body)
	s.Contains(body.Error, "nobody")
}

func (s *ServerTestSuite) TestListAccounts() {
	resp := s.do(http.MethodGet, "/accounts", "")
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var accounts []types.Account
	s.decode(resp, &accounts)
	s.Len(accounts, 1)
}

func (s *ServerTestSuite) TestListTrades() {
	resp := s.do(http.MethodGet, "/accounts/acc-1/trades?status=OPEN", "")
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var trades []types.Trade
	s.decode(resp, &trades)
	s.Require().Len(trades, 1)
	s.Equal(types.TradeStatusOpen, trades[0].Status)

	resp = s.do(http.MethodGet, "/accounts/acc-1/trades?status=WON", "")
	s.decode(resp, &trades)
	s.Empty(trades)

	resp = s.do(http.MethodGet, "/accounts/acc-1/trades?limit=-1", "")
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *ServerTestSuite) TestListActivity() {
	resp := s.do(http.MethodGet, "/accounts/acc-1/activity?limit=10", "")
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var entries []types.ActivityLogEntry
	s.decode(resp, &entries)
	s.Require().Len(entries, 1)
	s.Equal(types.ActivitySignal, entries[0].Category)
}

func (s *ServerTestSuite) TestToggleAutoTrading() {
	resp := s.do(http.MethodPut, "/accounts/acc-1/auto-trading", `{"enabled": true}`)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var account types.Account
	s.decode(resp, &account)
	s.True(account.AutoTradingEnabled)

	entries, err := s.store.ListActivity(s.ctx, "acc-1", 1)
	s.Require().NoError(err)
	s.Contains(entries[0].Message, "AUTO-TRADING: ACTIVE")

	resp = s.do(http.MethodPut, "/accounts/acc-1/auto-trading", `{}`)
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	resp = s.do(http.MethodPut, "/accounts/nobody/auto-trading", `{"enabled": false}`)
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *ServerTestSuite) TestMethodNotAllowed() {
	resp := s.do(http.MethodPost, "/accounts/acc-1", "")
	s.Equal(http.StatusMethodNotAllowed, resp.StatusCode)
}
