// Package api exposes account state and the activity feed over HTTP. It reads the
// ledger and toggles auto-trading; it never drives trading decisions.
package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rxtech-lab/argo-autotrader/internal/engine"
	"github.com/rxtech-lab/argo-autotrader/internal/ledger"
	"github.com/rxtech-lab/argo-autotrader/internal/logger"
	"github.com/rxtech-lab/argo-autotrader/internal/types"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
	"go.uber.org/zap"
)

const (
	defaultActivityLimit = 50
	shutdownTimeout      = 5 * time.Second
)

// Config controls the control surface.
type Config struct {
	Enabled bool   `json:"enabled" yaml:"enabled" jsonschema:"title=Enable HTTP API,default=false"`
	Listen  string `json:"listen" yaml:"listen" jsonschema:"title=Listen Address,default=:8080"`
}

// AccountView is an account together with its open trade.
type AccountView struct {
	Account   types.Account `json:"account"`
	State     engine.State  `json:"state"`
	OpenTrade *types.Trade  `json:"open_trade,omitempty"`
}

// AutoTradingRequest is the body of PUT /accounts/{id}/auto-trading.
type AutoTradingRequest struct {
	Enabled *bool `json:"enabled"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// Server serves the ledger over HTTP.
type Server struct {
	store  ledger.Store
	logger *logger.Logger
	now    func() time.Time
}

// NewServer creates a server reading from store.
func NewServer(store ledger.Store, log *logger.Logger) *Server {
	return &Server{
		store:  store,
		logger: log,
		now:    time.Now,
	}
}

// Handler returns the routes.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/accounts", s.handleListAccounts).Methods(http.MethodGet)
	router.HandleFunc("/accounts/{id}", s.handleGetAccount).Methods(http.MethodGet)
	router.HandleFunc("/accounts/{id}/trades", s.handleListTrades).Methods(http.MethodGet)
	router.HandleFunc("/accounts/{id}/activity", s.handleListActivity).Methods(http.MethodGet)
	router.HandleFunc("/accounts/{id}/auto-trading", s.handleAutoTrading).Methods(http.MethodPut)

	return router
}

// Serve listens on address until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, address string) error {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to listen on %s", address)
	}

	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("HTTP API shutdown failed", zap.Error(err))
		}
	}()

	s.logger.Info("HTTP API listening", zap.String("address", listener.Addr().String()))

	if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.store.ListAccounts(r.Context())
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, accounts)
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	account, err := s.store.GetAccount(r.Context(), id)
	if err != nil {
		s.writeError(w, err)

		return
	}

	open, err := s.store.ReadOpenTrade(r.Context(), id)
	if err != nil {
		s.writeError(w, err)

		return
	}

	view := AccountView{Account: account, State: engine.StateIdle, OpenTrade: nil}

	if trade, takeErr := open.Take(); takeErr == nil {
		view.State = engine.StateInTrade
		view.OpenTrade = &trade
	}

	s.writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleListTrades(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if _, err := s.store.GetAccount(r.Context(), id); err != nil {
		s.writeError(w, err)

		return
	}

	limit, err := parseLimit(r, 0)
	if err != nil {
		s.writeError(w, err)

		return
	}

	filter := ledger.TradeFilter{
		AccountID:  id,
		Statuses:   nil,
		ClosedFrom: time.Time{},
		ClosedTo:   time.Time{},
		Limit:      limit,
	}

	if status := r.URL.Query().Get("status"); status != "" {
		filter.Statuses = []types.TradeStatus{types.TradeStatus(status)}
	}

	trades, err := s.store.ListTrades(r.Context(), filter)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, trades)
}

func (s *Server) handleListActivity(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	limit, err := parseLimit(r, defaultActivityLimit)
	if err != nil {
		s.writeError(w, err)

		return
	}

	entries, err := s.store.ListActivity(r.Context(), id, limit)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleAutoTrading(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var request AutoTradingRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.Enabled == nil {
		s.writeError(w, errors.New(errors.ErrCodeInvalidParameter, "body must be {\"enabled\": true|false}"))

		return
	}

	account, err := engine.SetAutoTrading(r.Context(), s.store, id, *request.Enabled, s.now())
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.logger.Info("Auto-trading toggled",
		zap.String("account_id", id),
		zap.Bool("enabled", account.AutoTradingEnabled))

	s.writeJSON(w, http.StatusOK, account)
}

//nolint:funcorder // helper method used by every handler
func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("Failed to write response", zap.Error(err))
	}
}

//nolint:funcorder // helper method used by every handler
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("API request failed", zap.Error(err))
	}

	s.writeJSON(w, status, errorResponse{Error: err.Error(), Code: int(errors.GetCode(err))})
}

func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeAccountNotFound, errors.ErrCodeTradeNotFound, errors.ErrCodeDataNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInvalidParameter, errors.ErrCodeMissingParameter:
		return http.StatusBadRequest
	case errors.ErrCodeVersionConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func parseLimit(r *http.Request, fallback int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidParameter, "invalid limit %q", raw)
	}

	return limit, nil
}
