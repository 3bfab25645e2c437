package venue

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rxtech-lab/argo-autotrader/internal/logger"
	"go.uber.org/zap"
)

// BridgeServer exposes a Venue over the bridge websocket protocol. It lets a
// paper venue stand in for a real terminal bridge.
type BridgeServer struct {
	backend  Venue
	logger   *logger.Logger
	upgrader websocket.Upgrader
	timeout  time.Duration

	mu    sync.Mutex
	conns map[*websocket.Conn]bool
}

// NewBridgeServer wraps backend. Each command is given timeout to execute.
func NewBridgeServer(backend Venue, timeout time.Duration, log *logger.Logger) *BridgeServer {
	return &BridgeServer{
		backend: backend,
		logger:  log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
		timeout: timeout,
		mu:      sync.Mutex{},
		conns:   make(map[*websocket.Conn]bool),
	}
}

// Handler returns the router serving /ws and /healthz.
func (s *BridgeServer) Handler() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("GET")
	router.HandleFunc("/ws", s.handleWebSocket)

	return router
}

// CloseConnections disconnects every client.
func (s *BridgeServer) CloseConnections() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for conn := range s.conns {
		conn.Close()
	}

	s.conns = make(map[*websocket.Conn]bool)
}

func (s *BridgeServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	s.mu.Lock()
	s.conns[conn] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	var writeMu sync.Mutex

	for {
		var msg BridgeMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}

		if msg.Type != MessageTypeCommand || msg.Command == nil {
			continue
		}

		cmd := *msg.Command

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
			defer cancel()

			ack := BridgeMessage{
				Type:          MessageTypeAck,
				Command:       nil,
				CommandID:     cmd.ID,
				CorrelationID: cmd.CorrelationID,
				TicketID:      "",
				Status:        AckStatusExecuted,
				Error:         "",
			}

			ticket, err := s.backend.Submit(ctx, cmd)
			if err != nil {
				ack.Status = AckStatusRejected
				ack.Error = err.Error()
			} else {
				ack.TicketID = ticket
			}

			s.logger.Debug("Bridge executed command",
				zap.String("command_id", cmd.ID),
				zap.String("status", ack.Status))

			writeMu.Lock()
			defer writeMu.Unlock()

			if err := conn.WriteJSON(ack); err != nil {
				s.logger.Warn("Failed to write bridge ack", zap.Error(err))
			}
		}()
	}
}
