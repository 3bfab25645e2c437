package venue

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rxtech-lab/argo-autotrader/internal/logger"
	"github.com/rxtech-lab/argo-autotrader/internal/types"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
	"go.uber.org/zap"
)

// BridgeConfig points at a local execution bridge speaking JSON over websocket.
type BridgeConfig struct {
	URL string `json:"url" yaml:"url" jsonschema:"title=Bridge URL,default=ws://127.0.0.1:8765/ws"`
}

// Message types on the bridge wire.
const (
	MessageTypeCommand = "command"
	MessageTypeAck     = "ack"
)

// Ack statuses sent back by the bridge.
const (
	AckStatusExecuted = "EXECUTED"
	AckStatusRejected = "REJECTED"
)

// BridgeMessage is the envelope exchanged with the bridge. Commands go out with
// Type=command, acknowledgements come back with Type=ack keyed by CommandID.
type BridgeMessage struct {
	Type          string              `json:"type"`
	Command       *types.TradeCommand `json:"command,omitempty"`
	CommandID     string              `json:"command_id,omitempty"`
	CorrelationID string              `json:"correlation_id,omitempty"`
	TicketID      string              `json:"ticket_id,omitempty"`
	Status        string              `json:"status,omitempty"`
	Error         string              `json:"error,omitempty"`
}

// BridgeVenue forwards commands to an out-of-process bridge and waits for the
// acknowledgement carrying the same command id.
type BridgeVenue struct {
	url    string
	dialer *websocket.Dialer
	logger *logger.Logger

	connMu  sync.Mutex
	conn    *websocket.Conn
	writeMu sync.Mutex

	pendingMu sync.Mutex
	pending   map[string]chan BridgeMessage
}

// NewBridgeVenue creates a bridge client. The connection is dialed on first use.
func NewBridgeVenue(config BridgeConfig, log *logger.Logger) (*BridgeVenue, error) {
	if config.URL == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "bridge venue requires a url")
	}

	return &BridgeVenue{
		url:       config.URL,
		dialer:    websocket.DefaultDialer,
		logger:    log,
		connMu:    sync.Mutex{},
		conn:      nil,
		writeMu:   sync.Mutex{},
		pendingMu: sync.Mutex{},
		pending:   make(map[string]chan BridgeMessage),
	}, nil
}

func (b *BridgeVenue) Name() string {
	return ProviderBridge
}

// Submit sends the command and blocks until its acknowledgement or ctx ends.
func (b *BridgeVenue) Submit(ctx context.Context, cmd types.TradeCommand) (string, error) {
	conn, err := b.connect(ctx)
	if err != nil {
		return "", err
	}

	ackCh := make(chan BridgeMessage, 1)

	b.pendingMu.Lock()
	b.pending[cmd.ID] = ackCh
	b.pendingMu.Unlock()

	defer func() {
		b.pendingMu.Lock()
		delete(b.pending, cmd.ID)
		b.pendingMu.Unlock()
	}()

	outgoing := cmd

	b.writeMu.Lock()
	err = conn.WriteJSON(BridgeMessage{Type: MessageTypeCommand, Command: &outgoing})
	b.writeMu.Unlock()

	if err != nil {
		b.dropConnection(conn)

		return "", errors.Wrapf(errors.ErrCodeVenueDispatchFailed, err, "failed to send %s to bridge", cmd.ID)
	}

	select {
	case ack, ok := <-ackCh:
		if !ok {
			return "", errors.Newf(errors.ErrCodeVenueNotConnected, "bridge connection lost while waiting for %s", cmd.ID)
		}

		if ack.Status != AckStatusExecuted {
			return "", errors.Newf(errors.ErrCodeCommandRejected, "bridge rejected %s: %s", cmd.ID, ack.Error)
		}

		return ack.TicketID, nil
	case <-ctx.Done():
		return "", errors.Wrapf(errors.ErrCodeVenueTimeout, ctx.Err(), "no acknowledgement for %s", cmd.ID)
	}
}

// Close drops the connection and fails every waiting submit.
func (b *BridgeVenue) Close() error {
	b.connMu.Lock()
	conn := b.conn
	b.conn = nil
	b.connMu.Unlock()

	if conn == nil {
		return nil
	}

	return conn.Close()
}

//nolint:funcorder // helper method used by Submit
func (b *BridgeVenue) connect(ctx context.Context) (*websocket.Conn, error) {
	b.connMu.Lock()
	defer b.connMu.Unlock()

	if b.conn != nil {
		return b.conn, nil
	}

	conn, _, err := b.dialer.DialContext(ctx, b.url, nil)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeVenueNotConnected, err, "failed to dial bridge %s", b.url)
	}

	b.conn = conn
	b.logger.Info("Connected to execution bridge", zap.String("url", b.url))

	go b.readLoop(conn)

	return conn, nil
}

//nolint:funcorder // helper method used by connect
func (b *BridgeVenue) readLoop(conn *websocket.Conn) {
	defer b.failPending()
	defer b.dropConnection(conn)

	for {
		var msg BridgeMessage
		if err := conn.ReadJSON(&msg); err != nil {
			b.logger.Warn("Bridge connection closed", zap.Error(err))

			return
		}

		if msg.Type != MessageTypeAck {
			continue
		}

		b.pendingMu.Lock()
		ackCh, ok := b.pending[msg.CommandID]
		b.pendingMu.Unlock()

		if !ok {
			b.logger.Info("Dropping acknowledgement with no waiter",
				zap.String("command_id", msg.CommandID),
				zap.String("ticket_id", msg.TicketID))

			continue
		}

		select {
		case ackCh <- msg:
		default:
		}
	}
}

//nolint:funcorder // helper method used by Submit and readLoop
func (b *BridgeVenue) dropConnection(conn *websocket.Conn) {
	b.connMu.Lock()
	if b.conn == conn {
		b.conn = nil
	}
	b.connMu.Unlock()

	conn.Close()
}

//nolint:funcorder // helper method used by readLoop
func (b *BridgeVenue) failPending() {
	b.pendingMu.Lock()
	defer b.pendingMu.Unlock()

	for id, ackCh := range b.pending {
		close(ackCh)
		delete(b.pending, id)
	}
}
