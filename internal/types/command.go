package types

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
)

// CommandAction is the instruction sent to the execution venue.
type CommandAction string

const (
	CommandActionOpen   CommandAction = "OPEN"
	CommandActionClose  CommandAction = "CLOSE"
	CommandActionModify CommandAction = "MODIFY"
)

// CommandStatus tracks a command from creation to the venue's answer.
type CommandStatus string

const (
	CommandStatusPending      CommandStatus = "PENDING"
	CommandStatusAcknowledged CommandStatus = "ACKNOWLEDGED"
	CommandStatusFailed       CommandStatus = "FAILED"
)

// TradeCommand is a persisted instruction to the venue. CorrelationID is the id of
// the trade the command belongs to; ID is derived from it and the action so the same
// logical command always maps onto the same row.
type TradeCommand struct {
	ID            string        `json:"id" yaml:"id" validate:"required"`
	CorrelationID string        `json:"correlation_id" yaml:"correlation_id" validate:"required"`
	AccountID     string        `json:"account_id" yaml:"account_id" validate:"required"`
	Action        CommandAction `json:"action" yaml:"action" validate:"required,oneof=OPEN CLOSE MODIFY"`
	Symbol        string        `json:"symbol" yaml:"symbol" validate:"required"`
	Side          Side          `json:"side" yaml:"side" validate:"required,oneof=LONG SHORT"`
	Volume        float64       `json:"volume" yaml:"volume" validate:"gt=0"`
	// Price is the reference price: the entry for OPEN, the exit for CLOSE.
	Price      float64       `json:"price" yaml:"price" validate:"gt=0"`
	StopLoss   float64       `json:"stop_loss" yaml:"stop_loss" validate:"gte=0"`
	TakeProfit float64       `json:"take_profit" yaml:"take_profit" validate:"gte=0"`
	Confidence string        `json:"confidence" yaml:"confidence"`
	Status     CommandStatus `json:"status" yaml:"status" validate:"required,oneof=PENDING ACKNOWLEDGED FAILED"`
	TicketID   string        `json:"ticket_id" yaml:"ticket_id"`
	Error      string        `json:"error" yaml:"error"`
	Attempts   int           `json:"attempts" yaml:"attempts"`
	// Applied is set once the ledger reflects the acknowledged command. A FAILED
	// command carries it once the failure is final.
	Applied   bool      `json:"applied" yaml:"applied"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// CommandID derives the deterministic command id for a trade and action.
func CommandID(correlationID string, action CommandAction) string {
	return correlationID + ":" + strings.ToLower(string(action))
}

// Validate checks the command before it is dispatched.
func (c TradeCommand) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidCommand, "invalid trade command", err)
	}

	if c.Action == CommandActionOpen {
		if c.Side == SideLong && (c.StopLoss >= c.Price || c.TakeProfit <= c.Price) {
			return errors.Newf(errors.ErrCodeInvalidStopLoss,
				"long command %s must have stop below and target above %.2f", c.ID, c.Price)
		}

		if c.Side == SideShort && (c.StopLoss <= c.Price || c.TakeProfit >= c.Price) {
			return errors.Newf(errors.ErrCodeInvalidStopLoss,
				"short command %s must have stop above and target below %.2f", c.ID, c.Price)
		}
	}

	return nil
}

// NewOpenCommand builds the PENDING command that opens the trade identified by tradeID.
func NewOpenCommand(tradeID, accountID, symbol string, gated GatedDecision, confidence string, now time.Time) TradeCommand {
	return TradeCommand{
		ID:            CommandID(tradeID, CommandActionOpen),
		CorrelationID: tradeID,
		AccountID:     accountID,
		Action:        CommandActionOpen,
		Symbol:        symbol,
		Side:          gated.Side(),
		Volume:        gated.Volume,
		Price:         gated.EntryPrice,
		StopLoss:      gated.StopLoss,
		TakeProfit:    gated.TakeProfit,
		Confidence:    confidence,
		Status:        CommandStatusPending,
		TicketID:      "",
		Error:         "",
		Attempts:      0,
		Applied:       false,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// NewCloseCommand builds the PENDING command that closes trade at exitPrice.
func NewCloseCommand(trade Trade, exitPrice float64, now time.Time) TradeCommand {
	return TradeCommand{
		ID:            CommandID(trade.ID, CommandActionClose),
		CorrelationID: trade.ID,
		AccountID:     trade.AccountID,
		Action:        CommandActionClose,
		Symbol:        trade.Symbol,
		Side:          trade.Side,
		Volume:        trade.Volume,
		Price:         exitPrice,
		StopLoss:      trade.StopLoss,
		TakeProfit:    trade.TakeProfit,
		Confidence:    trade.Confidence,
		Status:        CommandStatusPending,
		TicketID:      "",
		Error:         "",
		Attempts:      0,
		Applied:       false,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// OpenedTrade is the trade recorded once an OPEN command has been acknowledged.
func (c TradeCommand) OpenedTrade(openedAt time.Time) Trade {
	return Trade{
		ID:         c.CorrelationID,
		AccountID:  c.AccountID,
		Symbol:     c.Symbol,
		Side:       c.Side,
		EntryPrice: c.Price,
		Volume:     c.Volume,
		StopLoss:   c.StopLoss,
		TakeProfit: c.TakeProfit,
		Confidence: c.Confidence,
		Status:     TradeStatusOpen,
		OpenedAt:   openedAt,
		ExitPrice:  optional.None[float64](),
		Profit:     optional.None[float64](),
		ClosedAt:   optional.None[time.Time](),
	}
}

// CommandOutcome is the venue's answer to a dispatched command.
type CommandOutcome struct {
	CommandID     string        `json:"command_id"`
	CorrelationID string        `json:"correlation_id"`
	Status        CommandStatus `json:"status"`
	TicketID      string        `json:"ticket_id"`
	Error         string        `json:"error"`
	Attempts      int           `json:"attempts"`
	// Duplicate is true when the acknowledgement was served from an earlier dispatch.
	Duplicate bool `json:"duplicate"`
}

// Acknowledged reports whether the venue accepted the command.
func (o CommandOutcome) Acknowledged() bool {
	return o.Status == CommandStatusAcknowledged
}
