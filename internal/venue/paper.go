package venue

import (
	"context"
	"fmt"
	"sync"

	"github.com/rxtech-lab/argo-autotrader/internal/types"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
)

// PaperVenue fills every command instantly in memory.
type PaperVenue struct {
	mu        sync.Mutex
	tickets   map[string]string
	positions map[string]types.TradeCommand
	seq       int
}

// NewPaperVenue creates an empty simulated venue.
func NewPaperVenue() *PaperVenue {
	return &PaperVenue{
		mu:        sync.Mutex{},
		tickets:   make(map[string]string),
		positions: make(map[string]types.TradeCommand),
		seq:       0,
	}
}

func (p *PaperVenue) Name() string {
	return ProviderPaper
}

// Submit fills the command. A repeated command id returns the original ticket.
func (p *PaperVenue) Submit(ctx context.Context, cmd types.TradeCommand) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errors.Wrap(errors.ErrCodeVenueTimeout, "paper venue submit cancelled", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if ticket, ok := p.tickets[cmd.ID]; ok {
		return ticket, nil
	}

	switch cmd.Action {
	case types.CommandActionOpen:
		p.positions[cmd.CorrelationID] = cmd
	case types.CommandActionClose:
		// closing a position the venue no longer holds is a no-op
		delete(p.positions, cmd.CorrelationID)
	case types.CommandActionModify:
		position, ok := p.positions[cmd.CorrelationID]
		if !ok {
			return "", errors.Newf(errors.ErrCodeCommandRejected, "no open position for %s", cmd.CorrelationID)
		}

		position.StopLoss = cmd.StopLoss
		position.TakeProfit = cmd.TakeProfit
		p.positions[cmd.CorrelationID] = position
	default:
		return "", errors.Newf(errors.ErrCodeUnsupportedAction, "unsupported action %s", cmd.Action)
	}

	p.seq++
	ticket := fmt.Sprintf("paper-%06d", p.seq)
	p.tickets[cmd.ID] = ticket

	return ticket, nil
}

// OpenPositions returns the correlation ids the venue currently holds.
func (p *PaperVenue) OpenPositions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	ids := make([]string, 0, len(p.positions))
	for id := range p.positions {
		ids = append(ids, id)
	}

	return ids
}

func (p *PaperVenue) Close() error {
	return nil
}
