// Package channel delivers trade commands to the venue asynchronously with
// at-least-once semantics and a bounded acknowledgement timeout.
package channel

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rxtech-lab/argo-autotrader/internal/logger"
	"github.com/rxtech-lab/argo-autotrader/internal/types"
	"github.com/rxtech-lab/argo-autotrader/internal/venue"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
	"go.uber.org/zap"
)

// Dispatcher is what the lifecycle manager needs from the channel.
type Dispatcher interface {
	// Dispatch sends the command once and waits for the venue's answer.
	Dispatch(ctx context.Context, cmd types.TradeCommand) (types.CommandOutcome, error)
	// DispatchWithRetry retries failed dispatches up to attempts times.
	DispatchWithRetry(ctx context.Context, cmd types.TradeCommand, attempts int) (types.CommandOutcome, error)
}

// Config tunes the command channel.
type Config struct {
	AckTimeout    time.Duration `json:"ack_timeout" yaml:"ack_timeout" jsonschema:"title=Ack Timeout,default=10s"`
	QueueSize     int           `json:"queue_size" yaml:"queue_size" jsonschema:"title=Queue Size,default=64" validate:"gte=0"`
	Workers       int           `json:"workers" yaml:"workers" jsonschema:"title=Workers,default=2" validate:"gte=0"`
	RetryInterval time.Duration `json:"retry_interval" yaml:"retry_interval" jsonschema:"title=Retry Interval,default=500ms"`
	// AckRetention is how long an acknowledgement stays cached for duplicate dispatches.
	AckRetention time.Duration `json:"ack_retention" yaml:"ack_retention" jsonschema:"title=Ack Retention,default=1h"`
}

// DefaultConfig returns the channel defaults.
func DefaultConfig() Config {
	return Config{
		AckTimeout:    10 * time.Second,
		QueueSize:     64,
		Workers:       2,
		RetryInterval: 500 * time.Millisecond,
		AckRetention:  time.Hour,
	}
}

// call is one in-flight submission shared by every Dispatch of the same command id.
type call struct {
	cmd     types.TradeCommand
	done    chan struct{}
	ticket  string
	err     error
	attempt int
}

// record is what the channel remembers about a command id.
type record struct {
	attempts int
	outcome  types.CommandOutcome
	acked    bool
	seen     time.Time
}

// Channel queues commands for a pool of workers that submit them to the venue.
type Channel struct {
	venue  venue.Venue
	config Config
	logger *logger.Logger

	queue chan *call
	done  chan struct{}
	wg    sync.WaitGroup

	mu       sync.Mutex
	inflight map[string]*call
	history  map[string]*record
	pruned   time.Time
	closed   bool
	now      func() time.Time
}

// New creates a channel in front of v. Call Start before dispatching.
func New(v venue.Venue, config Config, log *logger.Logger) *Channel {
	defaults := DefaultConfig()
	if config.AckTimeout <= 0 {
		config.AckTimeout = defaults.AckTimeout
	}

	if config.QueueSize <= 0 {
		config.QueueSize = defaults.QueueSize
	}

	if config.Workers <= 0 {
		config.Workers = defaults.Workers
	}

	if config.RetryInterval <= 0 {
		config.RetryInterval = defaults.RetryInterval
	}

	if config.AckRetention <= 0 {
		config.AckRetention = defaults.AckRetention
	}

	return &Channel{
		venue:    v,
		config:   config,
		logger:   log,
		queue:    make(chan *call, config.QueueSize),
		done:     make(chan struct{}),
		wg:       sync.WaitGroup{},
		mu:       sync.Mutex{},
		inflight: make(map[string]*call),
		history:  make(map[string]*record),
		pruned:   time.Time{},
		closed:   false,
		now:      time.Now,
	}
}

// Start launches the worker pool.
func (c *Channel) Start() {
	for i := 0; i < c.config.Workers; i++ {
		c.wg.Add(1)

		go c.worker()
	}
}

// Dispatch submits cmd and waits for the venue's answer or the ack timeout.
// Once the command is queued, cancelling ctx no longer aborts the wait.
// An acknowledgement already received for the same command id is returned with
// Duplicate set and the venue is not contacted again.
func (c *Channel) Dispatch(ctx context.Context, cmd types.TradeCommand) (types.CommandOutcome, error) {
	if err := cmd.Validate(); err != nil {
		return c.failed(cmd, 0, err), err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		err := errors.New(errors.ErrCodeChannelClosed, "command channel is closed")

		return c.failed(cmd, 0, err), err
	}

	now := c.now()
	c.prune(now)

	seen, ok := c.history[cmd.ID]
	if ok && seen.acked {
		c.mu.Unlock()

		outcome := seen.outcome
		outcome.Duplicate = true

		return outcome, nil
	}

	if !ok {
		seen = &record{attempts: 0, outcome: types.CommandOutcome{}, acked: false, seen: now}
		c.history[cmd.ID] = seen
	}

	pending, shared := c.inflight[cmd.ID]
	if !shared {
		seen.attempts++
		seen.seen = now
		pending = &call{cmd: cmd, done: make(chan struct{}), ticket: "", err: nil, attempt: seen.attempts}
		c.inflight[cmd.ID] = pending
	}
	c.mu.Unlock()

	if !shared {
		select {
		case c.queue <- pending:
		case <-ctx.Done():
			c.forget(pending)
			err := errors.Wrapf(errors.ErrCodeVenueTimeout, ctx.Err(), "command %s was not queued", cmd.ID)

			return c.failed(cmd, pending.attempt, err), err
		case <-c.done:
			c.forget(pending)
			err := errors.New(errors.ErrCodeChannelClosed, "command channel is closed")

			return c.failed(cmd, pending.attempt, err), err
		}
	}

	timer := time.NewTimer(c.config.AckTimeout)
	defer timer.Stop()

	select {
	case <-pending.done:
		if pending.err != nil {
			return c.failed(cmd, pending.attempt, pending.err), pending.err
		}

		return types.CommandOutcome{
			CommandID:     cmd.ID,
			CorrelationID: cmd.CorrelationID,
			Status:        types.CommandStatusAcknowledged,
			TicketID:      pending.ticket,
			Error:         "",
			Attempts:      pending.attempt,
			Duplicate:     shared,
		}, nil
	case <-timer.C:
		err := errors.Newf(errors.ErrCodeVenueTimeout, "no acknowledgement for %s within %s", cmd.ID, c.config.AckTimeout)
		c.logger.Warn("Command acknowledgement timed out",
			zap.String("command_id", cmd.ID),
			zap.Duration("timeout", c.config.AckTimeout))

		return c.failed(cmd, pending.attempt, err), err
	}
}

// DispatchWithRetry dispatches cmd up to attempts times with exponential backoff.
// Invalid commands are not retried.
func (c *Channel) DispatchWithRetry(ctx context.Context, cmd types.TradeCommand, attempts int) (types.CommandOutcome, error) {
	if attempts < 1 {
		attempts = 1
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.config.RetryInterval
	policy.MaxElapsedTime = 0

	var outcome types.CommandOutcome

	operation := func() error {
		var err error

		outcome, err = c.Dispatch(ctx, cmd)
		if err != nil && (errors.HasCode(err, errors.ErrCodeInvalidCommand) ||
			errors.HasCode(err, errors.ErrCodeInvalidStopLoss) ||
			errors.HasCode(err, errors.ErrCodeChannelClosed)) {
			return backoff.Permanent(err)
		}

		return err
	}

	notify := func(err error, wait time.Duration) {
		c.logger.Warn("Retrying command dispatch",
			zap.String("command_id", cmd.ID),
			zap.Duration("wait", wait),
			zap.Error(err))
	}

	err := backoff.RetryNotify(operation,
		backoff.WithContext(backoff.WithMaxRetries(policy, uint64(attempts-1)), ctx), notify)

	return outcome, err
}

// Close stops the workers after their current submission finishes.
func (c *Channel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()

		return nil
	}

	c.closed = true
	c.mu.Unlock()

	close(c.done)
	c.wg.Wait()

	return nil
}

//nolint:funcorder // helper method used by Start
func (c *Channel) worker() {
	defer c.wg.Done()

	for {
		select {
		case <-c.done:
			return
		case pending := <-c.queue:
			c.submit(pending)
		}
	}
}

//nolint:funcorder // helper method used by worker
func (c *Channel) submit(pending *call) {
	ctx, cancel := context.WithTimeout(context.Background(), c.config.AckTimeout)
	defer cancel()

	ticket, err := c.venue.Submit(ctx, pending.cmd)

	c.mu.Lock()
	delete(c.inflight, pending.cmd.ID)

	if err == nil {
		c.history[pending.cmd.ID] = &record{
			attempts: pending.attempt,
			outcome: types.CommandOutcome{
				CommandID:     pending.cmd.ID,
				CorrelationID: pending.cmd.CorrelationID,
				Status:        types.CommandStatusAcknowledged,
				TicketID:      ticket,
				Error:         "",
				Attempts:      pending.attempt,
				Duplicate:     false,
			},
			acked: true,
			seen:  c.now(),
		}
	}
	c.mu.Unlock()

	if err != nil && !errors.IsVenueDispatchError(err) {
		err = errors.Wrapf(errors.ErrCodeVenueDispatchFailed, err, "%s failed to execute %s", c.venue.Name(), pending.cmd.ID)
	}

	pending.ticket = ticket
	pending.err = err
	close(pending.done)

	c.logger.Debug("Venue answered command",
		zap.String("command_id", pending.cmd.ID),
		zap.String("venue", c.venue.Name()),
		zap.String("ticket_id", ticket),
		zap.Error(err))
}

// prune drops command ids not seen within the retention window. The caller holds mu.
//
//nolint:funcorder // helper method used by Dispatch
func (c *Channel) prune(now time.Time) {
	if now.Sub(c.pruned) < c.config.AckRetention/4 {
		return
	}

	c.pruned = now

	for id, seen := range c.history {
		if _, busy := c.inflight[id]; busy {
			continue
		}

		if now.Sub(seen.seen) > c.config.AckRetention {
			delete(c.history, id)
		}
	}
}

//nolint:funcorder // helper method used by Dispatch
func (c *Channel) forget(pending *call) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inflight[pending.cmd.ID] == pending {
		delete(c.inflight, pending.cmd.ID)
	}
}

//nolint:funcorder // helper method used by Dispatch
func (c *Channel) failed(cmd types.TradeCommand, attempt int, err error) types.CommandOutcome {
	return types.CommandOutcome{
		CommandID:     cmd.ID,
		CorrelationID: cmd.CorrelationID,
		Status:        types.CommandStatusFailed,
		TicketID:      "",
		Error:         err.Error(),
		Attempts:      attempt,
		Duplicate:     false,
	}
}
