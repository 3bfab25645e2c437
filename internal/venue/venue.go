// Package venue talks to the execution venue that fills trade commands.
package venue

import (
	"context"

	"github.com/rxtech-lab/argo-autotrader/internal/logger"
	"github.com/rxtech-lab/argo-autotrader/internal/types"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
)

// Venue submits commands and returns the venue's ticket id. Submitting the same
// command id twice must not execute it twice.
type Venue interface {
	Submit(ctx context.Context, cmd types.TradeCommand) (string, error)
	Name() string
	Close() error
}

// Provider names accepted by New.
const (
	ProviderPaper   = "paper"
	ProviderBinance = "binance"
	ProviderBridge  = "bridge"
)

// Config selects and configures the venue.
type Config struct {
	Provider string        `json:"provider" yaml:"provider" jsonschema:"title=Provider,enum=paper,enum=binance,enum=bridge,default=paper" validate:"required,oneof=paper binance bridge"`
	Binance  BinanceConfig `json:"binance" yaml:"binance"`
	Bridge   BridgeConfig  `json:"bridge" yaml:"bridge"`
}

// New builds the configured venue.
func New(config Config, log *logger.Logger) (Venue, error) {
	switch config.Provider {
	case ProviderPaper, "":
		return NewPaperVenue(), nil
	case ProviderBinance:
		return NewBinanceVenue(config.Binance, log)
	case ProviderBridge:
		return NewBridgeVenue(config.Bridge, log)
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported venue provider %q", config.Provider)
	}
}
