package venue

import (
	"context"
	"strconv"
	"strings"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"github.com/rxtech-lab/argo-autotrader/internal/logger"
	"github.com/rxtech-lab/argo-autotrader/internal/types"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
	"go.uber.org/zap"
)

// BinanceConfig contains credentials for the Binance spot venue.
type BinanceConfig struct {
	APIKey    string `json:"api_key" yaml:"api_key" jsonschema:"title=API Key,description=Binance API key"`
	SecretKey string `json:"secret_key" yaml:"secret_key" jsonschema:"title=Secret Key,description=Binance API secret key"`
	// BaseURL takes precedence over Testnet when set.
	BaseURL string `json:"base_url" yaml:"base_url" jsonschema:"title=Base URL"`
	Testnet bool   `json:"testnet" yaml:"testnet" jsonschema:"title=Use Testnet,default=true"`
	// QuantityPrecision is the number of decimals sent for order quantities.
	QuantityPrecision int `json:"quantity_precision" yaml:"quantity_precision" jsonschema:"title=Quantity Precision,default=8"`
}

const binanceDuplicateOrderCode = -2010

// CreateOrderService is the subset of the Binance order builder the venue uses.
type CreateOrderService interface {
	Symbol(symbol string) CreateOrderService
	Side(side binance.SideType) CreateOrderService
	Type(orderType binance.OrderType) CreateOrderService
	Quantity(quantity string) CreateOrderService
	NewClientOrderID(id string) CreateOrderService
	Do(ctx context.Context) (*binance.CreateOrderResponse, error)
}

// BinanceClient abstracts the Binance client for testing.
type BinanceClient interface {
	NewCreateOrderService() CreateOrderService
}

type realBinanceClient struct {
	client *binance.Client
}

func (r *realBinanceClient) NewCreateOrderService() CreateOrderService {
	return &realCreateOrderService{service: r.client.NewCreateOrderService()}
}

type realCreateOrderService struct {
	service *binance.CreateOrderService
}

func (s *realCreateOrderService) Symbol(symbol string) CreateOrderService {
	s.service = s.service.Symbol(symbol)

	return s
}

func (s *realCreateOrderService) Side(side binance.SideType) CreateOrderService {
	s.service = s.service.Side(side)

	return s
}

func (s *realCreateOrderService) Type(orderType binance.OrderType) CreateOrderService {
	s.service = s.service.Type(orderType)

	return s
}

func (s *realCreateOrderService) Quantity(quantity string) CreateOrderService {
	s.service = s.service.Quantity(quantity)

	return s
}

func (s *realCreateOrderService) NewClientOrderID(id string) CreateOrderService {
	s.service = s.service.NewClientOrderID(id)

	return s
}

func (s *realCreateOrderService) Do(ctx context.Context) (*binance.CreateOrderResponse, error) {
	return s.service.Do(ctx)
}

// BinanceVenue fills commands with spot market orders.
type BinanceVenue struct {
	client    BinanceClient
	precision int
	logger    *logger.Logger
}

// NewBinanceVenue connects to Binance, or its testnet when configured.
func NewBinanceVenue(config BinanceConfig, log *logger.Logger) (*BinanceVenue, error) {
	if config.APIKey == "" || config.SecretKey == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "binance venue requires api_key and secret_key")
	}

	if config.Testnet {
		binance.UseTestnet = true
	}

	client := binance.NewClient(config.APIKey, config.SecretKey)
	if config.BaseURL != "" {
		client.BaseURL = config.BaseURL
	}

	return newBinanceVenueWithClient(&realBinanceClient{client: client}, config.QuantityPrecision, log), nil
}

// newBinanceVenueWithClient is used by tests with fake clients.
func newBinanceVenueWithClient(client BinanceClient, precision int, log *logger.Logger) *BinanceVenue {
	if precision <= 0 {
		precision = 8
	}

	return &BinanceVenue{
		client:    client,
		precision: precision,
		logger:    log,
	}
}

func (b *BinanceVenue) Name() string {
	return ProviderBinance
}

// Submit places a market order. The client order id is derived from the command id
// so Binance itself rejects a second execution of the same command.
func (b *BinanceVenue) Submit(ctx context.Context, cmd types.TradeCommand) (string, error) {
	side, err := binanceSide(cmd)
	if err != nil {
		return "", err
	}

	clientOrderID := ClientOrderID(cmd)

	response, err := b.client.NewCreateOrderService().
		Symbol(cmd.Symbol).
		Side(side).
		Type(binance.OrderTypeMarket).
		Quantity(strconv.FormatFloat(cmd.Volume, 'f', b.precision, 64)).
		NewClientOrderID(clientOrderID).
		Do(ctx)
	if err != nil {
		var apiErr *common.APIError
		if errors.As(err, &apiErr) && apiErr.Code == binanceDuplicateOrderCode &&
			strings.Contains(strings.ToLower(apiErr.Message), "duplicate") {
			b.logger.Info("Binance already has this order",
				zap.String("command_id", cmd.ID),
				zap.String("client_order_id", clientOrderID))

			return clientOrderID, nil
		}

		return "", errors.Wrapf(errors.ErrCodeVenueDispatchFailed, err, "binance rejected %s", cmd.ID)
	}

	return strconv.FormatInt(response.OrderID, 10), nil
}

func (b *BinanceVenue) Close() error {
	return nil
}

// ClientOrderID compresses the command id into Binance's 36 character limit.
func ClientOrderID(cmd types.TradeCommand) string {
	id := strings.ReplaceAll(cmd.CorrelationID, "-", "")
	if len(id) > 32 {
		id = id[:32]
	}

	return id + "-" + strings.ToLower(string(cmd.Action))[:1]
}

func binanceSide(cmd types.TradeCommand) (binance.SideType, error) {
	switch cmd.Action {
	case types.CommandActionOpen:
		if cmd.Side == types.SideShort {
			return binance.SideTypeSell, nil
		}

		return binance.SideTypeBuy, nil
	case types.CommandActionClose:
		if cmd.Side == types.SideShort {
			return binance.SideTypeBuy, nil
		}

		return binance.SideTypeSell, nil
	case types.CommandActionModify:
		return "", errors.New(errors.ErrCodeUnsupportedAction, "binance spot venue does not hold stops; MODIFY is not supported")
	default:
		return "", errors.Newf(errors.ErrCodeUnsupportedAction, "unsupported action %s", cmd.Action)
	}
}
