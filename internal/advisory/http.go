package advisory

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rxtech-lab/argo-autotrader/internal/logger"
	"github.com/rxtech-lab/argo-autotrader/internal/types"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
	"go.uber.org/zap"
)

type suggestionRequest struct {
	PreviousTradingData     string `json:"previousTradingData"`
	CurrentMarketConditions string `json:"currentMarketConditions"`
	TechnicalIndicators     string `json:"technicalIndicators"`
}

type suggestionResponse struct {
	SuggestedPositionSize string `json:"suggestedPositionSize"`
	Reasoning             string `json:"reasoning"`
}

// HTTPAdvisor posts the request to a position size flow endpoint.
type HTTPAdvisor struct {
	client *resty.Client
	url    string
	apiKey string
	logger *logger.Logger
}

// NewHTTPAdvisor creates the client. A zero timeout defaults to 20 seconds.
func NewHTTPAdvisor(config Config, log *logger.Logger) *HTTPAdvisor {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	return &HTTPAdvisor{
		client: resty.New().SetTimeout(timeout),
		url:    config.URL,
		apiKey: config.APIKey,
		logger: log,
	}
}

func (h *HTTPAdvisor) Suggest(ctx context.Context, request types.AdvisoryRequest) (types.AdvisorySuggestion, error) {
	var result suggestionResponse

	req := h.client.R().
		SetContext(ctx).
		SetBody(suggestionRequest{
			PreviousTradingData:     request.PreviousTradingData,
			CurrentMarketConditions: request.CurrentMarketConditions,
			TechnicalIndicators:     request.TechnicalIndicators,
		}).
		SetResult(&result)

	if h.apiKey != "" {
		req = req.SetAuthToken(h.apiKey)
	}

	resp, err := req.Post(h.url)
	if err != nil {
		return types.AdvisorySuggestion{}, errors.Wrap(errors.ErrCodeAdvisoryFailed, "advisory request failed", err)
	}

	if resp.IsError() {
		return types.AdvisorySuggestion{}, errors.Newf(errors.ErrCodeAdvisoryFailed,
			"advisory service returned %d: %s", resp.StatusCode(), resp.String())
	}

	if result.SuggestedPositionSize == "" {
		return types.AdvisorySuggestion{}, errors.New(errors.ErrCodeAdvisoryFailed, "advisory service returned no suggestion")
	}

	h.logger.Debug("Received position size suggestion",
		zap.String("account_id", request.AccountID),
		zap.String("suggested_position_size", result.SuggestedPositionSize))

	return types.AdvisorySuggestion{
		SuggestedPositionSize: result.SuggestedPositionSize,
		Reasoning:             result.Reasoning,
	}, nil
}
