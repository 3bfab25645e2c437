package engine

import (
	"time"

	"github.com/rxtech-lab/argo-autotrader/internal/types"
)

// Config controls the decision cycle of every account.
type Config struct {
	Symbol        string        `json:"symbol" yaml:"symbol" jsonschema:"title=Symbol,default=XAUUSD" validate:"required"`
	CycleInterval time.Duration `json:"cycle_interval" yaml:"cycle_interval" jsonschema:"title=Cycle Interval,default=15s"`
	// ContractMultiplier converts a price move times volume into account currency.
	ContractMultiplier float64 `json:"contract_multiplier" yaml:"contract_multiplier" jsonschema:"title=Contract Multiplier,default=100" validate:"gt=0"`
	DefaultVolume      float64 `json:"default_volume" yaml:"default_volume" jsonschema:"title=Default Volume,default=0.1" validate:"gt=0"`
	Confidence         string  `json:"confidence" yaml:"confidence" jsonschema:"title=Confidence Label,default=Moderate"`
	// DayBoundaryTimezone is the IANA zone whose midnight starts a new trading day.
	DayBoundaryTimezone string `json:"day_boundary_timezone" yaml:"day_boundary_timezone" jsonschema:"title=Day Boundary Timezone,default=UTC"`
	CloseRetryAttempts  int    `json:"close_retry_attempts" yaml:"close_retry_attempts" jsonschema:"title=Close Retry Attempts,default=3" validate:"gte=0"`
	// SummaryOutput is the folder for per-day stats and parquet exports. Empty disables reports.
	SummaryOutput string `json:"summary_output" yaml:"summary_output" jsonschema:"title=Summary Output Folder,default=./reports"`
}

// DefaultConfig returns the 15 second XAUUSD setup.
func DefaultConfig() Config {
	return Config{
		Symbol:              "XAUUSD",
		CycleInterval:       15 * time.Second,
		ContractMultiplier:  types.DefaultContractMultiplier,
		DefaultVolume:       0.1,
		Confidence:          "Moderate",
		DayBoundaryTimezone: "UTC",
		CloseRetryAttempts:  3,
		SummaryOutput:       "./reports",
	}
}
