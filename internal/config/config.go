// Package config loads the autotrader YAML file.
package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/rxtech-lab/argo-autotrader/internal/advisory"
	"github.com/rxtech-lab/argo-autotrader/internal/api"
	"github.com/rxtech-lab/argo-autotrader/internal/channel"
	"github.com/rxtech-lab/argo-autotrader/internal/engine"
	"github.com/rxtech-lab/argo-autotrader/internal/feed"
	"github.com/rxtech-lab/argo-autotrader/internal/indicator"
	"github.com/rxtech-lab/argo-autotrader/internal/ledger"
	"github.com/rxtech-lab/argo-autotrader/internal/logger"
	"github.com/rxtech-lab/argo-autotrader/internal/risk"
	"github.com/rxtech-lab/argo-autotrader/internal/strategy"
	"github.com/rxtech-lab/argo-autotrader/internal/venue"
	"github.com/rxtech-lab/argo-autotrader/internal/version"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
	"gopkg.in/yaml.v3"
)

// LogConfig controls operational logging.
type LogConfig struct {
	Level       string `json:"level" yaml:"level" jsonschema:"title=Log Level,enum=debug,enum=info,enum=warn,enum=error,default=info" validate:"omitempty,oneof=debug info warn error"`
	Development bool   `json:"development" yaml:"development" jsonschema:"title=Console Encoder,default=false"`
}

// RiskConfig holds the gate switches that are not derived from other sections.
type RiskConfig struct {
	ForceCloseOnBreach bool `json:"force_close_on_breach" yaml:"force_close_on_breach" jsonschema:"title=Force Close On Daily Limit Breach,default=true"`
}

// LedgerConfig selects the ledger store.
type LedgerConfig struct {
	Driver string `json:"driver" yaml:"driver" jsonschema:"title=Driver,enum=memory,enum=duckdb,enum=sqlite3,default=duckdb" validate:"required,oneof=memory duckdb sqlite3"`
	DSN    string `json:"dsn" yaml:"dsn" jsonschema:"title=Data Source,default=./autotrader.duckdb"`
}

// Config is the whole configuration file.
type Config struct {
	Version    string           `json:"version" yaml:"version" jsonschema:"title=Config Version,default=1.0" validate:"required"`
	Log        LogConfig        `json:"log" yaml:"log"`
	Engine     engine.Config    `json:"engine" yaml:"engine"`
	Indicators indicator.Config `json:"indicators" yaml:"indicators"`
	Strategy   strategy.Config  `json:"strategy" yaml:"strategy"`
	Risk       RiskConfig       `json:"risk" yaml:"risk"`
	Feed       feed.Config      `json:"feed" yaml:"feed"`
	Venue      venue.Config     `json:"venue" yaml:"venue"`
	// Channel tunes the command queue in front of the venue.
	Channel  channel.Config  `json:"channel" yaml:"channel"`
	Ledger   LedgerConfig    `json:"ledger" yaml:"ledger"`
	Advisory advisory.Config `json:"advisory" yaml:"advisory"`
	API      api.Config      `json:"api" yaml:"api"`
	// Accounts lists the account ids the run command trades for.
	Accounts []string `json:"accounts" yaml:"accounts" jsonschema:"title=Accounts" validate:"dive,required"`
}

// Default returns the configuration used for every key the file leaves out.
func Default() Config {
	return Config{
		Version:    version.ConfigVersion,
		Log:        LogConfig{Level: "info", Development: false},
		Engine:     engine.DefaultConfig(),
		Indicators: indicator.DefaultConfig(),
		Strategy:   strategy.DefaultConfig(),
		Risk:       RiskConfig{ForceCloseOnBreach: true},
		Feed: feed.Config{
			Provider:      feed.ProviderBinance,
			Interval:      feed.IntervalOneMinute,
			Lookback:      200,
			MaxAge:        2 * time.Minute,
			PolygonAPIKey: "",
			BinanceURL:    "",
		},
		Venue: venue.Config{
			Provider: venue.ProviderPaper,
			Binance: venue.BinanceConfig{
				APIKey:            "",
				SecretKey:         "",
				BaseURL:           "",
				Testnet:           true,
				QuantityPrecision: 8,
			},
			Bridge: venue.BridgeConfig{URL: ""},
		},
		Channel: channel.DefaultConfig(),
		Ledger:  LedgerConfig{Driver: ledger.DriverDuckDB, DSN: "./autotrader.duckdb"},
		Advisory: advisory.Config{
			Enabled: false,
			URL:     "",
			APIKey:  "",
			Timeout: 20 * time.Second,
		},
		API:      api.Config{Enabled: false, Listen: ":8080"},
		Accounts: []string{},
	}
}

// Load reads and validates the file at path. Keys missing from the file keep their defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config %s", path)
	}

	return Parse(data)
}

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	config := Default()

	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

// Validate checks the tags, the config version and the day boundary timezone.
func (c Config) Validate() error {
	if err := version.CheckConfigCompatibility(version.ConfigVersion, c.Version); err != nil {
		return err
	}

	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid config", err)
	}

	if err := c.Feed.Interval.Validate(); err != nil {
		return err
	}

	if _, err := time.LoadLocation(c.Engine.DayBoundaryTimezone); err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err,
			"unknown day boundary timezone %q", c.Engine.DayBoundaryTimezone)
	}

	return nil
}

// Write stores the config as YAML at path. A non-empty schemaRef adds the
// yaml-language-server schema comment on the first line.
func Write(path string, config Config, schemaRef string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to encode config", err)
	}

	if schemaRef != "" {
		data = append([]byte("# yaml-language-server: $schema="+schemaRef+"\n"), data...)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to write config %s", path)
	}

	return nil
}

// Schema returns the JSON schema of the config file.
func Schema() (string, error) {
	reflector := new(jsonschema.Reflector)
	reflector.DoNotReference = true
	schema := reflector.Reflect(Config{})

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(data), nil
}

// GateConfig returns the risk gate settings.
func (c Config) GateConfig() risk.Config {
	return risk.Config{
		DefaultVolume:       c.Engine.DefaultVolume,
		StopATRMultiplier:   c.Strategy.StopATRMultiplier,
		TargetATRMultiplier: c.Strategy.TargetATRMultiplier,
		ForceCloseOnBreach:  c.Risk.ForceCloseOnBreach,
		ContractMultiplier:  c.Engine.ContractMultiplier,
	}
}

// LoggerOptions returns the options for logger.NewLoggerWithOptions.
func (c Config) LoggerOptions() logger.Options {
	return logger.Options{Level: c.Log.Level, Development: c.Log.Development}
}
