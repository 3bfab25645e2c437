package main

import (
	"context"
	"log"
	"os"

	"github.com/rxtech-lab/argo-autotrader/internal/config"
	"github.com/rxtech-lab/argo-autotrader/internal/ledger"
	"github.com/rxtech-lab/argo-autotrader/internal/logger"
	"github.com/urfave/cli/v3"
)

const defaultConfigPath = "autotrader.yaml"

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "autotrader",
		Usage: "Risk-bounded automated trading engine",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML config file",
				Value:   defaultConfigPath,
				Sources: cli.EnvVars("AUTOTRADER_CONFIG"),
			},
		},
		Commands: []*cli.Command{
			runCommand(),
			accountCommand(),
			tradesCommand(),
			activityCommand(),
			summaryCommand(),
			exportCommand(),
			configCommand(),
			bridgeCommand(),
			versionCommand(),
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// loadConfig reads the file named by the --config flag.
func loadConfig(cmd *cli.Command) (config.Config, *logger.Logger, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return config.Config{}, nil, err
	}

	log, err := logger.NewLoggerWithOptions(cfg.LoggerOptions())
	if err != nil {
		return config.Config{}, nil, err
	}

	return cfg, log, nil
}

// openLedger loads the config and opens its ledger store. Callers close the store.
func openLedger(cmd *cli.Command) (config.Config, ledger.Store, *logger.Logger, error) {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return config.Config{}, nil, nil, err
	}

	store, err := ledger.Open(cfg.Ledger.Driver, cfg.Ledger.DSN, log)
	if err != nil {
		return config.Config{}, nil, nil, err
	}

	return cfg, store, log, nil
}
