package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rxtech-lab/argo-autotrader/internal/config"
	"github.com/rxtech-lab/argo-autotrader/internal/version"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
	"github.com/urfave/cli/v3"
)

const schemaFileName = "autotrader-config.schema.json"

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Generate and check config files",
		Commands: []*cli.Command{
			{
				Name:   "schema",
				Usage:  "Print the JSON schema of the config file",
				Action: configSchemaAction,
			},
			{
				Name:  "init",
				Usage: "Write a default config and its schema next to the --config path",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Usage: "Overwrite an existing config file"},
				},
				Action: configInitAction,
			},
			{
				Name:   "check",
				Usage:  "Validate the config file",
				Action: configCheckAction,
			},
		},
	}
}

func configSchemaAction(_ context.Context, cmd *cli.Command) error {
	schema, err := config.Schema()
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.Root().Writer, schema)

	return err
}

func configInitAction(_ context.Context, cmd *cli.Command) error {
	path := cmd.String("config")

	if _, err := os.Stat(path); err == nil && !cmd.Bool("force") {
		return errors.Newf(errors.ErrCodeInvalidParameter, "%s already exists, pass --force to overwrite it", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	schema, err := config.Schema()
	if err != nil {
		return err
	}

	schemaPath := filepath.Join(filepath.Dir(path), schemaFileName)
	if err := os.WriteFile(schemaPath, []byte(schema), 0644); err != nil {
		return err
	}

	if err := config.Write(path, config.Default(), schemaFileName); err != nil {
		return err
	}

	fmt.Fprintf(cmd.Root().Writer, "Config written to %s\nSchema written to %s\n", path, schemaPath)

	return nil
}

func configCheckAction(_ context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.Root().Writer, "%s is valid (config version %s, accounts %v)\n",
		cmd.String("config"), cfg.Version, cfg.Accounts)

	return nil
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print the binary and config schema versions",
		Action: func(_ context.Context, cmd *cli.Command) error {
			_, err := fmt.Fprintf(cmd.Root().Writer, "autotrader %s (config %s)\n", version.GetVersion(), version.ConfigVersion)

			return err
		},
	}
}
