package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rxtech-lab/argo-autotrader/internal/engine"
	"github.com/rxtech-lab/argo-autotrader/internal/risk"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

func accountCommand() *cli.Command {
	return &cli.Command{
		Name:  "account",
		Usage: "Inspect trading accounts and toggle auto-trading",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List every account",
				Action: listAccountsAction,
			},
			{
				Name:      "show",
				Usage:     "Show an account",
				ArgsUsage: "<account-id>",
				Action:    showAccountAction,
			},
			{
				Name:      "enable",
				Usage:     "Enable auto-trading",
				ArgsUsage: "<account-id>",
				Action:    autoTradingAction(true),
			},
			{
				Name:      "disable",
				Usage:     "Pause auto-trading. An open trade stays open",
				ArgsUsage: "<account-id>",
				Action:    autoTradingAction(false),
			},
		},
	}
}

func accountArg(cmd *cli.Command) (string, error) {
	id := cmd.Args().First()
	if id == "" {
		return "", errors.New(errors.ErrCodeMissingParameter, "account id is required")
	}

	return id, nil
}

func listAccountsAction(ctx context.Context, cmd *cli.Command) error {
	_, store, _, err := openLedger(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	accounts, err := store.ListAccounts(ctx)
	if err != nil {
		return err
	}

	out := newTable(cmd.Root().Writer)
	fmt.Fprintln(out, "ID\tBALANCE\tRISK LIMIT\tPROFIT TARGET\tAUTO-TRADING")

	for _, account := range accounts {
		fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%t\n",
			account.ID,
			risk.FormatMoney(account.CurrentBalance),
			risk.FormatMoney(account.DailyRiskLimit),
			risk.FormatMoney(account.DailyProfitTarget),
			account.AutoTradingEnabled)
	}

	return out.Flush()
}

func showAccountAction(ctx context.Context, cmd *cli.Command) error {
	id, err := accountArg(cmd)
	if err != nil {
		return err
	}

	_, store, _, err := openLedger(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	account, err := store.GetAccount(ctx, id)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(account)
	if err != nil {
		return err
	}

	_, err = cmd.Root().Writer.Write(data)

	return err
}

func autoTradingAction(enabled bool) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		id, err := accountArg(cmd)
		if err != nil {
			return err
		}

		_, store, _, err := openLedger(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		account, err := engine.SetAutoTrading(ctx, store, id, enabled, time.Now())
		if err != nil {
			return err
		}

		state := "disabled"
		if account.AutoTradingEnabled {
			state = "enabled"
		}

		fmt.Fprintf(cmd.Root().Writer, "Auto-trading %s for %s\n", state, id)

		return nil
	}
}
