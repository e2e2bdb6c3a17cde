package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carbonmarket/carbon-controller-go/controller"
	"github.com/carbonmarket/carbon-controller-go/types"
)

func newQueryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Read the local state database",
	}

	// run opens controller for the duration of fn
	run := func(fn func(ctx context.Context, ctl *controller.Controller) (any, error)) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) (rErr error) {
			ctl, _, closeFn, err := a.openController()
			if err != nil {
				return err
			}
			defer func() {
				if err := closeFn(); err != nil && rErr == nil {
					rErr = fmt.Errorf("closing state store: %w", err)
				}
			}()
			v, err := fn(cmd.Context(), ctl)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), v)
		}
	}

	var code types.AssetCode
	var account types.Address
	var ref types.LedgerRef
	parseArgs := func(cmd *cobra.Command, args []string) (err error) {
		switch cmd.Name() {
		case "asset", "listings":
			code = types.AssetCode(args[0])
		case "listing":
			code = types.AssetCode(args[0])
			account, err = types.ParseAddress(args[1])
		case "nonce":
			account, err = types.ParseAddress(args[0])
		case "balance", "allowance":
			ref = types.LedgerRef(args[0])
			account, err = types.ParseAddress(args[1])
		}
		return err
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "assets",
			Short: "List registered assets",
			Args:  cobra.NoArgs,
			RunE: run(func(ctx context.Context, ctl *controller.Controller) (any, error) {
				return ctl.Assets(ctx)
			}),
		},
		&cobra.Command{
			Use:     "asset <code>",
			Short:   "Show asset metadata",
			Args:    cobra.ExactArgs(1),
			PreRunE: parseArgs,
			RunE: run(func(ctx context.Context, ctl *controller.Controller) (any, error) {
				return ctl.AssetInfo(ctx, code)
			}),
		},
		&cobra.Command{
			Use:     "listings <code>",
			Short:   "List open offers of the asset",
			Args:    cobra.ExactArgs(1),
			PreRunE: parseArgs,
			RunE: run(func(ctx context.Context, ctl *controller.Controller) (any, error) {
				return ctl.Listings(ctx, code)
			}),
		},
		&cobra.Command{
			Use:     "listing <code> <seller>",
			Short:   "Show offer of the seller",
			Args:    cobra.ExactArgs(2),
			PreRunE: parseArgs,
			RunE: run(func(ctx context.Context, ctl *controller.Controller) (any, error) {
				return ctl.Listing(ctx, code, account)
			}),
		},
		&cobra.Command{
			Use:   "currency",
			Short: "Show settlement currency config",
			Args:  cobra.NoArgs,
			RunE: run(func(ctx context.Context, ctl *controller.Controller) (any, error) {
				return ctl.SettlementCurrency(ctx)
			}),
		},
		&cobra.Command{
			Use:     "balance <ledger> <account>",
			Short:   "Show balance of the account on the ledger",
			Args:    cobra.ExactArgs(2),
			PreRunE: parseArgs,
			RunE: run(func(ctx context.Context, ctl *controller.Controller) (any, error) {
				v, err := ctl.Balance(ctx, ref, account)
				return types.FormatAmount(v), err
			}),
		},
		&cobra.Command{
			Use:     "allowance <ledger> <owner>",
			Short:   "Show amount the controller may spend from the owner's account",
			Args:    cobra.ExactArgs(2),
			PreRunE: parseArgs,
			RunE: run(func(ctx context.Context, ctl *controller.Controller) (any, error) {
				v, err := ctl.Allowance(ctx, ref, account)
				return types.FormatAmount(v), err
			}),
		},
		&cobra.Command{
			Use:     "nonce <address>",
			Short:   "Show the last call order nonce used by the address",
			Args:    cobra.ExactArgs(1),
			PreRunE: parseArgs,
			RunE: run(func(ctx context.Context, ctl *controller.Controller) (any, error) {
				return ctl.LastNonce(ctx, account)
			}),
		},
	)
	return cmd
}
