package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carbonmarket/carbon-controller-go/ledger"
	"github.com/carbonmarket/carbon-controller-go/state"
	"github.com/carbonmarket/carbon-controller-go/types"
)

func newLedgerCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Operate the local reference ledgers directly",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "mint <ledger> <account> <amount>",
		Short: "Mint units to the account, ie to fund buyers with settlement currency",
		Long:  `Amount is decimal number, ie "200.5".`,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) (rErr error) {
			ref := types.LedgerRef(args[0])
			to, err := types.ParseAddress(args[1])
			if err != nil {
				return err
			}
			amount, err := types.ParseAmount(args[2])
			if err != nil {
				return err
			}

			_, store, closeFn, err := a.openController()
			if err != nil {
				return err
			}
			defer func() {
				if err := closeFn(); err != nil && rErr == nil {
					rErr = fmt.Errorf("closing state store: %w", err)
				}
			}()

			var balance int64
			err = store.Update(cmd.Context(), func(tx state.Tx) error {
				l, err := ledger.KVResolver{}.Client(tx, ref)
				if err != nil {
					return err
				}
				if err := l.Mint(to, amount); err != nil {
					return err
				}
				balance, err = l.Balance(to)
				return err
			})
			if err != nil {
				return fmt.Errorf("minting on ledger %s: %w", ref, err)
			}
			return printJSON(cmd.OutOrStdout(), map[string]string{"ledger": ref.String(), "account": to.Hex(), "balance": types.FormatAmount(balance)})
		},
	})
	return cmd
}
