package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/carbonmarket/carbon-controller-go/predicates/templates"
	"github.com/carbonmarket/carbon-controller-go/txsystem/market"
	"github.com/carbonmarket/carbon-controller-go/types"
)

// newAttributes returns pointer to the attribute struct of the method.
func newAttributes(method string) (any, error) {
	switch method {
	case market.MethodRegisterAsset:
		return &market.RegisterAssetAttributes{}, nil
	case market.MethodMintToIssuer:
		return &market.MintToIssuerAttributes{}, nil
	case market.MethodRetire:
		return &market.RetireAttributes{}, nil
	case market.MethodSetSettlementCurrency:
		return &market.SetSettlementCurrencyAttributes{}, nil
	case market.MethodListAsset:
		return &market.ListAssetAttributes{}, nil
	case market.MethodBuy:
		return &market.BuyAttributes{}, nil
	case market.MethodApprove:
		return &market.ApproveAttributes{}, nil
	default:
		return nil, fmt.Errorf("unknown method %q", method)
	}
}

func newCallCmd(a *app) *cobra.Command {
	var (
		attrJSON string
		keyFiles []string
		nonce    uint64
		execute  bool
		url      string
	)
	cmd := &cobra.Command{
		Use:   "call <method>",
		Short: "Create and sign call order",
		Long: `Creates call order of the method, signs it with the given keys and prints it.

Attributes are given as JSON object with fields of the method's attributes,
amounts and prices are fixed-point integers with 7 decimal places, ie

  carbonctl call buy --key buyer.key \
    --attr '{"Buyer":"0x..","Code":"VCS001","Seller":"0x..","Amount":2000000000,"MaxCost":4500000000}'

With --exec the order is executed against the local state database, with
--url it is submitted to the HTTP API.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			attr, err := newAttributes(args[0])
			if err != nil {
				return err
			}
			dec := json.NewDecoder(strings.NewReader(attrJSON))
			dec.DisallowUnknownFields()
			if err := dec.Decode(attr); err != nil {
				return fmt.Errorf("decoding attributes: %w", err)
			}
			if nonce == 0 {
				nonce = uint64(time.Now().UnixNano())
			}
			order, err := types.NewCallOrder(types.NetworkID(a.cfg.NetworkID), args[0], attr, nonce)
			if err != nil {
				return err
			}
			if err := signOrder(order, keyFiles); err != nil {
				return err
			}

			switch {
			case execute:
				return a.execute(cmd, order)
			case url != "":
				return submit(cmd, url, order)
			default:
				return printJSON(cmd.OutOrStdout(), order)
			}
		},
	}
	cmd.Flags().StringVar(&attrJSON, "attr", "{}", "attributes of the call as JSON object")
	cmd.Flags().StringSliceVar(&keyFiles, "key", nil, "key file of the signer, repeat for multiple signers")
	cmd.Flags().Uint64Var(&nonce, "nonce", 0, "nonce of the call order, current time when not set")
	cmd.Flags().BoolVar(&execute, "exec", false, "execute the call against local state database")
	cmd.Flags().StringVar(&url, "url", "", "submit the call to the API at the URL (ie http://localhost:8080)")
	cmd.MarkFlagsMutuallyExclusive("exec", "url")
	return cmd
}

func newExecCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "exec <order file>",
		Short: "Execute JSON encoded call order against local state database",
		Long:  `Executes call order created by the "call" command, use "-" to read the order from stdin.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("opening order file: %w", err)
				}
				defer f.Close()
				r = f
			}
			order := &types.CallOrder{}
			if err := json.NewDecoder(r).Decode(order); err != nil {
				return fmt.Errorf("decoding call order: %w", err)
			}
			return a.execute(cmd, order)
		},
	}
}

func signOrder(order *types.CallOrder, keyFiles []string) error {
	digest, err := order.Digest()
	if err != nil {
		return err
	}
	for _, file := range keyFiles {
		key, err := loadKey(file)
		if err != nil {
			return err
		}
		proof, err := templates.NewP2pkhSignature(digest, key)
		if err != nil {
			return err
		}
		if err := order.AddAuthProof(proof); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) execute(cmd *cobra.Command, order *types.CallOrder) (rErr error) {
	ctl, _, closeFn, err := a.openController()
	if err != nil {
		return err
	}
	defer func() {
		if err := closeFn(); err != nil && rErr == nil {
			rErr = fmt.Errorf("closing state store: %w", err)
		}
	}()

	res, err := ctl.Execute(cmd.Context(), order)
	if err != nil {
		return fmt.Errorf("executing %s: %w", order.Method, err)
	}
	return printJSON(cmd.OutOrStdout(), map[string]any{"result": res})
}

func submit(cmd *cobra.Command, url string, order *types.CallOrder) error {
	body, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("encoding call order: %w", err)
	}
	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost, strings.TrimSuffix(url, "/")+"/v1/calls", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	rsp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("submitting call order: %w", err)
	}
	defer rsp.Body.Close()
	buf, err := io.ReadAll(rsp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if rsp.StatusCode != http.StatusOK {
		return fmt.Errorf("call rejected (%s): %s", rsp.Status, bytes.TrimSpace(buf))
	}
	_, err = cmd.OutOrStdout().Write(buf)
	return err
}
