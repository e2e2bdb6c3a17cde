package main

import (
	"crypto/ecdsa"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

func newKeygenCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate secp256k1 key and print its address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(out); err == nil {
				return fmt.Errorf("key file %s already exists", out)
			}
			key, err := crypto.GenerateKey()
			if err != nil {
				return fmt.Errorf("generating key: %w", err)
			}
			if err := crypto.SaveECDSA(out, key); err != nil {
				return fmt.Errorf("saving key: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), crypto.PubkeyToAddress(key.PublicKey).Hex())
			return err
		},
	}
	cmd.Flags().StringVar(&out, "out", "carbon.key", "file to write the hex encoded private key into")
	return cmd
}

func newAddressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "address <key file>",
		Short: "Print the address of the key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := loadKey(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), crypto.PubkeyToAddress(key.PublicKey).Hex())
			return err
		},
	}
}

func loadKey(file string) (*ecdsa.PrivateKey, error) {
	key, err := crypto.LoadECDSA(file)
	if err != nil {
		return nil, fmt.Errorf("loading key from %s: %w", file, err)
	}
	return key, nil
}
