package types

import (
	"errors"
	"fmt"
)

const (
	MaxAssetCodeLength = 12
	MaxLedgerRefLength = 64
)

type (
	// AssetCode is a short identifier of a registered asset, ie "VCS001".
	AssetCode string

	// LedgerRef names the fungible ledger instance backing an asset or the
	// settlement currency.
	LedgerRef string
)

func (c AssetCode) String() string { return string(c) }

// IsValid returns nil when the code is 1..12 characters from [A-Za-z0-9_].
func (c AssetCode) IsValid() error {
	if len(c) == 0 {
		return errors.New("asset code is empty")
	}
	if len(c) > MaxAssetCodeLength {
		return fmt.Errorf("asset code %q is longer than %d characters", string(c), MaxAssetCodeLength)
	}
	for _, r := range c {
		if !isSymbolChar(r) {
			return fmt.Errorf("asset code %q contains invalid character %q", string(c), r)
		}
	}
	return nil
}

func (r LedgerRef) String() string { return string(r) }

func (r LedgerRef) IsValid() error {
	if len(r) == 0 {
		return errors.New("ledger reference is empty")
	}
	if len(r) > MaxLedgerRefLength {
		return fmt.Errorf("ledger reference is longer than %d characters", MaxLedgerRefLength)
	}
	for _, c := range r {
		if !isSymbolChar(c) && c != '-' && c != '.' && c != ':' {
			return fmt.Errorf("ledger reference %q contains invalid character %q", string(r), c)
		}
	}
	return nil
}

func isSymbolChar(r rune) bool {
	return r == '_' || (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
