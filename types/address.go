package types

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Address identifies an account: a holder, a seller, a buyer or an admin.
// It is the Keccak256 hash of the account's secp256k1 public key (last 20 bytes).
type Address = common.Address

var ZeroAddress = Address{}

// ParseAddress parses hex encoded (optionally 0x prefixed) address.
func ParseAddress(s string) (Address, error) {
	if !common.IsHexAddress(s) {
		return ZeroAddress, fmt.Errorf("invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}
