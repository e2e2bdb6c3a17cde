package market

import (
	"fmt"

	"github.com/carbonmarket/carbon-controller-go/types"
)

var (
	settlementConfigKey = []byte("config/settlement")
	retirementSeqKey    = []byte("counter/retirement")
)

func AssetKey(code types.AssetCode) []byte {
	return fmt.Appendf(nil, "asset/%s", code)
}

// AssetPrefix is the common prefix of all asset keys.
func AssetPrefix() []byte {
	return []byte("asset/")
}

func ListingKey(code types.AssetCode, seller types.Address) []byte {
	return fmt.Appendf(nil, "listing/%s/%s", code, seller.Hex())
}

// ListingPrefix is the common prefix of all listing keys of the asset.
func ListingPrefix(code types.AssetCode) []byte {
	return fmt.Appendf(nil, "listing/%s/", code)
}

func SettlementConfigKey() []byte {
	return settlementConfigKey
}

// RetirementSeqKey holds the number of retirements done so far.
func RetirementSeqKey() []byte {
	return retirementSeqKey
}

// NonceKey holds the last call order nonce used by the signer.
func NonceKey(signer types.Address) []byte {
	return fmt.Appendf(nil, "nonce/%s", signer.Hex())
}
