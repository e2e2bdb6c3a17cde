package market

import (
	"strings"

	"github.com/carbonmarket/carbon-controller-go/types"
)

type AssetMeta struct {
	_           struct{}        `cbor:",toarray"`
	Code        types.AssetCode `json:"code"`
	ProjectID   int64           `json:"projectId"`   // external project identifier
	VintageYear int32           `json:"vintageYear"` // year the credits were issued for
	Ledger      types.LedgerRef `json:"ledger"`      // fungible ledger backing the asset
	Admin       types.Address   `json:"admin"`       // may mint and re-register
}

/*
Listing is a seller's standing offer. Amount is the remaining offered
quantity and Price is settlement-currency per one whole asset unit, both
fixed-point with types.Decimals places.
*/
type Listing struct {
	_         struct{}        `cbor:",toarray"`
	AssetCode types.AssetCode `json:"assetCode"`
	Seller    types.Address   `json:"seller"`
	Amount    int64           `json:"amount,string"`
	Price     int64           `json:"price,string"`
	Counter   uint64          `json:"counter,string"` // number of times the listing has been written
}

// SettlementConfig selects the ledger which acts as the settlement currency.
type SettlementConfig struct {
	_       struct{}        `cbor:",toarray"`
	Ledger  types.LedgerRef `json:"ledger"`
	Admin   types.Address   `json:"admin"`          // the only identity allowed to change the config
	Counter uint64          `json:"counter,string"` // number of updates since init
}

func (a *AssetMeta) Copy() *AssetMeta {
	if a == nil {
		return nil
	}
	return &AssetMeta{
		Code:        types.AssetCode(strings.Clone(string(a.Code))),
		ProjectID:   a.ProjectID,
		VintageYear: a.VintageYear,
		Ledger:      types.LedgerRef(strings.Clone(string(a.Ledger))),
		Admin:       a.Admin,
	}
}

func (l *Listing) Copy() *Listing {
	if l == nil {
		return nil
	}
	return &Listing{
		AssetCode: types.AssetCode(strings.Clone(string(l.AssetCode))),
		Seller:    l.Seller,
		Amount:    l.Amount,
		Price:     l.Price,
		Counter:   l.Counter,
	}
}
