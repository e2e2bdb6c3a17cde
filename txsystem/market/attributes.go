package market

import (
	"github.com/carbonmarket/carbon-controller-go/types"
)

const (
	MethodRegisterAsset         = "registerAsset"
	MethodMintToIssuer          = "mintToIssuer"
	MethodRetire                = "retire"
	MethodSetSettlementCurrency = "setSettlementCurrency"
	MethodListAsset             = "listAsset"
	MethodBuy                   = "buy"
	MethodApprove               = "approve"
)

// MaxNoteLength is the maximum size (in bytes) of the retirement note.
const MaxNoteLength = 256

type (
	RegisterAssetAttributes struct {
		_           struct{}        `cbor:",toarray"`
		Code        types.AssetCode // code of the asset to (re)register
		ProjectID   int64           // external project identifier
		VintageYear int32           // vintage year of the credits
		Ledger      types.LedgerRef // ledger instance backing the asset
		Admin       types.Address   // new admin, must authorize the call
	}

	MintToIssuerAttributes struct {
		_      struct{}        `cbor:",toarray"`
		Code   types.AssetCode // asset to mint
		Issuer types.Address   // recipient of the new units
		Amount int64           // fixed-point amount to mint
	}

	RetireAttributes struct {
		_      struct{}        `cbor:",toarray"`
		Holder types.Address   // holder burning the units, must authorize the call
		Code   types.AssetCode // asset to retire
		Amount int64           // fixed-point amount to burn
		Note   string          // free form note copied into the retirement record
	}

	SetSettlementCurrencyAttributes struct {
		_      struct{}        `cbor:",toarray"`
		Caller types.Address   // must authorize the call, becomes admin on init
		Ledger types.LedgerRef // ledger acting as the settlement currency
	}

	ListAssetAttributes struct {
		_      struct{}        `cbor:",toarray"`
		Seller types.Address   // seller, must authorize the call
		Code   types.AssetCode // asset offered
		Amount int64           // fixed-point amount offered
		Price  int64           // fixed-point price of one whole unit
	}

	BuyAttributes struct {
		_       struct{}        `cbor:",toarray"`
		Buyer   types.Address   // buyer, must authorize the call
		Code    types.AssetCode // asset to buy
		Seller  types.Address   // seller of the listing to buy from
		Amount  int64           // fixed-point amount to buy
		MaxCost int64           // maximum total cost the buyer accepts
	}

	ApproveAttributes struct {
		_      struct{}        `cbor:",toarray"`
		Owner  types.Address   // account granting the allowance, must authorize the call
		Ledger types.LedgerRef // ledger the allowance is granted on
		Amount int64           // new allowance of the controller, zero revokes
	}
)
