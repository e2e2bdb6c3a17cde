package market

import (
	"crypto"

	abhash "github.com/carbonmarket/carbon-controller-go/hash"
	"github.com/carbonmarket/carbon-controller-go/types"
)

/*
RetirementRecord is the audit event of a successful retirement. It is not
part of the state, it's published to the event subscribers.
*/
type RetirementRecord struct {
	_           struct{}        `cbor:",toarray"`
	AssetCode   types.AssetCode `json:"assetCode"`
	Holder      types.Address   `json:"holder"`
	Amount      int64           `json:"amount,string"`
	ProjectID   int64           `json:"projectId"`
	VintageYear int32           `json:"vintageYear"`
	Note        string          `json:"note"`
	// Seq is the ordinal number of the retirement (starting from 1), makes
	// records of otherwise identical retirements distinct.
	Seq uint64 `json:"seq,string"`
}

// ID is the SHA256 hash of the CBOR encoded record.
func (r *RetirementRecord) ID() ([]byte, error) {
	return abhash.Sum(crypto.SHA256, r)
}
