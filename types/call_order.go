package types

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"

	abcbor "github.com/carbonmarket/carbon-controller-go/cbor"
)

var ErrCallOrderIsNil = errors.New("call order is nil")

type (
	/*
		CallOrder is a signed request to invoke a single controller entry point.
		AuthProof holds one signature per identity whose authorization the call
		requires (ie buyer, seller or admin).
	*/
	CallOrder struct {
		_         struct{}  `cbor:",toarray"`
		Payload             // the embedded Payload field is "flattened" in CBOR array
		AuthProof []RawCBOR `json:"authProof"` // signatures over the payload
	}

	// Payload includes all CallOrder fields except the signatures.
	Payload struct {
		_          struct{}  `cbor:",toarray"`
		NetworkID  NetworkID `json:"networkId"`
		Method     string    `json:"method"`     // entry point name
		Attributes RawCBOR   `json:"attributes"` // method specific attributes
		Nonce      uint64    `json:"nonce,string"`
	}
)

func NewCallOrder(networkID NetworkID, method string, attr any, nonce uint64) (*CallOrder, error) {
	buf, err := abcbor.Marshal(attr)
	if err != nil {
		return nil, fmt.Errorf("marshaling %s attributes: %w", method, err)
	}
	return &CallOrder{
		Payload: Payload{
			NetworkID:  networkID,
			Method:     method,
			Attributes: buf,
			Nonce:      nonce,
		},
	}, nil
}

// SigBytes returns the bytes which are signed by the parties authorizing the call.
func (c *CallOrder) SigBytes() ([]byte, error) {
	if c == nil {
		return nil, ErrCallOrderIsNil
	}
	buf, err := abcbor.Marshal(c.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return buf, nil
}

// Digest is the Keccak256 hash of SigBytes, this is what gets signed.
func (c *CallOrder) Digest() ([]byte, error) {
	buf, err := c.SigBytes()
	if err != nil {
		return nil, err
	}
	return crypto.Keccak256(buf), nil
}

func (c *CallOrder) UnmarshalAttributes(v any) error {
	if c == nil {
		return ErrCallOrderIsNil
	}
	return abcbor.Unmarshal(c.Attributes, v)
}

// AddAuthProof converts provided proof struct to CBOR and appends it to the AuthProof list.
func (c *CallOrder) AddAuthProof(proof any) error {
	if c == nil {
		return ErrCallOrderIsNil
	}
	buf, err := abcbor.Marshal(proof)
	if err != nil {
		return fmt.Errorf("marshaling auth proof: %w", err)
	}
	c.AuthProof = append(c.AuthProof, buf)
	return nil
}
