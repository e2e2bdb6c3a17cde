package templates

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/carbonmarket/carbon-controller-go/cbor"
	"github.com/carbonmarket/carbon-controller-go/types"
)

const (
	SignatureLength = crypto.SignatureLength
	// PubKeyLength is the length of compressed secp256k1 public key.
	PubKeyLength = 33
)

type (
	/*
	   P2pkhSignature is a signature and public key pair, used as authorization
	   proof of the identity derived from the public key (ie the public key can
	   be used to verify the signature and its hash is the signer's address).
	*/
	P2pkhSignature struct {
		_      struct{} `cbor:",toarray"`
		Sig    []byte
		PubKey []byte
	}
)

// AddressFromPubKey returns the identity controlled by the (compressed) public key.
func AddressFromPubKey(pubKey []byte) (types.Address, error) {
	pk, err := crypto.DecompressPubkey(pubKey)
	if err != nil {
		return types.ZeroAddress, fmt.Errorf("decoding public key: %w", err)
	}
	return crypto.PubkeyToAddress(*pk), nil
}

// NewP2pkhSignature signs the digest with the key and returns signature - public key pair.
func NewP2pkhSignature(digest []byte, key *ecdsa.PrivateKey) (*P2pkhSignature, error) {
	sig, err := crypto.Sign(digest, key)
	if err != nil {
		return nil, fmt.Errorf("signing: %w", err)
	}
	return &P2pkhSignature{Sig: sig, PubKey: crypto.CompressPubkey(&key.PublicKey)}, nil
}

func NewP2pkhSignatureBytes(sig, pubKey []byte) []byte {
	sb, _ := cbor.Marshal(P2pkhSignature{Sig: sig, PubKey: pubKey})
	return sb
}

/*
VerifyP2pkhSignature decodes the CBOR encoded signature proof, verifies it
against the digest and returns the address of the signer.
*/
func VerifyP2pkhSignature(proof []byte, digest []byte) (types.Address, error) {
	sig := &P2pkhSignature{}
	if err := cbor.Unmarshal(proof, sig); err != nil {
		return types.ZeroAddress, fmt.Errorf("decoding signature proof: %w", err)
	}
	return sig.Verify(digest)
}

// Verify returns the signer's address when signature is valid for the digest.
func (s *P2pkhSignature) Verify(digest []byte) (types.Address, error) {
	if s == nil {
		return types.ZeroAddress, errors.New("signature proof is nil")
	}
	if len(s.Sig) != SignatureLength {
		return types.ZeroAddress, fmt.Errorf("invalid signature length %d (expected %d)", len(s.Sig), SignatureLength)
	}
	if len(s.PubKey) != PubKeyLength {
		return types.ZeroAddress, fmt.Errorf("invalid public key length %d (expected %d)", len(s.PubKey), PubKeyLength)
	}
	// the recovery byte is not part of the verification
	if !crypto.VerifySignature(s.PubKey, digest, s.Sig[:SignatureLength-1]) {
		return types.ZeroAddress, errors.New("signature verification failed")
	}
	return AddressFromPubKey(s.PubKey)
}
