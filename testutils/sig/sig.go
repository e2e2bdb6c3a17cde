/*
Package sig has helpers for creating test identities and signing call orders.
*/
package sig

import (
	"crypto/ecdsa"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/carbonmarket/carbon-controller-go/predicates/templates"
	"github.com/carbonmarket/carbon-controller-go/types"
)

// Identity is a test account: secp256k1 key and the address derived from it.
type Identity struct {
	Key     *ecdsa.PrivateKey
	Address types.Address
}

func NewIdentity(t *testing.T) Identity {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return Identity{Key: key, Address: crypto.PubkeyToAddress(key.PublicKey)}
}

// SignOrder adds authorization proof of every signer to the call order.
func SignOrder(t *testing.T, order *types.CallOrder, signers ...Identity) *types.CallOrder {
	t.Helper()
	digest, err := order.Digest()
	require.NoError(t, err)
	for _, s := range signers {
		proof, err := templates.NewP2pkhSignature(digest, s.Key)
		require.NoError(t, err)
		require.NoError(t, order.AddAuthProof(proof))
	}
	return order
}

// NewSignedOrder creates call order of the method with attributes and signs it.
func NewSignedOrder(t *testing.T, method string, attr any, nonce uint64, signers ...Identity) *types.CallOrder {
	t.Helper()
	order, err := types.NewCallOrder(types.NetworkLocal, method, attr, nonce)
	require.NoError(t, err)
	return SignOrder(t, order, signers...)
}
