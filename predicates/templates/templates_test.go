package templates

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func Test_P2pkhSignature(t *testing.T) {
	t.Parallel()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	signer := crypto.PubkeyToAddress(key.PublicKey)
	digest := crypto.Keccak256([]byte("buy VCS001"))

	t.Run("valid signature", func(t *testing.T) {
		sig, err := NewP2pkhSignature(digest, key)
		require.NoError(t, err)
		require.Len(t, sig.Sig, SignatureLength)
		require.Len(t, sig.PubKey, PubKeyLength)

		addr, err := VerifyP2pkhSignature(NewP2pkhSignatureBytes(sig.Sig, sig.PubKey), digest)
		require.NoError(t, err)
		require.Equal(t, signer, addr)

		addr, err = AddressFromPubKey(sig.PubKey)
		require.NoError(t, err)
		require.Equal(t, signer, addr)
	})

	t.Run("different digest", func(t *testing.T) {
		sig, err := NewP2pkhSignature(digest, key)
		require.NoError(t, err)
		_, err = sig.Verify(crypto.Keccak256([]byte("buy VCS002")))
		require.EqualError(t, err, `signature verification failed`)
	})

	t.Run("public key of someone else", func(t *testing.T) {
		other, err := crypto.GenerateKey()
		require.NoError(t, err)
		sig, err := NewP2pkhSignature(digest, key)
		require.NoError(t, err)
		sig.PubKey = crypto.CompressPubkey(&other.PublicKey)
		_, err = sig.Verify(digest)
		require.EqualError(t, err, `signature verification failed`)
	})

	t.Run("malformed proofs", func(t *testing.T) {
		_, err := VerifyP2pkhSignature([]byte{0xff}, digest)
		require.ErrorContains(t, err, `decoding signature proof`)

		_, err = (&P2pkhSignature{Sig: []byte{1}, PubKey: make([]byte, PubKeyLength)}).Verify(digest)
		require.EqualError(t, err, `invalid signature length 1 (expected 65)`)

		_, err = (&P2pkhSignature{Sig: make([]byte, SignatureLength), PubKey: []byte{2}}).Verify(digest)
		require.EqualError(t, err, `invalid public key length 1 (expected 33)`)

		var s *P2pkhSignature
		_, err = s.Verify(digest)
		require.EqualError(t, err, `signature proof is nil`)
	})
}
