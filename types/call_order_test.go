package types

import (
	"testing"

	"github.com/stretchr/testify/require"

	abcbor "github.com/carbonmarket/carbon-controller-go/cbor"
)

type testAttr struct {
	_      struct{} `cbor:",toarray"`
	Code   AssetCode
	Amount int64
}

func TestCallOrder(t *testing.T) {
	co, err := NewCallOrder(3, "buy", &testAttr{Code: "VCS001", Amount: 42}, 7)
	require.NoError(t, err)

	t.Run("attributes", func(t *testing.T) {
		var attr testAttr
		require.NoError(t, co.UnmarshalAttributes(&attr))
		require.EqualValues(t, "VCS001", attr.Code)
		require.EqualValues(t, 42, attr.Amount)
	})

	t.Run("signature bytes do not depend on proofs", func(t *testing.T) {
		d1, err := co.Digest()
		require.NoError(t, err)
		require.Len(t, d1, 32)

		c2 := *co
		require.NoError(t, c2.AddAuthProof([]byte{1, 2, 3}))
		d2, err := c2.Digest()
		require.NoError(t, err)
		require.Equal(t, d1, d2)

		c2.Nonce++
		d3, err := c2.Digest()
		require.NoError(t, err)
		require.NotEqual(t, d1, d3)
	})

	t.Run("CBOR round trip", func(t *testing.T) {
		c2 := *co
		require.NoError(t, c2.AddAuthProof([]byte{1, 2, 3}))
		buf, err := abcbor.Marshal(&c2)
		require.NoError(t, err)

		var c3 CallOrder
		require.NoError(t, abcbor.Unmarshal(buf, &c3))
		require.Equal(t, c2.Payload.Method, c3.Method)
		require.Equal(t, c2.Nonce, c3.Nonce)
		require.Len(t, c3.AuthProof, 1)
	})

	t.Run("nil order", func(t *testing.T) {
		var c *CallOrder
		_, err := c.SigBytes()
		require.ErrorIs(t, err, ErrCallOrderIsNil)
		require.ErrorIs(t, c.UnmarshalAttributes(&testAttr{}), ErrCallOrderIsNil)
	})
}
