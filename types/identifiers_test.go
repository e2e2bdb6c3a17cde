package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNetworkID(t *testing.T) {
	require.Equal(t, []byte{0, 3}, NetworkLocal.Bytes())
	require.Equal(t, []byte{0x01, 0x02}, NetworkID(258).Bytes())

	require.Equal(t, "mainnet", NetworkMainNet.String())
	require.Equal(t, "local", NetworkLocal.String())
	require.Equal(t, "network-9", NetworkID(9).String())
}
