package types

import (
	"encoding/binary"
	"fmt"
)

const (
	NetworkMainNet NetworkID = 1
	NetworkTestNet NetworkID = 2
	NetworkLocal   NetworkID = 3
)

const NetworkIDLength = 2

// NetworkID separates call orders of different deployments, order signed for
// one network is rejected by the controller of another.
type NetworkID uint16

func (nid NetworkID) Bytes() []byte {
	b := make([]byte, NetworkIDLength)
	binary.BigEndian.PutUint16(b, uint16(nid))
	return b
}

func (nid NetworkID) String() string {
	switch nid {
	case NetworkMainNet:
		return "mainnet"
	case NetworkTestNet:
		return "testnet"
	case NetworkLocal:
		return "local"
	default:
		return fmt.Sprintf("network-%d", uint16(nid))
	}
}
