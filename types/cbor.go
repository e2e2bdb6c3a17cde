package types

import (
	abcbor "github.com/carbonmarket/carbon-controller-go/cbor"
)

type RawCBOR = abcbor.RawCBOR
