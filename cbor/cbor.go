/*
Package cbor provides CBOR encoding/decoding functions.

It's a thin wrapper for github.com/fxamacker/cbor/v2, the reason for
having it is to make sure state values, call orders and hashes all use the
same (deterministic) encoding options.
*/
package cbor

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// RawCBOR is an already encoded CBOR data item which is embedded as is.
type RawCBOR []byte

var (
	encMode cbor.EncMode
	decMode cbor.DecMode

	cborNil = []byte{0xf6}
)

func init() {
	// building modes from options provided by the library fails only
	// when the options are invalid, ie programming error
	var err error
	if encMode, err = cbor.CoreDetEncOptions().EncMode(); err != nil {
		panic(fmt.Errorf("initializing CBOR encoder mode: %w", err))
	}
	if decMode, err = (cbor.DecOptions{DupMapKey: cbor.DupMapKeyEnforcedAPF}).DecMode(); err != nil {
		panic(fmt.Errorf("initializing CBOR decoder mode: %w", err))
	}
}

/*
EncMode returns Core Deterministic Encoding mode. See <https://www.rfc-editor.org/rfc/rfc8949.html#name-deterministically-encoded-c>.
*/
func EncMode() cbor.EncMode {
	return encMode
}

func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

func Decode(r io.Reader, v any) error {
	return decMode.NewDecoder(r).Decode(v)
}

// MarshalCBOR returns r or CBOR nil if r is empty.
func (r RawCBOR) MarshalCBOR() ([]byte, error) {
	if len(r) == 0 {
		return cborNil, nil
	}
	return r, nil
}

// UnmarshalCBOR copies data into r unless it's CBOR "nil marker" - in that
// case r is set to empty slice.
func (r *RawCBOR) UnmarshalCBOR(data []byte) error {
	if r == nil {
		return errors.New("UnmarshalCBOR on nil pointer")
	}
	if bytes.Equal(data, cborNil) {
		*r = (*r)[0:0]
	} else {
		*r = append((*r)[0:0], data...)
	}
	return nil
}

func (r RawCBOR) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(r)), nil
}

func (r *RawCBOR) UnmarshalText(src []byte) error {
	res, err := hex.DecodeString(string(bytes.TrimPrefix(src, []byte("0x"))))
	if err == nil {
		*r = res
	}
	return err
}
