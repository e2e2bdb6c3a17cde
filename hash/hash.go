/*
Package hash calculates hashes of CBOR encoded values.

Encoding values as CBOR before hashing avoids "field offset attacks", ie two
records with different field values yielding the same hash when the fields
would be simply concatenated.
*/
package hash

import (
	"crypto"
	_ "crypto/sha256" // the algorithm of record IDs
	"hash"

	"github.com/fxamacker/cbor/v2"

	abcbor "github.com/carbonmarket/carbon-controller-go/cbor"
)

/*
Hasher streams CBOR encoding of the added values into the hash function.
The first encoding error is sticky, it's returned by Sum and all values added
after it are ignored.
*/
type Hasher struct {
	h   hash.Hash
	enc *cbor.Encoder
	err error
}

// New returns Hasher using the hash algorithm, the algorithm must be linked in.
func New(alg crypto.Hash) *Hasher {
	h := alg.New()
	return &Hasher{h: h, enc: abcbor.EncMode().NewEncoder(h)}
}

func (h *Hasher) Add(values ...any) *Hasher {
	for _, v := range values {
		if h.err != nil {
			break
		}
		h.err = h.enc.Encode(v)
	}
	return h
}

// Sum returns the hash of the values added so far, the hash is not valid when error is returned.
func (h *Hasher) Sum() ([]byte, error) {
	return h.h.Sum(nil), h.err
}

// Sum returns hash of the CBOR encoded values.
func Sum(alg crypto.Hash, values ...any) ([]byte, error) {
	return New(alg).Add(values...).Sum()
}
