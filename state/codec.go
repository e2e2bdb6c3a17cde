package state

import (
	"fmt"

	"github.com/carbonmarket/carbon-controller-go/cbor"
)

/*
GetValue loads value of the key into v. Returns false (and nil error) when
the key doesn't exist.
*/
func GetValue(tx Tx, key []byte, v any) (bool, error) {
	buf, err := tx.Get(key)
	if err != nil {
		return false, fmt.Errorf("reading %q: %w", key, err)
	}
	if buf == nil {
		return false, nil
	}
	if err := cbor.Unmarshal(buf, v); err != nil {
		return false, fmt.Errorf("decoding %q: %w", key, err)
	}
	return true, nil
}

// SetValue stores CBOR encoding of v under the key.
func SetValue(tx Tx, key []byte, v any) error {
	buf, err := cbor.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %q: %w", key, err)
	}
	if err := tx.Set(key, buf); err != nil {
		return fmt.Errorf("writing %q: %w", key, err)
	}
	return nil
}
