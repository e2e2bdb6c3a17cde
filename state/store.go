/*
Package state defines the transactional key-value substrate the controller
and the ledgers persist their state in.

Every mutating controller call runs inside a single Update, all writes of the
call (listing book, registry, ledger balances) commit together or not at all.
*/
package state

import (
	"context"
	"errors"
)

var ErrReadOnly = errors.New("write in read-only transaction")

type (
	Tx interface {
		// Get returns nil value and nil error when the key doesn't exist. Key
		// with zero length value is returned as non-nil empty slice.
		Get(key []byte) ([]byte, error)
		Set(key, value []byte) error
		Delete(key []byte) error
		// Scan calls fn for every key with given prefix in ascending key order.
		// Returning error from fn stops the scan and Scan returns that error.
		Scan(prefix []byte, fn func(key, value []byte) error) error
	}

	Store interface {
		// View runs fn in a read-only transaction.
		View(ctx context.Context, fn func(tx Tx) error) error
		// Update runs fn in a read-write transaction which is committed when fn
		// returns nil and discarded otherwise.
		Update(ctx context.Context, fn func(tx Tx) error) error
		Close() error
	}
)
