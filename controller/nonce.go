package controller

import (
	"context"
	"fmt"

	"github.com/carbonmarket/carbon-controller-go/auth"
	"github.com/carbonmarket/carbon-controller-go/state"
	"github.com/carbonmarket/carbon-controller-go/txsystem/market"
	"github.com/carbonmarket/carbon-controller-go/types"
)

// noncedGuard is implemented by guards built from signed call orders.
type noncedGuard interface {
	Signers() []types.Address
	Nonce() uint64
}

/*
update runs fn in a read-write transaction. When the guard comes from a signed
call order the order's nonce is consumed in the same transaction, so the order
is spent only when the call commits.
*/
func (c *Controller) update(ctx context.Context, guard auth.Guard, fn func(tx state.Tx) error) error {
	return c.store.Update(ctx, func(tx state.Tx) error {
		if g, ok := guard.(noncedGuard); ok {
			if err := consumeNonce(tx, g.Signers(), g.Nonce()); err != nil {
				return err
			}
		}
		return fn(tx)
	})
}

// consumeNonce requires nonce to be greater than the last nonce used by any of the signers.
func consumeNonce(tx state.Tx, signers []types.Address, nonce uint64) error {
	for _, s := range signers {
		var last uint64
		if _, err := state.GetValue(tx, market.NonceKey(s), &last); err != nil {
			return err
		}
		if nonce <= last {
			return fmt.Errorf("%w: nonce %d of %s is not greater than last used nonce %d", market.ErrUnauthorized, nonce, s, last)
		}
		if err := state.SetValue(tx, market.NonceKey(s), nonce); err != nil {
			return err
		}
	}
	return nil
}

// LastNonce returns the last call order nonce used by the signer, zero when there is none.
func (c *Controller) LastNonce(ctx context.Context, signer types.Address) (nonce uint64, err error) {
	err = c.store.View(ctx, func(tx state.Tx) error {
		_, err := state.GetValue(tx, market.NonceKey(signer), &nonce)
		return err
	})
	return nonce, err
}
