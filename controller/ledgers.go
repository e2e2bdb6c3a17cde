package controller

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/carbonmarket/carbon-controller-go/auth"
	"github.com/carbonmarket/carbon-controller-go/state"
	"github.com/carbonmarket/carbon-controller-go/txsystem/market"
	"github.com/carbonmarket/carbon-controller-go/types"
)

/*
Approve sets the amount the controller may pull from the owner's account on
the ledger. Sellers approve the asset ledger, buyers the settlement ledger.
*/
func (c *Controller) Approve(ctx context.Context, guard auth.Guard, owner types.Address, ledgerRef types.LedgerRef, amount int64) (rErr error) {
	defer func(start time.Time) {
		c.observe(market.MethodApprove, start, rErr, zap.Stringer("owner", owner), zap.Stringer("ledger", ledgerRef), zap.Int64("amount", amount))
	}(time.Now())

	if err := requireAuth(guard, owner, "owner"); err != nil {
		return err
	}
	if amount < 0 {
		return fmt.Errorf("%w: allowance must not be negative, got %d", market.ErrInvalidArgument, amount)
	}
	return c.update(ctx, guard, func(tx state.Tx) error {
		l, err := c.ledger(tx, ledgerRef)
		if err != nil {
			return err
		}
		return l.Approve(owner, c.self, amount)
	})
}

// Allowance returns the amount the controller may pull from the owner's account.
func (c *Controller) Allowance(ctx context.Context, ledgerRef types.LedgerRef, owner types.Address) (amount int64, err error) {
	err = c.store.View(ctx, func(tx state.Tx) error {
		l, err := c.ledger(tx, ledgerRef)
		if err != nil {
			return err
		}
		amount, err = l.Allowance(owner, c.self)
		return err
	})
	return amount, err
}

// Balance returns the holder's balance on the ledger, zero for unknown holder.
func (c *Controller) Balance(ctx context.Context, ledgerRef types.LedgerRef, holder types.Address) (amount int64, err error) {
	err = c.store.View(ctx, func(tx state.Tx) error {
		l, err := c.ledger(tx, ledgerRef)
		if err != nil {
			return err
		}
		amount, err = l.Balance(holder)
		return err
	})
	return amount, err
}
