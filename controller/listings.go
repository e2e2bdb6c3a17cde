package controller

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/carbonmarket/carbon-controller-go/auth"
	"github.com/carbonmarket/carbon-controller-go/cbor"
	"github.com/carbonmarket/carbon-controller-go/state"
	"github.com/carbonmarket/carbon-controller-go/txsystem/market"
	"github.com/carbonmarket/carbon-controller-go/types"
	"github.com/carbonmarket/carbon-controller-go/util"
)

/*
ListAsset writes seller's standing offer of the asset, replacing the previous
offer of the seller (if any). The remaining amount of the replaced offer is
not carried over.

Listing doesn't move any funds: seller must approve the controller to spend
the listed amount on the asset ledger before the offer can be bought.
*/
func (c *Controller) ListAsset(ctx context.Context, guard auth.Guard, seller types.Address, code types.AssetCode, amount, price int64) (rErr error) {
	defer func(start time.Time) {
		c.observe(market.MethodListAsset, start, rErr, zap.Stringer("asset", code), zap.Stringer("seller", seller),
			zap.Int64("amount", amount), zap.Int64("price", price))
	}(time.Now())

	if err := requireAuth(guard, seller, "seller"); err != nil {
		return err
	}
	if err := requirePositive("amount", amount); err != nil {
		return err
	}
	if err := requirePositive("price", price); err != nil {
		return err
	}

	return c.update(ctx, guard, func(tx state.Tx) error {
		if _, err := loadAsset(tx, code); err != nil {
			return err
		}
		key := market.ListingKey(code, seller)
		prev := &market.Listing{}
		if _, err := state.GetValue(tx, key, prev); err != nil {
			return err
		}
		return state.SetValue(tx, key, &market.Listing{
			AssetCode: code,
			Seller:    seller,
			Amount:    amount,
			Price:     price,
			Counter:   prev.Counter + 1,
		})
	})
}

// Listing returns the open offer of the seller for the asset.
func (c *Controller) Listing(ctx context.Context, code types.AssetCode, seller types.Address) (l *market.Listing, err error) {
	err = c.store.View(ctx, func(tx state.Tx) error {
		l, err = loadListing(tx, code, seller)
		return err
	})
	return l, err
}

// Listings returns all open offers of the asset ordered by seller address.
func (c *Controller) Listings(ctx context.Context, code types.AssetCode) ([]*market.Listing, error) {
	var res []*market.Listing
	err := c.store.View(ctx, func(tx state.Tx) error {
		return tx.Scan(market.ListingPrefix(code), func(key, value []byte) error {
			l := &market.Listing{}
			if err := cbor.Unmarshal(value, l); err != nil {
				return fmt.Errorf("decoding %q: %w", bytes.Clone(key), err)
			}
			res = append(res, l)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

/*
reduceOrRemove subtracts settled amount from the listing, listing which has
nothing left is deleted. Returns the remaining amount.
*/
func reduceOrRemove(tx state.Tx, l *market.Listing, amount int64) (int64, error) {
	remaining, ok := util.SafeSub(l.Amount, amount)
	if !ok {
		return 0, fmt.Errorf("%w: settling %d from listing of %d", market.ErrInsufficientLiquidity, amount, l.Amount)
	}
	key := market.ListingKey(l.AssetCode, l.Seller)
	if remaining == 0 {
		if err := tx.Delete(key); err != nil {
			return 0, fmt.Errorf("deleting listing %s of %s: %w", l.AssetCode, l.Seller, err)
		}
		return 0, nil
	}
	updated := l.Copy()
	updated.Amount = remaining
	updated.Counter++
	if err := state.SetValue(tx, key, updated); err != nil {
		return 0, err
	}
	return remaining, nil
}
