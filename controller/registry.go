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
)

/*
RegisterAsset writes (or overwrites) the metadata of the asset. The new
admin must authorize the call, in strict mode also the current admin of an
already registered asset.
*/
func (c *Controller) RegisterAsset(ctx context.Context, guard auth.Guard, code types.AssetCode, projectID int64, vintageYear int32, ledgerRef types.LedgerRef, admin types.Address) (rErr error) {
	defer func(start time.Time) {
		c.observe(market.MethodRegisterAsset, start, rErr, zap.Stringer("asset", code), zap.Stringer("admin", admin))
	}(time.Now())

	if err := requireAuth(guard, admin, "asset admin"); err != nil {
		return err
	}
	if err := code.IsValid(); err != nil {
		return fmt.Errorf("%w: %w", market.ErrInvalidArgument, err)
	}
	if err := ledgerRef.IsValid(); err != nil {
		return fmt.Errorf("%w: %w", market.ErrInvalidArgument, err)
	}

	meta := &market.AssetMeta{
		Code:        code,
		ProjectID:   projectID,
		VintageYear: vintageYear,
		Ledger:      ledgerRef,
		Admin:       admin,
	}
	return c.update(ctx, guard, func(tx state.Tx) error {
		if c.strictReg {
			prev, err := loadAsset(tx, code)
			switch {
			case err == nil:
				if err := requireAuth(guard, prev.Admin, "current asset admin"); err != nil {
					return err
				}
			case !isNotFound(err):
				return err
			}
		}
		return state.SetValue(tx, market.AssetKey(code), meta)
	})
}

// AssetInfo returns metadata of the registered asset.
func (c *Controller) AssetInfo(ctx context.Context, code types.AssetCode) (meta *market.AssetMeta, err error) {
	err = c.store.View(ctx, func(tx state.Tx) error {
		meta, err = loadAsset(tx, code)
		return err
	})
	return meta, err
}

// Assets returns metadata of all registered assets ordered by asset code.
func (c *Controller) Assets(ctx context.Context) ([]*market.AssetMeta, error) {
	var res []*market.AssetMeta
	err := c.store.View(ctx, func(tx state.Tx) error {
		return tx.Scan(market.AssetPrefix(), func(key, value []byte) error {
			meta := &market.AssetMeta{}
			if err := cbor.Unmarshal(value, meta); err != nil {
				return fmt.Errorf("decoding %q: %w", bytes.Clone(key), err)
			}
			res = append(res, meta)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

/*
MintToIssuer creates new units of the asset on its ledger and credits them
to the issuer. Requires the authorization of the asset's admin, errors of the
ledger (ie invalid recipient) are returned as is.
*/
func (c *Controller) MintToIssuer(ctx context.Context, guard auth.Guard, code types.AssetCode, issuer types.Address, amount int64) (rErr error) {
	defer func(start time.Time) {
		c.observe(market.MethodMintToIssuer, start, rErr, zap.Stringer("asset", code), zap.Stringer("issuer", issuer), zap.Int64("amount", amount))
	}(time.Now())

	return c.update(ctx, guard, func(tx state.Tx) error {
		meta, err := loadAsset(tx, code)
		if err != nil {
			return err
		}
		if err := requireAuth(guard, meta.Admin, "asset admin"); err != nil {
			return err
		}
		if err := requirePositive("amount", amount); err != nil {
			return err
		}
		assetLedger, err := c.ledger(tx, meta.Ledger)
		if err != nil {
			return err
		}
		if err := assetLedger.Mint(issuer, amount); err != nil {
			return fmt.Errorf("minting %s %s to %s: %w", types.FormatAmount(amount), code, issuer, err)
		}
		return nil
	})
}
