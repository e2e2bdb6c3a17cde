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
Retire burns holder's units of the asset and, once the burn has been
committed, publishes the retirement record. Failed call publishes nothing.
*/
func (c *Controller) Retire(ctx context.Context, guard auth.Guard, holder types.Address, code types.AssetCode, amount int64, note string) (rec *market.RetirementRecord, rErr error) {
	defer func(start time.Time) {
		c.observe(market.MethodRetire, start, rErr, zap.Stringer("asset", code), zap.Stringer("holder", holder), zap.Int64("amount", amount))
	}(time.Now())

	if err := requireAuth(guard, holder, "holder"); err != nil {
		return nil, err
	}
	if err := requirePositive("amount", amount); err != nil {
		return nil, err
	}
	if len(note) > market.MaxNoteLength {
		return nil, fmt.Errorf("%w: note is longer than %d bytes", market.ErrInvalidArgument, market.MaxNoteLength)
	}

	err := c.update(ctx, guard, func(tx state.Tx) error {
		meta, err := loadAsset(tx, code)
		if err != nil {
			return err
		}
		assetLedger, err := c.ledger(tx, meta.Ledger)
		if err != nil {
			return err
		}
		if err := assetLedger.Burn(holder, amount); err != nil {
			return fmt.Errorf("burning %s %s of %s: %w", types.FormatAmount(amount), code, holder, err)
		}

		var seq uint64
		if _, err := state.GetValue(tx, market.RetirementSeqKey(), &seq); err != nil {
			return err
		}
		seq++
		if err := state.SetValue(tx, market.RetirementSeqKey(), seq); err != nil {
			return err
		}

		rec = &market.RetirementRecord{
			AssetCode:   code,
			Holder:      holder,
			Amount:      amount,
			ProjectID:   meta.ProjectID,
			VintageYear: meta.VintageYear,
			Note:        note,
			Seq:         seq,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.metrics.ObserveRetirement(code, amount)
	if c.publisher != nil {
		c.publisher.PublishRetirement(rec)
	}
	return rec, nil
}
