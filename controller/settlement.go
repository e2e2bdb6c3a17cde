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
	"github.com/carbonmarket/carbon-controller-go/util"
)

// Receipt describes settled buy.
type Receipt struct {
	AssetCode types.AssetCode `json:"assetCode"`
	Buyer     types.Address   `json:"buyer"`
	Seller    types.Address   `json:"seller"`
	Amount    int64           `json:"amount,string"`    // asset units moved to the buyer
	Price     int64           `json:"price,string"`     // listing price per whole unit
	Cost      int64           `json:"cost,string"`      // settlement currency moved to the seller
	Remaining int64           `json:"remaining,string"` // amount left in the listing, zero when it was removed
}

/*
SettlementCost returns the cost of the amount of asset units at the price.
Price is per whole unit, so the cost is amount*price/10^7, rounded up to the
smallest currency unit so that non-zero amount never costs nothing. Result
not fitting into int64 is ErrArithmeticOverflow.
*/
func SettlementCost(amount, price int64) (int64, error) {
	cost, ok := util.MulDivCeil(amount, price, types.ScaleFactor)
	if !ok {
		return 0, fmt.Errorf("%w: cost of %d units at price %d", market.ErrArithmeticOverflow, amount, price)
	}
	return cost, nil
}

/*
Buy exchanges "amount" units of the seller's listed asset for settlement
currency in a single transaction:
  - cost is paid from the buyer to the seller on the settlement ledger;
  - asset units are moved from the seller to the buyer on the asset ledger;
  - the listing is reduced by the amount (and deleted when nothing is left).

Both transfers are pulled by the controller, ie buyer and seller must have
approved the controller to spend at least cost and amount respectively. Any
failure leaves the state unchanged.
*/
func (c *Controller) Buy(ctx context.Context, guard auth.Guard, buyer types.Address, code types.AssetCode, seller types.Address, amount, maxCost int64) (rct *Receipt, rErr error) {
	defer func(start time.Time) {
		c.observe(market.MethodBuy, start, rErr, zap.Stringer("asset", code), zap.Stringer("buyer", buyer),
			zap.Stringer("seller", seller), zap.Int64("amount", amount), zap.Int64("max_cost", maxCost))
	}(time.Now())

	if err := requireAuth(guard, buyer, "buyer"); err != nil {
		return nil, err
	}
	if err := requirePositive("amount", amount); err != nil {
		return nil, err
	}

	err := c.update(ctx, guard, func(tx state.Tx) error {
		listing, err := loadListing(tx, code, seller)
		if err != nil {
			return err
		}
		if amount > listing.Amount {
			return fmt.Errorf("%w: listing %s of %s has %s units, requested %s", market.ErrInsufficientLiquidity,
				code, seller, types.FormatAmount(listing.Amount), types.FormatAmount(amount))
		}
		meta, err := loadAsset(tx, code)
		if err != nil {
			return err
		}
		currency, err := loadSettlementConfig(tx)
		if err != nil {
			return err
		}
		cost, err := SettlementCost(amount, listing.Price)
		if err != nil {
			return err
		}
		if cost > maxCost {
			return fmt.Errorf("%w: cost %s exceeds maximum %s", market.ErrPriceExceedsCap,
				types.FormatAmount(cost), types.FormatAmount(maxCost))
		}

		currencyLedger, err := c.ledger(tx, currency.Ledger)
		if err != nil {
			return err
		}
		if err := currencyLedger.TransferFrom(c.self, buyer, seller, cost); err != nil {
			return fmt.Errorf("paying %s from buyer to seller: %w", types.FormatAmount(cost), err)
		}
		assetLedger, err := c.ledger(tx, meta.Ledger)
		if err != nil {
			return err
		}
		if err := assetLedger.TransferFrom(c.self, seller, buyer, amount); err != nil {
			return fmt.Errorf("delivering %s %s from seller to buyer: %w", types.FormatAmount(amount), code, err)
		}
		remaining, err := reduceOrRemove(tx, listing, amount)
		if err != nil {
			return err
		}

		rct = &Receipt{
			AssetCode: code,
			Buyer:     buyer,
			Seller:    seller,
			Amount:    amount,
			Price:     listing.Price,
			Cost:      cost,
			Remaining: remaining,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.metrics.ObserveSettlement(code, rct.Amount, rct.Cost)
	return rct, nil
}
