package controller

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/carbonmarket/carbon-controller-go/auth"
	"github.com/carbonmarket/carbon-controller-go/txsystem/market"
	"github.com/carbonmarket/carbon-controller-go/types"
)

/*
Execute verifies the signatures of the call order and invokes the entry
point named by the order's method. The signers of the order are the
identities authorizing the call.

Returned value depends on the method: *Receipt for buy,
*market.RetirementRecord for retire and nil for the others.
*/
func (c *Controller) Execute(ctx context.Context, order *types.CallOrder) (any, error) {
	if order == nil {
		return nil, fmt.Errorf("%w: %w", market.ErrInvalidArgument, types.ErrCallOrderIsNil)
	}
	if order.NetworkID != c.networkID {
		return nil, fmt.Errorf("%w: call order is for network %s, controller runs on %s", market.ErrInvalidArgument, order.NetworkID, c.networkID)
	}
	guard, err := auth.NewSignatureGuard(order)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", market.ErrUnauthorized, err)
	}
	c.log.Debug("executing call order", zap.String("method", order.Method), zap.Uint64("nonce", order.Nonce),
		zap.Stringers("signers", guard.Signers()))

	switch order.Method {
	case market.MethodRegisterAsset:
		attr := &market.RegisterAssetAttributes{}
		if err := decodeAttributes(order, attr); err != nil {
			return nil, err
		}
		return nil, c.RegisterAsset(ctx, guard, attr.Code, attr.ProjectID, attr.VintageYear, attr.Ledger, attr.Admin)
	case market.MethodMintToIssuer:
		attr := &market.MintToIssuerAttributes{}
		if err := decodeAttributes(order, attr); err != nil {
			return nil, err
		}
		return nil, c.MintToIssuer(ctx, guard, attr.Code, attr.Issuer, attr.Amount)
	case market.MethodRetire:
		attr := &market.RetireAttributes{}
		if err := decodeAttributes(order, attr); err != nil {
			return nil, err
		}
		return nilIfErr(c.Retire(ctx, guard, attr.Holder, attr.Code, attr.Amount, attr.Note))
	case market.MethodSetSettlementCurrency:
		attr := &market.SetSettlementCurrencyAttributes{}
		if err := decodeAttributes(order, attr); err != nil {
			return nil, err
		}
		return nil, c.SetSettlementCurrency(ctx, guard, attr.Caller, attr.Ledger)
	case market.MethodListAsset:
		attr := &market.ListAssetAttributes{}
		if err := decodeAttributes(order, attr); err != nil {
			return nil, err
		}
		return nil, c.ListAsset(ctx, guard, attr.Seller, attr.Code, attr.Amount, attr.Price)
	case market.MethodBuy:
		attr := &market.BuyAttributes{}
		if err := decodeAttributes(order, attr); err != nil {
			return nil, err
		}
		return nilIfErr(c.Buy(ctx, guard, attr.Buyer, attr.Code, attr.Seller, attr.Amount, attr.MaxCost))
	case market.MethodApprove:
		attr := &market.ApproveAttributes{}
		if err := decodeAttributes(order, attr); err != nil {
			return nil, err
		}
		return nil, c.Approve(ctx, guard, attr.Owner, attr.Ledger, attr.Amount)
	default:
		return nil, fmt.Errorf("%w: unknown method %q", market.ErrInvalidArgument, order.Method)
	}
}

func decodeAttributes(order *types.CallOrder, attr any) error {
	if err := order.UnmarshalAttributes(attr); err != nil {
		return fmt.Errorf("%w: decoding %s attributes: %w", market.ErrInvalidArgument, order.Method, err)
	}
	return nil
}

// nilIfErr avoids returning typed nil pointer wrapped into non-nil interface.
func nilIfErr[T any](v *T, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return v, nil
}
