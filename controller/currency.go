package controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/carbonmarket/carbon-controller-go/auth"
	"github.com/carbonmarket/carbon-controller-go/state"
	"github.com/carbonmarket/carbon-controller-go/txsystem/market"
	"github.com/carbonmarket/carbon-controller-go/types"
)

/*
SetSettlementCurrency selects the ledger buys are paid on. The first call
initializes the config and makes the caller its admin, later calls must be
authorized by that admin.
*/
func (c *Controller) SetSettlementCurrency(ctx context.Context, guard auth.Guard, caller types.Address, ledgerRef types.LedgerRef) (rErr error) {
	defer func(start time.Time) {
		c.observe(market.MethodSetSettlementCurrency, start, rErr, zap.Stringer("caller", caller), zap.Stringer("ledger", ledgerRef))
	}(time.Now())

	if err := requireAuth(guard, caller, "caller"); err != nil {
		return err
	}
	if err := ledgerRef.IsValid(); err != nil {
		return fmt.Errorf("%w: %w", market.ErrInvalidArgument, err)
	}

	return c.update(ctx, guard, func(tx state.Tx) error {
		cfg, err := loadSettlementConfig(tx)
		switch {
		case errors.Is(err, market.ErrNotConfigured):
			cfg = &market.SettlementConfig{Admin: caller}
		case err != nil:
			return err
		case cfg.Admin != caller:
			return fmt.Errorf("%w: %s is not the settlement currency admin", market.ErrUnauthorized, caller)
		default:
			cfg.Counter++
		}
		cfg.Ledger = ledgerRef
		return state.SetValue(tx, market.SettlementConfigKey(), cfg)
	})
}

// SettlementCurrency returns the settlement currency config, ErrNotConfigured when not set.
func (c *Controller) SettlementCurrency(ctx context.Context) (cfg *market.SettlementConfig, err error) {
	err = c.store.View(ctx, func(tx state.Tx) error {
		cfg, err = loadSettlementConfig(tx)
		return err
	})
	return cfg, err
}
