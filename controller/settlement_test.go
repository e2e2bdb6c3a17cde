package controller

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/carbonmarket/carbon-controller-go/auth"
	"github.com/carbonmarket/carbon-controller-go/ledger"
	"github.com/carbonmarket/carbon-controller-go/state"
	"github.com/carbonmarket/carbon-controller-go/txsystem/market"
	"github.com/carbonmarket/carbon-controller-go/types"
)

func TestSettlementCost(t *testing.T) {
	for _, tc := range []struct {
		amount, price, cost int64
	}{
		{amount: 200 * u, price: 2 * u, cost: 400 * u},
		{amount: u, price: u, cost: u},
		{amount: u / 2, price: 3 * u, cost: 3 * u / 2},
		{amount: 1, price: 1, cost: 1}, // rounded up, never free
		{amount: 3, price: u / 2, cost: 2},
		{amount: math.MaxInt64, price: u, cost: math.MaxInt64},
	} {
		cost, err := SettlementCost(tc.amount, tc.price)
		require.NoError(t, err)
		require.Equal(t, tc.cost, cost, "%d x %d", tc.amount, tc.price)
	}

	_, err := SettlementCost(math.MaxInt64, 2*u)
	require.ErrorIs(t, err, market.ErrArithmeticOverflow)
	_, err = SettlementCost(math.MaxInt64, math.MaxInt64)
	require.ErrorIs(t, err, market.ErrArithmeticOverflow)
}

func TestBuy_scenario(t *testing.T) {
	env := newMarket(t)
	ctx := context.Background()

	rct, err := env.ctl.Buy(ctx, auth.Static{buyerB1}, buyerB1, assetCode, issuerI1, 200*u, 450*u)
	require.NoError(t, err)
	require.Equal(t, &Receipt{
		AssetCode: assetCode,
		Buyer:     buyerB1,
		Seller:    issuerI1,
		Amount:    200 * u,
		Price:     2 * u,
		Cost:      400 * u,
		Remaining: 300 * u,
	}, rct)

	require.Equal(t, 400*u, env.balance(t, currencyLedger, issuerI1))
	require.Equal(t, 600*u, env.balance(t, currencyLedger, buyerB1))
	require.Equal(t, 200*u, env.balance(t, assetLedger, buyerB1))
	require.Equal(t, 800*u, env.balance(t, assetLedger, issuerI1))
	// allowances are consumed by the pulled amounts
	require.Equal(t, 300*u, env.allowance(t, assetLedger, issuerI1))
	require.Equal(t, 50*u, env.allowance(t, currencyLedger, buyerB1))

	l, err := env.ctl.Listing(ctx, assetCode, issuerI1)
	require.NoError(t, err)
	require.Equal(t, 300*u, l.Amount)
	require.Equal(t, 2*u, l.Price)
}

func TestBuy_fullAmountRemovesListing(t *testing.T) {
	env := newMarket(t)
	ctx := context.Background()
	require.NoError(t, env.ctl.Approve(ctx, auth.Static{buyerB1}, buyerB1, currencyLedger, 1000*u))

	rct, err := env.ctl.Buy(ctx, auth.Static{buyerB1}, buyerB1, assetCode, issuerI1, 500*u, 1000*u)
	require.NoError(t, err)
	require.Zero(t, rct.Remaining)
	require.Equal(t, 1000*u, rct.Cost)

	_, err = env.ctl.Listing(ctx, assetCode, issuerI1)
	require.ErrorIs(t, err, market.ErrNotFound)
	require.Zero(t, env.balance(t, currencyLedger, buyerB1))

	// nothing left to buy
	_, err = env.ctl.Buy(ctx, auth.Static{buyerB1}, buyerB1, assetCode, issuerI1, u, 10*u)
	require.ErrorIs(t, err, market.ErrNotFound)
}

func TestBuy_rejected(t *testing.T) {
	ctx := context.Background()

	for _, tc := range []struct {
		name    string
		prepare func(t *testing.T, env *testEnv)
		guard   auth.Guard
		code    types.AssetCode
		amount  int64
		maxCost int64
		errIs   error
	}{
		{
			name:    "buyer did not authorize",
			guard:   auth.Static{issuerI1},
			amount:  200 * u,
			maxCost: 450 * u,
			errIs:   market.ErrUnauthorized,
		},
		{
			name:    "zero amount",
			amount:  0,
			maxCost: 450 * u,
			errIs:   market.ErrInvalidArgument,
		},
		{
			name:    "negative amount",
			amount:  -200 * u,
			maxCost: 450 * u,
			errIs:   market.ErrInvalidArgument,
		},
		{
			name:    "no listing",
			code:    "GS001",
			amount:  200 * u,
			maxCost: 450 * u,
			errIs:   market.ErrNotFound,
		},
		{
			name:    "amount above listing",
			amount:  500*u + 1,
			maxCost: math.MaxInt64,
			errIs:   market.ErrInsufficientLiquidity,
		},
		{
			name: "listed asset not registered",
			prepare: func(t *testing.T, env *testEnv) {
				require.NoError(t, env.store.Update(ctx, func(tx state.Tx) error {
					return state.SetValue(tx, market.ListingKey("GHOST", issuerI1), &market.Listing{AssetCode: "GHOST", Seller: issuerI1, Amount: 500 * u, Price: u})
				}))
			},
			code:    "GHOST",
			amount:  200 * u,
			maxCost: 450 * u,
			errIs:   market.ErrNotFound,
		},
		{
			name: "settlement currency not configured",
			prepare: func(t *testing.T, env *testEnv) {
				require.NoError(t, env.store.Update(ctx, func(tx state.Tx) error {
					return tx.Delete(market.SettlementConfigKey())
				}))
			},
			amount:  200 * u,
			maxCost: 450 * u,
			errIs:   market.ErrNotConfigured,
		},
		{
			name: "cost overflows",
			prepare: func(t *testing.T, env *testEnv) {
				require.NoError(t, env.ctl.ListAsset(ctx, auth.Static{issuerI1}, issuerI1, assetCode, 500*u, math.MaxInt64))
			},
			amount:  2 * u,
			maxCost: math.MaxInt64,
			errIs:   market.ErrArithmeticOverflow,
		},
		{
			name:    "cost above cap",
			amount:  200 * u,
			maxCost: 400*u - 1,
			errIs:   market.ErrPriceExceedsCap,
		},
		{
			name:    "buyer allowance too low",
			amount:  250 * u,
			maxCost: 500 * u,
			errIs:   ledger.ErrInsufficientAllowance,
		},
		{
			name: "buyer balance too low",
			prepare: func(t *testing.T, env *testEnv) {
				require.NoError(t, env.ctl.Approve(ctx, auth.Static{buyerB1}, buyerB1, currencyLedger, 10_000*u))
				require.NoError(t, env.ctl.ListAsset(ctx, auth.Static{issuerI1}, issuerI1, assetCode, 500*u, 3*u))
			},
			amount:  500 * u,
			maxCost: 2000 * u,
			errIs:   ledger.ErrInsufficientBalance,
		},
		{
			// first leg (payment) succeeds, delivery fails and payment must be rolled back
			name: "seller allowance too low",
			prepare: func(t *testing.T, env *testEnv) {
				require.NoError(t, env.ctl.Approve(ctx, auth.Static{issuerI1}, issuerI1, assetLedger, 100*u))
			},
			amount:  200 * u,
			maxCost: 450 * u,
			errIs:   ledger.ErrInsufficientAllowance,
		},
		{
			name: "seller balance too low",
			prepare: func(t *testing.T, env *testEnv) {
				require.NoError(t, env.ctl.Approve(ctx, auth.Static{issuerI1}, issuerI1, assetLedger, 2000*u))
				require.NoError(t, env.ctl.ListAsset(ctx, auth.Static{issuerI1}, issuerI1, assetCode, 2000*u, u/10))
			},
			amount:  1500 * u,
			maxCost: 450 * u,
			errIs:   ledger.ErrInsufficientBalance,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			env := newMarket(t)
			if tc.prepare != nil {
				tc.prepare(t, env)
			}
			guard := tc.guard
			if guard == nil {
				guard = auth.Static{buyerB1}
			}
			code := tc.code
			if code == "" {
				code = assetCode
			}

			before := env.snapshot(t)
			rct, err := env.ctl.Buy(ctx, guard, buyerB1, code, issuerI1, tc.amount, tc.maxCost)
			require.ErrorIs(t, err, tc.errIs)
			require.Nil(t, rct)
			require.Equal(t, before, env.snapshot(t), "state must not change")
		})
	}
}

func TestBuy_concurrent(t *testing.T) {
	env := newMarket(t)
	ctx := context.Background()
	buyers := []types.Address{{0xb2}, {0xb3}, {0xb4}, {0xb5}}
	for _, b := range buyers {
		env.mint(t, currencyLedger, b, 1000*u)
		require.NoError(t, env.ctl.Approve(ctx, auth.Static{b}, b, currencyLedger, 1000*u))
	}

	// every buyer attempts to buy 200 units, listing has 500 so only two succeed
	var wg sync.WaitGroup
	errs := make([]error, len(buyers))
	for i, b := range buyers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = env.ctl.Buy(ctx, auth.Static{b}, b, assetCode, issuerI1, 200*u, 400*u)
		}()
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		require.ErrorIs(t, err, market.ErrInsufficientLiquidity)
	}
	require.Equal(t, 2, ok)

	l, err := env.ctl.Listing(ctx, assetCode, issuerI1)
	require.NoError(t, err)
	require.Equal(t, 100*u, l.Amount)
	require.Equal(t, 600*u, env.balance(t, assetLedger, issuerI1))
	require.Equal(t, 800*u, env.balance(t, currencyLedger, issuerI1))
}
