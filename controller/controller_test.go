package controller

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/carbonmarket/carbon-controller-go/auth"
	"github.com/carbonmarket/carbon-controller-go/ledger"
	"github.com/carbonmarket/carbon-controller-go/state"
	"github.com/carbonmarket/carbon-controller-go/state/memory"
	"github.com/carbonmarket/carbon-controller-go/txsystem/market"
	"github.com/carbonmarket/carbon-controller-go/types"
)

const (
	u = types.ScaleFactor // one whole unit

	assetCode      types.AssetCode = "VCS001"
	assetLedger    types.LedgerRef = "vcs001"
	currencyLedger types.LedgerRef = "usdc"
)

var (
	controllerAddr = types.Address{0xc0}
	adminA1        = types.Address{0xa1}
	issuerI1       = types.Address{0x11}
	buyerB1        = types.Address{0xb1}
)

type recorder struct {
	mu   sync.Mutex
	recs []*market.RetirementRecord
}

func (r *recorder) PublishRetirement(rec *market.RetirementRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recs = append(r.recs, rec)
}

func (r *recorder) records() []*market.RetirementRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*market.RetirementRecord(nil), r.recs...)
}

type testEnv struct {
	ctl    *Controller
	store  *memory.Store
	events *recorder
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	env := &testEnv{store: memory.New(), events: &recorder{}}
	opts = append([]Option{WithLogger(zaptest.NewLogger(t)), WithPublisher(env.events)}, opts...)
	ctl, err := New(env.store, ledger.KVResolver{}, controllerAddr, opts...)
	require.NoError(t, err)
	env.ctl = ctl
	return env
}

/*
newMarket sets up the VCS001 scenario up to the buy: A1 has registered the
asset and configured the settlement currency, I1 has been minted 1000 units
and lists 500 of them at 2.0, B1 holds 1000 currency and has approved 450.
*/
func newMarket(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	env := newTestEnv(t, opts...)
	ctx := context.Background()
	c := env.ctl
	require.NoError(t, c.RegisterAsset(ctx, auth.Static{adminA1}, assetCode, 1001, 2021, assetLedger, adminA1))
	require.NoError(t, c.SetSettlementCurrency(ctx, auth.Static{adminA1}, adminA1, currencyLedger))
	require.NoError(t, c.MintToIssuer(ctx, auth.Static{adminA1}, assetCode, issuerI1, 1000*u))
	require.NoError(t, c.Approve(ctx, auth.Static{issuerI1}, issuerI1, assetLedger, 500*u))
	require.NoError(t, c.ListAsset(ctx, auth.Static{issuerI1}, issuerI1, assetCode, 500*u, 2*u))
	env.mint(t, currencyLedger, buyerB1, 1000*u)
	require.NoError(t, c.Approve(ctx, auth.Static{buyerB1}, buyerB1, currencyLedger, 450*u))
	return env
}

// mint credits ledger directly, bypassing the controller.
func (env *testEnv) mint(t *testing.T, ref types.LedgerRef, to types.Address, amount int64) {
	t.Helper()
	require.NoError(t, env.store.Update(context.Background(), func(tx state.Tx) error {
		l, err := ledger.KVResolver{}.Client(tx, ref)
		if err != nil {
			return err
		}
		return l.Mint(to, amount)
	}))
}

func (env *testEnv) balance(t *testing.T, ref types.LedgerRef, holder types.Address) int64 {
	t.Helper()
	v, err := env.ctl.Balance(context.Background(), ref, holder)
	require.NoError(t, err)
	return v
}

func (env *testEnv) allowance(t *testing.T, ref types.LedgerRef, owner types.Address) int64 {
	t.Helper()
	v, err := env.ctl.Allowance(context.Background(), ref, owner)
	require.NoError(t, err)
	return v
}

type snapshot struct {
	balances   [4]int64
	allowances [2]int64
	listing    *market.Listing
}

// snapshot captures everything buy could change.
func (env *testEnv) snapshot(t *testing.T) snapshot {
	t.Helper()
	s := snapshot{
		balances: [4]int64{
			env.balance(t, assetLedger, issuerI1),
			env.balance(t, assetLedger, buyerB1),
			env.balance(t, currencyLedger, issuerI1),
			env.balance(t, currencyLedger, buyerB1),
		},
		allowances: [2]int64{
			env.allowance(t, assetLedger, issuerI1),
			env.allowance(t, currencyLedger, buyerB1),
		},
	}
	l, err := env.ctl.Listing(context.Background(), assetCode, issuerI1)
	if !errors.Is(err, market.ErrNotFound) {
		require.NoError(t, err)
		s.listing = l
	}
	return s
}

func TestNew(t *testing.T) {
	store := memory.New()

	_, err := New(nil, ledger.KVResolver{}, controllerAddr)
	require.EqualError(t, err, `state store is nil`)

	_, err = New(store, nil, controllerAddr)
	require.EqualError(t, err, `ledger resolver is nil`)

	_, err = New(store, ledger.KVResolver{}, types.ZeroAddress)
	require.EqualError(t, err, `controller address must not be zero address`)

	c, err := New(store, ledger.KVResolver{}, controllerAddr, WithStrictReregistration(), WithNetworkID(types.NetworkTestNet), WithLogger(nil))
	require.NoError(t, err)
	require.True(t, c.strictReg)
	require.Equal(t, types.NetworkTestNet, c.networkID)
	require.NotNil(t, c.log)
	require.Equal(t, controllerAddr, c.Address())
}

func TestCanceledContext(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := env.ctl.RegisterAsset(ctx, auth.Static{adminA1}, assetCode, 1, 2021, assetLedger, adminA1)
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, env.store.Len())
}
