/*
Package controller implements the marketplace: the asset registry, the
listing book, the settlement engine (atomic buy), retirement and the
settlement currency configuration.

Every mutating entry point runs in exactly one state transaction, ledger
clients are bound to the same transaction so value transfers and book
updates commit together or not at all. Events are published only after the
transaction has been committed.
*/
package controller

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/carbonmarket/carbon-controller-go/auth"
	"github.com/carbonmarket/carbon-controller-go/events"
	"github.com/carbonmarket/carbon-controller-go/ledger"
	"github.com/carbonmarket/carbon-controller-go/metrics"
	"github.com/carbonmarket/carbon-controller-go/state"
	"github.com/carbonmarket/carbon-controller-go/txsystem/market"
	"github.com/carbonmarket/carbon-controller-go/types"
)

type (
	Controller struct {
		store   state.Store
		ledgers ledger.Resolver
		// self is the spender identity the controller pulls approved funds as
		self types.Address

		networkID types.NetworkID
		strictReg bool
		log       *zap.Logger
		metrics   *metrics.Metrics
		publisher events.Publisher
	}

	Option func(*conf)

	conf struct {
		networkID types.NetworkID
		strictReg bool
		log       *zap.Logger
		metrics   *metrics.Metrics
		publisher events.Publisher
	}
)

/*
New returns controller which keeps its state in the store and moves value
through the ledgers returned by the resolver. The "self" address is the
identity users grant spending allowances to.
*/
func New(store state.Store, ledgers ledger.Resolver, self types.Address, opts ...Option) (*Controller, error) {
	if store == nil {
		return nil, errors.New("state store is nil")
	}
	if ledgers == nil {
		return nil, errors.New("ledger resolver is nil")
	}
	if self == types.ZeroAddress {
		return nil, errors.New("controller address must not be zero address")
	}

	c := conf{
		networkID: types.NetworkLocal,
		log:       zap.NewNop(),
	}
	for _, o := range opts {
		o(&c)
	}

	return &Controller{
		store:     store,
		ledgers:   ledgers,
		self:      self,
		networkID: c.networkID,
		strictReg: c.strictReg,
		log:       c.log,
		metrics:   c.metrics,
		publisher: c.publisher,
	}, nil
}

func WithLogger(log *zap.Logger) Option {
	return func(c *conf) {
		if log != nil {
			c.log = log
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *conf) {
		c.metrics = m
	}
}

// WithPublisher sets the receiver of the retirement records.
func WithPublisher(p events.Publisher) Option {
	return func(c *conf) {
		c.publisher = p
	}
}

/*
WithStrictReregistration makes re-registration of an asset require the
authorization of the current admin in addition to the new one.
*/
func WithStrictReregistration() Option {
	return func(c *conf) {
		c.strictReg = true
	}
}

// WithNetworkID sets the network of the call orders accepted by Execute.
func WithNetworkID(id types.NetworkID) Option {
	return func(c *conf) {
		c.networkID = id
	}
}

// Address returns the identity the controller acts as on the ledgers.
func (c *Controller) Address() types.Address {
	return c.self
}

func (c *Controller) observe(method string, start time.Time, err error, fields ...zap.Field) {
	c.metrics.ObserveCall(method, err, time.Since(start))
	fields = append(fields, zap.String("method", method))
	switch market.ErrorKind(err) {
	case "ok":
		c.log.Debug("call executed", fields...)
	case "other":
		c.log.Warn("call failed", append(fields, zap.Error(err))...)
	default:
		c.log.Info("call rejected", append(fields, zap.Error(err))...)
	}
}

func requireAuth(guard auth.Guard, id types.Address, role string) error {
	if guard == nil {
		return fmt.Errorf("%w: no authorization guard", market.ErrUnauthorized)
	}
	if err := guard.RequireAuth(id); err != nil {
		return fmt.Errorf("%w: %s: %w", market.ErrUnauthorized, role, err)
	}
	return nil
}

func requirePositive(name string, v int64) error {
	if v <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %d", market.ErrInvalidArgument, name, v)
	}
	return nil
}

func (c *Controller) ledger(tx state.Tx, ref types.LedgerRef) (ledger.Client, error) {
	if err := ref.IsValid(); err != nil {
		return nil, fmt.Errorf("%w: %w", market.ErrInvalidArgument, err)
	}
	client, err := c.ledgers.Client(tx, ref)
	if err != nil {
		return nil, fmt.Errorf("resolving ledger %q: %w", ref, err)
	}
	return client, nil
}

func loadAsset(tx state.Tx, code types.AssetCode) (*market.AssetMeta, error) {
	meta := &market.AssetMeta{}
	ok, err := state.GetValue(tx, market.AssetKey(code), meta)
	if err != nil {
		return nil, fmt.Errorf("loading asset %s: %w", code, err)
	}
	if !ok {
		return nil, fmt.Errorf("asset %s: %w", code, market.ErrNotFound)
	}
	return meta, nil
}

func loadListing(tx state.Tx, code types.AssetCode, seller types.Address) (*market.Listing, error) {
	l := &market.Listing{}
	ok, err := state.GetValue(tx, market.ListingKey(code, seller), l)
	if err != nil {
		return nil, fmt.Errorf("loading listing %s of %s: %w", code, seller, err)
	}
	if !ok {
		return nil, fmt.Errorf("listing %s of %s: %w", code, seller, market.ErrNotFound)
	}
	return l, nil
}

func loadSettlementConfig(tx state.Tx) (*market.SettlementConfig, error) {
	cfg := &market.SettlementConfig{}
	ok, err := state.GetValue(tx, market.SettlementConfigKey(), cfg)
	if err != nil {
		return nil, fmt.Errorf("loading settlement currency config: %w", err)
	}
	if !ok {
		return nil, market.ErrNotConfigured
	}
	return cfg, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, market.ErrNotFound)
}
