/*
Package events delivers retirement records to external observers.

Every record is published to TopicRetirement and to a topic keyed by the
asset code and the holder, so observers interested in a single holder's
retirements need not filter the full stream.
*/
package events

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	evbus "github.com/asaskevich/EventBus"
	"go.uber.org/zap"

	"github.com/carbonmarket/carbon-controller-go/txsystem/market"
	"github.com/carbonmarket/carbon-controller-go/types"
)

const TopicRetirement = "retirement"

// Publisher is what the controller needs from the event layer.
type Publisher interface {
	PublishRetirement(rec *market.RetirementRecord)
}

// RetirementTopic returns the topic of the retirements of given asset by given holder.
func RetirementTopic(code types.AssetCode, holder types.Address) string {
	return fmt.Sprintf("%s/%s/%s", TopicRetirement, code, holder.Hex())
}

type RetirementHandler func(rec *market.RetirementRecord)

/*
Bus subscribes a single dispatcher per topic to the underlying event bus and
keeps the handlers of the topic by subscription id. The event bus identifies
handlers by their code pointer, which is shared by all closures created by
the same function literal, so it can't tell subscribers apart.

Dispatchers stay subscribed once created. The event bus holds its lock while
calling them, so unsubscribing only touches the handler registry.
*/
type Bus struct {
	bus evbus.Bus
	log *zap.Logger

	subMu    sync.Mutex // serializes dispatcher creation
	mu       sync.Mutex // guards nextID and handlers
	nextID   uint64
	handlers map[string]map[uint64]RetirementHandler
}

var _ Publisher = (*Bus)(nil)

func NewBus(log *zap.Logger) *Bus {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bus{
		bus:      evbus.New(),
		log:      log,
		handlers: make(map[string]map[uint64]RetirementHandler),
	}
}

func (b *Bus) PublishRetirement(rec *market.RetirementRecord) {
	b.log.Debug("publishing retirement record",
		zap.Stringer("asset", rec.AssetCode), zap.Stringer("holder", rec.Holder), zap.Int64("amount", rec.Amount))
	b.bus.Publish(TopicRetirement, rec)
	b.bus.Publish(RetirementTopic(rec.AssetCode, rec.Holder), rec)
}

/*
SubscribeRetirements registers handler for all retirement records. Returned
function unsubscribes the handler.
*/
func (b *Bus) SubscribeRetirements(h RetirementHandler) (func(), error) {
	return b.subscribe(TopicRetirement, h)
}

// SubscribeHolder registers handler for the retirements of the asset by the holder.
func (b *Bus) SubscribeHolder(code types.AssetCode, holder types.Address, h RetirementHandler) (func(), error) {
	return b.subscribe(RetirementTopic(code, holder), h)
}

func (b *Bus) subscribe(topic string, h RetirementHandler) (func(), error) {
	b.subMu.Lock()
	defer b.subMu.Unlock()

	b.mu.Lock()
	_, ok := b.handlers[topic]
	b.mu.Unlock()
	if !ok {
		if err := b.bus.Subscribe(topic, func(rec *market.RetirementRecord) { b.deliver(topic, rec) }); err != nil {
			return nil, fmt.Errorf("subscribing to %q: %w", topic, err)
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if !ok {
		b.handlers[topic] = make(map[uint64]RetirementHandler)
	}
	b.nextID++
	id := b.nextID
	b.handlers[topic][id] = h
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers[topic], id)
	}, nil
}

// deliver calls the handlers of the topic in the order they subscribed.
func (b *Bus) deliver(topic string, rec *market.RetirementRecord) {
	b.mu.Lock()
	ids := slices.Sorted(maps.Keys(b.handlers[topic]))
	hs := make([]RetirementHandler, 0, len(ids))
	for _, id := range ids {
		hs = append(hs, b.handlers[topic][id])
	}
	b.mu.Unlock()

	for _, h := range hs {
		h(rec)
	}
}
