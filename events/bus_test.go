package events

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/carbonmarket/carbon-controller-go/txsystem/market"
	"github.com/carbonmarket/carbon-controller-go/types"
)

func TestBus(t *testing.T) {
	holder := types.Address{0x11}
	other := types.Address{0x22}
	b := NewBus(nil)

	var all, mine []*market.RetirementRecord
	unsubAll, err := b.SubscribeRetirements(func(rec *market.RetirementRecord) { all = append(all, rec) })
	require.NoError(t, err)
	unsubMine, err := b.SubscribeHolder("VCS001", holder, func(rec *market.RetirementRecord) { mine = append(mine, rec) })
	require.NoError(t, err)

	b.PublishRetirement(&market.RetirementRecord{AssetCode: "VCS001", Holder: holder, Amount: 1})
	b.PublishRetirement(&market.RetirementRecord{AssetCode: "VCS001", Holder: other, Amount: 2})
	b.PublishRetirement(&market.RetirementRecord{AssetCode: "VCS002", Holder: holder, Amount: 3})
	require.Len(t, all, 3)
	require.Len(t, mine, 1)
	require.EqualValues(t, 1, mine[0].Amount)

	unsubMine()
	unsubAll()
	b.PublishRetirement(&market.RetirementRecord{AssetCode: "VCS001", Holder: holder, Amount: 4})
	require.Len(t, all, 3)
	require.Len(t, mine, 1)
}

func TestBus_unsubscribeSameTopic(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	b := NewBus(nil)
	unsubAudit, err := NewAuditLog(b, zap.New(core))
	require.NoError(t, err)
	defer unsubAudit()

	var first, second []*market.RetirementRecord
	unsubFirst, err := b.SubscribeRetirements(func(rec *market.RetirementRecord) { first = append(first, rec) })
	require.NoError(t, err)
	unsubSecond, err := b.SubscribeRetirements(func(rec *market.RetirementRecord) { second = append(second, rec) })
	require.NoError(t, err)

	b.PublishRetirement(&market.RetirementRecord{AssetCode: "VCS001", Holder: types.Address{1}, Amount: 1})
	unsubSecond()
	unsubSecond()
	b.PublishRetirement(&market.RetirementRecord{AssetCode: "VCS001", Holder: types.Address{1}, Amount: 2})
	require.Len(t, second, 1)
	require.Len(t, first, 2)
	require.Equal(t, 2, logs.FilterMessage("retirement").Len())

	// handler may unsubscribe itself while being called
	var self []*market.RetirementRecord
	var unsubSelf func()
	unsubSelf, err = b.SubscribeRetirements(func(rec *market.RetirementRecord) {
		self = append(self, rec)
		unsubSelf()
	})
	require.NoError(t, err)
	unsubFirst()
	b.PublishRetirement(&market.RetirementRecord{AssetCode: "VCS001", Holder: types.Address{1}, Amount: 3})
	b.PublishRetirement(&market.RetirementRecord{AssetCode: "VCS001", Holder: types.Address{1}, Amount: 4})
	require.Len(t, self, 1)
	require.Len(t, first, 2)
	require.Equal(t, 4, logs.FilterMessage("retirement").Len())
}

func TestAuditLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	b := NewBus(nil)
	unsub, err := NewAuditLog(b, zap.New(core))
	require.NoError(t, err)
	defer unsub()

	b.PublishRetirement(&market.RetirementRecord{AssetCode: "VCS001", Holder: types.Address{1}, Amount: 200 * types.ScaleFactor, Note: "2024 offset"})
	entries := logs.FilterMessage("retirement").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, "VCS001", fields["asset"])
	require.Equal(t, "200.0000000", fields["amount"])
	require.Equal(t, "2024 offset", fields["note"])
	require.Len(t, fields["id"], 64)
}
