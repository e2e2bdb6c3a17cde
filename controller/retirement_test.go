package controller

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/carbonmarket/carbon-controller-go/auth"
	"github.com/carbonmarket/carbon-controller-go/ledger"
	"github.com/carbonmarket/carbon-controller-go/txsystem/market"
)

func TestRetire(t *testing.T) {
	ctx := context.Background()

	t.Run("success emits one record", func(t *testing.T) {
		env := newMarket(t)
		rec, err := env.ctl.Retire(ctx, auth.Static{issuerI1}, issuerI1, assetCode, 100*u, "2023 offset")
		require.NoError(t, err)
		require.Equal(t, &market.RetirementRecord{
			AssetCode:   assetCode,
			Holder:      issuerI1,
			Amount:      100 * u,
			ProjectID:   1001,
			VintageYear: 2021,
			Note:        "2023 offset",
			Seq:         1,
		}, rec)
		require.Equal(t, []*market.RetirementRecord{rec}, env.events.records())
		require.Equal(t, 900*u, env.balance(t, assetLedger, issuerI1))

		// identical retirement gets distinct record
		rec2, err := env.ctl.Retire(ctx, auth.Static{issuerI1}, issuerI1, assetCode, 100*u, "2023 offset")
		require.NoError(t, err)
		require.EqualValues(t, 2, rec2.Seq)
		id1, err := rec.ID()
		require.NoError(t, err)
		id2, err := rec2.ID()
		require.NoError(t, err)
		require.NotEqual(t, id1, id2)
		require.Len(t, env.events.records(), 2)
	})

	t.Run("failed burn emits nothing", func(t *testing.T) {
		env := newMarket(t)
		_, err := env.ctl.Retire(ctx, auth.Static{buyerB1}, buyerB1, assetCode, u, "")
		require.ErrorIs(t, err, ledger.ErrInsufficientBalance)
		require.Empty(t, env.events.records())

		// sequence is not consumed by failed retirement
		rec, err := env.ctl.Retire(ctx, auth.Static{issuerI1}, issuerI1, assetCode, u, "")
		require.NoError(t, err)
		require.EqualValues(t, 1, rec.Seq)
	})

	t.Run("rejected", func(t *testing.T) {
		env := newMarket(t)
		_, err := env.ctl.Retire(ctx, auth.Static{buyerB1}, issuerI1, assetCode, u, "")
		require.ErrorIs(t, err, market.ErrUnauthorized)

		_, err = env.ctl.Retire(ctx, auth.Static{issuerI1}, issuerI1, assetCode, 0, "")
		require.ErrorIs(t, err, market.ErrInvalidArgument)

		_, err = env.ctl.Retire(ctx, auth.Static{issuerI1}, issuerI1, assetCode, u, strings.Repeat("x", market.MaxNoteLength+1))
		require.ErrorIs(t, err, market.ErrInvalidArgument)

		_, err = env.ctl.Retire(ctx, auth.Static{issuerI1}, issuerI1, "GS001", u, "")
		require.ErrorIs(t, err, market.ErrNotFound)

		require.Empty(t, env.events.records())
		require.Equal(t, 1000*u, env.balance(t, assetLedger, issuerI1))
	})

	t.Run("without publisher", func(t *testing.T) {
		env := newMarket(t, WithPublisher(nil))
		_, err := env.ctl.Retire(ctx, auth.Static{issuerI1}, issuerI1, assetCode, u, strings.Repeat("x", market.MaxNoteLength))
		require.NoError(t, err)
		require.Empty(t, env.events.records())
	})
}
