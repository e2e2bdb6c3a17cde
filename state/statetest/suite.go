/*
Package statetest contains conformance tests every state.Store implementation
must pass.
*/
package statetest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/carbonmarket/carbon-controller-go/state"
)

// Run executes the conformance tests, newStore must return empty store.
func Run(t *testing.T, newStore func(t *testing.T) state.Store) {
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.View(ctx, func(tx state.Tx) error {
			v, err := tx.Get([]byte("nope"))
			require.NoError(t, err)
			require.Nil(t, v)
			return nil
		}))
	})

	t.Run("committed update is visible", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Update(ctx, func(tx state.Tx) error {
			require.NoError(t, tx.Set([]byte("a"), []byte("1")))
			// own writes are visible inside the transaction
			v, err := tx.Get([]byte("a"))
			require.NoError(t, err)
			require.Equal(t, []byte("1"), v)
			return nil
		}))
		requireValue(t, s, "a", []byte("1"))
	})

	t.Run("empty value is not a missing key", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Update(ctx, func(tx state.Tx) error {
			return tx.Set([]byte("empty"), []byte{})
		}))
		require.NoError(t, s.View(ctx, func(tx state.Tx) error {
			v, err := tx.Get([]byte("empty"))
			require.NoError(t, err)
			require.NotNil(t, v)
			require.Empty(t, v)
			return nil
		}))
	})

	t.Run("failed update is discarded", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Update(ctx, func(tx state.Tx) error {
			return tx.Set([]byte("a"), []byte("1"))
		}))

		expErr := errors.New("second leg failed")
		err := s.Update(ctx, func(tx state.Tx) error {
			require.NoError(t, tx.Set([]byte("a"), []byte("2")))
			require.NoError(t, tx.Set([]byte("b"), []byte("2")))
			return expErr
		})
		require.ErrorIs(t, err, expErr)
		requireValue(t, s, "a", []byte("1"))
		requireValue(t, s, "b", nil)
	})

	t.Run("delete", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Update(ctx, func(tx state.Tx) error {
			return tx.Set([]byte("a"), []byte("1"))
		}))
		require.NoError(t, s.Update(ctx, func(tx state.Tx) error {
			require.NoError(t, tx.Delete([]byte("a")))
			v, err := tx.Get([]byte("a"))
			require.NoError(t, err)
			require.Nil(t, v)
			return nil
		}))
		requireValue(t, s, "a", nil)
	})

	t.Run("scan by prefix", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Update(ctx, func(tx state.Tx) error {
			for _, k := range []string{"listing/B/2", "listing/A/1", "listing/B/1", "asset/B", "listing/C"} {
				require.NoError(t, tx.Set([]byte(k), []byte(k)))
			}
			return nil
		}))

		require.NoError(t, s.Update(ctx, func(tx state.Tx) error {
			// pending writes take part in the scan
			require.NoError(t, tx.Delete([]byte("listing/B/1")))
			require.NoError(t, tx.Set([]byte("listing/B/0"), []byte("listing/B/0")))

			var keys []string
			require.NoError(t, tx.Scan([]byte("listing/B/"), func(key, value []byte) error {
				require.Equal(t, key, value)
				keys = append(keys, string(key))
				return nil
			}))
			require.Equal(t, []string{"listing/B/0", "listing/B/2"}, keys)
			return nil
		}))

		stop := errors.New("stop")
		var n int
		err := s.View(ctx, func(tx state.Tx) error {
			return tx.Scan([]byte("listing/"), func(key, value []byte) error {
				n++
				return stop
			})
		})
		require.ErrorIs(t, err, stop)
		require.Equal(t, 1, n)
	})

	t.Run("codec helpers", func(t *testing.T) {
		type rec struct {
			_      struct{} `cbor:",toarray"`
			Amount int64
		}
		s := newStore(t)
		require.NoError(t, s.Update(ctx, func(tx state.Tx) error {
			return state.SetValue(tx, []byte("r"), &rec{Amount: 42})
		}))
		require.NoError(t, s.View(ctx, func(tx state.Tx) error {
			var r rec
			found, err := state.GetValue(tx, []byte("r"), &r)
			require.NoError(t, err)
			require.True(t, found)
			require.EqualValues(t, 42, r.Amount)

			found, err = state.GetValue(tx, []byte("x"), &r)
			require.NoError(t, err)
			require.False(t, found)
			return nil
		}))
	})

	t.Run("write in view fails", func(t *testing.T) {
		s := newStore(t)
		err := s.View(ctx, func(tx state.Tx) error {
			return tx.Set([]byte("a"), []byte("1"))
		})
		require.Error(t, err)
		requireValue(t, s, "a", nil)
	})

	t.Run("cancelled context", func(t *testing.T) {
		s := newStore(t)
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		called := false
		err := s.Update(cctx, func(tx state.Tx) error {
			called = true
			return nil
		})
		require.ErrorIs(t, err, context.Canceled)
		require.False(t, called)
	})
}

func requireValue(t *testing.T, s state.Store, key string, expected []byte) {
	t.Helper()
	require.NoError(t, s.View(context.Background(), func(tx state.Tx) error {
		v, err := tx.Get([]byte(key))
		require.NoError(t, err)
		require.Equal(t, expected, v)
		return nil
	}))
}
