// Package bolt implements state.Store on top of a BoltDB file.
package bolt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/boltdb/bolt"
	"go.uber.org/zap"

	"github.com/carbonmarket/carbon-controller-go/state"
)

var defaultBucket = []byte("carbon-controller")

/*
Store keeps all the state in a single bucket. Bolt allows one writer at a
time so conflicting updates are serialized.
*/
type Store struct {
	db     *bolt.DB
	bucket []byte
}

var _ state.Store = (*Store)(nil)

func New(path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if path == "" {
		return nil, errors.New("bolt database path is not configured")
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt database: %w", err)
	}
	s := &Store{db: db, bucket: defaultBucket}
	if err := db.Update(func(btx *bolt.Tx) error {
		_, err := btx.CreateBucketIfNotExists(s.bucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}
	log.Info("bolt state store opened", zap.String("path", path))
	return s, nil
}

func (s *Store) View(ctx context.Context, fn func(tx state.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(btx *bolt.Tx) error {
		return fn(&tx{b: btx.Bucket(s.bucket)})
	})
}

func (s *Store) Update(ctx context.Context, fn func(tx state.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(btx *bolt.Tx) error {
		return fn(&tx{b: btx.Bucket(s.bucket)})
	})
}

func (s *Store) Close() error {
	return s.db.Close()
}

type tx struct {
	b *bolt.Bucket
}

func (t *tx) Get(key []byte) ([]byte, error) {
	// value returned by bolt is valid only for the life of the transaction
	if v := t.b.Get(key); v != nil {
		return bytes.Clone(v), nil
	}
	return nil, nil
}

func (t *tx) Set(key, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	return mapErr(t.b.Put(key, value))
}

func (t *tx) Delete(key []byte) error {
	return mapErr(t.b.Delete(key))
}

func (t *tx) Scan(prefix []byte, fn func(key, value []byte) error) error {
	c := t.b.Cursor()
	for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
		if err := fn(bytes.Clone(k), bytes.Clone(v)); err != nil {
			return err
		}
	}
	return nil
}

func mapErr(err error) error {
	if errors.Is(err, bolt.ErrTxNotWritable) {
		return state.ErrReadOnly
	}
	return err
}
