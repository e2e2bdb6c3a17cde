// Package badger implements state.Store on top of BadgerDB.
package badger

import (
	"context"
	"errors"
	"fmt"
	"os"

	badgerdb "github.com/dgraph-io/badger/v3"
	"go.uber.org/zap"

	"github.com/carbonmarket/carbon-controller-go/state"
)

type Config struct {
	Path       string // data directory, ignored when InMemory is set
	InMemory   bool
	SyncWrites bool
}

/*
Store is BadgerDB backed state.Store. Badger uses optimistic concurrency
control: when two updates touch the same key one of them fails with
badgerdb.ErrConflict and has no effect, it's up to the caller to retry.
*/
type Store struct {
	db  *badgerdb.DB
	log *zap.Logger
}

var _ state.Store = (*Store)(nil)

func New(cfg Config, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var opts badgerdb.Options
	if cfg.InMemory {
		opts = badgerdb.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, errors.New("badger data directory is not configured")
		}
		if err := os.MkdirAll(cfg.Path, 0700); err != nil {
			return nil, fmt.Errorf("creating badger data directory: %w", err)
		}
		opts = badgerdb.DefaultOptions(cfg.Path).WithSyncWrites(cfg.SyncWrites)
	}
	opts = opts.WithLogger(badgerLogger{log.Sugar()})
	// the state is small, keep the memory footprint low
	opts.BlockCacheSize = 16 << 20
	opts.IndexCacheSize = 16 << 20
	opts.NumMemtables = 2

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger database: %w", err)
	}
	log.Info("badger state store opened", zap.String("path", cfg.Path), zap.Bool("in_memory", cfg.InMemory))
	return &Store{db: db, log: log}, nil
}

func (s *Store) View(ctx context.Context, fn func(tx state.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(txn *badgerdb.Txn) error {
		return fn(&tx{txn: txn})
	})
}

func (s *Store) Update(ctx context.Context, fn func(tx state.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badgerdb.Txn) error {
		return fn(&tx{txn: txn})
	})
}

func (s *Store) Close() error {
	return s.db.Close()
}

type tx struct {
	txn *badgerdb.Txn
}

func (t *tx) Get(key []byte) ([]byte, error) {
	item, err := t.txn.Get(key)
	if err != nil {
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	v, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	// ValueCopy returns nil for zero length value
	if v == nil {
		v = []byte{}
	}
	return v, nil
}

func (t *tx) Set(key, value []byte) error {
	if err := t.txn.Set(key, value); err != nil {
		if errors.Is(err, badgerdb.ErrReadOnlyTxn) {
			return state.ErrReadOnly
		}
		return err
	}
	return nil
}

func (t *tx) Delete(key []byte) error {
	if err := t.txn.Delete(key); err != nil {
		if errors.Is(err, badgerdb.ErrReadOnlyTxn) {
			return state.ErrReadOnly
		}
		return err
	}
	return nil
}

func (t *tx) Scan(prefix []byte, fn func(key, value []byte) error) error {
	opts := badgerdb.DefaultIteratorOptions
	opts.Prefix = prefix
	it := t.txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		v, err := item.ValueCopy(nil)
		if err != nil {
			return fmt.Errorf("reading value of %q: %w", item.Key(), err)
		}
		if err := fn(item.KeyCopy(nil), v); err != nil {
			return err
		}
	}
	return nil
}

// badgerLogger routes badger's internal logging to zap.
type badgerLogger struct {
	*zap.SugaredLogger
}

func (l badgerLogger) Warningf(format string, args ...any) {
	l.Warnf(format, args...)
}
